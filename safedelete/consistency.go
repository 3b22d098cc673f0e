package safedelete

import "context"

// ConsistencyLevel tells a store with a read replica where reads may go.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. It is the default, so that a Fetch right after
	// a Delete or Undelete sees its own write.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica, which may lag behind the primary.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key holding the ConsistencyLevel.
const ConsistencyLevelKey contextKey = "safedelete.consistency_level"

// WithStrongConsistency returns a context whose reads go to the primary.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context whose reads may go to a replica.
//
//	ctx = safedelete.WithEventualConsistency(ctx)
//	books, err := store.Fetch(ctx, store.All())
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel returns the level stored in ctx, StrongConsistency if there is none.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
