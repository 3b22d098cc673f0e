package safedelete

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// visibilityState is the per-Query visibility bookkeeping. It is copied by value on Clone.
type visibilityState struct {
	visibility      Visibility
	visibilityField string
	force           forcedVisibility
	filterApplied   bool
}

// Query wraps a goqu.SelectDataset and adds the soft-delete visibility predicate to it
// right before the dataset is compiled to SQL or limited, exactly once per Query.
//
// Chain methods (Filter, Where, Select, Order, Slice) return clones, like goqu does.
// The lifecycle calls Compiler, ToSQL and SetLimits mutate the Query in place.
//
// A Query is not safe for concurrent use. Clone it to hand it to another goroutine.
type Query struct {
	dataset   *goqu.SelectDataset
	fieldName string
	state     visibilityState
}

// NewQuery creates a Query over dataset with the given visibility mode.
// The deleted-marker field and the visibility trigger field are taken from cfg.
func NewQuery(dataset *goqu.SelectDataset, visibility Visibility, cfg Config) *Query {
	return &Query{
		dataset:   dataset,
		fieldName: cfg.FieldName,
		state: visibilityState{
			visibility:      visibility,
			visibilityField: cfg.VisibilityField,
		},
	}
}

// NewDefaultQuery creates a Query over dataset with cfg.DefaultVisibility.
func NewDefaultQuery(dataset *goqu.SelectDataset, cfg Config) *Query {
	return NewQuery(dataset, cfg.DefaultVisibility, cfg)
}

// Visibility returns the mode the Query was constructed with.
func (q *Query) Visibility() Visibility {
	return q.state.visibility
}

// VisibilityField returns the filter key that triggers DeletedVisibleByField.
func (q *Query) VisibilityField() string {
	return q.state.visibilityField
}

// FieldName returns the deleted-marker column.
func (q *Query) FieldName() string {
	return q.fieldName
}

// ForcedVisibility returns the override mode and whether one was set.
func (q *Query) ForcedVisibility() (Visibility, bool) {
	return q.state.force.mode, q.state.force.set
}

// EffectiveVisibility returns the override mode if set, the constructed mode otherwise.
func (q *Query) EffectiveVisibility() Visibility {
	if q.state.force.set {
		return q.state.force.mode
	}

	return q.state.visibility
}

// FilterApplied reports whether the visibility predicate was already added to this Query.
func (q *Query) FilterApplied() bool {
	return q.state.filterApplied
}

// CanFilter reports whether conditions can still be added, which is the case until a limit or offset is set.
func (q *Query) CanFilter() bool {
	clauses := q.dataset.GetClauses()

	return clauses.Limit() == nil && clauses.Offset() == 0
}

// CheckFieldFilter switches a DeletedVisibleByField Query to DeletedVisible for the rest of its life
// (and the life of its clones) when kwargs contains the visibility field.
func (q *Query) CheckFieldFilter(kwargs map[string]any) {
	if q.state.visibility != DeletedVisibleByField {
		return
	}

	if _, ok := kwargs[q.state.visibilityField]; ok {
		q.state.force = forcedVisibility{mode: DeletedVisible, set: true}
	}
}

// applyVisibilityFilter adds the deleted-marker predicate to the dataset in place.
// Cloning here would detach the Query from the caller that is about to compile or limit it.
func (q *Query) applyVisibilityFilter() {
	if !q.CanFilter() || q.state.filterApplied {
		return
	}

	switch q.EffectiveVisibility() {
	case DeletedInvisible, DeletedVisibleByField:
		q.dataset = q.dataset.Where(goqu.I(q.fieldName).IsNull())
		q.state.filterApplied = true

	case DeletedOnlyVisible:
		q.dataset = q.dataset.Where(goqu.I(q.fieldName).IsNotNull())
		q.state.filterApplied = true

	default:
		// DeletedVisible: nothing to add, and filterApplied stays false so that
		// a later override still gets its predicate.
	}
}

// Clone returns an independent copy. The override mode is carried over only if it was set.
func (q *Query) Clone() *Query {
	clone := &Query{
		dataset:   q.dataset,
		fieldName: q.fieldName,
		state: visibilityState{
			visibility:      q.state.visibility,
			visibilityField: q.state.visibilityField,
			filterApplied:   q.state.filterApplied,
		},
	}

	if q.state.force.set {
		clone.state.force = q.state.force
	}

	return clone
}

// Compiler adds the visibility predicate if still due and returns the dataset ready for SQL generation.
func (q *Query) Compiler() *goqu.SelectDataset {
	q.applyVisibilityFilter()

	return q.dataset
}

// ToSQL generates the SELECT statement including the visibility predicate.
func (q *Query) ToSQL() (string, []any, error) {
	return q.Compiler().ToSQL()
}

// Conditions returns the WHERE expressions of the compiled dataset, visibility predicate included.
// It is nil when the Query has no conditions at all.
func (q *Query) Conditions() exp.ExpressionList {
	return q.Compiler().GetClauses().Where()
}

// SetLimits restricts the Query to the rows [low, high) of the visibility-filtered result.
// A high of 0 means no upper bound. Repeated calls narrow the window relative to the current one.
func (q *Query) SetLimits(low, high uint) {
	q.applyVisibilityFilter()

	lowMark, highMark, bounded := q.marks()

	if high > 0 {
		if bounded {
			highMark = min(highMark, lowMark+high)
		} else {
			highMark = lowMark + high
		}

		bounded = true
	}

	if bounded {
		lowMark = min(highMark, lowMark+low)
	} else {
		lowMark += low
	}

	if bounded && lowMark == highMark {
		// an empty window; goqu drops LIMIT 0, so state it as a condition
		q.dataset = q.dataset.Where(goqu.L("FALSE"))
	}

	q.dataset = q.dataset.Offset(lowMark)

	if bounded {
		q.dataset = q.dataset.Limit(highMark - lowMark)
	}
}

// Limit is SetLimits(0, n).
func (q *Query) Limit(n uint) {
	q.SetLimits(0, n)
}

// Offset is SetLimits(n, 0).
func (q *Query) Offset(n uint) {
	q.SetLimits(n, 0)
}

// marks reads the current window from the dataset clauses.
func (q *Query) marks() (low, high uint, bounded bool) {
	clauses := q.dataset.GetClauses()
	low = clauses.Offset()

	if limit, ok := clauses.Limit().(uint); ok {
		return low, low + limit, true
	}

	return low, 0, false
}

// Filter returns a clone with the given equality conditions added.
// The keys are checked against the visibility field first, see CheckFieldFilter.
func (q *Query) Filter(conditions goqu.Ex) *Query {
	clone := q.Clone()
	clone.CheckFieldFilter(conditions)
	clone.dataset = clone.dataset.Where(conditions)

	return clone
}

// Where returns a clone with the given expressions added.
func (q *Query) Where(expressions ...exp.Expression) *Query {
	clone := q.Clone()
	clone.dataset = clone.dataset.Where(expressions...)

	return clone
}

// Select returns a clone selecting the given columns.
func (q *Query) Select(columns ...any) *Query {
	clone := q.Clone()
	clone.dataset = clone.dataset.Select(columns...)

	return clone
}

// Order returns a clone with the given ordering.
func (q *Query) Order(order ...exp.OrderedExpression) *Query {
	clone := q.Clone()
	clone.dataset = clone.dataset.Order(order...)

	return clone
}

// Slice returns a clone limited to the rows [low, high), see SetLimits.
func (q *Query) Slice(low, high uint) *Query {
	clone := q.Clone()
	clone.SetLimits(low, high)

	return clone
}
