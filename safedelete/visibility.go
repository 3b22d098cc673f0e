package safedelete

import (
	"fmt"
)

// Visibility controls whether soft-deleted rows are excluded, included, or exclusively selected by a Query.
type Visibility int

const (
	// DeletedInvisible excludes soft-deleted rows (deleted marker IS NULL).
	DeletedInvisible Visibility = iota + 1

	// DeletedVisible includes soft-deleted rows alongside the others, no predicate is added.
	DeletedVisible

	// DeletedOnlyVisible selects only soft-deleted rows (deleted marker IS NOT NULL).
	DeletedOnlyVisible

	// DeletedVisibleByField behaves like DeletedInvisible until a filter call names the visibility field,
	// from then on the Query behaves like DeletedVisible.
	DeletedVisibleByField
)

const (
	visibilityInvisible      = "invisible"
	visibilityVisible        = "visible"
	visibilityOnlyVisible    = "only_visible"
	visibilityVisibleByField = "visible_by_field"
)

// String returns the text form used in configuration files and log attributes.
func (v Visibility) String() string {
	switch v {
	case DeletedInvisible:
		return visibilityInvisible
	case DeletedVisible:
		return visibilityVisible
	case DeletedOnlyVisible:
		return visibilityOnlyVisible
	case DeletedVisibleByField:
		return visibilityVisibleByField
	default:
		return fmt.Sprintf("visibility(%d)", int(v))
	}
}

// IsValid reports whether v is one of the four known modes.
func (v Visibility) IsValid() bool {
	return v >= DeletedInvisible && v <= DeletedVisibleByField
}

// ExcludesDeleted reports whether a Query in this (effective) mode hides soft-deleted rows.
func (v Visibility) ExcludesDeleted() bool {
	return v == DeletedInvisible || v == DeletedVisibleByField
}

// ParseVisibility maps the text form back to a Visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch s {
	case visibilityInvisible:
		return DeletedInvisible, nil
	case visibilityVisible:
		return DeletedVisible, nil
	case visibilityOnlyVisible:
		return DeletedOnlyVisible, nil
	case visibilityVisibleByField:
		return DeletedVisibleByField, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidVisibility, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Visibility) MarshalText() ([]byte, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVisibility, int(v))
	}

	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Visibility) UnmarshalText(text []byte) error {
	parsed, err := ParseVisibility(string(text))
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

// forcedVisibility is an optional Visibility override. The zero value means "not set".
type forcedVisibility struct {
	mode Visibility
	set  bool
}
