package safedelete

import (
	"fmt"
)

// DeletePolicy decides what a delete request against a store does to matching rows.
type DeletePolicy int

const (
	// SoftDelete stamps the deleted marker instead of removing rows.
	SoftDelete DeletePolicy = iota + 1

	// HardDelete removes rows physically.
	HardDelete

	// NoDelete refuses delete requests.
	NoDelete
)

const (
	policySoftDelete = "soft_delete"
	policyHardDelete = "hard_delete"
	policyNoDelete   = "no_delete"
)

func (p DeletePolicy) String() string {
	switch p {
	case SoftDelete:
		return policySoftDelete
	case HardDelete:
		return policyHardDelete
	case NoDelete:
		return policyNoDelete
	default:
		return fmt.Sprintf("delete_policy(%d)", int(p))
	}
}

// IsValid reports whether p is a known policy.
func (p DeletePolicy) IsValid() bool {
	return p >= SoftDelete && p <= NoDelete
}

// ParseDeletePolicy maps the text form back to a DeletePolicy.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch s {
	case policySoftDelete:
		return SoftDelete, nil
	case policyHardDelete:
		return HardDelete, nil
	case policyNoDelete:
		return NoDelete, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDeletePolicy, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p DeletePolicy) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDeletePolicy, int(p))
	}

	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *DeletePolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseDeletePolicy(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}
