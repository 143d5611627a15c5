package enums

import "fmt"

// MovementType classifies the physical direction of a vehicle record.
type MovementType string

const (
	// MovementTypeNormal is an outbound delivery against the order quantity.
	MovementTypeNormal MovementType = "normal"
	// MovementTypeReturn brings sold material back on-site.
	MovementTypeReturn MovementType = "return"
	// MovementTypeExchange swaps delivered material for replacement stock.
	MovementTypeExchange MovementType = "exchange"
)

var validMovementTypes = []MovementType{
	MovementTypeNormal,
	MovementTypeReturn,
	MovementTypeExchange,
}

// String implements fmt.Stringer.
func (m MovementType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MovementType.
func (m MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// Inbound reports whether the vehicle delivers material onto the site.
func (m MovementType) Inbound() bool {
	return m == MovementTypeReturn || m == MovementTypeExchange
}

// ParseMovementType converts raw input into a MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
