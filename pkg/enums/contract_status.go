package enums

import "fmt"

// ContractStatus tracks the lifecycle of a sales contract.
type ContractStatus string

const (
	ContractStatusActive ContractStatus = "active"
	ContractStatusClosed ContractStatus = "closed"
)

var validContractStatuses = []ContractStatus{
	ContractStatusActive,
	ContractStatusClosed,
}

// String implements fmt.Stringer.
func (s ContractStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ContractStatus.
func (s ContractStatus) IsValid() bool {
	for _, candidate := range validContractStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseContractStatus converts raw input into a ContractStatus.
func ParseContractStatus(value string) (ContractStatus, error) {
	for _, candidate := range validContractStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contract status %q", value)
}
