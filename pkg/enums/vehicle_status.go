package enums

import "fmt"

// VehicleStatus tracks a vehicle record through the five site checkpoints.
type VehicleStatus string

const (
	VehicleStatusPendingEntry VehicleStatus = "pending_entry"
	VehicleStatusEntered      VehicleStatus = "entered"
	VehicleStatusLoading      VehicleStatus = "loading"
	VehicleStatusUnloading    VehicleStatus = "unloading"
	VehicleStatusExited       VehicleStatus = "exited"
)

var validVehicleStatuses = []VehicleStatus{
	VehicleStatusPendingEntry,
	VehicleStatusEntered,
	VehicleStatusLoading,
	VehicleStatusUnloading,
	VehicleStatusExited,
}

// String implements fmt.Stringer.
func (s VehicleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known VehicleStatus.
func (s VehicleStatus) IsValid() bool {
	for _, candidate := range validVehicleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseVehicleStatus converts raw input into a VehicleStatus.
func ParseVehicleStatus(value string) (VehicleStatus, error) {
	for _, candidate := range validVehicleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vehicle status %q", value)
}
