package enums

import "fmt"

// ShipmentStatus tracks a volunteer pledge. A shipment that is not yet
// done counts against its creator's open-shipment quota.
type ShipmentStatus string

const (
	ShipmentStatusToDo       ShipmentStatus = "to do"
	ShipmentStatusInProgress ShipmentStatus = "in progress"
	ShipmentStatusDone       ShipmentStatus = "done"
)

var validShipmentStatuses = []ShipmentStatus{
	ShipmentStatusToDo,
	ShipmentStatusInProgress,
	ShipmentStatusDone,
}

// OpenShipmentStatuses are the states counted against the per-user quota.
var OpenShipmentStatuses = []ShipmentStatus{
	ShipmentStatusToDo,
	ShipmentStatusInProgress,
}

// String implements fmt.Stringer.
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShipmentStatus.
func (s ShipmentStatus) IsValid() bool {
	for _, candidate := range validShipmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsOpen reports whether the shipment still counts as an open pledge.
func (s ShipmentStatus) IsOpen() bool {
	return s == ShipmentStatusToDo || s == ShipmentStatusInProgress
}

// ParseShipmentStatus converts raw input into a ShipmentStatus.
func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	for _, candidate := range validShipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipment status %q", value)
}
