package enums

import "fmt"

// NeedStatus tracks the lifecycle of a need. A need starts active and
// leaves that state only through the shipment admission controller or an
// administrative override; disabled and fulfilled are terminal.
type NeedStatus string

const (
	NeedStatusActive    NeedStatus = "active"
	NeedStatusDisabled  NeedStatus = "disabled"
	NeedStatusFulfilled NeedStatus = "fulfilled"
)

var validNeedStatuses = []NeedStatus{
	NeedStatusActive,
	NeedStatusDisabled,
	NeedStatusFulfilled,
}

// String implements fmt.Stringer.
func (n NeedStatus) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NeedStatus.
func (n NeedStatus) IsValid() bool {
	for _, candidate := range validNeedStatuses {
		if candidate == n {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (n NeedStatus) IsTerminal() bool {
	return n == NeedStatusDisabled || n == NeedStatusFulfilled
}

// ParseNeedStatus converts raw input into a NeedStatus.
func ParseNeedStatus(value string) (NeedStatus, error) {
	for _, candidate := range validNeedStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid need status %q", value)
}
