package enums

import "fmt"

// Permission is a named action code granted through a membership role group.
type Permission string

const (
	PermAddGoods    Permission = "add_goods"
	PermChangeGoods Permission = "change_goods"
	PermViewGoods   Permission = "view_goods"

	PermAddNeeds    Permission = "add_needs"
	PermChangeNeeds Permission = "change_needs"
	PermDeleteNeeds Permission = "delete_needs"
	PermViewNeeds   Permission = "view_needs"

	PermChangePoi Permission = "change_poi"

	PermAddPoiMembership    Permission = "add_poimembership"
	PermChangePoiMembership Permission = "change_poimembership"
	PermViewPoiMembership   Permission = "view_poimembership"

	PermAddShipments    Permission = "add_shipments"
	PermChangeShipments Permission = "change_shipments"
	PermViewShipments   Permission = "view_shipments"
)

var validPermissions = []Permission{
	PermAddGoods,
	PermChangeGoods,
	PermViewGoods,
	PermAddNeeds,
	PermChangeNeeds,
	PermDeleteNeeds,
	PermViewNeeds,
	PermChangePoi,
	PermAddPoiMembership,
	PermChangePoiMembership,
	PermViewPoiMembership,
	PermAddShipments,
	PermChangeShipments,
	PermViewShipments,
}

// String implements fmt.Stringer.
func (p Permission) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Permission.
func (p Permission) IsValid() bool {
	for _, candidate := range validPermissions {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePermission converts raw input into a Permission.
func ParsePermission(value string) (Permission, error) {
	for _, candidate := range validPermissions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid permission %q", value)
}
