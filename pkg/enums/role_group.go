package enums

import "fmt"

// RoleGroup is the named permission bundle a membership grants at a poi.
// The values match the historical group names stored in the database.
type RoleGroup string

const (
	RoleGroupPoiAdmin RoleGroup = "POI admin"
	RoleGroupPoiUser  RoleGroup = "POI user"
)

var validRoleGroups = []RoleGroup{
	RoleGroupPoiAdmin,
	RoleGroupPoiUser,
}

var roleGroupGrants = map[RoleGroup][]Permission{
	RoleGroupPoiAdmin: {
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
	},
	RoleGroupPoiUser: {
		PermAddNeeds,
		PermViewNeeds,
		PermViewGoods,
		PermViewPoiMembership,
		PermAddShipments,
		PermViewShipments,
	},
}

// String implements fmt.Stringer.
func (r RoleGroup) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RoleGroup.
func (r RoleGroup) IsValid() bool {
	for _, candidate := range validRoleGroups {
		if candidate == r {
			return true
		}
	}
	return false
}

// Permissions returns the permission codes the role group grants.
func (r RoleGroup) Permissions() []Permission {
	grants := roleGroupGrants[r]
	out := make([]Permission, len(grants))
	copy(out, grants)
	return out
}

// Grants reports whether the role group grants the permission.
func (r RoleGroup) Grants(perm Permission) bool {
	for _, granted := range roleGroupGrants[r] {
		if granted == perm {
			return true
		}
	}
	return false
}

// GrantsAny reports whether the role group grants at least one of perms.
func (r RoleGroup) GrantsAny(perms ...Permission) bool {
	for _, perm := range perms {
		if r.Grants(perm) {
			return true
		}
	}
	return false
}

// ParseRoleGroup converts raw input into a RoleGroup.
func ParseRoleGroup(value string) (RoleGroup, error) {
	for _, candidate := range validRoleGroups {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role group %q", value)
}
