package enums

import "testing"

func TestRoleGroupGrants(t *testing.T) {
	if !RoleGroupPoiAdmin.Grants(PermChangePoiMembership) {
		t.Fatal("poi admin must grant change_poimembership")
	}
	if RoleGroupPoiUser.Grants(PermChangePoiMembership) {
		t.Fatal("poi user must not grant change_poimembership")
	}
	if !RoleGroupPoiUser.Grants(PermAddNeeds) {
		t.Fatal("poi user must grant add_needs")
	}
	if RoleGroupPoiUser.Grants(PermAddGoods) {
		t.Fatal("poi user must not grant add_goods")
	}
}

func TestRoleGroupGrantsAnyIsOrSemantics(t *testing.T) {
	if !RoleGroupPoiUser.GrantsAny(PermAddGoods, PermViewGoods) {
		t.Fatal("any-match should succeed when one code is granted")
	}
	if RoleGroupPoiUser.GrantsAny(PermAddGoods, PermChangeGoods) {
		t.Fatal("any-match should fail when no code is granted")
	}
	if RoleGroupPoiUser.GrantsAny() {
		t.Fatal("empty permission set grants nothing")
	}
}

func TestRoleGroupAdminGrantsEverything(t *testing.T) {
	for _, perm := range validPermissions {
		if !RoleGroupPoiAdmin.Grants(perm) {
			t.Fatalf("poi admin missing %s", perm)
		}
	}
}

func TestParseRoleGroup(t *testing.T) {
	parsed, err := ParseRoleGroup("POI user")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != RoleGroupPoiUser {
		t.Fatalf("unexpected role group %s", parsed)
	}
	if _, err := ParseRoleGroup("warehouse admin"); err == nil {
		t.Fatal("expected error for unknown group")
	}
}

func TestShipmentStatusIsOpen(t *testing.T) {
	if !ShipmentStatusToDo.IsOpen() || !ShipmentStatusInProgress.IsOpen() {
		t.Fatal("to do and in progress must count as open")
	}
	if ShipmentStatusDone.IsOpen() {
		t.Fatal("done must not count as open")
	}
}

func TestNeedStatusTerminal(t *testing.T) {
	if NeedStatusActive.IsTerminal() {
		t.Fatal("active is not terminal")
	}
	if !NeedStatusDisabled.IsTerminal() || !NeedStatusFulfilled.IsTerminal() {
		t.Fatal("disabled and fulfilled are terminal")
	}
}
