package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkpress/inkpress/internal/roles"
)

func authenticated(id uint64, held ...roles.Role) Principal {
	return Principal{ID: id, Authenticated: true, Roles: roles.List(held)}
}

func TestEvaluateRegistration(t *testing.T) {
	testCases := []struct {
		name      string
		principal Principal
		expected  Decision
	}{
		{name: "anonymous may register", principal: Anonymous, expected: Allow},
		{name: "authenticated may not register", principal: authenticated(1), expected: Deny},
		{name: "superuser may not register either", principal: authenticated(1, roles.RoleSuperuser), expected: Deny},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.principal, ActionCreate, ResourceRegistration, Context{})
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestEvaluateUser(t *testing.T) {
	superuser := authenticated(1, roles.RoleSuperuser)
	admin := authenticated(2, roles.RoleAdmin)
	plain := authenticated(3)

	testCases := []struct {
		name      string
		principal Principal
		action    Action
		expected  Decision
	}{
		{name: "anonymous list", principal: Anonymous, action: ActionList, expected: Allow},
		{name: "anonymous read", principal: Anonymous, action: ActionRead, expected: Allow},
		{name: "anonymous create", principal: Anonymous, action: ActionCreate, expected: Deny},
		{name: "anonymous delete", principal: Anonymous, action: ActionDelete, expected: Deny},
		{name: "plain user read", principal: plain, action: ActionRead, expected: Allow},
		{name: "plain user update", principal: plain, action: ActionUpdate, expected: Deny},
		{name: "admin is not enough to mutate", principal: admin, action: ActionCreate, expected: Deny},
		{name: "superuser create", principal: superuser, action: ActionCreate, expected: Allow},
		{name: "superuser update", principal: superuser, action: ActionUpdate, expected: Allow},
		{name: "superuser delete", principal: superuser, action: ActionDelete, expected: Allow},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.principal, tc.action, ResourceUser, Context{})
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestEvaluateRoleRequest(t *testing.T) {
	const ownerID = 7

	owner := authenticated(ownerID)
	other := authenticated(8)
	admin := authenticated(9, roles.RoleAdmin)
	superuser := authenticated(10, roles.RoleSuperuser)

	ctx := Context{OwnerID: ownerID}

	testCases := []struct {
		name      string
		principal Principal
		action    Action
		expected  Decision
	}{
		{name: "anonymous list", principal: Anonymous, action: ActionList, expected: Deny},
		{name: "anonymous read", principal: Anonymous, action: ActionRead, expected: Deny},
		{name: "anonymous create", principal: Anonymous, action: ActionCreate, expected: Deny},
		{name: "authenticated list", principal: other, action: ActionList, expected: Allow},
		{name: "authenticated create", principal: other, action: ActionCreate, expected: Allow},
		{name: "owner read", principal: owner, action: ActionRead, expected: Allow},
		{name: "other read", principal: other, action: ActionRead, expected: Deny},
		{name: "admin read", principal: admin, action: ActionRead, expected: Allow},
		{name: "superuser read", principal: superuser, action: ActionRead, expected: Allow},
		{name: "owner update", principal: owner, action: ActionUpdate, expected: Allow},
		{name: "owner delete", principal: owner, action: ActionDelete, expected: Allow},
		{name: "other update", principal: other, action: ActionUpdate, expected: Deny},
		// admin and superuser can view but not modify others' requests
		{name: "admin update", principal: admin, action: ActionUpdate, expected: Deny},
		{name: "admin delete", principal: admin, action: ActionDelete, expected: Deny},
		{name: "superuser update", principal: superuser, action: ActionUpdate, expected: Deny},
		{name: "superuser delete", principal: superuser, action: ActionDelete, expected: Deny},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.principal, tc.action, ResourceRoleRequest, ctx)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestEvaluatePostHasNoPermissionGate(t *testing.T) {
	// ownership of posts is enforced by the data layer as a validation
	// error, never as a permission denial
	for _, action := range []Action{ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete} {
		assert.Equal(t, Allow, Evaluate(Anonymous, action, ResourcePost, Context{}))
		assert.Equal(t, Allow, Evaluate(Anonymous, action, ResourceBody, Context{}))
	}
}

func TestEvaluateHasNoSideEffects(t *testing.T) {
	p := authenticated(1, roles.RoleAdmin)
	before := make(roles.List, len(p.Roles))
	copy(before, p.Roles)

	_ = Evaluate(p, ActionUpdate, ResourceRoleRequest, Context{OwnerID: 2})
	_ = Evaluate(p, ActionCreate, ResourceUser, Context{})

	assert.Equal(t, before, p.Roles)
}
