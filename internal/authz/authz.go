// Package authz implements the permission evaluator: a pure decision
// function consulted before every mutating or ownership-sensitive operation.
// It only inspects its inputs; callers resolve the principal's role set and
// apply the returned decision before touching any state.
package authz

import "github.com/inkpress/inkpress/internal/roles"

// Principal is the actor making a request, authenticated or anonymous.
type Principal struct {
	// ID is the user ID, zero for anonymous principals.
	ID uint64
	// Authenticated is true when the principal carries a valid session.
	Authenticated bool
	// Roles is the principal's role set, resolved against a consistent
	// snapshot within one request. Empty for anonymous principals and for
	// users without a role record.
	Roles roles.List
}

// Anonymous is the unauthenticated principal.
var Anonymous = Principal{}

// Action is the kind of operation being attempted.
type Action int

const (
	// ActionList is a read of a resource collection.
	ActionList Action = iota
	// ActionRead is a read of a single resource.
	ActionRead
	// ActionCreate creates a resource.
	ActionCreate
	// ActionUpdate mutates an existing resource.
	ActionUpdate
	// ActionDelete removes an existing resource.
	ActionDelete
)

// safe reports whether the action is read-only.
func (a Action) safe() bool {
	return a == ActionList || a == ActionRead
}

// Resource is the target resource kind of an operation.
type Resource int

const (
	// ResourceRegistration is the anonymous-only sign-up action.
	ResourceRegistration Resource = iota
	// ResourceUser is a user account.
	ResourceUser
	// ResourceRoleRequest is a role elevation request.
	ResourceRoleRequest
	// ResourcePost is a content post.
	ResourcePost
	// ResourceBody is a post's text content.
	ResourceBody
)

// Context carries resource ownership when relevant to the decision.
type Context struct {
	// OwnerID is the owning user of the target resource, zero when the
	// resource has no owner or the action targets a collection.
	OwnerID uint64
}

// Decision is the result of a permission evaluation.
type Decision int

const (
	// Deny rejects the action.
	Deny Decision = iota
	// Allow permits the action.
	Allow
)

// Allowed is a convenience predicate over the decision.
func (d Decision) Allowed() bool {
	return d == Allow
}

// Evaluate decides whether the principal may perform the action on the
// resource. Rules are evaluated in a fixed precedence; the function is pure
// and free of side effects.
func Evaluate(p Principal, action Action, resource Resource, ctx Context) Decision {
	switch resource {
	case ResourceRegistration:
		return evaluateRegistration(p)
	case ResourceUser:
		return evaluateUser(p, action)
	case ResourceRoleRequest:
		return evaluateRoleRequest(p, action, ctx)
	case ResourcePost, ResourceBody:
		// content ownership is a data-layer validation, not a permission gate
		return Allow
	}

	return Deny
}

// evaluateRegistration allows sign-up only for principals that are NOT
// authenticated.
func evaluateRegistration(p Principal) Decision {
	if p.Authenticated {
		return Deny
	}

	return Allow
}

// evaluateUser makes safe methods public and gates every mutation on the
// superuser role. Unauthenticated principals are always denied mutation.
func evaluateUser(p Principal, action Action) Decision {
	if action.safe() {
		return Allow
	}

	if !p.Authenticated {
		return Deny
	}

	if p.Roles.Has(roles.RoleSuperuser) {
		return Allow
	}

	return Deny
}

// evaluateRoleRequest applies the ownership gate. Reads are open to the
// owner and to admin/superuser; update and delete require strict ownership,
// which admin/superuser do not bypass. Collection reads are allowed for any
// authenticated principal; visibility filtering happens in the workflow
// layer.
func evaluateRoleRequest(p Principal, action Action, ctx Context) Decision {
	if !p.Authenticated {
		return Deny
	}

	switch action {
	case ActionList, ActionCreate:
		return Allow
	case ActionRead:
		if p.ID == ctx.OwnerID || p.Roles.HasAny(roles.RoleAdmin, roles.RoleSuperuser) {
			return Allow
		}

		return Deny
	case ActionUpdate, ActionDelete:
		if p.ID == ctx.OwnerID {
			return Allow
		}

		return Deny
	}

	return Deny
}
