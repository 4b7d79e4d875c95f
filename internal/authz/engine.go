package authz

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by an OwnerResolver when the resource id
// does not exist. Callers must keep it distinct from a Forbidden
// verdict: a missing resource is a 404, not a 403.
var ErrNotFound = errors.New("resource not found")

// OwnerResolver looks up the owning user id of a resource. RSVPs have
// no independent owner; RSVP actions resolve through the parent Event,
// so the resource id passed for RSVP rules is the event id.
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, resource Resource, id string) (string, error)
}

type DenyReason string

const (
	DenyForbidden DenyReason = "forbidden"
	DenyNotFound  DenyReason = "not_found"
)

// Decision is a typed verdict. Expected denials (role mismatch,
// missing resource) are values, never errors; only store failures
// propagate as errors from Decide.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Engine combines the policy table with an OwnerResolver to produce
// allow/deny verdicts. It holds no per-request state.
type Engine struct {
	resolver OwnerResolver
}

func NewEngine(resolver OwnerResolver) *Engine {
	return &Engine{resolver: resolver}
}

// Decide evaluates (identity, resource, action, resourceID) against
// the policy table.
//
// Existence is checked before ownership whenever both apply, so a
// missing resource always yields NotFound, never Forbidden; the error
// surface must not leak whether an id exists to callers who could not
// touch it anyway.
func (e *Engine) Decide(ctx context.Context, identity Identity, resource Resource, action Action, resourceID string) (Decision, error) {
	rule := lookupRule(resource, action)

	if !rule.permitsRole(identity) {
		return Deny(DenyForbidden), nil
	}

	// A waived ownership check still forces resolution: the resource
	// must exist before any role, ADMIN included, may touch it.
	if !rule.OwnershipRequired && !rule.ParentMustExist {
		return Allow(), nil
	}

	if e.resolver == nil {
		return Decision{}, fmt.Errorf("authz: %s/%s requires a resolver", resource, action)
	}

	ownerID, err := e.resolver.ResolveOwner(ctx, resource, resourceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Deny(DenyNotFound), nil
		}
		return Decision{}, fmt.Errorf("resolve owner of %s %q: %w", resource, resourceID, err)
	}

	if rule.OwnershipRequired && !rule.ownershipWaived(identity) && ownerID != identity.UserID {
		return Deny(DenyForbidden), nil
	}
	return Allow(), nil
}
