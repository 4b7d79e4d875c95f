package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/gatherly/server/internal/auth"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	owners map[string]string
	err    error
}

func (f *fakeResolver) ResolveOwner(_ context.Context, _ Resource, id string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	owner, ok := f.owners[id]
	if !ok {
		return "", ErrNotFound
	}
	return owner, nil
}

func newEngine(owners map[string]string) *Engine {
	return NewEngine(&fakeResolver{owners: owners})
}

func owner(id string) Identity {
	return Identity{UserID: id, Role: auth.RoleEventOwner}
}

func admin(id string) Identity {
	return Identity{UserID: id, Role: auth.RoleAdmin}
}

func staff(id string) Identity {
	return Identity{UserID: id, Role: auth.RoleStaff}
}

func TestDecideDeniesUnlistedRolePairs(t *testing.T) {
	engine := newEngine(map[string]string{"e1": "u1"})

	cases := []struct {
		name     string
		identity Identity
		resource Resource
		action   Action
	}{
		{"staff cannot create events", staff("u9"), ResourceEvent, ActionCreate},
		{"admin cannot create events", admin("u9"), ResourceEvent, ActionCreate},
		{"staff cannot update events", staff("u9"), ResourceEvent, ActionUpdate},
		{"staff cannot delete events", staff("u9"), ResourceEvent, ActionDelete},
		{"staff cannot list rsvps", staff("u9"), ResourceRSVP, ActionList},
		{"admin cannot export rsvps", admin("u9"), ResourceRSVP, ActionExport},
		{"staff cannot export rsvps", staff("u9"), ResourceRSVP, ActionExport},
		{"anonymous cannot read events", Anonymous(), ResourceEvent, ActionRead},
		{"anonymous cannot list mine", Anonymous(), ResourceEvent, ActionListMine},
		{"anonymous cannot list rsvps", Anonymous(), ResourceRSVP, ActionList},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := engine.Decide(context.Background(), tc.identity, tc.resource, tc.action, "e1")
			require.NoError(t, err)
			require.False(t, decision.Allowed)
			require.Equal(t, DenyForbidden, decision.Reason)
		})
	}
}

func TestDecideUnrecognizedRoleIsAnonymous(t *testing.T) {
	engine := newEngine(map[string]string{"e1": "u1"})

	identity := Identity{UserID: "u1", Role: auth.Role("SUPERUSER")}
	decision, err := engine.Decide(context.Background(), identity, ResourceEvent, ActionRead, "")
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, DenyForbidden, decision.Reason)

	// Rows open to anyone still allow it.
	decision, err = engine.Decide(context.Background(), identity, ResourceEvent, ActionList, "")
	require.NoError(t, err)
	require.True(t, decision.Allowed)
}

func TestDecideMissingEventIsNotFoundForEveryRole(t *testing.T) {
	engine := newEngine(map[string]string{"e1": "u1"})

	for _, identity := range []Identity{owner("u1"), owner("u2"), admin("a1")} {
		for _, action := range []Action{ActionUpdate, ActionDelete} {
			decision, err := engine.Decide(context.Background(), identity, ResourceEvent, action, "missing")
			require.NoError(t, err)
			require.False(t, decision.Allowed)
			require.Equal(t, DenyNotFound, decision.Reason, "role %s action %s", identity.Role, action)
		}
	}

	// The ADMIN waiver skips the ownership comparison, never the
	// existence check.
	decision, err := engine.Decide(context.Background(), admin("a1"), ResourceRSVP, ActionList, "missing")
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, DenyNotFound, decision.Reason)
}

func TestDecideOwnershipForUpdateDelete(t *testing.T) {
	engine := newEngine(map[string]string{"e1": "u2"})

	for _, action := range []Action{ActionUpdate, ActionDelete} {
		decision, err := engine.Decide(context.Background(), owner("u1"), ResourceEvent, action, "e1")
		require.NoError(t, err)
		require.False(t, decision.Allowed)
		require.Equal(t, DenyForbidden, decision.Reason)

		decision, err = engine.Decide(context.Background(), owner("u2"), ResourceEvent, action, "e1")
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}
}

func TestDecideAdminWaivesOwnership(t *testing.T) {
	engine := newEngine(map[string]string{"e1": "u2"})

	for _, action := range []Action{ActionUpdate, ActionDelete} {
		decision, err := engine.Decide(context.Background(), admin("a1"), ResourceEvent, action, "e1")
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	decision, err := engine.Decide(context.Background(), admin("a1"), ResourceRSVP, ActionList, "e1")
	require.NoError(t, err)
	require.True(t, decision.Allowed)
}

func TestDecideDeleteScenario(t *testing.T) {
	engine := newEngine(map[string]string{"e1": "u2"})

	decision, err := engine.Decide(context.Background(), owner("u1"), ResourceEvent, ActionDelete, "e1")
	require.NoError(t, err)
	require.Equal(t, Deny(DenyForbidden), decision)

	engine = newEngine(map[string]string{"e1": "u1"})
	decision, err = engine.Decide(context.Background(), owner("u1"), ResourceEvent, ActionDelete, "e1")
	require.NoError(t, err)
	require.True(t, decision.Allowed)
}

func TestDecideAnonymousRSVPCreate(t *testing.T) {
	engine := newEngine(map[string]string{"e1": "u1"})

	decision, err := engine.Decide(context.Background(), Anonymous(), ResourceRSVP, ActionCreate, "e1")
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = engine.Decide(context.Background(), Anonymous(), ResourceRSVP, ActionCreate, "missing")
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, DenyNotFound, decision.Reason)
}

func TestDecideExportRequiresExactOwner(t *testing.T) {
	engine := newEngine(map[string]string{"e1": "u1"})

	decision, err := engine.Decide(context.Background(), owner("u1"), ResourceRSVP, ActionExport, "e1")
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = engine.Decide(context.Background(), owner("u2"), ResourceRSVP, ActionExport, "e1")
	require.NoError(t, err)
	require.Equal(t, Deny(DenyForbidden), decision)
}

func TestDecideStoreFailurePropagates(t *testing.T) {
	boom := errors.New("connection refused")
	engine := NewEngine(&fakeResolver{err: boom})

	_, err := engine.Decide(context.Background(), owner("u1"), ResourceEvent, ActionUpdate, "e1")
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
}

func TestDecideUnknownPolicyRowPanics(t *testing.T) {
	engine := newEngine(nil)

	require.Panics(t, func() {
		_, _ = engine.Decide(context.Background(), admin("a1"), ResourceRSVP, ActionUpdate, "e1")
	})
}

func TestDecideReadAllowsAnyAuthenticated(t *testing.T) {
	engine := newEngine(nil)

	for _, identity := range []Identity{owner("u1"), admin("a1"), staff("s1")} {
		decision, err := engine.Decide(context.Background(), identity, ResourceEvent, ActionRead, "e1")
		require.NoError(t, err)
		require.True(t, decision.Allowed, "role %s", identity.Role)
	}
}
