package acl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_RoleConstruction(t *testing.T) {
	g := Build([]uint{42}, []EventOwnership{{EventID: 50, OwnerID: 42}})

	assert.Contains(t, g.UserRoles[1], RoleAdmins)
	assert.Contains(t, g.UserRoles[1], "user-1-edit-role")
	assert.Contains(t, g.UserRoles[42], RoleContributors)
	assert.Contains(t, g.UserRoles[42], "user-42-edit-role")
	assert.Contains(t, g.UserRoles[42], "event-50-owner-role")

	assert.Equal(t, []string{PermView}, g.RolePermissions["event-50-view-role"]["event-50"])
	assert.Equal(t, []string{PermEdit, PermMakeCommit}, g.RolePermissions["event-50-edit-role"]["event-50"])
	assert.Equal(t,
		[]string{PermAddViewer, PermRemoveViewer, PermAddEditor, PermRemoveEditor},
		g.RolePermissions["event-50-manage-role"]["event-50"])
	assert.Empty(t, g.RolePermissions["event-50-owner-role"])

	assert.Equal(t, []string{"event-50-view-role"}, g.RoleParents["event-50-edit-role"])
	assert.Equal(t, []string{"event-50-edit-role"}, g.RoleParents["event-50-manage-role"])
	assert.Equal(t, []string{"event-50-manage-role"}, g.RoleParents["event-50-owner-role"])
	assert.Empty(t, g.RoleParents["event-50-view-role"])
}

func TestBuild_MirrorConsistency(t *testing.T) {
	g := Build([]uint{42, 43}, []EventOwnership{
		{EventID: 50, OwnerID: 42},
		{EventID: 51, OwnerID: 43},
	})

	// user->roles and role->users must be mirror images.
	for userID, roles := range g.UserRoles {
		for _, role := range roles {
			assert.Contains(t, g.RoleUsers[role], userID,
				"role %s missing user %d in inverse map", role, userID)
		}
	}
	for role, users := range g.RoleUsers {
		for _, userID := range users {
			assert.Contains(t, g.UserRoles[userID], role,
				"user %d missing role %s in forward map", userID, role)
		}
	}
}

func TestBuild_OwnerlessEventFallsToAdmin(t *testing.T) {
	g := Build(nil, []EventOwnership{{EventID: 7, OwnerID: 0}})
	assert.Contains(t, g.UserRoles[1], "event-7-owner-role")
}

func TestBuild_DeterministicOrder(t *testing.T) {
	a := Build([]uint{42, 43}, []EventOwnership{{EventID: 50, OwnerID: 42}})
	b := Build([]uint{42, 43}, []EventOwnership{{EventID: 50, OwnerID: 42}})
	require.Equal(t, a.RoleOrder, b.RoleOrder)
	require.Equal(t, a.UserOrder, b.UserOrder)
}
