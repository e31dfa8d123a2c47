// Package acl builds the role/permission hierarchy covering
// administrators, contributors and per-event ownership, and seeds it into
// the cache store and the relational store so the two remain equivalent.
package acl

import (
	"fmt"

	"waveline/internal/infrastructure/persistence/models"
)

// Well-known role names.
const (
	RoleAdmins       = "admins"
	RoleContributors = "contributors"
)

// Permission strings.
const (
	PermView         = "view"
	PermEdit         = "edit"
	PermMakeCommit   = "makeCommit"
	PermAddViewer    = "addViewer"
	PermRemoveViewer = "removeViewer"
	PermAddEditor    = "addEditor"
	PermRemoveEditor = "removeEditor"
)

func UserResource(userID uint) string {
	return fmt.Sprintf("user-%d", userID)
}

func EventResource(eventID uint) string {
	return fmt.Sprintf("event-%d", eventID)
}

func UserEditRole(userID uint) string {
	return fmt.Sprintf("user-%d-edit-role", userID)
}

func EventViewRole(eventID uint) string {
	return fmt.Sprintf("event-%d-view-role", eventID)
}

func EventEditRole(eventID uint) string {
	return fmt.Sprintf("event-%d-edit-role", eventID)
}

func EventManageRole(eventID uint) string {
	return fmt.Sprintf("event-%d-manage-role", eventID)
}

func EventOwnerRole(eventID uint) string {
	return fmt.Sprintf("event-%d-owner-role", eventID)
}

// EventOwnership names an event and its resolved owner.
type EventOwnership struct {
	EventID uint
	OwnerID uint
}

// Graph is the in-memory role/permission hierarchy. UserRoles and
// RoleUsers are mirror images of each other; RoleParents is an explicit
// inheritance edge list, never flattened here — permission resolution via
// inheritance is the store evaluator's concern.
type Graph struct {
	UserRoles       map[uint][]string
	RoleUsers       map[string][]uint
	RolePermissions map[string]map[string][]string
	RoleParents     map[string][]string

	// Deterministic write order.
	UserOrder []uint
	RoleOrder []string
}

func newGraph() *Graph {
	return &Graph{
		UserRoles:       make(map[uint][]string),
		RoleUsers:       make(map[string][]uint),
		RolePermissions: make(map[string]map[string][]string),
		RoleParents:     make(map[string][]string),
	}
}

func (g *Graph) touchRole(role string) {
	if _, ok := g.RolePermissions[role]; ok {
		return
	}
	g.RolePermissions[role] = make(map[string][]string)
	g.RoleOrder = append(g.RoleOrder, role)
}

func (g *Graph) assign(userID uint, role string) {
	g.touchRole(role)
	if _, ok := g.UserRoles[userID]; !ok {
		g.UserOrder = append(g.UserOrder, userID)
	}
	g.UserRoles[userID] = append(g.UserRoles[userID], role)
	g.RoleUsers[role] = append(g.RoleUsers[role], userID)
}

func (g *Graph) grant(role, resource string, perms ...string) {
	g.touchRole(role)
	g.RolePermissions[role][resource] = append(g.RolePermissions[role][resource], perms...)
}

func (g *Graph) inherit(role string, parents ...string) {
	g.touchRole(role)
	g.RoleParents[role] = append(g.RoleParents[role], parents...)
}

// Build constructs the full graph. contributorIDs are the distinct
// non-administrator owner ids; events carry each event's resolved owner.
func Build(contributorIDs []uint, events []EventOwnership) *Graph {
	g := newGraph()

	g.assign(models.AdminID, RoleAdmins)
	for _, id := range contributorIDs {
		g.assign(id, RoleContributors)
	}

	// Every user, administrator included, may edit itself.
	for _, id := range append([]uint{models.AdminID}, contributorIDs...) {
		selfRole := UserEditRole(id)
		g.grant(selfRole, UserResource(id), PermEdit)
		g.assign(id, selfRole)
	}

	// Per event: a linear inheritance chain view <- edit <- manage <- owner.
	for _, ev := range events {
		resource := EventResource(ev.EventID)
		view := EventViewRole(ev.EventID)
		edit := EventEditRole(ev.EventID)
		manage := EventManageRole(ev.EventID)
		owner := EventOwnerRole(ev.EventID)

		g.grant(view, resource, PermView)
		g.grant(edit, resource, PermEdit, PermMakeCommit)
		g.inherit(edit, view)
		g.grant(manage, resource, PermAddViewer, PermRemoveViewer, PermAddEditor, PermRemoveEditor)
		g.inherit(manage, edit)
		g.touchRole(owner)
		g.inherit(owner, manage)

		ownerID := ev.OwnerID
		if ownerID == 0 {
			ownerID = models.AdminID
		}
		g.assign(ownerID, owner)
	}

	return g
}
