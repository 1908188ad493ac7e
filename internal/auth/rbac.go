package auth

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed rbac_model.conf
var rbacModel string

// Actions derived from the HTTP method.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// Resources guarded by the enforcer.
const (
	ResourceUsers               = "users"
	ResourcePositions           = "positions"
	ResourceBuilders            = "builders"
	ResourceContacts            = "contacts"
	ResourceProjects            = "projects"
	ResourceResidentialProjects = "residential_projects"
	ResourceNotes               = "notes"
	ResourceDrawings            = "drawings"
)

var defaultPolicies = [][]string{
	{string(RoleMember), "*", ActionRead},
	{string(RoleMember), ResourceNotes, ActionWrite},
	{string(RoleMember), ResourceNotes, ActionDelete},
	{string(RoleMember), ResourceDrawings, ActionWrite},
	{string(RoleMember), ResourceDrawings, ActionDelete},

	{string(RoleManager), ResourceBuilders, ActionWrite},
	{string(RoleManager), ResourceBuilders, ActionDelete},
	{string(RoleManager), ResourceContacts, ActionWrite},
	{string(RoleManager), ResourceContacts, ActionDelete},
	{string(RoleManager), ResourceProjects, ActionWrite},
	{string(RoleManager), ResourceProjects, ActionDelete},
	{string(RoleManager), ResourceResidentialProjects, ActionWrite},
	{string(RoleManager), ResourceResidentialProjects, ActionDelete},

	{string(RoleAdmin), "*", "*"},
}

var defaultRoleInheritance = [][]string{
	{string(RoleManager), string(RoleMember)},
	{string(RoleAdmin), string(RoleManager)},
}

// Enforcer answers role/resource/action questions.
type Enforcer struct {
	e *casbin.SyncedEnforcer
}

// NewEnforcer builds the RBAC enforcer from the embedded model and the
// built-in policy set.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("parse rbac model: %w", err)
	}

	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create rbac enforcer: %w", err)
	}

	if _, err := e.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("load rbac policies: %w", err)
	}
	if _, err := e.AddGroupingPolicies(defaultRoleInheritance); err != nil {
		return nil, fmt.Errorf("load rbac role links: %w", err)
	}

	return &Enforcer{e: e}, nil
}

// Allowed reports whether role may perform action on resource.
func (en *Enforcer) Allowed(role Role, resource, action string) (bool, error) {
	return en.e.Enforce(string(role), resource, action)
}
