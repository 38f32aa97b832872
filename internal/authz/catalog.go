// Package authz holds the static permission and role catalog and decides
// whether an actor may exercise a permission against a removal.
package authz

// Scope is the breadth over which a permission applies.
type Scope string

const (
	ScopeOwn        Scope = "own"
	ScopeDepartment Scope = "department"
	ScopeGlobal     Scope = "global"
)

// PermissionName identifies a permission in the catalog.
type PermissionName string

const (
	CreateRemoval         PermissionName = "create_removal"
	ViewOwnRemoval        PermissionName = "view_own_removal"
	ApproveLevel2         PermissionName = "approve_level_2"
	ViewDepartmentRemoval PermissionName = "view_department_removal"
	RecheckExtension      PermissionName = "recheck_extension"
	ApproveLevel3         PermissionName = "approve_level_3"
	ViewLevel3Removal     PermissionName = "view_level_3_removal"
	ApproveLevel4         PermissionName = "approve_level_4"
	ViewLevel4Removal     PermissionName = "view_level_4_removal"
	ApproveSecurity       PermissionName = "approve_security"
	RecordReturn          PermissionName = "record_return"
	ManageExtension       PermissionName = "manage_extension"
	ViewSecurityRemoval   PermissionName = "view_security_removal"
	CreateReport          PermissionName = "create_report"
	AdminAccess           PermissionName = "admin_access"
	OverrideWorkflow      PermissionName = "override_workflow"
	ConfigureSystem       PermissionName = "configure_system"
)

// RoleName identifies a role in the catalog.
type RoleName string

const (
	RoleLevel1   RoleName = "LEVEL_1"
	RoleLevel2   RoleName = "LEVEL_2"
	RoleLevel3   RoleName = "LEVEL_3"
	RoleLevel4   RoleName = "LEVEL_4"
	RoleSecurity RoleName = "SECURITY"
	RoleAdmin    RoleName = "ADMIN"
)

// PermissionDef is one catalog entry.
type PermissionDef struct {
	Name        PermissionName `json:"name"`
	Scope       Scope          `json:"scope"`
	Group       string         `json:"group"`
	Description string         `json:"description"`
}

// RoleDef is a named, ordered set of permissions.
type RoleDef struct {
	Name        RoleName         `json:"name"`
	Level       int              `json:"level"`
	Description string           `json:"description"`
	Permissions []PermissionName `json:"permissions"`
}

var permissionCatalog = []PermissionDef{
	{CreateRemoval, ScopeOwn, "removals", "Create and submit removal requests"},
	{ViewOwnRemoval, ScopeOwn, "removals", "View own removal requests"},
	{ApproveLevel2, ScopeDepartment, "approvals", "Department approval"},
	{ViewDepartmentRemoval, ScopeDepartment, "removals", "View removals of own departments"},
	{RecheckExtension, ScopeDepartment, "extensions", "Re-check return date extensions"},
	{ApproveLevel3, ScopeGlobal, "approvals", "Finance approval"},
	{ViewLevel3Removal, ScopeGlobal, "removals", "View removals awaiting finance approval"},
	{ApproveLevel4, ScopeGlobal, "approvals", "Management approval"},
	{ViewLevel4Removal, ScopeGlobal, "removals", "View removals awaiting management approval"},
	{ApproveSecurity, ScopeGlobal, "approvals", "Security approval"},
	{RecordReturn, ScopeGlobal, "returns", "Record asset returns"},
	{ManageExtension, ScopeGlobal, "extensions", "Request return date extensions"},
	{ViewSecurityRemoval, ScopeGlobal, "removals", "View removals at the security desk"},
	{CreateReport, ScopeGlobal, "reports", "Generate removal documents"},
	{AdminAccess, ScopeGlobal, "admin", "Full administrative access"},
	{OverrideWorkflow, ScopeGlobal, "admin", "Bypass workflow status checks"},
	{ConfigureSystem, ScopeGlobal, "admin", "Configure reference data"},
}

var roleCatalog = []RoleDef{
	{RoleLevel1, 1, "Employee requesting removals", []PermissionName{CreateRemoval, ViewOwnRemoval}},
	{RoleLevel2, 2, "Department approver", []PermissionName{ApproveLevel2, ViewDepartmentRemoval, RecheckExtension}},
	{RoleLevel3, 3, "Finance approver", []PermissionName{ApproveLevel3, ViewLevel3Removal}},
	{RoleLevel4, 4, "Management approver", []PermissionName{ApproveLevel4, ViewLevel4Removal}},
	{RoleSecurity, 5, "Security desk", []PermissionName{ApproveSecurity, RecordReturn, ManageExtension, ViewSecurityRemoval, CreateReport}},
	{RoleAdmin, 6, "Administrator", []PermissionName{AdminAccess, OverrideWorkflow, ConfigureSystem, CreateReport}},
}

var (
	permissionsByName = make(map[PermissionName]PermissionDef, len(permissionCatalog))
	rolesByName       = make(map[RoleName]RoleDef, len(roleCatalog))
)

func init() {
	for _, p := range permissionCatalog {
		permissionsByName[p.Name] = p
	}
	for _, r := range roleCatalog {
		rolesByName[r.Name] = r
	}
}

// Permissions returns a copy of the permission catalog in definition order.
func Permissions() []PermissionDef {
	out := make([]PermissionDef, len(permissionCatalog))
	copy(out, permissionCatalog)
	return out
}

// Roles returns a copy of the role catalog ordered by level.
func Roles() []RoleDef {
	out := make([]RoleDef, 0, len(roleCatalog))
	for _, r := range roleCatalog {
		perms := make([]PermissionName, len(r.Permissions))
		copy(perms, r.Permissions)
		r.Permissions = perms
		out = append(out, r)
	}
	return out
}

// LookupPermission finds a permission by name.
func LookupPermission(name PermissionName) (PermissionDef, bool) {
	p, ok := permissionsByName[name]
	return p, ok
}

// LookupRole finds a role by name.
func LookupRole(name RoleName) (RoleDef, bool) {
	r, ok := rolesByName[name]
	return r, ok
}

// ScopeOf returns the catalog scope of a permission.
func ScopeOf(name PermissionName) (Scope, bool) {
	p, ok := permissionsByName[name]
	return p.Scope, ok
}
