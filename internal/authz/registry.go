package authz

// Role names are fixed at setup time. Anything else fails closed.
const (
	RoleAdmin          = "admin"
	RoleLDHoD          = "ld_hod"
	RoleLDCoordinator  = "ld_coordinator"
	RoleDepartmentHoD  = "dept_hod"
	RoleMentor         = "mentor"
	RoleTrainee        = "trainee"
)

// Actions are the permission strings consulted by handlers and middleware.
const (
	ActionAccessRequestsReview = "access_requests.review"
	ActionAccessRequestsList   = "access_requests.list"

	ActionInternshipsCreate   = "internships.create"
	ActionInternshipsReview   = "internships.review"
	ActionInternshipsApprove  = "internships.approve"
	ActionInternshipsReject   = "internships.reject"
	ActionInternshipsComplete = "internships.complete"
	ActionInternshipsListAll  = "internships.list_all"
	ActionInternshipsListDept = "internships.list_dept"

	ActionMentorsAssign      = "mentors.assign"
	ActionMentorsAcknowledge = "mentors.acknowledge"

	ActionReportsSubmit = "reports.submit"
	ActionReportsReview = "reports.review"

	ActionUsersManage  = "users.manage"
	ActionUsersViewAll = "users.view_all"

	ActionDashboardView = "dashboard.view"
)

// ScopeKind bounds which records a role may see in listings and aggregates.
type ScopeKind string

const (
	ScopeOrganization ScopeKind = "organization"
	ScopeDepartment   ScopeKind = "department"
	ScopeAssigned     ScopeKind = "assigned"
	ScopeSelf         ScopeKind = "self"
	ScopeNone         ScopeKind = "none"
)

// DashboardVariant selects which dashboard the presentation layer renders.
type DashboardVariant string

const (
	DashboardAdmin       DashboardVariant = "admin"
	DashboardLDHoD       DashboardVariant = "ld_hod"
	DashboardCoordinator DashboardVariant = "coordinator"
	DashboardDepartment  DashboardVariant = "department"
	DashboardMentor      DashboardVariant = "mentor"
	DashboardTrainee     DashboardVariant = "trainee"
	DashboardDefault     DashboardVariant = "default"
)

// NavItem is one entry in a role's navigation, ordered as rendered.
type NavItem struct {
	Label   string `json:"label"`
	Route   string `json:"route"`
	IconKey string `json:"icon_key"`
}

type roleEntry struct {
	permissions map[string]struct{}
	navigation  []NavItem
	dashboard   DashboardVariant
	scope       ScopeKind
}

// registry is the single source of truth for what each role may do. Handlers
// never branch on role names directly; they ask CanPerform.
var registry = map[string]roleEntry{
	RoleAdmin: {
		permissions: permSet(
			ActionAccessRequestsReview, ActionAccessRequestsList,
			ActionInternshipsCreate, ActionInternshipsReview, ActionInternshipsApprove,
			ActionInternshipsReject, ActionInternshipsComplete,
			ActionInternshipsListAll, ActionInternshipsListDept,
			ActionMentorsAssign, ActionMentorsAcknowledge,
			ActionReportsSubmit, ActionReportsReview,
			ActionUsersManage, ActionUsersViewAll,
			ActionDashboardView,
		),
		navigation: []NavItem{
			{Label: "Dashboard", Route: "/dashboard", IconKey: "home"},
			{Label: "Access Requests", Route: "/access-requests", IconKey: "user-plus"},
			{Label: "Internship Requests", Route: "/internships", IconKey: "clipboard"},
			{Label: "Users", Route: "/users", IconKey: "users"},
			{Label: "Departments", Route: "/departments", IconKey: "building"},
		},
		dashboard: DashboardAdmin,
		scope:     ScopeOrganization,
	},
	RoleLDHoD: {
		permissions: permSet(
			ActionAccessRequestsList,
			ActionInternshipsReview, ActionInternshipsApprove, ActionInternshipsReject,
			ActionInternshipsComplete, ActionInternshipsListAll,
			ActionReportsReview,
			ActionUsersViewAll,
			ActionDashboardView,
		),
		navigation: []NavItem{
			{Label: "Dashboard", Route: "/dashboard", IconKey: "home"},
			{Label: "Internship Requests", Route: "/internships", IconKey: "clipboard"},
			{Label: "Reports", Route: "/reports", IconKey: "file-text"},
		},
		dashboard: DashboardLDHoD,
		scope:     ScopeOrganization,
	},
	RoleLDCoordinator: {
		permissions: permSet(
			ActionInternshipsCreate, ActionInternshipsReview, ActionInternshipsReject,
			ActionInternshipsListAll,
			ActionDashboardView,
		),
		navigation: []NavItem{
			{Label: "Dashboard", Route: "/dashboard", IconKey: "home"},
			{Label: "Intake", Route: "/internships/intake", IconKey: "inbox"},
			{Label: "Internship Requests", Route: "/internships", IconKey: "clipboard"},
		},
		dashboard: DashboardCoordinator,
		scope:     ScopeOrganization,
	},
	RoleDepartmentHoD: {
		permissions: permSet(
			ActionInternshipsListDept,
			ActionMentorsAssign, ActionMentorsAcknowledge,
			ActionDashboardView,
		),
		navigation: []NavItem{
			{Label: "Dashboard", Route: "/dashboard", IconKey: "home"},
			{Label: "Department Requests", Route: "/internships/department", IconKey: "clipboard"},
			{Label: "Mentors", Route: "/mentors", IconKey: "users"},
		},
		dashboard: DashboardDepartment,
		scope:     ScopeDepartment,
	},
	RoleMentor: {
		permissions: permSet(
			ActionMentorsAcknowledge,
			ActionReportsReview,
			ActionDashboardView,
		),
		navigation: []NavItem{
			{Label: "Dashboard", Route: "/dashboard", IconKey: "home"},
			{Label: "My Trainees", Route: "/mentorship/trainees", IconKey: "users"},
			{Label: "Reports", Route: "/reports", IconKey: "file-text"},
		},
		dashboard: DashboardMentor,
		scope:     ScopeAssigned,
	},
	RoleTrainee: {
		permissions: permSet(
			ActionInternshipsCreate,
			ActionReportsSubmit,
			ActionDashboardView,
		),
		navigation: []NavItem{
			{Label: "Dashboard", Route: "/dashboard", IconKey: "home"},
			{Label: "My Internship", Route: "/internships/mine", IconKey: "clipboard"},
			{Label: "Progress Reports", Route: "/reports/mine", IconKey: "file-text"},
		},
		dashboard: DashboardTrainee,
		scope:     ScopeSelf,
	},
}

func permSet(actions ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// CanPerform reports whether the role may perform the action. Unknown roles
// and unknown actions return false; the caller decides whether that is a UI
// hide or a hard 403.
func CanPerform(role, action string) bool {
	entry, ok := registry[role]
	if !ok {
		return false
	}
	_, allowed := entry.permissions[action]
	return allowed
}

// NavigationFor returns the ordered navigation for the role. An unknown role
// gets an empty navigation rather than an error so page composition never
// breaks on a bad role string.
func NavigationFor(role string) []NavItem {
	entry, ok := registry[role]
	if !ok {
		return []NavItem{}
	}
	nav := make([]NavItem, len(entry.navigation))
	copy(nav, entry.navigation)
	return nav
}

// DashboardVariantFor returns the dashboard variant for the role, or the
// default variant for unknown roles.
func DashboardVariantFor(role string) DashboardVariant {
	entry, ok := registry[role]
	if !ok {
		return DashboardDefault
	}
	return entry.dashboard
}

// ScopeFor returns the record-visibility scope of the role. Unknown roles see
// nothing.
func ScopeFor(role string) ScopeKind {
	entry, ok := registry[role]
	if !ok {
		return ScopeNone
	}
	return entry.scope
}

// PermissionsFor returns the role's permission names, primarily for tokens
// and the /users/me payload. Order is not guaranteed.
func PermissionsFor(role string) []string {
	entry, ok := registry[role]
	if !ok {
		return []string{}
	}
	perms := make([]string, 0, len(entry.permissions))
	for p := range entry.permissions {
		perms = append(perms, p)
	}
	return perms
}

// KnownRoles lists all registered role names.
func KnownRoles() []string {
	return []string{RoleAdmin, RoleLDHoD, RoleLDCoordinator, RoleDepartmentHoD, RoleMentor, RoleTrainee}
}

// IsKnownRole reports whether the role exists in the registry.
func IsKnownRole(role string) bool {
	_, ok := registry[role]
	return ok
}
