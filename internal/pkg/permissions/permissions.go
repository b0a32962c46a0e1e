package permissions

// Permission names form a closed catalog, seeded at startup.
// End users never create permissions.

// Requests module
const (
	RequestsCreate  = "Requests.Create"
	RequestsEdit    = "Requests.Edit"
	RequestsDelete  = "Requests.Delete"
	RequestsViewOwn = "Requests.ViewOwn"
	RequestsViewAll = "Requests.ViewAll"
	RequestsApprove = "Requests.Approve"
	RequestsReject  = "Requests.Reject"
)

// Users module
const (
	UsersCreate  = "Users.Create"
	UsersEdit    = "Users.Edit"
	UsersDelete  = "Users.Delete"
	UsersViewAll = "Users.ViewAll"
)

// Roles module
const (
	RolesManage = "Roles.Manage"
)

// Admin module
const (
	AdminPanel = "Admin.Panel"
)

// Dashboard module
const (
	DashboardViewStats = "Dashboard.ViewStats"
)

// Definition describes one catalog entry
type Definition struct {
	Name        string
	Module      string
	Description string
}

// Catalog returns the full closed permission catalog
func Catalog() []Definition {
	return []Definition{
		{RequestsCreate, "Requests", "Create new requests"},
		{RequestsEdit, "Requests", "Edit own draft requests"},
		{RequestsDelete, "Requests", "Delete own draft requests"},
		{RequestsViewOwn, "Requests", "View own requests"},
		{RequestsViewAll, "Requests", "View all requests"},
		{RequestsApprove, "Requests", "Approve pending requests"},
		{RequestsReject, "Requests", "Reject pending requests"},
		{UsersCreate, "Users", "Create users"},
		{UsersEdit, "Users", "Edit users"},
		{UsersDelete, "Users", "Delete users"},
		{UsersViewAll, "Users", "View all users"},
		{RolesManage, "Roles", "Manage roles and their permissions"},
		{AdminPanel, "Admin", "Access the admin panel"},
		{DashboardViewStats, "Dashboard", "View dashboard statistics"},
	}
}
