package auth

import "github.com/spicon/registration/internal/domain/entity"

// Permission names a single guarded capability. Handlers declare the
// permission they need; roles grant explicit sets. There is no role
// aliasing: a role holds exactly what its entry lists.
type Permission string

const (
	PermRegistrationsRead    Permission = "registrations:read"
	PermRegistrationsWrite   Permission = "registrations:write"
	PermRegistrationsApprove Permission = "registrations:approve"
	PermRegistrationsImport  Permission = "registrations:import"

	PermExpensesSubmit  Permission = "expenses:submit"
	PermExpensesApprove Permission = "expenses:approve"
	PermExpensesPay     Permission = "expenses:pay"
	PermExpensesRead    Permission = "expenses:read"

	PermSummaryRead Permission = "summary:read"
	PermUsersManage Permission = "users:manage"
)

// RolePermissions is the full authorization table
var RolePermissions = map[entity.Role][]Permission{
	entity.RoleChairperson: {
		PermRegistrationsRead, PermRegistrationsWrite, PermRegistrationsApprove,
		PermRegistrationsImport,
		PermExpensesRead, PermExpensesApprove, PermExpensesPay,
		PermSummaryRead, PermUsersManage,
	},
	entity.RoleRegionalCoordinator: {
		PermRegistrationsRead, PermRegistrationsWrite, PermRegistrationsApprove,
		PermRegistrationsImport,
		PermExpensesRead, PermExpensesApprove, PermExpensesPay,
		PermSummaryRead, PermUsersManage,
	},
	entity.RoleTreasurer: {
		PermRegistrationsRead,
		PermExpensesRead, PermExpensesApprove, PermExpensesPay,
		PermSummaryRead,
	},
	entity.RoleRegistrar: {
		PermRegistrationsRead, PermRegistrationsWrite, PermRegistrationsApprove,
		PermRegistrationsImport,
		PermSummaryRead,
	},
	entity.RoleCoordinator: {
		PermExpensesSubmit, PermExpensesRead,
	},
	entity.RoleLACConvener: {
		PermExpensesSubmit, PermExpensesRead,
	},
}

// HasPermission reports whether a role grants a permission
func HasPermission(role entity.Role, perm Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
