package domain

// Role names a coarse-grained authority level assigned to a user.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleSpecialist Role = "specialist"
	RoleStudent    Role = "student"
	RoleUser       Role = "user"
	RoleViewer     Role = "viewer"
	RoleSystem     Role = "system"
)

// Permission is a capability tag of the form resource:action.
type Permission string

const (
	PermVisaCreate  Permission = "visa:create"
	PermVisaRead    Permission = "visa:read"
	PermVisaUpdate  Permission = "visa:update"
	PermVisaDelete  Permission = "visa:delete"
	PermVisaReview  Permission = "visa:review"
	PermVisaApprove Permission = "visa:approve"

	PermMOUCreate  Permission = "mou:create"
	PermMOURead    Permission = "mou:read"
	PermMOUUpdate  Permission = "mou:update"
	PermMOUDelete  Permission = "mou:delete"
	PermMOUReview  Permission = "mou:review"
	PermMOUSign    Permission = "mou:sign"
	PermMOUApprove Permission = "mou:approve"

	PermTranslationCreate   Permission = "translation:create"
	PermTranslationRead     Permission = "translation:read"
	PermTranslationUpdate   Permission = "translation:update"
	PermTranslationDelete   Permission = "translation:delete"
	PermTranslationProcess  Permission = "translation:process"
	PermTranslationComplete Permission = "translation:complete"

	PermVisitorCreate  Permission = "visitor:create"
	PermVisitorRead    Permission = "visitor:read"
	PermVisitorUpdate  Permission = "visitor:update"
	PermVisitorDelete  Permission = "visitor:delete"
	PermVisitorReview  Permission = "visitor:review"
	PermVisitorApprove Permission = "visitor:approve"

	PermUserManage     Permission = "user:manage"
	PermRoleAssign     Permission = "role:assign"
	PermReportGenerate Permission = "report:generate"

	PermDocumentUpload Permission = "document:upload"
	PermDocumentVerify Permission = "document:verify"
	PermDocumentDelete Permission = "document:delete"
)

// rolePermissions is the static role → permission table. It is the single
// source of truth for authorization; roles absent from the table grant
// nothing.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermVisaCreate, PermVisaRead, PermVisaUpdate, PermVisaDelete, PermVisaReview, PermVisaApprove,
		PermMOUCreate, PermMOURead, PermMOUUpdate, PermMOUDelete, PermMOUReview, PermMOUSign, PermMOUApprove,
		PermTranslationCreate, PermTranslationRead, PermTranslationUpdate, PermTranslationDelete,
		PermTranslationProcess, PermTranslationComplete,
		PermVisitorCreate, PermVisitorRead, PermVisitorUpdate, PermVisitorDelete, PermVisitorReview, PermVisitorApprove,
		PermUserManage, PermRoleAssign, PermReportGenerate,
		PermDocumentUpload, PermDocumentVerify, PermDocumentDelete,
	},
	RoleManager: {
		PermVisaRead, PermVisaReview, PermVisaApprove,
		PermMOURead, PermMOUReview, PermMOUSign, PermMOUApprove,
		PermTranslationRead, PermTranslationProcess, PermTranslationComplete,
		PermVisitorRead, PermVisitorReview, PermVisitorApprove,
		PermReportGenerate, PermDocumentVerify,
	},
	RoleSpecialist: {
		PermVisaCreate, PermVisaRead, PermVisaUpdate, PermVisaReview,
		PermMOUCreate, PermMOURead, PermMOUUpdate, PermMOUReview,
		PermTranslationCreate, PermTranslationRead, PermTranslationUpdate,
		PermTranslationProcess, PermTranslationComplete,
		PermVisitorCreate, PermVisitorRead, PermVisitorUpdate, PermVisitorReview,
		PermReportGenerate, PermDocumentUpload, PermDocumentVerify,
	},
	RoleStudent: {
		PermVisaCreate, PermVisaRead, PermVisaUpdate, PermVisaDelete,
		PermTranslationCreate, PermTranslationRead, PermTranslationUpdate, PermTranslationDelete,
		PermDocumentUpload,
	},
	RoleUser: {
		PermVisaCreate, PermVisaRead, PermVisaUpdate, PermVisaDelete,
		PermMOUCreate, PermMOURead, PermMOUUpdate, PermMOUDelete,
		PermTranslationCreate, PermTranslationRead, PermTranslationUpdate, PermTranslationDelete,
		PermVisitorCreate, PermVisitorRead, PermVisitorUpdate, PermVisitorDelete,
		PermDocumentUpload,
	},
	RoleViewer: {
		PermVisaRead, PermMOURead, PermTranslationRead, PermVisitorRead,
	},
	RoleSystem: {
		PermVisaRead, PermMOURead, PermTranslationRead, PermVisitorRead,
		PermReportGenerate,
	},
}

// PermissionsForRole returns the permissions granted to the role. Unknown
// roles yield an empty slice.
func PermissionsForRole(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}

	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether any of the supplied roles grants the
// permission.
func HasPermission(roles []Role, perm Permission) bool {
	for _, role := range roles {
		for _, granted := range rolePermissions[role] {
			if granted == perm {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission reports whether the roles grant at least one of the
// supplied permissions.
func HasAnyPermission(roles []Role, perms ...Permission) bool {
	for _, perm := range perms {
		if HasPermission(roles, perm) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the roles grant every supplied
// permission.
func HasAllPermissions(roles []Role, perms ...Permission) bool {
	for _, perm := range perms {
		if !HasPermission(roles, perm) {
			return false
		}
	}
	return true
}

// HasRole reports whether the role list contains the given role.
func HasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// RolesFromStrings converts raw role names (e.g. from JWT claims) into Roles.
func RolesFromStrings(names []string) []Role {
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		roles = append(roles, Role(name))
	}
	return roles
}
