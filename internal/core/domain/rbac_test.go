package domain

import "testing"

func TestPermissionsForRole(t *testing.T) {
	adminPerms := PermissionsForRole(RoleAdmin)
	if len(adminPerms) == 0 {
		t.Fatal("admin role must grant permissions")
	}

	if perms := PermissionsForRole(Role("ghost")); perms != nil {
		t.Fatalf("unknown role granted permissions: %v", perms)
	}

	// Returned slice must be a copy, not the table itself.
	adminPerms[0] = Permission("mutated")
	if PermissionsForRole(RoleAdmin)[0] == Permission("mutated") {
		t.Fatal("PermissionsForRole exposed internal table")
	}
}

func TestHasPermission(t *testing.T) {
	cases := []struct {
		name  string
		roles []Role
		perm  Permission
		want  bool
	}{
		{"admin approves visas", []Role{RoleAdmin}, PermVisaApprove, true},
		{"student cannot approve visas", []Role{RoleStudent}, PermVisaApprove, false},
		{"student creates visas", []Role{RoleStudent}, PermVisaCreate, true},
		{"student has no mou access", []Role{RoleStudent}, PermMOURead, false},
		{"viewer reads only", []Role{RoleViewer}, PermVisaUpdate, false},
		{"manager signs mous", []Role{RoleManager}, PermMOUSign, true},
		{"manager cannot manage users", []Role{RoleManager}, PermUserManage, false},
		{"specialist completes translations", []Role{RoleSpecialist}, PermTranslationComplete, true},
		{"combined roles union", []Role{RoleViewer, RoleManager}, PermReportGenerate, true},
		{"no roles", nil, PermVisaRead, false},
		{"unknown role", []Role{Role("ghost")}, PermVisaRead, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasPermission(tc.roles, tc.perm); got != tc.want {
				t.Fatalf("HasPermission(%v, %s) = %v, want %v", tc.roles, tc.perm, got, tc.want)
			}
		})
	}
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	roles := []Role{RoleStudent}

	if !HasAnyPermission(roles, PermMOUSign, PermVisaCreate) {
		t.Fatal("expected any-match on visa:create")
	}
	if HasAnyPermission(roles, PermMOUSign, PermUserManage) {
		t.Fatal("unexpected any-match")
	}

	if !HasAllPermissions(roles, PermVisaCreate, PermVisaRead) {
		t.Fatal("expected all-match on student visa permissions")
	}
	if HasAllPermissions(roles, PermVisaCreate, PermVisaApprove) {
		t.Fatal("unexpected all-match including visa:approve")
	}
}

func TestActorHelpers(t *testing.T) {
	admin := Actor{ID: "u1", Roles: []Role{RoleAdmin}}
	student := Actor{ID: "u2", Roles: []Role{RoleStudent}}

	if !admin.IsAdmin() {
		t.Fatal("admin actor not recognized")
	}
	if student.IsAdmin() {
		t.Fatal("student actor recognized as admin")
	}
	if !student.Can(PermDocumentUpload) {
		t.Fatal("student should upload documents")
	}
	if student.Can(PermDocumentVerify) {
		t.Fatal("student should not verify documents")
	}
}

func TestRolesFromStrings(t *testing.T) {
	roles := RolesFromStrings([]string{"admin", "viewer"})
	if len(roles) != 2 || roles[0] != RoleAdmin || roles[1] != RoleViewer {
		t.Fatalf("unexpected conversion: %v", roles)
	}
}
