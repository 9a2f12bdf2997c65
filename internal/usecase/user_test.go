package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/infra/security"
)

func adminActor(id string) domain.Actor {
	return domain.Actor{ID: id, Roles: []domain.Role{domain.RoleAdmin}}
}

func newUserService(users *userRepoMock, events *eventPublisherMock) *UserService {
	return NewUserService(users, security.DefaultPasswordValidator(), events).WithClock(testClock)
}

func TestUserCreate(t *testing.T) {
	users := &userRepoMock{}
	events := &eventPublisherMock{}
	svc := newUserService(users, events)

	input := CreateUserInput{
		Email:      " New.Staff@uni.example ",
		Password:   "Office-Gate-2026!",
		FullName:   "New Staff",
		Department: "International Cooperation",
		Roles:      []domain.Role{domain.RoleSpecialist},
	}

	user, err := svc.Create(context.Background(), adminActor("admin-1"), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Email != "new.staff@uni.example" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash != "" {
		t.Fatal("password hash leaked in response")
	}
	if user.Status != domain.UserStatusActive {
		t.Fatalf("status = %s", user.Status)
	}

	stored := users.users[user.ID]
	if stored.PasswordHash == "" || stored.PasswordHash == input.Password {
		t.Fatal("stored password not hashed")
	}
	if roles := users.roles[user.ID]; len(roles) != 1 || roles[0] != domain.RoleSpecialist {
		t.Fatalf("roles not assigned: %v", roles)
	}

	if len(events.userCreated) != 1 || events.userCreated[0].CreatedBy != "admin-1" {
		t.Fatalf("user created event: %+v", events.userCreated)
	}
	if len(events.rolesAssigned) != 1 {
		t.Fatalf("roles assigned event: %+v", events.rolesAssigned)
	}
}

func TestUserCreateRejections(t *testing.T) {
	users := &userRepoMock{}
	users.add(domain.User{ID: "u1", Email: "taken@uni.example", Status: domain.UserStatusActive})
	svc := newUserService(users, nil)
	admin := adminActor("admin-1")

	base := CreateUserInput{
		Email:    "fresh@uni.example",
		Password: "Office-Gate-2026!",
		FullName: "Fresh Person",
	}

	if _, err := svc.Create(context.Background(), specialistActor("s1"), base); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("non-admin create err = %v, want permission denied", err)
	}

	dup := base
	dup.Email = "taken@uni.example"
	if _, err := svc.Create(context.Background(), admin, dup); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate email err = %v, want email taken", err)
	}

	ghost := base
	ghost.Roles = []domain.Role{domain.Role("ghost")}
	if _, err := svc.Create(context.Background(), admin, ghost); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("unknown role err = %v, want unknown role", err)
	}

	weak := base
	weak.Password = "password"
	if _, err := svc.Create(context.Background(), admin, weak); !errors.Is(err, ErrValidation) {
		t.Fatalf("weak password err = %v, want validation", err)
	}

	noName := base
	noName.FullName = "  "
	if _, err := svc.Create(context.Background(), admin, noName); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing name err = %v, want validation", err)
	}
}

func TestUserSetStatus(t *testing.T) {
	users := &userRepoMock{}
	users.add(domain.User{ID: "admin-1", Email: "admin@uni.example", Status: domain.UserStatusActive})
	users.add(domain.User{ID: "u2", Email: "staff@uni.example", Status: domain.UserStatusActive})
	svc := newUserService(users, nil)
	admin := adminActor("admin-1")

	if err := svc.SetStatus(context.Background(), admin, "admin-1", domain.UserStatusLocked); !errors.Is(err, ErrValidation) {
		t.Fatalf("self lock err = %v, want validation", err)
	}
	if err := svc.SetStatus(context.Background(), admin, "u2", domain.UserStatus("frozen")); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown status err = %v, want validation", err)
	}

	if err := svc.SetStatus(context.Background(), admin, "u2", domain.UserStatusInactive); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if users.users["u2"].Status != domain.UserStatusInactive {
		t.Fatalf("status not persisted: %s", users.users["u2"].Status)
	}
}

func TestUserRoleManagement(t *testing.T) {
	users := &userRepoMock{}
	users.add(domain.User{ID: "admin-1", Email: "admin@uni.example", Status: domain.UserStatusActive})
	users.add(domain.User{ID: "u2", Email: "staff@uni.example", Status: domain.UserStatusActive})
	events := &eventPublisherMock{}
	svc := newUserService(users, events)
	admin := adminActor("admin-1")

	if err := svc.AssignRoles(context.Background(), admin, "u2", []domain.Role{domain.RoleManager}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if roles := users.roles["u2"]; len(roles) != 1 || roles[0] != domain.RoleManager {
		t.Fatalf("roles = %v", roles)
	}
	if len(events.rolesAssigned) != 1 {
		t.Fatal("assign event not published")
	}

	if err := svc.AssignRoles(context.Background(), admin, "u2", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty roles err = %v, want validation", err)
	}
	if err := svc.AssignRoles(context.Background(), admin, "u2", []domain.Role{domain.Role("ghost")}); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("unknown role err = %v, want unknown role", err)
	}

	if err := svc.RevokeRoles(context.Background(), admin, "admin-1", []domain.Role{domain.RoleAdmin}, "cleanup"); !errors.Is(err, ErrValidation) {
		t.Fatalf("self admin revoke err = %v, want validation", err)
	}

	if err := svc.RevokeRoles(context.Background(), admin, "u2", []domain.Role{domain.RoleManager}, "rotation"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if roles := users.roles["u2"]; len(roles) != 0 {
		t.Fatalf("roles not revoked: %v", roles)
	}
	if len(events.rolesRevoked) != 1 || events.rolesRevoked[0].Reason != "rotation" {
		t.Fatalf("revoke event: %+v", events.rolesRevoked)
	}
}

func TestUserChangePassword(t *testing.T) {
	hash, err := security.HashPassword("Office-Gate-2026!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	users := &userRepoMock{}
	users.add(domain.User{ID: "u1", Email: "staff@uni.example", PasswordHash: hash, Status: domain.UserStatusActive})
	svc := newUserService(users, nil)
	actor := domain.Actor{ID: "u1", Roles: []domain.Role{domain.RoleSpecialist}}

	if err := svc.ChangePassword(context.Background(), actor, "wrong", "Another-Gate-2027!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong current err = %v, want invalid credentials", err)
	}
	if err := svc.ChangePassword(context.Background(), actor, "Office-Gate-2026!", "short"); !errors.Is(err, ErrValidation) {
		t.Fatalf("weak next err = %v, want validation", err)
	}

	if err := svc.ChangePassword(context.Background(), actor, "Office-Gate-2026!", "Another-Gate-2027!"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	ok, err := security.VerifyPassword("Another-Gate-2027!", users.users["u1"].PasswordHash)
	if err != nil || !ok {
		t.Fatalf("new password not stored: ok=%v err=%v", ok, err)
	}
}

func TestUserGetAndUpdateScope(t *testing.T) {
	users := &userRepoMock{}
	users.add(domain.User{ID: "u1", Email: "staff@uni.example", FullName: "Staff One", Status: domain.UserStatusActive})
	users.add(domain.User{ID: "u2", Email: "other@uni.example", FullName: "Other", Status: domain.UserStatusActive})
	svc := newUserService(users, nil)
	self := domain.Actor{ID: "u1", Roles: []domain.Role{domain.RoleSpecialist}}

	if _, err := svc.Get(context.Background(), self, "u1"); err != nil {
		t.Fatalf("get own account: %v", err)
	}
	if _, err := svc.Get(context.Background(), self, "u2"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("get foreign account err = %v, want permission denied", err)
	}

	updated, err := svc.Update(context.Background(), self, "u1", UpdateUserInput{FullName: "Staff Renamed"})
	if err != nil {
		t.Fatalf("update own profile: %v", err)
	}
	if updated.FullName != "Staff Renamed" {
		t.Fatalf("name = %s", updated.FullName)
	}
	if _, err := svc.Update(context.Background(), self, "u2", UpdateUserInput{FullName: "X"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("update foreign profile err = %v, want permission denied", err)
	}
}
