package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
)

var testClock = func() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func studentActor(id string) domain.Actor {
	return domain.Actor{ID: id, Roles: []domain.Role{domain.RoleStudent}}
}

func specialistActor(id string) domain.Actor {
	return domain.Actor{ID: id, Roles: []domain.Role{domain.RoleSpecialist}}
}

func managerActor(id string) domain.Actor {
	return domain.Actor{ID: id, Roles: []domain.Role{domain.RoleManager}}
}

func newVisaService(visas *visaRepoMock, documents *documentRepoMock) *VisaService {
	return NewVisaService(visas, documents, nil, nil, nil).WithClock(testClock)
}

func seedVisa(repo *visaRepoMock, id, owner string, status domain.VisaStatus) domain.VisaExtension {
	visa := domain.VisaExtension{
		ID:                id,
		OwnerID:           owner,
		PassportNumber:    "C1234567",
		Country:           "Vietnam",
		CurrentVisaExpiry: testClock().AddDate(0, 1, 0),
		RequestedUntil:    testClock().AddDate(0, 7, 0),
		Status:            status,
		CreatedAt:         testClock(),
		UpdatedAt:         testClock(),
	}
	if repo.visas == nil {
		repo.visas = make(map[string]domain.VisaExtension)
	}
	repo.visas[id] = visa
	return visa
}

func TestVisaCreate(t *testing.T) {
	repo := &visaRepoMock{}
	svc := newVisaService(repo, &documentRepoMock{})

	input := VisaInput{
		PassportNumber:    " C1234567 ",
		Country:           "Vietnam",
		CurrentVisaExpiry: testClock().AddDate(0, 1, 0),
		RequestedUntil:    testClock().AddDate(0, 7, 0),
		Reason:            "semester extension",
	}

	visa, err := svc.Create(context.Background(), studentActor("owner-1"), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if visa.Status != domain.VisaStatusDraft {
		t.Fatalf("new application status = %s, want draft", visa.Status)
	}
	if visa.OwnerID != "owner-1" {
		t.Fatalf("owner = %s", visa.OwnerID)
	}
	if visa.PassportNumber != "C1234567" {
		t.Fatalf("passport not trimmed: %q", visa.PassportNumber)
	}
	if len(repo.visas) != 1 {
		t.Fatalf("expected one stored row, got %d", len(repo.visas))
	}

	viewer := domain.Actor{ID: "v1", Roles: []domain.Role{domain.RoleViewer}}
	if _, err := svc.Create(context.Background(), viewer, input); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("viewer create err = %v, want permission denied", err)
	}

	bad := input
	bad.RequestedUntil = input.CurrentVisaExpiry
	if _, err := svc.Create(context.Background(), studentActor("owner-1"), bad); !errors.Is(err, ErrValidation) {
		t.Fatalf("requested date not after expiry: err = %v, want validation", err)
	}
}

func TestVisaSubmitRequiresDocuments(t *testing.T) {
	repo := &visaRepoMock{}
	docs := &documentRepoMock{requiredCount: 0}
	svc := newVisaService(repo, docs)
	seedVisa(repo, "visa-1", "owner-1", domain.VisaStatusDraft)

	if _, err := svc.Submit(context.Background(), studentActor("owner-1"), "visa-1"); !errors.Is(err, ErrMissingRequiredDocuments) {
		t.Fatalf("submit without documents err = %v, want missing documents", err)
	}

	docs.requiredCount = 1
	visa, err := svc.Submit(context.Background(), studentActor("owner-1"), "visa-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if visa.Status != domain.VisaStatusSubmitted {
		t.Fatalf("status = %s, want submitted", visa.Status)
	}
	if visa.SubmittedAt == nil || !visa.SubmittedAt.Equal(testClock()) {
		t.Fatalf("submitted_at not stamped: %v", visa.SubmittedAt)
	}
	if len(repo.history) != 1 || repo.history[0].FromStatus != domain.VisaStatusDraft {
		t.Fatalf("unexpected history: %+v", repo.history)
	}
}

func TestVisaSubmitOwnerOnly(t *testing.T) {
	repo := &visaRepoMock{}
	svc := newVisaService(repo, &documentRepoMock{requiredCount: 1})
	seedVisa(repo, "visa-1", "owner-1", domain.VisaStatusDraft)

	if _, err := svc.Submit(context.Background(), studentActor("someone-else"), "visa-1"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("submit by non-owner err = %v, want not owner", err)
	}

	seedVisa(repo, "visa-2", "owner-1", domain.VisaStatusRejected)
	if _, err := svc.Submit(context.Background(), studentActor("owner-1"), "visa-2"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("submit from rejected err = %v, want invalid transition", err)
	}
}

func TestVisaChangeStatusPermissionBeforeTransition(t *testing.T) {
	repo := &visaRepoMock{}
	svc := newVisaService(repo, &documentRepoMock{})
	seedVisa(repo, "visa-1", "owner-1", domain.VisaStatusDraft)

	// Draft -> approved is illegal, but a caller without review permission
	// must get the permission error, not a workflow hint.
	if _, err := svc.ChangeStatus(context.Background(), studentActor("owner-1"), "visa-1", domain.VisaStatusApproved, ""); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("student change status err = %v, want permission denied", err)
	}

	// Specialists review but do not decide.
	seedVisa(repo, "visa-2", "owner-1", domain.VisaStatusUnderReview)
	if _, err := svc.ChangeStatus(context.Background(), specialistActor("rev-1"), "visa-2", domain.VisaStatusApproved, ""); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("specialist approve err = %v, want permission denied", err)
	}

	visa, err := svc.ChangeStatus(context.Background(), specialistActor("rev-1"), "visa-2", domain.VisaStatusAdditionalRequired, "passport scan unreadable")
	if err != nil {
		t.Fatalf("request additional materials: %v", err)
	}
	if visa.Status != domain.VisaStatusAdditionalRequired {
		t.Fatalf("status = %s", visa.Status)
	}
	if visa.ReviewerID == nil || *visa.ReviewerID != "rev-1" {
		t.Fatalf("reviewer not recorded: %v", visa.ReviewerID)
	}
}

func TestVisaChangeStatusApprove(t *testing.T) {
	repo := &visaRepoMock{}
	events := &eventPublisherMock{}
	notifications := &notificationRepoMock{}
	users := &userRepoMock{}
	notifier := NewNotifier(notifications, users, nil).WithClock(testClock)
	svc := NewVisaService(repo, &documentRepoMock{}, events, notifier, nil).WithClock(testClock)
	seedVisa(repo, "visa-1", "owner-1", domain.VisaStatusUnderReview)

	visa, err := svc.ChangeStatus(context.Background(), managerActor("mgr-1"), "visa-1", domain.VisaStatusApproved, "all clear")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if visa.Status != domain.VisaStatusApproved {
		t.Fatalf("status = %s", visa.Status)
	}
	if visa.ApprovedAt == nil {
		t.Fatal("approved_at not stamped")
	}

	if len(events.statusChanged) != 1 {
		t.Fatalf("expected one published event, got %d", len(events.statusChanged))
	}
	event := events.statusChanged[0]
	if event.FromStatus != "under_review" || event.ToStatus != "approved" || event.ChangedBy != "mgr-1" {
		t.Fatalf("unexpected event: %+v", event)
	}

	// Reviewer-made change notifies the owner.
	if len(notifications.created) != 1 || notifications.created[0].UserID != "owner-1" {
		t.Fatalf("owner not notified: %+v", notifications.created)
	}

	if _, err := svc.ChangeStatus(context.Background(), managerActor("mgr-1"), "visa-1", domain.VisaStatusRejected, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("approved -> rejected err = %v, want invalid transition", err)
	}
}

func TestVisaUpdateResubmitsAfterAdditionalRequired(t *testing.T) {
	repo := &visaRepoMock{}
	svc := newVisaService(repo, &documentRepoMock{})
	seedVisa(repo, "visa-1", "owner-1", domain.VisaStatusAdditionalRequired)

	input := VisaInput{
		PassportNumber:    "C7654321",
		Country:           "Vietnam",
		CurrentVisaExpiry: testClock().AddDate(0, 1, 0),
		RequestedUntil:    testClock().AddDate(0, 8, 0),
	}

	visa, err := svc.Update(context.Background(), studentActor("owner-1"), "visa-1", input)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if visa.Status != domain.VisaStatusSubmitted {
		t.Fatalf("status = %s, want submitted after revision", visa.Status)
	}
	if visa.RevisionCount != 1 {
		t.Fatalf("revision count = %d, want 1", visa.RevisionCount)
	}
	if len(repo.history) != 1 || repo.history[0].ToStatus != domain.VisaStatusSubmitted {
		t.Fatalf("unexpected history: %+v", repo.history)
	}
}

func TestVisaUpdateRejectsLockedStatus(t *testing.T) {
	repo := &visaRepoMock{}
	svc := newVisaService(repo, &documentRepoMock{})
	seedVisa(repo, "visa-1", "owner-1", domain.VisaStatusSubmitted)

	input := VisaInput{
		PassportNumber:    "C7654321",
		Country:           "Vietnam",
		CurrentVisaExpiry: testClock().AddDate(0, 1, 0),
		RequestedUntil:    testClock().AddDate(0, 8, 0),
	}

	if _, err := svc.Update(context.Background(), studentActor("owner-1"), "visa-1", input); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("update submitted err = %v, want not editable", err)
	}
}

func TestVisaListScopesNonReviewers(t *testing.T) {
	repo := &visaRepoMock{}
	svc := newVisaService(repo, &documentRepoMock{})
	seedVisa(repo, "visa-1", "owner-1", domain.VisaStatusDraft)
	seedVisa(repo, "visa-2", "owner-2", domain.VisaStatusSubmitted)

	visas, total, err := svc.List(context.Background(), studentActor("owner-1"), port.VisaFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(visas) != 1 || visas[0].OwnerID != "owner-1" {
		t.Fatalf("student sees foreign rows: total=%d visas=%+v", total, visas)
	}
	if repo.lastFilter.OwnerID != "owner-1" {
		t.Fatalf("filter not scoped to the caller: %+v", repo.lastFilter)
	}

	_, total, err = svc.List(context.Background(), managerActor("mgr-1"), port.VisaFilter{})
	if err != nil {
		t.Fatalf("list as reviewer: %v", err)
	}
	if total != 2 {
		t.Fatalf("reviewer total = %d, want 2", total)
	}
}

func TestVisaRemove(t *testing.T) {
	repo := &visaRepoMock{}
	svc := newVisaService(repo, &documentRepoMock{})
	seedVisa(repo, "visa-1", "owner-1", domain.VisaStatusUnderReview)
	seedVisa(repo, "visa-2", "owner-1", domain.VisaStatusDraft)

	if err := svc.Remove(context.Background(), studentActor("owner-1"), "visa-1"); !errors.Is(err, ErrNotDeletable) {
		t.Fatalf("delete under_review err = %v, want not deletable", err)
	}
	if err := svc.Remove(context.Background(), studentActor("owner-2"), "visa-2"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("delete foreign row err = %v, want not owner", err)
	}
	if err := svc.Remove(context.Background(), studentActor("owner-1"), "visa-2"); err != nil {
		t.Fatalf("delete own draft: %v", err)
	}
	if _, ok := repo.visas["visa-2"]; ok {
		t.Fatal("row not deleted")
	}
}

func TestVisaSendExpiryReminders(t *testing.T) {
	repo := &visaRepoMock{}
	notifications := &notificationRepoMock{}
	users := &userRepoMock{}
	notifier := NewNotifier(notifications, users, nil).WithClock(testClock)
	svc := NewVisaService(repo, &documentRepoMock{}, nil, notifier, nil).WithClock(testClock)

	repo.expiring = []domain.VisaExtension{
		{ID: "visa-1", OwnerID: "owner-1", RequestedUntil: testClock().AddDate(0, 0, 10)},
		{ID: "visa-2", OwnerID: "owner-2", RequestedUntil: testClock().AddDate(0, 0, 20)},
	}

	if _, err := svc.SendExpiryReminders(context.Background(), studentActor("owner-1"), 0); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("student reminder err = %v, want permission denied", err)
	}

	sent, err := svc.SendExpiryReminders(context.Background(), managerActor("mgr-1"), 0)
	if err != nil {
		t.Fatalf("send reminders: %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	if len(notifications.created) != 2 {
		t.Fatalf("expected 2 stored notifications, got %d", len(notifications.created))
	}
}
