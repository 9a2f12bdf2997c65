package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/infra/config"
)

func newDocumentService(docs *documentRepoMock, files *fileStoreMock, visas *visaRepoMock) *DocumentService {
	uploads := config.UploadSettings{
		MaxSizeBytes: 1 << 20,
		AllowedTypes: []string{"application/pdf", "image/png"},
	}
	return NewDocumentService(docs, files, visas, &mouRepoMock{}, nil, nil, uploads).WithClock(testClock)
}

func pdfUpload(parentID, name string) UploadInput {
	content := "%PDF-1.7 passport scan"
	return UploadInput{
		Parent:       domain.DocumentParentVisa,
		ParentID:     parentID,
		FileName:     name,
		MimeType:     "application/pdf",
		SizeBytes:    int64(len(content)),
		DocumentType: "passport",
		IsRequired:   true,
		Content:      strings.NewReader(content),
	}
}

func TestDocumentUpload(t *testing.T) {
	docs := &documentRepoMock{}
	files := &fileStoreMock{}
	visas := &visaRepoMock{}
	svc := newDocumentService(docs, files, visas)
	seedVisa(visas, "visa-1", "owner-1", domain.VisaStatusDraft)

	doc, err := svc.Upload(context.Background(), studentActor("owner-1"), pdfUpload("visa-1", "passport.pdf"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.FileName != "passport.pdf" || !doc.IsRequired {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.UploadedBy != "owner-1" {
		t.Fatalf("uploaded_by = %s", doc.UploadedBy)
	}
	if _, ok := files.saved[doc.StoredPath]; !ok {
		t.Fatal("file bytes not stored")
	}
	if len(docs.docs) != 1 {
		t.Fatal("metadata not recorded")
	}
}

func TestDocumentUploadRejections(t *testing.T) {
	docs := &documentRepoMock{}
	files := &fileStoreMock{}
	visas := &visaRepoMock{}
	svc := newDocumentService(docs, files, visas)
	seedVisa(visas, "visa-1", "owner-1", domain.VisaStatusDraft)

	foreign := pdfUpload("visa-1", "passport.pdf")
	if _, err := svc.Upload(context.Background(), studentActor("someone-else"), foreign); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("foreign upload err = %v, want not owner", err)
	}

	badType := pdfUpload("visa-1", "macro.xlsm")
	badType.MimeType = "application/vnd.ms-excel.sheet.macroEnabled.12"
	if _, err := svc.Upload(context.Background(), studentActor("owner-1"), badType); !errors.Is(err, ErrValidation) {
		t.Fatalf("disallowed mime err = %v, want validation", err)
	}

	tooBig := pdfUpload("visa-1", "huge.pdf")
	tooBig.SizeBytes = 10 << 20
	if _, err := svc.Upload(context.Background(), studentActor("owner-1"), tooBig); !errors.Is(err, ErrValidation) {
		t.Fatalf("oversized err = %v, want validation", err)
	}

	// Viewers lack upload permission entirely.
	viewer := domain.Actor{ID: "v1", Roles: []domain.Role{domain.RoleViewer}}
	if _, err := svc.Upload(context.Background(), viewer, pdfUpload("visa-1", "x.pdf")); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("viewer upload err = %v, want permission denied", err)
	}
}

func TestDocumentUploadCleansUpOnMetadataFailure(t *testing.T) {
	docs := &documentRepoMock{}
	files := &fileStoreMock{}
	visas := &visaRepoMock{}
	svc := newDocumentService(docs, files, visas)
	seedVisa(visas, "visa-1", "owner-1", domain.VisaStatusDraft)

	// Force the metadata insert to fail by making the repo nil-map write
	// impossible: use a wrapper that always errors.
	failing := &failingDocumentRepo{documentRepoMock: docs}
	svc.documents = failing

	if _, err := svc.Upload(context.Background(), studentActor("owner-1"), pdfUpload("visa-1", "passport.pdf")); err == nil {
		t.Fatal("expected upload to fail")
	}
	if len(files.removed) != 1 {
		t.Fatalf("orphaned file not removed: %v", files.removed)
	}
}

type failingDocumentRepo struct {
	*documentRepoMock
}

func (f *failingDocumentRepo) Create(context.Context, domain.Document) error {
	return errors.New("insert failed")
}

func TestDocumentOpenAndListScope(t *testing.T) {
	docs := &documentRepoMock{}
	files := &fileStoreMock{}
	visas := &visaRepoMock{}
	svc := newDocumentService(docs, files, visas)
	seedVisa(visas, "visa-1", "owner-1", domain.VisaStatusSubmitted)

	doc, err := svc.Upload(context.Background(), studentActor("owner-1"), pdfUpload("visa-1", "passport.pdf"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	// Owner and reviewers may read; unrelated students may not.
	if _, err := svc.List(context.Background(), studentActor("stranger"), domain.DocumentParentVisa, "visa-1"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("stranger list err = %v, want not owner", err)
	}

	listed, err := svc.List(context.Background(), specialistActor("rev-1"), domain.DocumentParentVisa, "visa-1")
	if err != nil {
		t.Fatalf("reviewer list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d documents", len(listed))
	}

	got, reader, err := svc.Open(context.Background(), studentActor("owner-1"), doc.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.FileName != "passport.pdf" || !strings.HasPrefix(string(data), "%PDF") {
		t.Fatalf("unexpected download: %s %q", got.FileName, data)
	}
}

func TestDocumentVerifyAndRemove(t *testing.T) {
	docs := &documentRepoMock{}
	files := &fileStoreMock{}
	visas := &visaRepoMock{}
	svc := newDocumentService(docs, files, visas)
	seedVisa(visas, "visa-1", "owner-1", domain.VisaStatusDraft)

	doc, err := svc.Upload(context.Background(), studentActor("owner-1"), pdfUpload("visa-1", "passport.pdf"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Verify(context.Background(), studentActor("owner-1"), doc.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("student verify err = %v, want permission denied", err)
	}
	if err := svc.Verify(context.Background(), specialistActor("rev-1"), doc.ID); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !docs.docs[doc.ID].IsVerified {
		t.Fatal("document not flagged verified")
	}

	if err := svc.Remove(context.Background(), studentActor("stranger"), doc.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("stranger remove err = %v, want permission denied", err)
	}
	if err := svc.Remove(context.Background(), studentActor("owner-1"), doc.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(docs.docs) != 0 || len(files.removed) != 1 {
		t.Fatal("document or stored file not removed")
	}
}
