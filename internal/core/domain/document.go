package domain

import "time"

// DocumentParent names the request type a document is attached to.
type DocumentParent string

const (
	DocumentParentVisa        DocumentParent = "visa_extension"
	DocumentParentMOU         DocumentParent = "mou"
	DocumentParentTranslation DocumentParent = "translation_request"
	DocumentParentVisitor     DocumentParent = "visitor_registration"
)

// Document holds metadata for an uploaded attachment. The bytes live on
// disk; StoredPath is relative to the configured upload directory.
type Document struct {
	ID           string
	Parent       DocumentParent
	ParentID     string
	FileName     string
	StoredPath   string
	MimeType     string
	SizeBytes    int64
	DocumentType string
	IsRequired   bool
	IsVerified   bool
	UploadedBy   string
	CreatedAt    time.Time
}
