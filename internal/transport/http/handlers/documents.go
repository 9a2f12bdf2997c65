package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/usecase"
)

// DocumentHandler exposes attachment upload, download and verification.
type DocumentHandler struct {
	documents *usecase.DocumentService
}

// NewDocumentHandler constructs DocumentHandler.
func NewDocumentHandler(documents *usecase.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// RegisterRoutes binds document routes under an authenticated group.
func (h *DocumentHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.upload)
	r.GET("", h.list)
	r.GET("/:id/download", h.download)
	r.PUT("/:id/verify", h.verify)
	r.DELETE("/:id", h.remove)
}

// DocumentResponse is the wire form of an attachment.
type DocumentResponse struct {
	ID           string    `json:"id"`
	Parent       string    `json:"parent"`
	ParentID     string    `json:"parent_id"`
	FileName     string    `json:"file_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	DocumentType string    `json:"document_type,omitempty"`
	IsRequired   bool      `json:"is_required"`
	IsVerified   bool      `json:"is_verified"`
	UploadedBy   string    `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func toDocumentResponse(doc domain.Document) DocumentResponse {
	return DocumentResponse{
		ID:           doc.ID,
		Parent:       string(doc.Parent),
		ParentID:     doc.ParentID,
		FileName:     doc.FileName,
		MimeType:     doc.MimeType,
		SizeBytes:    doc.SizeBytes,
		DocumentType: doc.DocumentType,
		IsRequired:   doc.IsRequired,
		IsVerified:   doc.IsVerified,
		UploadedBy:   doc.UploadedBy,
		CreatedAt:    doc.CreatedAt,
	}
}

func (h *DocumentHandler) upload(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	parent := domain.DocumentParent(c.PostForm("parent"))
	parentID := c.PostForm("parent_id")
	if parent == "" || parentID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "parent and parent_id are required"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "failed to read uploaded file"))
		return
	}
	defer file.Close()

	doc, err := h.documents.Upload(c.Request.Context(), actor, usecase.UploadInput{
		Parent:       parent,
		ParentID:     parentID,
		FileName:     fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		SizeBytes:    fileHeader.Size,
		DocumentType: c.PostForm("document_type"),
		IsRequired:   c.PostForm("is_required") == "true",
		Content:      file,
	})
	if err != nil {
		respondWorkflowError(c, err, "failed to upload document")
		return
	}

	c.JSON(http.StatusCreated, toDocumentResponse(*doc))
}

func (h *DocumentHandler) list(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	parent := domain.DocumentParent(c.Query("parent"))
	parentID := c.Query("parent_id")
	if parent == "" || parentID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "parent and parent_id are required"))
		return
	}

	docs, err := h.documents.List(c.Request.Context(), actor, parent, parentID)
	if err != nil {
		respondWorkflowError(c, err, "failed to list documents")
		return
	}

	items := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, toDocumentResponse(doc))
	}

	c.JSON(http.StatusOK, gin.H{"documents": items})
}

func (h *DocumentHandler) download(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	doc, reader, err := h.documents.Open(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to open document")
		return
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to read document"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.MimeType, buf.Bytes())
}

func (h *DocumentHandler) verify(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.documents.Verify(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondWorkflowError(c, err, "failed to verify document")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "document verified"})
}

func (h *DocumentHandler) remove(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.documents.Remove(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondWorkflowError(c, err, "failed to delete document")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "document deleted"})
}
