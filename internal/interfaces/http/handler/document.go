package handler

import (
	apprequisition "github.com/buildflow/backend/internal/application/requisition"
	"github.com/gin-gonic/gin"
)

// DocumentHandler handles requisition document API endpoints
type DocumentHandler struct {
	BaseHandler
	documents *apprequisition.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documents *apprequisition.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// RegisterRoutes registers document routes
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	documents := rg.Group("/requisitions/:id/documents")
	{
		documents.POST("/uploads", h.InitiateUpload)
		documents.POST("", h.ConfirmUpload)
		documents.DELETE("/:docId", h.Delete)
		documents.GET("/:docId/download", h.GetDownloadURL)
	}
}

// InitiateUpload returns a presigned URL the client uploads the file to
func (h *DocumentHandler) InitiateUpload(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req apprequisition.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.documents.InitiateUpload(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ConfirmUpload attaches the uploaded object to the requisition after
// verifying it exists in storage
func (h *DocumentHandler) ConfirmUpload(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req apprequisition.ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.documents.ConfirmUpload(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Delete removes a document and its stored object
func (h *DocumentHandler) Delete(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	docID, ok := h.pathUUID(c, "docId")
	if !ok {
		return
	}

	if err := h.documents.Delete(c.Request.Context(), actor, id, docID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetDownloadURL returns a presigned download URL for a document
func (h *DocumentHandler) GetDownloadURL(c *gin.Context) {
	if _, ok := h.actorRole(c); !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	docID, ok := h.pathUUID(c, "docId")
	if !ok {
		return
	}

	resp, err := h.documents.GetDownloadURL(c.Request.Context(), id, docID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
