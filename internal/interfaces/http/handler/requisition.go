package handler

import (
	apprequisition "github.com/buildflow/backend/internal/application/requisition"
	"github.com/gin-gonic/gin"
)

// RequisitionHandler handles requisition workflow API endpoints
type RequisitionHandler struct {
	BaseHandler
	workflow *apprequisition.WorkflowService
}

// NewRequisitionHandler creates a new RequisitionHandler
func NewRequisitionHandler(workflow *apprequisition.WorkflowService) *RequisitionHandler {
	return &RequisitionHandler{workflow: workflow}
}

// ConfirmCompleteStageRequest carries the warning token issued by an
// attempted stage completion
type ConfirmCompleteStageRequest struct {
	Token string `json:"token" binding:"required"`
}

// WeekTagRequest sets the planning week tag of a requisition
type WeekTagRequest struct {
	WeekTag string `json:"weekTag" binding:"max=20"`
}

// RegisterRoutes registers requisition routes
func (h *RequisitionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	requisitions := rg.Group("/requisitions")
	{
		requisitions.GET("", h.List)
		requisitions.POST("", h.Create)
		requisitions.GET("/number/:number", h.GetByNumber)
		requisitions.GET("/:id", h.Get)
		requisitions.POST("/:id/submit", h.Submit)
		requisitions.POST("/:id/reject", h.Reject)
		requisitions.PUT("/:id/week-tag", h.SetWeekTag)
		requisitions.PUT("/:id/comments", h.SaveStageComments)
		requisitions.POST("/:id/complete-stage", h.CompleteStage)
		requisitions.POST("/:id/complete-stage/confirm", h.ConfirmCompleteStage)

		requisitions.POST("/:id/items", h.AddItem)
		requisitions.PATCH("/:id/items/:itemId", h.UpdateItem)
		requisitions.DELETE("/:id/items/:itemId", h.RemoveItem)
		requisitions.PUT("/:id/items/:itemId/approval", h.SetApproval)
		requisitions.PUT("/:id/items/:itemId/payment", h.RecordPayment)
		requisitions.POST("/:id/items/:itemId/deliveries", h.AddDeliveryRecord)
		requisitions.PUT("/:id/items/:itemId/deliveries/:recordId", h.UpdateDeliveryRecord)
		requisitions.DELETE("/:id/items/:itemId/deliveries/:recordId", h.RemoveDeliveryRecord)
	}
}

// List returns requisitions for the board view, filtered and paginated
func (h *RequisitionHandler) List(c *gin.Context) {
	if _, ok := h.actorRole(c); !ok {
		return
	}

	var filter apprequisition.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}

	items, total, err := h.workflow.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// Create creates a new requisition in draft status
func (h *RequisitionHandler) Create(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}

	var req apprequisition.CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.workflow.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns one requisition with items, documents and progress
func (h *RequisitionHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.workflow.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByNumber returns one requisition by its requisition number
func (h *RequisitionHandler) GetByNumber(c *gin.Context) {
	resp, err := h.workflow.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Submit moves a draft requisition into the workflow
func (h *RequisitionHandler) Submit(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.workflow.Submit(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reject marks a requisition as rejected
func (h *RequisitionHandler) Reject(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req apprequisition.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.workflow.Reject(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetWeekTag sets the planning week tag
func (h *RequisitionHandler) SetWeekTag(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req WeekTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.workflow.SetWeekTag(c.Request.Context(), actor, id, req.WeekTag)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SaveStageComments overwrites the comments of a stage without completing it
func (h *RequisitionHandler) SaveStageComments(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req apprequisition.StageCommentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.workflow.SaveStageComments(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CompleteStage attempts to complete a workflow stage. When no documents
// are attached for the stage the response carries a confirmable warning
// token instead of completing.
func (h *RequisitionHandler) CompleteStage(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req apprequisition.CompleteStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.workflow.AttemptCompleteStage(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ConfirmCompleteStage completes a stage despite the missing-documents
// warning, consuming the warning token
func (h *RequisitionHandler) ConfirmCompleteStage(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}

	var req ConfirmCompleteStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.workflow.ConfirmCompleteStage(c.Request.Context(), actor, req.Token)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AddItem adds a material line to a requisition
func (h *RequisitionHandler) AddItem(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req apprequisition.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.workflow.AddItem(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// UpdateItem applies a partial patch to a requisition item. Every present
// field is checked against the actor's editable fields before any change
// is applied.
func (h *RequisitionHandler) UpdateItem(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}

	var req apprequisition.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.workflow.UpdateItem(c.Request.Context(), actor, id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem deletes a material line
func (h *RequisitionHandler) RemoveItem(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}

	resp, err := h.workflow.RemoveItem(c.Request.Context(), actor, id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetApproval records the CEO decision on one item
func (h *RequisitionHandler) SetApproval(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}

	var req apprequisition.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.workflow.SetApproval(c.Request.Context(), actor, id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordPayment updates the payment state of one item
func (h *RequisitionHandler) RecordPayment(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}

	var req apprequisition.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.workflow.RecordPayment(c.Request.Context(), actor, id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddDeliveryRecord appends a receipt event to one item
func (h *RequisitionHandler) AddDeliveryRecord(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}

	var req apprequisition.DeliveryRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.workflow.AddDeliveryRecord(c.Request.Context(), actor, id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// UpdateDeliveryRecord corrects an existing receipt event
func (h *RequisitionHandler) UpdateDeliveryRecord(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}
	recordID, ok := h.pathUUID(c, "recordId")
	if !ok {
		return
	}

	var req apprequisition.UpdateDeliveryRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.workflow.UpdateDeliveryRecord(c.Request.Context(), actor, id, itemID, recordID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveDeliveryRecord deletes a receipt event
func (h *RequisitionHandler) RemoveDeliveryRecord(c *gin.Context) {
	actor, ok := h.actorRole(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathUUID(c, "itemId")
	if !ok {
		return
	}
	recordID, ok := h.pathUUID(c, "recordId")
	if !ok {
		return
	}

	resp, err := h.workflow.RemoveDeliveryRecord(c.Request.Context(), actor, id, itemID, recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
