package requisition

import (
	"time"

	"github.com/buildflow/backend/internal/domain/requisition"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRequisitionRequest represents a request to create a requisition
type CreateRequisitionRequest struct {
	ProjectName string     `json:"projectName" binding:"required,max=200"`
	ProjectID   *uuid.UUID `json:"projectId"`
	WeekTag     string     `json:"weekTag" binding:"max=20"`
	Items       []AddItemRequest
}

// AddItemRequest represents a request to add a material line
type AddItemRequest struct {
	Classification string          `json:"classification" binding:"max=100"`
	Description    string          `json:"description" binding:"required,max=500"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Unit           string          `json:"unit" binding:"max=20"`
}

// UpdateItemRequest is a partial patch of a requisition item. Only the
// non-nil fields are applied, and each maps to an editable-field permission
// check against the acting role.
type UpdateItemRequest struct {
	Classification *string          `json:"classification" binding:"omitempty,max=100"`
	Description    *string          `json:"description" binding:"omitempty,max=500"`
	Amount         *decimal.Decimal `json:"amount"`
	Unit           *string          `json:"unit" binding:"omitempty,max=20"`
	Supplier       *string          `json:"supplier" binding:"omitempty,max=200"`
	SupplierTaxID  *string          `json:"supplierTaxId" binding:"omitempty,max=50"`
	PriceUnit      *decimal.Decimal `json:"priceUnit"`
	Multiplier     *decimal.Decimal `json:"multiplier"`
}

// ApprovalRequest records the CEO decision on one item
type ApprovalRequest struct {
	ApprovalStatus string `json:"approvalStatus" binding:"required"`
	CEOComment     string `json:"ceoComment" binding:"max=500"`
}

// PaymentRequest updates the payment state of one item
type PaymentRequest struct {
	PaymentStatus    string          `json:"paymentStatus" binding:"required"`
	PaymentDate      *time.Time      `json:"paymentDate"`
	PaymentAmount    decimal.Decimal `json:"paymentAmount"`
	PaymentMethod    string          `json:"paymentMethod" binding:"max=50"`
	PaymentReference string          `json:"paymentReference" binding:"max=100"`
}

// DeliveryRecordRequest appends a receipt event to one item
type DeliveryRecordRequest struct {
	DeliveryDate time.Time       `json:"deliveryDate" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	QualityCheck string          `json:"qualityCheck" binding:"required"`
	ReceivedBy   string          `json:"receivedBy" binding:"required,max=100"`
	Notes        string          `json:"notes" binding:"max=500"`
}

// UpdateDeliveryRecordRequest corrects an existing receipt event
type UpdateDeliveryRecordRequest struct {
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	QualityCheck string          `json:"qualityCheck" binding:"required"`
	Notes        string          `json:"notes" binding:"max=500"`
}

// CompleteStageRequest asks to mark a stage complete
type CompleteStageRequest struct {
	Stage    string `json:"stage" binding:"required,stagename"`
	Comments string `json:"comments" binding:"max=1000"`
}

// StageCommentsRequest overwrites the comments of a stage without completing it
type StageCommentsRequest struct {
	Stage    string `json:"stage" binding:"required,stagename"`
	Comments string `json:"comments" binding:"max=1000"`
}

// RejectRequest marks a requisition as rejected
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ListFilter represents the filter for listing requisitions
type ListFilter struct {
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir"`
	Search    string     `form:"search"`
	Status    string     `form:"status"`
	Stage     string     `form:"stage"`
	ProjectID *uuid.UUID `form:"project_id"`
	WeekTag   string     `form:"week_tag"`
}

// CompleteStageResult is the outcome of an attempted stage completion.
// When documents for the stage are missing, Completed is false and
// WarningToken carries a short-lived token that ConfirmCompleteStage accepts
// to proceed anyway.
type CompleteStageResult struct {
	Completed    bool                 `json:"completed"`
	WarningCode  string               `json:"warningCode,omitempty"`
	Warning      string               `json:"warning,omitempty"`
	WarningToken string               `json:"warningToken,omitempty"`
	Requisition  *RequisitionResponse `json:"requisition,omitempty"`
}

// StageStateResponse represents the completion state of one stage
type StageStateResponse struct {
	Complete bool   `json:"complete"`
	Comments string `json:"comments,omitempty"`
}

// DeliveryRecordResponse represents one receipt event
type DeliveryRecordResponse struct {
	ID           uuid.UUID       `json:"id"`
	DeliveryDate time.Time       `json:"deliveryDate"`
	Quantity     decimal.Decimal `json:"quantity"`
	QualityCheck string          `json:"qualityCheck"`
	ReceivedBy   string          `json:"receivedBy"`
	Notes        string          `json:"notes,omitempty"`
}

// ItemResponse represents one material line
type ItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	Classification string          `json:"classification"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	Unit           string          `json:"unit"`

	Supplier      string          `json:"supplier,omitempty"`
	SupplierTaxID string          `json:"supplierTaxId,omitempty"`
	PriceUnit     decimal.Decimal `json:"priceUnit"`
	Multiplier    decimal.Decimal `json:"multiplier"`
	NetPrice      decimal.Decimal `json:"netPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`

	ApprovalStatus string `json:"approvalStatus"`
	CEOComment     string `json:"ceoComment,omitempty"`

	PaymentStatus    string          `json:"paymentStatus"`
	PaymentDate      *time.Time      `json:"paymentDate,omitempty"`
	PaymentAmount    decimal.Decimal `json:"paymentAmount"`
	PaymentMethod    string          `json:"paymentMethod,omitempty"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	PaymentNumber    string          `json:"paymentNumber,omitempty"`

	DeliveryStatus   string                   `json:"deliveryStatus"`
	QuantityReceived decimal.Decimal          `json:"quantityReceived"`
	LatestDelivery   *time.Time               `json:"latestDelivery,omitempty"`
	DeliveryRecords  []DeliveryRecordResponse `json:"deliveryRecords"`
}

// DocumentResponse represents one uploaded document
type DocumentResponse struct {
	ID           uuid.UUID `json:"id"`
	FileName     string    `json:"fileName"`
	ContentType  string    `json:"contentType"`
	SizeBytes    int64     `json:"sizeBytes"`
	UploadedAt   time.Time `json:"uploadedAt"`
	UploadedBy   string    `json:"uploadedBy"`
	DocumentType string    `json:"documentType"`
	Stage        string    `json:"stage"`
	PublicURL    string    `json:"publicUrl,omitempty"`
}

// RequisitionResponse represents a full requisition
type RequisitionResponse struct {
	ID                uuid.UUID                     `json:"id"`
	RequisitionNumber string                        `json:"requisitionNumber"`
	ProjectName       string                        `json:"projectName"`
	ProjectID         *uuid.UUID                    `json:"projectId,omitempty"`
	WeekTag           string                        `json:"weekTag,omitempty"`
	Status            string                        `json:"status"`
	CurrentStage      string                        `json:"currentStage"`
	Progress          map[string]StageStateResponse `json:"progress"`
	Items             []ItemResponse                `json:"items"`
	Documents         []DocumentResponse            `json:"documents"`
	RejectReason      string                        `json:"rejectReason,omitempty"`
	TotalAmount       decimal.Decimal               `json:"totalAmount"`
	ValidationErrors  []string                      `json:"validationErrors,omitempty"`
	Version           int                           `json:"version"`
	CreatedAt         time.Time                     `json:"createdAt"`
	UpdatedAt         time.Time                     `json:"updatedAt"`
}

// ListItemResponse represents a requisition in list views, without the
// owned collections
type ListItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	RequisitionNumber string          `json:"requisitionNumber"`
	ProjectName       string          `json:"projectName"`
	WeekTag           string          `json:"weekTag,omitempty"`
	Status            string          `json:"status"`
	CurrentStage      string          `json:"currentStage"`
	ItemCount         int             `json:"itemCount"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ToRequisitionResponse converts a domain requisition to a response DTO
func ToRequisitionResponse(req *requisition.Requisition) RequisitionResponse {
	items := make([]ItemResponse, len(req.Items))
	for idx := range req.Items {
		items[idx] = ToItemResponse(&req.Items[idx])
	}
	docs := make([]DocumentResponse, len(req.Documents))
	for idx := range req.Documents {
		docs[idx] = ToDocumentResponse(&req.Documents[idx])
	}

	progress := make(map[string]StageStateResponse, len(requisition.Stages()))
	for _, stage := range requisition.Stages() {
		state := req.Progress.State(stage)
		progress[stage.String()] = StageStateResponse{
			Complete: state.Complete,
			Comments: state.Comments,
		}
	}

	return RequisitionResponse{
		ID:                req.ID,
		RequisitionNumber: req.RequisitionNumber,
		ProjectName:       req.ProjectName,
		ProjectID:         req.ProjectID,
		WeekTag:           req.WeekTag,
		Status:            req.Status.String(),
		CurrentStage:      req.CurrentStage.String(),
		Progress:          progress,
		Items:             items,
		Documents:         docs,
		RejectReason:      req.RejectReason,
		TotalAmount:       req.TotalAmount(),
		ValidationErrors:  req.ValidationErrors(),
		Version:           req.Version,
		CreatedAt:         req.CreatedAt,
		UpdatedAt:         req.UpdatedAt,
	}
}

// ToItemResponse converts a domain item to a response DTO
func ToItemResponse(item *requisition.RequisitionItem) ItemResponse {
	records := make([]DeliveryRecordResponse, len(item.DeliveryRecords))
	for idx := range item.DeliveryRecords {
		record := &item.DeliveryRecords[idx]
		records[idx] = DeliveryRecordResponse{
			ID:           record.ID,
			DeliveryDate: record.DeliveryDate,
			Quantity:     record.Quantity,
			QualityCheck: string(record.QualityCheck),
			ReceivedBy:   record.ReceivedBy,
			Notes:        record.Notes,
		}
	}

	return ItemResponse{
		ID:               item.ID,
		Classification:   item.Classification,
		Description:      item.Description,
		Amount:           item.Amount,
		Unit:             item.Unit,
		Supplier:         item.Supplier,
		SupplierTaxID:    item.SupplierTaxID,
		PriceUnit:        item.PriceUnit,
		Multiplier:       item.Multiplier,
		NetPrice:         item.NetPrice,
		Subtotal:         item.Subtotal,
		Total:            item.Total,
		ApprovalStatus:   string(item.ApprovalStatus),
		CEOComment:       item.CEOComment,
		PaymentStatus:    string(item.PaymentStatus),
		PaymentDate:      item.PaymentDate,
		PaymentAmount:    item.PaymentAmount,
		PaymentMethod:    item.PaymentMethod,
		PaymentReference: item.PaymentReference,
		PaymentNumber:    item.PaymentNumber,
		DeliveryStatus:   string(item.DeliveryStatus),
		QuantityReceived: item.TotalReceivedQuantity(),
		LatestDelivery:   item.LatestDelivery(),
		DeliveryRecords:  records,
	}
}

// ToDocumentResponse converts a domain document to a response DTO
func ToDocumentResponse(doc *requisition.Document) DocumentResponse {
	return DocumentResponse{
		ID:           doc.ID,
		FileName:     doc.FileName,
		ContentType:  doc.ContentType,
		SizeBytes:    doc.SizeBytes,
		UploadedAt:   doc.UploadedAt,
		UploadedBy:   doc.UploadedBy.String(),
		DocumentType: string(doc.DocumentType),
		Stage:        doc.Stage.String(),
		PublicURL:    doc.PublicURL,
	}
}

// ToListItemResponse converts a domain requisition to a list item DTO
func ToListItemResponse(req *requisition.Requisition) ListItemResponse {
	return ListItemResponse{
		ID:                req.ID,
		RequisitionNumber: req.RequisitionNumber,
		ProjectName:       req.ProjectName,
		WeekTag:           req.WeekTag,
		Status:            req.Status.String(),
		CurrentStage:      req.CurrentStage.String(),
		ItemCount:         len(req.Items),
		TotalAmount:       req.TotalAmount(),
		CreatedAt:         req.CreatedAt,
		UpdatedAt:         req.UpdatedAt,
	}
}
