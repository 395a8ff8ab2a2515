package requisition

import (
	"github.com/buildflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventRequisitionCreated   = "requisition.created"
	EventRequisitionSubmitted = "requisition.submitted"
	EventStageCompleted       = "requisition.stage_completed"
	EventRequisitionCompleted = "requisition.completed"
	EventItemApprovalChanged  = "requisition.item_approval_changed"
	EventPaymentRecorded      = "requisition.payment_recorded"
	EventDeliveryRecorded     = "requisition.delivery_recorded"
	EventDocumentAttached     = "requisition.document_attached"
	EventDocumentRemoved      = "requisition.document_removed"
)

const aggregateType = "requisition"

// RequisitionCreatedEvent is published when a requisition is created
type RequisitionCreatedEvent struct {
	shared.BaseDomainEvent
	RequisitionNumber string `json:"requisition_number"`
	ProjectName       string `json:"project_name"`
	CreatedByRole     Role   `json:"created_by_role"`
}

// NewRequisitionCreatedEvent creates a RequisitionCreatedEvent
func NewRequisitionCreatedEvent(r *Requisition, createdBy Role) *RequisitionCreatedEvent {
	return &RequisitionCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventRequisitionCreated, aggregateType, r.ID),
		RequisitionNumber: r.RequisitionNumber,
		ProjectName:       r.ProjectName,
		CreatedByRole:     createdBy,
	}
}

// RequisitionSubmittedEvent is published when a draft enters the workflow
type RequisitionSubmittedEvent struct {
	shared.BaseDomainEvent
	RequisitionNumber string `json:"requisition_number"`
	ItemCount         int    `json:"item_count"`
}

// NewRequisitionSubmittedEvent creates a RequisitionSubmittedEvent
func NewRequisitionSubmittedEvent(r *Requisition) *RequisitionSubmittedEvent {
	return &RequisitionSubmittedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventRequisitionSubmitted, aggregateType, r.ID),
		RequisitionNumber: r.RequisitionNumber,
		ItemCount:         len(r.Items),
	}
}

// StageCompletedEvent is published when a workflow stage is completed
type StageCompletedEvent struct {
	shared.BaseDomainEvent
	RequisitionNumber string `json:"requisition_number"`
	Stage             Stage  `json:"stage"`
	CompletedByRole   Role   `json:"completed_by_role"`
	NextStage         Stage  `json:"next_stage,omitempty"`
	NewStatus         Status `json:"new_status"`
}

// NewStageCompletedEvent creates a StageCompletedEvent
func NewStageCompletedEvent(r *Requisition, stage Stage, role Role) *StageCompletedEvent {
	event := &StageCompletedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventStageCompleted, aggregateType, r.ID),
		RequisitionNumber: r.RequisitionNumber,
		Stage:             stage,
		CompletedByRole:   role,
		NewStatus:         r.Status,
	}
	if next, ok := stage.Next(); ok {
		event.NextStage = next
	}
	return event
}

// RequisitionCompletedEvent is published when the final stage closes
type RequisitionCompletedEvent struct {
	shared.BaseDomainEvent
	RequisitionNumber string          `json:"requisition_number"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
}

// NewRequisitionCompletedEvent creates a RequisitionCompletedEvent
func NewRequisitionCompletedEvent(r *Requisition) *RequisitionCompletedEvent {
	return &RequisitionCompletedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventRequisitionCompleted, aggregateType, r.ID),
		RequisitionNumber: r.RequisitionNumber,
		TotalAmount:       r.TotalAmount(),
	}
}

// ItemApprovalChangedEvent is published when the CEO decides on an item
type ItemApprovalChangedEvent struct {
	shared.BaseDomainEvent
	ItemID         uuid.UUID      `json:"item_id"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
}

// NewItemApprovalChangedEvent creates an ItemApprovalChangedEvent
func NewItemApprovalChangedEvent(r *Requisition, item *RequisitionItem) *ItemApprovalChangedEvent {
	return &ItemApprovalChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventItemApprovalChanged, aggregateType, r.ID),
		ItemID:          item.ID,
		ApprovalStatus:  item.ApprovalStatus,
	}
}

// PaymentRecordedEvent is published when a payment is recorded on an item
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	ItemID        uuid.UUID       `json:"item_id"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaymentNumber string          `json:"payment_number,omitempty"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
}

// NewPaymentRecordedEvent creates a PaymentRecordedEvent
func NewPaymentRecordedEvent(r *Requisition, item *RequisitionItem) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentRecorded, aggregateType, r.ID),
		ItemID:          item.ID,
		PaymentStatus:   item.PaymentStatus,
		PaymentNumber:   item.PaymentNumber,
		PaymentAmount:   item.PaymentAmount,
	}
}

// DeliveryRecordedEvent is published when a receipt event is recorded
type DeliveryRecordedEvent struct {
	shared.BaseDomainEvent
	ItemID         uuid.UUID       `json:"item_id"`
	RecordID       uuid.UUID       `json:"record_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	DeliveryStatus DeliveryStatus  `json:"delivery_status"`
}

// NewDeliveryRecordedEvent creates a DeliveryRecordedEvent
func NewDeliveryRecordedEvent(r *Requisition, item *RequisitionItem, record *DeliveryRecord) *DeliveryRecordedEvent {
	return &DeliveryRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDeliveryRecorded, aggregateType, r.ID),
		ItemID:          item.ID,
		RecordID:        record.ID,
		Quantity:        record.Quantity,
		DeliveryStatus:  item.DeliveryStatus,
	}
}

// DocumentAttachedEvent is published when a document is attached
type DocumentAttachedEvent struct {
	shared.BaseDomainEvent
	DocumentID   uuid.UUID    `json:"document_id"`
	DocumentType DocumentType `json:"document_type"`
	Stage        Stage        `json:"stage"`
	FileName     string       `json:"file_name"`
}

// NewDocumentAttachedEvent creates a DocumentAttachedEvent
func NewDocumentAttachedEvent(r *Requisition, doc *Document) *DocumentAttachedEvent {
	return &DocumentAttachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDocumentAttached, aggregateType, r.ID),
		DocumentID:      doc.ID,
		DocumentType:    doc.DocumentType,
		Stage:           doc.Stage,
		FileName:        doc.FileName,
	}
}

// DocumentRemovedEvent is published when a document is removed
type DocumentRemovedEvent struct {
	shared.BaseDomainEvent
	DocumentID uuid.UUID `json:"document_id"`
	Stage      Stage     `json:"stage"`
}

// NewDocumentRemovedEvent creates a DocumentRemovedEvent
func NewDocumentRemovedEvent(r *Requisition, doc *Document) *DocumentRemovedEvent {
	return &DocumentRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDocumentRemoved, aggregateType, r.ID),
		DocumentID:      doc.ID,
		Stage:           doc.Stage,
	}
}
