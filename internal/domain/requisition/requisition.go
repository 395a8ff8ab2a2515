package requisition

import (
	"fmt"
	"time"

	"github.com/buildflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StageState holds the completion flag and comments for one stage
type StageState struct {
	Complete bool
	Comments string
}

// StageProgress holds the per-stage completion state with explicit named
// fields, one per workflow stage.
type StageProgress struct {
	Resident    StageState `gorm:"embedded;embeddedPrefix:resident_"`
	Procurement StageState `gorm:"embedded;embeddedPrefix:procurement_"`
	Treasury    StageState `gorm:"embedded;embeddedPrefix:treasury_"`
	CEO         StageState `gorm:"embedded;embeddedPrefix:ceo_"`
	Payment     StageState `gorm:"embedded;embeddedPrefix:payment_"`
	Storekeeper StageState `gorm:"embedded;embeddedPrefix:storekeeper_"`
}

func (p *StageProgress) state(stage Stage) *StageState {
	switch stage {
	case StageResident:
		return &p.Resident
	case StageProcurement:
		return &p.Procurement
	case StageTreasury:
		return &p.Treasury
	case StageCEO:
		return &p.CEO
	case StagePayment:
		return &p.Payment
	case StageStorekeeper:
		return &p.Storekeeper
	}
	return nil
}

// State returns the completion state for a stage
func (p *StageProgress) State(stage Stage) StageState {
	if s := p.state(stage); s != nil {
		return *s
	}
	return StageState{}
}

// IsComplete reports whether a stage has been marked complete
func (p *StageProgress) IsComplete(stage Stage) bool {
	return p.State(stage).Complete
}

// FirstIncomplete returns the first stage in workflow order whose completion
// flag is false, or false when every stage is complete.
func (p *StageProgress) FirstIncomplete() (Stage, bool) {
	for _, stage := range stageOrder {
		if !p.IsComplete(stage) {
			return stage, true
		}
	}
	return "", false
}

// Requisition is the aggregate root for one material request and its full
// approval, payment and delivery lifecycle.
type Requisition struct {
	shared.BaseAggregateRoot
	RequisitionNumber string        `gorm:"type:varchar(30);not null;uniqueIndex"`
	ProjectName       string        `gorm:"type:varchar(200);not null"`
	ProjectID         *uuid.UUID    `gorm:"type:uuid;index"`
	WeekTag           string        `gorm:"type:varchar(20)"`
	Status            Status        `gorm:"type:varchar(30);not null;default:'draft'"`
	CurrentStage      Stage         `gorm:"type:varchar(20);not null;default:'resident'"`
	Progress          StageProgress `gorm:"embedded"`
	Items             []RequisitionItem
	Documents         []Document
	RejectReason      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Requisition) TableName() string {
	return "requisitions"
}

// GenerateRequisitionNumber produces a REQ-YYYY-MM-DD-NNN number where NNN
// is the last three digits of the creation timestamp in milliseconds.
// Uniqueness is best-effort; the persistence layer carries a unique index.
func GenerateRequisitionNumber(at time.Time) string {
	return fmt.Sprintf("REQ-%s-%03d", at.Format("2006-01-02"), at.UnixMilli()%1000)
}

// NewRequisition creates a new requisition in draft status at the resident
// stage. Only resident, procurement and CEO roles may create requisitions.
func NewRequisition(createdBy Role, projectName string) (*Requisition, error) {
	if !createdBy.CanCreateRequisition() {
		return nil, shared.ErrPermissionDenied
	}
	if projectName == "" {
		return nil, shared.NewDomainError("INVALID_PROJECT_NAME", "Project name cannot be empty")
	}

	root := shared.NewBaseAggregateRoot()
	req := &Requisition{
		BaseAggregateRoot: root,
		RequisitionNumber: GenerateRequisitionNumber(root.CreatedAt),
		ProjectName:       projectName,
		Status:            StatusDraft,
		CurrentStage:      StageResident,
		Items:             make([]RequisitionItem, 0),
		Documents:         make([]Document, 0),
	}

	req.AddDomainEvent(NewRequisitionCreatedEvent(req, createdBy))
	return req, nil
}

// SetProject sets the optional project reference
func (r *Requisition) SetProject(projectID uuid.UUID) {
	r.ProjectID = &projectID
	r.touch()
}

// SetWeekTag sets the optional week tag
func (r *Requisition) SetWeekTag(tag string) {
	r.WeekTag = tag
	r.touch()
}

// Submit moves the requisition from draft into the workflow
func (r *Requisition) Submit() error {
	if r.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft requisitions can be submitted")
	}
	r.Status = PendingStatus(StageResident)
	r.touch()
	r.AddDomainEvent(NewRequisitionSubmittedEvent(r))
	return nil
}

// AddItem adds a material line to the requisition. The returned pointer
// aliases the stored item; like GetItem, it is invalidated by the next
// structural mutation of the item slice.
func (r *Requisition) AddItem(role Role, classification, description string, amount decimal.Decimal, unit string) (*RequisitionItem, error) {
	if !role.CanEditField(FieldDescription) {
		return nil, shared.ErrPermissionDenied
	}
	if r.Status.IsTerminal() {
		return nil, shared.ErrInvalidState
	}

	item, err := NewRequisitionItem(r.ID, classification, description, amount, unit)
	if err != nil {
		return nil, err
	}
	r.Items = append(r.Items, *item)
	r.touch()
	return &r.Items[len(r.Items)-1], nil
}

// RemoveItem deletes a material line, subject to the delete permission table
func (r *Requisition) RemoveItem(role Role, itemID uuid.UUID) error {
	for idx := range r.Items {
		if r.Items[idx].ID != itemID {
			continue
		}
		if !CanDeleteItem(role, r.CurrentStage, r.Items[idx].ApprovalStatus) {
			return shared.ErrPermissionDenied
		}
		r.Items = append(r.Items[:idx], r.Items[idx+1:]...)
		r.touch()
		return nil
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Requisition item not found")
}

// UpdateItem runs a mutation against one item and refreshes the aggregate
// metadata when it succeeds. Mutations are rejected on terminal requisitions.
func (r *Requisition) UpdateItem(itemID uuid.UUID, mutate func(*RequisitionItem) error) error {
	if r.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	item := r.GetItem(itemID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Requisition item not found")
	}
	if err := mutate(item); err != nil {
		return err
	}
	r.touch()
	return nil
}

// GetItem returns an item by its ID, nil if absent
func (r *Requisition) GetItem(itemID uuid.UUID) *RequisitionItem {
	for idx := range r.Items {
		if r.Items[idx].ID == itemID {
			return &r.Items[idx]
		}
	}
	return nil
}

// AttachDocument adds a document metadata record to the requisition
func (r *Requisition) AttachDocument(doc Document) {
	r.Documents = append(r.Documents, doc)
	r.touch()
	r.AddDomainEvent(NewDocumentAttachedEvent(r, &doc))
}

// DetachDocument removes a document metadata record, returning the removed
// document so the caller can delete the storage object.
func (r *Requisition) DetachDocument(docID uuid.UUID) (*Document, error) {
	for idx := range r.Documents {
		if r.Documents[idx].ID == docID {
			doc := r.Documents[idx]
			r.Documents = append(r.Documents[:idx], r.Documents[idx+1:]...)
			r.touch()
			r.AddDomainEvent(NewDocumentRemovedEvent(r, &doc))
			return &doc, nil
		}
	}
	return nil, shared.NewDomainError("DOCUMENT_NOT_FOUND", "Document not found")
}

// HasDocumentForStage reports whether any document is attached under a stage
func (r *Requisition) HasDocumentForStage(stage Stage) bool {
	for idx := range r.Documents {
		if r.Documents[idx].Stage == stage {
			return true
		}
	}
	return false
}

// CompleteStage marks a stage as complete and advances the workflow.
// Preconditions: the caller's role must have access to the stage, the
// requisition must have been submitted, the stage must be the current one,
// and the stage's validation rules must hold.
// Completion flags accumulate monotonically; there is no backward move.
func (r *Requisition) CompleteStage(role Role, stage Stage, comments string) error {
	if !stage.IsValid() {
		return shared.NewDomainError("INVALID_STAGE", fmt.Sprintf("Invalid stage %q", stage))
	}
	if !role.CanAccessStage(stage) {
		return shared.ErrPermissionDenied
	}
	if r.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	if r.Status == StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Requisition must be submitted before stages can be completed")
	}
	if stage != r.CurrentStage {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot complete stage %s while requisition is at stage %s", stage, r.CurrentStage))
	}
	if errs := r.ValidationErrors(); len(errs) > 0 {
		return shared.NewValidationError(errs)
	}

	state := r.Progress.state(stage)
	state.Complete = true
	state.Comments = comments

	if next, ok := stage.Next(); ok {
		r.CurrentStage = next
		r.Status = PendingStatus(next)
	} else {
		r.Status = StatusCompleted
	}
	r.touch()

	r.AddDomainEvent(NewStageCompletedEvent(r, stage, role))
	if r.Status == StatusCompleted {
		r.AddDomainEvent(NewRequisitionCompletedEvent(r))
	}
	return nil
}

// SetStageComments overwrites the comments for a stage without completing it.
// Last write wins; there is no append or history.
func (r *Requisition) SetStageComments(role Role, stage Stage, comments string) error {
	if !role.CanAccessStage(stage) {
		return shared.ErrPermissionDenied
	}
	state := r.Progress.state(stage)
	if state == nil {
		return shared.NewDomainError("INVALID_STAGE", fmt.Sprintf("Invalid stage %q", stage))
	}
	state.Comments = comments
	r.touch()
	return nil
}

// Reject marks the requisition as rejected. Rejection is terminal and is
// only settable externally; no workflow transition produces it.
func (r *Requisition) Reject(reason string) error {
	if r.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	r.Status = StatusRejected
	r.RejectReason = reason
	r.touch()
	return nil
}

// RecalculateDerived refreshes every denormalized field (item pricing and
// delivery status) so stored values always match a fresh recomputation.
// Called by the persistence adapter immediately before save.
func (r *Requisition) RecalculateDerived() {
	for idx := range r.Items {
		r.Items[idx].RecalculatePricing()
		r.Items[idx].RecalculateDeliveryStatus()
	}
}

// TotalAmount sums the item totals
func (r *Requisition) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for idx := range r.Items {
		total = total.Add(r.Items[idx].Total)
	}
	return total
}

// IsCompleted reports whether every stage has been completed
func (r *Requisition) IsCompleted() bool {
	return r.Status == StatusCompleted
}

// IsRejected reports whether the requisition has been rejected
func (r *Requisition) IsRejected() bool {
	return r.Status == StatusRejected
}

func (r *Requisition) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}
