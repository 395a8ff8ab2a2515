package requisition

import (
	"context"
	"fmt"
	"time"

	"github.com/buildflow/backend/internal/domain/requisition"
	"github.com/buildflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// WorkflowServiceConfig holds configuration for the workflow service
type WorkflowServiceConfig struct {
	// WarningTokenTTL is how long a document-missing warning token stays
	// confirmable
	WarningTokenTTL time.Duration
	// AutosaveDelay is the debounce window for comment and week-tag autosave
	AutosaveDelay time.Duration
}

// DefaultWorkflowServiceConfig returns the default configuration
func DefaultWorkflowServiceConfig() WorkflowServiceConfig {
	return WorkflowServiceConfig{
		WarningTokenTTL: 5 * time.Minute,
		AutosaveDelay:   800 * time.Millisecond,
	}
}

// WorkflowService orchestrates the requisition approval workflow
type WorkflowService struct {
	repo           requisition.Repository
	tokens         ConfirmationTokenStore
	eventPublisher shared.EventPublisher
	debouncer      *Debouncer
	config         WorkflowServiceConfig
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(repo requisition.Repository, tokens ConfirmationTokenStore) *WorkflowService {
	config := DefaultWorkflowServiceConfig()
	return &WorkflowService{
		repo:      repo,
		tokens:    tokens,
		debouncer: NewDebouncer(config.AutosaveDelay),
		config:    config,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *WorkflowService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetConfig sets the service configuration
func (s *WorkflowService) SetConfig(config WorkflowServiceConfig) {
	s.config = config
	s.debouncer = NewDebouncer(config.AutosaveDelay)
}

// Create creates a new requisition, optionally with initial items
func (s *WorkflowService) Create(ctx context.Context, actor requisition.Role, req CreateRequisitionRequest) (*RequisitionResponse, error) {
	r, err := requisition.NewRequisition(actor, req.ProjectName)
	if err != nil {
		return nil, err
	}

	if req.ProjectID != nil {
		r.SetProject(*req.ProjectID)
	}
	if req.WeekTag != "" {
		r.SetWeekTag(req.WeekTag)
	}

	for _, item := range req.Items {
		if _, err := r.AddItem(actor, item.Classification, item.Description, item.Amount, item.Unit); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, r)

	response := ToRequisitionResponse(r)
	return &response, nil
}

// Submit moves a draft requisition into the workflow
func (s *WorkflowService) Submit(ctx context.Context, actor requisition.Role, id uuid.UUID) (*RequisitionResponse, error) {
	return s.mutate(ctx, id, func(r *requisition.Requisition) error {
		if !actor.CanCreateRequisition() {
			return shared.ErrPermissionDenied
		}
		return r.Submit()
	})
}

// GetByID retrieves a requisition by ID
func (s *WorkflowService) GetByID(ctx context.Context, id uuid.UUID) (*RequisitionResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToRequisitionResponse(r)
	return &response, nil
}

// GetByNumber retrieves a requisition by requisition number
func (s *WorkflowService) GetByNumber(ctx context.Context, number string) (*RequisitionResponse, error) {
	r, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToRequisitionResponse(r)
	return &response, nil
}

// List retrieves requisitions with filtering and pagination
func (s *WorkflowService) List(ctx context.Context, filter ListFilter) ([]ListItemResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Stage != "" {
		domainFilter.Filters["current_stage"] = filter.Stage
	}
	if filter.ProjectID != nil {
		domainFilter.Filters["project_id"] = *filter.ProjectID
	}
	if filter.WeekTag != "" {
		domainFilter.Filters["week_tag"] = filter.WeekTag
	}

	requisitions, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ListItemResponse, len(requisitions))
	for idx := range requisitions {
		responses[idx] = ToListItemResponse(&requisitions[idx])
	}
	return responses, total, nil
}

// AddItem adds a material line to a requisition
func (s *WorkflowService) AddItem(ctx context.Context, actor requisition.Role, id uuid.UUID, req AddItemRequest) (*RequisitionResponse, error) {
	return s.mutate(ctx, id, func(r *requisition.Requisition) error {
		_, err := r.AddItem(actor, req.Classification, req.Description, req.Amount, req.Unit)
		return err
	})
}

// UpdateItem applies a partial field patch to an item. Every present field is
// checked against the acting role's editable-field set before anything is
// applied; a single disallowed field rejects the whole patch.
func (s *WorkflowService) UpdateItem(ctx context.Context, actor requisition.Role, id, itemID uuid.UUID, req UpdateItemRequest) (*RequisitionResponse, error) {
	if err := checkPatchPermissions(actor, req); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(r *requisition.Requisition) error {
		return r.UpdateItem(itemID, func(item *requisition.RequisitionItem) error {
			if req.Classification != nil {
				item.Classification = *req.Classification
			}
			if req.Description != nil {
				item.Description = *req.Description
			}
			if req.Unit != nil {
				item.Unit = *req.Unit
			}
			if req.Amount != nil {
				if err := item.UpdateAmount(*req.Amount); err != nil {
					return err
				}
			}
			if req.Supplier != nil || req.SupplierTaxID != nil {
				supplier := item.Supplier
				taxID := item.SupplierTaxID
				if req.Supplier != nil {
					supplier = *req.Supplier
				}
				if req.SupplierTaxID != nil {
					taxID = *req.SupplierTaxID
				}
				item.SetSupplier(supplier, taxID)
			}
			if req.PriceUnit != nil || req.Multiplier != nil {
				priceUnit := item.PriceUnit
				multiplier := item.Multiplier
				if req.PriceUnit != nil {
					priceUnit = *req.PriceUnit
				}
				if req.Multiplier != nil {
					multiplier = *req.Multiplier
				}
				if err := item.SetPricing(priceUnit, multiplier); err != nil {
					return err
				}
			}
			item.RecalculatePricing()
			return nil
		})
	})
}

func checkPatchPermissions(actor requisition.Role, req UpdateItemRequest) error {
	checks := []struct {
		present bool
		field   requisition.Field
	}{
		{req.Classification != nil, requisition.FieldClassification},
		{req.Description != nil, requisition.FieldDescription},
		{req.Amount != nil, requisition.FieldAmount},
		{req.Unit != nil, requisition.FieldUnit},
		{req.Supplier != nil, requisition.FieldSupplier},
		{req.SupplierTaxID != nil, requisition.FieldSupplierTaxID},
		{req.PriceUnit != nil, requisition.FieldPriceUnit},
		{req.Multiplier != nil, requisition.FieldMultiplier},
	}
	for _, check := range checks {
		if check.present && !actor.CanEditField(check.field) {
			return shared.ErrPermissionDenied
		}
	}
	return nil
}

// RemoveItem deletes a material line
func (s *WorkflowService) RemoveItem(ctx context.Context, actor requisition.Role, id, itemID uuid.UUID) (*RequisitionResponse, error) {
	return s.mutate(ctx, id, func(r *requisition.Requisition) error {
		return r.RemoveItem(actor, itemID)
	})
}

// SetApproval records the CEO decision on an item
func (s *WorkflowService) SetApproval(ctx context.Context, actor requisition.Role, id, itemID uuid.UUID, req ApprovalRequest) (*RequisitionResponse, error) {
	if !actor.CanEditField(requisition.FieldApprovalStatus) {
		return nil, shared.ErrPermissionDenied
	}

	return s.mutate(ctx, id, func(r *requisition.Requisition) error {
		return r.UpdateItem(itemID, func(item *requisition.RequisitionItem) error {
			if err := item.SetApproval(requisition.ApprovalStatus(req.ApprovalStatus), req.CEOComment); err != nil {
				return err
			}
			r.AddDomainEvent(requisition.NewItemApprovalChangedEvent(r, item))
			return nil
		})
	})
}

// RecordPayment updates the payment state of an item
func (s *WorkflowService) RecordPayment(ctx context.Context, actor requisition.Role, id, itemID uuid.UUID, req PaymentRequest) (*RequisitionResponse, error) {
	if !actor.CanEditField(requisition.FieldPaymentStatus) {
		return nil, shared.ErrPermissionDenied
	}

	return s.mutate(ctx, id, func(r *requisition.Requisition) error {
		return r.UpdateItem(itemID, func(item *requisition.RequisitionItem) error {
			status := requisition.PaymentStatus(req.PaymentStatus)
			if err := item.RecordPayment(status, req.PaymentDate, req.PaymentAmount, req.PaymentMethod, req.PaymentReference); err != nil {
				return err
			}
			r.AddDomainEvent(requisition.NewPaymentRecordedEvent(r, item))
			return nil
		})
	})
}

// AddDeliveryRecord appends a receipt event to an item
func (s *WorkflowService) AddDeliveryRecord(ctx context.Context, actor requisition.Role, id, itemID uuid.UUID, req DeliveryRecordRequest) (*RequisitionResponse, error) {
	if !actor.CanEditField(requisition.FieldDeliveryRecords) {
		return nil, shared.ErrPermissionDenied
	}

	return s.mutate(ctx, id, func(r *requisition.Requisition) error {
		return r.UpdateItem(itemID, func(item *requisition.RequisitionItem) error {
			record, err := item.AddDeliveryRecord(req.DeliveryDate, req.Quantity, requisition.QualityCheck(req.QualityCheck), req.ReceivedBy, req.Notes)
			if err != nil {
				return err
			}
			r.AddDomainEvent(requisition.NewDeliveryRecordedEvent(r, item, record))
			return nil
		})
	})
}

// UpdateDeliveryRecord corrects an existing receipt event
func (s *WorkflowService) UpdateDeliveryRecord(ctx context.Context, actor requisition.Role, id, itemID, recordID uuid.UUID, req UpdateDeliveryRecordRequest) (*RequisitionResponse, error) {
	if !actor.CanEditField(requisition.FieldDeliveryRecords) {
		return nil, shared.ErrPermissionDenied
	}

	return s.mutate(ctx, id, func(r *requisition.Requisition) error {
		return r.UpdateItem(itemID, func(item *requisition.RequisitionItem) error {
			return item.UpdateDeliveryRecord(recordID, req.Quantity, requisition.QualityCheck(req.QualityCheck), req.Notes)
		})
	})
}

// RemoveDeliveryRecord deletes a receipt event
func (s *WorkflowService) RemoveDeliveryRecord(ctx context.Context, actor requisition.Role, id, itemID, recordID uuid.UUID) (*RequisitionResponse, error) {
	if !actor.CanEditField(requisition.FieldDeliveryRecords) {
		return nil, shared.ErrPermissionDenied
	}

	return s.mutate(ctx, id, func(r *requisition.Requisition) error {
		return r.UpdateItem(itemID, func(item *requisition.RequisitionItem) error {
			return item.RemoveDeliveryRecord(recordID)
		})
	})
}

// AttemptCompleteStage tries to complete a stage. When the stage has no
// attached documents and the actor is not the CEO, completion is held back
// with a soft warning: the result carries a single-use token that
// ConfirmCompleteStage accepts to proceed without documents. All hard checks
// (permissions, stage order, validation rules) apply before the warning, so
// a token is only ever issued for an otherwise completable stage.
func (s *WorkflowService) AttemptCompleteStage(ctx context.Context, actor requisition.Role, id uuid.UUID, req CompleteStageRequest) (*CompleteStageResult, error) {
	stage, err := requisition.ParseStage(req.Stage)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_STAGE", err.Error())
	}

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !r.HasDocumentForStage(stage) && actor != requisition.RoleCEO {
		// dry-run the completion so hard failures surface before the warning
		if err := r.CompleteStage(actor, stage, req.Comments); err != nil {
			return nil, err
		}

		token := NewConfirmationToken(id, stage, actor, req.Comments)
		if err := s.tokens.Put(ctx, token, s.config.WarningTokenTTL); err != nil {
			return nil, err
		}
		return &CompleteStageResult{
			WarningCode:  "DOCUMENT_MISSING",
			Warning:      fmt.Sprintf("No documents attached for stage %s", stage),
			WarningToken: token.Token,
		}, nil
	}

	return s.completeStage(ctx, r, actor, stage, req.Comments)
}

// ConfirmCompleteStage completes a stage previously held back by a
// document-missing warning. The token is single-use and expires.
func (s *WorkflowService) ConfirmCompleteStage(ctx context.Context, actor requisition.Role, tokenKey string) (*CompleteStageResult, error) {
	token, ok, err := s.tokens.Take(ctx, tokenKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewDomainError("TOKEN_EXPIRED", "Confirmation token is unknown or expired")
	}
	if token.Role != actor {
		return nil, shared.ErrPermissionDenied
	}

	r, err := s.repo.FindByID(ctx, token.RequisitionID)
	if err != nil {
		return nil, err
	}
	return s.completeStage(ctx, r, actor, token.Stage, token.Comments)
}

// completeStage runs the actual transition and persists with a version check.
// Persistence failure leaves no partial state: the mutated aggregate is
// discarded and the caller sees the error.
func (s *WorkflowService) completeStage(ctx context.Context, r *requisition.Requisition, actor requisition.Role, stage requisition.Stage, comments string) (*CompleteStageResult, error) {
	if err := r.CompleteStage(actor, stage, comments); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, r); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, r)

	response := ToRequisitionResponse(r)
	return &CompleteStageResult{
		Completed:   true,
		Requisition: &response,
	}, nil
}

// SaveStageComments overwrites the comments of a stage without completing it
func (s *WorkflowService) SaveStageComments(ctx context.Context, actor requisition.Role, id uuid.UUID, req StageCommentsRequest) (*RequisitionResponse, error) {
	stage, err := requisition.ParseStage(req.Stage)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_STAGE", err.Error())
	}

	return s.mutate(ctx, id, func(r *requisition.Requisition) error {
		return r.SetStageComments(actor, stage, req.Comments)
	})
}

// ScheduleStageComments debounces a comment autosave: rapid repeated edits
// for the same requisition and stage collapse into one persisted write.
func (s *WorkflowService) ScheduleStageComments(ctx context.Context, actor requisition.Role, id uuid.UUID, req StageCommentsRequest) {
	key := fmt.Sprintf("comments:%s:%s", id, req.Stage)
	s.debouncer.Schedule(key, func() {
		_, _ = s.SaveStageComments(context.WithoutCancel(ctx), actor, id, req)
	})
}

// FlushStageComments forces a pending debounced comment save to run now
func (s *WorkflowService) FlushStageComments(id uuid.UUID, stage string) {
	s.debouncer.Flush(fmt.Sprintf("comments:%s:%s", id, stage))
}

// CancelStageComments discards a pending debounced comment save
func (s *WorkflowService) CancelStageComments(id uuid.UUID, stage string) {
	s.debouncer.Cancel(fmt.Sprintf("comments:%s:%s", id, stage))
}

// SetWeekTag updates the week tag of a requisition
func (s *WorkflowService) SetWeekTag(ctx context.Context, actor requisition.Role, id uuid.UUID, weekTag string) (*RequisitionResponse, error) {
	if !actor.IsValid() {
		return nil, shared.ErrPermissionDenied
	}
	return s.mutate(ctx, id, func(r *requisition.Requisition) error {
		r.SetWeekTag(weekTag)
		return nil
	})
}

// Reject marks a requisition as rejected. CEO only.
func (s *WorkflowService) Reject(ctx context.Context, actor requisition.Role, id uuid.UUID, req RejectRequest) (*RequisitionResponse, error) {
	if actor != requisition.RoleCEO {
		return nil, shared.ErrPermissionDenied
	}
	return s.mutate(ctx, id, func(r *requisition.Requisition) error {
		return r.Reject(req.Reason)
	})
}

// mutate loads the aggregate, applies fn, and persists on success
func (s *WorkflowService) mutate(ctx context.Context, id uuid.UUID, fn func(*requisition.Requisition) error) (*RequisitionResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, r)

	response := ToRequisitionResponse(r)
	return &response, nil
}

func (s *WorkflowService) publishEvents(ctx context.Context, r *requisition.Requisition) {
	if s.eventPublisher == nil {
		r.ClearDomainEvents()
		return
	}
	for _, event := range r.GetDomainEvents() {
		// event delivery is best-effort; a failed handler never rolls back
		// the persisted aggregate
		_ = s.eventPublisher.Publish(ctx, event)
	}
	r.ClearDomainEvents()
}
