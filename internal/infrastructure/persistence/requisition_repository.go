package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/buildflow/backend/internal/domain/requisition"
	"github.com/buildflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRequisitionRepository implements requisition.Repository using GORM
type GormRequisitionRepository struct {
	db *gorm.DB
}

// NewGormRequisitionRepository creates a new GormRequisitionRepository
func NewGormRequisitionRepository(db *gorm.DB) *GormRequisitionRepository {
	return &GormRequisitionRepository{db: db}
}

func (r *GormRequisitionRepository) withOwned(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.DeliveryRecords", func(db *gorm.DB) *gorm.DB {
			return db.Order("delivery_date ASC, created_at ASC")
		}).
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("uploaded_at ASC")
		})
}

// FindByID finds a requisition by its ID with all owned collections loaded
func (r *GormRequisitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*requisition.Requisition, error) {
	var req requisition.Requisition
	if err := r.withOwned(r.db.WithContext(ctx)).
		First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindByNumber finds a requisition by its requisition number
func (r *GormRequisitionRepository) FindByNumber(ctx context.Context, number string) (*requisition.Requisition, error) {
	var req requisition.Requisition
	if err := r.withOwned(r.db.WithContext(ctx)).
		Where("requisition_number = ?", number).
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindAll finds requisitions with filtering and pagination
func (r *GormRequisitionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]requisition.Requisition, error) {
	var reqs []requisition.Requisition

	query := r.db.WithContext(ctx).Model(&requisition.Requisition{})
	query = r.applyFilter(query, filter)

	if err := r.withOwned(query).Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// FindByStatus finds requisitions by workflow status
func (r *GormRequisitionRepository) FindByStatus(ctx context.Context, status requisition.Status, filter shared.Filter) ([]requisition.Requisition, error) {
	var reqs []requisition.Requisition

	query := r.db.WithContext(ctx).Model(&requisition.Requisition{}).
		Where("status = ?", status)
	query = r.applyFilter(query, filter)

	if err := r.withOwned(query).Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

// Save creates or updates the full aggregate. Child collections are synced
// by diff: rows missing from the in-memory aggregate are deleted. Derived
// item fields are recomputed before the write so stored values never drift.
func (r *GormRequisitionRepository) Save(ctx context.Context, req *requisition.Requisition) error {
	req.RecalculateDerived()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Documents").Save(req).Error; err != nil {
			return err
		}
		return r.syncOwned(tx, req)
	})
}

// SaveWithLock updates the full aggregate with an optimistic version check.
// The domain has already incremented the version in memory, so the row must
// still hold the previous version; a stale write returns
// shared.ErrConcurrencyConflict.
func (r *GormRequisitionRepository) SaveWithLock(ctx context.Context, req *requisition.Requisition) error {
	req.RecalculateDerived()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&requisition.Requisition{}).
			Where("id = ? AND version = ?", req.ID, req.Version-1).
			Updates(requisitionColumns(req))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.syncOwned(tx, req)
	})
}

// Count counts requisitions matching the filter
func (r *GormRequisitionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&requisition.Requisition{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// syncOwned upserts items, delivery records and document metadata, deleting
// rows the aggregate no longer contains
func (r *GormRequisitionRepository) syncOwned(tx *gorm.DB, req *requisition.Requisition) error {
	// Items removed from the aggregate take their delivery records with them
	var removedItemIDs []uuid.UUID
	itemQuery := tx.Model(&requisition.RequisitionItem{}).Where("requisition_id = ?", req.ID)
	if ids := itemIDs(req.Items); len(ids) > 0 {
		itemQuery = itemQuery.Where("id NOT IN ?", ids)
	}
	if err := itemQuery.Pluck("id", &removedItemIDs).Error; err != nil {
		return err
	}
	if len(removedItemIDs) > 0 {
		if err := tx.Where("item_id IN ?", removedItemIDs).
			Delete(&requisition.DeliveryRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", removedItemIDs).
			Delete(&requisition.RequisitionItem{}).Error; err != nil {
			return err
		}
	}

	for i := range req.Items {
		item := &req.Items[i]
		item.RequisitionID = req.ID
		if err := tx.Omit("DeliveryRecords").Save(item).Error; err != nil {
			return err
		}

		recordQuery := tx.Where("item_id = ?", item.ID)
		if ids := recordIDs(item.DeliveryRecords); len(ids) > 0 {
			recordQuery = recordQuery.Where("id NOT IN ?", ids)
		}
		if err := recordQuery.Delete(&requisition.DeliveryRecord{}).Error; err != nil {
			return err
		}
		for j := range item.DeliveryRecords {
			item.DeliveryRecords[j].ItemID = item.ID
			if err := tx.Save(&item.DeliveryRecords[j]).Error; err != nil {
				return err
			}
		}
	}

	docQuery := tx.Where("requisition_id = ?", req.ID)
	if ids := documentIDs(req.Documents); len(ids) > 0 {
		docQuery = docQuery.Where("id NOT IN ?", ids)
	}
	if err := docQuery.Delete(&requisition.Document{}).Error; err != nil {
		return err
	}
	for i := range req.Documents {
		req.Documents[i].RequisitionID = req.ID
		if err := tx.Save(&req.Documents[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// requisitionColumns lists the root row columns for the version-guarded
// update; child collections are synced separately
func requisitionColumns(req *requisition.Requisition) map[string]interface{} {
	return map[string]interface{}{
		"requisition_number":   req.RequisitionNumber,
		"project_name":         req.ProjectName,
		"project_id":           req.ProjectID,
		"week_tag":             req.WeekTag,
		"status":               req.Status,
		"current_stage":        req.CurrentStage,
		"reject_reason":        req.RejectReason,
		"resident_complete":    req.Progress.Resident.Complete,
		"resident_comments":    req.Progress.Resident.Comments,
		"procurement_complete": req.Progress.Procurement.Complete,
		"procurement_comments": req.Progress.Procurement.Comments,
		"treasury_complete":    req.Progress.Treasury.Complete,
		"treasury_comments":    req.Progress.Treasury.Comments,
		"ceo_complete":         req.Progress.CEO.Complete,
		"ceo_comments":         req.Progress.CEO.Comments,
		"payment_complete":     req.Progress.Payment.Complete,
		"payment_comments":     req.Progress.Payment.Comments,
		"storekeeper_complete": req.Progress.Storekeeper.Complete,
		"storekeeper_comments": req.Progress.Storekeeper.Comments,
		"version":              req.Version,
		"updated_at":           req.UpdatedAt,
	}
}

func itemIDs(items []requisition.RequisitionItem) []uuid.UUID {
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}

func recordIDs(records []requisition.DeliveryRecord) []uuid.UUID {
	ids := make([]uuid.UUID, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}
	return ids
}

func documentIDs(docs []requisition.Document) []uuid.UUID {
	ids := make([]uuid.UUID, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}
	return ids
}

func (r *GormRequisitionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Ordering with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, RequisitionSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(sortField + " " + sortOrder)
}

func (r *GormRequisitionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("requisition_number LIKE ? OR project_name LIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "current_stage":
			query = query.Where("current_stage = ?", value)
		case "project_id":
			query = query.Where("project_id = ?", value)
		case "week_tag":
			query = query.Where("week_tag = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormRequisitionRepository implements requisition.Repository
var _ requisition.Repository = (*GormRequisitionRepository)(nil)
