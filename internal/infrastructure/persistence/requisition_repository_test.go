package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/buildflow/backend/internal/domain/requisition"
	"github.com/buildflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRepository creates a repository backed by an in-memory SQLite database
func newTestRepository(t *testing.T) *GormRequisitionRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&requisition.Requisition{},
		&requisition.RequisitionItem{},
		&requisition.DeliveryRecord{},
		&requisition.Document{},
	))

	return NewGormRequisitionRepository(db)
}

func buildRequisition(t *testing.T, projectName string) *requisition.Requisition {
	t.Helper()

	r, err := requisition.NewRequisition(requisition.RoleResident, projectName)
	require.NoError(t, err)

	item, err := r.AddItem(requisition.RoleResident, "cement", "Portland cement 50kg", decimal.NewFromInt(10), "bag")
	require.NoError(t, err)
	item.SetSupplier("Cementos del Norte", "CDN-840126")
	require.NoError(t, item.SetPricing(decimal.NewFromInt(100), decimal.NewFromFloat(1.16)))

	require.NoError(t, r.Submit())
	r.ClearDomainEvents()
	// generated numbers can collide within the same millisecond bucket;
	// the table carries a unique index, so disambiguate for tests
	r.RequisitionNumber = r.RequisitionNumber + "-" + uuid.NewString()[:4]
	return r
}

func attachDocument(t *testing.T, r *requisition.Requisition, stage requisition.Stage) *requisition.Document {
	t.Helper()

	doc, err := requisition.NewDocument(
		r.ID, "quote.pdf", "application/pdf", 2048,
		requisition.RoleResident, requisition.DocumentTypeSupplierQuote, stage,
		requisition.StorageLocator{Bucket: "test-bucket", Key: "requisitions/" + r.ID.String() + "/quote.pdf"},
		"",
	)
	require.NoError(t, err)
	r.AttachDocument(*doc)
	return doc
}

func TestGormRequisitionRepository_SaveAndFindByID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	r := buildRequisition(t, "Tower A")
	require.NoError(t, repo.Save(ctx, r))

	found, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)

	assert.Equal(t, r.RequisitionNumber, found.RequisitionNumber)
	assert.Equal(t, "Tower A", found.ProjectName)
	assert.Equal(t, requisition.PendingStatus(requisition.StageResident), found.Status)
	assert.Equal(t, requisition.StageResident, found.CurrentStage)
	assert.Equal(t, r.Version, found.Version)

	require.Len(t, found.Items, 1)
	item := found.Items[0]
	assert.Equal(t, "Portland cement 50kg", item.Description)
	assert.True(t, item.Subtotal.Equal(decimal.NewFromInt(1160)), "subtotal was %s", item.Subtotal)
	assert.Equal(t, requisition.ApprovalStatusPending, item.ApprovalStatus)
	assert.Empty(t, found.Documents)
}

func TestGormRequisitionRepository_Save_RecomputesDerivedFields(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	r := buildRequisition(t, "Tower A")
	// Corrupt the stored derived fields; Save must refresh them from the
	// pricing inputs before writing.
	r.Items[0].NetPrice = decimal.Zero
	r.Items[0].Subtotal = decimal.Zero
	r.Items[0].Total = decimal.Zero

	require.NoError(t, repo.Save(ctx, r))

	found, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.True(t, found.Items[0].NetPrice.Equal(decimal.NewFromInt(116)), "net price was %s", found.Items[0].NetPrice)
	assert.True(t, found.Items[0].Subtotal.Equal(decimal.NewFromInt(1160)), "subtotal was %s", found.Items[0].Subtotal)
	assert.True(t, found.Items[0].Total.IsPositive())
}

func TestGormRequisitionRepository_FindByID_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormRequisitionRepository_FindByNumber(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	r := buildRequisition(t, "Tower A")
	require.NoError(t, repo.Save(ctx, r))

	found, err := repo.FindByNumber(ctx, r.RequisitionNumber)
	require.NoError(t, err)
	assert.Equal(t, r.ID, found.ID)

	_, err = repo.FindByNumber(ctx, "REQ-1999-01-01-000")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormRequisitionRepository_Save_UpdatesExisting(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	r := buildRequisition(t, "Tower A")
	require.NoError(t, repo.Save(ctx, r))

	r.SetWeekTag("2026-W35")
	require.NoError(t, r.UpdateItem(r.Items[0].ID, func(item *requisition.RequisitionItem) error {
		return item.UpdateAmount(decimal.NewFromInt(20))
	}))
	require.NoError(t, repo.Save(ctx, r))

	found, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-W35", found.WeekTag)
	require.Len(t, found.Items, 1)
	assert.True(t, found.Items[0].Amount.Equal(decimal.NewFromInt(20)))
	assert.True(t, found.Items[0].Subtotal.Equal(decimal.NewFromInt(2320)), "subtotal was %s", found.Items[0].Subtotal)
}

func TestGormRequisitionRepository_Save_DeletesRemovedItems(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	r := buildRequisition(t, "Tower A")
	second, err := r.AddItem(requisition.RoleResident, "steel", "Rebar 12mm", decimal.NewFromInt(5), "ton")
	require.NoError(t, err)
	_, err = second.AddDeliveryRecord(time.Now(), decimal.NewFromInt(2), requisition.QualityCheckPassed, "J. Ortiz", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, r))

	require.NoError(t, r.RemoveItem(requisition.RoleResident, second.ID))
	require.NoError(t, repo.Save(ctx, r))

	found, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Portland cement 50kg", found.Items[0].Description)

	// the removed item's delivery records must not survive it
	var orphaned int64
	require.NoError(t, repo.db.Model(&requisition.DeliveryRecord{}).
		Where("item_id = ?", second.ID).
		Count(&orphaned).Error)
	assert.Zero(t, orphaned)
}

func TestGormRequisitionRepository_Save_SyncsDeliveryRecords(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	r := buildRequisition(t, "Tower A")
	item := &r.Items[0]
	record, err := item.AddDeliveryRecord(time.Now(), decimal.NewFromInt(4), requisition.QualityCheckPassed, "J. Ortiz", "first batch")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, r))

	found, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, found.Items[0].DeliveryRecords, 1)
	assert.Equal(t, requisition.DeliveryStatusPartial, found.Items[0].DeliveryStatus)

	require.NoError(t, found.UpdateItem(found.Items[0].ID, func(item *requisition.RequisitionItem) error {
		return item.RemoveDeliveryRecord(record.ID)
	}))
	require.NoError(t, repo.Save(ctx, found))

	reloaded, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Items[0].DeliveryRecords)
}

func TestGormRequisitionRepository_Save_SyncsDocuments(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	r := buildRequisition(t, "Tower A")
	doc := attachDocument(t, r, requisition.StageResident)
	require.NoError(t, repo.Save(ctx, r))

	found, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, found.Documents, 1)
	assert.True(t, found.HasDocumentForStage(requisition.StageResident))
	assert.Equal(t, "test-bucket", found.Documents[0].Locator.Bucket)

	_, err = found.DetachDocument(doc.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, found))

	reloaded, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Documents)
}

func TestGormRequisitionRepository_SaveWithLock(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	r := buildRequisition(t, "Tower A")
	require.NoError(t, repo.Save(ctx, r))

	loaded, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	require.NoError(t, loaded.CompleteStage(requisition.RoleResident, requisition.StageResident, "materials listed"))
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	found, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, requisition.StageProcurement, found.CurrentStage)
	assert.True(t, found.Progress.IsComplete(requisition.StageResident))
	assert.Equal(t, "materials listed", found.Progress.State(requisition.StageResident).Comments)
	assert.Equal(t, loaded.Version, found.Version)
}

func TestGormRequisitionRepository_SaveWithLock_StaleVersion(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	r := buildRequisition(t, "Tower A")
	require.NoError(t, repo.Save(ctx, r))

	first, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, r.ID)
	require.NoError(t, err)

	require.NoError(t, first.CompleteStage(requisition.RoleResident, requisition.StageResident, ""))
	require.NoError(t, repo.SaveWithLock(ctx, first))

	require.NoError(t, second.CompleteStage(requisition.RoleResident, requisition.StageResident, ""))
	err = repo.SaveWithLock(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestGormRequisitionRepository_FindAll_Filters(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := buildRequisition(t, "Tower A")
	a.SetWeekTag("2026-W35")
	require.NoError(t, repo.Save(ctx, a))

	b := buildRequisition(t, "Bridge B")
	b.SetWeekTag("2026-W36")
	require.NoError(t, repo.Save(ctx, b))

	c := buildRequisition(t, "Tower A phase 2")
	require.NoError(t, c.CompleteStage(requisition.RoleResident, requisition.StageResident, ""))
	require.NoError(t, repo.Save(ctx, c))

	filter := shared.DefaultFilter()
	filter.Filters["week_tag"] = "2026-W36"
	found, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bridge B", found[0].ProjectName)

	filter = shared.DefaultFilter()
	filter.Filters["current_stage"] = string(requisition.StageProcurement)
	found, err = repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, c.ID, found[0].ID)

	filter = shared.DefaultFilter()
	filter.Search = "Tower"
	found, err = repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestGormRequisitionRepository_FindAll_Pagination(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r := buildRequisition(t, "Tower A")
		require.NoError(t, repo.Save(ctx, r))
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 2
	found, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	filter.Page = 2
	found, err = repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	total, err := repo.Count(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestGormRequisitionRepository_FindByStatus(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	a := buildRequisition(t, "Tower A")
	require.NoError(t, repo.Save(ctx, a))

	b := buildRequisition(t, "Bridge B")
	require.NoError(t, b.CompleteStage(requisition.RoleResident, requisition.StageResident, ""))
	require.NoError(t, repo.Save(ctx, b))

	found, err := repo.FindByStatus(ctx, requisition.PendingStatus(requisition.StageProcurement), shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, b.ID, found[0].ID)
}
