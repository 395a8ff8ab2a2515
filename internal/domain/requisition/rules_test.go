package requisition

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageRequirementsMet_Resident(t *testing.T) {
	req := createTestRequisition(t)
	assert.True(t, req.StageRequirementsMet(StageResident), "no items, nothing to violate")

	item, err := req.AddItem(RoleResident, "cement", "Portland cement 50kg", decimal.NewFromInt(10), "bag")
	require.NoError(t, err)
	assert.True(t, req.StageRequirementsMet(StageResident))

	item.Description = ""
	assert.False(t, req.StageRequirementsMet(StageResident))
	item.Description = "Portland cement 50kg"

	item.Classification = ""
	assert.False(t, req.StageRequirementsMet(StageResident))
	item.Classification = "cement"

	item.Unit = ""
	assert.False(t, req.StageRequirementsMet(StageResident))
}

func TestStageRequirementsMet_Procurement(t *testing.T) {
	req := createTestRequisition(t)
	item, err := req.AddItem(RoleResident, "cement", "Portland cement 50kg", decimal.NewFromInt(10), "bag")
	require.NoError(t, err)

	assert.False(t, req.StageRequirementsMet(StageProcurement), "no supplier or price yet")

	item.SetSupplier("Cementos del Norte", "CDN-840126")
	require.NoError(t, item.SetPricing(decimal.NewFromFloat(100), decimal.NewFromFloat(1.16)))
	assert.True(t, req.StageRequirementsMet(StageProcurement))

	item.Supplier = ""
	assert.False(t, req.StageRequirementsMet(StageProcurement))
}

func TestStageRequirementsMet_TreasuryAndCEO(t *testing.T) {
	req := createTestRequisition(t)
	// neither stage has a blocking condition, even with incomplete items
	_, err := req.AddItem(RoleResident, "", "", decimal.NewFromInt(1), "")
	require.NoError(t, err)

	assert.True(t, req.StageRequirementsMet(StageTreasury))
	assert.True(t, req.StageRequirementsMet(StageCEO))
}

func TestStageRequirementsMet_Payment(t *testing.T) {
	req := createTestRequisition(t)
	approved := addCompleteItem(t, req, 10)
	pending := addCompleteItem(t, req, 5)

	require.NoError(t, approved.SetApproval(ApprovalStatusApproved, ""))
	require.NoError(t, pending.SetApproval(ApprovalStatusSaveForLater, ""))

	assert.False(t, req.StageRequirementsMet(StagePayment), "approved item not yet paid")

	require.NoError(t, req.Items[0].RecordPayment(PaymentStatusCompleted, nil, req.Items[0].Total, "transfer", "TX-1"))
	assert.True(t, req.StageRequirementsMet(StagePayment), "non-approved items need no payment")

	// "paid" counts the same as "completed"
	require.NoError(t, req.Items[0].RecordPayment(PaymentStatusPaid, nil, req.Items[0].Total, "transfer", "TX-1"))
	assert.True(t, req.StageRequirementsMet(StagePayment))
}

func TestStageRequirementsMet_Storekeeper(t *testing.T) {
	req := createTestRequisition(t)
	item := addCompleteItem(t, req, 10)

	assert.False(t, req.StageRequirementsMet(StageStorekeeper))

	_, err := item.AddDeliveryRecord(time.Now(), decimal.NewFromInt(10), QualityCheckPassed, "J. Alvarez", "")
	require.NoError(t, err)
	assert.True(t, req.StageRequirementsMet(StageStorekeeper))
}

func TestValidationErrors_TargetsFirstIncompleteStage(t *testing.T) {
	req := createTestRequisition(t)
	item, err := req.AddItem(RoleResident, "cement", "Portland cement 50kg", decimal.NewFromInt(10), "bag")
	require.NoError(t, err)

	// resident stage incomplete: resident rules apply, procurement's do not
	assert.Empty(t, req.ValidationErrors())

	req.Progress.Resident.Complete = true
	// now the first incomplete stage is procurement
	errs := req.ValidationErrors()
	assert.Contains(t, errs, "Item 1: Supplier is required")
	assert.Contains(t, errs, "Item 1: Price per unit must be greater than 0")
	assert.Contains(t, errs, "Item 1: Total must be greater than 0")

	item.SetSupplier("Cementos del Norte", "CDN-840126")
	require.NoError(t, item.SetPricing(decimal.NewFromFloat(100), decimal.NewFromFloat(1.16)))
	assert.Empty(t, req.ValidationErrors())
}

func TestValidationErrors_ResidentMessages(t *testing.T) {
	req := createTestRequisition(t)
	item, err := req.AddItem(RoleResident, "cement", "Portland cement 50kg", decimal.NewFromInt(10), "bag")
	require.NoError(t, err)

	item.Description = ""
	item.Classification = ""
	item.Amount = decimal.Zero
	item.Unit = ""

	assert.Equal(t, []string{
		"Item 1: Description is required",
		"Item 1: Classification is required",
		"Item 1: Amount must be greater than 0",
		"Item 1: Unit is required",
	}, req.ValidationErrors())
}

func TestValidationErrors_ItemsAreOneIndexed(t *testing.T) {
	req := createTestRequisition(t)
	addCompleteItem(t, req, 10)
	item2, err := req.AddItem(RoleResident, "steel", "Rebar 12mm", decimal.NewFromInt(3), "ton")
	require.NoError(t, err)
	item2.Unit = ""

	assert.Equal(t, []string{"Item 2: Unit is required"}, req.ValidationErrors())
}

func TestValidationErrors_CEOStage(t *testing.T) {
	req := createTestRequisition(t)
	addCompleteItem(t, req, 10)
	req.Progress.Resident.Complete = true
	req.Progress.Procurement.Complete = true
	req.Progress.Treasury.Complete = true

	errs := req.ValidationErrors()
	assert.Equal(t, []string{"Item 1: Approval decision is required"}, errs)

	require.NoError(t, req.Items[0].SetApproval(ApprovalStatusSaveForLater, "later"))
	assert.Empty(t, req.ValidationErrors())
}

func TestValidationErrors_PaymentStage(t *testing.T) {
	req := createTestRequisition(t)
	addCompleteItem(t, req, 10)
	req.Progress.Resident.Complete = true
	req.Progress.Procurement.Complete = true
	req.Progress.Treasury.Complete = true
	req.Progress.CEO.Complete = true

	require.NoError(t, req.Items[0].SetApproval(ApprovalStatusApproved, ""))
	errs := req.ValidationErrors()
	assert.Equal(t, []string{"Item 1: Payment must be completed for approved items"}, errs)

	require.NoError(t, req.Items[0].RecordPayment(PaymentStatusCompleted, nil, req.Items[0].Total, "transfer", "TX-1"))
	assert.Empty(t, req.ValidationErrors())
}

func TestValidationErrors_StorekeeperExemptions(t *testing.T) {
	req := createTestRequisition(t)
	delivered := addCompleteItem(t, req, 10)
	saved := addCompleteItem(t, req, 5)
	rejected := addCompleteItem(t, req, 2)
	undelivered := addCompleteItem(t, req, 4)

	req.Progress.Resident.Complete = true
	req.Progress.Procurement.Complete = true
	req.Progress.Treasury.Complete = true
	req.Progress.CEO.Complete = true
	req.Progress.Payment.Complete = true

	require.NoError(t, delivered.SetApproval(ApprovalStatusApproved, ""))
	require.NoError(t, saved.SetApproval(ApprovalStatusSaveForLater, ""))
	require.NoError(t, rejected.SetApproval(ApprovalStatusRejected, ""))
	require.NoError(t, undelivered.SetApproval(ApprovalStatusApproved, ""))

	_, err := delivered.AddDeliveryRecord(time.Now(), decimal.NewFromInt(10), QualityCheckPassed, "J. Alvarez", "")
	require.NoError(t, err)

	// save-for-later and rejected items are exempt from delivery validation
	errs := req.ValidationErrors()
	assert.Equal(t, []string{"Item 4: Delivery must be complete"}, errs)
}

func TestValidationErrors_FallsBackToCurrentStage(t *testing.T) {
	req := createTestRequisition(t)
	addCompleteItem(t, req, 10)

	// all flags set: fall back to the current stage
	req.Progress.Resident.Complete = true
	req.Progress.Procurement.Complete = true
	req.Progress.Treasury.Complete = true
	req.Progress.CEO.Complete = true
	req.Progress.Payment.Complete = true
	req.Progress.Storekeeper.Complete = true
	req.CurrentStage = StageTreasury

	assert.Empty(t, req.ValidationErrors())
}
