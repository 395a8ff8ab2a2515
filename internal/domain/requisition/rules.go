package requisition

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StageRequirementsMet reports whether the requisition's items satisfy the
// data-completeness rules to close out the given stage. Treasury and CEO
// stages have no blocking condition.
func (r *Requisition) StageRequirementsMet(stage Stage) bool {
	switch stage {
	case StageResident:
		for idx := range r.Items {
			if !residentFieldsPresent(&r.Items[idx]) {
				return false
			}
		}
		return true
	case StageProcurement:
		for idx := range r.Items {
			item := &r.Items[idx]
			if !residentFieldsPresent(item) || item.Supplier == "" ||
				item.PriceUnit.LessThanOrEqual(decimal.Zero) || item.Total.LessThanOrEqual(decimal.Zero) {
				return false
			}
		}
		return true
	case StageTreasury, StageCEO:
		return true
	case StagePayment:
		for idx := range r.Items {
			item := &r.Items[idx]
			if item.ApprovalStatus == ApprovalStatusApproved && !item.PaymentStatus.IsSettled() {
				return false
			}
		}
		return true
	case StageStorekeeper:
		for idx := range r.Items {
			if r.Items[idx].DeliveryStatus != DeliveryStatusComplete {
				return false
			}
		}
		return true
	}
	return false
}

func residentFieldsPresent(item *RequisitionItem) bool {
	return item.Description != "" && item.Classification != "" &&
		item.Amount.GreaterThan(decimal.Zero) && item.Unit != ""
}

// ValidationErrors produces one human-readable message per violated field
// per item for the stage currently being completed: the first stage in
// workflow order whose completion flag is false, falling back to the current
// stage when every flag is already set. Items are 1-indexed in messages.
func (r *Requisition) ValidationErrors() []string {
	stage, ok := r.Progress.FirstIncomplete()
	if !ok {
		stage = r.CurrentStage
	}
	return r.validationErrorsForStage(stage)
}

func (r *Requisition) validationErrorsForStage(stage Stage) []string {
	errs := make([]string, 0)
	for idx := range r.Items {
		item := &r.Items[idx]
		n := idx + 1
		switch stage {
		case StageResident:
			errs = append(errs, residentItemErrors(n, item)...)
		case StageProcurement:
			errs = append(errs, residentItemErrors(n, item)...)
			if item.Supplier == "" {
				errs = append(errs, fmt.Sprintf("Item %d: Supplier is required", n))
			}
			if item.PriceUnit.LessThanOrEqual(decimal.Zero) {
				errs = append(errs, fmt.Sprintf("Item %d: Price per unit must be greater than 0", n))
			}
			if item.Total.LessThanOrEqual(decimal.Zero) {
				errs = append(errs, fmt.Sprintf("Item %d: Total must be greater than 0", n))
			}
		case StageTreasury:
			// no blocking conditions
		case StageCEO:
			if item.ApprovalStatus == ApprovalStatusPending {
				errs = append(errs, fmt.Sprintf("Item %d: Approval decision is required", n))
			}
		case StagePayment:
			if item.ApprovalStatus == ApprovalStatusApproved && !item.PaymentStatus.IsSettled() {
				errs = append(errs, fmt.Sprintf("Item %d: Payment must be completed for approved items", n))
			}
		case StageStorekeeper:
			if !item.ApprovalStatus.ExemptFromDelivery() && item.DeliveryStatus != DeliveryStatusComplete {
				errs = append(errs, fmt.Sprintf("Item %d: Delivery must be complete", n))
			}
		}
	}
	return errs
}

func residentItemErrors(n int, item *RequisitionItem) []string {
	errs := make([]string, 0, 4)
	if item.Description == "" {
		errs = append(errs, fmt.Sprintf("Item %d: Description is required", n))
	}
	if item.Classification == "" {
		errs = append(errs, fmt.Sprintf("Item %d: Classification is required", n))
	}
	if item.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, fmt.Sprintf("Item %d: Amount must be greater than 0", n))
	}
	if item.Unit == "" {
		errs = append(errs, fmt.Sprintf("Item %d: Unit is required", n))
	}
	return errs
}
