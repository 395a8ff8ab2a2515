package requisition

import "fmt"

// Role represents a workflow participant role. Every role except CEO and
// treasury maps to exactly one stage; CEO is a super-user across all stages
// and treasury additionally covers the payment stage.
type Role string

const (
	RoleResident    Role = "resident"
	RoleProcurement Role = "procurement"
	RoleTreasury    Role = "treasury"
	RoleCEO         Role = "ceo"
	RolePayment     Role = "payment"
	RoleStorekeeper Role = "storekeeper"
)

var allRoles = [...]Role{
	RoleResident,
	RoleProcurement,
	RoleTreasury,
	RoleCEO,
	RolePayment,
	RoleStorekeeper,
}

// Roles returns all known roles
func Roles() []Role {
	return allRoles[:]
}

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	for _, role := range allRoles {
		if role == r {
			return true
		}
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %q", s)
	}
	return role, nil
}

// CanAccessStage reports whether the role may act on the given stage.
// CEO may access every stage, treasury covers treasury and payment,
// every other role only the stage matching its own name.
func (r Role) CanAccessStage(stage Stage) bool {
	switch r {
	case RoleCEO:
		return stage.IsValid()
	case RoleTreasury:
		return stage == StageTreasury || stage == StagePayment
	default:
		return r.IsValid() && string(r) == string(stage)
	}
}

// CanCreateRequisition reports whether the role may create a new requisition
func (r Role) CanCreateRequisition() bool {
	return r == RoleResident || r == RoleProcurement || r == RoleCEO
}

// Field identifies an editable field on a requisition item
type Field string

const (
	FieldClassification   Field = "classification"
	FieldDescription      Field = "description"
	FieldAmount           Field = "amount"
	FieldUnit             Field = "unit"
	FieldSupplier         Field = "supplier"
	FieldSupplierTaxID    Field = "supplierTaxId"
	FieldPriceUnit        Field = "priceUnit"
	FieldMultiplier       Field = "multiplier"
	FieldNetPrice         Field = "netPrice"
	FieldSubtotal         Field = "subtotal"
	FieldApprovalStatus   Field = "approvalStatus"
	FieldCEOComment       Field = "ceoComment"
	FieldPaymentStatus    Field = "paymentStatus"
	FieldPaymentDate      Field = "paymentDate"
	FieldPaymentAmount    Field = "paymentAmount"
	FieldPaymentMethod    Field = "paymentMethod"
	FieldPaymentReference Field = "paymentReference"
	FieldPaymentNumber    Field = "paymentNumber"
	FieldDeliveryStatus   Field = "deliveryStatus"
	FieldDeliveryDate     Field = "deliveryDate"
	FieldQuantityReceived Field = "quantityReceived"
	FieldQualityCheck     Field = "qualityCheck"
	FieldDeliveryNotes    Field = "deliveryNotes"
	FieldDeliveryRecords  Field = "deliveryRecords"
)

// FieldSet is a set of editable fields
type FieldSet map[Field]struct{}

// Contains reports whether the field is in the set
func (s FieldSet) Contains(f Field) bool {
	_, ok := s[f]
	return ok
}

func newFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

func (s FieldSet) union(other FieldSet) FieldSet {
	merged := make(FieldSet, len(s)+len(other))
	for f := range s {
		merged[f] = struct{}{}
	}
	for f := range other {
		merged[f] = struct{}{}
	}
	return merged
}

var (
	residentFields = newFieldSet(
		FieldClassification, FieldDescription, FieldAmount, FieldUnit,
	)
	procurementFields = residentFields.union(newFieldSet(
		FieldSupplier, FieldSupplierTaxID, FieldPriceUnit, FieldMultiplier,
	))
	treasuryFields = newFieldSet(
		FieldPaymentStatus, FieldPaymentDate, FieldPaymentAmount,
		FieldPaymentMethod, FieldPaymentReference, FieldPaymentNumber,
	)
	storekeeperFields = newFieldSet(
		FieldDeliveryStatus, FieldDeliveryDate, FieldQuantityReceived,
		FieldQualityCheck, FieldDeliveryNotes, FieldDeliveryRecords,
	)
	ceoFields = procurementFields.
			union(treasuryFields).
			union(storekeeperFields).
			union(newFieldSet(FieldApprovalStatus, FieldCEOComment, FieldNetPrice, FieldSubtotal))
)

// EditableFields returns the set of item fields the role may edit
func (r Role) EditableFields() FieldSet {
	switch r {
	case RoleResident:
		return residentFields
	case RoleProcurement:
		return procurementFields
	case RoleTreasury, RolePayment:
		return treasuryFields
	case RoleStorekeeper:
		return storekeeperFields
	case RoleCEO:
		return ceoFields
	default:
		return FieldSet{}
	}
}

// CanEditField reports whether the role may edit a single field
func (r Role) CanEditField(f Field) bool {
	return r.EditableFields().Contains(f)
}

// CanDeleteItem reports whether the role may delete an item given the
// requisition's current stage and the item's approval status.
// Resident may delete only while the requisition is at the resident stage,
// CEO always, procurement and treasury unless the item has been approved.
func CanDeleteItem(role Role, currentStage Stage, approvalStatus ApprovalStatus) bool {
	switch role {
	case RoleCEO:
		return true
	case RoleResident:
		return currentStage == StageResident
	case RoleProcurement, RoleTreasury:
		return approvalStatus != ApprovalStatusApproved
	default:
		return false
	}
}
