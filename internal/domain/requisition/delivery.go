package requisition

import (
	"time"

	"github.com/buildflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QualityCheck represents the outcome of a quality inspection on receipt
type QualityCheck string

const (
	QualityCheckPending QualityCheck = "pending"
	QualityCheckPassed  QualityCheck = "passed"
	QualityCheckFailed  QualityCheck = "failed"
	QualityCheckPartial QualityCheck = "partial"
)

// IsValid checks if the value is a valid QualityCheck
func (q QualityCheck) IsValid() bool {
	switch q {
	case QualityCheckPending, QualityCheckPassed, QualityCheckFailed, QualityCheckPartial:
		return true
	}
	return false
}

// DeliveryRecord represents one receipt event against a requisition item.
// Date, quantity, quality outcome and receiver are all mandatory.
type DeliveryRecord struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	DeliveryDate time.Time       `gorm:"not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QualityCheck QualityCheck    `gorm:"type:varchar(20);not null"`
	ReceivedBy   string          `gorm:"type:varchar(200);not null"`
	Notes        string          `gorm:"type:varchar(500)"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeliveryRecord) TableName() string {
	return "delivery_records"
}

// NewDeliveryRecord creates a new delivery record
func NewDeliveryRecord(itemID uuid.UUID, deliveryDate time.Time, quantity decimal.Decimal, quality QualityCheck, receivedBy string) (*DeliveryRecord, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if deliveryDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DELIVERY_DATE", "Delivery date is required")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	if !quality.IsValid() {
		return nil, shared.NewDomainError("INVALID_QUALITY_CHECK", "Quality check outcome is required")
	}
	if receivedBy == "" {
		return nil, shared.NewDomainError("INVALID_RECEIVER", "Receiver name is required")
	}

	now := time.Now()
	return &DeliveryRecord{
		ID:           uuid.New(),
		ItemID:       itemID,
		DeliveryDate: deliveryDate,
		Quantity:     quantity,
		QualityCheck: quality,
		ReceivedBy:   receivedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// SetNotes sets the optional free-text note
func (d *DeliveryRecord) SetNotes(notes string) {
	d.Notes = notes
	d.UpdatedAt = time.Now()
}

// TotalReceived sums the received quantity across all delivery records
func TotalReceived(records []DeliveryRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Quantity)
	}
	return total
}

// DeliveryStatusFor derives the delivery status of an item from its delivery
// records and the target quantity ordered: pending while nothing has been
// received, complete once the cumulative quantity reaches the target,
// partial otherwise.
func DeliveryStatusFor(records []DeliveryRecord, target decimal.Decimal) DeliveryStatus {
	received := TotalReceived(records)
	switch {
	case received.IsZero():
		return DeliveryStatusPending
	case received.GreaterThanOrEqual(target):
		return DeliveryStatusComplete
	default:
		return DeliveryStatusPartial
	}
}

// LatestDeliveryDate returns the most recent delivery date, or nil if there
// are no records
func LatestDeliveryDate(records []DeliveryRecord) *time.Time {
	var latest *time.Time
	for i := range records {
		d := records[i].DeliveryDate
		if latest == nil || d.After(*latest) {
			latest = &d
		}
	}
	return latest
}
