package requisition

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/buildflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApprovalStatus represents the CEO's decision on an item
type ApprovalStatus string

const (
	ApprovalStatusPending      ApprovalStatus = "pending"
	ApprovalStatusApproved     ApprovalStatus = "approved"
	ApprovalStatusRejected     ApprovalStatus = "rejected"
	ApprovalStatusPartial      ApprovalStatus = "partial"
	ApprovalStatusSaveForLater ApprovalStatus = "save_for_later"
)

// IsValid checks if the value is a valid ApprovalStatus
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected,
		ApprovalStatusPartial, ApprovalStatusSaveForLater:
		return true
	}
	return false
}

// ExemptFromDelivery reports whether the item is exempt from delivery
// validation at the storekeeper stage
func (s ApprovalStatus) ExemptFromDelivery() bool {
	return s == ApprovalStatusSaveForLater || s == ApprovalStatusRejected
}

// PaymentStatus represents the payment state of an item.
// "paid" and "completed" are synonymous terminal-success values.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// IsValid checks if the value is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRejected, PaymentStatusCompleted:
		return true
	}
	return false
}

// IsSettled reports whether the payment has reached a terminal-success state
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentStatusPaid || s == PaymentStatusCompleted
}

// DeliveryStatus represents the derived delivery state of an item.
// It is never set directly; it always mirrors DeliveryStatusFor over the
// item's delivery records.
type DeliveryStatus string

const (
	DeliveryStatusPending  DeliveryStatus = "pending"
	DeliveryStatusPartial  DeliveryStatus = "partial"
	DeliveryStatusComplete DeliveryStatus = "complete"
	DeliveryStatusRejected DeliveryStatus = "rejected"
)

// IsValid checks if the value is a valid DeliveryStatus
func (s DeliveryStatus) IsValid() bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusPartial, DeliveryStatusComplete, DeliveryStatusRejected:
		return true
	}
	return false
}

// DefaultMultiplier is the default tax/markup multiplier applied to unit prices
var DefaultMultiplier = decimal.NewFromFloat(1.16)

// RequisitionItem represents one material line within a requisition
type RequisitionItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	RequisitionID uuid.UUID `gorm:"type:uuid;not null;index"`

	Classification string          `gorm:"type:varchar(100)"`
	Description    string          `gorm:"type:varchar(500)"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"` // quantity ordered
	Unit           string          `gorm:"type:varchar(20)"`

	Supplier      string          `gorm:"type:varchar(200)"`
	SupplierTaxID string          `gorm:"type:varchar(50)"`
	PriceUnit     decimal.Decimal `gorm:"type:decimal(18,4)"`
	Multiplier    decimal.Decimal `gorm:"type:decimal(18,4)"`
	NetPrice      decimal.Decimal `gorm:"type:decimal(18,2)"` // round2(PriceUnit * Multiplier)
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,2)"` // round2(NetPrice * Amount)
	Total         decimal.Decimal `gorm:"type:decimal(18,2)"` // round2(Subtotal * Multiplier)

	ApprovalStatus ApprovalStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	CEOComment     string         `gorm:"type:varchar(500)"`

	PaymentStatus    PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentDate      *time.Time      ``
	PaymentAmount    decimal.Decimal `gorm:"type:decimal(18,2)"`
	PaymentMethod    string          `gorm:"type:varchar(50)"`
	PaymentReference string          `gorm:"type:varchar(100)"`
	PaymentNumber    string          `gorm:"type:varchar(20)"`

	DeliveryStatus  DeliveryStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	DeliveryRecords []DeliveryRecord `gorm:"foreignKey:ItemID;references:ID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RequisitionItem) TableName() string {
	return "requisition_items"
}

// NewRequisitionItem creates a new requisition item
func NewRequisitionItem(requisitionID uuid.UUID, classification, description string, amount decimal.Decimal, unit string) (*RequisitionItem, error) {
	if requisitionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUISITION", "Requisition ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}

	now := time.Now()
	return &RequisitionItem{
		ID:              uuid.New(),
		RequisitionID:   requisitionID,
		Classification:  classification,
		Description:     description,
		Amount:          amount,
		Unit:            unit,
		Multiplier:      DefaultMultiplier,
		ApprovalStatus:  ApprovalStatusPending,
		PaymentStatus:   PaymentStatusPending,
		DeliveryStatus:  DeliveryStatusPending,
		DeliveryRecords: make([]DeliveryRecord, 0),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// UpdateAmount updates the ordered quantity and recalculates derived fields.
// The new amount must not fall below the quantity already received.
func (i *RequisitionItem) UpdateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if amount.LessThan(TotalReceived(i.DeliveryRecords)) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be less than quantity already received")
	}

	i.Amount = amount
	i.RecalculatePricing()
	i.RecalculateDeliveryStatus()
	i.UpdatedAt = time.Now()
	return nil
}

// SetSupplier sets the supplier details
func (i *RequisitionItem) SetSupplier(name, taxID string) {
	i.Supplier = name
	i.SupplierTaxID = taxID
	i.UpdatedAt = time.Now()
}

// SetPricing sets the unit price and multiplier and recalculates derived fields
func (i *RequisitionItem) SetPricing(priceUnit, multiplier decimal.Decimal) error {
	if priceUnit.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price per unit cannot be negative")
	}
	if multiplier.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_MULTIPLIER", "Multiplier must be positive")
	}

	i.PriceUnit = priceUnit
	i.Multiplier = multiplier
	i.RecalculatePricing()
	i.UpdatedAt = time.Now()
	return nil
}

// RecalculatePricing recomputes netPrice, subtotal and total from priceUnit,
// multiplier and amount, rounding each step to 2 decimal places. Recomputing
// from unchanged inputs always yields identical results.
func (i *RequisitionItem) RecalculatePricing() {
	if i.PriceUnit.IsZero() {
		return
	}
	if i.Multiplier.IsZero() {
		i.Multiplier = DefaultMultiplier
	}
	i.NetPrice = i.PriceUnit.Mul(i.Multiplier).Round(2)
	i.Subtotal = i.NetPrice.Mul(i.Amount).Round(2)
	i.Total = i.Subtotal.Mul(i.Multiplier).Round(2)
}

// SetApproval records the CEO decision on the item
func (i *RequisitionItem) SetApproval(status ApprovalStatus, comment string) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_APPROVAL_STATUS", fmt.Sprintf("Invalid approval status %q", status))
	}
	i.ApprovalStatus = status
	i.CEOComment = comment
	i.UpdatedAt = time.Now()
	return nil
}

// RecordPayment updates the payment state of the item. When the status first
// reaches a terminal-success value a payment number is generated once.
func (i *RequisitionItem) RecordPayment(status PaymentStatus, date *time.Time, amount decimal.Decimal, method, reference string) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", fmt.Sprintf("Invalid payment status %q", status))
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_PAYMENT_AMOUNT", "Payment amount cannot be negative")
	}

	i.PaymentStatus = status
	i.PaymentDate = date
	i.PaymentAmount = amount
	i.PaymentMethod = method
	i.PaymentReference = reference
	if status.IsSettled() && i.PaymentNumber == "" {
		i.PaymentNumber = generatePaymentNumber()
	}
	i.UpdatedAt = time.Now()
	return nil
}

// generatePaymentNumber produces a PAY-NNNNN reference with 5 random digits
func generatePaymentNumber() string {
	return fmt.Sprintf("PAY-%05d", rand.Intn(100000))
}

// AddDeliveryRecord appends a receipt event. The cumulative received
// quantity must never exceed the amount ordered.
func (i *RequisitionItem) AddDeliveryRecord(deliveryDate time.Time, quantity decimal.Decimal, quality QualityCheck, receivedBy, notes string) (*DeliveryRecord, error) {
	record, err := NewDeliveryRecord(i.ID, deliveryDate, quantity, quality, receivedBy)
	if err != nil {
		return nil, err
	}
	if notes != "" {
		record.SetNotes(notes)
	}

	newTotal := TotalReceived(i.DeliveryRecords).Add(quantity)
	if newTotal.GreaterThan(i.Amount) {
		remaining := i.Amount.Sub(TotalReceived(i.DeliveryRecords))
		return nil, shared.NewDomainError("QUANTITY_EXCEEDED",
			fmt.Sprintf("Cannot receive %s, only %s remaining", quantity.String(), remaining.String()))
	}

	i.DeliveryRecords = append(i.DeliveryRecords, *record)
	i.RecalculateDeliveryStatus()
	i.UpdatedAt = time.Now()
	return record, nil
}

// UpdateDeliveryRecord replaces the quantity and quality outcome of an
// existing receipt event, re-checking the over-receipt invariant.
func (i *RequisitionItem) UpdateDeliveryRecord(recordID uuid.UUID, quantity decimal.Decimal, quality QualityCheck, notes string) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}
	if !quality.IsValid() {
		return shared.NewDomainError("INVALID_QUALITY_CHECK", "Quality check outcome is required")
	}

	for idx := range i.DeliveryRecords {
		if i.DeliveryRecords[idx].ID != recordID {
			continue
		}
		othersTotal := decimal.Zero
		for j := range i.DeliveryRecords {
			if j != idx {
				othersTotal = othersTotal.Add(i.DeliveryRecords[j].Quantity)
			}
		}
		if othersTotal.Add(quantity).GreaterThan(i.Amount) {
			return shared.NewDomainError("QUANTITY_EXCEEDED", "Total received quantity cannot exceed amount ordered")
		}

		i.DeliveryRecords[idx].Quantity = quantity
		i.DeliveryRecords[idx].QualityCheck = quality
		i.DeliveryRecords[idx].Notes = notes
		i.DeliveryRecords[idx].UpdatedAt = time.Now()
		i.RecalculateDeliveryStatus()
		i.UpdatedAt = time.Now()
		return nil
	}
	return shared.NewDomainError("RECORD_NOT_FOUND", "Delivery record not found")
}

// RemoveDeliveryRecord deletes a receipt event
func (i *RequisitionItem) RemoveDeliveryRecord(recordID uuid.UUID) error {
	for idx := range i.DeliveryRecords {
		if i.DeliveryRecords[idx].ID == recordID {
			i.DeliveryRecords = append(i.DeliveryRecords[:idx], i.DeliveryRecords[idx+1:]...)
			i.RecalculateDeliveryStatus()
			i.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("RECORD_NOT_FOUND", "Delivery record not found")
}

// RecalculateDeliveryStatus refreshes the denormalized delivery status from
// the delivery records. Called after every mutation of the records.
func (i *RequisitionItem) RecalculateDeliveryStatus() {
	i.DeliveryStatus = DeliveryStatusFor(i.DeliveryRecords, i.Amount)
}

// TotalReceivedQuantity returns the cumulative received quantity
func (i *RequisitionItem) TotalReceivedQuantity() decimal.Decimal {
	return TotalReceived(i.DeliveryRecords)
}

// LatestDelivery returns the most recent delivery date, nil if none
func (i *RequisitionItem) LatestDelivery() *time.Time {
	return LatestDeliveryDate(i.DeliveryRecords)
}

// IsFullyDelivered reports whether the item has been completely received
func (i *RequisitionItem) IsFullyDelivered() bool {
	return i.DeliveryStatus == DeliveryStatusComplete
}
