package requisition

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecord(t *testing.T, quantity float64, day int) DeliveryRecord {
	t.Helper()
	record, err := NewDeliveryRecord(
		uuid.New(),
		time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		decimal.NewFromFloat(quantity),
		QualityCheckPassed,
		"J. Alvarez",
	)
	require.NoError(t, err)
	return *record
}

func TestNewDeliveryRecord_Validation(t *testing.T) {
	itemID := uuid.New()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	qty := decimal.NewFromInt(5)

	tests := []struct {
		name    string
		build   func() (*DeliveryRecord, error)
		wantErr string
	}{
		{"missing item", func() (*DeliveryRecord, error) {
			return NewDeliveryRecord(uuid.Nil, date, qty, QualityCheckPassed, "J. Alvarez")
		}, "INVALID_ITEM"},
		{"missing date", func() (*DeliveryRecord, error) {
			return NewDeliveryRecord(itemID, time.Time{}, qty, QualityCheckPassed, "J. Alvarez")
		}, "INVALID_DELIVERY_DATE"},
		{"zero quantity", func() (*DeliveryRecord, error) {
			return NewDeliveryRecord(itemID, date, decimal.Zero, QualityCheckPassed, "J. Alvarez")
		}, "INVALID_QUANTITY"},
		{"negative quantity", func() (*DeliveryRecord, error) {
			return NewDeliveryRecord(itemID, date, decimal.NewFromInt(-1), QualityCheckPassed, "J. Alvarez")
		}, "INVALID_QUANTITY"},
		{"invalid quality", func() (*DeliveryRecord, error) {
			return NewDeliveryRecord(itemID, date, qty, QualityCheck("ok"), "J. Alvarez")
		}, "INVALID_QUALITY_CHECK"},
		{"missing receiver", func() (*DeliveryRecord, error) {
			return NewDeliveryRecord(itemID, date, qty, QualityCheckPassed, "")
		}, "INVALID_RECEIVER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			require.Error(t, err)
			assertDomainErrorCode(t, err, tt.wantErr)
		})
	}

	record, err := NewDeliveryRecord(itemID, date, qty, QualityCheckPassed, "J. Alvarez")
	require.NoError(t, err)
	assert.Equal(t, itemID, record.ItemID)
	assert.True(t, record.Quantity.Equal(qty))
}

func TestTotalReceived(t *testing.T) {
	assert.True(t, TotalReceived(nil).IsZero())
	assert.True(t, TotalReceived([]DeliveryRecord{}).IsZero())

	records := []DeliveryRecord{makeRecord(t, 4, 1), makeRecord(t, 6, 2)}
	assert.True(t, TotalReceived(records).Equal(decimal.NewFromInt(10)))
}

func TestDeliveryStatusFor(t *testing.T) {
	target := decimal.NewFromInt(10)

	tests := []struct {
		name    string
		records []DeliveryRecord
		want    DeliveryStatus
	}{
		{"no records is pending", nil, DeliveryStatusPending},
		{"partial receipt", []DeliveryRecord{makeRecord(t, 3, 1)}, DeliveryStatusPartial},
		{"exact receipt is complete", []DeliveryRecord{makeRecord(t, 4, 1), makeRecord(t, 6, 2)}, DeliveryStatusComplete},
		{"over target is complete", []DeliveryRecord{makeRecord(t, 12, 1)}, DeliveryStatusComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeliveryStatusFor(tt.records, target))
		})
	}
}

func TestDeliveryStatusFor_MatchesTotalReceived(t *testing.T) {
	// the derived status must agree with the total under arbitrary
	// insert/delete sequences
	target := decimal.NewFromInt(20)
	records := make([]DeliveryRecord, 0)

	check := func() {
		status := DeliveryStatusFor(records, target)
		total := TotalReceived(records)
		switch {
		case total.IsZero():
			assert.Equal(t, DeliveryStatusPending, status)
		case total.GreaterThanOrEqual(target):
			assert.Equal(t, DeliveryStatusComplete, status)
		default:
			assert.Equal(t, DeliveryStatusPartial, status)
		}
	}

	check()
	records = append(records, makeRecord(t, 5, 1))
	check()
	records = append(records, makeRecord(t, 7, 2))
	check()
	records = records[:1] // delete the second record
	check()
	records = append(records, makeRecord(t, 15, 3))
	check()
	records = records[:0]
	check()
}

func TestLatestDeliveryDate(t *testing.T) {
	assert.Nil(t, LatestDeliveryDate(nil))

	records := []DeliveryRecord{makeRecord(t, 1, 5), makeRecord(t, 1, 12), makeRecord(t, 1, 8)}
	latest := LatestDeliveryDate(records)
	require.NotNil(t, latest)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), *latest)
}
