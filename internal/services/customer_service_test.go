package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/angkor-pos/internal/currency"
	"github.com/example/angkor-pos/internal/models"
	"github.com/example/angkor-pos/internal/services"
)

func newCustomerService(t *testing.T) (*services.CustomerService, *gorm.DB) {
	db := newTestDB(t)
	return services.NewCustomerService(db, currency.NewConverter(4100)), db
}

func seedOrder(t *testing.T, db *gorm.DB, name, phone string, total float64) *models.Order {
	t.Helper()
	order := &models.Order{
		CustomerName:  name,
		CustomerPhone: phone,
		Guests:        1,
		CustomerDetails: models.CustomerDetails{
			Name:   name,
			Phone:  phone,
			Guests: 1,
		},
		Bills: models.Bills{
			Subtotal:           total,
			TotalAfterDiscount: total,
		},
		Status: models.StatusInProgress,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestResolveOrCreateMatchesCaseInsensitively(t *testing.T) {
	svc, _ := newCustomerService(t)

	first, err := svc.ResolveOrCreate("John", "012345678")
	require.NoError(t, err)

	same, err := svc.ResolveOrCreate("john", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, same.ID)

	byPhone, err := svc.ResolveOrCreate("Somebody Else", "012345678")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byPhone.ID)

	fresh, err := svc.ResolveOrCreate("Mary", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, fresh.ID)
	assert.Zero(t, fresh.TotalOrders)
	assert.Zero(t, fresh.TotalSpent)
}

func TestApplyOrderDeltaAccumulates(t *testing.T) {
	svc, _ := newCustomerService(t)

	customer, err := svc.ResolveOrCreate("John", "")
	require.NoError(t, err)

	require.NoError(t, svc.ApplyOrderDelta(customer.ID, 10000, 1))
	require.NoError(t, svc.ApplyOrderDelta(customer.ID, 20000, 1))

	got, err := svc.Get(customer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalOrders)
	assert.InDelta(t, 30000, got.TotalSpent, 1e-9)
	assert.InDelta(t, 7.32, got.TotalSpentUSD, 1e-9)
	require.NotNil(t, got.LastOrderDate)
}

func TestApplyOrderDeltaClampsAtZero(t *testing.T) {
	svc, _ := newCustomerService(t)

	customer, err := svc.ResolveOrCreate("John", "")
	require.NoError(t, err)
	require.NoError(t, svc.ApplyOrderDelta(customer.ID, 10000, 1))

	// Reversals below zero clamp silently instead of failing.
	require.NoError(t, svc.ApplyOrderDelta(customer.ID, -25000, -3))

	got, err := svc.Get(customer.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalOrders)
	assert.Zero(t, got.TotalSpent)
	assert.Zero(t, got.TotalSpentUSD)
}

func TestApplyOrderDeltaKeepsLastOrderDateOnReversal(t *testing.T) {
	svc, _ := newCustomerService(t)

	customer, err := svc.ResolveOrCreate("John", "")
	require.NoError(t, err)
	require.NoError(t, svc.ApplyOrderDelta(customer.ID, 10000, 1))

	before, err := svc.Get(customer.ID)
	require.NoError(t, err)
	require.NotNil(t, before.LastOrderDate)

	require.NoError(t, svc.ApplyOrderDelta(customer.ID, -10000, -1))
	after, err := svc.Get(customer.ID)
	require.NoError(t, err)
	require.NotNil(t, after.LastOrderDate)
	assert.WithinDuration(t, *before.LastOrderDate, *after.LastOrderDate, time.Millisecond)
}

func TestRenameCascadeRewritesOrderSnapshots(t *testing.T) {
	svc, db := newCustomerService(t)

	seedOrder(t, db, "John", "", 10000)
	seedOrder(t, db, "JOHN", "012999888", 20000)
	other := seedOrder(t, db, "Mary", "", 5000)

	require.NoError(t, svc.RenameCascade("john", "Jon", ""))

	var orders []models.Order
	require.NoError(t, db.Where("customer_name = ?", "Jon").Find(&orders).Error)
	require.Len(t, orders, 2)
	for _, order := range orders {
		assert.Equal(t, "Jon", order.CustomerName)
		assert.Equal(t, "Jon", order.CustomerDetails.Name)
		assert.Empty(t, order.CustomerPhone)
	}

	var untouched models.Order
	require.NoError(t, db.First(&untouched, "id = ?", other.ID).Error)
	assert.Equal(t, "Mary", untouched.CustomerName)
}

func TestSoftDeleteBlanksOrderSnapshots(t *testing.T) {
	svc, db := newCustomerService(t)

	customer, err := svc.ResolveOrCreate("John", "012345678")
	require.NoError(t, err)
	seedOrder(t, db, "john", "012345678", 10000)

	require.NoError(t, svc.SoftDelete(customer.ID))

	got, err := svc.Get(customer.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	var order models.Order
	require.NoError(t, db.First(&order).Error)
	assert.Empty(t, order.CustomerName)
	assert.Empty(t, order.CustomerPhone)
	assert.Empty(t, order.CustomerDetails.Name)
	// The order itself survives.
	assert.InDelta(t, 10000, order.Bills.TotalAfterDiscount, 1e-9)
}

func TestReconcileAllRebuildsStatistics(t *testing.T) {
	svc, db := newCustomerService(t)

	seedOrder(t, db, "John", "", 10000)
	seedOrder(t, db, "john", "012345678", 20000)
	seedOrder(t, db, "Mary", "", 7000)

	// Drift: an existing customer with stale totals.
	stale, err := svc.ResolveOrCreate("John", "")
	require.NoError(t, err)
	require.NoError(t, svc.ApplyOrderDelta(stale.ID, 999999, 9))

	result, err := svc.ReconcileAll()
	require.NoError(t, err)
	assert.Equal(t, 3, result.OrdersScanned)
	assert.Equal(t, 1, result.CustomersUpdated)
	assert.Equal(t, 1, result.CustomersCreated)

	john, err := svc.Get(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, john.TotalOrders)
	assert.InDelta(t, 30000, john.TotalSpent, 1e-9)
	assert.InDelta(t, 7.32, john.TotalSpentUSD, 1e-9)
	assert.Equal(t, "012345678", john.Phone)
}

func TestReconcileAllIsIdempotent(t *testing.T) {
	svc, db := newCustomerService(t)

	seedOrder(t, db, "John", "", 10000)
	seedOrder(t, db, "john", "", 20000)
	seedOrder(t, db, "Mary", "099111222", 7000)

	_, err := svc.ReconcileAll()
	require.NoError(t, err)

	var first []models.Customer
	require.NoError(t, db.Order("name asc").Find(&first).Error)

	result, err := svc.ReconcileAll()
	require.NoError(t, err)
	assert.Zero(t, result.CustomersCreated)

	var second []models.Customer
	require.NoError(t, db.Order("name asc").Find(&second).Error)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].TotalOrders, second[i].TotalOrders)
		assert.InDelta(t, first[i].TotalSpent, second[i].TotalSpent, 1e-9)
		assert.InDelta(t, first[i].TotalSpentUSD, second[i].TotalSpentUSD, 1e-9)
	}
}
