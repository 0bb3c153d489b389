package services_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/angkor-pos/internal/models"
	"github.com/example/angkor-pos/internal/services"
)

// assertOccupancyInvariant checks status == available exactly when no order
// is bound.
func assertOccupancyInvariant(t *testing.T, table *models.Table) {
	t.Helper()
	if table.Status == models.TableAvailable {
		assert.Nil(t, table.CurrentOrderID, "available table must not hold an order")
	} else {
		assert.NotNil(t, table.CurrentOrderID, "occupied table must hold an order")
	}
}

func TestCreateTableRejectsDuplicateNumber(t *testing.T) {
	svc := services.NewTableService(newTestDB(t))

	_, err := svc.Create(5, 4)
	require.NoError(t, err)

	_, err = svc.Create(5, 2)
	assert.ErrorIs(t, err, services.ErrDuplicate)
}

func TestCreateTableValidatesInput(t *testing.T) {
	svc := services.NewTableService(newTestDB(t))

	_, err := svc.Create(0, 4)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.Create(1, 0)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestAssignAndRelease(t *testing.T) {
	svc := services.NewTableService(newTestDB(t))

	table, err := svc.Create(7, 4)
	require.NoError(t, err)

	orderID := uuid.New()
	require.NoError(t, svc.Assign(table.ID, orderID, "Dara", "012555666", 3))

	got, err := svc.Get(table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableInProgress, got.Status)
	require.NotNil(t, got.CurrentOrderID)
	assert.Equal(t, orderID, *got.CurrentOrderID)
	assert.Equal(t, "Dara", got.CustomerName)
	assert.Equal(t, 3, got.Guests)
	assertOccupancyInvariant(t, got)

	require.NoError(t, svc.Release(table.ID))
	got, err = svc.Get(table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status)
	assert.Nil(t, got.CurrentOrderID)
	assert.Empty(t, got.CustomerName)
	assertOccupancyInvariant(t, got)
}

func TestReleaseIsIdempotent(t *testing.T) {
	svc := services.NewTableService(newTestDB(t))

	table, err := svc.Create(2, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Release(table.ID))
	require.NoError(t, svc.Release(table.ID))

	got, err := svc.Get(table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status)
}

func TestAssignUnknownTable(t *testing.T) {
	svc := services.NewTableService(newTestDB(t))

	err := svc.Assign(uuid.New(), uuid.New(), "Dara", "", 1)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestUpdateStatusToAvailableForcesOrderClear(t *testing.T) {
	svc := services.NewTableService(newTestDB(t))

	table, err := svc.Create(3, 4)
	require.NoError(t, err)
	require.NoError(t, svc.Assign(table.ID, uuid.New(), "Sok", "", 2))

	// The supplied order id loses against the status transition.
	stray := uuid.New()
	got, err := svc.UpdateStatus(table.ID, models.TableAvailable, &stray)
	require.NoError(t, err)
	assert.Nil(t, got.CurrentOrderID)
	assert.Equal(t, models.TableAvailable, got.Status)
	assertOccupancyInvariant(t, got)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := services.NewTableService(newTestDB(t))

	table, err := svc.Create(4, 4)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(table.ID, "occupied", nil)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestDeleteOccupiedTableConflicts(t *testing.T) {
	svc := services.NewTableService(newTestDB(t))

	table, err := svc.Create(9, 6)
	require.NoError(t, err)
	require.NoError(t, svc.Assign(table.ID, uuid.New(), "Chan", "", 4))

	err = svc.Delete(table.ID)
	assert.ErrorIs(t, err, services.ErrConflict)

	require.NoError(t, svc.Release(table.ID))
	assert.NoError(t, svc.Delete(table.ID))
}

func TestAvailableSequenceIsOrderedAndRestartable(t *testing.T) {
	svc := services.NewTableService(newTestDB(t))

	for _, number := range []int{3, 1, 2} {
		_, err := svc.Create(number, 4)
		require.NoError(t, err)
	}
	second, err := svc.Get(mustTableID(t, svc, 2))
	require.NoError(t, err)
	require.NoError(t, svc.Assign(second.ID, uuid.New(), "Srey", "", 2))

	collect := func() []int {
		var numbers []int
		for table, err := range svc.Available() {
			require.NoError(t, err)
			numbers = append(numbers, table.TableNumber)
		}
		return numbers
	}

	assert.Equal(t, []int{1, 3}, collect())
	// A second range restarts the sequence from scratch.
	assert.Equal(t, []int{1, 3}, collect())
}

func mustTableID(t *testing.T, svc *services.TableService, number int) uuid.UUID {
	t.Helper()
	tables, err := svc.List()
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	for _, table := range tables {
		if table.TableNumber == number {
			return table.ID
		}
	}
	t.Fatalf("table %d not found", number)
	return uuid.Nil
}
