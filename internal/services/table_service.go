package services

import (
	"errors"
	"iter"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/angkor-pos/internal/models"
)

// TableService owns table records and their occupancy state. Every write
// keeps the invariant: status == available exactly when no order is bound.
type TableService struct {
	db *gorm.DB
}

// NewTableService constructs a TableService.
func NewTableService(db *gorm.DB) *TableService {
	return &TableService{db: db}
}

// Create registers a new physical table.
func (s *TableService) Create(tableNumber, seats int) (*models.Table, error) {
	if tableNumber <= 0 {
		return nil, validationf("table_number must be a positive integer")
	}
	if seats <= 0 {
		return nil, validationf("seats must be a positive integer")
	}

	var count int64
	if err := s.db.Model(&models.Table{}).
		Where("table_number = ?", tableNumber).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, duplicatef("table %d already exists", tableNumber)
	}

	table := models.Table{
		TableNumber: tableNumber,
		Seats:       seats,
		Status:      models.TableAvailable,
	}
	if err := s.db.Create(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

// Get loads a table by id.
func (s *TableService) Get(id uuid.UUID) (*models.Table, error) {
	var table models.Table
	if err := s.db.First(&table, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("table %s not found", id)
		}
		return nil, err
	}
	return &table, nil
}

// List returns all tables ordered by table number.
func (s *TableService) List() ([]models.Table, error) {
	var tables []models.Table
	if err := s.db.Order("table_number asc").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// Assign binds an order to the table and marks it occupied.
func (s *TableService) Assign(tableID, orderID uuid.UUID, customerName, customerPhone string, guests int) error {
	table, err := s.Get(tableID)
	if err != nil {
		return err
	}

	table.Status = models.TableInProgress
	table.CurrentOrderID = &orderID
	table.CustomerName = customerName
	table.CustomerPhone = customerPhone
	table.Guests = guests
	return s.db.Save(table).Error
}

// Release frees the table. Releasing an already-available table is a no-op.
func (s *TableService) Release(tableID uuid.UUID) error {
	table, err := s.Get(tableID)
	if err != nil {
		return err
	}

	if table.Status == models.TableAvailable && table.CurrentOrderID == nil {
		return nil
	}

	return s.db.Model(table).Updates(map[string]any{
		"status":           models.TableAvailable,
		"current_order_id": nil,
		"customer_name":    "",
		"customer_phone":   "",
		"guests":           0,
	}).Error
}

// UpdateStatus applies a generic status change. Moving to available always
// clears the bound order, regardless of the supplied order id.
func (s *TableService) UpdateStatus(tableID uuid.UUID, status string, orderID *uuid.UUID) (*models.Table, error) {
	switch status {
	case models.TableAvailable, models.TableInProgress, models.TableReserved:
	default:
		return nil, validationf("unknown table status %q", status)
	}

	table, err := s.Get(tableID)
	if err != nil {
		return nil, err
	}

	table.Status = status
	if status == models.TableAvailable {
		table.CurrentOrderID = nil
		table.CustomerName = ""
		table.CustomerPhone = ""
		table.Guests = 0
	} else if orderID != nil {
		table.CurrentOrderID = orderID
	}

	if err := s.db.Save(table).Error; err != nil {
		return nil, err
	}
	return table, nil
}

// Delete removes a table. Occupied or reserved tables cannot be deleted.
func (s *TableService) Delete(tableID uuid.UUID) error {
	table, err := s.Get(tableID)
	if err != nil {
		return err
	}

	if table.Status != models.TableAvailable {
		return conflictf("table %d is %s and cannot be deleted", table.TableNumber, table.Status)
	}

	return s.db.Delete(table).Error
}

// Available returns a lazy, restartable sequence of free tables ordered by
// table number. Each range over the sequence re-runs the query.
func (s *TableService) Available() iter.Seq2[models.Table, error] {
	return func(yield func(models.Table, error) bool) {
		rows, err := s.db.Model(&models.Table{}).
			Where("status = ?", models.TableAvailable).
			Order("table_number asc").
			Rows()
		if err != nil {
			yield(models.Table{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var table models.Table
			if err := s.db.ScanRows(rows, &table); err != nil {
				yield(models.Table{}, err)
				return
			}
			if !yield(table, nil) {
				return
			}
		}
	}
}
