package database

import (
	"context"

	"github.com/yeremiapane/restaurant-tables/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TableRepository is the record-store boundary for the tables relation.
type TableRepository interface {
	// Semua meja restoran, urut sesuai waktu dibuat.
	List(ctx context.Context, restaurantID string, location *models.TableLocation) ([]models.Table, error)
	Get(ctx context.Context, restaurantID, id string) (*models.Table, error)
	FindByName(ctx context.Context, restaurantID, name string) ([]models.Table, error)
	Insert(ctx context.Context, table *models.Table) error
	// UpdateStatus returns the number of rows that actually changed.
	UpdateStatus(ctx context.Context, restaurantID, id string, status models.TableStatus) (int64, error)
	UpdateStatusByName(ctx context.Context, restaurantID, name string, status models.TableStatus) (int64, error)
	Delete(ctx context.Context, restaurantID, id string) error
	// ResetStatuses sets reserved for the given ids and available for every
	// other table of the restaurant, in one transaction.
	ResetStatuses(ctx context.Context, restaurantID string, reserved []string) (released, claimed int64, err error)
	CountByStatus(ctx context.Context, restaurantID string) (map[models.TableStatus]int64, error)
}

type GormTableRepository struct {
	db *gorm.DB
}

func NewGormTableRepository(db *gorm.DB) *GormTableRepository {
	return &GormTableRepository{db: db}
}

func (r *GormTableRepository) List(ctx context.Context, restaurantID string, location *models.TableLocation) ([]models.Table, error) {
	var tables []models.Table
	q := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID)

	if location != nil {
		q = q.Where("location = ?", *location)
	}

	err := q.Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Find(&tables).Error
	if err != nil {
		return nil, storeErr("list", "tables", restaurantID, err)
	}
	return tables, nil
}

func (r *GormTableRepository) Get(ctx context.Context, restaurantID, id string) (*models.Table, error) {
	var t models.Table
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND id = ?", restaurantID, id).
		First(&t).Error
	if err != nil {
		return nil, storeErr("get", "table", id, err)
	}
	return &t, nil
}

func (r *GormTableRepository) FindByName(ctx context.Context, restaurantID, name string) ([]models.Table, error) {
	var tables []models.Table
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND name = ?", restaurantID, name).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}}).
		Find(&tables).Error
	if err != nil {
		return nil, storeErr("find", "table", name, err)
	}
	return tables, nil
}

func (r *GormTableRepository) Insert(ctx context.Context, table *models.Table) error {
	if err := r.db.WithContext(ctx).Create(table).Error; err != nil {
		return storeErr("insert", "table", table.Name, err)
	}
	return nil
}

func (r *GormTableRepository) UpdateStatus(ctx context.Context, restaurantID, id string, status models.TableStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Table{}).
		Where("restaurant_id = ? AND id = ? AND status <> ?", restaurantID, id, status).
		Update("status", status)
	if res.Error != nil {
		return 0, storeErr("update", "table", id, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormTableRepository) UpdateStatusByName(ctx context.Context, restaurantID, name string, status models.TableStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Table{}).
		Where("restaurant_id = ? AND name = ? AND status <> ?", restaurantID, name, status).
		Update("status", status)
	if res.Error != nil {
		return 0, storeErr("update", "table", name, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormTableRepository) Delete(ctx context.Context, restaurantID, id string) error {
	res := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND id = ?", restaurantID, id).
		Delete(&models.Table{})
	if res.Error != nil {
		return storeErr("delete", "table", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return storeErr("delete", "table", id, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *GormTableRepository) ResetStatuses(ctx context.Context, restaurantID string, reserved []string) (int64, int64, error) {
	var released, claimed int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Table{}).
			Where("restaurant_id = ? AND status <> ?", restaurantID, models.TableStatusAvailable)
		if len(reserved) > 0 {
			q = q.Where("id NOT IN ?", reserved)
		}
		res := q.Update("status", models.TableStatusAvailable)
		if res.Error != nil {
			return res.Error
		}
		released = res.RowsAffected

		if len(reserved) == 0 {
			return nil
		}
		res = tx.Model(&models.Table{}).
			Where("restaurant_id = ? AND id IN ? AND status <> ?", restaurantID, reserved, models.TableStatusReserved).
			Update("status", models.TableStatusReserved)
		if res.Error != nil {
			return res.Error
		}
		claimed = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, 0, storeErr("reconcile", "tables", restaurantID, err)
	}
	return released, claimed, nil
}

func (r *GormTableRepository) CountByStatus(ctx context.Context, restaurantID string) (map[models.TableStatus]int64, error) {
	var rows []struct {
		Status models.TableStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Table{}).
		Select("status, COUNT(*) AS count").
		Where("restaurant_id = ?", restaurantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, storeErr("count", "tables", restaurantID, err)
	}

	counts := make(map[models.TableStatus]int64, len(models.TableStatuses))
	for _, st := range models.TableStatuses {
		counts[st] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
