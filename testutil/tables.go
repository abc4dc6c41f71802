package testutil

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/yeremiapane/restaurant-tables/database"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/utils"
)

// FlakyTables wraps a table repository whose single-row status updates can
// be switched to fail, leaving every other call untouched.
type FlakyTables struct {
	database.TableRepository
	failing atomic.Bool
}

func NewFlakyTables(repo database.TableRepository) *FlakyTables {
	return &FlakyTables{TableRepository: repo}
}

func (f *FlakyTables) FailUpdates(on bool) {
	f.failing.Store(on)
}

func (f *FlakyTables) UpdateStatus(ctx context.Context, restaurantID, id string, status models.TableStatus) (int64, error) {
	if f.failing.Load() {
		return 0, utils.NewStoreError("update table", errors.New("connection reset"))
	}
	return f.TableRepository.UpdateStatus(ctx, restaurantID, id, status)
}
