package database

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/restaurant-tables/utils"
	"gorm.io/gorm"
)

// storeErr turns a driver error into the core taxonomy. Callers never see
// driver-specific codes, only NotFound or StoreError.
func storeErr(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFoundError(resource, id)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return utils.NewValidationError("name", "%s already exists", resource)
	}
	return utils.NewStoreError(fmt.Sprintf("%s %s", op, resource), err)
}
