package database

import (
	"errors"

	"github.com/superstar306/dexmate-robot/internal/usecase"
	"gorm.io/gorm"
)

// translateError maps gorm errors to the usecase taxonomy so callers
// never see storage-level error values.
func translateError(err error, resource, id string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return usecase.ErrNotFound{Resource: resource, ID: id}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return usecase.ErrConflict{Message: resource + " " + id + " already exists"}
	}
	return err
}
