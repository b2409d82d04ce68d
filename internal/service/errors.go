package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tripdesk/supplier-contracts/internal/repository"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrCapacityExceeded = errors.New("capacity exceeded")
)

// translate maps repository errors onto service sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrGuardFailed):
		return ErrCapacityExceeded
	default:
		return err
	}
}
