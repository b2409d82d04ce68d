package model

import (
	"time"

	"github.com/google/uuid"
)

type AllocationPool struct {
	ID          uuid.UUID `json:"id"`
	SupplierID  uuid.UUID `json:"supplier_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Capacity    *int      `json:"capacity"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
