package entity

import (
	"context"
	"time"
)

type Clinic struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ClinicRepositoryInterface interface {
	Create(ctx context.Context, c *Clinic) error
	FindByID(ctx context.Context, id int64) (*Clinic, error)
	// FindByNameIgnoreCase devolve ErrClinicNotFound quando não há match exato.
	FindByNameIgnoreCase(ctx context.Context, name string) (*Clinic, error)
	ListActive(ctx context.Context) ([]*Clinic, error)
	Count(ctx context.Context) (int64, error)
}
