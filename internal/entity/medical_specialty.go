package entity

import (
	"context"
	"time"
)

type MedicalSpecialty struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MedicalSpecialtyRepositoryInterface interface {
	Create(ctx context.Context, s *MedicalSpecialty) error
	FindByID(ctx context.Context, id int64) (*MedicalSpecialty, error)
	// ListActive filtra por categoria quando category != "".
	ListActive(ctx context.Context, category string) ([]*MedicalSpecialty, error)
	Count(ctx context.Context) (int64, error)
}

// ReferenceImporter grava clínicas e especialidades ignorando nomes que já existem.
type ReferenceImporter interface {
	ImportReferenceData(ctx context.Context, clinics []*Clinic, specialties []*MedicalSpecialty) (insertedClinics, insertedSpecialties int, err error)
}
