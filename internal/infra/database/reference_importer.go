package database

import (
	"context"

	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

// ReferenceImporter grava a carga da planilha numa única transação.
type ReferenceImporter struct {
	Tx          *TxManager
	Clinics     *ClinicRepository
	Specialties *MedicalSpecialtyRepository
}

func NewReferenceImporter(tx *TxManager, clinics *ClinicRepository, specialties *MedicalSpecialtyRepository) *ReferenceImporter {
	return &ReferenceImporter{Tx: tx, Clinics: clinics, Specialties: specialties}
}

func (i *ReferenceImporter) ImportReferenceData(ctx context.Context, clinics []*entity.Clinic, specialties []*entity.MedicalSpecialty) (int, int, error) {
	var insertedClinics, insertedSpecialties int

	err := i.Tx.WithinTx(ctx, func(ctx context.Context) error {
		db := conn(ctx, i.Tx.DB)

		for _, c := range clinics {
			var exists bool
			if err := db.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM clinics WHERE LOWER(name) = LOWER($1))`, c.Name,
			).Scan(&exists); err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := i.Clinics.Create(ctx, c); err != nil {
				return err
			}
			insertedClinics++
		}

		for _, s := range specialties {
			var exists bool
			if err := db.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM medical_specialties WHERE LOWER(name) = LOWER($1))`, s.Name,
			).Scan(&exists); err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := i.Specialties.Create(ctx, s); err != nil {
				return err
			}
			insertedSpecialties++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return insertedClinics, insertedSpecialties, nil
}
