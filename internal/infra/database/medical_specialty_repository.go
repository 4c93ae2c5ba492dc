package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

type MedicalSpecialtyRepository struct {
	DB *sql.DB
}

func NewMedicalSpecialtyRepository(db *sql.DB) *MedicalSpecialtyRepository {
	return &MedicalSpecialtyRepository{DB: db}
}

const specialtyColumns = `id, name, COALESCE(category, ''), active, created_at, updated_at`

func (r *MedicalSpecialtyRepository) Create(ctx context.Context, s *entity.MedicalSpecialty) error {
	query := `
		INSERT INTO medical_specialties (name, category, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return conn(ctx, r.DB).QueryRowContext(ctx, query, s.Name, nullString(s.Category), s.Active).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *MedicalSpecialtyRepository) FindByID(ctx context.Context, id int64) (*entity.MedicalSpecialty, error) {
	s, err := scanSpecialty(conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT `+specialtyColumns+` FROM medical_specialties WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrMedicalSpecialtyNotFound
	}
	return s, err
}

func (r *MedicalSpecialtyRepository) ListActive(ctx context.Context, category string) ([]*entity.MedicalSpecialty, error) {
	query := `SELECT ` + specialtyColumns + ` FROM medical_specialties WHERE active = TRUE`
	var args []any
	if category != "" {
		query += ` AND LOWER(category) = LOWER($1)`
		args = append(args, category)
	}
	query += ` ORDER BY id`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	specialties := []*entity.MedicalSpecialty{}
	for rows.Next() {
		s, err := scanSpecialty(rows)
		if err != nil {
			return nil, err
		}
		specialties = append(specialties, s)
	}
	return specialties, rows.Err()
}

func (r *MedicalSpecialtyRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM medical_specialties`).Scan(&n)
	return n, err
}

func scanSpecialty(row rowScanner) (*entity.MedicalSpecialty, error) {
	var s entity.MedicalSpecialty
	if err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
