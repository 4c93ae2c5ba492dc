package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

type ClinicRepository struct {
	DB *sql.DB
}

func NewClinicRepository(db *sql.DB) *ClinicRepository {
	return &ClinicRepository{DB: db}
}

const clinicColumns = `id, name, COALESCE(address, ''), active, created_at, updated_at`

func (r *ClinicRepository) Create(ctx context.Context, c *entity.Clinic) error {
	query := `
		INSERT INTO clinics (name, address, active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return conn(ctx, r.DB).QueryRowContext(ctx, query, c.Name, nullString(c.Address), c.Active).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ClinicRepository) FindByID(ctx context.Context, id int64) (*entity.Clinic, error) {
	return r.findOne(ctx, `SELECT `+clinicColumns+` FROM clinics WHERE id = $1`, id)
}

// nomes não são únicos; uma clínica ativa tem preferência sobre uma inativa homônima
const clinicByNameQuery = `SELECT ` + clinicColumns + ` FROM clinics WHERE LOWER(name) = LOWER($1) ORDER BY active DESC, id LIMIT 1`

func (r *ClinicRepository) FindByNameIgnoreCase(ctx context.Context, name string) (*entity.Clinic, error) {
	return r.findOne(ctx, clinicByNameQuery, name)
}

// ListActive ordena por id; o primeiro é usado como clínica padrão no intake externo.
func (r *ClinicRepository) ListActive(ctx context.Context) ([]*entity.Clinic, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, `SELECT `+clinicColumns+` FROM clinics WHERE active = TRUE ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clinics := []*entity.Clinic{}
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, err
		}
		clinics = append(clinics, c)
	}
	return clinics, rows.Err()
}

func (r *ClinicRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM clinics`).Scan(&n)
	return n, err
}

func (r *ClinicRepository) findOne(ctx context.Context, query string, arg any) (*entity.Clinic, error) {
	c, err := scanClinic(conn(ctx, r.DB).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrClinicNotFound
	}
	return c, err
}

func scanClinic(row rowScanner) (*entity.Clinic, error) {
	var c entity.Clinic
	if err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
