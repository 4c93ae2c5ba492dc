package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	l.id, l.receptionist_name, l.client_name, l.dni, l.monthly_income, l.treatment_cost,
	l.phone, COALESCE(l.email, ''), l.clinic_id, c.name, l.medical_specialty_id, s.name,
	l.status, l.origin, COALESCE(l.observation, ''), l.created_at, l.updated_at`

const leadFrom = `
	FROM leads l
	JOIN clinics c ON c.id = l.clinic_id
	JOIN medical_specialties s ON s.id = l.medical_specialty_id`

// nome da API -> coluna; qualquer coisa fora daqui não entra no ORDER BY
var leadSortColumns = map[string]string{
	"createdAt":     "l.created_at",
	"updatedAt":     "l.updated_at",
	"clientName":    "l.client_name",
	"status":        "l.status",
	"treatmentCost": "l.treatment_cost",
	"id":            "l.id",
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			receptionist_name, client_name, dni, monthly_income, treatment_cost, phone, email,
			clinic_id, medical_specialty_id, status, origin, observation
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	return conn(ctx, r.DB).QueryRowContext(ctx, query,
		lead.ReceptionistName,
		lead.ClientName,
		lead.DNI,
		lead.MonthlyIncome,
		lead.TreatmentCost,
		lead.Phone,
		nullString(lead.Email),
		lead.ClinicID,
		lead.MedicalSpecialtyID,
		string(lead.Status),
		lead.Origin,
		nullString(lead.Observation),
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
}

// Update regrava a linha inteira; updated_at é atualizado pelo trigger.
func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads SET
			receptionist_name = $1, client_name = $2, dni = $3, monthly_income = $4,
			treatment_cost = $5, phone = $6, email = $7, clinic_id = $8,
			medical_specialty_id = $9, status = $10, origin = $11, observation = $12
		WHERE id = $13
		RETURNING updated_at
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		lead.ReceptionistName,
		lead.ClientName,
		lead.DNI,
		lead.MonthlyIncome,
		lead.TreatmentCost,
		lead.Phone,
		nullString(lead.Email),
		lead.ClinicID,
		lead.MedicalSpecialtyID,
		string(lead.Status),
		lead.Origin,
		nullString(lead.Observation),
		lead.ID,
	).Scan(&lead.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrLeadNotFound
	}
	return err
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	query := "SELECT" + leadColumns + leadFrom + " WHERE l.id = $1"

	lead, err := scanLead(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) ExistsByDNI(ctx context.Context, dni string) (bool, error) {
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM leads WHERE dni = $1)`, dni,
	).Scan(&exists)
	return exists, err
}

func (r *LeadRepository) ExistsByDNIExcludingID(ctx context.Context, dni string, id int64) (bool, error) {
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM leads WHERE dni = $1 AND id <> $2)`, dni, id,
	).Scan(&exists)
	return exists, err
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter, page entity.PageRequest) ([]*entity.Lead, int64, error) {
	where, args := buildLeadWhere(filter)
	db := conn(ctx, r.DB)

	var total int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads l"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	query, args := buildLeadPageQuery(where, args, page)
	leads, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *LeadRepository) ListAll(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	where, args := buildLeadWhere(filter)
	query := "SELECT" + leadColumns + leadFrom + where + " ORDER BY l.created_at DESC, l.id DESC"
	return r.query(ctx, query, args...)
}

func (r *LeadRepository) Stats(ctx context.Context, dayStart time.Time) (*entity.LeadStats, error) {
	db := conn(ctx, r.DB)
	stats := &entity.LeadStats{
		ByStatus: make(map[entity.LeadStatus]int64),
		ByOrigin: make(map[string]int64),
	}
	for _, s := range entity.LeadStatuses() {
		stats.ByStatus[s] = 0
	}

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at >= $1) FROM leads`, dayStart,
	).Scan(&stats.TotalLeads, &stats.TodaysLeads)
	if err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}

	if err := groupCount(ctx, db, `SELECT status, COUNT(*) FROM leads GROUP BY status`, func(k string, n int64) {
		stats.ByStatus[entity.LeadStatus(k)] = n
	}); err != nil {
		return nil, err
	}
	if err := groupCount(ctx, db, `SELECT origin, COUNT(*) FROM leads GROUP BY origin`, func(k string, n int64) {
		stats.ByOrigin[k] = n
	}); err != nil {
		return nil, err
	}
	return stats, nil
}

func groupCount(ctx context.Context, db querier, query string, fn func(string, int64)) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		fn(key, n)
	}
	return rows.Err()
}

func (r *LeadRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Lead, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var l entity.Lead
	var status string
	err := row.Scan(
		&l.ID,
		&l.ReceptionistName,
		&l.ClientName,
		&l.DNI,
		&l.MonthlyIncome,
		&l.TreatmentCost,
		&l.Phone,
		&l.Email,
		&l.ClinicID,
		&l.ClinicName,
		&l.MedicalSpecialtyID,
		&l.MedicalSpecialtyName,
		&status,
		&l.Origin,
		&l.Observation,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = entity.LeadStatus(status)
	return &l, nil
}

// buildLeadWhere monta o WHERE com placeholders; os filtros são combinados com AND.
func buildLeadWhere(f entity.LeadFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != nil {
		add("l.status = $%d", string(*f.Status))
	}
	if f.ClinicID != nil {
		add("l.clinic_id = $%d", *f.ClinicID)
	}
	if f.StartDate != nil {
		add("l.created_at >= $%d", *f.StartDate)
	}
	if f.EndDate != nil {
		add("l.created_at <= $%d", *f.EndDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func buildLeadPageQuery(where string, args []any, page entity.PageRequest) (string, []any) {
	column, ok := leadSortColumns[page.SortField]
	if !ok {
		column = "l.created_at"
	}
	dir := "DESC"
	if page.SortDir == entity.SortAsc {
		dir = "ASC"
	}

	args = append(args, page.Size, page.Page*page.Size)
	query := fmt.Sprintf("SELECT%s%s%s ORDER BY %s %s, l.id %s LIMIT $%d OFFSET $%d",
		leadColumns, leadFrom, where, column, dir, dir, len(args)-1, len(args))
	return query, args
}
