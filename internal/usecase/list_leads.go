package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
	defaultSort     = "createdAt"
)

// campos de ordenação aceitos (nome da API)
var sortableLeadFields = map[string]bool{
	"createdAt":     true,
	"updatedAt":     true,
	"clientName":    true,
	"status":        true,
	"treatmentCost": true,
	"id":            true,
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ListLeadsInput chega cru da query string.
type ListLeadsInput struct {
	Status    string
	ClinicID  string
	StartDate string
	EndDate   string
	Page      string
	Size      string
	Sort      string
}

type ListLeadsUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Location *time.Location
	Now      func() time.Time
}

func NewListLeadsUseCase(leads entity.LeadRepositoryInterface, loc *time.Location) *ListLeadsUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &ListLeadsUseCase{Leads: leads, Location: loc, Now: time.Now}
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, input ListLeadsInput) (*Page[LeadSummary], error) {
	filter, err := uc.ParseFilter(input)
	if err != nil {
		return nil, err
	}
	page, errs := ParsePageRequest(input.Page, input.Size, input.Sort)
	if len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	leads, total, err := uc.Leads.List(ctx, filter, page)
	if err != nil {
		return nil, technical("LEAD_LIST_FAILED", "erro ao listar leads", err)
	}
	return NewPage(summarize(leads), page, total), nil
}

// ExecuteAll devolve tudo sem paginação; o handler avisa o cliente no header.
func (uc *ListLeadsUseCase) ExecuteAll(ctx context.Context, input ListLeadsInput) ([]LeadSummary, error) {
	filter, err := uc.ParseFilter(input)
	if err != nil {
		return nil, err
	}
	leads, err := uc.Leads.ListAll(ctx, filter)
	if err != nil {
		return nil, technical("LEAD_LIST_FAILED", "erro ao listar leads", err)
	}
	return summarize(leads), nil
}

func (uc *ListLeadsUseCase) Get(ctx context.Context, id int64) (*LeadDetail, error) {
	lead, err := uc.Leads.FindByID(ctx, id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, leadNotFound(id, err)
	}
	if err != nil {
		return nil, technical("LEAD_LOOKUP_FAILED", "erro ao buscar lead", err)
	}
	return NewLeadDetail(lead), nil
}

func (uc *ListLeadsUseCase) Stats(ctx context.Context) (*entity.LeadStats, error) {
	now := uc.Now().In(uc.Location)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.Location)

	stats, err := uc.Leads.Stats(ctx, dayStart)
	if err != nil {
		return nil, technical("LEAD_STATS_FAILED", "erro ao calcular estatísticas", err)
	}
	return stats, nil
}

func (uc *ListLeadsUseCase) ParseFilter(input ListLeadsInput) (entity.LeadFilter, error) {
	var filter entity.LeadFilter
	var errs []ValidationError

	if s := strings.TrimSpace(input.Status); s != "" {
		status, err := entity.ParseLeadStatus(s)
		if err != nil {
			return filter, newDomainError(KindInvalidStatus, "INVALID_STATUS", "Estado inválido: "+s, err)
		}
		filter.Status = &status
	}

	if s := strings.TrimSpace(input.ClinicID); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			errs = append(errs, ValidationError{"clinicId", "Debe ser un número válido"})
		} else {
			filter.ClinicID = &id
		}
	}

	if s := strings.TrimSpace(input.StartDate); s != "" {
		start, _, err := parseDate(s, uc.Location)
		if err != nil {
			errs = append(errs, ValidationError{"startDate", "Fecha inválida"})
		} else {
			filter.StartDate = &start
		}
	}

	if s := strings.TrimSpace(input.EndDate); s != "" {
		end, dateOnly, err := parseDate(s, uc.Location)
		if err != nil {
			errs = append(errs, ValidationError{"endDate", "Fecha inválida"})
		} else {
			if dateOnly {
				// data sem hora cobre o dia inteiro
				end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
			}
			filter.EndDate = &end
		}
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		errs = append(errs, ValidationError{"startDate", "Debe ser anterior a endDate"})
	}

	if len(errs) > 0 {
		return filter, validationFailed(errs)
	}
	return filter, nil
}

func parseDate(raw string, loc *time.Location) (time.Time, bool, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t, layout == "2006-01-02", nil
		}
		lastErr = err
	}
	return time.Time{}, false, lastErr
}

// ParsePageRequest aplica defaults: página 0, 20 itens, createdAt desc.
func ParsePageRequest(rawPage, rawSize, rawSort string) (entity.PageRequest, []ValidationError) {
	req := entity.PageRequest{Page: 0, Size: DefaultPageSize, SortField: defaultSort, SortDir: entity.SortDesc}
	var errs []ValidationError

	if s := strings.TrimSpace(rawPage); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil || p < 0 {
			errs = append(errs, ValidationError{"page", "Debe ser un entero mayor o igual a 0"})
		} else {
			req.Page = p
		}
	}

	if s := strings.TrimSpace(rawSize); s != "" {
		n, err := strconv.Atoi(s)
		switch {
		case err != nil || n < 1:
			errs = append(errs, ValidationError{"size", "Debe ser un entero mayor a 0"})
		case n > MaxPageSize:
			req.Size = MaxPageSize
		default:
			req.Size = n
		}
	}

	if s := strings.TrimSpace(rawSort); s != "" {
		field, dir, _ := strings.Cut(s, ",")
		field = strings.TrimSpace(field)
		if !sortableLeadFields[field] {
			errs = append(errs, ValidationError{"sort", "Campo de ordenamiento no permitido: " + field})
		} else {
			req.SortField = field
		}
		// campo sem direção ordena ASC; DESC só no default sem sort
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
			req.SortDir = entity.SortAsc
		case "desc":
			req.SortDir = entity.SortDesc
		default:
			errs = append(errs, ValidationError{"sort", "La dirección debe ser asc o desc"})
		}
	}

	return req, errs
}

func leadNotFound(id int64, cause error) error {
	return newDomainError(KindNotFound, "LEAD_NOT_FOUND", "Lead no encontrado con ID: "+strconv.FormatInt(id, 10), cause)
}
