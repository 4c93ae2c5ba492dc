package usecase

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

type CreateLeadInput struct {
	ReceptionistName   string           `json:"receptionistName"`
	ClientName         string           `json:"clientName"`
	ClinicID           *int64           `json:"clinicId"`
	MedicalSpecialtyID *int64           `json:"medicalSpecialtyId"`
	DNI                string           `json:"dni"`
	MonthlyIncome      *decimal.Decimal `json:"monthlyIncome"`
	TreatmentCost      *decimal.Decimal `json:"treatmentCost"`
	Phone              string           `json:"phone"`
	Email              string           `json:"email"`
}

// UpdateLeadInput: nil significa "não mexe".
type UpdateLeadInput struct {
	ReceptionistName   *string          `json:"receptionistName"`
	ClientName         *string          `json:"clientName"`
	ClinicID           *int64           `json:"clinicId"`
	MedicalSpecialtyID *int64           `json:"medicalSpecialtyId"`
	DNI                *string          `json:"dni"`
	MonthlyIncome      *decimal.Decimal `json:"monthlyIncome"`
	TreatmentCost      *decimal.Decimal `json:"treatmentCost"`
	Phone              *string          `json:"phone"`
	Email              *string          `json:"email"`
	Status             *string          `json:"status"`
	Origin             *string          `json:"origin"`
	Observation        *string          `json:"observation"`
}

type UpdateLeadStatusInput struct {
	Status string `json:"status"`
}

// ExternalLeadInput vem do formulário do Squarespace; quase nada é garantido.
type ExternalLeadInput struct {
	ReceptionistName string      `json:"receptionistName"`
	Sede             string      `json:"sede"`
	ClientName       string      `json:"clientName"`
	DNI              string      `json:"dni"`
	MonthlyIncome    LooseAmount `json:"monthlyIncome"`
	TreatmentCost    LooseAmount `json:"treatmentCost"`
	Phone            string      `json:"phone"`
	Source           string      `json:"source"`
}

type ExternalLeadOutput struct {
	OK        bool      `json:"ok"`
	LeadID    int64     `json:"leadId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// LooseAmount aceita número, string numérica ("S/ 3,500.00") ou nada.
// Valor que não dá pra ler fica como ausente em vez de derrubar o request.
type LooseAmount struct {
	Value    decimal.Decimal
	Present  bool
	Raw      string
	Unparsed bool
}

func (a *LooseAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	a.Raw = raw

	cleaned := cleanAmount(raw)
	if cleaned == "" {
		return nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		a.Unparsed = true
		return nil
	}
	a.Value = d
	a.Present = true
	return nil
}

// OrZero devolve o valor arredondado a centavos, ou zero quando ausente.
func (a LooseAmount) OrZero() decimal.Decimal {
	if !a.Present || a.Value.IsNegative() {
		return decimal.Zero
	}
	return a.Value.Round(2)
}

func NewLooseAmount(d decimal.Decimal) LooseAmount {
	return LooseAmount{Value: d, Present: true, Raw: d.String()}
}

func cleanAmount(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "S/."), "S/")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

// LeadSummary é a visão de listagem.
type LeadSummary struct {
	ID                   int64             `json:"id"`
	ClientName           string            `json:"clientName"`
	DNI                  string            `json:"dni"`
	Phone                string            `json:"phone"`
	ClinicName           string            `json:"clinicName"`
	MedicalSpecialtyName string            `json:"medicalSpecialtyName"`
	TreatmentCost        decimal.Decimal   `json:"treatmentCost"`
	Status               entity.LeadStatus `json:"status"`
	StatusDisplayName    string            `json:"statusDisplayName"`
	Origin               string            `json:"origin"`
	CreatedAt            time.Time         `json:"createdAt"`
}

type LeadDetail struct {
	ID                   int64             `json:"id"`
	ReceptionistName     string            `json:"receptionistName"`
	ClientName           string            `json:"clientName"`
	DNI                  string            `json:"dni"`
	MonthlyIncome        decimal.Decimal   `json:"monthlyIncome"`
	TreatmentCost        decimal.Decimal   `json:"treatmentCost"`
	Phone                string            `json:"phone"`
	Email                string            `json:"email,omitempty"`
	ClinicID             int64             `json:"clinicId"`
	ClinicName           string            `json:"clinicName"`
	MedicalSpecialtyID   int64             `json:"medicalSpecialtyId"`
	MedicalSpecialtyName string            `json:"medicalSpecialtyName"`
	Status               entity.LeadStatus `json:"status"`
	StatusDisplayName    string            `json:"statusDisplayName"`
	Origin               string            `json:"origin"`
	Observation          string            `json:"observation,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
}

func NewLeadSummary(l *entity.Lead) LeadSummary {
	return LeadSummary{
		ID:                   l.ID,
		ClientName:           l.ClientName,
		DNI:                  l.DNI,
		Phone:                l.Phone,
		ClinicName:           l.ClinicName,
		MedicalSpecialtyName: l.MedicalSpecialtyName,
		TreatmentCost:        l.TreatmentCost,
		Status:               l.Status,
		StatusDisplayName:    l.Status.DisplayName(),
		Origin:               l.Origin,
		CreatedAt:            l.CreatedAt,
	}
}

func NewLeadDetail(l *entity.Lead) *LeadDetail {
	return &LeadDetail{
		ID:                   l.ID,
		ReceptionistName:     l.ReceptionistName,
		ClientName:           l.ClientName,
		DNI:                  l.DNI,
		MonthlyIncome:        l.MonthlyIncome,
		TreatmentCost:        l.TreatmentCost,
		Phone:                l.Phone,
		Email:                l.Email,
		ClinicID:             l.ClinicID,
		ClinicName:           l.ClinicName,
		MedicalSpecialtyID:   l.MedicalSpecialtyID,
		MedicalSpecialtyName: l.MedicalSpecialtyName,
		Status:               l.Status,
		StatusDisplayName:    l.Status.DisplayName(),
		Origin:               l.Origin,
		Observation:          l.Observation,
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
	}
}

func summarize(leads []*entity.Lead) []LeadSummary {
	out := make([]LeadSummary, 0, len(leads))
	for _, l := range leads {
		out = append(out, NewLeadSummary(l))
	}
	return out
}

type Page[T any] struct {
	Content       []T    `json:"content"`
	Page          int    `json:"page"`
	Size          int    `json:"size"`
	TotalElements int64  `json:"totalElements"`
	TotalPages    int    `json:"totalPages"`
	First         bool   `json:"first"`
	Last          bool   `json:"last"`
	Sort          string `json:"sort"`
}

func NewPage[T any](content []T, req entity.PageRequest, total int64) *Page[T] {
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         req.Page == 0,
		Last:          req.Page >= totalPages-1,
		Sort:          req.SortField + "," + strings.ToLower(string(req.SortDir)),
	}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RegisterOutput struct {
	Message      string      `json:"message"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	Role         entity.Role `json:"role"`
	RegisteredAt time.Time   `json:"registeredAt"`
	NextStep     string      `json:"nextStep"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginOutput struct {
	Token     string      `json:"token"`
	Type      string      `json:"type"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      entity.Role `json:"role"`
	ExpiresIn int64       `json:"expiresIn"`
}

type CreateClinicInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Active  *bool  `json:"active"`
}

type CreateMedicalSpecialtyInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Active   *bool  `json:"active"`
}

type PopulateOutput struct {
	Status              string    `json:"status"`
	Message             string    `json:"message"`
	InsertedClinics     int       `json:"insertedClinics"`
	InsertedSpecialties int       `json:"insertedMedicalSpecialties"`
	TotalClinics        int64     `json:"clinics"`
	TotalSpecialties    int64     `json:"medicalSpecialties"`
	Timestamp           time.Time `json:"timestamp"`
}
