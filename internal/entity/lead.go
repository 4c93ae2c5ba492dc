package entity

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Origens conhecidas de um lead.
const (
	OriginWeb         = "WEB"
	OriginSquarespace = "SQUARESPACE_API"
)

type Lead struct {
	ID               int64           `json:"id"`
	ReceptionistName string          `json:"receptionistName"`
	ClientName       string          `json:"clientName"`
	DNI              string          `json:"dni"`
	MonthlyIncome    decimal.Decimal `json:"monthlyIncome"`
	TreatmentCost    decimal.Decimal `json:"treatmentCost"`
	Phone            string          `json:"phone"`
	Email            string          `json:"email,omitempty"`

	ClinicID             int64  `json:"clinicId"`
	ClinicName           string `json:"clinicName"` // preenchido pelo JOIN
	MedicalSpecialtyID   int64  `json:"medicalSpecialtyId"`
	MedicalSpecialtyName string `json:"medicalSpecialtyName"` // preenchido pelo JOIN

	Status      LeadStatus `json:"status"`
	Origin      string     `json:"origin"`
	Observation string     `json:"observation,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewLead monta um lead sempre em NUEVO; o chamador não escolhe o estado inicial.
func NewLead(clinic *Clinic, specialty *MedicalSpecialty, origin string) *Lead {
	return &Lead{
		ClinicID:             clinic.ID,
		ClinicName:           clinic.Name,
		MedicalSpecialtyID:   specialty.ID,
		MedicalSpecialtyName: specialty.Name,
		Status:               LeadStatusNuevo,
		Origin:               origin,
	}
}

// TransitionTo aplica a regra de estados terminais antes de mudar o status.
func (l *Lead) TransitionTo(next LeadStatus) error {
	if err := ValidateTransition(l.Status, next); err != nil {
		return err
	}
	l.Status = next
	return nil
}

// LeadFilter: todos os campos são opcionais e combinados com AND.
type LeadFilter struct {
	Status    *LeadStatus
	ClinicID  *int64
	StartDate *time.Time
	EndDate   *time.Time
}

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

type PageRequest struct {
	Page      int
	Size      int
	SortField string
	SortDir   SortDirection
}

type LeadStats struct {
	TotalLeads  int64                `json:"totalLeads"`
	TodaysLeads int64                `json:"todaysLeads"`
	ByStatus    map[LeadStatus]int64 `json:"byStatus"`
	ByOrigin    map[string]int64     `json:"byOrigin"`
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	Update(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id int64) (*Lead, error)
	ExistsByDNI(ctx context.Context, dni string) (bool, error)
	ExistsByDNIExcludingID(ctx context.Context, dni string, id int64) (bool, error)
	List(ctx context.Context, filter LeadFilter, page PageRequest) ([]*Lead, int64, error)
	ListAll(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	Stats(ctx context.Context, dayStart time.Time) (*LeadStats, error)
}
