package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

const defaultSedeClinic = "Lima"

// CreateExternalLeadUseCase recebe leads do formulário público (Squarespace).
// É tolerante: sede vira clínica por heurística, especialidade e valores têm default.
type CreateExternalLeadUseCase struct {
	Leads       entity.LeadRepositoryInterface
	Clinics     entity.ClinicRepositoryInterface
	Specialties entity.MedicalSpecialtyRepositoryInterface
	Events      LeadEventPublisher
	Logger      zerolog.Logger
	Now         func() time.Time
}

func NewCreateExternalLeadUseCase(
	leads entity.LeadRepositoryInterface,
	clinics entity.ClinicRepositoryInterface,
	specialties entity.MedicalSpecialtyRepositoryInterface,
	events LeadEventPublisher,
	logger zerolog.Logger,
) *CreateExternalLeadUseCase {
	if events == nil {
		events = noopPublisher{}
	}
	return &CreateExternalLeadUseCase{
		Leads:       leads,
		Clinics:     clinics,
		Specialties: specialties,
		Events:      events,
		Logger:      logger,
		Now:         time.Now,
	}
}

func (uc *CreateExternalLeadUseCase) Execute(ctx context.Context, input ExternalLeadInput) (*ExternalLeadOutput, error) {
	dni := strings.TrimSpace(input.DNI)
	if dni == "" {
		return nil, validationFailed([]ValidationError{{"dni", "El DNI es obligatorio"}})
	}

	exists, err := uc.Leads.ExistsByDNI(ctx, dni)
	if err != nil {
		return nil, technical("LEAD_LOOKUP_FAILED", "erro ao verificar DNI", err)
	}
	if exists {
		// duplicado aqui não bloqueia, só avisa
		uc.Logger.Warn().Str("dni", dni).Msg("lead externo com DNI já existente")
	}

	clinic, err := uc.MapSedeToClinic(ctx, input.Sede)
	if err != nil {
		return nil, err
	}
	specialty, err := uc.defaultSpecialty(ctx)
	if err != nil {
		return nil, err
	}

	for field, amount := range map[string]LooseAmount{"monthlyIncome": input.MonthlyIncome, "treatmentCost": input.TreatmentCost} {
		if amount.Unparsed {
			uc.Logger.Warn().Str("field", field).Str("raw", amount.Raw).Msg("valor monetário ilegível, usando zero")
		}
	}

	lead := entity.NewLead(clinic, specialty, entity.OriginSquarespace)
	lead.ReceptionistName = clip(input.ReceptionistName, maxTextLength)
	lead.ClientName = clip(input.ClientName, maxTextLength)
	lead.DNI = clip(dni, 20)
	lead.MonthlyIncome = input.MonthlyIncome.OrZero()
	lead.TreatmentCost = input.TreatmentCost.OrZero()
	lead.Phone = clip(input.Phone, 30)
	lead.Observation = externalObservation(input.Sede, input.Source)

	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, technical("LEAD_CREATE_FAILED", "erro ao salvar lead externo", err)
	}

	uc.Logger.Info().
		Int64("lead_id", lead.ID).
		Str("sede", input.Sede).
		Str("clinic", clinic.Name).
		Msg("lead externo criado")
	publishLeadEvent(ctx, uc.Events, uc.Logger, entity.NewLeadEvent(entity.LeadEventCreated, lead, "", uc.Now()))

	return &ExternalLeadOutput{
		OK:        true,
		LeadID:    lead.ID,
		Message:   "Lead recibido correctamente",
		Timestamp: uc.Now(),
	}, nil
}

// MapSedeToClinic traduz o texto livre da sede numa clínica ativa.
// Ordem: palavras-chave conhecidas, nome exato (sem caixa), clínica "Lima", primeira ativa.
func (uc *CreateExternalLeadUseCase) MapSedeToClinic(ctx context.Context, sede string) (*entity.Clinic, error) {
	trimmed := strings.TrimSpace(sede)
	if trimmed == "" {
		return uc.firstActiveClinic(ctx)
	}

	normalized := strings.ToLower(trimmed)
	switch {
	case strings.Contains(normalized, "lima") || strings.Contains(normalized, "principal") || normalized == "1":
		return uc.clinicByNameOrDefault(ctx, "Lima")
	case strings.Contains(normalized, "callao") || normalized == "2":
		return uc.clinicByNameOrDefault(ctx, "Callao")
	case strings.Contains(normalized, "arequipa") || normalized == "3":
		return uc.clinicByNameOrDefault(ctx, "Arequipa")
	}

	clinic, err := uc.activeClinicByName(ctx, trimmed)
	if err != nil {
		return nil, err
	}
	if clinic != nil {
		return clinic, nil
	}

	uc.Logger.Warn().Str("sede", trimmed).Msg("sede não reconhecida, usando clínica padrão")
	return uc.clinicByNameOrDefault(ctx, defaultSedeClinic)
}

func (uc *CreateExternalLeadUseCase) clinicByNameOrDefault(ctx context.Context, name string) (*entity.Clinic, error) {
	clinic, err := uc.activeClinicByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if clinic != nil {
		return clinic, nil
	}
	return uc.firstActiveClinic(ctx)
}

// activeClinicByName devolve nil quando não existe ou está inativa.
func (uc *CreateExternalLeadUseCase) activeClinicByName(ctx context.Context, name string) (*entity.Clinic, error) {
	clinic, err := uc.Clinics.FindByNameIgnoreCase(ctx, name)
	if errors.Is(err, entity.ErrClinicNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, technical("CLINIC_LOOKUP_FAILED", "erro ao buscar clínica", err)
	}
	if !clinic.Active {
		return nil, nil
	}
	return clinic, nil
}

func (uc *CreateExternalLeadUseCase) firstActiveClinic(ctx context.Context) (*entity.Clinic, error) {
	clinics, err := uc.Clinics.ListActive(ctx)
	if err != nil {
		return nil, technical("CLINIC_LOOKUP_FAILED", "erro ao listar clínicas", err)
	}
	if len(clinics) == 0 {
		return nil, newDomainError(KindValidation, "NO_ACTIVE_CLINIC", "No hay clínicas activas disponibles", nil)
	}
	return clinics[0], nil
}

// externalObservation só inclui sede e source quando vieram preenchidos.
func externalObservation(sede, source string) string {
	var b strings.Builder
	b.WriteString("Origen: API Squarespace")
	if sede = strings.TrimSpace(sede); sede != "" {
		fmt.Fprintf(&b, " | Sede original: %s", sede)
	}
	if source = strings.TrimSpace(source); source != "" {
		fmt.Fprintf(&b, " | Source: %s", source)
	}
	return clip(b.String(), maxObservationLen)
}

// clip corta no tamanho da coluna; o formulário externo não valida nada.
func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func (uc *CreateExternalLeadUseCase) defaultSpecialty(ctx context.Context) (*entity.MedicalSpecialty, error) {
	specialties, err := uc.Specialties.ListActive(ctx, "")
	if err != nil {
		return nil, technical("SPECIALTY_LOOKUP_FAILED", "erro ao listar especialidades", err)
	}
	if len(specialties) == 0 {
		return nil, newDomainError(KindValidation, "NO_ACTIVE_SPECIALTY", "No hay especialidades médicas activas disponibles", nil)
	}
	return specialties[0], nil
}
