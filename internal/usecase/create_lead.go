package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

type CreateLeadUseCase struct {
	Leads       entity.LeadRepositoryInterface
	Clinics     entity.ClinicRepositoryInterface
	Specialties entity.MedicalSpecialtyRepositoryInterface
	Tx          TxManager
	Events      LeadEventPublisher
	Logger      zerolog.Logger
	Now         func() time.Time
}

func NewCreateLeadUseCase(
	leads entity.LeadRepositoryInterface,
	clinics entity.ClinicRepositoryInterface,
	specialties entity.MedicalSpecialtyRepositoryInterface,
	tx TxManager,
	events LeadEventPublisher,
	logger zerolog.Logger,
) *CreateLeadUseCase {
	if events == nil {
		events = noopPublisher{}
	}
	return &CreateLeadUseCase{
		Leads:       leads,
		Clinics:     clinics,
		Specialties: specialties,
		Tx:          tx,
		Events:      events,
		Logger:      logger,
		Now:         time.Now,
	}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*LeadDetail, error) {
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	dni := strings.TrimSpace(input.DNI)
	var lead *entity.Lead

	err := uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := uc.Leads.ExistsByDNI(ctx, dni)
		if err != nil {
			return technical("LEAD_LOOKUP_FAILED", "erro ao verificar DNI", err)
		}
		if exists {
			return newDomainError(KindDuplicate, "DUPLICATE_DNI", "Ya existe un lead con el DNI: "+dni, nil)
		}

		clinic, err := resolveClinic(ctx, uc.Clinics, *input.ClinicID)
		if err != nil {
			return err
		}
		specialty, err := resolveSpecialty(ctx, uc.Specialties, *input.MedicalSpecialtyID)
		if err != nil {
			return err
		}

		lead = entity.NewLead(clinic, specialty, entity.OriginWeb)
		lead.ReceptionistName = strings.TrimSpace(input.ReceptionistName)
		lead.ClientName = strings.TrimSpace(input.ClientName)
		lead.DNI = dni
		lead.MonthlyIncome = *input.MonthlyIncome
		lead.TreatmentCost = *input.TreatmentCost
		lead.Phone = strings.TrimSpace(input.Phone)
		lead.Email = strings.TrimSpace(input.Email)

		if err := uc.Leads.Create(ctx, lead); err != nil {
			return technical("LEAD_CREATE_FAILED", "erro ao salvar lead", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.Logger.Info().Int64("lead_id", lead.ID).Str("origin", lead.Origin).Msg("lead criado")
	publishLeadEvent(ctx, uc.Events, uc.Logger, entity.NewLeadEvent(entity.LeadEventCreated, lead, "", uc.Now()))

	return NewLeadDetail(lead), nil
}

func resolveClinic(ctx context.Context, repo entity.ClinicRepositoryInterface, id int64) (*entity.Clinic, error) {
	clinic, err := repo.FindByID(ctx, id)
	if errors.Is(err, entity.ErrClinicNotFound) {
		return nil, newDomainError(KindNotFound, "CLINIC_NOT_FOUND", "Clínica no encontrada", err)
	}
	if err != nil {
		return nil, technical("CLINIC_LOOKUP_FAILED", "erro ao buscar clínica", err)
	}
	if !clinic.Active {
		return nil, newDomainError(KindReferenceInactive, "CLINIC_INACTIVE", "La clínica seleccionada no está activa", nil)
	}
	return clinic, nil
}

func resolveSpecialty(ctx context.Context, repo entity.MedicalSpecialtyRepositoryInterface, id int64) (*entity.MedicalSpecialty, error) {
	specialty, err := repo.FindByID(ctx, id)
	if errors.Is(err, entity.ErrMedicalSpecialtyNotFound) {
		return nil, newDomainError(KindNotFound, "SPECIALTY_NOT_FOUND", "Especialidad médica no encontrada", err)
	}
	if err != nil {
		return nil, technical("SPECIALTY_LOOKUP_FAILED", "erro ao buscar especialidade", err)
	}
	if !specialty.Active {
		return nil, newDomainError(KindReferenceInactive, "SPECIALTY_INACTIVE", "La especialidad médica seleccionada no está activa", nil)
	}
	return specialty, nil
}

// Publicação é best effort: o lead já foi gravado.
func publishLeadEvent(ctx context.Context, pub LeadEventPublisher, logger zerolog.Logger, event entity.LeadEvent) {
	if err := pub.PublishLeadEvent(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", event.Type).Int64("lead_id", event.LeadID).Msg("falha ao publicar evento do lead")
	}
}
