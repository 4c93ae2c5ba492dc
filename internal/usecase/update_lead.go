package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

type UpdateLeadStatusUseCase struct {
	Leads  entity.LeadRepositoryInterface
	Tx     TxManager
	Events LeadEventPublisher
	Logger zerolog.Logger
	Now    func() time.Time
}

func NewUpdateLeadStatusUseCase(leads entity.LeadRepositoryInterface, tx TxManager, events LeadEventPublisher, logger zerolog.Logger) *UpdateLeadStatusUseCase {
	if events == nil {
		events = noopPublisher{}
	}
	return &UpdateLeadStatusUseCase{Leads: leads, Tx: tx, Events: events, Logger: logger, Now: time.Now}
}

// Execute muda só o status. Repetir o status atual é no-op, inclusive em estado terminal.
func (uc *UpdateLeadStatusUseCase) Execute(ctx context.Context, id int64, rawStatus string) (*LeadDetail, error) {
	detail, _, err := uc.Transition(ctx, id, rawStatus)
	return detail, err
}

// Transition é o Execute que também informa se o status mudou de fato.
func (uc *UpdateLeadStatusUseCase) Transition(ctx context.Context, id int64, rawStatus string) (*LeadDetail, bool, error) {
	next, err := parseStatus(rawStatus)
	if err != nil {
		return nil, false, err
	}

	var lead *entity.Lead
	var previous entity.LeadStatus
	err = uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		lead, err = findLead(ctx, uc.Leads, id)
		if err != nil {
			return err
		}
		previous = lead.Status
		if err := lead.TransitionTo(next); err != nil {
			return transitionError(err)
		}
		if previous == next {
			return nil
		}
		if err := uc.Leads.Update(ctx, lead); err != nil {
			return technical("LEAD_UPDATE_FAILED", "erro ao atualizar status", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	changed := previous != next
	if changed {
		uc.Logger.Info().Int64("lead_id", id).Str("from", string(previous)).Str("to", string(next)).Msg("status do lead alterado")
		publishLeadEvent(ctx, uc.Events, uc.Logger, entity.NewLeadEvent(entity.LeadEventStatusChanged, lead, previous, uc.Now()))
	}
	return NewLeadDetail(lead), changed, nil
}

// UpdateLeadUseCase faz update parcial. Última escrita vence; não há controle de versão.
type UpdateLeadUseCase struct {
	Leads       entity.LeadRepositoryInterface
	Clinics     entity.ClinicRepositoryInterface
	Specialties entity.MedicalSpecialtyRepositoryInterface
	Tx          TxManager
	Events      LeadEventPublisher
	Logger      zerolog.Logger
	Now         func() time.Time
}

func NewUpdateLeadUseCase(
	leads entity.LeadRepositoryInterface,
	clinics entity.ClinicRepositoryInterface,
	specialties entity.MedicalSpecialtyRepositoryInterface,
	tx TxManager,
	events LeadEventPublisher,
	logger zerolog.Logger,
) *UpdateLeadUseCase {
	if events == nil {
		events = noopPublisher{}
	}
	return &UpdateLeadUseCase{
		Leads:       leads,
		Clinics:     clinics,
		Specialties: specialties,
		Tx:          tx,
		Events:      events,
		Logger:      logger,
		Now:         time.Now,
	}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, id int64, input UpdateLeadInput) (*LeadDetail, error) {
	if errs := ValidateUpdateLeadInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	var next *entity.LeadStatus
	if input.Status != nil {
		s, err := parseStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		next = &s
	}

	var lead *entity.Lead
	var previous entity.LeadStatus
	err := uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		lead, err = findLead(ctx, uc.Leads, id)
		if err != nil {
			return err
		}
		previous = lead.Status

		if input.DNI != nil {
			dni := strings.TrimSpace(*input.DNI)
			if dni != lead.DNI {
				taken, err := uc.Leads.ExistsByDNIExcludingID(ctx, dni, id)
				if err != nil {
					return technical("LEAD_LOOKUP_FAILED", "erro ao verificar DNI", err)
				}
				if taken {
					return newDomainError(KindDuplicate, "DUPLICATE_DNI", "Ya existe otro lead con el DNI: "+dni, nil)
				}
			}
			lead.DNI = dni
		}

		if input.ClinicID != nil {
			clinic, err := resolveClinic(ctx, uc.Clinics, *input.ClinicID)
			if err != nil {
				return err
			}
			lead.ClinicID, lead.ClinicName = clinic.ID, clinic.Name
		}
		if input.MedicalSpecialtyID != nil {
			specialty, err := resolveSpecialty(ctx, uc.Specialties, *input.MedicalSpecialtyID)
			if err != nil {
				return err
			}
			lead.MedicalSpecialtyID, lead.MedicalSpecialtyName = specialty.ID, specialty.Name
		}

		applyLeadFields(lead, input)

		if next != nil {
			if err := lead.TransitionTo(*next); err != nil {
				return transitionError(err)
			}
		}

		if err := uc.Leads.Update(ctx, lead); err != nil {
			return technical("LEAD_UPDATE_FAILED", "erro ao atualizar lead", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.Logger.Info().Int64("lead_id", id).Msg("lead atualizado")
	if lead.Status != previous {
		publishLeadEvent(ctx, uc.Events, uc.Logger, entity.NewLeadEvent(entity.LeadEventStatusChanged, lead, previous, uc.Now()))
	}
	return NewLeadDetail(lead), nil
}

func applyLeadFields(lead *entity.Lead, input UpdateLeadInput) {
	if input.ReceptionistName != nil {
		lead.ReceptionistName = strings.TrimSpace(*input.ReceptionistName)
	}
	if input.ClientName != nil {
		lead.ClientName = strings.TrimSpace(*input.ClientName)
	}
	if input.MonthlyIncome != nil {
		lead.MonthlyIncome = *input.MonthlyIncome
	}
	if input.TreatmentCost != nil {
		lead.TreatmentCost = *input.TreatmentCost
	}
	if input.Phone != nil {
		lead.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Email != nil {
		lead.Email = strings.TrimSpace(*input.Email)
	}
	if input.Origin != nil {
		lead.Origin = strings.TrimSpace(*input.Origin)
	}
	if input.Observation != nil {
		lead.Observation = strings.TrimSpace(*input.Observation)
	}
}

func findLead(ctx context.Context, repo entity.LeadRepositoryInterface, id int64) (*entity.Lead, error) {
	lead, err := repo.FindByID(ctx, id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, leadNotFound(id, err)
	}
	if err != nil {
		return nil, technical("LEAD_LOOKUP_FAILED", "erro ao buscar lead", err)
	}
	return lead, nil
}

func parseStatus(raw string) (entity.LeadStatus, error) {
	status, err := entity.ParseLeadStatus(raw)
	if err != nil {
		return "", newDomainError(KindInvalidStatus, "INVALID_STATUS", "Estado inválido: "+strings.TrimSpace(raw), err)
	}
	return status, nil
}

func transitionError(err error) error {
	if errors.Is(err, entity.ErrInvalidStatus) {
		return newDomainError(KindInvalidStatus, "INVALID_STATUS", err.Error(), err)
	}
	return newDomainError(KindInvalidTransition, "INVALID_TRANSITION", err.Error(), err)
}
