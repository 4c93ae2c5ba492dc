package usecase

import (
	"context"
	"strings"

	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

type ReferenceDataUseCase struct {
	Clinics     entity.ClinicRepositoryInterface
	Specialties entity.MedicalSpecialtyRepositoryInterface
}

func NewReferenceDataUseCase(clinics entity.ClinicRepositoryInterface, specialties entity.MedicalSpecialtyRepositoryInterface) *ReferenceDataUseCase {
	return &ReferenceDataUseCase{Clinics: clinics, Specialties: specialties}
}

func (uc *ReferenceDataUseCase) ListClinics(ctx context.Context) ([]*entity.Clinic, error) {
	clinics, err := uc.Clinics.ListActive(ctx)
	if err != nil {
		return nil, technical("CLINIC_LIST_FAILED", "erro ao listar clínicas", err)
	}
	if clinics == nil {
		clinics = []*entity.Clinic{}
	}
	return clinics, nil
}

func (uc *ReferenceDataUseCase) ListSpecialties(ctx context.Context, category string) ([]*entity.MedicalSpecialty, error) {
	specialties, err := uc.Specialties.ListActive(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, technical("SPECIALTY_LIST_FAILED", "erro ao listar especialidades", err)
	}
	if specialties == nil {
		specialties = []*entity.MedicalSpecialty{}
	}
	return specialties, nil
}

// CreateClinic é restrito a ADMIN na rota.
func (uc *ReferenceDataUseCase) CreateClinic(ctx context.Context, input CreateClinicInput) (*entity.Clinic, error) {
	if errs := ValidateCreateClinicInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	name := strings.TrimSpace(input.Name)

	if _, err := uc.Clinics.FindByNameIgnoreCase(ctx, name); err == nil {
		return nil, newDomainError(KindDuplicate, "DUPLICATE_CLINIC", "Ya existe una clínica con el nombre: "+name, nil)
	}

	clinic := &entity.Clinic{
		Name:    name,
		Address: strings.TrimSpace(input.Address),
		Active:  input.Active == nil || *input.Active,
	}
	if err := uc.Clinics.Create(ctx, clinic); err != nil {
		return nil, technical("CLINIC_CREATE_FAILED", "erro ao criar clínica", err)
	}
	return clinic, nil
}

func (uc *ReferenceDataUseCase) CreateSpecialty(ctx context.Context, input CreateMedicalSpecialtyInput) (*entity.MedicalSpecialty, error) {
	if errs := ValidateCreateMedicalSpecialtyInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	specialty := &entity.MedicalSpecialty{
		Name:     strings.TrimSpace(input.Name),
		Category: strings.TrimSpace(input.Category),
		Active:   input.Active == nil || *input.Active,
	}
	if err := uc.Specialties.Create(ctx, specialty); err != nil {
		return nil, technical("SPECIALTY_CREATE_FAILED", "erro ao criar especialidade", err)
	}
	return specialty, nil
}
