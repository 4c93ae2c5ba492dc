package usecase

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
)

// PopulateReferenceDataUseCase carrega clínicas e especialidades da planilha.
// Rodar de novo não duplica: nomes já gravados são ignorados pelo importer.
type PopulateReferenceDataUseCase struct {
	Source      ReferenceSource
	Importer    entity.ReferenceImporter
	Clinics     entity.ClinicRepositoryInterface
	Specialties entity.MedicalSpecialtyRepositoryInterface
	Logger      zerolog.Logger
	Now         func() time.Time
}

func NewPopulateReferenceDataUseCase(
	source ReferenceSource,
	importer entity.ReferenceImporter,
	clinics entity.ClinicRepositoryInterface,
	specialties entity.MedicalSpecialtyRepositoryInterface,
	logger zerolog.Logger,
) *PopulateReferenceDataUseCase {
	return &PopulateReferenceDataUseCase{
		Source:      source,
		Importer:    importer,
		Clinics:     clinics,
		Specialties: specialties,
		Logger:      logger,
		Now:         time.Now,
	}
}

func (uc *PopulateReferenceDataUseCase) Execute(ctx context.Context) (*PopulateOutput, error) {
	clinicRows, specialtyRows, err := uc.Source.Load(ctx)
	if err != nil {
		return nil, technical("SEED_READ_FAILED", "erro ao ler planilha de referência", err)
	}

	clinics := normalizeClinicRows(clinicRows)
	specialties := normalizeSpecialtyRows(specialtyRows)

	insertedClinics, insertedSpecialties, err := uc.Importer.ImportReferenceData(ctx, clinics, specialties)
	if err != nil {
		return nil, technical("SEED_IMPORT_FAILED", "erro ao importar dados de referência", err)
	}

	uc.Logger.Info().
		Int("clinics", insertedClinics).
		Int("specialties", insertedSpecialties).
		Msg("dados de referência importados")

	out, err := uc.Status(ctx)
	if err != nil {
		return nil, err
	}
	out.Status = "success"
	out.Message = "Datos cargados exitosamente"
	out.InsertedClinics = insertedClinics
	out.InsertedSpecialties = insertedSpecialties
	return out, nil
}

func (uc *PopulateReferenceDataUseCase) Status(ctx context.Context) (*PopulateOutput, error) {
	clinics, err := uc.Clinics.Count(ctx)
	if err != nil {
		return nil, technical("CLINIC_COUNT_FAILED", "erro ao contar clínicas", err)
	}
	specialties, err := uc.Specialties.Count(ctx)
	if err != nil {
		return nil, technical("SPECIALTY_COUNT_FAILED", "erro ao contar especialidades", err)
	}
	return &PopulateOutput{
		Status:           "ready",
		Message:          "Servicio de carga de datos disponible",
		TotalClinics:     clinics,
		TotalSpecialties: specialties,
		Timestamp:        uc.Now(),
	}, nil
}

// Linhas sem nome são puladas; nomes repetidos dentro da planilha entram uma vez só.
func normalizeClinicRows(rows []ClinicSeedRow) []*entity.Clinic {
	seen := make(map[string]bool)
	var out []*entity.Clinic
	for _, r := range rows {
		name := CapitalizeWords(r.Name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, &entity.Clinic{Name: name, Address: CapitalizeWords(r.Address), Active: true})
	}
	return out
}

func normalizeSpecialtyRows(rows []SpecialtySeedRow) []*entity.MedicalSpecialty {
	seen := make(map[string]bool)
	var out []*entity.MedicalSpecialty
	for _, r := range rows {
		name := CapitalizeWords(r.Name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, &entity.MedicalSpecialty{Name: name, Category: CapitalizeWords(r.Category), Active: true})
	}
	return out
}

// CapitalizeWords: "CLINICA san   JUAN" -> "Clinica San Juan".
func CapitalizeWords(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
