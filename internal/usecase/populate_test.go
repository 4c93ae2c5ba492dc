package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
	"github.com/xavierca1/kiwipay-leads/internal/usecase"
	"github.com/xavierca1/kiwipay-leads/internal/usecase/usecasetest"
)

func TestCapitalizeWords(t *testing.T) {
	assert.Equal(t, "Clinica San Juan", usecase.CapitalizeWords("  CLINICA san   JUAN "))
	assert.Equal(t, "Ópticas Ñaña", usecase.CapitalizeWords("ÓPTICAS ñaña"))
	assert.Equal(t, "", usecase.CapitalizeWords("   "))
}

func TestPopulateNormalizesAndImports(t *testing.T) {
	source := new(usecasetest.MockReferenceSource)
	importer := new(usecasetest.MockReferenceImporter)
	clinics := new(usecasetest.MockClinicRepository)
	specialties := new(usecasetest.MockSpecialtyRepository)

	source.On("Load", mock.Anything).Return(
		[]usecase.ClinicSeedRow{
			{Name: "CLINICA LIMA", Address: "AV. AREQUIPA 123"},
			{Name: "", Address: "sem nome"},
			{Name: "clinica lima", Address: "duplicada"},
		},
		[]usecase.SpecialtySeedRow{
			{Category: "ODONTOLOGIA", Name: "ORTODONCIA"},
			{Category: "ESTETICA", Name: "  "},
		},
		nil,
	)
	importer.On("ImportReferenceData", mock.Anything,
		mock.MatchedBy(func(cs []*entity.Clinic) bool {
			return len(cs) == 1 && cs[0].Name == "Clinica Lima" && cs[0].Address == "Av. Arequipa 123" && cs[0].Active
		}),
		mock.MatchedBy(func(ss []*entity.MedicalSpecialty) bool {
			return len(ss) == 1 && ss[0].Name == "Ortodoncia" && ss[0].Category == "Odontologia"
		}),
	).Return(1, 1, nil)
	clinics.On("Count", mock.Anything).Return(int64(4), nil)
	specialties.On("Count", mock.Anything).Return(int64(12), nil)

	out, err := usecase.NewPopulateReferenceDataUseCase(source, importer, clinics, specialties, zerolog.Nop()).Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, 1, out.InsertedClinics)
	assert.Equal(t, 1, out.InsertedSpecialties)
	assert.Equal(t, int64(4), out.TotalClinics)
	assert.Equal(t, int64(12), out.TotalSpecialties)
	importer.AssertExpectations(t)
}

func TestPopulateReadFailure(t *testing.T) {
	source := new(usecasetest.MockReferenceSource)
	source.On("Load", mock.Anything).Return(nil, nil, errors.New("arquivo não encontrado"))

	_, err := usecase.NewPopulateReferenceDataUseCase(source, nil, nil, nil, zerolog.Nop()).Execute(context.Background())

	assert.True(t, usecase.IsTechnicalError(err))
}

func TestReferenceDataCreateClinicDuplicate(t *testing.T) {
	clinics := new(usecasetest.MockClinicRepository)
	clinics.On("FindByNameIgnoreCase", mock.Anything, "Lima").Return(clinicLima, nil)

	_, err := usecase.NewReferenceDataUseCase(clinics, nil).CreateClinic(context.Background(), usecase.CreateClinicInput{Name: " Lima "})

	assert.True(t, usecase.IsKind(err, usecase.KindDuplicate))
}

func TestReferenceDataListSpecialtiesByCategory(t *testing.T) {
	specialties := new(usecasetest.MockSpecialtyRepository)
	specialties.On("ListActive", mock.Anything, "Odontologia").Return(nil, nil)

	out, err := usecase.NewReferenceDataUseCase(nil, specialties).ListSpecialties(context.Background(), " Odontologia ")

	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
