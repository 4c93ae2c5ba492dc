package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/problem"
	"github.com/xavierca1/kiwipay-leads/internal/usecase"
)

type ReferenceHandler struct {
	ReferenceUC *usecase.ReferenceDataUseCase
	Logger      zerolog.Logger
}

func NewReferenceHandler(uc *usecase.ReferenceDataUseCase, logger zerolog.Logger) *ReferenceHandler {
	return &ReferenceHandler{ReferenceUC: uc, Logger: logger}
}

func (h *ReferenceHandler) ListClinics(w http.ResponseWriter, r *http.Request) {
	clinics, err := h.ReferenceUC.ListClinics(r.Context())
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, clinics)
}

func (h *ReferenceHandler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateClinicInput
	if !decodeJSON(w, r, &input) {
		return
	}

	clinic, err := h.ReferenceUC.CreateClinic(r.Context(), input)
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, clinic)
}

// ListSpecialties aceita ?category= para filtrar.
func (h *ReferenceHandler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.ReferenceUC.ListSpecialties(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, specialties)
}

func (h *ReferenceHandler) CreateSpecialty(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateMedicalSpecialtyInput
	if !decodeJSON(w, r, &input) {
		return
	}

	specialty, err := h.ReferenceUC.CreateSpecialty(r.Context(), input)
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, specialty)
}
