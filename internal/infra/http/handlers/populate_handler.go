package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/problem"
	"github.com/xavierca1/kiwipay-leads/internal/usecase"
)

type PopulateHandler struct {
	PopulateUC *usecase.PopulateReferenceDataUseCase
	Logger     zerolog.Logger
}

func NewPopulateHandler(uc *usecase.PopulateReferenceDataUseCase, logger zerolog.Logger) *PopulateHandler {
	return &PopulateHandler{PopulateUC: uc, Logger: logger}
}

// Populate (POST /populate/excel) importa a planilha configurada em SEED_FILE.
func (h *PopulateHandler) Populate(w http.ResponseWriter, r *http.Request) {
	output, err := h.PopulateUC.Execute(r.Context())
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

// Status (GET /populate/status)
func (h *PopulateHandler) Status(w http.ResponseWriter, r *http.Request) {
	output, err := h.PopulateUC.Status(r.Context())
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}
