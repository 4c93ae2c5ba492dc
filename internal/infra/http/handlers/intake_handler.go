package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/middleware"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/problem"
	"github.com/xavierca1/kiwipay-leads/internal/usecase"
)

// IntakeHandler atende o formulário do Squarespace. As respostas seguem o
// formato {ok, ...} que o formulário espera, não o problem da API interna.
type IntakeHandler struct {
	CreateExternalUC *usecase.CreateExternalLeadUseCase
	Logger           zerolog.Logger
}

func NewIntakeHandler(uc *usecase.CreateExternalLeadUseCase, logger zerolog.Logger) *IntakeHandler {
	return &IntakeHandler{CreateExternalUC: uc, Logger: logger}
}

type intakeErrorResponse struct {
	OK        bool      `json:"ok"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Handle (POST /squarespace/lead)
func (h *IntakeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.ExternalLeadInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		h.Logger.Warn().Err(err).Msg("payload do squarespace ilegível")
		writeJSON(w, http.StatusBadRequest, intakeErrorResponse{Error: "JSON inválido", Timestamp: time.Now()})
		return
	}

	output, err := h.CreateExternalUC.Execute(r.Context(), input)
	if err != nil {
		if de, ok := usecase.AsDomainError(err); ok {
			writeJSON(w, problem.StatusFor(de.Kind), intakeErrorResponse{Error: de.Message, Timestamp: time.Now()})
			return
		}
		h.Logger.Error().Err(err).Msg("falha ao criar lead externo")
		writeJSON(w, http.StatusInternalServerError, intakeErrorResponse{
			Error:     "Error interno al registrar el lead",
			Timestamp: time.Now(),
		})
		return
	}

	middleware.RecordLeadCreated(entity.OriginSquarespace)
	writeJSON(w, http.StatusCreated, output)
}
