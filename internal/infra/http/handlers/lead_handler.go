package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/middleware"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/problem"
	"github.com/xavierca1/kiwipay-leads/internal/usecase"
)

// UnboundedWarning vai no header das listagens sem paginação.
const UnboundedWarning = "unbounded result set"

type LeadHandler struct {
	CreateUC       *usecase.CreateLeadUseCase
	ListUC         *usecase.ListLeadsUseCase
	UpdateStatusUC *usecase.UpdateLeadStatusUseCase
	UpdateUC       *usecase.UpdateLeadUseCase
	Logger         zerolog.Logger
}

func NewLeadHandler(
	create *usecase.CreateLeadUseCase,
	list *usecase.ListLeadsUseCase,
	updateStatus *usecase.UpdateLeadStatusUseCase,
	update *usecase.UpdateLeadUseCase,
	logger zerolog.Logger,
) *LeadHandler {
	return &LeadHandler{
		CreateUC:       create,
		ListUC:         list,
		UpdateStatusUC: updateStatus,
		UpdateUC:       update,
		Logger:         logger,
	}
}

// Create (POST /leads)
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	output, err := h.CreateUC.Execute(r.Context(), input)
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}

	middleware.RecordLeadCreated(output.Origin)
	writeJSON(w, http.StatusCreated, output)
}

// Get (GET /leads/{id})
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	output, err := h.ListUC.Get(r.Context(), id)
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

// List (GET /leads) devolve a página pedida.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	output, err := h.ListUC.Execute(r.Context(), listInput(r))
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

// ListAll (GET /leads/all e /leads/all/filtered) sem paginação.
func (h *LeadHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	output, err := h.ListUC.ExecuteAll(r.Context(), listInput(r))
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}

	h.Logger.Warn().Int("rows", len(output)).Str("path", r.URL.Path).Msg("listagem sem paginação")
	w.Header().Set("X-Result-Warning", UnboundedWarning)
	writeJSON(w, http.StatusOK, output)
}

// Stats (GET /leads/stats)
func (h *LeadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ListUC.Stats(r.Context())
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// UpdateStatus (PATCH /leads/{id}/status?status=X); aceita também {"status": "X"} no corpo.
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" && r.ContentLength != 0 {
		var input usecase.UpdateLeadStatusInput
		if !decodeJSON(w, r, &input) {
			return
		}
		status = input.Status
	}

	output, changed, err := h.UpdateStatusUC.Transition(r.Context(), id, status)
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}

	if changed {
		middleware.RecordStatusChange(string(output.Status))
	}
	writeJSON(w, http.StatusOK, output)
}

// Update (PUT /leads/{id}) só mexe nos campos presentes no corpo.
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var input usecase.UpdateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	output, err := h.UpdateUC.Execute(r.Context(), id, input)
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

func listInput(r *http.Request) usecase.ListLeadsInput {
	q := r.URL.Query()
	return usecase.ListLeadsInput{
		Status:    q.Get("status"),
		ClinicID:  q.Get("clinicId"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Page:      q.Get("page"),
		Size:      q.Get("size"),
		Sort:      q.Get("sort"),
	}
}
