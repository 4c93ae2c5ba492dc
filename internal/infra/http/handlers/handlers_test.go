package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/kiwipay-leads/internal/entity"
	"github.com/xavierca1/kiwipay-leads/internal/infra/security"
	"github.com/xavierca1/kiwipay-leads/internal/usecase"
	"github.com/xavierca1/kiwipay-leads/internal/usecase/usecasetest"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

type leadFixture struct {
	leads       *usecasetest.MockLeadRepository
	clinics     *usecasetest.MockClinicRepository
	specialties *usecasetest.MockSpecialtyRepository
	router      chi.Router
}

func newLeadFixture() *leadFixture {
	f := &leadFixture{
		leads:       new(usecasetest.MockLeadRepository),
		clinics:     new(usecasetest.MockClinicRepository),
		specialties: new(usecasetest.MockSpecialtyRepository),
	}
	log := zerolog.Nop()
	tx := usecasetest.InlineTx{}

	create := usecase.NewCreateLeadUseCase(f.leads, f.clinics, f.specialties, tx, nil, log)
	list := usecase.NewListLeadsUseCase(f.leads, time.UTC)
	status := usecase.NewUpdateLeadStatusUseCase(f.leads, tx, nil, log)
	update := usecase.NewUpdateLeadUseCase(f.leads, f.clinics, f.specialties, tx, nil, log)
	external := usecase.NewCreateExternalLeadUseCase(f.leads, f.clinics, f.specialties, nil, log)

	h := NewLeadHandler(create, list, status, update, log)
	intake := NewIntakeHandler(external, log)

	r := chi.NewRouter()
	r.Post("/leads", h.Create)
	r.Get("/leads", h.List)
	r.Get("/leads/all", h.ListAll)
	r.Get("/leads/stats", h.Stats)
	r.Get("/leads/{id}", h.Get)
	r.Patch("/leads/{id}/status", h.UpdateStatus)
	r.Put("/leads/{id}", h.Update)
	r.Post("/squarespace/lead", intake.Handle)
	f.router = r
	return f
}

func (f *leadFixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func sampleLead(id int64, status entity.LeadStatus) *entity.Lead {
	return &entity.Lead{
		ID:                   id,
		ClientName:           "Juan Pérez",
		DNI:                  "12345678",
		MonthlyIncome:        decimal.RequireFromString("3500"),
		TreatmentCost:        decimal.RequireFromString("1200.5"),
		Phone:                "987654321",
		ClinicID:             1,
		ClinicName:           "Lima",
		MedicalSpecialtyID:   2,
		MedicalSpecialtyName: "Ortodoncia",
		Status:               status,
		Origin:               entity.OriginWeb,
		CreatedAt:            fixedNow,
		UpdatedAt:            fixedNow,
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateLeadReturns201WithNumericAmounts(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("ExistsByDNI", mock.Anything, "12345678").Return(false, nil)
	f.clinics.On("FindByID", mock.Anything, int64(1)).Return(&entity.Clinic{ID: 1, Name: "Lima", Active: true}, nil)
	f.specialties.On("FindByID", mock.Anything, int64(2)).Return(&entity.MedicalSpecialty{ID: 2, Name: "Ortodoncia", Active: true}, nil)
	f.leads.On("Create", mock.Anything, mock.AnythingOfType("*entity.Lead")).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Lead).ID = 7
	}).Return(nil)

	rec := f.do(http.MethodPost, "/leads", `{
		"clientName": "Juan Pérez", "clinicId": 1, "medicalSpecialtyId": 2,
		"dni": "12345678", "monthlyIncome": 3500.00, "treatmentCost": 1200.50,
		"phone": "987654321"
	}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, float64(7), body["id"])
	assert.Equal(t, "NUEVO", body["status"])
	assert.Equal(t, "WEB", body["origin"])
	assert.Equal(t, 1200.5, body["treatmentCost"])
}

func TestCreateLeadValidationProblem(t *testing.T) {
	f := newLeadFixture()

	rec := f.do(http.MethodPost, "/leads", `{"dni": "123", "phone": "12"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "dni")
	assert.Contains(t, errs, "phone")
	assert.Contains(t, errs, "clinicId")
	f.leads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateLeadDuplicateDNIIsConflict(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("ExistsByDNI", mock.Anything, "12345678").Return(true, nil)

	rec := f.do(http.MethodPost, "/leads", `{
		"clinicId": 1, "medicalSpecialtyId": 2, "dni": "12345678",
		"monthlyIncome": 10, "treatmentCost": 10, "phone": "987654321"
	}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateLeadBadJSON(t *testing.T) {
	f := newLeadFixture()

	rec := f.do(http.MethodPost, "/leads", `{"clinicId": "uno"`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLead(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("FindByID", mock.Anything, int64(5)).Return(sampleLead(5, entity.LeadStatusContactado), nil)
	f.leads.On("FindByID", mock.Anything, int64(9)).Return(nil, entity.ErrLeadNotFound)

	rec := f.do(http.MethodGet, "/leads/5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ortodoncia", decodeBody(t, rec)["medicalSpecialtyName"])

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/leads/9", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/leads/abc", "").Code)
}

func TestListLeadsPaged(t *testing.T) {
	f := newLeadFixture()
	status := entity.LeadStatusNuevo
	clinic := int64(3)
	f.leads.On("List", mock.Anything,
		entity.LeadFilter{Status: &status, ClinicID: &clinic},
		entity.PageRequest{Page: 1, Size: 2, SortField: "clientName", SortDir: entity.SortAsc},
	).Return([]*entity.Lead{sampleLead(3, entity.LeadStatusNuevo)}, int64(3), nil)

	rec := f.do(http.MethodGet, "/leads?status=nuevo&clinicId=3&page=1&size=2&sort=clientName,asc", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, float64(3), body["totalElements"])
	assert.Equal(t, float64(2), body["totalPages"])
	assert.Equal(t, true, body["last"])
	assert.Len(t, body["content"], 1)
}

func TestListLeadsRejectsUnknownStatus(t *testing.T) {
	f := newLeadFixture()

	rec := f.do(http.MethodGet, "/leads?status=PERDIDO", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "/problems/invalid_status", decodeBody(t, rec)["type"])
}

func TestListAllSetsWarningHeader(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("ListAll", mock.Anything, entity.LeadFilter{}).Return([]*entity.Lead{sampleLead(1, entity.LeadStatusNuevo)}, nil)

	rec := f.do(http.MethodGet, "/leads/all", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, UnboundedWarning, rec.Header().Get("X-Result-Warning"))
}

func TestUpdateStatus(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("FindByID", mock.Anything, int64(1)).Return(sampleLead(1, entity.LeadStatusNuevo), nil)
	f.leads.On("FindByID", mock.Anything, int64(2)).Return(sampleLead(2, entity.LeadStatusRechazado), nil)
	f.leads.On("Update", mock.Anything, mock.AnythingOfType("*entity.Lead")).Return(nil)

	rec := f.do(http.MethodPatch, "/leads/1/status?status=CONTACTADO", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "CONTACTADO", decodeBody(t, rec)["status"])

	rec = f.do(http.MethodPatch, "/leads/2/status", `{"status": "APROBADO"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "/problems/invalid_transition", decodeBody(t, rec)["type"])
}

func statusChangeCount(t *testing.T, status string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "lead_status_changes_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == status {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestUpdateStatusSameValueDoesNotCountAsChange(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("FindByID", mock.Anything, int64(3)).Return(sampleLead(3, entity.LeadStatusEnEvaluacion), nil)
	before := statusChangeCount(t, string(entity.LeadStatusEnEvaluacion))

	rec := f.do(http.MethodPatch, "/leads/3/status?status=EN_EVALUACION", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, before, statusChangeCount(t, string(entity.LeadStatusEnEvaluacion)))
	f.leads.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

	f.leads.On("FindByID", mock.Anything, int64(5)).Return(sampleLead(5, entity.LeadStatusContactado), nil)
	f.leads.On("Update", mock.Anything, mock.AnythingOfType("*entity.Lead")).Return(nil)

	rec = f.do(http.MethodPatch, "/leads/5/status?status=EN_EVALUACION", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, before+1, statusChangeCount(t, string(entity.LeadStatusEnEvaluacion)))
}

func TestUpdateLeadPartial(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("FindByID", mock.Anything, int64(4)).Return(sampleLead(4, entity.LeadStatusNuevo), nil)
	f.leads.On("Update", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.Phone == "912345678" && l.ClientName == "Juan Pérez"
	})).Return(nil)

	rec := f.do(http.MethodPut, "/leads/4", `{"phone": "912345678"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "912345678", decodeBody(t, rec)["phone"])
}

func TestStats(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("Stats", mock.Anything, mock.AnythingOfType("time.Time")).Return(&entity.LeadStats{
		TotalLeads: 4,
		ByStatus:   map[entity.LeadStatus]int64{entity.LeadStatusNuevo: 4},
		ByOrigin:   map[string]int64{entity.OriginWeb: 4},
	}, nil)

	rec := f.do(http.MethodGet, "/leads/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), decodeBody(t, rec)["totalLeads"])
}

func TestIntakeAcceptsLooseForm(t *testing.T) {
	f := newLeadFixture()
	f.leads.On("ExistsByDNI", mock.Anything, "87654321").Return(true, nil)
	f.clinics.On("FindByNameIgnoreCase", mock.Anything, "Callao").Return(&entity.Clinic{ID: 2, Name: "Callao", Active: true}, nil)
	f.specialties.On("ListActive", mock.Anything, "").Return([]*entity.MedicalSpecialty{{ID: 1, Name: "General", Active: true}}, nil)
	f.leads.On("Create", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.ClinicID == 2 && l.Origin == entity.OriginSquarespace && l.TreatmentCost.Equal(decimal.RequireFromString("1500"))
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Lead).ID = 11
	}).Return(nil)

	rec := f.do(http.MethodPost, "/squarespace/lead", `{
		"sede": "Sede Callao", "clientName": "Rosa", "dni": "87654321",
		"treatmentCost": "S/ 1,500", "phone": "999"
	}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(11), body["leadId"])
}

func TestIntakeRequiresDNI(t *testing.T) {
	f := newLeadFixture()

	rec := f.do(http.MethodPost, "/squarespace/lead", `{"sede": "Lima", "dni": "  "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["error"])
}

func TestLoginInvalidCredentials(t *testing.T) {
	users := new(usecasetest.MockUserRepository)
	users.On("FindByUsername", mock.Anything, "nadie").Return(nil, entity.ErrUserNotFound)
	login := usecase.NewLoginUseCase(users, new(usecasetest.MockPasswordHasher), new(usecasetest.MockTokenIssuer), zerolog.Nop())
	h := NewAuthHandler(nil, login, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"nadie","password":"secreto123"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// memoryUsers guarda usuários em memória com a mesma semântica do repositório.
type memoryUsers struct {
	byName map[string]*entity.User
}

func (m *memoryUsers) Create(_ context.Context, u *entity.User) error {
	if _, ok := m.byName[u.Username]; ok {
		return entity.ErrUsernameTaken
	}
	u.ID = int64(len(m.byName) + 1)
	u.CreatedAt = fixedNow
	m.byName[u.Username] = u
	return nil
}

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	if u, ok := m.byName[username]; ok {
		return u, nil
	}
	return nil, entity.ErrUserNotFound
}

func (m *memoryUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := m.byName[username]
	return ok, nil
}

func (m *memoryUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range m.byName {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func TestRegisterHasNoTokenThenLoginIssuesOne(t *testing.T) {
	users := &memoryUsers{byName: map[string]*entity.User{}}
	hasher := &security.BcryptHasher{Cost: bcrypt.MinCost}
	tokens, err := security.NewTokenService("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)
	h := NewAuthHandler(
		usecase.NewRegisterUserUseCase(users, hasher, zerolog.Nop()),
		usecase.NewLoginUseCase(users, hasher, tokens, zerolog.Nop()),
		zerolog.Nop(),
	)

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"username":"recepcion1","email":"Recepcion1@KiwiPay.pe","password":"secreto123"}`)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decodeBody(t, rec)
	assert.NotContains(t, registered, "token")
	assert.Equal(t, "recepcion1", registered["username"])
	assert.Equal(t, "USER", registered["role"])

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"recepcion1","password":"secreto123"}`)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decodeBody(t, rec)
	raw, ok := login["token"].(string)
	require.True(t, ok)
	assert.Equal(t, "Bearer", login["type"])
	assert.Equal(t, float64(time.Hour.Milliseconds()), login["expiresIn"])

	claims, err := tokens.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "recepcion1", claims.Subject)
}

func TestReferenceListSpecialtiesByCategory(t *testing.T) {
	specialties := new(usecasetest.MockSpecialtyRepository)
	specialties.On("ListActive", mock.Anything, "Odontologia").Return([]*entity.MedicalSpecialty{{ID: 1, Name: "Ortodoncia", Category: "Odontologia", Active: true}}, nil)
	h := NewReferenceHandler(usecase.NewReferenceDataUseCase(new(usecasetest.MockClinicRepository), specialties), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ListSpecialties(rec, httptest.NewRequest(http.MethodGet, "/medical-specialties?category=Odontologia", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Ortodoncia", body[0]["name"])
}

func TestPopulateStatus(t *testing.T) {
	clinics := new(usecasetest.MockClinicRepository)
	specialties := new(usecasetest.MockSpecialtyRepository)
	clinics.On("Count", mock.Anything).Return(int64(3), nil)
	specialties.On("Count", mock.Anything).Return(int64(12), nil)
	uc := usecase.NewPopulateReferenceDataUseCase(nil, nil, clinics, specialties, zerolog.Nop())
	h := NewPopulateHandler(uc, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/populate/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(3), body["clinics"])
	assert.Equal(t, float64(12), body["medicalSpecialties"])
}

func TestHealthWithoutDatabaseIsDegraded(t *testing.T) {
	h := NewHealthHandler(nil, nil, nil, "test")
	rec := httptest.NewRecorder()

	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(context.Background()))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "not configured", deps["rabbitmq"])
}
