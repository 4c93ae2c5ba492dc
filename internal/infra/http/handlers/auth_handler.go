package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/middleware"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/problem"
	"github.com/xavierca1/kiwipay-leads/internal/usecase"
)

type AuthHandler struct {
	RegisterUC *usecase.RegisterUserUseCase
	LoginUC    *usecase.LoginUseCase
	Logger     zerolog.Logger
}

func NewAuthHandler(register *usecase.RegisterUserUseCase, login *usecase.LoginUseCase, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{RegisterUC: register, LoginUC: login, Logger: logger}
}

// Register (POST /auth/register)
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input usecase.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}

	output, err := h.RegisterUC.Execute(r.Context(), input)
	if err != nil {
		problem.FromError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, output)
}

// Login (POST /auth/login)
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input usecase.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}

	output, err := h.LoginUC.Execute(r.Context(), input)
	if err != nil {
		middleware.RecordLogin("failure")
		problem.FromError(w, r, h.Logger, err)
		return
	}

	middleware.RecordLogin("success")
	writeJSON(w, http.StatusOK, output)
}
