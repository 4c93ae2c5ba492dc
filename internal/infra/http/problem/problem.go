package problem

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/xavierca1/kiwipay-leads/internal/usecase"
)

// Problem é o corpo de erro padrão da API.
type Problem struct {
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Status    int               `json:"status"`
	Detail    string            `json:"detail"`
	Instance  string            `json:"instance"`
	Timestamp time.Time         `json:"timestamp"`
	Errors    map[string]string `json:"errors,omitempty"`
}

const internalDetail = "Ocurrió un error interno. Intente nuevamente más tarde."

// StatusFor traduz o Kind do erro de domínio para o status HTTP.
func StatusFor(kind usecase.ErrorKind) int {
	switch kind {
	case usecase.KindValidation, usecase.KindInvalidTransition, usecase.KindInvalidStatus, usecase.KindReferenceInactive:
		return http.StatusBadRequest
	case usecase.KindUnauthorized, usecase.KindInvalidCredentials:
		return http.StatusUnauthorized
	case usecase.KindAccountDisabled, usecase.KindForbidden:
		return http.StatusForbidden
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindDuplicate:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func Write(w http.ResponseWriter, r *http.Request, status int, kind, detail string, fields map[string]string) {
	if kind == "" {
		kind = "about:blank"
	} else {
		kind = "/problems/" + kind
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Problem{
		Type:      kind,
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detail,
		Instance:  r.URL.Path,
		Timestamp: time.Now(),
		Errors:    fields,
	})
}

// FromError escreve o problem certo para qualquer erro vindo dos use cases.
// Erros técnicos são logados e viram 500 com mensagem genérica.
func FromError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	if de, ok := usecase.AsDomainError(err); ok {
		var fields map[string]string
		if len(de.Fields) > 0 {
			fields = make(map[string]string, len(de.Fields))
			for _, f := range de.Fields {
				if _, dup := fields[f.Field]; !dup {
					fields[f.Field] = f.Message
				}
			}
		}
		detail := de.Message
		if de.Kind == usecase.KindValidation && len(fields) > 0 {
			detail = "La solicitud contiene datos inválidos"
		}
		Write(w, r, StatusFor(de.Kind), de.Kind.String(), detail, fields)
		return
	}

	logger.Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("erro inesperado na requisição")
	Write(w, r, http.StatusInternalServerError, "internal", internalDetail, nil)
}

func Internal(w http.ResponseWriter, r *http.Request) {
	Write(w, r, http.StatusInternalServerError, "internal", internalDetail, nil)
}
