package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/xavierca1/kiwipay-leads/internal/infra/http/problem"
)

// Valores monetários saem como número no JSON (1500.5), não como string.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON lê o corpo e responde 400 sozinho quando ele é inválido.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil {
		return true
	}
	detail := "JSON inválido"
	if errors.Is(err, io.EOF) {
		detail = "El cuerpo de la solicitud está vacío"
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		problem.Write(w, r, http.StatusBadRequest, "validation", detail,
			map[string]string{typeErr.Field: "Tipo de dato inválido"})
		return false
	}
	problem.Write(w, r, http.StatusBadRequest, "validation", detail, nil)
	return false
}

// pathID lê {id} da rota; só aceita inteiros positivos.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		problem.Write(w, r, http.StatusBadRequest, "validation", "Identificador inválido",
			map[string]string{"id": "Debe ser un número entero positivo"})
		return 0, false
	}
	return id, true
}
