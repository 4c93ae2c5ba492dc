package entity

import (
	"fmt"
	"strings"
)

// LeadStatus é o estado do lead no funil de crédito.
type LeadStatus string

const (
	LeadStatusNuevo        LeadStatus = "NUEVO"
	LeadStatusContactado   LeadStatus = "CONTACTADO"
	LeadStatusEnEvaluacion LeadStatus = "EN_EVALUACION"
	LeadStatusPreAprobado  LeadStatus = "PRE_APROBADO"
	LeadStatusAprobado     LeadStatus = "APROBADO"
	LeadStatusRechazado    LeadStatus = "RECHAZADO"
	LeadStatusDesembolsado LeadStatus = "DESEMBOLSADO"
)

var leadStatuses = []LeadStatus{
	LeadStatusNuevo,
	LeadStatusContactado,
	LeadStatusEnEvaluacion,
	LeadStatusPreAprobado,
	LeadStatusAprobado,
	LeadStatusRechazado,
	LeadStatusDesembolsado,
}

var displayNames = map[LeadStatus]string{
	LeadStatusNuevo:        "Nuevo",
	LeadStatusContactado:   "Contactado",
	LeadStatusEnEvaluacion: "En Evaluación",
	LeadStatusPreAprobado:  "Pre-aprobado",
	LeadStatusAprobado:     "Aprobado",
	LeadStatusRechazado:    "Rechazado",
	LeadStatusDesembolsado: "Desembolsado",
}

// LeadStatuses devolve todos os estados na ordem do funil.
func LeadStatuses() []LeadStatus {
	out := make([]LeadStatus, len(leadStatuses))
	copy(out, leadStatuses)
	return out
}

// ParseLeadStatus aceita o nome do enum sem diferenciar maiúsculas.
func ParseLeadStatus(raw string) (LeadStatus, error) {
	s := LeadStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

func (s LeadStatus) Valid() bool {
	_, ok := displayNames[s]
	return ok
}

func (s LeadStatus) DisplayName() string {
	if name, ok := displayNames[s]; ok {
		return name
	}
	return string(s)
}

// IsTerminal: RECHAZADO e DESEMBOLSADO não saem mais do lugar.
func (s LeadStatus) IsTerminal() bool {
	return s == LeadStatusRechazado || s == LeadStatusDesembolsado
}

// CanTransitionTo só bloqueia a saída de um estado terminal. Fora disso
// qualquer estado pode ir para qualquer outro.
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	if s.IsTerminal() {
		return s == next
	}
	return true
}

// ValidateTransition retorna ErrInvalidTransition quando a mudança não é permitida.
func ValidateTransition(current, next LeadStatus) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(next))
	}
	if !current.CanTransitionTo(next) {
		return fmt.Errorf("%w: no se puede cambiar el estado de %s a %s",
			ErrInvalidTransition, current.DisplayName(), next.DisplayName())
	}
	return nil
}
