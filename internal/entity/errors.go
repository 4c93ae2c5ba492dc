package entity

import "errors"

var (
	ErrLeadNotFound             = errors.New("lead no encontrado")
	ErrClinicNotFound           = errors.New("clínica no encontrada")
	ErrMedicalSpecialtyNotFound = errors.New("especialidad médica no encontrada")
	ErrUserNotFound             = errors.New("usuario no encontrado")

	ErrUsernameTaken = errors.New("username ya existe")
	ErrEmailTaken    = errors.New("email ya está registrado")

	ErrInvalidStatus     = errors.New("estado inválido")
	ErrInvalidTransition = errors.New("transición de estado inválida")
)
