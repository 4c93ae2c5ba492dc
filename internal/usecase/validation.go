package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const (
	maxTextLength     = 255
	maxOriginLength   = 50
	maxObservationLen = 2000
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
)

var (
	dniPattern   = regexp.MustCompile(`^[0-9]{8}$`)
	phonePattern = regexp.MustCompile(`^[0-9]{9}$`)
	// NUMERIC(10,2) no banco
	maxAmount = decimal.New(100_000_000, 0)
)

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	errors = appendOptionalText(errors, "receptionistName", input.ReceptionistName)
	errors = appendOptionalText(errors, "clientName", input.ClientName)

	if input.ClinicID == nil {
		errors = append(errors, ValidationError{"clinicId", "La clínica es obligatoria"})
	}
	if input.MedicalSpecialtyID == nil {
		errors = append(errors, ValidationError{"medicalSpecialtyId", "La especialidad médica es obligatoria"})
	}

	errors = appendDNI(errors, input.DNI)
	errors = appendAmount(errors, "monthlyIncome", input.MonthlyIncome, "El ingreso mensual es obligatorio")
	errors = appendAmount(errors, "treatmentCost", input.TreatmentCost, "El costo del tratamiento es obligatorio")
	errors = appendPhone(errors, input.Phone)
	errors = appendEmail(errors, input.Email)

	return errors
}

// ValidateUpdateLeadInput só olha os campos presentes.
func ValidateUpdateLeadInput(input UpdateLeadInput) []ValidationError {
	var errors []ValidationError

	if input.ReceptionistName != nil {
		errors = appendOptionalText(errors, "receptionistName", *input.ReceptionistName)
	}
	if input.ClientName != nil {
		errors = appendOptionalText(errors, "clientName", *input.ClientName)
	}
	if input.DNI != nil {
		errors = appendDNI(errors, *input.DNI)
	}
	if input.MonthlyIncome != nil {
		errors = appendAmount(errors, "monthlyIncome", input.MonthlyIncome, "")
	}
	if input.TreatmentCost != nil {
		errors = appendAmount(errors, "treatmentCost", input.TreatmentCost, "")
	}
	if input.Phone != nil {
		errors = appendPhone(errors, *input.Phone)
	}
	if input.Email != nil {
		errors = appendEmail(errors, *input.Email)
	}
	if input.Origin != nil {
		if strings.TrimSpace(*input.Origin) == "" {
			errors = append(errors, ValidationError{"origin", "El origen no puede estar vacío"})
		} else if utf8.RuneCountInString(*input.Origin) > maxOriginLength {
			errors = append(errors, ValidationError{"origin", fmt.Sprintf("El origen no puede superar %d caracteres", maxOriginLength)})
		}
	}
	if input.Observation != nil && utf8.RuneCountInString(*input.Observation) > maxObservationLen {
		errors = append(errors, ValidationError{"observation", fmt.Sprintf("La observación no puede superar %d caracteres", maxObservationLen)})
	}

	return errors
}

func ValidateRegisterInput(input RegisterInput) []ValidationError {
	var errors []ValidationError

	username := strings.TrimSpace(input.Username)
	if username == "" {
		errors = append(errors, ValidationError{"username", "El nombre de usuario es obligatorio"})
	} else if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		errors = append(errors, ValidationError{"username", fmt.Sprintf("El nombre de usuario debe tener entre %d y %d caracteres", minUsernameLength, maxUsernameLength)})
	}

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "El email es obligatorio"})
	} else {
		errors = appendEmail(errors, input.Email)
	}

	if input.Password == "" {
		errors = append(errors, ValidationError{"password", "La contraseña es obligatoria"})
	} else if utf8.RuneCountInString(input.Password) < minPasswordLength {
		errors = append(errors, ValidationError{"password", fmt.Sprintf("La contraseña debe tener al menos %d caracteres", minPasswordLength)})
	}

	return errors
}

func ValidateLoginInput(input LoginInput) []ValidationError {
	var errors []ValidationError
	if strings.TrimSpace(input.Username) == "" {
		errors = append(errors, ValidationError{"username", "El nombre de usuario es obligatorio"})
	}
	if input.Password == "" {
		errors = append(errors, ValidationError{"password", "La contraseña es obligatoria"})
	}
	return errors
}

func ValidateCreateClinicInput(input CreateClinicInput) []ValidationError {
	var errors []ValidationError
	errors = appendRequiredText(errors, "name", input.Name, "El nombre de la clínica es obligatorio")
	errors = appendOptionalText(errors, "address", input.Address)
	return errors
}

func ValidateCreateMedicalSpecialtyInput(input CreateMedicalSpecialtyInput) []ValidationError {
	var errors []ValidationError
	errors = appendRequiredText(errors, "name", input.Name, "El nombre de la especialidad es obligatorio")
	errors = appendOptionalText(errors, "category", input.Category)
	return errors
}

func appendRequiredText(errors []ValidationError, field, value, requiredMsg string) []ValidationError {
	if strings.TrimSpace(value) == "" {
		return append(errors, ValidationError{field, requiredMsg})
	}
	return appendOptionalText(errors, field, value)
}

func appendOptionalText(errors []ValidationError, field, value string) []ValidationError {
	if utf8.RuneCountInString(value) > maxTextLength {
		return append(errors, ValidationError{field, fmt.Sprintf("No puede superar %d caracteres", maxTextLength)})
	}
	return errors
}

func appendDNI(errors []ValidationError, dni string) []ValidationError {
	dni = strings.TrimSpace(dni)
	if dni == "" {
		return append(errors, ValidationError{"dni", "El DNI es obligatorio"})
	}
	if !dniPattern.MatchString(dni) {
		return append(errors, ValidationError{"dni", "El DNI debe tener exactamente 8 dígitos"})
	}
	return errors
}

func appendPhone(errors []ValidationError, phone string) []ValidationError {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return append(errors, ValidationError{"phone", "El teléfono es obligatorio"})
	}
	if !phonePattern.MatchString(phone) {
		return append(errors, ValidationError{"phone", "El teléfono debe tener exactamente 9 dígitos"})
	}
	return errors
}

// Email é opcional no lead; quando vem, precisa ser válido.
func appendEmail(errors []ValidationError, email string) []ValidationError {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors
	}
	if utf8.RuneCountInString(email) > maxTextLength {
		return append(errors, ValidationError{"email", fmt.Sprintf("No puede superar %d caracteres", maxTextLength)})
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return append(errors, ValidationError{"email", "El email debe ser válido"})
	}
	return errors
}

// Valores monetários: obrigatórios quando requiredMsg != "", > 0, no máximo 2 casas e 8 dígitos inteiros.
func appendAmount(errors []ValidationError, field string, value *decimal.Decimal, requiredMsg string) []ValidationError {
	if value == nil {
		if requiredMsg != "" {
			return append(errors, ValidationError{field, requiredMsg})
		}
		return errors
	}
	switch {
	case !value.IsPositive():
		return append(errors, ValidationError{field, "Debe ser mayor a 0"})
	case !value.Equal(value.Round(2)):
		return append(errors, ValidationError{field, "Debe tener como máximo 2 decimales"})
	case value.GreaterThanOrEqual(maxAmount):
		return append(errors, ValidationError{field, "Debe tener como máximo 8 dígitos enteros"})
	}
	return errors
}
