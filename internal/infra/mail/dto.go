package mail

import (
	"time"

	"gopkg.in/gomail.v2"
)

// LeadEmailData alimenta o template lead_event.html.
type LeadEmailData struct {
	Title          string
	LeadID         int64
	ClientName     string
	DNI            string
	Phone          string
	ClinicName     string
	Origin         string
	Status         string
	PreviousStatus string
	OccurredAt     string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string
	Location *time.Location

	send func(m *gomail.Message) error
}
