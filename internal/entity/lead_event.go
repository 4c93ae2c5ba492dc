package entity

import "time"

const (
	LeadEventCreated       = "lead.created"
	LeadEventStatusChanged = "lead.status_changed"
)

// LeadEvent é publicado depois do commit; quem consome é o worker de notificação.
type LeadEvent struct {
	Type           string     `json:"type"`
	LeadID         int64      `json:"leadId"`
	ClientName     string     `json:"clientName"`
	DNI            string     `json:"dni"`
	Phone          string     `json:"phone"`
	ClinicName     string     `json:"clinicName"`
	Origin         string     `json:"origin"`
	Status         LeadStatus `json:"status"`
	PreviousStatus LeadStatus `json:"previousStatus,omitempty"`
	OccurredAt     time.Time  `json:"occurredAt"`
}

func NewLeadEvent(eventType string, l *Lead, previous LeadStatus, at time.Time) LeadEvent {
	return LeadEvent{
		Type:           eventType,
		LeadID:         l.ID,
		ClientName:     l.ClientName,
		DNI:            l.DNI,
		Phone:          l.Phone,
		ClinicName:     l.ClinicName,
		Origin:         l.Origin,
		Status:         l.Status,
		PreviousStatus: previous,
		OccurredAt:     at,
	}
}
