package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/xavierca1/kiwipay-leads/internal/entity"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFiles embed.FS

var leadTemplate = template.Must(template.ParseFS(templateFiles, "templates/lead_event.html"))

// NewEmailSender recebe a lista de destinatários separada por vírgula (NOTIFY_TO).
func NewEmailSender(host string, port int, user, password, from, to string, loc *time.Location) *EmailSender {
	var recipients []string
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       recipients,
		Location: loc,
	}
	s.send = func(m *gomail.Message) error {
		return gomail.NewDialer(s.Host, s.Port, s.User, s.Password).DialAndSend(m)
	}
	return s
}

// NotifyLeadEvent manda o resumo do evento para o back office.
func (s *EmailSender) NotifyLeadEvent(ctx context.Context, event entity.LeadEvent) error {
	if len(s.To) == 0 {
		return fmt.Errorf("nenhum destinatário configurado em NOTIFY_TO")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, data := s.compose(event)

	var body bytes.Buffer
	if err := leadTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := s.send(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func (s *EmailSender) compose(event entity.LeadEvent) (string, LeadEmailData) {
	data := LeadEmailData{
		LeadID:         event.LeadID,
		ClientName:     event.ClientName,
		DNI:            event.DNI,
		Phone:          event.Phone,
		ClinicName:     event.ClinicName,
		Origin:         event.Origin,
		Status:         event.Status.DisplayName(),
		PreviousStatus: event.PreviousStatus.DisplayName(),
		OccurredAt:     event.OccurredAt.In(s.Location).Format("02/01/2006 15:04"),
	}

	var subject string
	switch event.Type {
	case entity.LeadEventStatusChanged:
		data.Title = "Cambio de estado de lead"
		subject = fmt.Sprintf("Lead #%d: %s → %s", event.LeadID, data.PreviousStatus, data.Status)
	default:
		data.Title = "Nuevo lead registrado"
		subject = fmt.Sprintf("Nuevo lead #%d: %s (%s)", event.LeadID, event.ClientName, event.ClinicName)
	}
	return subject, data
}
