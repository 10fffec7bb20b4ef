package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/artisan-crm/internal/event"
)

const newLeadTemplate = `<h2>New lead captured</h2>
<p>{{.Message}}</p>
<ul>
  <li>Name: {{index .LeadData "name"}}</li>
  <li>Email: {{index .LeadData "email"}}</li>
  <li>Company: {{index .LeadData "company"}}</li>
  <li>Stage: {{index .LeadData "stage"}}</li>
</ul>
`

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	NotifyTo string
}

func NewEmailSender(host string, port int, user, password, from, notifyTo string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		NotifyTo: notifyTo,
	}
}

// NotifyNewLead mails the sales inbox about a freshly created lead.
func (s *EmailSender) NotifyNewLead(e event.LeadEvent) error {
	t, err := template.New("new-lead").Parse(newLeadTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse mail template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, e); err != nil {
		return fmt.Errorf("failed to render mail template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.NotifyTo)
	m.SetHeader("Subject", fmt.Sprintf("New lead: %v", e.LeadData["name"]))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail via SMTP: %w", err)
	}

	return nil
}
