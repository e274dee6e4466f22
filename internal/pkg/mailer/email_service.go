package mailer

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

var ErrNotConfigured = errors.New("smtp is not configured")

type IEmailService interface {
	SendBio(toEmail, donorName, body string) error
}

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	sender      Sender
	senderEmail string
	senderName  string
}

// NewEmailService returns a service whose sends fail with ErrNotConfigured when
// host is empty.
func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	var sender Sender
	if host != "" {
		sender = gomail.NewDialer(host, port, username, password)
	}
	return NewEmailServiceWithSender(sender, senderEmail, senderName)
}

func NewEmailServiceWithSender(sender Sender, senderEmail, senderName string) IEmailService {
	return &emailService{
		sender:      sender,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

// SendBio mails an exported bio as plain text with an HTML alternative.
func (s *emailService) SendBio(toEmail, donorName, body string) error {
	if s.sender == nil {
		return ErrNotConfigured
	}

	m := BuildBioMessage(s.senderEmail, s.senderName, toEmail, donorName, body)
	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send bio to %s: %w", toEmail, err)
	}
	return nil
}

func BuildBioMessage(fromEmail, fromName, toEmail, donorName, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", fromEmail, fromName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Smart Bio: %s", donorName))

	m.SetBody("text/plain", body)
	m.AddAlternative("text/html", renderHTML(body))
	return m
}

func renderHTML(body string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">`)
	for _, para := range strings.Split(strings.TrimSpace(body), "\n\n") {
		lines := strings.Split(para, "\n")
		for i := range lines {
			lines[i] = html.EscapeString(lines[i])
		}
		fmt.Fprintf(&b, "<p>%s</p>", strings.Join(lines, "<br>"))
	}
	b.WriteString(`</div>`)
	return b.String()
}
