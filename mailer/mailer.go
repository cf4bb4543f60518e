// Package mailer is the outbound email collaborator. Delivery is best-effort
// everywhere it is used: a failed send is logged, never fatal to the
// operation that triggered it.
package mailer

import (
	"log"
	"net/smtp"
)

type Mailer interface {
	Send(toAddress, subject, htmlBody string) error
}

// SMTP sends through a plain-auth SMTP relay.
type SMTP struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func (m *SMTP) Send(toAddress, subject, htmlBody string) error {
	msg := []byte("From: " + m.From + "\r\n" +
		"To: " + toAddress + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" + htmlBody)

	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{toAddress}, msg)
}

// LogOnly is used when no SMTP relay is configured: it prints the mail to
// the log and reports success, so local development works without a relay.
type LogOnly struct{}

func (LogOnly) Send(toAddress, subject, htmlBody string) error {
	log.Printf("mail (not sent, no relay configured) to=%s subject=%q", toAddress, subject)
	return nil
}
