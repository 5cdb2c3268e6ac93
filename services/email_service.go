package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// EmailService sends candidate notifications over SMTP. Every send is
// best-effort from the caller's point of view.
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	portal   string
}

// NewEmailService creates a new email service instance from the environment
func NewEmailService() *EmailService {
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}

	return &EmailService{
		host:     getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     getEnvOrDefault("SMTP_FROM", "concours@mef.gov.ma"),
		portal:   getEnvOrDefault("PORTAL_URL", "http://localhost:3000"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.username != "" && e.password != ""
}

// SendApplicationConfirmation confirms a successful submission and gives the
// candidate their tracking number
func (e *EmailService) SendApplicationConfirmation(email, number string) error {
	body := fmt.Sprintf(`Hello,

Your application has been submitted successfully.

Application number: %s

You can follow the state of your application with this number and your
national ID on our portal: %s

Best regards,
The exam board`, number, e.portal)

	return e.send(email, "Application confirmation - "+number, body)
}

// SendValidationNotice tells the candidate their application was validated
func (e *EmailService) SendValidationNotice(email, number string) error {
	body := fmt.Sprintf(`Hello,

Your application %s has been reviewed and validated. You will receive your
exam convocation with the date and center details in a separate message.

Best regards,
The exam board`, number)

	return e.send(email, "Application validated - "+number, body)
}

// SendRejectionNotice tells the candidate their application was rejected and
// carries the reviewer's reason
func (e *EmailService) SendRejectionNotice(email, number, reason string) error {
	body := fmt.Sprintf(`Hello,

After review, your application %s could not be accepted.

Reason: %s

Best regards,
The exam board`, number, reason)

	return e.send(email, "Application rejected - "+number, body)
}

// SendPendingReminder reminds a candidate that their application is still
// under review as the contest closing date approaches
func (e *EmailService) SendPendingReminder(email, number string, daysLeft int) error {
	body := fmt.Sprintf(`Hello,

Your application %s is still being processed.

%d day(s) remain before the contest closes. Thank you for your patience.

Best regards,
The exam board`, number, daysLeft)

	return e.send(email, "Application pending - "+number, body)
}

// send builds the message and delivers it over SMTP with STARTTLS
func (e *EmailService) send(to, subject, body string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured; skipping %q to %s", subject, to)
		return fmt.Errorf("SMTP not configured")
	}

	headers := map[string]string{
		"From":         fmt.Sprintf("Exam Board <%s>", e.from),
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=UTF-8",
	}

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)
	tlsConfig := &tls.Config{ServerName: e.host}

	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err := conn.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	conn.Quit()
	log.Printf("Email %q sent to %s", subject, to)
	return nil
}
