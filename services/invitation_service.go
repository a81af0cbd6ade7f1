package services

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"structura-api/config"
	"structura-api/models"
)

// Invitation carries everything needed to email a new supervisor or client.
type Invitation struct {
	DeliveryID     string
	AccountID      uint
	ToEmail        string
	FirstName      string
	Role           string
	TempPassword   string
	InvitedByEmail string
	InvitedByName  string
	ProjectName    string
}

// DeliveryResult is the outcome of one invitation, including the fallback attempt.
type DeliveryResult struct {
	Status    string
	Attempts  int
	From      string
	Transport string
	Err       error
}

// InvitationMailer composes invitation emails and sends them with a single fallback to the
// default sender when a custom From was rejected.
type InvitationMailer struct {
	transport   config.MailTransport
	defaultFrom string
	appName     string
	frontendURL string
	logoURLs    []string
	logger      *log.Logger
}

// NewInvitationMailer reads the transport and sender settings from the environment.
func NewInvitationMailer(logger *log.Logger) *InvitationMailer {
	settings := config.LoadMailSettings()
	m := NewInvitationMailerWith(config.NewMailTransport(settings), settings.From, config.AppName(), config.FrontendURL(), logger)
	m.logoURLs = config.EmailLogoURLs()
	return m
}

// NewInvitationMailerWith builds a mailer over an explicit transport.
func NewInvitationMailerWith(transport config.MailTransport, defaultFrom, appName, frontendURL string, logger *log.Logger) *InvitationMailer {
	if logger == nil {
		logger = config.NewLogger("[invitation] ")
	}
	return &InvitationMailer{
		transport:   transport,
		defaultFrom: strings.TrimSpace(defaultFrom),
		appName:     strings.TrimSpace(appName),
		frontendURL: strings.TrimRight(strings.TrimSpace(frontendURL), "/"),
		logger:      logger,
	}
}

// Compose builds the message for inv without sending it.
func (m *InvitationMailer) Compose(inv Invitation) config.MailMessage {
	appName := m.appName
	subject := "Invitation"
	if appName != "" {
		subject = fmt.Sprintf("You’ve been invited to %s", appName)
	}

	firstName := strings.TrimSpace(inv.FirstName)
	inviterEmail := strings.TrimSpace(inv.InvitedByEmail)
	inviterName := strings.TrimSpace(inv.InvitedByName)
	projectName := strings.TrimSpace(inv.ProjectName)

	greeting := "Hi,"
	if firstName != "" {
		greeting = fmt.Sprintf("Hi %s,", firstName)
	}
	projectLine := ""
	if projectName != "" {
		projectLine = " for the project: " + projectName
	}

	intro := fmt.Sprintf("You’ve been invited to join %s%s.", appName, projectLine)
	loginURL := ""
	if m.frontendURL != "" {
		loginURL = m.frontendURL + "/login"
	}
	reminder := "After logging in, please change your password right away (Settings → Change Password)."
	contactLine := ""
	if inviterEmail != "" || inviterName != "" {
		name := inviterName
		if name == "" {
			name = "Project Manager"
		}
		contact := name
		if inviterEmail != "" {
			contact = fmt.Sprintf("%s (%s)", name, inviterEmail)
		}
		contactLine = fmt.Sprintf("If you weren’t expecting this invitation, you can ignore this email or contact the Project Manager: %s.", contact)
	}
	signature := fmt.Sprintf("Thanks,\n%s Team", appName)

	lines := []string{
		greeting,
		"",
		intro,
		"",
		"Role: " + inv.Role,
		"Email: " + inv.ToEmail,
		"Temporary password: " + inv.TempPassword,
	}
	if loginURL != "" {
		lines = append(lines, "", "Login here: "+loginURL)
	}
	lines = append(lines, "", reminder)
	if contactLine != "" {
		lines = append(lines, "", contactLine)
	}
	lines = append(lines, "", signature)

	footer := []string{}
	if contactLine != "" {
		footer = append(footer, contactLine, "")
	}
	footer = append(footer, "Thanks,", appName+" Team")
	html, err := renderInvitationHTML(invitationPage{
		Subject:    subject,
		AppName:    appName,
		LogoURLs:   m.logoURLs,
		Paragraphs: []string{greeting, intro, reminder},
		Details: []invitationDetail{
			{Label: "Role", Value: inv.Role},
			{Label: "Email", Value: inv.ToEmail},
			{Label: "Temporary password", Value: inv.TempPassword},
		},
		LoginURL: loginURL,
		Footer:   footer,
	})
	if err != nil {
		m.logger.Printf("render invitation html to=%s: %v", inv.ToEmail, err)
	}

	msg := config.MailMessage{
		From:    m.defaultFrom,
		Sender:  m.defaultFrom,
		To:      []string{strings.TrimSpace(inv.ToEmail)},
		Subject: subject,
		Text:    strings.Join(lines, "\n"),
		HTML:    html,
	}

	if inviterEmail != "" {
		if addr, err := mail.ParseAddress(inviterEmail); err == nil {
			display := inviterName
			if display == "" {
				display = addr.Address
			}
			msg.From = (&mail.Address{Name: display, Address: addr.Address}).String()
			msg.ReplyTo = []string{addr.Address}
		} else {
			m.logger.Printf("invalid invited_by_email for From header: %q", inviterEmail)
		}
	}
	return msg
}

// Deliver sends the invitation. Failures are logged, never returned to the caller; a failed
// attempt from a custom sender is retried exactly once with the default sender.
func (m *InvitationMailer) Deliver(ctx context.Context, inv Invitation) DeliveryResult {
	result := DeliveryResult{Transport: m.transport.Name()}
	if strings.TrimSpace(inv.ToEmail) == "" {
		result.Status = models.DeliveryDropped
		return result
	}

	msg := m.Compose(inv)
	result.From = msg.From
	result.Attempts = 1
	err := m.transport.Send(ctx, msg)
	if err == nil {
		m.logger.Printf("invitation email sent to=%s role=%s from=%q transport=%s", inv.ToEmail, inv.Role, msg.From, result.Transport)
		result.Status = models.DeliverySent
		return result
	}
	m.logger.Printf("invitation email failed to=%s role=%s from=%q transport=%s: %v", inv.ToEmail, inv.Role, msg.From, result.Transport, err)

	if m.defaultFrom == "" || msg.From == m.defaultFrom {
		result.Status = models.DeliveryFailed
		result.Err = err
		return result
	}

	msg.From = m.defaultFrom
	msg.Sender = ""
	result.From = msg.From
	result.Attempts = 2
	if err := m.transport.Send(ctx, msg); err != nil {
		m.logger.Printf("invitation email fallback failed to=%s role=%s from=%q transport=%s: %v", inv.ToEmail, inv.Role, msg.From, result.Transport, err)
		result.Status = models.DeliveryFailed
		result.Err = err
		return result
	}
	m.logger.Printf("invitation email fallback sent to=%s role=%s from=%q transport=%s", inv.ToEmail, inv.Role, msg.From, result.Transport)
	result.Status = models.DeliverySent
	return result
}
