package mailer

import (
	"fmt"
	"slices"
)

// DefaultResetExpiry is the password-reset link lifetime in hours
// applied by callers when no explicit value is given.
const DefaultResetExpiry = 24

// Welcome greets a newly registered user and points them at their dashboard.
type Welcome struct {
	base
	User         EmailAddress
	DashboardURL string
}

// NewWelcome creates a welcome message for user.
func NewWelcome(company Company, user EmailAddress, dashboardURL string) *Welcome {
	return &Welcome{base: newBase(company), User: user, DashboardURL: dashboardURL}
}

func (m *Welcome) TemplateName() string { return "welcome.html" }

func (m *Welcome) TemplateData() map[string]any {
	data := m.data()
	data["user"] = userData(m.User)
	data["dashboard_url"] = m.DashboardURL
	return data
}

func (m *Welcome) Validate() error {
	if m.DashboardURL == "" {
		return fmt.Errorf("%w: dashboard_url is required for the welcome email", ErrValidation)
	}
	return nil
}

// PasswordReset carries a reset link with a bounded lifetime.
type PasswordReset struct {
	base
	User     EmailAddress
	ResetURL string
	// ExpiresIn is the link lifetime in hours. Must be positive.
	ExpiresIn int
}

// NewPasswordReset creates a password-reset message for user.
func NewPasswordReset(company Company, user EmailAddress, resetURL string, expiresIn int) *PasswordReset {
	return &PasswordReset{base: newBase(company), User: user, ResetURL: resetURL, ExpiresIn: expiresIn}
}

func (m *PasswordReset) TemplateName() string { return "password_reset.html" }

func (m *PasswordReset) TemplateData() map[string]any {
	data := m.data()
	data["user"] = userData(m.User)
	data["reset_url"] = m.ResetURL
	data["expires_in"] = m.ExpiresIn
	return data
}

func (m *PasswordReset) Validate() error {
	if m.ResetURL == "" {
		return fmt.Errorf("%w: reset_url is required for the password reset email", ErrValidation)
	}
	if m.ExpiresIn <= 0 {
		return fmt.Errorf("%w: expires_in must be a positive number of hours", ErrValidation)
	}
	return nil
}

var notificationTypes = []string{"success", "warning", "error", "info"}

// NotificationContent is the payload of a general notification email.
type NotificationContent struct {
	Title          string
	Message        string
	Type           string // one of "success", "warning", "error", "info"
	Icon           string
	ActionURL      string
	ActionText     string
	AdditionalInfo string
}

// Notification informs a user about an event in their account.
type Notification struct {
	base
	User           EmailAddress
	Content        NotificationContent
	PreferencesURL string
}

// NewNotification creates a notification message. An empty content
// type defaults to "info".
func NewNotification(company Company, user EmailAddress, content NotificationContent, preferencesURL string) *Notification {
	if content.Type == "" {
		content.Type = "info"
	}
	return &Notification{base: newBase(company), User: user, Content: content, PreferencesURL: preferencesURL}
}

func (m *Notification) TemplateName() string { return "notification.html" }

func (m *Notification) TemplateData() map[string]any {
	data := m.data()
	data["user"] = userData(m.User)
	data["notification"] = map[string]any{
		"title":           m.Content.Title,
		"message":         m.Content.Message,
		"type":            m.Content.Type,
		"icon":            m.Content.Icon,
		"action_url":      m.Content.ActionURL,
		"action_text":     m.Content.ActionText,
		"additional_info": m.Content.AdditionalInfo,
	}
	data["preferences_url"] = m.PreferencesURL
	return data
}

func (m *Notification) Validate() error {
	if m.Content.Title == "" || m.Content.Message == "" {
		return fmt.Errorf("%w: notification title and message are required", ErrValidation)
	}
	if !slices.Contains(notificationTypes, m.Content.Type) {
		return fmt.Errorf("%w: notification type must be one of %v", ErrValidation, notificationTypes)
	}
	return nil
}

var alertTypes = []string{"info", "warning", "error"}

// AlertContent is the payload of an alert email.
type AlertContent struct {
	Title          string
	Message        string
	Type           string // one of "info", "warning", "error"
	Steps          []string
	ActionURL      string
	ActionText     string
	ContactSupport bool
}

// Alert warns a user about a condition that may need action.
type Alert struct {
	base
	User    EmailAddress
	Content AlertContent
}

// NewAlert creates an alert message. An empty content type defaults
// to "info".
func NewAlert(company Company, user EmailAddress, content AlertContent) *Alert {
	if content.Type == "" {
		content.Type = "info"
	}
	return &Alert{base: newBase(company), User: user, Content: content}
}

func (m *Alert) TemplateName() string { return "alert.html" }

func (m *Alert) TemplateData() map[string]any {
	data := m.data()
	data["user"] = userData(m.User)
	data["alert"] = map[string]any{
		"title":           m.Content.Title,
		"message":         m.Content.Message,
		"type":            m.Content.Type,
		"steps":           slices.Clone(m.Content.Steps),
		"action_url":      m.Content.ActionURL,
		"action_text":     m.Content.ActionText,
		"contact_support": m.Content.ContactSupport,
	}
	return data
}

func (m *Alert) Validate() error {
	if m.Content.Title == "" || m.Content.Message == "" {
		return fmt.Errorf("%w: alert title and message are required", ErrValidation)
	}
	if !slices.Contains(alertTypes, m.Content.Type) {
		return fmt.Errorf("%w: alert type must be one of %v", ErrValidation, alertTypes)
	}
	return nil
}
