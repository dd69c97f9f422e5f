package mailer

import "time"

// Message is implemented by every transactional email kind. A Message
// pairs a template with the data needed to render it and knows how to
// check its own required fields.
type Message interface {
	// TemplateName returns the template file rendered for this message.
	TemplateName() string

	// TemplateData builds a fresh data mapping for the renderer. The
	// returned maps are never shared between calls, so per-recipient
	// personalization cannot leak into another recipient's render.
	TemplateData() map[string]any

	// Validate returns an error wrapping ErrValidation when required
	// fields are missing or malformed.
	Validate() error
}

// base carries the fields shared by all message kinds: the company
// block and the year the message was created.
type base struct {
	company Company
	year    int
}

func newBase(company Company) base {
	return base{company: company, year: time.Now().Year()}
}

func (b base) data() map[string]any {
	return map[string]any{
		"company": b.company.templateData(),
		"year":    b.year,
	}
}

// Company returns the company the message is sent on behalf of.
func (b base) Company() Company { return b.company }

// userData renders an address as a user/customer template block,
// falling back to a generic salutation when no name is known.
func userData(a EmailAddress) map[string]any {
	name := a.Name()
	if name == "" {
		name = "there"
	}
	return map[string]any{
		"name":  name,
		"email": a.Email(),
	}
}
