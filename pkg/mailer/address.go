package mailer

import (
	"fmt"
	"maps"
	"regexp"
)

// addressRe is a simplified RFC 5322 grammar: local part, "@",
// dot-separated domain labels, alphabetic TLD of two or more chars.
var addressRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// EmailAddress is a validated address with an optional display name.
// The zero value is unusable; construct via NewEmailAddress.
type EmailAddress struct {
	email string
	name  string
}

// NewEmailAddress validates email against the address grammar and
// returns an immutable EmailAddress.
func NewEmailAddress(email, name string) (EmailAddress, error) {
	if email == "" {
		return EmailAddress{}, fmt.Errorf("%w: address is empty", ErrInvalidAddress)
	}
	if !addressRe.MatchString(email) {
		return EmailAddress{}, fmt.Errorf("%w: %q", ErrInvalidAddress, email)
	}
	return EmailAddress{email: email, name: name}, nil
}

// MustEmailAddress is NewEmailAddress that panics on invalid input.
// Intended for addresses known at compile time, e.g. in tests.
func MustEmailAddress(email, name string) EmailAddress {
	addr, err := NewEmailAddress(email, name)
	if err != nil {
		panic(err)
	}
	return addr
}

// Email returns the bare address.
func (a EmailAddress) Email() string { return a.email }

// Name returns the display name, which may be empty.
func (a EmailAddress) Name() string { return a.name }

// IsZero reports whether the address was never constructed.
func (a EmailAddress) IsZero() bool { return a.email == "" }

// String renders the display form: "name <email>" when a name is
// present, otherwise the bare address.
func (a EmailAddress) String() string {
	if a.name == "" {
		return a.email
	}
	return fmt.Sprintf("%s <%s>", a.name, a.email)
}

// Company describes the sending organization. Every message embeds it
// read-only into the template data.
type Company struct {
	Name         string
	Address      string
	Website      string
	SupportEmail EmailAddress
	SocialMedia  map[string]string
	LogoURL      string
}

func (c Company) templateData() map[string]any {
	social := maps.Clone(c.SocialMedia)
	if social == nil {
		social = map[string]string{}
	}
	return map[string]any{
		"name":          c.Name,
		"address":       c.Address,
		"website":       c.Website,
		"support_email": c.SupportEmail.String(),
		"social_media":  social,
		"logo_url":      c.LogoURL,
	}
}
