package mailer

import "context"

// Email is a fully prepared provider payload. Addresses are in
// display form ("Name <email>" or bare address).
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
	CC      []string
	BCC     []string
}

// Receipt is the provider's acknowledgement of an accepted message.
type Receipt struct {
	ID string
}

// Sender delivers a prepared Email through an email provider.
type Sender interface {
	// Send delivers the email and returns the provider receipt.
	// Transport failures are surfaced unmodified.
	Send(ctx context.Context, email *Email) (*Receipt, error)
}
