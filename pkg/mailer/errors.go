package mailer

import "errors"

var (
	// ErrValidation indicates a message is missing required fields or
	// carries malformed values. It is always fatal for the whole call.
	ErrValidation = errors.New("invalid email message")

	// ErrInvalidAddress indicates an address failed the email grammar check.
	ErrInvalidAddress = errors.New("invalid email address")

	// ErrNoRecipients indicates no recipient was specified.
	ErrNoRecipients = errors.New("email must have at least one recipient")

	// ErrTemplateNotFound indicates the named template file does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrRenderFailed indicates template rendering failed.
	ErrRenderFailed = errors.New("failed to render template")

	// ErrSendFailed indicates email delivery failed.
	ErrSendFailed = errors.New("failed to send email")

	// ErrConfiguration indicates the service was constructed with
	// incomplete configuration, e.g. a missing provider API key.
	ErrConfiguration = errors.New("email service misconfigured")
)
