package mailer

import (
	"log/slog"

	"github.com/vanng822/go-premailer/premailer"
)

// Inliner rewrites CSS rules from <style> blocks into inline style
// attributes for email-client compatibility. It is best-effort: any
// transform failure degrades to the original HTML, so a styling
// defect never blocks delivery.
type Inliner struct {
	log       *slog.Logger
	transform func(string) (string, error)
}

// NewInliner creates an Inliner logging warnings through log.
func NewInliner(log *slog.Logger) *Inliner {
	if log == nil {
		log = slog.Default()
	}
	return &Inliner{log: log, transform: inlineStyles}
}

// Inline returns html with styles inlined, or html unchanged when the
// transform fails.
func (i *Inliner) Inline(html string) string {
	out, err := i.transform(html)
	if err != nil {
		i.log.Warn("style inlining failed, falling back to original HTML",
			slog.String("error", err.Error()))
		return html
	}
	return out
}

func inlineStyles(html string) (string, error) {
	opts := premailer.NewOptions()
	opts.RemoveClasses = false
	opts.KeepBangImportant = true

	p, err := premailer.NewPremailerFromString(html, opts)
	if err != nil {
		return "", err
	}
	return p.Transform()
}
