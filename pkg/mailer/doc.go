// Package mailer implements a templated transactional-email dispatch
// service: it turns a typed message (welcome, password reset,
// notification, alert, order confirmation) into rendered HTML with
// inlined styles and delivers it through a pluggable provider.
//
// # Architecture
//
//   - Message: the closed set of email kinds, each pairing a template
//     with its data and validation rules
//   - Renderer: executes HTML templates from an fs.FS
//   - Inliner: best-effort CSS-to-inline-style transform
//   - Sender: interface that delivery providers implement
//   - Service: orchestrates validate -> render -> inline -> send
//
// # Usage
//
//	sender, err := resend.New(resend.Config{APIKey: os.Getenv("RESEND_API_KEY")})
//	if err != nil {
//		panic(err)
//	}
//
//	svc, err := mailer.NewService(sender, mailer.NewRenderer(templates.FS), nil, mailer.Config{
//		FromEmail: "no-reply@example.com",
//		FromName:  "Acme",
//	}, slog.Default())
//	if err != nil {
//		panic(err)
//	}
//
//	msg := mailer.NewWelcome(company, user, "https://example.com/dashboard")
//	delivery, err := svc.Send(ctx, msg, mailer.SendParams{
//		To:      []mailer.EmailAddress{user},
//		Subject: "Welcome to Acme!",
//	})
//
// # Failure scoping
//
// Send treats every failure as fatal for the whole call and returns no
// partial receipts. SendPersonalized and SendBatch isolate failures per
// recipient: each slot of the result is either a receipt or an error
// record, and one recipient's failure never aborts the rest. Style
// inlining never fails at all; it degrades to the unstyled HTML with a
// logged warning.
//
// # Testing mode
//
// With Config.Testing set, the provider is never called: every
// Delivery carries the constructed provider params instead of a
// receipt, which makes end-to-end assertions deterministic without
// network access.
package mailer
