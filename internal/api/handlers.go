package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mailroom/mailroom/pkg/mailer"
)

// Handler serves the email dispatch endpoints.
type Handler struct {
	svc     *mailer.Service
	company *mailer.Company // default identity when requests omit one
	log     *slog.Logger
}

// NewHandler creates the dispatch handler. company may be nil, in
// which case every request must carry its own company block.
func NewHandler(svc *mailer.Service, company *mailer.Company, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, company: company, log: log}
}

// Routes mounts the dispatch endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/emails/welcome", h.sendWelcome)
	r.Post("/emails/password-reset", h.sendPasswordReset)
	r.Post("/emails/notification", h.sendNotification)
	r.Post("/emails/alert", h.sendAlert)
	r.Post("/emails/order-confirmation", h.sendOrderConfirmation)
	r.Post("/emails/batch", h.sendBatch)
}

type sendResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
}

type batchSendResponse struct {
	Status string `json:"status"`
	Sent   int    `json:"sent"`
	Failed int    `json:"failed"`
	Total  int    `json:"total"`
}

func (h *Handler) sendWelcome(w http.ResponseWriter, r *http.Request) {
	var req welcomeRequest
	if !decode(w, r, &req) {
		return
	}
	company, ok := h.resolveCompany(w, req.Company)
	if !ok {
		return
	}
	params, err := req.params()
	if err != nil {
		writeError(w, err)
		return
	}
	if params.Subject == "" {
		params.Subject = fmt.Sprintf("Welcome to %s!", company.Name)
	}

	msg := mailer.NewWelcome(company, primary(params.To), req.DashboardURL)
	h.dispatch(w, r, msg, params, req.Personalize)
}

func (h *Handler) sendPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if !decode(w, r, &req) {
		return
	}
	company, ok := h.resolveCompany(w, req.Company)
	if !ok {
		return
	}
	params, err := req.params()
	if err != nil {
		writeError(w, err)
		return
	}
	if params.Subject == "" {
		params.Subject = "Password reset request"
	}
	expiresIn := req.ExpiresIn
	if expiresIn == 0 {
		expiresIn = mailer.DefaultResetExpiry
	}

	msg := mailer.NewPasswordReset(company, primary(params.To), req.ResetURL, expiresIn)
	h.dispatch(w, r, msg, params, req.Personalize)
}

func (h *Handler) sendNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if !decode(w, r, &req) {
		return
	}
	company, ok := h.resolveCompany(w, req.Company)
	if !ok {
		return
	}
	params, err := req.params()
	if err != nil {
		writeError(w, err)
		return
	}
	if params.Subject == "" {
		params.Subject = req.Notification.Title
	}

	msg := mailer.NewNotification(company, primary(params.To), req.Notification.toContent(), req.PreferencesURL)
	h.dispatch(w, r, msg, params, req.Personalize)
}

func (h *Handler) sendAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if !decode(w, r, &req) {
		return
	}
	company, ok := h.resolveCompany(w, req.Company)
	if !ok {
		return
	}
	params, err := req.params()
	if err != nil {
		writeError(w, err)
		return
	}
	if params.Subject == "" {
		params.Subject = req.Alert.Title
	}

	msg := mailer.NewAlert(company, primary(params.To), req.Alert.toContent())
	h.dispatch(w, r, msg, params, req.Personalize)
}

func (h *Handler) sendOrderConfirmation(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decode(w, r, &req) {
		return
	}
	company, ok := h.resolveCompany(w, req.Company)
	if !ok {
		return
	}
	params, err := req.params()
	if err != nil {
		writeError(w, err)
		return
	}
	if params.Subject == "" {
		params.Subject = fmt.Sprintf("Order confirmation #%s", req.Order.Number)
	}

	msg := mailer.NewOrderConfirmation(company, primary(params.To), req.toOrder())
	h.dispatch(w, r, msg, params, req.Personalize)
}

func (h *Handler) sendBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decode(w, r, &req) {
		return
	}
	company, ok := h.resolveCompany(w, req.Company)
	if !ok {
		return
	}

	msg, subject, err := h.batchMessage(req, company)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Subject != "" {
		subject = req.Subject
	}

	results, err := h.svc.SendBatch(r.Context(), msg, req.Recipients, subject, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(results))
}

// batchMessage builds the message variant named by email_type around
// the first well-formed recipient, with the variant's derived subject.
func (h *Handler) batchMessage(req batchRequest, company mailer.Company) (mailer.Message, string, error) {
	user := req.primaryRecipient()
	switch req.EmailType {
	case "welcome":
		return mailer.NewWelcome(company, user, req.DashboardURL),
			fmt.Sprintf("Welcome to %s!", company.Name), nil
	case "password_reset":
		expiresIn := req.ExpiresIn
		if expiresIn == 0 {
			expiresIn = mailer.DefaultResetExpiry
		}
		return mailer.NewPasswordReset(company, user, req.ResetURL, expiresIn),
			"Password reset request", nil
	case "notification":
		if req.Notification == nil {
			return nil, "", fmt.Errorf("%w: notification payload is required", mailer.ErrValidation)
		}
		return mailer.NewNotification(company, user, req.Notification.toContent(), req.PreferencesURL),
			req.Notification.Title, nil
	case "alert":
		if req.Alert == nil {
			return nil, "", fmt.Errorf("%w: alert payload is required", mailer.ErrValidation)
		}
		return mailer.NewAlert(company, user, req.Alert.toContent()), req.Alert.Title, nil
	default:
		return nil, "", fmt.Errorf("%w: unknown email_type %q", mailer.ErrValidation, req.EmailType)
	}
}

// dispatch runs the shared send path: personalized fan-out when asked
// for, a single rendered message otherwise.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, msg mailer.Message, params mailer.SendParams, personalize bool) {
	if personalize {
		results, err := h.svc.SendPersonalized(r.Context(), msg, params)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summarize(results))
		return
	}

	delivery, err := h.svc.Send(r.Context(), msg, params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sendResponse{Status: "sent", MessageID: delivery.MessageID()})
}

func (h *Handler) resolveCompany(w http.ResponseWriter, override *companyRequest) (mailer.Company, bool) {
	if override != nil {
		company, err := override.toCompany()
		if err != nil {
			writeError(w, err)
			return mailer.Company{}, false
		}
		return company, true
	}
	if h.company == nil {
		writeError(w, fmt.Errorf("%w: no company profile configured and none supplied", mailer.ErrValidation))
		return mailer.Company{}, false
	}
	return *h.company, true
}

func summarize(results []mailer.Delivery) batchSendResponse {
	var failed int
	for _, d := range results {
		if d.Failed() {
			failed++
		}
	}
	status := "sent"
	switch {
	case failed == len(results) && len(results) > 0:
		status = "failed"
	case failed > 0:
		status = "partial"
	}
	return batchSendResponse{
		Status: status,
		Sent:   len(results) - failed,
		Failed: failed,
		Total:  len(results),
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Error: "invalid request body"})
		return false
	}
	return true
}
