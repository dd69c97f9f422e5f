package api

import (
	"fmt"

	"github.com/mailroom/mailroom/pkg/mailer"
)

type addressRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (r addressRequest) toAddress() (mailer.EmailAddress, error) {
	return mailer.NewEmailAddress(r.Email, r.Name)
}

func toAddresses(reqs []addressRequest) ([]mailer.EmailAddress, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	out := make([]mailer.EmailAddress, 0, len(reqs))
	for _, r := range reqs {
		addr, err := r.toAddress()
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

type companyRequest struct {
	Name         string            `json:"name"`
	Address      string            `json:"address,omitempty"`
	Website      string            `json:"website,omitempty"`
	SupportEmail string            `json:"support_email,omitempty"`
	SupportName  string            `json:"support_name,omitempty"`
	SocialMedia  map[string]string `json:"social_media,omitempty"`
	LogoURL      string            `json:"logo_url,omitempty"`
}

func (r *companyRequest) toCompany() (mailer.Company, error) {
	if r.Name == "" {
		return mailer.Company{}, fmt.Errorf("%w: company name is required", mailer.ErrValidation)
	}
	company := mailer.Company{
		Name:        r.Name,
		Address:     r.Address,
		Website:     r.Website,
		SocialMedia: r.SocialMedia,
		LogoURL:     r.LogoURL,
	}
	if r.SupportEmail != "" {
		support, err := mailer.NewEmailAddress(r.SupportEmail, r.SupportName)
		if err != nil {
			return mailer.Company{}, err
		}
		company.SupportEmail = support
	}
	return company, nil
}

// sendOptions are the delivery fields shared by every non-batch request.
type sendOptions struct {
	Company     *companyRequest  `json:"company,omitempty"`
	To          []addressRequest `json:"to"`
	Subject     string           `json:"subject,omitempty"`
	Personalize bool             `json:"personalize,omitempty"`
	CC          []addressRequest `json:"cc,omitempty"`
	BCC         []addressRequest `json:"bcc,omitempty"`
}

func (o sendOptions) params() (mailer.SendParams, error) {
	to, err := toAddresses(o.To)
	if err != nil {
		return mailer.SendParams{}, err
	}
	cc, err := toAddresses(o.CC)
	if err != nil {
		return mailer.SendParams{}, err
	}
	bcc, err := toAddresses(o.BCC)
	if err != nil {
		return mailer.SendParams{}, err
	}
	return mailer.SendParams{To: to, Subject: o.Subject, CC: cc, BCC: bcc}, nil
}

// primary returns the address messages are built around: the first
// recipient. Personalized sends substitute the rest per recipient.
func primary(to []mailer.EmailAddress) mailer.EmailAddress {
	if len(to) == 0 {
		return mailer.EmailAddress{}
	}
	return to[0]
}

type welcomeRequest struct {
	sendOptions
	DashboardURL string `json:"dashboard_url"`
}

type passwordResetRequest struct {
	sendOptions
	ResetURL  string `json:"reset_url"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

type notificationPayload struct {
	Title          string `json:"title"`
	Message        string `json:"message"`
	Type           string `json:"type,omitempty"`
	Icon           string `json:"icon,omitempty"`
	ActionURL      string `json:"action_url,omitempty"`
	ActionText     string `json:"action_text,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

func (p notificationPayload) toContent() mailer.NotificationContent {
	return mailer.NotificationContent{
		Title:          p.Title,
		Message:        p.Message,
		Type:           p.Type,
		Icon:           p.Icon,
		ActionURL:      p.ActionURL,
		ActionText:     p.ActionText,
		AdditionalInfo: p.AdditionalInfo,
	}
}

type notificationRequest struct {
	sendOptions
	Notification   notificationPayload `json:"notification"`
	PreferencesURL string              `json:"preferences_url,omitempty"`
}

type alertPayload struct {
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Type       string   `json:"type,omitempty"`
	Steps      []string `json:"steps,omitempty"`
	ActionURL  string   `json:"action_url,omitempty"`
	ActionText string   `json:"action_text,omitempty"`
	// ContactSupport defaults to true when omitted.
	ContactSupport *bool `json:"contact_support,omitempty"`
}

func (p alertPayload) toContent() mailer.AlertContent {
	contactSupport := true
	if p.ContactSupport != nil {
		contactSupport = *p.ContactSupport
	}
	return mailer.AlertContent{
		Title:          p.Title,
		Message:        p.Message,
		Type:           p.Type,
		Steps:          p.Steps,
		ActionURL:      p.ActionURL,
		ActionText:     p.ActionText,
		ContactSupport: contactSupport,
	}
}

type alertRequest struct {
	sendOptions
	Alert alertPayload `json:"alert"`
}

type orderItemRequest struct {
	Name     string  `json:"name"`
	SKU      string  `json:"sku,omitempty"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type orderRequest struct {
	sendOptions
	Order struct {
		Number           string             `json:"number"`
		Items            []orderItemRequest `json:"items"`
		ShippingAddress  string             `json:"shipping_address"`
		DeliveryEstimate string             `json:"delivery_estimate,omitempty"`
	} `json:"order"`
}

func (r orderRequest) toOrder() mailer.Order {
	items := make([]mailer.OrderItem, 0, len(r.Order.Items))
	for _, item := range r.Order.Items {
		items = append(items, mailer.OrderItem{
			Name:     item.Name,
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return mailer.Order{
		Number:           r.Order.Number,
		Items:            items,
		ShippingAddress:  r.Order.ShippingAddress,
		DeliveryEstimate: r.Order.DeliveryEstimate,
	}
}

type batchRequest struct {
	EmailType  string             `json:"email_type"`
	Company    *companyRequest    `json:"company,omitempty"`
	Recipients []mailer.Recipient `json:"recipients"`
	Subject    string             `json:"subject,omitempty"`

	DashboardURL   string               `json:"dashboard_url,omitempty"`
	ResetURL       string               `json:"reset_url,omitempty"`
	ExpiresIn      int                  `json:"expires_in,omitempty"`
	Notification   *notificationPayload `json:"notification,omitempty"`
	PreferencesURL string               `json:"preferences_url,omitempty"`
	Alert          *alertPayload        `json:"alert,omitempty"`
}

// primaryRecipient returns the first well-formed batch recipient; the
// message is built around it and personalized per recipient afterwards.
func (r batchRequest) primaryRecipient() mailer.EmailAddress {
	for _, rcpt := range r.Recipients {
		if rcpt.Email == "" {
			continue
		}
		if addr, err := mailer.NewEmailAddress(rcpt.Email, rcpt.Name); err == nil {
			return addr
		}
	}
	return mailer.EmailAddress{}
}
