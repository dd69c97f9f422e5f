package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/mailroom/mailroom/pkg/mailer"
)

var templateFixtures = fstest.MapFS{
	"welcome.html": &fstest.MapFile{
		Data: []byte(`<h1>Welcome {{.user.name}} to {{.company.name}}</h1><a href="{{.dashboard_url}}">Go</a>`),
	},
	"password_reset.html": &fstest.MapFile{
		Data: []byte(`<a href="{{.reset_url}}">Reset</a> ({{.expires_in}}h)`),
	},
	"notification.html": &fstest.MapFile{
		Data: []byte(`<h1>{{.notification.title}}</h1><p>{{.notification.message}}</p>`),
	},
	"alert.html": &fstest.MapFile{
		Data: []byte(`<h1>{{.alert.title}}</h1>{{if .alert.contact_support}}<p>support</p>{{end}}`),
	},
	"order_confirmation.html": &fstest.MapFile{
		Data: []byte(`<h1>Order {{.order_info.number}}</h1><p>{{.order_info.total}}</p>`),
	},
}

func newTestServer(t *testing.T, company *mailer.Company, apiKey string) *httptest.Server {
	t.Helper()

	log := slog.New(slog.DiscardHandler)
	svc, err := mailer.NewService(nil, mailer.NewRenderer(templateFixtures), nil, mailer.Config{
		FromEmail: "no-reply@acme.test",
		FromName:  "Acme",
		Testing:   true,
	}, log)
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(NewHandler(svc, company, log), apiKey, log))
	t.Cleanup(srv.Close)
	return srv
}

var defaultCompany = &mailer.Company{
	Name:         "Acme",
	Address:      "1 Acme Way",
	Website:      "https://acme.test",
	SupportEmail: mailer.MustEmailAddress("support@acme.test", ""),
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, defaultCompany, "")
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSendWelcome(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, defaultCompany, "")
	resp, body := postJSON(t, srv.URL+"/emails/welcome", map[string]any{
		"to":            []map[string]string{{"email": "jane@example.com", "name": "Jane"}},
		"dashboard_url": "https://acme.test/dashboard",
	}, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "sent", body["status"])
	// Testing mode produces no provider message id.
	require.NotContains(t, body, "message_id")
}

func TestSendWelcome_ValidationErrors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, defaultCompany, "")

	t.Run("missing dashboard url", func(t *testing.T) {
		t.Parallel()
		resp, body := postJSON(t, srv.URL+"/emails/welcome", map[string]any{
			"to": []map[string]string{{"email": "jane@example.com"}},
		}, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "error", body["status"])
	})

	t.Run("no recipients", func(t *testing.T) {
		t.Parallel()
		resp, _ := postJSON(t, srv.URL+"/emails/welcome", map[string]any{
			"dashboard_url": "https://acme.test/dashboard",
		}, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid recipient address", func(t *testing.T) {
		t.Parallel()
		resp, _ := postJSON(t, srv.URL+"/emails/welcome", map[string]any{
			"to":            []map[string]string{{"email": "nope"}},
			"dashboard_url": "https://acme.test/dashboard",
		}, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/emails/welcome", bytes.NewReader([]byte("{not json")))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSendWelcome_Personalized(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, defaultCompany, "")
	resp, body := postJSON(t, srv.URL+"/emails/welcome", map[string]any{
		"to": []map[string]string{
			{"email": "alice@example.com", "name": "Alice"},
			{"email": "bob@example.com", "name": "Bob"},
		},
		"dashboard_url": "https://acme.test/dashboard",
		"personalize":   true,
	}, nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "sent", body["status"])
	require.EqualValues(t, 2, body["sent"])
	require.EqualValues(t, 0, body["failed"])
	require.EqualValues(t, 2, body["total"])
}

func TestSendWelcome_CompanyOverride(t *testing.T) {
	t.Parallel()

	// No default company configured: the request must bring its own.
	srv := newTestServer(t, nil, "")

	resp, _ := postJSON(t, srv.URL+"/emails/welcome", map[string]any{
		"company":       map[string]any{"name": "Globex"},
		"to":            []map[string]string{{"email": "jane@example.com"}},
		"dashboard_url": "https://globex.test/dashboard",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Without either, the request is rejected.
	resp, _ = postJSON(t, srv.URL+"/emails/welcome", map[string]any{
		"to":            []map[string]string{{"email": "jane@example.com"}},
		"dashboard_url": "https://globex.test/dashboard",
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendPasswordReset(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, defaultCompany, "")

	t.Run("defaults expiry", func(t *testing.T) {
		t.Parallel()
		resp, body := postJSON(t, srv.URL+"/emails/password-reset", map[string]any{
			"to":        []map[string]string{{"email": "jane@example.com"}},
			"reset_url": "https://acme.test/reset?t=abc",
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "sent", body["status"])
	})

	t.Run("missing reset url", func(t *testing.T) {
		t.Parallel()
		resp, _ := postJSON(t, srv.URL+"/emails/password-reset", map[string]any{
			"to": []map[string]string{{"email": "jane@example.com"}},
		}, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("negative expiry rejected", func(t *testing.T) {
		t.Parallel()
		resp, _ := postJSON(t, srv.URL+"/emails/password-reset", map[string]any{
			"to":         []map[string]string{{"email": "jane@example.com"}},
			"reset_url":  "https://acme.test/reset",
			"expires_in": -5,
		}, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSendNotification(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, defaultCompany, "")

	resp, body := postJSON(t, srv.URL+"/emails/notification", map[string]any{
		"to": []map[string]string{{"email": "jane@example.com"}},
		"notification": map[string]any{
			"title":   "Invoice ready",
			"message": "Your invoice is ready.",
			"type":    "success",
		},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "sent", body["status"])

	resp, _ = postJSON(t, srv.URL+"/emails/notification", map[string]any{
		"to": []map[string]string{{"email": "jane@example.com"}},
		"notification": map[string]any{
			"title":   "Invoice ready",
			"message": "Your invoice is ready.",
			"type":    "urgent",
		},
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendAlert(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, defaultCompany, "")
	resp, body := postJSON(t, srv.URL+"/emails/alert", map[string]any{
		"to": []map[string]string{{"email": "jane@example.com"}},
		"alert": map[string]any{
			"title":   "Unusual sign-in",
			"message": "New device detected.",
			"type":    "warning",
			"steps":   []string{"Check devices"},
		},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "sent", body["status"])
}

func TestSendOrderConfirmation(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, defaultCompany, "")

	resp, body := postJSON(t, srv.URL+"/emails/order-confirmation", map[string]any{
		"to": []map[string]string{{"email": "jane@example.com", "name": "Jane"}},
		"order": map[string]any{
			"number":           "ORD-1001",
			"items":            []map[string]any{{"name": "Widget", "quantity": 2, "price": 9.99}},
			"shipping_address": "1 Main St",
		},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "sent", body["status"])

	resp, _ = postJSON(t, srv.URL+"/emails/order-confirmation", map[string]any{
		"to": []map[string]string{{"email": "jane@example.com"}},
		"order": map[string]any{
			"number": "ORD-1002",
		},
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendBatch(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, defaultCompany, "")

	resp, body := postJSON(t, srv.URL+"/emails/batch", map[string]any{
		"email_type":    "welcome",
		"dashboard_url": "https://acme.test/dashboard",
		"recipients": []map[string]string{
			{"email": "alice@example.com", "name": "Alice"},
			{"email": "not-an-email"},
			{"email": ""},
			{"email": "bob@example.com"},
		},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The empty record is skipped, the malformed one counts as failed.
	require.Equal(t, "partial", body["status"])
	require.EqualValues(t, 2, body["sent"])
	require.EqualValues(t, 1, body["failed"])
	require.EqualValues(t, 3, body["total"])
}

func TestSendBatch_UnknownType(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, defaultCompany, "")
	resp, _ := postJSON(t, srv.URL+"/emails/batch", map[string]any{
		"email_type": "newsletter",
		"recipients": []map[string]string{{"email": "a@example.com"}},
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendBatch_NotificationRequiresPayload(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, defaultCompany, "")
	resp, _ := postJSON(t, srv.URL+"/emails/batch", map[string]any{
		"email_type": "notification",
		"recipients": []map[string]string{{"email": "a@example.com"}},
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIKeyAuth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, defaultCompany, "s3cret")
	payload := map[string]any{
		"to":            []map[string]string{{"email": "jane@example.com"}},
		"dashboard_url": "https://acme.test/dashboard",
	}

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		resp, _ := postJSON(t, srv.URL+"/emails/welcome", payload, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		resp, _ := postJSON(t, srv.URL+"/emails/welcome", payload, map[string]string{"X-API-Key": "nope"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("header key", func(t *testing.T) {
		t.Parallel()
		resp, _ := postJSON(t, srv.URL+"/emails/welcome", payload, map[string]string{"X-API-Key": "s3cret"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bearer token", func(t *testing.T) {
		t.Parallel()
		resp, _ := postJSON(t, srv.URL+"/emails/welcome", payload, map[string]string{"Authorization": "Bearer s3cret"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("health stays open", func(t *testing.T) {
		t.Parallel()
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
