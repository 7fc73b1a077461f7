package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/api"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/whatsapp"
)

const testSecret = "test-secret"

type recordingBot struct {
	mu       sync.Mutex
	messages []*whatsapp.InboundMessage
}

func (b *recordingBot) HandleMessage(_ context.Context, msg *whatsapp.InboundMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
}

type staticPayments []models.LedgerEntry

func (p staticPayments) Entries(context.Context) ([]models.LedgerEntry, error) {
	return p, nil
}

func newTestServer(t *testing.T, bot *recordingBot, payments staticPayments) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := api.NewServer(bot, payments, api.Config{
		VerifyToken: "verify-me",
		JWTSecret:   testSecret,
		UploadDir:   t.TempDir(),
		TempMaxAge:  24 * time.Hour,
	})
	return srv.Router()
}

func do(h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestVerifyWebhook(t *testing.T) {
	h := newTestServer(t, &recordingBot{}, nil)

	rec := do(h, http.MethodGet, "/whatsapp?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "12345" {
		t.Fatalf("verify got=%d %q want=200 12345", rec.Code, rec.Body.String())
	}

	rec = do(h, http.MethodGet, "/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", "", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bad token status got=%d want=403", rec.Code)
	}
}

func TestWebhookAlwaysAcknowledges(t *testing.T) {
	bot := &recordingBot{}
	h := newTestServer(t, bot, nil)

	payload := `{"entry":[{"changes":[{"value":{"messages":[{"from":"593991234567","type":"text","text":{"body":"hola"}}]}}]}]}`
	if rec := do(h, http.MethodPost, "/whatsapp", payload, ""); rec.Code != http.StatusOK {
		t.Fatalf("message status got=%d want=200", rec.Code)
	}
	if len(bot.messages) != 1 || bot.messages[0].From != "593991234567" || bot.messages[0].Body != "hola" {
		t.Fatalf("bot messages got=%+v", bot.messages)
	}

	for _, body := range []string{`not json`, `{"entry":[{"changes":[{"value":{"statuses":[{"id":"x"}]}}]}]}`} {
		if rec := do(h, http.MethodPost, "/whatsapp", body, ""); rec.Code != http.StatusOK {
			t.Fatalf("status for %q got=%d want=200", body, rec.Code)
		}
	}
	if len(bot.messages) != 1 {
		t.Fatalf("bot messages got=%d want=1", len(bot.messages))
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &recordingBot{}, nil)
	rec := do(h, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), api.ServiceName) {
		t.Fatalf("health got=%d %s", rec.Code, rec.Body.String())
	}
}

func TestAdminPayments(t *testing.T) {
	payments := staticPayments{
		{ClientName: "PEREZ JUAN", ClientID: "0102030405", Amount: "25.50", Hash: "a"},
		{ClientName: "VERA ANA", ClientID: "0911111111", Amount: "10.00", Hash: "b"},
		{ClientName: "LOPEZ LUIS", ClientID: "0922222222", Amount: "30.00", Hash: "c"},
	}
	h := newTestServer(t, &recordingBot{}, payments)

	if rec := do(h, http.MethodGet, "/api/v1/admin/payments", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status got=%d want=401", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/v1/admin/payments", "", "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status got=%d want=401", rec.Code)
	}
	expired, err := api.IssueToken("admin", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if rec := do(h, http.MethodGet, "/api/v1/admin/payments", "", expired); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token status got=%d want=401", rec.Code)
	}
	foreign, _ := api.IssueToken("admin", "other-secret", time.Hour)
	if rec := do(h, http.MethodGet, "/api/v1/admin/payments", "", foreign); rec.Code != http.StatusUnauthorized {
		t.Fatalf("foreign token status got=%d want=401", rec.Code)
	}

	token, _ := api.IssueToken("admin", testSecret, time.Hour)
	rec := do(h, http.MethodGet, "/api/v1/admin/payments?limit=2", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status got=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Total    int                  `json:"total"`
		Count    int                  `json:"count"`
		Payments []models.LedgerEntry `json:"payments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 3 || resp.Count != 2 || resp.Payments[0].Hash != "b" {
		t.Fatalf("response got=%+v", resp)
	}

	if rec := do(h, http.MethodGet, "/api/v1/admin/payments?limit=abc", "", token); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit status got=%d want=400", rec.Code)
	}
}

func TestAdminCleanup(t *testing.T) {
	h := newTestServer(t, &recordingBot{}, nil)
	token, _ := api.IssueToken("admin", testSecret, time.Hour)

	rec := do(h, http.MethodPost, "/api/v1/admin/cleanup", "", token)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"removed":0`) {
		t.Fatalf("cleanup got=%d %s", rec.Code, rec.Body.String())
	}
}

func TestAdminDisabledWithoutSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := api.NewServer(&recordingBot{}, staticPayments{}, api.Config{}).Router()
	token, _ := api.IssueToken("admin", "some-secret", time.Hour)
	if rec := do(h, http.MethodGet, "/api/v1/admin/payments", "", token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status got=%d want=401", rec.Code)
	}
}
