package whatsapp_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/whatsapp"
)

func TestParseInbound(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		ok      bool
		typ     string
		body    string
		caption string
		mediaID string
		pdf     bool
	}{
		{
			name: "text",
			raw:  `{"entry":[{"changes":[{"value":{"messages":[{"from":"593991234567","type":"text","text":{"body":"  hola "}}]}}]}]}`,
			ok:   true, typ: "text", body: "hola",
		},
		{
			name: "button",
			raw:  `{"entry":[{"changes":[{"value":{"messages":[{"from":"5939","type":"interactive","interactive":{"type":"button_reply","button_reply":{"id":"opcion_1","title":"Registrar"}}}]}}]}]}`,
			ok:   true, typ: "interactive", body: "opcion_1",
		},
		{
			name: "image with caption",
			raw:  `{"entry":[{"changes":[{"value":{"messages":[{"from":"5939","type":"image","image":{"id":"m1","mime_type":"image/jpeg","caption":" /ayuda "}}]}}]}]}`,
			ok:   true, typ: "image", caption: "/ayuda", mediaID: "m1",
		},
		{
			name: "pdf document",
			raw:  `{"entry":[{"changes":[{"value":{"messages":[{"from":"5939","type":"document","document":{"id":"d1","filename":"Pago.PDF"}}]}}]}]}`,
			ok:   true, typ: "document", mediaID: "d1", pdf: true,
		},
		{
			name: "status callback",
			raw:  `{"entry":[{"changes":[{"value":{"statuses":[{"id":"x"}]}}]}]}`,
		},
		{name: "garbage", raw: `not json`},
		{name: "empty", raw: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := whatsapp.ParseInbound([]byte(tt.raw))
			if ok != tt.ok {
				t.Fatalf("ok got=%v want=%v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if msg.Type != tt.typ || msg.Body != tt.body || msg.Caption != tt.caption || msg.MediaID != tt.mediaID || msg.IsPDF() != tt.pdf {
				t.Fatalf("message got=%+v", msg)
			}
		})
	}
}

type recorded struct {
	path string
	auth string
	body map[string]any
}

func newGraphServer(t *testing.T) (*httptest.Server, *[]recorded, *sync.Mutex) {
	t.Helper()
	var mu sync.Mutex
	var calls []recorded
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{path: r.URL.Path, auth: r.Header.Get("Authorization")}
		if r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()

		switch {
		case r.URL.Path == "/v19.0/media-1/":
			_, _ = io.WriteString(w, `{"url":"`+srv.URL+`/files/media-1","mime_type":"image/png"}`)
		case r.URL.Path == "/v19.0/media-2/":
			_, _ = io.WriteString(w, `{}`)
		case r.URL.Path == "/files/media-1":
			_, _ = io.WriteString(w, "PNGDATA")
		case strings.HasSuffix(r.URL.Path, "/messages"):
			if rec.body["to"] == "fail" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"error":{"message":"bad"}}`)
				return
			}
			_, _ = io.WriteString(w, `{"messages":[{"id":"wamid"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, &mu
}

func TestClientSendButtons(t *testing.T) {
	srv, calls, _ := newGraphServer(t)
	c := whatsapp.NewClient(srv.URL, "v19.0", "PNID", "tok")

	buttons := []whatsapp.Button{
		{ID: "a", Title: "Uno"},
		{ID: "b", Title: "Un título demasiado largo para whatsapp"},
		{ID: "c", Title: "Tres"},
		{ID: "d", Title: "Cuatro"},
	}
	if err := c.SendButtons(context.Background(), "5939", "¿Qué deseas?", buttons); err != nil {
		t.Fatalf("SendButtons error: %v", err)
	}

	got := (*calls)[0]
	if got.path != "/v19.0/PNID/messages" || got.auth != "Bearer tok" {
		t.Fatalf("request got path=%s auth=%s", got.path, got.auth)
	}
	inter := got.body["interactive"].(map[string]any)
	btns := inter["action"].(map[string]any)["buttons"].([]any)
	if len(btns) != 3 {
		t.Fatalf("buttons got=%d want=3", len(btns))
	}
	title := btns[1].(map[string]any)["reply"].(map[string]any)["title"].(string)
	if len([]rune(title)) != whatsapp.MaxButtonTitle {
		t.Fatalf("title got=%q want %d runes", title, whatsapp.MaxButtonTitle)
	}
}

func TestClientSendTextAndErrors(t *testing.T) {
	srv, calls, _ := newGraphServer(t)
	c := whatsapp.NewClient(srv.URL+"/", "v19.0", "PNID", "tok")

	if err := c.SendText(context.Background(), "5939", "hola"); err != nil {
		t.Fatalf("SendText error: %v", err)
	}
	if (*calls)[0].body["type"] != "text" {
		t.Fatalf("type got=%v", (*calls)[0].body["type"])
	}
	if err := c.SendTyping(context.Background(), "5939"); err != nil {
		t.Fatalf("SendTyping error: %v", err)
	}
	if (*calls)[1].body["type"] != "sender_action" {
		t.Fatalf("typing type got=%v", (*calls)[1].body["type"])
	}
	if err := c.SendText(context.Background(), "fail", "x"); err == nil {
		t.Fatalf("expected error for rejected message")
	}
}

func TestClientDownloadMedia(t *testing.T) {
	srv, _, _ := newGraphServer(t)
	c := whatsapp.NewClient(srv.URL, "v19.0", "PNID", "tok")

	data, mime, err := c.DownloadMedia(context.Background(), "media-1")
	if err != nil || string(data) != "PNGDATA" || mime != "image/png" {
		t.Fatalf("download got=%q,%q,%v", data, mime, err)
	}
	if _, _, err := c.DownloadMedia(context.Background(), "media-2"); err != whatsapp.ErrNoMediaURL {
		t.Fatalf("missing url got=%v want ErrNoMediaURL", err)
	}
	if _, _, err := c.DownloadMedia(context.Background(), "media-3"); err == nil {
		t.Fatalf("expected error for unknown media")
	}
}

func TestIsTimeout(t *testing.T) {
	if !whatsapp.IsTimeout(context.DeadlineExceeded) {
		t.Fatalf("deadline should be a timeout")
	}
	if whatsapp.IsTimeout(io.EOF) {
		t.Fatalf("EOF is not a timeout")
	}
}
