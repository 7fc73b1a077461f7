// client.go - WhatsApp Cloud API (Graph API) client

package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
)

const (
	sendTimeout     = 30 * time.Second
	typingTimeout   = 5 * time.Second
	downloadTimeout = 30 * time.Second

	// MaxButtons is the Cloud API limit for reply buttons in one message
	MaxButtons = 3
	// MaxButtonTitle is the Cloud API limit for a reply button title
	MaxButtonTitle = 20
)

// ErrNoMediaURL is returned when the media lookup answered without a download URL
var ErrNoMediaURL = errors.New("media lookup returned no url")

// Button is one quick-reply button
type Button struct {
	ID    string
	Title string
}

// Client sends messages and downloads media through the Graph API
type Client struct {
	baseURL       string
	version       string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
}

// NewClient creates a Graph API client. baseURL is usually https://graph.facebook.com
func NewClient(baseURL, version, phoneNumberID, accessToken string) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		version:       version,
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		httpClient:    &http.Client{},
	}
}

type textBody struct {
	Body string `json:"body"`
}

type replyButton struct {
	Type  string `json:"type"`
	Reply struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"reply"`
}

type interactive struct {
	Type   string   `json:"type"`
	Body   textBody `json:"body"`
	Action struct {
		Buttons []replyButton `json:"buttons"`
	} `json:"action"`
}

type senderAction struct {
	Action string `json:"action"`
}

type outboundMessage struct {
	MessagingProduct string        `json:"messaging_product"`
	To               string        `json:"to"`
	Type             string        `json:"type"`
	Text             *textBody     `json:"text,omitempty"`
	Interactive      *interactive  `json:"interactive,omitempty"`
	SenderAction     *senderAction `json:"sender_action,omitempty"`
}

// SendText sends a plain text message
func (c *Client) SendText(ctx context.Context, to, text string) error {
	return c.send(ctx, sendTimeout, outboundMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &textBody{Body: text},
	})
}

// SendButtons sends text with up to three reply buttons. An empty button
// list degrades to SendText.
func (c *Client) SendButtons(ctx context.Context, to, text string, buttons []Button) error {
	if len(buttons) == 0 {
		return c.SendText(ctx, to, text)
	}
	if len(buttons) > MaxButtons {
		buttons = buttons[:MaxButtons]
	}

	msg := &interactive{Type: "button", Body: textBody{Body: text}}
	for _, b := range buttons {
		var rb replyButton
		rb.Type = "reply"
		rb.Reply.ID = b.ID
		rb.Reply.Title = truncateRunes(b.Title, MaxButtonTitle)
		msg.Action.Buttons = append(msg.Action.Buttons, rb)
	}

	return c.send(ctx, sendTimeout, outboundMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive:      msg,
	})
}

// SendTyping shows the typing indicator to the user
func (c *Client) SendTyping(ctx context.Context, to string) error {
	return c.send(ctx, typingTimeout, outboundMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "sender_action",
		SenderAction:     &senderAction{Action: "typing_on"},
	})
}

func (c *Client) send(ctx context.Context, timeout time.Duration, msg outboundMessage) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.version, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s message: %w", msg.Type, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		common.Logger().Warn("WhatsApp API rejected message",
			zap.String("to", msg.To),
			zap.String("type", msg.Type),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", body))
		return fmt.Errorf("whatsapp API error (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

type mediaInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// DownloadMedia resolves mediaID to its URL and downloads the content.
// It returns the bytes and the MIME type reported by the API.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	var info mediaInfo
	lookup := fmt.Sprintf("%s/%s/%s/", c.baseURL, c.version, mediaID)
	body, err := c.get(ctx, lookup)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up media: %w", err)
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, "", fmt.Errorf("failed to parse media lookup: %w", err)
	}
	if info.URL == "" {
		return nil, "", ErrNoMediaURL
	}

	content, err := c.get(ctx, info.URL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download media: %w", err)
	}
	return content, info.MimeType, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// IsTimeout reports whether err came from a deadline or a network timeout
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
