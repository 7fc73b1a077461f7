// bot.go - Message handling: global interrupts and step dispatch

package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/ai"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/classifier"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/extractor"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/ledger"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/matcher"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/whatsapp"
)

// Messenger is the outbound side of the WhatsApp channel
type Messenger interface {
	SendText(ctx context.Context, to, text string) error
	SendButtons(ctx context.Context, to, text string, buttons []whatsapp.Button) error
	SendTyping(ctx context.Context, to string) error
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error)
}

// PaymentLedger records payments; *ledger.Ledger implements it
type PaymentLedger interface {
	RecordPayment(ctx context.Context, name, id, amount, date, document, bank, imageRef, hash string) bool
	ExistingHashes(ctx context.Context) map[string]struct{}
}

// ReceiptArchive keeps a copy of each receipt and returns its reference
type ReceiptArchive interface {
	Store(ctx context.Context, userID string, data []byte, contentType string) (string, error)
}

// RateLimiter decides whether a user may send another message
type RateLimiter interface {
	Allow(ctx context.Context, userID string) bool
}

// Deps are the collaborators of the bot. Transcriber, Archive, Limiter and
// Debts are optional.
type Deps struct {
	Messenger   Messenger
	States      *StateStore
	Matcher     *matcher.Matcher
	Classifier  *classifier.Classifier
	Extractor   *extractor.Extractor
	Ledger      PaymentLedger
	OCR         ai.OCRProvider
	Notifier    *Notifier
	Transcriber ai.Transcriber
	Archive     ReceiptArchive
	Limiter     RateLimiter
	Debts       *ledger.DebtBook
}

// Options tune housekeeping and admin behavior
type Options struct {
	AdminIDs          []string
	UploadDir         string
	TempMaxAge        time.Duration
	MaxImageDimension int
}

// restartKeywords clear the conversation when a message starts with them
var restartKeywords = []string{"reset", "hola", "menú", "menu", "inicio"}

// turn carries one inbound message through the handlers
type turn struct {
	rc    *common.RequestContext
	msg   *whatsapp.InboundMessage
	user  string
	text  string // message text, button id, transcription or caption
	state State
}

type stepHandler func(ctx context.Context, t *turn) error

// Bot runs the conversation state machine
type Bot struct {
	Deps
	opts     Options
	handlers map[Step]stepHandler
	now      func() time.Time
}

// New wires a Bot
func New(deps Deps, opts Options) *Bot {
	b := &Bot{Deps: deps, opts: opts, now: time.Now}
	b.handlers = map[Step]stepHandler{
		StepEntry:                        b.handleEntry,
		StepAwaitingInitialAction:        b.handleInitialAction,
		StepAwaitingIDOrName:             b.handleIDOrName,
		StepAwaitingClarification:        b.handleClarification,
		StepAwaitingReceipt:              b.handleAwaitingReceipt,
		StepAwaitingProblemType:          b.handleProblemType,
		StepAwaitingRouterRestartConfirm: b.handleRouterRestartConfirm,
		StepAwaitingRestartResult:        b.handleRestartResult,
		StepAwaitingSupportName:          b.handleSupportName,
		StepAwaitingSupportClarification: b.handleSupportClarification,
		StepAwaitingSupportPhone:         b.handleSupportPhone,
		StepAwaitingSupportDescription:   b.handleSupportDescription,
		StepHumanTakeover:                b.handleHumanTakeover,
		StepAwaitingIDForFile:            b.handleIDForFile,
		StepAwaitingClarificationForFile: b.handleClarificationForFile,
	}
	return b
}

// HandleMessage processes one inbound message. Failures are logged and
// answered with the system error text; nothing is returned to the caller.
func (b *Bot) HandleMessage(ctx context.Context, msg *whatsapp.InboundMessage) {
	rc := common.NewRequestContext(msg.From, string(classifyInput(msg)))
	defer rc.Finish()

	defer func() {
		if r := recover(); r != nil {
			rc.Logger().Error("panic while handling message", zap.Any("panic", r), zap.Stack("stack"))
			b.reply(ctx, rc, msg.From, Errors.SystemError())
		}
	}()

	if err := b.handle(ctx, rc, msg); err != nil {
		rc.Logger().Error("failed to handle message", zap.Error(err))
		b.reply(ctx, rc, msg.From, Errors.SystemError())
	}
}

func (b *Bot) handle(ctx context.Context, rc *common.RequestContext, msg *whatsapp.InboundMessage) error {
	user := msg.From

	if b.Limiter != nil && !b.Limiter.Allow(ctx, user) {
		rc.LogWarning("rate limit exceeded")
		b.reply(ctx, rc, user, Errors.RateLimitExceeded())
		return nil
	}

	if err := b.Messenger.SendTyping(ctx, user); err != nil {
		rc.Logger().Debug("typing indicator failed", zap.Error(err))
	}

	t := &turn{rc: rc, msg: msg, user: user, text: msg.Body}
	if t.text == "" {
		t.text = msg.Caption
	}

	if msg.Type == whatsapp.TypeAudio {
		text, ok := b.transcribe(ctx, t)
		if !ok {
			return nil
		}
		t.text = text
	}

	if strings.HasPrefix(t.text, "/") {
		handled, err := b.handleCommand(ctx, t)
		if handled || err != nil {
			return err
		}
	}

	rc.StartStep("load_state")
	st, err := b.States.Load(ctx, user)
	if err != nil && !errors.Is(err, ErrInvalidState) {
		rc.EndStep("failed", err)
		return fmt.Errorf("failed to load state: %w", err)
	}
	rc.EndStep("success", nil)
	t.state = st

	check := strings.ToLower(strings.TrimSpace(t.text))
	if check == BtnFinish {
		if err := b.States.Clear(ctx, user); err != nil {
			return err
		}
		b.replyButtons(ctx, rc, user, msgFarewell, mainMenuButtons)
		return nil
	}

	for _, kw := range restartKeywords {
		if strings.HasPrefix(check, kw) {
			if err := b.States.Clear(ctx, user); err != nil {
				return err
			}
			t.state = State{}
			break
		}
	}

	if t.state.Step == StepHumanTakeover {
		rc.LogInfo("message absorbed during human takeover")
		return nil
	}

	if isUnsolicitedReceipt(msg, t.state) {
		next := State{
			Step:    StepAwaitingIDForFile,
			Payload: Payload{MediaID: msg.MediaID, IsPDF: msg.IsPDF()},
		}
		if err := b.transition(ctx, t, next); err != nil {
			return err
		}
		b.reply(ctx, rc, user, msgReceiptFirst)
		return nil
	}

	handler, ok := b.handlers[t.state.Step]
	if !ok {
		handler = b.handleEntry
	}
	rc.Logger().Debug("dispatching", zap.String("step", stepName(t.state.Step)))
	return handler(ctx, t)
}

// isUnsolicitedReceipt is true for a captionless image or a PDF that arrives
// while the user is not in a step that expects one
func isUnsolicitedReceipt(msg *whatsapp.InboundMessage, st State) bool {
	file := (msg.Type == whatsapp.TypeImage && msg.Caption == "") || msg.IsPDF()
	if !file || msg.MediaID == "" {
		return false
	}
	return !receiptSteps[st.Step] && st.Payload.ClientID == ""
}

// transcribe downloads and transcribes an audio message. ok is false when a
// failure notice was already sent.
func (b *Bot) transcribe(ctx context.Context, t *turn) (string, bool) {
	b.reply(ctx, t.rc, t.user, msgAudioReceived)

	fail := func(reason string, err error) (string, bool) {
		t.rc.EndStep("failed", err)
		b.reply(ctx, t.rc, t.user, fmt.Sprintf(msgAudioFailed, reason))
		return "", false
	}

	t.rc.StartStep("transcribe_audio")
	if b.Transcriber == nil {
		return fail("transcripción no disponible", errors.New("no transcriber configured"))
	}
	audio, _, err := b.Messenger.DownloadMedia(ctx, t.msg.MediaID)
	if err != nil {
		return fail("no se pudo descargar el audio", err)
	}

	var hints []string
	if b.Matcher != nil {
		if hints, err = b.Matcher.PhraseHints(ctx); err != nil {
			t.rc.Logger().Warn("phrase hints unavailable", zap.Error(err))
		}
	}

	filename := t.msg.Filename
	if filename == "" {
		filename = "audio.ogg"
	}
	text, err := b.Transcriber.Transcribe(ctx, audio, filename, hints)
	if err != nil {
		return fail("no se pudo transcribir", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fail("audio sin voz reconocible", errors.New("empty transcription"))
	}
	t.rc.EndStep("success", nil)
	t.rc.LogInfo("audio transcribed: %q", text)
	return text, true
}

// transition persists next after checking it against the table. The entry
// state is stored by clearing.
func (b *Bot) transition(ctx context.Context, t *turn, next State) error {
	if !IsAllowed(t.state.Step, next.Step) {
		t.rc.Logger().Warn("unlisted step transition",
			zap.String("from", stepName(t.state.Step)),
			zap.String("to", stepName(next.Step)))
	}
	var err error
	if next.IsZero() {
		err = b.States.Clear(ctx, t.user)
	} else {
		err = b.States.Save(ctx, t.user, next)
	}
	if err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	t.state = next
	return nil
}

func (b *Bot) reply(ctx context.Context, rc *common.RequestContext, to, text string) {
	if err := b.Messenger.SendText(ctx, to, text); err != nil {
		rc.Logger().Error("failed to send reply", zap.Error(err))
	}
}

func (b *Bot) replyButtons(ctx context.Context, rc *common.RequestContext, to, text string, buttons []whatsapp.Button) {
	if err := b.Messenger.SendButtons(ctx, to, text, buttons); err != nil {
		rc.Logger().Error("failed to send buttons", zap.Error(err))
	}
}

// classifyInput maps a message to its transition input class
func classifyInput(msg *whatsapp.InboundMessage) InputClass {
	switch {
	case msg.Type == whatsapp.TypeInteractive:
		return InputButton
	case msg.Type == whatsapp.TypeText:
		return InputText
	case msg.Type == whatsapp.TypeImage:
		return InputImage
	case msg.IsPDF():
		return InputPDF
	case msg.Type == whatsapp.TypeAudio:
		return InputAudio
	default:
		return InputOther
	}
}

func stepName(s Step) string {
	if s == StepEntry {
		return "entry"
	}
	return string(s)
}
