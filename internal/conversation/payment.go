// payment.go - Menu, client lookup and payment registration steps

package conversation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/extractor"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/matcher"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/whatsapp"
)

func (b *Bot) handleEntry(ctx context.Context, t *turn) error {
	if err := b.transition(ctx, t, State{Step: StepAwaitingInitialAction}); err != nil {
		return err
	}
	b.replyButtons(ctx, t.rc, t.user, msgWelcome, menuButtons)
	return nil
}

func (b *Bot) handleInitialAction(ctx context.Context, t *turn) error {
	switch t.text {
	case BtnRegisterPayment:
		if err := b.transition(ctx, t, State{Step: StepAwaitingIDOrName}); err != nil {
			return err
		}
		b.reply(ctx, t.rc, t.user, msgAskIDOrName)
		return nil

	case BtnPlans:
		return b.handOverPlans(ctx, t, "Cliente seleccionó la opción para consultar planes.", msgPlansSelected)

	case BtnReportProblem:
		if err := b.transition(ctx, t, State{Step: StepAwaitingProblemType}); err != nil {
			return err
		}
		b.replyButtons(ctx, t.rc, t.user, msgAskProblemType, problemTypeButtons)
		return nil
	}

	intent := b.Extractor.DetectIntent(t.text)
	switch {
	case intent.IsTechnical() || intent == extractor.IntentPaymentProblem:
		problem := ProblemTechnical
		if intent == extractor.IntentPaymentProblem {
			problem = ProblemPayment
		}
		next := State{Step: StepAwaitingSupportName, Payload: Payload{ProblemType: problem}}
		if err := b.transition(ctx, t, next); err != nil {
			return err
		}
		b.reply(ctx, t.rc, t.user, fmt.Sprintf(msgIntentDetected, intentLabel(intent)))

	case intent == extractor.IntentPlanInfo:
		desc := fmt.Sprintf("Cliente consultó por planes con el mensaje: '%s'", t.text)
		return b.handOverPlans(ctx, t, desc, msgPlansDetected)

	default:
		b.reply(ctx, t.rc, t.user, msgChooseOption)
	}
	return nil
}

// handOverPlans notifies support about a plans inquiry and parks the user
func (b *Bot) handOverPlans(ctx context.Context, t *turn, description, reply string) error {
	b.Notifier.NotifySupport(ctx, Ticket{
		UserID:      t.user,
		ClientName:  t.state.Payload.ClientName,
		ClientID:    t.state.Payload.ClientID,
		ProblemType: "Consulta de planes",
		Description: description,
	})
	if err := b.transition(ctx, t, State{Step: StepHumanTakeover}); err != nil {
		return err
	}
	b.replyButtons(ctx, t.rc, t.user, reply, backToMenuButtons)
	return nil
}

func intentLabel(i extractor.Intent) string {
	switch i {
	case extractor.IntentNoInternet:
		return "problemas con tu servicio de internet."
	case extractor.IntentNoTV:
		return "problemas con tu señal de TV."
	case extractor.IntentPaymentProblem:
		return "un inconveniente con tu pago."
	default:
		return "un problema con tu servicio."
	}
}

func (b *Bot) handleIDOrName(ctx context.Context, t *turn) error {
	query := strings.TrimSpace(t.text)
	if query == "" || t.msg.Type == whatsapp.TypeInteractive {
		b.reply(ctx, t.rc, t.user, msgAskIDOrNameAsText)
		return nil
	}

	res, ok := b.findClient(ctx, t, query)
	if !ok {
		return nil
	}
	if res.Unique {
		next := State{Step: StepAwaitingReceipt, Payload: clientPayload(*res.Selected)}
		if err := b.transition(ctx, t, next); err != nil {
			return err
		}
		b.reply(ctx, t.rc, t.user, fmt.Sprintf(msgClientFound, titleCase(res.Selected.Name)))
		return nil
	}
	return b.askClarification(ctx, t, res, State{Step: StepAwaitingClarification})
}

func (b *Bot) handleClarification(ctx context.Context, t *turn) error {
	selected, ok := b.pickCandidate(ctx, t, msgInvalidSelection)
	if !ok {
		return nil
	}
	next := State{Step: StepAwaitingReceipt, Payload: clientPayload(selected)}
	if err := b.transition(ctx, t, next); err != nil {
		return err
	}
	b.reply(ctx, t.rc, t.user, fmt.Sprintf(msgClientSelected, titleCase(selected.Name)))
	return nil
}

func (b *Bot) handleAwaitingReceipt(ctx context.Context, t *turn) error {
	switch {
	case t.msg.Type == whatsapp.TypeImage:
		return b.processReceipt(ctx, t, t.msg.MediaID, false, t.state.Payload)
	case t.msg.IsPDF():
		return b.processReceipt(ctx, t, t.msg.MediaID, true, t.state.Payload)
	default:
		b.reply(ctx, t.rc, t.user, msgAwaitingReceipt)
		return nil
	}
}

func (b *Bot) handleIDForFile(ctx context.Context, t *turn) error {
	query := strings.TrimSpace(t.text)
	if query == "" || t.msg.Type == whatsapp.TypeInteractive {
		b.reply(ctx, t.rc, t.user, msgAskIDOrNameAsText)
		return nil
	}

	res, ok := b.findClient(ctx, t, query)
	if !ok {
		return nil
	}
	if res.Unique {
		return b.processReceipt(ctx, t, t.state.Payload.MediaID, t.state.Payload.IsPDF, clientPayload(*res.Selected))
	}
	next := State{
		Step:    StepAwaitingClarificationForFile,
		Payload: Payload{MediaID: t.state.Payload.MediaID, IsPDF: t.state.Payload.IsPDF},
	}
	return b.askClarification(ctx, t, res, next)
}

func (b *Bot) handleClarificationForFile(ctx context.Context, t *turn) error {
	selected, ok := b.pickCandidate(ctx, t, msgInvalidFileSelection)
	if !ok {
		return nil
	}
	return b.processReceipt(ctx, t, t.state.Payload.MediaID, t.state.Payload.IsPDF, clientPayload(selected))
}

func (b *Bot) handleHumanTakeover(ctx context.Context, t *turn) error {
	return nil
}

// findClient resolves query against the registry. ok is false when the user
// was already told that nothing matched or the registry failed.
func (b *Bot) findClient(ctx context.Context, t *turn, query string) (matcher.Resolution, bool) {
	t.rc.StartStep("match_client")
	res, err := b.Matcher.Resolve(ctx, query)
	if err != nil {
		t.rc.EndStep("failed", err)
		b.reply(ctx, t.rc, t.user, Errors.StorageError())
		return matcher.Resolution{}, false
	}
	t.rc.EndStep("success", nil)
	t.rc.Logger().Info("client search",
		zap.String("query", query),
		zap.Int("candidates", len(res.Candidates)),
		zap.Bool("unique", res.Unique))

	if len(res.Candidates) == 0 {
		b.reply(ctx, t.rc, t.user, Errors.ClientNotFound(query))
		return matcher.Resolution{}, false
	}
	return res, true
}

// askClarification stores the candidates on next and shows them as buttons
func (b *Bot) askClarification(ctx context.Context, t *turn, res matcher.Resolution, next State) error {
	next.Payload.Matches = make([]models.ClientRecord, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		next.Payload.Matches = append(next.Payload.Matches, c.Client)
	}
	if err := b.transition(ctx, t, next); err != nil {
		return err
	}

	choices := b.Matcher.Buttons(res.Candidates)
	buttons := make([]whatsapp.Button, 0, len(choices))
	for _, c := range choices {
		buttons = append(buttons, whatsapp.Button{ID: c.ID, Title: c.Title})
	}
	b.replyButtons(ctx, t.rc, t.user, msgManyMatches, buttons)
	return nil
}

// pickCandidate maps a cliente_<i> reply to the stored match. ok is false
// when the user was re-prompted.
func (b *Bot) pickCandidate(ctx context.Context, t *turn, invalidMsg string) (models.ClientRecord, bool) {
	if !strings.HasPrefix(t.text, matcher.ChoicePrefix) {
		b.reply(ctx, t.rc, t.user, msgSelectClient)
		return models.ClientRecord{}, false
	}
	idx, err := matcher.ParseChoice(t.text)
	if err != nil {
		b.reply(ctx, t.rc, t.user, msgSelectionError)
		return models.ClientRecord{}, false
	}
	matches := t.state.Payload.Matches
	if idx < 0 || idx >= len(matches) {
		b.reply(ctx, t.rc, t.user, invalidMsg)
		return models.ClientRecord{}, false
	}
	return matches[idx], true
}

func clientPayload(rec models.ClientRecord) Payload {
	return Payload{ClientID: rec.ID, ClientName: rec.Name}
}
