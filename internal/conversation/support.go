// support.go - Support ticket steps

package conversation

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/whatsapp"
)

// minDescriptionLen is the shortest accepted problem description, in runes
const minDescriptionLen = 10

func (b *Bot) handleProblemType(ctx context.Context, t *turn) error {
	switch t.text {
	case BtnReportPayment:
		next := State{Step: StepAwaitingSupportName, Payload: Payload{ProblemType: ProblemPayment}}
		if err := b.transition(ctx, t, next); err != nil {
			return err
		}
		b.reply(ctx, t.rc, t.user, msgPaymentReportAskName)
	case BtnReportTechnical:
		next := State{Step: StepAwaitingRouterRestartConfirm, Payload: Payload{ProblemType: ProblemTechnical}}
		if err := b.transition(ctx, t, next); err != nil {
			return err
		}
		b.replyButtons(ctx, t.rc, t.user, msgRouterRestartAsk, restartConfirmButtons)
	default:
		b.reply(ctx, t.rc, t.user, msgChooseOneOfTwo)
	}
	return nil
}

func (b *Bot) handleRouterRestartConfirm(ctx context.Context, t *turn) error {
	switch t.text {
	case BtnRestartYes:
		next := State{Step: StepAwaitingSupportName, Payload: t.state.Payload}
		if err := b.transition(ctx, t, next); err != nil {
			return err
		}
		b.reply(ctx, t.rc, t.user, msgRestartTriedAskName)
	case BtnRestartNo:
		next := State{Step: StepAwaitingRestartResult, Payload: t.state.Payload}
		if err := b.transition(ctx, t, next); err != nil {
			return err
		}
		b.replyButtons(ctx, t.rc, t.user, msgRestartInstructions, restartResultButtons)
	default:
		b.reply(ctx, t.rc, t.user, msgUseButtons)
	}
	return nil
}

func (b *Bot) handleRestartResult(ctx context.Context, t *turn) error {
	switch t.text {
	case BtnRestartSolved:
		if err := b.transition(ctx, t, State{}); err != nil {
			return err
		}
		b.reply(ctx, t.rc, t.user, msgRestartSolved)
	case BtnRestartNotFixed:
		next := State{Step: StepAwaitingSupportName, Payload: t.state.Payload}
		if err := b.transition(ctx, t, next); err != nil {
			return err
		}
		b.reply(ctx, t.rc, t.user, msgRestartNotSolved)
	default:
		b.reply(ctx, t.rc, t.user, msgRestartUseButtons)
	}
	return nil
}

func (b *Bot) handleSupportName(ctx context.Context, t *turn) error {
	query := strings.TrimSpace(t.text)
	if query == "" || t.msg.Type == whatsapp.TypeInteractive {
		b.reply(ctx, t.rc, t.user, msgAskSupportName)
		return nil
	}

	res, ok := b.findClient(ctx, t, query)
	if !ok {
		return nil
	}
	if res.Unique {
		payload := clientPayload(*res.Selected)
		payload.ProblemType = t.state.Payload.ProblemType
		if err := b.transition(ctx, t, State{Step: StepAwaitingSupportPhone, Payload: payload}); err != nil {
			return err
		}
		b.reply(ctx, t.rc, t.user, fmt.Sprintf(msgHolderVerified, titleCase(res.Selected.Name)))
		return nil
	}
	next := State{
		Step:    StepAwaitingSupportClarification,
		Payload: Payload{ProblemType: t.state.Payload.ProblemType},
	}
	return b.askClarification(ctx, t, res, next)
}

func (b *Bot) handleSupportClarification(ctx context.Context, t *turn) error {
	selected, ok := b.pickCandidate(ctx, t, msgInvalidSelection)
	if !ok {
		return nil
	}
	payload := clientPayload(selected)
	payload.ProblemType = t.state.Payload.ProblemType
	if err := b.transition(ctx, t, State{Step: StepAwaitingSupportPhone, Payload: payload}); err != nil {
		return err
	}
	b.reply(ctx, t.rc, t.user, fmt.Sprintf(msgHolderSelected, titleCase(selected.Name)))
	return nil
}

func (b *Bot) handleSupportPhone(ctx context.Context, t *turn) error {
	input := strings.TrimSpace(t.text)
	if input == "" {
		b.reply(ctx, t.rc, t.user, msgAskPhone)
		return nil
	}
	phone, ok := NormalizePhone(input, t.user)
	if !ok {
		b.reply(ctx, t.rc, t.user, msgInvalidPhone)
		return nil
	}

	payload := t.state.Payload
	payload.SupportPhone = phone
	if err := b.transition(ctx, t, State{Step: StepAwaitingSupportDescription, Payload: payload}); err != nil {
		return err
	}
	if payload.ProblemType == ProblemPayment {
		b.reply(ctx, t.rc, t.user, fmt.Sprintf(msgPhonePaymentIssue, phone))
	} else {
		b.reply(ctx, t.rc, t.user, fmt.Sprintf(msgPhoneTechnicalIssue, phone))
	}
	return nil
}

func (b *Bot) handleSupportDescription(ctx context.Context, t *turn) error {
	description := strings.TrimSpace(t.text)
	if description == "" {
		b.reply(ctx, t.rc, t.user, msgAskDescription)
		return nil
	}
	if utf8.RuneCountInString(description) < minDescriptionLen || allDigits(description) {
		b.reply(ctx, t.rc, t.user, msgDescriptionTooShort)
		return nil
	}

	payload := t.state.Payload
	if payload.TicketSent {
		b.reply(ctx, t.rc, t.user, msgTicketAlreadySent)
		return nil
	}

	ticket := Ticket{
		UserID:       t.user,
		ClientName:   orDefault(payload.ClientName, "No proporcionado"),
		ClientID:     orDefault(payload.ClientID, "No proporcionado"),
		ContactPhone: orDefault(payload.SupportPhone, t.user),
		ProblemType:  orDefault(payload.ProblemType, ProblemGeneral),
		Description:  description,
	}
	t.rc.StartStep("notify_support")
	if b.Notifier.NotifySupport(ctx, ticket) {
		t.rc.EndStep("success", nil)
	} else {
		t.rc.EndStep("failed", nil)
	}

	payload.TicketSent = true
	if err := b.States.Save(ctx, t.user, State{Step: StepAwaitingSupportDescription, Payload: payload}); err != nil {
		return err
	}

	b.reply(ctx, t.rc, t.user, fmt.Sprintf(msgTicketRegistered, titleCase(ticket.ClientName), ticket.ClientID, ticket.ContactPhone))
	if err := b.transition(ctx, t, State{Step: StepAwaitingInitialAction}); err != nil {
		return err
	}
	b.replyButtons(ctx, t.rc, t.user, msgAnythingElse, afterTicketButtons)
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
