// commands.go - Slash commands that bypass the state machine

package conversation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/ledger"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/processor"
)

const (
	cmdCancel  = "/cancelar"
	cmdReset   = "/reset"
	cmdHelp    = "/ayuda"
	cmdStatus  = "/estado"
	cmdSupport = "/soporte"
	cmdCleanup = "/limpieza"
	cmdDebt    = "/deuda"
)

// publicCommands are suggested when a user mistypes one
var publicCommands = []string{cmdCancel, cmdReset, cmdHelp, cmdStatus, cmdSupport, cmdDebt}

// maxCommandDistance is how far a typo may be from a known command
const maxCommandDistance = 2

// handleCommand answers a recognized command. handled is false when the
// message should continue to the state machine.
func (b *Bot) handleCommand(ctx context.Context, t *turn) (bool, error) {
	fields := strings.Fields(t.text)
	cmd := strings.ToLower(fields[0])
	arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t.text), fields[0]))

	t.rc.LogInfo("command %s", cmd)
	switch cmd {
	case cmdCancel, cmdReset:
		if err := b.States.Clear(ctx, t.user); err != nil {
			return true, err
		}
		b.reply(ctx, t.rc, t.user, msgCancelled)
		return true, nil

	case cmdHelp:
		b.reply(ctx, t.rc, t.user, msgHelp)
		return true, nil

	case cmdStatus:
		return true, b.commandStatus(ctx, t)

	case cmdSupport:
		return true, b.commandSupport(ctx, t)

	case cmdCleanup:
		if !b.isAdmin(t.user) {
			return false, nil
		}
		b.commandCleanup(ctx, t)
		return true, nil

	case cmdDebt:
		b.reply(ctx, t.rc, t.user, b.debtSummary(arg))
		return true, nil
	}

	if suggestion, dist := common.Closest(cmd, publicCommands); suggestion != "" && dist <= maxCommandDistance {
		b.reply(ctx, t.rc, t.user, fmt.Sprintf(msgUnknownCommand, cmd, suggestion))
	}
	return false, nil
}

func (b *Bot) commandStatus(ctx context.Context, t *turn) error {
	st, err := b.States.Load(ctx, t.user)
	if err != nil || st.Step == StepEntry {
		b.reply(ctx, t.rc, t.user, msgNoActiveProcess)
		return nil
	}
	desc, ok := stepDescriptions[st.Step]
	if !ok {
		desc = string(st.Step)
	}
	b.reply(ctx, t.rc, t.user, fmt.Sprintf(msgStatus, desc))
	return nil
}

// commandSupport forwards the user to a human and parks the conversation
func (b *Bot) commandSupport(ctx context.Context, t *turn) error {
	st, _ := b.States.Load(ctx, t.user)
	b.Notifier.NotifySupport(ctx, Ticket{
		UserID:      t.user,
		ClientName:  st.Payload.ClientName,
		ClientID:    st.Payload.ClientID,
		ProblemType: "Solicitud de soporte general",
		Description: "Cliente solicitó soporte usando el comando /soporte",
	})
	if err := b.States.Save(ctx, t.user, State{Step: StepHumanTakeover}); err != nil {
		return err
	}
	b.reply(ctx, t.rc, t.user, msgHumanTakeover)
	return nil
}

func (b *Bot) commandCleanup(ctx context.Context, t *turn) {
	removed, err := processor.CleanupTempFiles(b.opts.UploadDir, b.opts.TempMaxAge)
	if err != nil {
		t.rc.Logger().Error("temp cleanup failed", zap.Error(err))
		b.reply(ctx, t.rc, t.user, msgCleanupFailed)
		return
	}
	t.rc.LogInfo("temp cleanup removed %d files", removed)
	b.reply(ctx, t.rc, t.user, msgCleanupDone)
}

// debtSummary renders the /deuda answer for query
func (b *Bot) debtSummary(query string) string {
	if b.Debts == nil {
		return msgDebtUnavailable
	}
	if query == "" {
		return msgDebtAskQuery
	}
	rec, ok := b.Debts.Lookup(query)
	if !ok {
		return msgDebtNotFound
	}
	return formatDebt(rec)
}

func formatDebt(rec ledger.DebtRecord) string {
	text := fmt.Sprintf(msgDebtSummary, rec.Name, rec.ID, rec.Total.StringFixed(2))
	var parts []string
	for _, m := range rec.Months {
		parts = append(parts, fmt.Sprintf("%s: %s", titleCase(m.Month), m.Amount.StringFixed(2)))
	}
	if len(parts) > 0 {
		text += "\n📆 " + strings.Join(parts, " | ")
	}
	return text
}

func (b *Bot) isAdmin(userID string) bool {
	for _, id := range b.opts.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
