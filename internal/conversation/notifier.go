// notifier.go - Messages to the support group

package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/extractor"
)

// Ticket is a support request forwarded to the support group
type Ticket struct {
	UserID       string
	ClientName   string
	ClientID     string
	ContactPhone string
	ProblemType  string
	Description  string
}

// PaymentNotice tells the support group a payment was recorded
type PaymentNotice struct {
	ClientName string
	ClientID   string
	Amount     string
	Bank       string
	Date       string
	Document   string
	Confidence extractor.Confidence
}

var fieldLabels = map[string]string{
	"amount":   "monto",
	"date":     "fecha",
	"bank":     "banco",
	"document": "documento",
}

// Notifier posts tickets and payment notices to the support group
type Notifier struct {
	messenger Messenger
	groupID   string
	location  *time.Location
	now       func() time.Time
}

// NewNotifier sends to groupID with timestamps shifted by utcOffsetHours.
// An empty groupID disables notifications.
func NewNotifier(messenger Messenger, groupID string, utcOffsetHours int) *Notifier {
	name := fmt.Sprintf("UTC%+d", utcOffsetHours)
	return &Notifier{
		messenger: messenger,
		groupID:   groupID,
		location:  time.FixedZone(name, utcOffsetHours*3600),
		now:       time.Now,
	}
}

// NotifySupport sends a ticket. It returns false when notifications are
// disabled or the send failed.
func (n *Notifier) NotifySupport(ctx context.Context, t Ticket) bool {
	if n.groupID == "" {
		common.Logger().Warn("support notification skipped: GRUPO_SOPORTE_ID not configured")
		return false
	}

	local := n.now().In(n.location)
	client := "No identificado"
	if t.ClientName != "" {
		client = titleCase(t.ClientName)
	}

	var sb strings.Builder
	sb.WriteString("🚨 *NUEVA SOLICITUD DE SOPORTE*\n\n")
	fmt.Fprintf(&sb, "⏰ *Hora:* %s - %s\n", local.Format("15:04"), local.Format("02/01/2006"))
	fmt.Fprintf(&sb, "👤 *Cliente:* %s\n", client)
	if t.ClientID != "" {
		fmt.Fprintf(&sb, "🆔 *C.I./RUC:* %s\n", t.ClientID)
	}
	fmt.Fprintf(&sb, "💬 *N° de WhatsApp (Cliente):* %s\n", t.UserID)
	if t.ContactPhone != "" {
		fmt.Fprintf(&sb, "📱 *N° de Contacto (Indicado):* %s\n", t.ContactPhone)
	}
	fmt.Fprintf(&sb, "🏷️ *Tipo:* %s\n", t.ProblemType)
	if t.Description != "" {
		fmt.Fprintf(&sb, "📝 *Descripción del problema:*\n%s\n", t.Description)
	}
	fmt.Fprintf(&sb, "\n📲 *Responder directamente al cliente:* wa.me/%s", t.UserID)

	if err := n.messenger.SendText(ctx, n.groupID, sb.String()); err != nil {
		common.Logger().Error("failed to notify support group", zap.String("user_id", t.UserID), zap.Error(err))
		return false
	}
	return true
}

// NotifyPayment sends a recorded-payment notice
func (n *Notifier) NotifyPayment(ctx context.Context, p PaymentNotice) bool {
	if n.groupID == "" {
		return false
	}

	var sb strings.Builder
	sb.WriteString("✅ *NUEVO PAGO REGISTRADO (BOT)*\n\n")
	fmt.Fprintf(&sb, "👤 *Cliente:* %s\n", titleCase(p.ClientName))
	fmt.Fprintf(&sb, "🆔 *C.I./RUC:* %s\n", p.ClientID)
	fmt.Fprintf(&sb, "💰 *Monto:* $%s\n", p.Amount)
	fmt.Fprintf(&sb, "🏦 *Banco:* %s\n", p.Bank)
	fmt.Fprintf(&sb, "📅 *Fecha del Pago:* %s\n", p.Date)
	fmt.Fprintf(&sb, "📄 *Ref/Doc:* %s\n", p.Document)
	fmt.Fprintf(&sb, "📊 *Confianza de lectura:* %s (%.0f%%)\n", p.Confidence.Label(), p.Confidence.Score)
	if len(p.Confidence.Missing) > 0 {
		labels := make([]string, 0, len(p.Confidence.Missing))
		for _, f := range p.Confidence.Missing {
			labels = append(labels, fieldLabels[f])
		}
		fmt.Fprintf(&sb, "⚠️ *Revisar:* %s\n", strings.Join(labels, ", "))
	}
	sb.WriteString("\nEl pago ha sido añadido a la hoja de cálculo para su posterior verificación.")

	if err := n.messenger.SendText(ctx, n.groupID, sb.String()); err != nil {
		common.Logger().Error("failed to notify payment", zap.Error(err))
		return false
	}
	return true
}

// titleCase capitalizes each word of a registry name ("PEREZ  LOPEZ" -> "Perez Lopez").
// A Caser keeps state, so one is built per call.
func titleCase(s string) string {
	return cases.Title(language.Spanish).String(strings.Join(strings.Fields(s), " "))
}
