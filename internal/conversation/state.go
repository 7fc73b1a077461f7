// state.go - Conversation steps and the per-user payload

package conversation

import (
	"errors"
	"fmt"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
)

// ErrInvalidState is returned when a persisted state cannot be trusted
var ErrInvalidState = errors.New("invalid conversation state")

// Step is the position of a user in the conversation
type Step string

const (
	StepEntry                        Step = ""
	StepAwaitingInitialAction        Step = "awaiting_initial_action"
	StepAwaitingIDOrName             Step = "awaiting_id_or_name"
	StepAwaitingClarification        Step = "awaiting_clarification"
	StepAwaitingReceipt              Step = "awaiting_receipt"
	StepAwaitingProblemType          Step = "awaiting_problem_type"
	StepAwaitingRouterRestartConfirm Step = "awaiting_router_restart_confirm"
	StepAwaitingRestartResult        Step = "awaiting_restart_result"
	StepAwaitingSupportName          Step = "awaiting_support_name"
	StepAwaitingSupportClarification Step = "awaiting_support_clarification"
	StepAwaitingSupportPhone         Step = "awaiting_support_phone"
	StepAwaitingSupportDescription   Step = "awaiting_support_description"
	StepHumanTakeover                Step = "human_takeover"
	StepAwaitingIDForFile            Step = "awaiting_id_for_file"
	StepAwaitingClarificationForFile Step = "awaiting_clarification_for_file"
)

// AllSteps lists every valid step, entry first
var AllSteps = []Step{
	StepEntry,
	StepAwaitingInitialAction,
	StepAwaitingIDOrName,
	StepAwaitingClarification,
	StepAwaitingReceipt,
	StepAwaitingProblemType,
	StepAwaitingRouterRestartConfirm,
	StepAwaitingRestartResult,
	StepAwaitingSupportName,
	StepAwaitingSupportClarification,
	StepAwaitingSupportPhone,
	StepAwaitingSupportDescription,
	StepHumanTakeover,
	StepAwaitingIDForFile,
	StepAwaitingClarificationForFile,
}

// Valid reports whether s is a known step
func (s Step) Valid() bool {
	for _, known := range AllSteps {
		if s == known {
			return true
		}
	}
	return false
}

// Problem types recorded on support tickets
const (
	ProblemPayment   = "Problema con Pago"
	ProblemTechnical = "Falla de Internet/TV"
	ProblemGeneral   = "Reporte General"
)

// Payload is the data collected along the conversation
type Payload struct {
	ClientID     string                `json:"cedula,omitempty"`
	ClientName   string                `json:"apellidos_y_nombres,omitempty"`
	ProblemType  string                `json:"problem_type,omitempty"`
	SupportPhone string                `json:"support_phone,omitempty"`
	MediaID      string                `json:"media_id,omitempty"`
	IsPDF        bool                  `json:"is_pdf,omitempty"`
	Matches      []models.ClientRecord `json:"matches,omitempty"`
	TicketSent   bool                  `json:"ticket_enviado,omitempty"`
}

// State is what the store keeps per user
type State struct {
	Step    Step    `json:"paso"`
	Payload Payload `json:"payload"`
}

// Validate checks the payload a step depends on
func (s State) Validate() error {
	if !s.Step.Valid() {
		return fmt.Errorf("%w: unknown step %q", ErrInvalidState, s.Step)
	}
	switch s.Step {
	case StepAwaitingClarification, StepAwaitingSupportClarification, StepAwaitingClarificationForFile:
		if len(s.Payload.Matches) == 0 {
			return fmt.Errorf("%w: step %s without matches", ErrInvalidState, s.Step)
		}
	}
	switch s.Step {
	case StepAwaitingIDForFile, StepAwaitingClarificationForFile:
		if s.Payload.MediaID == "" {
			return fmt.Errorf("%w: step %s without media id", ErrInvalidState, s.Step)
		}
	}
	return nil
}

// IsZero reports whether s is the empty entry state
func (s State) IsZero() bool {
	return s.Step == StepEntry && s.Payload.ClientID == "" && s.Payload.MediaID == "" && len(s.Payload.Matches) == 0
}
