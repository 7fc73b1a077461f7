// transitions.go - Explicit step transition table

package conversation

// InputClass is the kind of message that drives a transition
type InputClass string

const (
	InputAny    InputClass = "any"
	InputButton InputClass = "button"
	InputText   InputClass = "text"
	InputImage  InputClass = "image"
	InputPDF    InputClass = "pdf"
	InputAudio  InputClass = "audio"
	InputOther  InputClass = "other"
)

// Transition is one allowed move between steps
type Transition struct {
	From  Step
	Input InputClass
	Label string // button id or outcome
	To    Step
}

// Transitions lists every step change the handlers may make. Re-prompts
// that keep the step are not listed.
var Transitions = []Transition{
	{StepEntry, InputAny, "greeting", StepAwaitingInitialAction},

	{StepAwaitingInitialAction, InputButton, BtnRegisterPayment, StepAwaitingIDOrName},
	{StepAwaitingInitialAction, InputButton, BtnPlans, StepHumanTakeover},
	{StepAwaitingInitialAction, InputButton, BtnReportProblem, StepAwaitingProblemType},
	{StepAwaitingInitialAction, InputText, "support intent", StepAwaitingSupportName},
	{StepAwaitingInitialAction, InputText, "plans intent", StepHumanTakeover},

	{StepAwaitingProblemType, InputButton, BtnReportPayment, StepAwaitingSupportName},
	{StepAwaitingProblemType, InputButton, BtnReportTechnical, StepAwaitingRouterRestartConfirm},

	{StepAwaitingRouterRestartConfirm, InputButton, BtnRestartYes, StepAwaitingSupportName},
	{StepAwaitingRouterRestartConfirm, InputButton, BtnRestartNo, StepAwaitingRestartResult},

	{StepAwaitingRestartResult, InputButton, BtnRestartSolved, StepEntry},
	{StepAwaitingRestartResult, InputButton, BtnRestartNotFixed, StepAwaitingSupportName},

	{StepAwaitingSupportName, InputText, "unique match", StepAwaitingSupportPhone},
	{StepAwaitingSupportName, InputText, "ambiguous match", StepAwaitingSupportClarification},
	{StepAwaitingSupportClarification, InputButton, "cliente_<i>", StepAwaitingSupportPhone},
	{StepAwaitingSupportPhone, InputText, "valid phone", StepAwaitingSupportDescription},
	{StepAwaitingSupportDescription, InputText, "ticket sent", StepAwaitingInitialAction},

	{StepAwaitingIDOrName, InputText, "unique match", StepAwaitingReceipt},
	{StepAwaitingIDOrName, InputText, "ambiguous match", StepAwaitingClarification},
	{StepAwaitingClarification, InputButton, "cliente_<i>", StepAwaitingReceipt},
	{StepAwaitingReceipt, InputImage, "recorded", StepAwaitingInitialAction},
	{StepAwaitingReceipt, InputPDF, "recorded", StepAwaitingInitialAction},
	{StepAwaitingReceipt, InputImage, "direct collection", StepEntry},
	{StepAwaitingReceipt, InputPDF, "direct collection", StepEntry},

	{StepAwaitingIDForFile, InputText, "unique match, recorded", StepAwaitingInitialAction},
	{StepAwaitingIDForFile, InputText, "unique match, direct collection", StepEntry},
	{StepAwaitingIDForFile, InputText, "ambiguous match", StepAwaitingClarificationForFile},
	{StepAwaitingClarificationForFile, InputButton, "recorded", StepAwaitingInitialAction},
	{StepAwaitingClarificationForFile, InputButton, "direct collection", StepEntry},
}

// receiptSteps accept an image or PDF as regular input
var receiptSteps = map[Step]bool{
	StepAwaitingReceipt:              true,
	StepAwaitingIDOrName:             true,
	StepAwaitingClarification:        true,
	StepAwaitingSupportClarification: true,
}

// globalTransitions are the interrupts available from (almost) any step
func globalTransitions() []Transition {
	var out []Transition
	for _, s := range AllSteps {
		out = append(out,
			Transition{s, InputText, "finalizar", StepEntry},
			Transition{s, InputText, "restart keyword", StepEntry},
			Transition{s, InputText, "/soporte", StepHumanTakeover},
			Transition{s, InputText, "/cancelar", StepEntry},
		)
		if s == StepHumanTakeover || receiptSteps[s] {
			continue
		}
		out = append(out,
			Transition{s, InputImage, "unsolicited receipt", StepAwaitingIDForFile},
			Transition{s, InputPDF, "unsolicited receipt", StepAwaitingIDForFile},
		)
	}
	return out
}

var allowed = buildAllowed()

func buildAllowed() map[Step]map[Step]bool {
	m := make(map[Step]map[Step]bool)
	for _, t := range append(globalTransitions(), Transitions...) {
		if m[t.From] == nil {
			m[t.From] = make(map[Step]bool)
		}
		m[t.From][t.To] = true
	}
	return m
}

// IsAllowed reports whether moving from one step to another is listed.
// Staying on the same step is always allowed.
func IsAllowed(from, to Step) bool {
	return from == to || allowed[from][to]
}

// Reachable returns every step reachable from start
func Reachable(start Step) map[Step]bool {
	seen := map[Step]bool{start: true}
	queue := []Step{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range allowed[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}
