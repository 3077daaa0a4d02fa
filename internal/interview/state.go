package interview

// State identifies a position in the turn cycle. One full cycle through the
// states is one turn.
type State int

const (
	StateAwaitingGeneration State = iota
	StateAwaitingSelection
	StateAwaitingQuestionDelivery
	StateAwaitingAnswer
	StateAwaitingGrade
	StateAwaitingUpdate
	StateContinue
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateAwaitingGeneration:
		return "awaiting-generation"
	case StateAwaitingSelection:
		return "awaiting-selection"
	case StateAwaitingQuestionDelivery:
		return "awaiting-question-delivery"
	case StateAwaitingAnswer:
		return "awaiting-answer"
	case StateAwaitingGrade:
		return "awaiting-grade"
	case StateAwaitingUpdate:
		return "awaiting-update"
	case StateContinue:
		return "continue"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Terminal reasons.
const (
	ReasonMaxTurns    = "max-turns"
	ReasonAllVerified = "all-verified"
	ReasonNoneActive  = "none-active"
)

// TerminalReason reports why the session should stop, if it should.
func (l *Ledger) TerminalReason() (string, bool) {
	if l.Turn >= l.Config.MaxTurns {
		return ReasonMaxTurns, true
	}
	if l.AllVerified() {
		return ReasonAllVerified, true
	}
	if len(l.ActiveSkills()) == 0 {
		return ReasonNoneActive, true
	}
	return "", false
}

// NextState is the pure transition function over the turn cycle. It reads
// the ledger but never mutates it.
func NextState(s State, l *Ledger) State {
	switch s {
	case StateAwaitingGeneration:
		return StateAwaitingSelection
	case StateAwaitingSelection:
		return StateAwaitingQuestionDelivery
	case StateAwaitingQuestionDelivery:
		return StateAwaitingAnswer
	case StateAwaitingAnswer:
		if l.AwaitingAnswer {
			return StateAwaitingAnswer
		}
		return StateAwaitingGrade
	case StateAwaitingGrade:
		return StateAwaitingUpdate
	case StateAwaitingUpdate:
		if _, done := l.TerminalReason(); done {
			return StateTerminal
		}
		return StateContinue
	case StateContinue:
		return StateAwaitingSelection
	default:
		return StateTerminal
	}
}
