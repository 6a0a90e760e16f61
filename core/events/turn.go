package events

const (
	// KindTurnStarted identifies the start of a conversation turn.
	KindTurnStarted Kind = "turn.started"
	// KindTurnReplied identifies a completed language model reply.
	KindTurnReplied Kind = "turn.replied"
	// KindTurnFailed identifies a turn aborted by an error.
	KindTurnFailed Kind = "turn.failed"
	// KindTurnEnded identifies the end of a turn on any exit path.
	KindTurnEnded Kind = "turn.ended"
	// KindControlsChanged identifies send/capture controls being enabled or
	// disabled.
	KindControlsChanged Kind = "turn.controls_changed"
)

type TurnTrigger string

const (
	TurnTriggerTyped    TurnTrigger = "typed"
	TurnTriggerCaptured TurnTrigger = "captured"
)

// TurnStarted carries the input of a new turn.
type TurnStarted struct {
	Base
	TurnID  string
	Trigger TurnTrigger
	Input   string
}

// NewTurnStarted creates a turn started event.
func NewTurnStarted(turnID string, trigger TurnTrigger, input string) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted), TurnID: turnID, Trigger: trigger, Input: input}
}

// TurnReplied carries the reply produced for a turn.
type TurnReplied struct {
	Base
	TurnID string
	Reply  string
}

// NewTurnReplied creates a turn replied event.
func NewTurnReplied(turnID string, reply string) TurnReplied {
	return TurnReplied{Base: NewBase(KindTurnReplied), TurnID: turnID, Reply: reply}
}

// TurnFailed carries the error that aborted a turn.
type TurnFailed struct {
	Base
	TurnID string
	Err    error
}

// NewTurnFailed creates a turn failed event.
func NewTurnFailed(turnID string, err error) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed), TurnID: turnID, Err: err}
}

// TurnEnded marks the end of a turn, successful or not.
type TurnEnded struct {
	Base
	TurnID string
}

// NewTurnEnded creates a turn ended event.
func NewTurnEnded(turnID string) TurnEnded {
	return TurnEnded{Base: NewBase(KindTurnEnded), TurnID: turnID}
}

// ControlsChanged carries whether send and capture controls are enabled.
type ControlsChanged struct {
	Base
	Enabled bool
}

// NewControlsChanged creates a controls changed event.
func NewControlsChanged(enabled bool) ControlsChanged {
	return ControlsChanged{Base: NewBase(KindControlsChanged), Enabled: enabled}
}
