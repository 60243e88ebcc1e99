package playback

// State is the playback state of an Engine.
type State int

const (
	// StateIdle means nothing is being timed: not started, finished without
	// repeat, or disposed.
	StateIdle State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PauseSource is the authority that decides whether playback is paused.
type PauseSource int

const (
	// PauseSourceLocal means gestures pause and resume the timer directly.
	PauseSourceLocal PauseSource = iota
	// PauseSourceExternal means an attached controller is authoritative:
	// local pause and resume requests are sent to it and only applied when
	// its signal comes back.
	PauseSourceExternal
)

func (p PauseSource) String() string {
	if p == PauseSourceExternal {
		return "external"
	}
	return "local"
}

// IndicatorPosition places the progress bars. It only affects presentation.
type IndicatorPosition int

const (
	IndicatorTop IndicatorPosition = iota
	IndicatorBottom
)

func (p IndicatorPosition) String() string {
	if p == IndicatorBottom {
		return "bottom"
	}
	return "top"
}
