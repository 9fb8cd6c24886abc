package plugin

// State is a plugin lifecycle state. The string values are wire values
// exposed verbatim by the states listing endpoint.
type State string

const (
	StateRegistered   State = "registered"
	StateInitializing State = "initializing"
	StateStarting     State = "starting"
	StateRunning      State = "running"
	StateStopped      State = "stopped"
	StateError        State = "error"
	StateIdle         State = "idle"
)

// AllStates lists every state in catalog order.
var AllStates = []State{
	StateRegistered,
	StateInitializing,
	StateStarting,
	StateRunning,
	StateStopped,
	StateError,
	StateIdle,
}

// StateDescriptions are the fixed human-readable descriptions served by
// the states listing endpoint.
var StateDescriptions = map[State]string{
	StateRegistered:   "Plugin is registered but not yet initialized",
	StateInitializing: "Plugin is being initialized",
	StateStarting:     "Plugin is starting up",
	StateRunning:      "Plugin is running and available",
	StateStopped:      "Plugin has been stopped",
	StateError:        "Plugin encountered an error",
	StateIdle:         "Plugin is idle due to inactivity",
}

func (s State) Valid() bool {
	_, ok := StateDescriptions[s]
	return ok
}
