package selection

import "encoding/json"

// State is the lifecycle of a dependent data node
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "unknown"
}

// MarshalJSON renders the state as its string form
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// NodeStatus carries a node's state and, when failed, its error message
type NodeStatus struct {
	State State  `json:"state"`
	Error string `json:"error,omitempty"`
}

func idle() NodeStatus {
	return NodeStatus{State: StateIdle}
}

func loading() NodeStatus {
	return NodeStatus{State: StateLoading}
}

func ready() NodeStatus {
	return NodeStatus{State: StateReady}
}

func failed(message string) NodeStatus {
	return NodeStatus{State: StateError, Error: message}
}
