package workflow

// State is the stage a workflow instance is in.
type State int

const (
	Idle State = iota
	Generating
	Generated
	Customizing
	Customized
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Generating:
		return "generating"
	case Generated:
		return "generated"
	case Customizing:
		return "customizing"
	case Customized:
		return "customized"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON and YAML output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
