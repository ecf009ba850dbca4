package question

// Kind tells how operands of a mode are resolved and answers evaluated
type Kind int

const (
	// Numeric modes resolve integer operands and evaluate the answer template.
	Numeric Kind = iota
	// Label modes pick one label per variable; the answer is fixed at 0.
	Label
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Label:
		return "label"
	default:
		return "unknown"
	}
}

// DefaultLabelModes are the pick-a-label modes of the bundled tables
var DefaultLabelModes = []string{"direction", "drawing"}

// Modes classifies mode names
type Modes struct {
	labels map[string]struct{}
}

// NewModes creates a classifier treating the given modes as label modes
func NewModes(labelModes ...string) Modes {
	labels := make(map[string]struct{}, len(labelModes))
	for _, m := range labelModes {
		if m = NormalizeMode(m); m != "" {
			labels[m] = struct{}{}
		}
	}
	return Modes{labels: labels}
}

// Classify returns the kind of a mode
func (m Modes) Classify(mode string) Kind {
	if _, ok := m.labels[NormalizeMode(mode)]; ok {
		return Label
	}
	return Numeric
}
