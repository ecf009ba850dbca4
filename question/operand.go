package question

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

// Shape is the form of an operand token
type Shape int

const (
	ShapeFixed Shape = iota
	ShapeChoice
	ShapeRange
	ShapeScaled
	ShapeLabel
)

func (s Shape) String() string {
	switch s {
	case ShapeFixed:
		return "fixed"
	case ShapeChoice:
		return "choice"
	case ShapeRange:
		return "range"
	case ShapeScaled:
		return "scaled"
	case ShapeLabel:
		return "label"
	default:
		return "unknown"
	}
}

// ErrEmptyRange indicates a range whose start is greater than its end.
var ErrEmptyRange = errors.New("range start is greater than end")

// ErrScaledParts indicates a scaled token without two or three parts.
var ErrScaledParts = errors.New("scaled token must have 2 or 3 parts")

// ErrNoLabels indicates a label token without any label to pick.
var ErrNoLabels = errors.New("label token has no options")

// ParseError describes an operand token that could not be resolved
type ParseError struct {
	Token string
	Shape Shape
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("resolve %s operand %q: %v", e.Shape, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Value is a resolved operand: an integer for numeric modes or a label for label modes
type Value struct {
	Number  int
	Label   string
	IsLabel bool
}

// NumberValue wraps an integer operand
func NumberValue(n int) Value { return Value{Number: n} }

// LabelValue wraps a label operand
func LabelValue(s string) Value { return Value{Label: s, IsLabel: true} }

func (v Value) String() string {
	if v.IsLabel {
		return v.Label
	}
	return strconv.Itoa(v.Number)
}

// Resolver turns operand tokens into values using one shared random source.
// It is safe for concurrent use.
type Resolver struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewResolver creates a resolver. A nil rng is replaced by a time-seeded one.
func NewResolver(rng *rand.Rand) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Resolver{rng: rng}
}

// Resolve resolves a token according to the mode kind
func (r *Resolver) Resolve(token string, kind Kind) (Value, error) {
	if kind == Label {
		label, err := r.ResolveLabel(token)
		return LabelValue(label), err
	}
	n, err := r.ResolveNumber(token)
	return NumberValue(n), err
}

// ResolveLabel drops the variable name prefix and picks one comma separated label
func (r *Resolver) ResolveLabel(token string) (string, error) {
	token = strings.TrimSpace(token)
	_, size := utf8.DecodeRuneInString(token)
	var options []string
	for _, opt := range strings.Split(token[size:], ",") {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	if len(options) == 0 {
		return "", &ParseError{Token: token, Shape: ShapeLabel, Err: ErrNoLabels}
	}
	return options[r.intn(len(options))], nil
}

// ResolveNumber resolves a numeric token. Everything except digits and the
// separators ',', ':' and ';' is ignored, so "a1:9" is the range 1..9.
func (r *Resolver) ResolveNumber(token string) (int, error) {
	cleaned := cleanNumeric(token)
	shape := Classify(cleaned)

	var (
		n   int
		err error
	)
	switch shape {
	case ShapeScaled:
		n, err = r.scaled(cleaned)
	case ShapeChoice:
		n, err = r.choice(cleaned)
	case ShapeRange:
		n, err = r.inRange(cleaned)
	default:
		n, err = strconv.Atoi(cleaned)
	}
	if err != nil {
		return 0, &ParseError{Token: token, Shape: shape, Err: err}
	}
	return n, nil
}

// Classify returns the shape of a cleaned numeric token
func Classify(cleaned string) Shape {
	switch {
	case strings.Contains(cleaned, ";"):
		return ShapeScaled
	case strings.Contains(cleaned, ","):
		return ShapeChoice
	case strings.Contains(cleaned, ":"):
		return ShapeRange
	default:
		return ShapeFixed
	}
}

func cleanNumeric(token string) string {
	return strings.Map(func(c rune) rune {
		if unicode.IsDigit(c) || c == ',' || c == ':' || c == ';' {
			return c
		}
		return -1
	}, token)
}

// scaled handles "left;right" (each part fixed, choice or range, multiplied)
// and "d;start;end" (d times a value in start..end).
func (r *Resolver) scaled(s string) (int, error) {
	parts := strings.Split(s, ";")
	switch len(parts) {
	case 2:
		left, err := r.simple(parts[0])
		if err != nil {
			return 0, err
		}
		right, err := r.simple(parts[1])
		if err != nil {
			return 0, err
		}
		return left * right, nil
	case 3:
		d, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, err
		}
		v, err := r.between(parts[1], parts[2])
		if err != nil {
			return 0, err
		}
		return d * v, nil
	default:
		return 0, ErrScaledParts
	}
}

func (r *Resolver) simple(s string) (int, error) {
	switch Classify(s) {
	case ShapeChoice:
		return r.choice(s)
	case ShapeRange:
		return r.inRange(s)
	default:
		return strconv.Atoi(s)
	}
}

func (r *Resolver) choice(s string) (int, error) {
	parts := strings.Split(s, ",")
	options := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, err
		}
		options = append(options, n)
	}
	return options[r.intn(len(options))], nil
}

func (r *Resolver) inRange(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("range needs start:end, got %q", s)
	}
	return r.between(parts[0], parts[1])
}

func (r *Resolver) between(startStr, endStr string) (int, error) {
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return 0, err
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return 0, err
	}
	if start > end {
		return 0, ErrEmptyRange
	}
	return start + r.intn(end-start+1), nil
}

func (r *Resolver) intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}
