package question

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Shopify/go-lua"
)

// ErrUnsupportedExpression indicates characters outside the arithmetic alphabet.
var ErrUnsupportedExpression = errors.New("expression contains unsupported characters")

// ErrNotFinite indicates a result that is infinite or NaN, e.g. a division by zero.
var ErrNotFinite = errors.New("expression result is not finite")

// EvalError describes an answer expression that could not be evaluated
type EvalError struct {
	Expr string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate %q: %v", e.Expr, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// Operators are padded with spaces so "5--3" is not read as a Lua comment.
var operatorSpacer = strings.NewReplacer(
	"+", " + ",
	"-", " - ",
	"*", " * ",
	"/", " / ",
	"%", " % ",
	"^", " ^ ",
	"(", " ( ",
	")", " ) ",
)

// Evaluate computes an infix arithmetic expression and truncates the result to an int.
// Only digits, '.', whitespace, parentheses and + - * / % ^ are accepted; the
// expression runs in a Lua state without any library opened.
func Evaluate(expr string) (int, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, &EvalError{Expr: expr, Err: ErrUnsupportedExpression}
	}
	for _, c := range expr {
		if !isArithmetic(c) {
			return 0, &EvalError{Expr: expr, Err: ErrUnsupportedExpression}
		}
	}

	l := lua.NewState()
	if err := lua.LoadString(l, "return "+operatorSpacer.Replace(expr)); err != nil {
		return 0, &EvalError{Expr: expr, Err: err}
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		return 0, &EvalError{Expr: expr, Err: err}
	}

	f, ok := l.ToNumber(-1)
	l.Pop(1)
	if !ok {
		return 0, &EvalError{Expr: expr, Err: errors.New("result is not a number")}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return 0, &EvalError{Expr: expr, Err: ErrNotFinite}
	}
	return int(f), nil
}

func isArithmetic(c rune) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case strings.ContainsRune("+-*/%^(). \t", c):
		return true
	default:
		return false
	}
}
