package pegkit

import (
	"errors"
	"fmt"
)

type ErrorType int

const (
	// ErrorType_InvalidInput is reported when the root rule fails
	// to match.  It points at the farthest failure.
	ErrorType_InvalidInput ErrorType = iota

	// ErrorType_Action is reported when an action returns an
	// error.  Matching carries on through backtracking.
	ErrorType_Action
)

func (t ErrorType) String() string {
	switch t {
	case ErrorType_InvalidInput:
		return "invalid input"
	case ErrorType_Action:
		return "action error"
	default:
		return "unknown"
	}
}

// ParseError is the error produced during a run.  It's discarded with
// the run's ParsingResult.
type ParseError struct {
	Type ErrorType

	// Start and End delimit the offending input
	Start, End int

	// Message overrides the generated message when not empty
	Message string

	// Paths holds the matcher paths that were active when the
	// error happened
	Paths []MatcherPath

	// Cause is the error returned by an action
	Cause error

	// Input is the buffer the indices refer to
	Input InputBuffer
}

// Error returns the human readable, line annotated representation of
// the error.
func (e *ParseError) Error() string {
	if e.Input == nil {
		return fmt.Sprintf("%s @ %d..%d", e.message(), e.Start, e.End)
	}
	return PrintParseError(e)
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (e *ParseError) message() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Type {
	case ErrorType_Action:
		if e.Cause != nil {
			return e.Cause.Error()
		}
	case ErrorType_InvalidInput:
		if e.Input != nil {
			return formatInvalidInput(e)
		}
	}
	return e.Type.String()
}

// GrammarError is raised (as a panic) by the matcher builders when
// they receive invalid parameters.  `BuildGrammar` turns it back into
// an error.
type GrammarError struct {
	Message string
}

func (e *GrammarError) Error() string { return "invalid grammar: " + e.Message }

func grammarErrorf(format string, args ...any) {
	panic(&GrammarError{Message: fmt.Sprintf(format, args...)})
}

// BuildGrammar calls `build` and returns the matcher it creates, or
// the *GrammarError any of the builders raised along the way.
func BuildGrammar(build func() Matcher) (m Matcher, err error) {
	defer func() {
		if r := recover(); r != nil {
			gerr, ok := r.(*GrammarError)
			if !ok {
				panic(r)
			}
			m, err = nil, gerr
		}
	}()
	return build(), nil
}

// IndentationError is returned by NewIndentDedentBuffer in strict
// mode when a line dedents to a level no enclosing block uses.
type IndentationError struct {
	Index    int
	Position Position
}

func (e *IndentationError) Error() string {
	return fmt.Sprintf("illegal indentation at line %d, column %d", e.Position.Line, e.Position.Column)
}

func IsIndentationError(err error) bool {
	var ierr *IndentationError
	return errors.As(err, &ierr)
}
