package pegkit

import (
	"errors"
	"fmt"
)

// ErrActionPanic is wrapped by the error recorded when an action
// function panics.
var ErrActionPanic = errors.New("action panicked")

// ActionFunc is the code run by an action matcher.  It receives the
// activation of the matcher that contains the action, so `ctx.Match()`
// returns the text matched right before it.  Returning false makes
// the action fail; returning an error also makes it fail and records
// the error in the result of the run, and so does a panic.  Either
// way, every change made to the value stack and to the cursor during
// the call is undone.
type ActionFunc func(ctx *Context) (bool, error)

type actionMatcher struct {
	baseMatcher
	fn        ActionFunc
	skippable bool
}

// Action creates a matcher that runs `fn` without consuming input.
func Action(fn ActionFunc) Matcher {
	return newAction("Action", fn, false)
}

// SkippableAction is an Action that isn't run (and succeeds) within
// Test and TestNot.
func SkippableAction(fn ActionFunc) Matcher {
	return newAction("Action", fn, true)
}

func newAction(label string, fn ActionFunc, skippable bool) *actionMatcher {
	if fn == nil {
		grammarErrorf("action without a function")
	}
	return &actionMatcher{
		baseMatcher: baseMatcher{label: label, typ: MatcherType_Action, kind: MatcherKind_Action},
		fn:          fn,
		skippable:   skippable,
	}
}

func (m *actionMatcher) Match(ctx *Context) bool {
	if m.skippable && ctx.inPredicate {
		return true
	}
	target := ctx.parent
	if target == nil {
		target = ctx
	}
	stack := ctx.Stack()
	snapshot := stack.TakeSnapshot()
	current, match, hasMatch, nodes := target.current, target.match, target.hasMatch, len(target.nodes)

	// the action may run matchers of its own on `target`, which
	// recycles the activation we're in
	saved := *ctx
	ok, err := m.call(target)
	*ctx = saved

	if err != nil || !ok {
		stack.RestoreSnapshot(snapshot)
		target.current, target.match, target.hasMatch = current, match, hasMatch
		target.truncateNodes(nodes)
	}
	if err != nil {
		ctx.AddError(&ParseError{
			Type:  ErrorType_Action,
			Start: target.current,
			End:   target.current,
			Cause: err,
		})
		return false
	}
	if !ok {
		return false
	}
	ctx.current = target.current
	return true
}

// call runs the action function.  A panic becomes an error wrapping
// ErrActionPanic, except for grammar errors which are programming
// errors of the grammar itself.
func (m *actionMatcher) call(ctx *Context) (ok bool, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if gerr, isGrammarErr := r.(*GrammarError); isGrammarErr {
			panic(gerr)
		}
		if rerr, isErr := r.(error); isErr {
			err = fmt.Errorf("%w: %w", ErrActionPanic, rerr)
		} else {
			err = fmt.Errorf("%w: %v", ErrActionPanic, r)
		}
		ok = false
	}()
	return m.fn(ctx)
}

// PushValue pushes `value` on the value stack.  It's skipped within
// predicates.
func PushValue(value any) Matcher {
	return newAction("PushValue", func(ctx *Context) (bool, error) {
		ctx.Stack().Push(value)
		return true, nil
	}, true)
}

// PushMatch pushes the text matched right before it on the value
// stack.  It's skipped within predicates.
func PushMatch() Matcher {
	return newAction("PushMatch", func(ctx *Context) (bool, error) {
		ctx.Stack().Push(ctx.Match())
		return true, nil
	}, true)
}
