package pegkit

import (
	"sort"
	"time"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("pegkit")

// MatchEvent describes one finished match attempt
type MatchEvent struct {
	Path    MatcherPath
	Matched bool

	// Start and End delimit the text consumed.  They're equal for
	// failed attempts.
	Start, End int
}

// MatchListener is called after every match attempt of a run.
// Listeners are called synchronously, from the goroutine doing the
// run.
type MatchListener func(MatchEvent)

// ParseRunner runs a grammar over inputs.  It keeps no state between
// runs, so a single ParseRunner can serve any number of goroutines.
type ParseRunner struct {
	root      Matcher
	cfg       *Config
	listeners []MatchListener
}

// NewParseRunner creates a runner for the grammar starting at `root`.
// A nil configuration means the defaults of `NewConfig`.
func NewParseRunner(root Matcher, cfg *Config) *ParseRunner {
	checkNotNil("runner", root)
	if cfg == nil {
		cfg = NewConfig()
	}
	return &ParseRunner{root: root, cfg: cfg}
}

// AddListener registers `l` to be called on every match attempt.  It
// must not be called while runs are in progress.
func (r *ParseRunner) AddListener(l MatchListener) *ParseRunner {
	r.listeners = append(r.listeners, l)
	return r
}

// Run matches the grammar against `input`
func (r *ParseRunner) Run(input string) *ParsingResult {
	return r.RunBuffer(NewInputBuffer(input))
}

// RunBuffer matches the grammar against `input` with a fresh value
// stack
func (r *ParseRunner) RunBuffer(input InputBuffer) *ParsingResult {
	return r.RunWithStack(input, NewValueStack())
}

// RunWithStack matches the grammar against `input`, with actions
// working on `stack`.
func (r *ParseRunner) RunWithStack(input InputBuffer, stack *ValueStack) *ParsingResult {
	rs := &runState{
		input:        input,
		stack:        stack,
		buildTree:    r.cfg.GetBool("runner.build_tree"),
		reportErrors: r.cfg.GetBool("runner.report_errors"),
		trace:        r.cfg.GetBool("runner.trace") && log.AllowLevel(commonlog.Debug),
		regexTimeout: time.Duration(r.cfg.GetInt("regex.timeout_ms")) * time.Millisecond,
		logger:       log,
		listeners:    r.listeners,
		farthest:     -1,
	}
	log.Debugf("running %s over %d characters", r.root.Label(), input.Length())

	root := rs.frame(0)
	root.reset(nil, r.root, 0)
	matched := root.Run()

	if !matched && rs.reportErrors {
		// nothing recorded means only actions failed, blame
		// the start of the input
		at := max(rs.farthest, 0)
		rs.errors = append(rs.errors, &ParseError{
			Type:  ErrorType_InvalidInput,
			Start: at,
			End:   at + 1,
			Paths: rs.failPaths,
			Input: input,
		})
	}
	sort.SliceStable(rs.errors, func(i, j int) bool {
		return rs.errors[i].Start < rs.errors[j].Start
	})

	result := &ParsingResult{
		Matched:    matched,
		ValueStack: stack,
		Errors:     rs.errors,
		Input:      input,
		Root:       rs.root,
		End:        root.current,
	}
	if !stack.IsEmpty() {
		result.Value, _ = stack.Peek()
	}
	log.Debugf("run of %s finished: matched=%t end=%d errors=%d", r.root.Label(), matched, result.End, len(result.Errors))
	return result
}

// ParsingResult is the outcome of a run
type ParsingResult struct {
	Matched bool

	// ValueStack is the stack the actions of the run worked on
	ValueStack *ValueStack

	// Errors holds action errors and, when the run didn't match,
	// the invalid input error, sorted by position
	Errors []*ParseError

	// Input is the buffer the run matched against
	Input InputBuffer

	// Root is the root of the parse tree, nil unless tree building
	// was enabled and the run matched
	Root *Node

	// Value is the top of the value stack, nil if it's empty
	Value any

	// End is where the root matcher stopped consuming input
	End int
}

func (r *ParsingResult) HasErrors() bool { return len(r.Errors) > 0 }

// PrintErrors renders all the errors of the result
func (r *ParsingResult) PrintErrors() string { return PrintParseErrors(r.Errors) }

// ConsumedAll returns true if the run matched the whole input
func (r *ParsingResult) ConsumedAll() bool {
	return r.Matched && r.End == r.Input.Length()
}
