package pegkit

import (
	"errors"
	"fmt"
)

var (
	// ErrStackUnderflow is wrapped by every stack operation that
	// needs more values than the stack holds.
	ErrStackUnderflow = errors.New("value stack underflow")

	// ErrInvalidSwap is returned by SwapN when asked to reverse
	// less than two values.
	ErrInvalidSwap = errors.New("swap needs at least two values")
)

// stackCell is a node of the persistent list backing ValueStack.
// Cells are never mutated once linked, which is what makes snapshots
// free.
type stackCell struct {
	value any
	next  *stackCell
}

// Snapshot is an opaque state of a ValueStack returned by
// `TakeSnapshot`.
type Snapshot struct {
	head *stackCell
	size int
}

// ValueStack is the stack of semantic values shared by all the
// actions of a parse run.  Taking and restoring snapshots are O(1);
// operations reaching `n` values below the top are O(n).
type ValueStack struct {
	head *stackCell
	size int
}

func NewValueStack() *ValueStack { return &ValueStack{} }

func (s *ValueStack) Size() int     { return s.size }
func (s *ValueStack) IsEmpty() bool { return s.size == 0 }

func (s *ValueStack) Clear() {
	s.head = nil
	s.size = 0
}

func (s *ValueStack) TakeSnapshot() Snapshot {
	return Snapshot{head: s.head, size: s.size}
}

func (s *ValueStack) RestoreSnapshot(snapshot Snapshot) {
	s.head = snapshot.head
	s.size = snapshot.size
}

// Push puts `value` on top of the stack.
func (s *ValueStack) Push(value any) {
	s.head = &stackCell{value: value, next: s.head}
	s.size++
}

// PushAll pushes `values` in the order given, so the last one ends
// up on top.
func (s *ValueStack) PushAll(values ...any) {
	for _, v := range values {
		s.Push(v)
	}
}

// PushAt inserts `value` `down` values below the top.  `PushAt(0, v)`
// is the same as `Push(v)`.
func (s *ValueStack) PushAt(down int, value any) error {
	if err := s.check("push", down, down); err != nil {
		return err
	}
	top, rest := s.unlink(down)
	s.relink(top, &stackCell{value: value, next: rest})
	s.size++
	return nil
}

// Pop removes and returns the top value.
func (s *ValueStack) Pop() (any, error) { return s.PopAt(0) }

// PopAt removes and returns the value `down` values below the top.
func (s *ValueStack) PopAt(down int) (any, error) {
	if err := s.check("pop", down, down+1); err != nil {
		return nil, err
	}
	top, rest := s.unlink(down)
	s.relink(top, rest.next)
	s.size--
	return rest.value, nil
}

// Peek returns the top value without removing it.
func (s *ValueStack) Peek() (any, error) { return s.PeekAt(0) }

// PeekAt returns the value `down` values below the top.
func (s *ValueStack) PeekAt(down int) (any, error) {
	if err := s.check("peek", down, down+1); err != nil {
		return nil, err
	}
	c := s.head
	for i := 0; i < down; i++ {
		c = c.next
	}
	return c.value, nil
}

// Poke replaces the top value.
func (s *ValueStack) Poke(value any) error { return s.PokeAt(0, value) }

// PokeAt replaces the value `down` values below the top.
func (s *ValueStack) PokeAt(down int, value any) error {
	if err := s.check("poke", down, down+1); err != nil {
		return err
	}
	top, rest := s.unlink(down)
	s.relink(top, &stackCell{value: value, next: rest.next})
	return nil
}

// Dup pushes a copy of the top value.
func (s *ValueStack) Dup() error {
	v, err := s.Peek()
	if err != nil {
		return fmt.Errorf("dup: %w", ErrStackUnderflow)
	}
	s.Push(v)
	return nil
}

// Swap exchanges the two values on top of the stack.
func (s *ValueStack) Swap() error { return s.SwapN(2) }

// SwapN reverses the order of the `n` values on top of the stack.
func (s *ValueStack) SwapN(n int) error {
	if n < 2 {
		return fmt.Errorf("swap %d: %w", n, ErrInvalidSwap)
	}
	if err := s.check("swap", n, n); err != nil {
		return err
	}
	top, rest := s.unlink(n)
	// unlink returns the top values in stack order, relinking
	// them backwards reverses them
	for i, j := 0, len(top)-1; i < j; i, j = i+1, j-1 {
		top[i], top[j] = top[j], top[i]
	}
	s.relink(top, rest)
	return nil
}

// Values returns all the values, top of the stack first.
func (s *ValueStack) Values() []any {
	out := make([]any, 0, s.size)
	for c := s.head; c != nil; c = c.next {
		out = append(out, c.value)
	}
	return out
}

func (s *ValueStack) String() string {
	return fmt.Sprintf("%v", s.Values())
}

func (s *ValueStack) check(op string, down, need int) error {
	if down < 0 {
		return fmt.Errorf("%s: negative depth %d", op, down)
	}
	if s.size < need {
		return fmt.Errorf("%s at depth %d with %d value(s): %w", op, down, s.size, ErrStackUnderflow)
	}
	return nil
}

// unlink returns copies of the first `n` values and the cell right
// after them.  Cells are copied because older snapshots may still
// point at them.
func (s *ValueStack) unlink(n int) ([]any, *stackCell) {
	top := make([]any, 0, n)
	c := s.head
	for i := 0; i < n; i++ {
		top = append(top, c.value)
		c = c.next
	}
	return top, c
}

// relink rebuilds the head of the stack with `top` (in stack order)
// over `rest`.
func (s *ValueStack) relink(top []any, rest *stackCell) {
	for i := len(top) - 1; i >= 0; i-- {
		rest = &stackCell{value: top[i], next: rest}
	}
	s.head = rest
}
