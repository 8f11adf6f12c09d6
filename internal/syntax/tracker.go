package syntax

import "errors"

// DefaultNestLimit bounds the depth of open groups when Options.NestLimit is
// zero.
const DefaultNestLimit = 250

// ErrEmptyStack is returned by Tracker.Pop when no group is open.
var ErrEmptyStack = errors.New("syntax: no open group")

// GroupFrame records one open group while its body is being parsed.
type GroupFrame struct {
	Kind    GroupKind
	Start   int // offset of the opening '('
	Ordinal int // capture index, 0 for non-capturing kinds
	Name    string

	set, clear Flags // from (?flags:...)

	// parser state saved when the group opened, restored when it closes
	saved branchState
}

// Tracker is the group-balance stack. It is owned by a single parse call.
type Tracker struct {
	frames []GroupFrame
	limit  int
}

// NewTracker returns a tracker that refuses to nest deeper than limit. A
// non-positive limit selects DefaultNestLimit.
func NewTracker(limit int) *Tracker {
	if limit <= 0 {
		limit = DefaultNestLimit
	}
	return &Tracker{limit: limit}
}

// Push opens a frame. It fails with ErrRecursionLimitExceeded once the limit
// would be exceeded; the frame is not pushed in that case.
func (t *Tracker) Push(f GroupFrame) error {
	if len(t.frames) >= t.limit {
		return ErrRecursionLimitExceeded
	}
	t.frames = append(t.frames, f)
	return nil
}

func (t *Tracker) Pop() (GroupFrame, error) {
	if len(t.frames) == 0 {
		return GroupFrame{}, ErrEmptyStack
	}
	f := t.frames[len(t.frames)-1]
	t.frames = t.frames[:len(t.frames)-1]
	return f, nil
}

// Peek returns the innermost open frame.
func (t *Tracker) Peek() (GroupFrame, bool) {
	if len(t.frames) == 0 {
		return GroupFrame{}, false
	}
	return t.frames[len(t.frames)-1], true
}

func (t *Tracker) Depth() int { return len(t.frames) }

func (t *Tracker) Limit() int { return t.limit }

// IsBalancedAtEnd reports whether every opened group has been closed.
func (t *Tracker) IsBalancedAtEnd() bool { return len(t.frames) == 0 }
