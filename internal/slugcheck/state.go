// Package slugcheck gives live, advisory feedback on whether a slug being
// typed is free. A pure reducer decides what happens on every event; the
// Checker runs the timers and queries the reducer asks for.
//
// Every candidate change starts a new generation. Timer and query events
// carry the generation they were issued for and are dropped once a newer
// candidate exists, so a superseded check never resolves into state.
package slugcheck

import (
	"unicode/utf8"

	"github.com/atinyakov/slugshare/internal/slug"
)

const DefaultMinLength = 2

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseChecking
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseChecking:
		return "checking"
	case PhaseResolved:
		return "resolved"
	default:
		return "idle"
	}
}

// State is the client view of one candidate.
type State struct {
	Candidate string
	Exclude   string
	MinLength int

	Phase Phase
	// Available is nil while unknown.
	Available   *bool
	ValidFormat bool
	Generation  uint64
}

// NewState returns the idle state for an empty candidate.
func NewState(minLength int) State {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return State{MinLength: minLength}
}

// Eligible reports whether the candidate may be sent to the server.
func (s State) Eligible() bool {
	return s.Candidate != "" &&
		utf8.RuneCountInString(s.Candidate) >= s.MinLength &&
		s.Candidate != s.Exclude &&
		s.ValidFormat
}

type Status string

const (
	StatusNone      Status = ""
	StatusChecking  Status = "checking"
	StatusInvalid   Status = "invalid format"
	StatusAvailable Status = "available"
	StatusTaken     Status = "taken"
)

// Status is what the indicator shows. It is visible once the candidate
// reaches the minimum length, eligible or not.
func (s State) Status() Status {
	if utf8.RuneCountInString(s.Candidate) < s.MinLength {
		return StatusNone
	}

	switch {
	case s.Phase == PhaseChecking:
		return StatusChecking
	case !s.ValidFormat:
		return StatusInvalid
	case s.Phase == PhaseResolved && s.Available != nil && *s.Available:
		return StatusAvailable
	case s.Phase == PhaseResolved && s.Available != nil:
		return StatusTaken
	default:
		return StatusNone
	}
}

type Event interface {
	isEvent()
}

// CandidateChanged is sent on every edit of the candidate or exclude value.
type CandidateChanged struct {
	Candidate string
	Exclude   string
}

// TimerFired means the debounce interval for Generation elapsed.
type TimerFired struct {
	Generation uint64
}

type ResultReceived struct {
	Generation uint64
	Available  bool
}

type ResultFailed struct {
	Generation uint64
	Err        error
}

func (CandidateChanged) isEvent() {}
func (TimerFired) isEvent()       {}
func (ResultReceived) isEvent()   {}
func (ResultFailed) isEvent()     {}

type CommandKind int

const (
	// CmdNone leaves timers and queries alone.
	CmdNone CommandKind = iota
	// CmdCancel drops the pending timer and in-flight query.
	CmdCancel
	// CmdSchedule replaces any pending work with a timer for Generation.
	CmdSchedule
	// CmdQuery runs one availability query for Generation.
	CmdQuery
)

type Command struct {
	Kind       CommandKind
	Generation uint64
	Slug       string
	Exclude    string
}

// Reduce applies ev to s.
func Reduce(s State, ev Event) (State, Command) {
	switch e := ev.(type) {
	case CandidateChanged:
		s.Generation++
		s.Candidate = e.Candidate
		s.Exclude = e.Exclude
		s.ValidFormat = slug.Validate(e.Candidate) == nil
		s.Available = nil

		if !s.Eligible() {
			s.Phase = PhaseIdle
			return s, Command{Kind: CmdCancel}
		}

		s.Phase = PhaseChecking
		return s, Command{Kind: CmdSchedule, Generation: s.Generation}

	case TimerFired:
		if e.Generation != s.Generation || s.Phase != PhaseChecking {
			return s, Command{}
		}
		return s, Command{Kind: CmdQuery, Generation: s.Generation, Slug: s.Candidate, Exclude: s.Exclude}

	case ResultReceived:
		if e.Generation != s.Generation || s.Phase != PhaseChecking {
			return s, Command{}
		}
		available := e.Available
		s.Phase = PhaseResolved
		s.Available = &available
		return s, Command{}

	case ResultFailed:
		if e.Generation != s.Generation || s.Phase != PhaseChecking {
			return s, Command{}
		}
		s.Phase = PhaseIdle
		s.Available = nil
		return s, Command{}
	}

	return s, Command{}
}
