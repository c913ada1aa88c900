package slugcheck

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_Eligibility(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		exclude   string
		wantPhase Phase
		wantCmd   CommandKind
	}{
		{"empty", "", "", PhaseIdle, CmdCancel},
		{"too short", "a", "", PhaseIdle, CmdCancel},
		{"bad format", "my slug", "", PhaseIdle, CmdCancel},
		{"same as exclude", "mine", "mine", PhaseIdle, CmdCancel},
		{"eligible", "report", "", PhaseChecking, CmdSchedule},
		{"eligible with other exclude", "report", "old", PhaseChecking, CmdSchedule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, cmd := Reduce(NewState(0), CandidateChanged{Candidate: tt.candidate, Exclude: tt.exclude})
			assert.Equal(t, tt.wantPhase, s.Phase)
			assert.Equal(t, tt.wantCmd, cmd.Kind)
			assert.Nil(t, s.Available)
		})
	}
}

func TestReduce_FullCycle(t *testing.T) {
	s, cmd := Reduce(NewState(2), CandidateChanged{Candidate: "report"})
	require.Equal(t, CmdSchedule, cmd.Kind)
	gen := cmd.Generation

	s, cmd = Reduce(s, TimerFired{Generation: gen})
	require.Equal(t, CmdQuery, cmd.Kind)
	assert.Equal(t, "report", cmd.Slug)
	assert.Equal(t, StatusChecking, s.Status())

	s, cmd = Reduce(s, ResultReceived{Generation: gen, Available: false})
	assert.Equal(t, CmdNone, cmd.Kind)
	assert.Equal(t, PhaseResolved, s.Phase)
	assert.Equal(t, StatusTaken, s.Status())
}

func TestReduce_StaleEventsDropped(t *testing.T) {
	s, first := Reduce(NewState(2), CandidateChanged{Candidate: "abc"})
	s, _ = Reduce(s, TimerFired{Generation: first.Generation})

	s, second := Reduce(s, CandidateChanged{Candidate: "abcd"})
	require.Greater(t, second.Generation, first.Generation)

	// The result of the superseded query must not leak into state.
	after, cmd := Reduce(s, ResultReceived{Generation: first.Generation, Available: true})
	assert.Equal(t, s, after)
	assert.Equal(t, CmdNone, cmd.Kind)

	after, cmd = Reduce(s, TimerFired{Generation: first.Generation})
	assert.Equal(t, s, after)
	assert.Equal(t, CmdNone, cmd.Kind)
}

func TestReduce_FailureIsUnknown(t *testing.T) {
	s, cmd := Reduce(NewState(2), CandidateChanged{Candidate: "report"})
	s, _ = Reduce(s, TimerFired{Generation: cmd.Generation})

	s, _ = Reduce(s, ResultFailed{Generation: cmd.Generation, Err: errors.New("offline")})
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Nil(t, s.Available)
	assert.Equal(t, StatusNone, s.Status())
}

func TestReduce_IneligibleResetsResolved(t *testing.T) {
	s, cmd := Reduce(NewState(2), CandidateChanged{Candidate: "report"})
	s, _ = Reduce(s, TimerFired{Generation: cmd.Generation})
	s, _ = Reduce(s, ResultReceived{Generation: cmd.Generation, Available: true})
	require.Equal(t, StatusAvailable, s.Status())

	s, cmd = Reduce(s, CandidateChanged{Candidate: "r"})
	assert.Equal(t, CmdCancel, cmd.Kind)
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Nil(t, s.Available)
}

func TestStatus_DisplayPolicy(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name  string
		state State
		want  Status
	}{
		{"below min length", State{Candidate: "a", MinLength: 2, Phase: PhaseChecking}, StatusNone},
		{"checking wins", State{Candidate: "ab", MinLength: 2, Phase: PhaseChecking}, StatusChecking},
		{"invalid format", State{Candidate: "a b", MinLength: 2}, StatusInvalid},
		{"available", State{Candidate: "ab", MinLength: 2, ValidFormat: true, Phase: PhaseResolved, Available: &yes}, StatusAvailable},
		{"taken", State{Candidate: "ab", MinLength: 2, ValidFormat: true, Phase: PhaseResolved, Available: &no}, StatusTaken},
		{"idle unknown", State{Candidate: "ab", MinLength: 2, ValidFormat: true}, StatusNone},
		{"own slug shows nothing", State{Candidate: "mine", Exclude: "mine", MinLength: 2, ValidFormat: true}, StatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Status())
		})
	}
}

func TestReduce_InvalidFormatShownWithoutQuery(t *testing.T) {
	s, cmd := Reduce(NewState(2), CandidateChanged{Candidate: "my doc"})
	assert.Equal(t, CmdCancel, cmd.Kind)
	assert.Equal(t, StatusInvalid, s.Status())
}
