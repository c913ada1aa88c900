package main

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/slugshare/internal/app/service"
	"github.com/atinyakov/slugshare/internal/slugcheck"
)

type recordingSetter struct {
	candidates []string
	excludes   []string
}

func (r *recordingSetter) Set(candidate, exclude string) {
	r.candidates = append(r.candidates, candidate)
	r.excludes = append(r.excludes, exclude)
}

func typeText(m tea.Model, text string) tea.Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestModel_KeystrokesFeedChecker(t *testing.T) {
	setter := &recordingSetter{}
	m := typeText(newModel(setter, "", 2), "abc")

	assert.Equal(t, []string{"a", "ab", "abc"}, setter.candidates)
	assert.Equal(t, "abc", m.(model).input.Value())
}

func TestModel_EditStartsFromExclude(t *testing.T) {
	setter := &recordingSetter{}
	m := typeText(newModel(setter, "mine", 2), "2")

	require.Len(t, setter.candidates, 1)
	assert.Equal(t, "mine2", setter.candidates[0])
	assert.Equal(t, "mine", setter.excludes[0])
	_ = m
}

func TestModel_StaleStateIgnored(t *testing.T) {
	setter := &recordingSetter{}
	m := typeText(newModel(setter, "", 2), "abcd")

	yes := true
	m, _ = m.Update(stateMsg(slugcheck.State{Candidate: "abc", MinLength: 2, ValidFormat: true, Phase: slugcheck.PhaseResolved, Available: &yes}))
	assert.Equal(t, slugcheck.StatusNone, m.(model).state.Status())

	m, _ = m.Update(stateMsg(slugcheck.State{Candidate: "abcd", MinLength: 2, ValidFormat: true, Phase: slugcheck.PhaseResolved, Available: &yes}))
	assert.Equal(t, slugcheck.StatusAvailable, m.(model).state.Status())
	assert.Contains(t, m.View(), "available")
}

func TestModel_Quit(t *testing.T) {
	_, cmd := newModel(&recordingSetter{}, "", 2).Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRenderStatus(t *testing.T) {
	assert.Empty(t, renderStatus(slugcheck.State{Candidate: "a", MinLength: 2}))
	assert.Contains(t, renderStatus(slugcheck.State{Candidate: "a b", MinLength: 2}), "invalid format")
	assert.Contains(t, renderStatus(slugcheck.State{Candidate: "ab", MinLength: 2, Phase: slugcheck.PhaseChecking}), "checking")
}

func TestParseFlags(t *testing.T) {
	t.Setenv("SLUGSHARE_TOKEN", "")

	_, err := parseFlags(nil)
	assert.Error(t, err)

	o, err := parseFlags([]string{"--secret", "dev", "--user", "alice", "--exclude", "old", "--debounce", "250ms"})
	require.NoError(t, err)
	assert.Equal(t, "old", o.exclude)
	assert.Equal(t, "250ms", o.debounce.String())

	claims, err := service.NewAuth("dev").ParseRawJWT(o.token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Owner())
}

type freeSource struct{}

func (freeSource) Check(context.Context, string, string) (bool, error) {
	return true, nil
}

func TestProgram_TypingReachesAvailable(t *testing.T) {
	var (
		program *tea.Program
		once    sync.Once
	)
	// Quit once the model is handed an available state; the quit is queued
	// behind the message being filtered.
	quitOnAvailable := tea.WithFilter(func(_ tea.Model, msg tea.Msg) tea.Msg {
		if st, ok := msg.(stateMsg); ok && slugcheck.State(st).Status() == slugcheck.StatusAvailable {
			once.Do(func() { go program.Quit() })
		}
		return msg
	})

	o := &options{minLength: 2, debounce: 10 * time.Millisecond}
	program, checker := newProgram(freeSource{}, o,
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		quitOnAvailable,
	)
	defer checker.Close()

	type result struct {
		m   tea.Model
		err error
	}
	done := make(chan result, 1)
	go func() {
		m, err := program.Run()
		done <- result{m, err}
	}()

	for _, r := range "ab" {
		program.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	select {
	case res := <-done:
		require.NoError(t, res.err)
		final := res.m.(model)
		assert.Equal(t, "ab", final.input.Value())
		assert.Equal(t, slugcheck.StatusAvailable, final.state.Status())
		assert.Contains(t, final.View(), "available")
	case <-time.After(3 * time.Second):
		program.Kill()
		t.Fatalf("program did not quit; checker state %+v", checker.State())
	}
}
