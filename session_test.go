package main

import (
	"errors"
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		apiKey:         "test-key-123",
		timer:          60,
		countdown:      5,
		clientTimeout:  time.Minute,
		sessionTimeout: 0,
	}
}

func testSession(cfg *Config) *Session {
	source, _ := newWordSource("")
	return newSession("happy-cat-42", cfg, source)
}

func TestSessionStart(t *testing.T) {
	s := testSession(testConfig())

	if s.Phase != PhaseLobby {
		t.Fatalf("new session phase = %q, want %q", s.Phase, PhaseLobby)
	}
	if s.CurrentWord != "" {
		t.Fatalf("new session has a current word: %q", s.CurrentWord)
	}

	if err := s.start(); err != nil {
		t.Fatalf("start from lobby: %v", err)
	}
	if s.Phase != PhasePlaying {
		t.Fatalf("phase after start = %q, want %q", s.Phase, PhasePlaying)
	}
	if s.CurrentWord == "" {
		t.Fatal("no word drawn on start")
	}

	if err := s.start(); !errors.Is(err, errInvalidPhase) {
		t.Fatalf("start while playing = %v, want errInvalidPhase", err)
	}
}

func TestSessionStartResumesFromPaused(t *testing.T) {
	s := testSession(testConfig())

	if err := s.start(); err != nil {
		t.Fatal(err)
	}
	word := s.CurrentWord

	if err := s.stop(); err != nil {
		t.Fatalf("stop while playing: %v", err)
	}
	if s.Phase != PhasePaused {
		t.Fatalf("phase after stop = %q, want %q", s.Phase, PhasePaused)
	}

	if err := s.start(); err != nil {
		t.Fatalf("resume from paused: %v", err)
	}
	if s.CurrentWord != word {
		t.Fatalf("resume redrew the word: %q -> %q", word, s.CurrentWord)
	}
}

func TestSessionStopOnlyWhilePlaying(t *testing.T) {
	s := testSession(testConfig())

	if err := s.stop(); !errors.Is(err, errInvalidPhase) {
		t.Fatalf("stop in lobby = %v, want errInvalidPhase", err)
	}
}

func TestSessionPassLimit(t *testing.T) {
	s := testSession(testConfig())

	if err := s.pass(); !errors.Is(err, errInvalidPhase) {
		t.Fatalf("pass in lobby = %v, want errInvalidPhase", err)
	}

	if err := s.start(); err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= passLimit; i++ {
		before := s.CurrentWord
		if err := s.pass(); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
		if s.PassCount != i {
			t.Fatalf("pass count after pass %d = %d", i, s.PassCount)
		}
		if s.CurrentWord == before {
			t.Fatalf("pass %d did not change the word", i)
		}
	}

	word := s.CurrentWord
	if err := s.pass(); !errors.Is(err, errLimitExceeded) {
		t.Fatalf("pass beyond limit = %v, want errLimitExceeded", err)
	}
	if s.PassCount != passLimit || s.CurrentWord != word {
		t.Fatal("rejected pass mutated state")
	}
}

func TestSessionScore(t *testing.T) {
	s := testSession(testConfig())

	if err := s.score(true); !errors.Is(err, errInvalidPhase) {
		t.Fatalf("score in lobby = %v, want errInvalidPhase", err)
	}

	if err := s.start(); err != nil {
		t.Fatal(err)
	}
	if err := s.score(true); !errors.Is(err, errInvalidPhase) {
		t.Fatalf("score while playing = %v, want errInvalidPhase", err)
	}

	if err := s.stop(); err != nil {
		t.Fatal(err)
	}

	s.PassCount = 2
	word := s.CurrentWord

	if err := s.score(true); err != nil {
		t.Fatalf("score while paused: %v", err)
	}
	if s.Correct != 1 || s.Incorrect != 0 {
		t.Fatalf("stats after correct = %d/%d", s.Correct, s.Incorrect)
	}
	if s.PassCount != 0 {
		t.Fatalf("pass count not reset: %d", s.PassCount)
	}
	if s.CurrentWord == word {
		t.Fatal("scoring did not draw a new word")
	}
	if s.Phase != PhasePaused {
		t.Fatalf("phase after scoring = %q, want %q", s.Phase, PhasePaused)
	}

	if err := s.score(false); err != nil {
		t.Fatal(err)
	}
	if s.Incorrect != 1 {
		t.Fatalf("incorrect not incremented: %d", s.Incorrect)
	}
}

func TestSessionScoreCancelsCountdown(t *testing.T) {
	s := testSession(testConfig())

	if err := s.start(); err != nil {
		t.Fatal(err)
	}
	if err := s.requestGuess(); err != nil {
		t.Fatal(err)
	}
	if s.Phase != PhaseGuessing || !s.Counting || s.Countdown != 5 {
		t.Fatalf("after request_guess: phase=%q counting=%v countdown=%d", s.Phase, s.Counting, s.Countdown)
	}

	if err := s.score(true); err != nil {
		t.Fatalf("score mid-countdown: %v", err)
	}
	if s.Phase != PhasePaused || s.Counting || s.Countdown != 0 {
		t.Fatalf("scoring did not cancel countdown: phase=%q counting=%v countdown=%d", s.Phase, s.Counting, s.Countdown)
	}
}

func TestSessionRequestGuessOnlyWhilePlaying(t *testing.T) {
	s := testSession(testConfig())

	if err := s.requestGuess(); !errors.Is(err, errInvalidPhase) {
		t.Fatalf("request_guess in lobby = %v, want errInvalidPhase", err)
	}
}

func TestSessionCountdownAutoReturns(t *testing.T) {
	s := testSession(testConfig())

	if err := s.start(); err != nil {
		t.Fatal(err)
	}
	s.Timer = 42
	if err := s.requestGuess(); err != nil {
		t.Fatal(err)
	}

	for i := 4; i >= 1; i-- {
		if changed := s.tick(); changed {
			t.Fatalf("phase changed with countdown at %d", s.Countdown)
		}
		if s.Countdown != i {
			t.Fatalf("countdown = %d, want %d", s.Countdown, i)
		}
		if s.Timer != 42 {
			t.Fatal("play timer moved during countdown")
		}
	}

	if changed := s.tick(); !changed {
		t.Fatal("countdown reaching zero did not change phase")
	}
	if s.Phase != PhasePlaying || s.Counting {
		t.Fatalf("after countdown: phase=%q counting=%v", s.Phase, s.Counting)
	}
	if s.Timer != 42 {
		t.Fatalf("play timer did not resume from pre-countdown value: %d", s.Timer)
	}
}

func TestSessionAdjustTimerFloorsAtZero(t *testing.T) {
	s := testSession(testConfig())

	s.Timer = 5
	s.adjustTimer(-100)
	if s.Timer != 0 {
		t.Fatalf("timer after -100 = %d, want 0", s.Timer)
	}

	s.adjustTimer(10)
	if s.Timer != 10 {
		t.Fatalf("timer after +10 = %d, want 10", s.Timer)
	}
}

func TestSessionTimerTick(t *testing.T) {
	s := testSession(testConfig())

	if err := s.start(); err != nil {
		t.Fatal(err)
	}
	s.Timer = 2

	if changed := s.tick(); changed || s.Timer != 1 {
		t.Fatalf("first tick: changed=%v timer=%d", changed, s.Timer)
	}
	if changed := s.tick(); !changed || s.Timer != 0 {
		t.Fatalf("final tick: changed=%v timer=%d", changed, s.Timer)
	}
	if s.Phase != PhasePaused {
		t.Fatalf("phase after time up = %q, want %q", s.Phase, PhasePaused)
	}

	// Paused sessions don't tick.
	if changed := s.tick(); changed || s.Timer != 0 {
		t.Fatalf("tick while paused: changed=%v timer=%d", changed, s.Timer)
	}
}

func TestSessionReset(t *testing.T) {
	cfg := testConfig()
	s := testSession(cfg)

	if err := s.start(); err != nil {
		t.Fatal(err)
	}
	s.Timer = 3
	s.Correct = 4
	s.Incorrect = 2
	s.PassCount = 1

	s.resetGame()

	if s.Phase != PhaseLobby {
		t.Fatalf("phase after reset = %q, want %q", s.Phase, PhaseLobby)
	}
	if s.CurrentWord != "" {
		t.Fatalf("word survived reset: %q", s.CurrentWord)
	}
	if s.Timer != cfg.timer {
		t.Fatalf("timer after reset = %d, want %d", s.Timer, cfg.timer)
	}
	if s.Correct != 0 || s.Incorrect != 0 || s.PassCount != 0 {
		t.Fatal("stats survived reset")
	}
}

func TestSessionSnapshot(t *testing.T) {
	s := testSession(testConfig())

	snap := s.snapshot([]string{RoleController})
	if snap.CurrentWord != nil {
		t.Fatalf("lobby snapshot has a word: %q", *snap.CurrentWord)
	}
	if snap.State != PhaseLobby || snap.UUID != "happy-cat-42" {
		t.Fatalf("snapshot = %+v", snap)
	}

	if err := s.start(); err != nil {
		t.Fatal(err)
	}
	s.Correct = 3
	s.Incorrect = 1

	snap = s.snapshot(nil)
	if snap.CurrentWord == nil || *snap.CurrentWord != s.CurrentWord {
		t.Fatal("snapshot word does not match session word")
	}
	if snap.Stats.TotalPoints != 2 {
		t.Fatalf("total points = %d, want 2", snap.Stats.TotalPoints)
	}
}
