package main

// Game phases. A session starts in lobby and only ever leaves guessing
// through the countdown expiring or a controller scoring command.
const (
	PhaseLobby    = "lobby"
	PhasePlaying  = "playing"
	PhasePaused   = "paused"
	PhaseGuessing = "guessing"
)

const passLimit = 3

// Session holds the authoritative game state for one running game. All
// mutation goes through the command methods below, serialized by the
// owning hub's lock; nothing here touches the network.
type Session struct {
	UUID        string
	Phase       string
	CurrentWord string // empty while in lobby
	Timer       int
	Countdown   int
	Counting    bool
	PassCount   int
	Correct     int
	Incorrect   int

	timerDefault   int
	countdownStart int
	deck           *WordDeck
}

func newSession(uuid string, cfg *Config, source *WordSource) *Session {
	return &Session{
		UUID:           uuid,
		Phase:          PhaseLobby,
		Timer:          cfg.timer,
		timerDefault:   cfg.timer,
		countdownStart: cfg.countdown,
		deck:           source.deck(),
	}
}

// start handles start_game: leave lobby or paused and run the clock.
func (s *Session) start() error {
	if s.Phase != PhaseLobby && s.Phase != PhasePaused {
		return errInvalidPhase
	}
	if s.CurrentWord == "" {
		s.CurrentWord = s.deck.draw("")
	}
	s.Phase = PhasePlaying
	return nil
}

// stop handles stop_game and the play timer running out.
func (s *Session) stop() error {
	if s.Phase != PhasePlaying {
		return errInvalidPhase
	}
	s.Phase = PhasePaused
	return nil
}

// pass handles pass_word: swap the word without scoring, capped at
// passLimit per word cycle.
func (s *Session) pass() error {
	if s.Phase != PhasePlaying {
		return errInvalidPhase
	}
	if s.PassCount >= passLimit {
		return errLimitExceeded
	}
	s.PassCount++
	s.CurrentWord = s.deck.draw(s.CurrentWord)
	return nil
}

// score handles mark_word_correct/mark_word_incorrect. Only valid while
// the round is stopped for scoring; a scoring command arriving during a
// guess countdown cancels the countdown and leaves the session paused.
func (s *Session) score(correct bool) error {
	if s.Phase == PhasePlaying || s.Phase == PhaseLobby {
		return errInvalidPhase
	}
	if correct {
		s.Correct++
	} else {
		s.Incorrect++
	}
	s.CurrentWord = s.deck.draw(s.CurrentWord)
	s.PassCount = 0
	s.Counting = false
	s.Countdown = 0
	s.Phase = PhasePaused
	return nil
}

// requestGuess handles request_guess: freeze the play timer and give
// the guesser a short countdown to say the word out loud.
func (s *Session) requestGuess() error {
	if s.Phase != PhasePlaying {
		return errInvalidPhase
	}
	s.Phase = PhaseGuessing
	s.Countdown = s.countdownStart
	s.Counting = true
	return nil
}

// adjustTimer handles adjust_timer, valid in any phase. The play timer
// never goes negative.
func (s *Session) adjustTimer(delta int) {
	s.Timer += delta
	if s.Timer < 0 {
		s.Timer = 0
	}
}

// resetGame returns the session to a fresh lobby. Identity and
// connection bindings survive; everything else is wiped.
func (s *Session) resetGame() {
	s.Phase = PhaseLobby
	s.CurrentWord = ""
	s.Timer = s.timerDefault
	s.Countdown = 0
	s.Counting = false
	s.PassCount = 0
	s.Correct = 0
	s.Incorrect = 0
	s.deck.reset()
}

// tick advances the active clock by one second. It reports whether the
// snapshot-worthy state changed beyond the counter itself (phase
// transitions on reaching zero).
func (s *Session) tick() (phaseChanged bool) {
	switch s.Phase {
	case PhasePlaying:
		if s.Timer > 0 {
			s.Timer--
		}
		if s.Timer == 0 {
			// Time up, same effect as an implicit stop_game.
			s.Phase = PhasePaused
			return true
		}
	case PhaseGuessing:
		if s.Countdown > 0 {
			s.Countdown--
		}
		if s.Countdown == 0 {
			s.Counting = false
			s.Phase = PhasePlaying
			return true
		}
	}
	return false
}

// snapshot serializes the current state. connectedClients is supplied
// by the hub, which owns the bindings.
func (s *Session) snapshot(connectedClients []string) SessionSnapshot {
	snap := SessionSnapshot{
		UUID:             s.UUID,
		State:            s.Phase,
		ConnectedClients: connectedClients,
		Timer:            s.Timer,
		Stats: Stats{
			Correct:     s.Correct,
			Incorrect:   s.Incorrect,
			TotalPoints: s.Correct - s.Incorrect,
		},
		PassCount: s.PassCount,
	}
	if s.CurrentWord != "" {
		word := s.CurrentWord
		snap.CurrentWord = &word
	}
	return snap
}
