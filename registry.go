package main

import (
	"fmt"
	"sync"
	"time"
)

// Session codes are memorable adjective-animal-number slugs so they can
// be read out loud across the room.
var (
	codeAdjectives = []string{
		"brave", "calm", "clever", "eager", "fancy", "gentle", "happy",
		"jolly", "keen", "lively", "lucky", "merry", "nimble", "proud",
		"quick", "quiet", "shiny", "silly", "sly", "sunny", "swift",
		"tidy", "witty", "zesty",
	}
	codeAnimals = []string{
		"badger", "bear", "cat", "crow", "deer", "dove", "falcon",
		"ferret", "fox", "goose", "hare", "heron", "lynx", "mole",
		"otter", "owl", "panda", "robin", "seal", "stork", "swan",
		"tiger", "weasel", "wolf",
	}
)

// SessionManager holds every live session hub, keyed by session code.
type SessionManager struct {
	mu   sync.Mutex
	hubs map[string]*Hub

	cfg    *Config
	source *WordSource
}

func newSessionManager(cfg *Config, source *WordSource) *SessionManager {
	sm := &SessionManager{
		hubs:   make(map[string]*Hub),
		cfg:    cfg,
		source: source,
	}
	if cfg.sessionTimeout > 0 {
		go sm.reaperLoop()
	}
	return sm
}

// createSession validates the credential and always allocates a fresh
// session, even if the same key already owns others.
func (sm *SessionManager) createSession(apiKey string) (string, error) {
	if apiKey != sm.cfg.apiKey {
		return "", errUnauthorized
	}

	code := sm.newSessionCode()
	hub := newHub(newSession(code, sm.cfg, sm.source))

	sm.mu.Lock()
	sm.hubs[code] = hub
	sm.mu.Unlock()

	go hub.run(sm.cfg)

	logf(sm.cfg, "SESSIONS: Created session %s", code)

	return code, nil
}

// joinSession revalidates the credential against an existing session.
// Rejoining is idempotent; the same code comes back on success.
func (sm *SessionManager) joinSession(apiKey, code string) (string, error) {
	if apiKey != sm.cfg.apiKey {
		return "", errUnauthorized
	}
	if sm.lookup(code) == nil {
		return "", errNotFound
	}
	return code, nil
}

func (sm *SessionManager) lookup(code string) *Hub {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.hubs[code]
}

// newSessionCode generates a crypto-random slug and ensures it doesn't
// collide with existing sessions.
func (sm *SessionManager) newSessionCode() string {
	for {
		code := fmt.Sprintf("%s-%s-%d",
			codeAdjectives[randIndex(len(codeAdjectives))],
			codeAnimals[randIndex(len(codeAnimals))],
			10+randIndex(90),
		)

		sm.mu.Lock()
		_, exists := sm.hubs[code]
		sm.mu.Unlock()

		if !exists {
			return code
		}
	}
}

// reaperLoop periodically removes sessions that have had no connected
// clients for longer than the retention window. Sessions with at least
// one live connection are never touched.
func (sm *SessionManager) reaperLoop() {
	ticker := time.NewTicker(sm.cfg.sessionTimeout / 2)
	for range ticker.C {
		sm.reap()
	}
}

func (sm *SessionManager) reap() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for code, hub := range sm.hubs {
		if idle := hub.idle(); idle > sm.cfg.sessionTimeout {
			delete(sm.hubs, code)
			go hub.close()
			logf(sm.cfg, "SESSIONS: Reaped session %s after %s idle", code, idle.Round(time.Second))
		}
	}
}
