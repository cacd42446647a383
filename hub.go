package main

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one websocket connection. role stays empty until the
// client claims a slot via a "connect" message, and is cleared again
// if another client supersedes the claim.
type Client struct {
	conn   *websocket.Conn
	send   chan any
	role   string
	closed bool // guarded by the owning hub's mu
}

type claimRequest struct {
	client *Client
	msg    ClientMessage
}

type commandRequest struct {
	client *Client
	msg    ClientMessage
}

// Hub owns one session: its state, its role bindings, and its clock.
// All mutation happens on the run loop goroutine under mu, so commands
// and ticks for a session are applied one at a time in receipt order.
type Hub struct {
	session *Session

	clients  map[*Client]bool // bound clients only
	claims   chan claimRequest
	commands chan commandRequest
	unreg    chan *Client
	done     chan struct{}

	mu sync.RWMutex

	// emptySince is set while no role is bound; the registry reaper
	// removes sessions that stay empty past the retention window.
	emptySince time.Time
}

func newHub(session *Session) *Hub {
	return &Hub{
		session:    session,
		clients:    make(map[*Client]bool),
		claims:     make(chan claimRequest, 64),
		commands:   make(chan commandRequest, 64),
		unreg:      make(chan *Client, 64),
		done:       make(chan struct{}),
		emptySince: time.Now(),
	}
}

func (h *Hub) run(cfg *Config) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return

		case cr := <-h.claims:
			h.handleClaim(cfg, cr)

		case c := <-h.unreg:
			h.handleUnregister(c)

		case cmd := <-h.commands:
			h.handleCommand(cfg, cmd)

		case <-ticker.C:
			h.handleTick()
		}
	}
}

// handleClaim binds a channel to a role slot. A claim to an occupied
// non-overlay slot supersedes the previous holder, which stays
// connected but stops receiving broadcasts until it reclaims a role.
func (h *Hub) handleClaim(cfg *Config, cr claimRequest) {
	c := cr.client
	role := cr.msg.ClientType

	h.mu.Lock()
	defer h.mu.Unlock()

	if c.closed {
		return
	}

	if !validRole(role) {
		h.sendLocked(c, ErrorMessage{Error: errBadRequest.Error()})
		return
	}

	if role == RoleController && cr.msg.APIKey != cfg.apiKey {
		h.sendLocked(c, ErrorMessage{Error: errUnauthorized.Error()})
		return
	}

	if role != RoleOverlay {
		for other := range h.clients {
			if other != c && other.role == role {
				h.sendLocked(other, ErrorMessage{Error: "your role was claimed by another client"})
				other.role = ""
				delete(h.clients, other)
				logf(cfg, "GAME: Superseded %s in session %s", role, h.session.UUID)
			}
		}
	}

	c.role = role
	h.clients[c] = true
	h.emptySince = time.Time{}
	logf(cfg, "GAME: Client joined session %s as %s", h.session.UUID, role)

	h.broadcastStateLocked()
}

func (h *Hub) handleUnregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropLocked(c)
	c.role = ""
}

// handleCommand routes one decoded message. Authorization is checked
// against the static role whitelist before the state machine sees the
// command; rejections go back to the sender only.
func (h *Hub) handleCommand(cfg *Config, cmd commandRequest) {
	c := cmd.client
	msg := cmd.msg

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] || c.role == "" {
		h.sendLocked(c, ErrorMessage{Error: errUnauthenticated.Error()})
		return
	}

	if !roleAllowed(msg.Type, c.role) {
		h.sendLocked(c, ErrorMessage{Error: errForbidden.Error()})
		return
	}

	var err error

	switch msg.Type {
	case "ping":
		h.sendLocked(c, PongMessage{Type: "pong"})
		return

	case "test_connection":
		h.sendLocked(c, TestResponseMessage{
			Type:        "test_response",
			Message:     "Connection test successful",
			ClientType:  c.role,
			SessionUUID: h.session.UUID,
		})
		return

	case "get_state":
		h.sendLocked(c, SessionStateMessage{
			Type:    "session_state",
			Session: h.session.snapshot(h.rolesLocked()),
		})
		return

	case "start_game":
		err = h.session.start()

	case "stop_game":
		err = h.session.stop()

	case "pass_word":
		err = h.session.pass()

	case "mark_word_correct":
		err = h.session.score(true)

	case "mark_word_incorrect":
		err = h.session.score(false)

	case "request_guess":
		err = h.session.requestGuess()

	case "adjust_timer":
		h.session.adjustTimer(msg.Seconds)

	case "reset_game":
		h.session.resetGame()

	default:
		h.sendLocked(c, ErrorMessage{Error: errBadRequest.Error()})
		return
	}

	if err != nil {
		h.sendLocked(c, ErrorMessage{Error: err.Error()})
		return
	}

	logf(cfg, "GAME: %s accepted %s in session %s", c.role, msg.Type, h.session.UUID)

	if msg.Type == "request_guess" {
		h.broadcastLocked(CountdownMessage{Type: "countdown", Seconds: h.session.Countdown})
	}
	h.broadcastStateLocked()
}

// handleTick drives the per-session clock. Ticking is suspended while
// no role is bound; the counters resume from their last values on the
// next claim.
func (h *Hub) handleTick() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}

	phase := h.session.Phase
	changed := h.session.tick()

	switch phase {
	case PhasePlaying:
		h.broadcastLocked(TimerUpdateMessage{Type: "timer_update", Timer: h.session.Timer})
	case PhaseGuessing:
		h.broadcastLocked(CountdownMessage{Type: "countdown", Seconds: h.session.Countdown})
	}

	if changed {
		h.broadcastStateLocked()
	}
}

// rolesLocked lists occupied slot names in a fixed order. Overlays
// appear once no matter how many are attached.
func (h *Hub) rolesLocked() []string {
	present := make(map[string]bool, len(h.clients))
	for c := range h.clients {
		present[c.role] = true
	}

	roles := make([]string, 0, len(present))
	for _, role := range roleOrder {
		if present[role] {
			roles = append(roles, role)
		}
	}
	return roles
}

func (h *Hub) broadcastStateLocked() {
	h.broadcastLocked(SessionStateMessage{
		Type:    "session_state",
		Session: h.session.snapshot(h.rolesLocked()),
	})
}

// broadcastLocked fans an event out to every bound client. A client
// whose outbox is full is dropped rather than allowed to stall the
// rest of the session.
func (h *Hub) broadcastLocked(msg any) {
	for c := range h.clients {
		h.sendLocked(c, msg)
	}
}

func (h *Hub) sendLocked(c *Client, msg any) {
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		h.dropLocked(c)
	}
}

// dropLocked removes a client's binding and closes its outbox exactly
// once. The underlying connection is torn down by the write pump when
// it drains the closed channel.
func (h *Hub) dropLocked(c *Client) {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	delete(h.clients, c)

	if len(h.clients) == 0 {
		h.emptySince = time.Now()
	}
}

// idle reports how long the session has had no bound clients; zero
// duration means it is live.
func (h *Hub) idle() time.Duration {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.emptySince.IsZero() {
		return 0
	}
	return time.Since(h.emptySince)
}

// close tears the session down: stops the run loop and disconnects
// every remaining client. Used by the registry reaper.
func (h *Hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		return
	default:
		close(h.done)
	}

	for c := range h.clients {
		conn := c.conn
		h.dropLocked(c)
		if conn != nil {
			_ = conn.Close()
		}
	}
}
