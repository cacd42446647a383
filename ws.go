package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	wsWriteWait      = 10 * time.Second
	wsMaxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveWS upgrades a connection for one session. The channel starts
// unauthenticated; the client claims a role with a "connect" message.
func serveWS(cfg *Config, sm *SessionManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("session")
		if code == "" {
			http.Error(w, "missing session code", http.StatusBadRequest)
			return
		}

		hub := sm.lookup(code)
		if hub == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "SERVE: Upgrade error from %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 16),
		}

		go client.writePump(cfg)
		client.readPump(cfg, hub)
	}
}

// readPump decodes inbound messages and forwards them to the hub. Read
// errors of any kind, including the idle deadline expiring, tear down
// only this channel.
func (c *Client) readPump(cfg *Config, hub *Hub) {
	defer func() {
		select {
		case hub.unreg <- c:
		case <-hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(wsMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.clientTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.clientTimeout))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if msg.Type == "connect" {
			select {
			case hub.claims <- claimRequest{client: c, msg: msg}:
			case <-hub.done:
				return
			}
			continue
		}

		select {
		case hub.commands <- commandRequest{client: c, msg: msg}:
		case <-hub.done:
			return
		}
	}
}

// writePump serializes outbound events in the order the hub produced
// them, and keeps the connection alive with periodic pings.
func (c *Client) writePump(cfg *Config) {
	ticker := time.NewTicker(cfg.clientTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type sessionRequest struct {
	APIKey      string `json:"api_key"`
	SessionUUID string `json:"session_uuid,omitempty"`
}

type sessionResponse struct {
	SessionUUID string `json:"session_uuid"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorMessage{Error: msg})
}

// serveCreateSession handles POST /create-session.
func serveCreateSession(cfg *Config, sm *SessionManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		securityHeaders(cfg, w)

		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.APIKey == "" {
			writeJSONError(w, http.StatusBadRequest, errBadRequest.Error())
			return
		}

		code, err := sm.createSession(req.APIKey)
		if err != nil {
			writeJSONError(w, http.StatusForbidden, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, sessionResponse{SessionUUID: code})
	}
}

// serveJoinSession handles POST /join-session for controller rejoin.
func serveJoinSession(cfg *Config, sm *SessionManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		securityHeaders(cfg, w)

		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.APIKey == "" || req.SessionUUID == "" {
			writeJSONError(w, http.StatusBadRequest, errBadRequest.Error())
			return
		}

		code, err := sm.joinSession(req.APIKey, req.SessionUUID)
		switch err {
		case nil:
			writeJSON(w, http.StatusOK, sessionResponse{SessionUUID: code})
		case errNotFound:
			writeJSONError(w, http.StatusNotFound, err.Error())
		default:
			writeJSONError(w, http.StatusForbidden, err.Error())
		}
	}
}

// serveSessionQR generates a PNG QR code pointing players at a session.
func serveSessionQR(cfg *Config, sm *SessionManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("session")
		if sm.lookup(code) == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		// We are at .../session/:session/qr; the client app joins via
		// a session query parameter at the root.
		prefix := strings.TrimSuffix(r.URL.Path, "/session/"+code+"/qr")
		url := scheme + "://" + r.Host + prefix + "/?session=" + code

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}
