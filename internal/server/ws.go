package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/formcoach/internal/tracker"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// resultMessage is one websocket frame: the latest tracking result.
type resultMessage struct {
	Session   string         `json:"session"`
	Timestamp int64          `json:"timestamp"`
	Result    tracker.Result `json:"result"`
}

// handleResults serves GET /api/sessions/{id}/ws. Every result of the
// session is pushed to the client as JSON, starting with the latest one.
// The connection closes normally when the session is stopped or its video
// runs out.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Lookup(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	results, cancel := sess.Subscribe()
	defer cancel()

	// Clients only listen; reading detects when they go away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	id := sess.ID.String()
	send := func(res tracker.Result) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(resultMessage{
			Session:   id,
			Timestamp: time.Now().UnixMilli(),
			Result:    res,
		})
	}

	if err := send(sess.Latest()); err != nil {
		return
	}

	for {
		select {
		case <-gone:
			return
		case res, ok := <-results:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session stopped"))
				return
			}
			if err := send(res); err != nil {
				log.Debugf("websocket write: %v", err)
				return
			}
		}
	}
}
