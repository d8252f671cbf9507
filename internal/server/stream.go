package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	streamReadLimit    = 512 * 1024 // 512KB max message size
	streamReadTimeout  = 60 * time.Second
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
)

// StreamError is the frame written back when a stream request is rejected.
// The connection stays open; only malformed frames close it.
type StreamError struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// handleStream upgrades the connection and scores request frames as they
// arrive, so a form UI can recompute the risk panel on every field change.
// Frames use the same JSON shapes as the predict endpoint.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	scorer, err := s.getScorer()
	if err != nil {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(streamReadLimit)
	conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
		return nil
	})

	// Scoring responses and keep-alive pings share the connection, and the
	// websocket allows only one concurrent writer.
	var writeMu sync.Mutex

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(streamPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				writeMu.Lock()
				conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
				err := conn.WriteMessage(websocket.PingMessage, []byte("ping"))
				writeMu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()

	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("stream client connected")

	for {
		var req PredictionRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("stream read failed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(streamReadTimeout))

		start := time.Now()
		resp, err := s.score(scorer, &req)

		writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err != nil {
			s.rec.PredictionErrorsInc()
			writeErr := conn.WriteJSON(StreamError{Error: err.Error(), RequestID: req.RequestID})
			writeMu.Unlock()
			if writeErr != nil {
				return
			}
			continue
		}
		elapsed := time.Since(start)
		resp.Latency = float64(elapsed.Microseconds()) / 1000.0
		s.rec.PredictionLatencyObserve(elapsed.Seconds())
		writeErr := conn.WriteJSON(resp)
		writeMu.Unlock()
		if writeErr != nil {
			return
		}
	}
}
