package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/speaksharp/speaksharp/internal/audio"
	"github.com/speaksharp/speaksharp/internal/models"
	"github.com/speaksharp/speaksharp/internal/services"
	"github.com/speaksharp/speaksharp/internal/utils"
)

// WSHandler runs the live practice loop over one websocket. Control frames
// are JSON text messages; audio arrives as binary frames between "start"
// and "stop". The socket is the session's chunk source: stop assembles the
// capture and pushes it through the scoring pipeline.
type WSHandler struct {
	sessions services.SessionService
	upgrader websocket.Upgrader
}

func NewWSHandler(sessions services.SessionService) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type     string `json:"type"` // start|stop|advance
	MIMEType string `json:"mime_type"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteJSON(v)
}

func (w *wsConn) writeErr(code utils.Code, message string) {
	_ = w.writeJSON(gin.H{"type": "error", "code": code, "message": message})
}

// socketSource adapts the websocket's binary frames to the recorder's
// chunk source contract. The read loop feeds it; Close ends the stream.
type socketSource struct {
	mime string
	ch   chan []byte

	mu     sync.Mutex
	closed bool
}

func newSocketSource(mime string) *socketSource {
	if mime == "" {
		mime = "audio/webm"
	}
	return &socketSource{mime: mime, ch: make(chan []byte, 32)}
}

func (s *socketSource) Open(context.Context) error { return nil }
func (s *socketSource) Chunks() <-chan []byte      { return s.ch }
func (s *socketSource) MIMEType() string           { return s.mime }

func (s *socketSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}

func (s *socketSource) push(chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	cp := make([]byte, len(chunk))
	copy(cp, chunk)
	s.ch <- cp
}

func (h *WSHandler) SessionWS(c *gin.Context) {
	const op = "WSHandler.SessionWS"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing session_id", nil))
		return
	}

	// Ownership is checked before the upgrade so failures are plain HTTP.
	if _, err := h.sessions.Get(c.Request.Context(), userID, sessionID); err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx := c.Request.Context()

	var (
		src *socketSource
		rec *audio.Recorder
	)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		msgType, data, rerr := conn.ReadMessage()
		if rerr != nil {
			if src != nil {
				_ = src.Close()
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		if msgType == websocket.BinaryMessage {
			if src == nil {
				wc.writeErr(utils.CodeInvalidArgument, "audio before start")
				continue
			}
			src.push(data)
			continue
		}

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			wc.writeErr(utils.CodeInvalidArgument, "invalid json")
			continue
		}

		switch msg.Type {
		case "start":
			if src != nil {
				wc.writeErr(utils.CodeConflict, "recording already in progress")
				continue
			}
			if _, err := h.sessions.BeginRecording(ctx, userID, sessionID); err != nil {
				wc.writeErr(errCode(err), "cannot start recording")
				continue
			}
			src = newSocketSource(msg.MIMEType)
			rec = audio.NewRecorder(src)
			if err := rec.Start(ctx); err != nil {
				wc.writeErr(utils.CodeInternal, "recorder failed")
				src, rec = nil, nil
				continue
			}
			_ = wc.writeJSON(gin.H{"type": "status", "state": models.StateRecording})

		case "stop":
			if rec == nil {
				wc.writeErr(utils.CodeConflict, "no recording in progress")
				continue
			}
			capture, cerr := rec.Stop()
			mime := src.MIMEType()
			src, rec = nil, nil
			if cerr != nil {
				// Roll the session back to idle so the item can be retried.
				if rerr := h.sessions.CancelRecording(ctx, userID, sessionID); rerr != nil {
					wc.writeErr(errCode(rerr), "rollback failed")
				}
				if errors.Is(cerr, audio.ErrEmptyRecording) {
					wc.writeErr(utils.CodeInvalidArgument, "recording contains no audio")
				} else {
					wc.writeErr(utils.CodeInternal, "capture failed")
				}
				continue
			}

			res, serr := h.sessions.SubmitAttempt(ctx, userID, sessionID, capture.Data, mime)
			if serr != nil {
				wc.writeErr(errCode(serr), "scoring failed")
				continue
			}
			_ = wc.writeJSON(gin.H{"type": "score", "result": res})

		case "advance":
			sess, aerr := h.sessions.Advance(ctx, userID, sessionID)
			if aerr != nil {
				wc.writeErr(errCode(aerr), "cannot advance")
				continue
			}
			_ = wc.writeJSON(gin.H{
				"type":   "session",
				"status": sess.Status,
				"cursor": sess.Cursor,
				"state":  sess.State,
			})
			if sess.Status == models.StatusComplete {
				_ = wc.writeJSON(gin.H{"type": "summary", "summary": sess.Summary, "average_score": sess.AverageScore})
				return
			}

		default:
			wc.writeErr(utils.CodeInvalidArgument, "unknown message type")
		}
	}
}

func errCode(err error) utils.Code {
	var ae *utils.AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return utils.CodeInternal
}
