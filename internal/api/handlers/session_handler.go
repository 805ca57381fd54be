package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/speaksharp/speaksharp/internal/models"
	"github.com/speaksharp/speaksharp/internal/services"
	"github.com/speaksharp/speaksharp/internal/utils"
)

// SessionHandler drives the authenticated practice loop over REST. The
// gamification side effects (hearts, streak) are applied here so the
// session service stays focused on the state machine.
type SessionHandler struct {
	sessions services.SessionService
	content  services.ContentService
	progress services.ProgressService
}

func NewSessionHandler(sessions services.SessionService, content services.ContentService, progress services.ProgressService) *SessionHandler {
	return &SessionHandler{sessions: sessions, content: content, progress: progress}
}

type StartSessionRequest struct {
	// LessonID selects lesson content; empty starts the standard
	// assessment with the built-in items.
	LessonID string `json:"lesson_id"`
}

func (h *SessionHandler) Start(c *gin.Context) {
	const op = "SessionHandler.Start"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	var items []models.AssessmentItem
	if req.LessonID != "" {
		var err error
		items, err = h.content.LessonItems(c.Request.Context(), userID, req.LessonID)
		if err != nil {
			writeError(c, err)
			return
		}
	}

	sess, err := h.sessions.Start(c.Request.Context(), userID, items)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.sessions.Get(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) History(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	sessions, err := h.sessions.History(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *SessionHandler) BeginRecording(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.sessions.BeginRecording(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type AttemptRequest struct {
	AudioBase64 string `json:"audio_base64" binding:"required"`
	MIMEType    string `json:"mime_type"`
}

func (h *SessionHandler) SubmitAttempt(c *gin.Context) {
	const op = "SessionHandler.SubmitAttempt"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	audioData, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "audio_base64 is not valid base64", err))
		return
	}

	mime := req.MIMEType
	if mime == "" {
		mime = "audio/webm"
	}

	res, err := h.sessions.SubmitAttempt(c.Request.Context(), userID, c.Param("session_id"), audioData, mime)
	if err != nil {
		writeError(c, err)
		return
	}

	// Weak takes cost a heart. Best effort: the score stands either way.
	if res.PronunciationScore < 60 && !res.Degraded {
		_, _ = h.progress.LoseHeart(c.Request.Context(), userID)
	}

	c.JSON(http.StatusOK, res)
}

func (h *SessionHandler) Advance(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.sessions.Advance(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	if sess.Status == models.StatusComplete {
		_, _ = h.progress.RecordPractice(c.Request.Context(), userID)
	}

	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) Abandon(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.sessions.Abandon(c.Request.Context(), userID, c.Param("session_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusAbandoned})
}
