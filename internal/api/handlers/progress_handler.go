package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speaksharp/speaksharp/internal/services"
	"github.com/speaksharp/speaksharp/internal/utils"
)

type ProgressHandler struct {
	progress services.ProgressService
	content  services.ContentService
}

func NewProgressHandler(progress services.ProgressService, content services.ContentService) *ProgressHandler {
	return &ProgressHandler{progress: progress, content: content}
}

func (h *ProgressHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.progress.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type CompleteLessonRequest struct {
	LessonID string `json:"lesson_id" binding:"required"`
}

// CompleteLesson awards the lesson's XP. The reward comes from the stored
// lesson, never from the client.
func (h *ProgressHandler) CompleteLesson(c *gin.Context) {
	const op = "ProgressHandler.CompleteLesson"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CompleteLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	lesson, err := h.content.Lesson(c.Request.Context(), userID, req.LessonID)
	if err != nil {
		writeError(c, err)
		return
	}

	p, err := h.progress.CompleteLesson(c.Request.Context(), userID, req.LessonID, lesson.XPReward)
	if err != nil {
		writeError(c, err)
		return
	}

	// Finishing the last lesson of a skill records the skill too.
	if skill, serr := h.content.Skill(c.Request.Context(), lesson.SkillID); serr == nil {
		done := true
		for _, l := range skill.Lessons {
			if !p.LessonCompleted(l.ID) {
				done = false
				break
			}
		}
		if done {
			if np, perr := h.progress.CompleteSkill(c.Request.Context(), userID, skill.ID); perr == nil {
				p = np
			}
		}
	}

	c.JSON(http.StatusOK, p)
}

func (h *ProgressHandler) RefillHearts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.progress.RefillHearts(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
