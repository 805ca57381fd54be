package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speaksharp/speaksharp/internal/services"
)

type ContentHandler struct {
	svc services.ContentService
}

func NewContentHandler(svc services.ContentService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// LearningPath returns the full unit/skill/lesson tree. Lock state is
// per-user, so it is reported alongside the path instead of baked into it.
func (h *ContentHandler) LearningPath(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	units, err := h.svc.LearningPath(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	unlocked := map[string]bool{}
	for _, u := range units {
		for _, s := range u.Skills {
			state, err := h.svc.SkillUnlocked(c.Request.Context(), userID, s.ID)
			if err != nil {
				writeError(c, err)
				return
			}
			unlocked[s.ID] = state
		}
	}

	entitled, err := h.svc.Entitled(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"units":           units,
		"unlocked_skills": unlocked,
		"entitled":        entitled,
	})
}

func (h *ContentHandler) LessonItems(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	items, err := h.svc.LessonItems(c.Request.Context(), userID, c.Param("lesson_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
