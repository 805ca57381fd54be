package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/speaksharp/speaksharp/internal/assessment"
	"github.com/speaksharp/speaksharp/internal/models"
	"github.com/speaksharp/speaksharp/internal/services"
	"github.com/speaksharp/speaksharp/internal/utils"
)

// ScoreHandler exposes the one-shot scoring endpoint used by the demo flow.
// No auth: demo attempts are not archived or persisted (the service skips
// both when the user id is empty).
type ScoreHandler struct {
	svc services.AssessmentService
}

func NewScoreHandler(svc services.AssessmentService) *ScoreHandler {
	return &ScoreHandler{svc: svc}
}

type ScoreRequest struct {
	AudioBase64 string `json:"audio_base64" binding:"required"`
	MIMEType    string `json:"mime_type"`
	Text        string `json:"text" binding:"required"`
	ExpectedIPA string `json:"expected_ipa"`
	ItemType    string `json:"item_type"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
}

func (h *ScoreHandler) Score(c *gin.Context) {
	const op = "ScoreHandler.Score"

	var req ScoreRequest
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

	item := models.AssessmentItem{
		Text:        req.Text,
		ExpectedIPA: req.ExpectedIPA,
		Type:        req.ItemType,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
	}

	res, err := h.svc.Score(c.Request.Context(), "", "", audioData, mime, item)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// DemoItems serves the built-in item set the demo cycles through.
func (h *ScoreHandler) DemoItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": assessment.DemoItems()})
}
