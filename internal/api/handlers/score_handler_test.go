package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/speaksharp/speaksharp/internal/models"
	"github.com/speaksharp/speaksharp/internal/utils"
)

type stubAssessor struct {
	lastUserID string
	lastMime   string
}

func (s *stubAssessor) Score(_ context.Context, userID, _ string, audioData []byte, mimeType string, item models.AssessmentItem) (*models.ScoreResult, error) {
	if len(audioData) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, "stub", "audio data is required", nil)
	}
	s.lastUserID = userID
	s.lastMime = mimeType
	ipa := "θ ɪ ŋ k "
	return &models.ScoreResult{
		ItemText:           item.Text,
		PronunciationScore: 85,
		AccuracyScore:      84,
		FluencyScore:       83,
		CompletenessScore:  100,
		ActualIPA:          &ipa,
		ExpectedIPA:        item.ExpectedIPA,
		Feedback:           "Excellent pronunciation!",
	}, nil
}

func newScoreRouter(stub *stubAssessor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewScoreHandler(stub)
	r.POST("/api/score", h.Score)
	r.GET("/api/demo/items", h.DemoItems)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestScoreEndpoint(t *testing.T) {
	stub := &stubAssessor{}
	r := newScoreRouter(stub)

	w := postJSON(t, r, "/api/score", ScoreRequest{
		AudioBase64: base64.StdEncoding.EncodeToString([]byte("webm-bytes")),
		MIMEType:    "audio/webm",
		Text:        "think",
		ExpectedIPA: "θ ɪ ŋ k",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res["pronunciation_score"] != float64(85) {
		t.Errorf("pronunciation_score = %v", res["pronunciation_score"])
	}
	if res["ipa_transcription"] != "θ ɪ ŋ k " {
		t.Errorf("ipa_transcription = %v", res["ipa_transcription"])
	}

	// Demo scoring is anonymous.
	if stub.lastUserID != "" {
		t.Errorf("user id = %q, want empty for demo", stub.lastUserID)
	}
	if stub.lastMime != "audio/webm" {
		t.Errorf("mime = %q", stub.lastMime)
	}
}

func TestScoreEndpointRejectsBadBase64(t *testing.T) {
	r := newScoreRouter(&stubAssessor{})

	w := postJSON(t, r, "/api/score", ScoreRequest{
		AudioBase64: "not-base64!!!",
		Text:        "think",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestScoreEndpointRequiresText(t *testing.T) {
	r := newScoreRouter(&stubAssessor{})

	w := postJSON(t, r, "/api/score", ScoreRequest{
		AudioBase64: base64.StdEncoding.EncodeToString([]byte("x")),
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDemoItemsEndpoint(t *testing.T) {
	r := newScoreRouter(&stubAssessor{})

	req := httptest.NewRequest(http.MethodGet, "/api/demo/items", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res struct {
		Items []models.AssessmentItem `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Items) != 10 {
		t.Errorf("len(items) = %d, want 10", len(res.Items))
	}
}
