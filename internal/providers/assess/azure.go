package assess

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// AzureSpeech calls the Azure Speech pronunciation-assessment REST endpoint:
// one POST with the WAV body and a base64 JSON assessment config header.
type AzureSpeech struct {
	Key      string
	Region   string
	Language string

	// Endpoint overrides the region-derived URL, mainly for tests.
	Endpoint string

	httpClient *http.Client
}

// pronunciationConfig is the JSON carried in the Pronunciation-Assessment
// header. Field names are the vendor's.
type pronunciationConfig struct {
	ReferenceText string `json:"ReferenceText"`
	GradingSystem string `json:"GradingSystem"`
	Granularity   string `json:"Granularity"`
	Dimension     string `json:"Dimension"`
	EnableMiscue  bool   `json:"EnableMiscue"`
}

func NewAzureSpeech(key, region, language string) (*AzureSpeech, error) {
	if key == "" {
		return nil, fmt.Errorf("assess: azure subscription key is required")
	}
	if region == "" {
		return nil, fmt.Errorf("assess: azure region is required")
	}
	if language == "" {
		language = "en-US"
	}
	return &AzureSpeech{
		Key:        key,
		Region:     region,
		Language:   language,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (a *AzureSpeech) Configured() bool { return a != nil && a.Key != "" }

func (a *AzureSpeech) Close() error { return nil }

func (a *AzureSpeech) endpoint() string {
	if a.Endpoint != "" {
		return a.Endpoint
	}
	return fmt.Sprintf(
		"https://%s.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1?language=%s&format=detailed",
		a.Region, a.Language,
	)
}

// Assess submits one recording for pronunciation assessment against the
// reference text. The call is bounded by the client timeout; on timeout or
// transport failure it reports ErrUnreachable without retrying.
func (a *AzureSpeech) Assess(ctx context.Context, audio []byte, mimeType, referenceText string) (*RawResult, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("assess: empty audio payload")
	}
	if referenceText == "" {
		return nil, fmt.Errorf("assess: reference text is required")
	}

	cfg := pronunciationConfig{
		ReferenceText: referenceText,
		GradingSystem: "HundredMark",
		Granularity:   "Phoneme",
		Dimension:     "Comprehensive",
		EnableMiscue:  true,
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("assess: marshal assessment config: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint(), bytes.NewReader(audio))
	if err != nil {
		return nil, fmt.Errorf("assess: build request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.Key)
	req.Header.Set("Content-Type", contentType(mimeType))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Pronunciation-Assessment", base64.StdEncoding.EncodeToString(cfgJSON))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RejectedError{Status: resp.StatusCode, Body: string(body)}
	}

	return &RawResult{Body: body}, nil
}

// contentType maps a capture MIME type to the vendor's expected value. WAV
// gets the explicit PCM annotation; anything else is passed through so the
// vendor can attempt its own transcoding of raw container bytes.
func contentType(mimeType string) string {
	if mimeType == "" || strings.Contains(mimeType, "wav") {
		return "audio/wav; codecs=audio/pcm; samplerate=16000"
	}
	return mimeType
}
