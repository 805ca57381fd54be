package assess

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestProvider(t *testing.T, endpoint string) *AzureSpeech {
	t.Helper()
	p, err := NewAzureSpeech("test-key", "eastus", "en-US")
	if err != nil {
		t.Fatalf("NewAzureSpeech failed: %v", err)
	}
	p.Endpoint = endpoint
	return p
}

func TestAzureSpeechSendsAssessmentConfig(t *testing.T) {
	var gotKey, gotConfig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		gotConfig = r.Header.Get("Pronunciation-Assessment")
		w.Write([]byte(`{"RecognitionStatus":"Success"}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	res, err := p.Assess(context.Background(), []byte("RIFFxxxx"), "audio/wav", "think")
	if err != nil {
		t.Fatalf("Assess failed: %v", err)
	}
	if len(res.Body) == 0 {
		t.Fatal("empty response body")
	}
	if gotKey != "test-key" {
		t.Errorf("subscription key header = %q, want test-key", gotKey)
	}

	raw, err := base64.StdEncoding.DecodeString(gotConfig)
	if err != nil {
		t.Fatalf("Pronunciation-Assessment header is not base64: %v", err)
	}
	var cfg map[string]any
	if err := json.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("Pronunciation-Assessment header is not JSON: %v", err)
	}
	if cfg["ReferenceText"] != "think" {
		t.Errorf("ReferenceText = %v, want think", cfg["ReferenceText"])
	}
	if cfg["GradingSystem"] != "HundredMark" {
		t.Errorf("GradingSystem = %v, want HundredMark", cfg["GradingSystem"])
	}
	if cfg["Granularity"] != "Phoneme" {
		t.Errorf("Granularity = %v, want Phoneme", cfg["Granularity"])
	}
	if cfg["Dimension"] != "Comprehensive" {
		t.Errorf("Dimension = %v, want Comprehensive", cfg["Dimension"])
	}
}

func TestAzureSpeechRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad audio", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	_, err := p.Assess(context.Background(), []byte("junk"), "audio/webm", "think")

	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("err = %v, want *RejectedError", err)
	}
	if rejected.Status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rejected.Status)
	}
}

func TestAzureSpeechUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	p := newTestProvider(t, srv.URL)
	_, err := p.Assess(context.Background(), []byte("junk"), "audio/wav", "think")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
}

func TestAzureSpeechValidation(t *testing.T) {
	p := newTestProvider(t, "http://localhost:0")
	if _, err := p.Assess(context.Background(), nil, "audio/wav", "think"); err == nil {
		t.Error("empty audio accepted, want error")
	}
	if _, err := p.Assess(context.Background(), []byte("x"), "audio/wav", ""); err == nil {
		t.Error("empty reference text accepted, want error")
	}
	if _, err := NewAzureSpeech("", "eastus", ""); err == nil {
		t.Error("missing key accepted, want error")
	}
}
