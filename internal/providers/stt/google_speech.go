package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/speaksharp/speaksharp/internal/audio"
)

// GoogleSpeech transcribes the normalized 16kHz mono WAV the pipeline
// already produced, so the encoding settings are fixed at construction.
type GoogleSpeech struct {
	c *speech.Client

	encoding     speechpb.RecognitionConfig_AudioEncoding
	sampleRateHz int32
}

func NewGoogleSpeech(ctx context.Context) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{
		c:            c,
		encoding:     speechpb.RecognitionConfig_LINEAR16,
		sampleRateHz: audio.TargetSampleRate,
	}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

// Transcribe returns the highest-confidence alternative for the recording.
// An empty transcript with a nil error means the recognizer heard nothing.
func (g *GoogleSpeech) Transcribe(ctx context.Context, wav []byte, language string) (string, float64, error) {
	if len(wav) == 0 {
		return "", 0, fmt.Errorf("stt: empty audio payload")
	}
	if language == "" {
		language = "en-US"
	}

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   g.encoding,
			SampleRateHertz:            g.sampleRateHz,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: wav},
		},
	})
	if err != nil {
		return "", 0, err
	}

	var bestText string
	var bestConf float64
	for _, r := range resp.Results {
		for _, alt := range r.Alternatives {
			if alt.Transcript != "" && float64(alt.Confidence) >= bestConf {
				bestText = alt.Transcript
				bestConf = float64(alt.Confidence)
			}
		}
	}

	return bestText, bestConf, nil
}
