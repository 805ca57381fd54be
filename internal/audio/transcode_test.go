package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestPCMTranscoderIdempotentAtTargetRate(t *testing.T) {
	samples := sineWave(440, TargetSampleRate, 0.1)
	wav, err := EncodeWAV(samples, TargetSampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	out, err := PCMTranscoder{}.Transcode(context.Background(), &Capture{Data: wav, MIMEType: "audio/wav"})
	if err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}

	pcm, err := DecodeWAV(out)
	if err != nil {
		t.Fatalf("DecodeWAV of transcoded output failed: %v", err)
	}
	if pcm.SampleRate != TargetSampleRate {
		t.Errorf("sample rate = %d, want %d", pcm.SampleRate, TargetSampleRate)
	}
	if len(pcm.Samples) != len(samples) {
		t.Fatalf("transcoded %d samples, want %d", len(pcm.Samples), len(samples))
	}
	for i := range samples {
		if pcm.Samples[i] != samples[i] {
			t.Fatalf("sample %d changed: %d -> %d", i, samples[i], pcm.Samples[i])
		}
	}
}

func TestPCMTranscoderResamples(t *testing.T) {
	samples := sineWave(440, 8000, 0.1)
	wav, err := EncodeWAV(samples, 8000)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	out, err := PCMTranscoder{}.Transcode(context.Background(), &Capture{Data: wav, MIMEType: "audio/wav"})
	if err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}

	pcm, err := DecodeWAV(out)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if pcm.SampleRate != TargetSampleRate {
		t.Errorf("sample rate = %d, want %d", pcm.SampleRate, TargetSampleRate)
	}
	// 8k -> 16k doubles the sample count.
	if got, want := len(pcm.Samples), len(samples)*2; got != want {
		t.Errorf("resampled length = %d, want %d", got, want)
	}
}

func TestPCMTranscoderRejectsNonWAV(t *testing.T) {
	capture := &Capture{Data: []byte("\x1aE\xdf\xa3 not a wav container"), MIMEType: "audio/webm"}
	_, err := PCMTranscoder{}.Transcode(context.Background(), capture)
	if !errors.Is(err, ErrUnsupportedContainer) {
		t.Fatalf("err = %v, want ErrUnsupportedContainer", err)
	}
}

func TestPCMTranscoderEmptyInput(t *testing.T) {
	if _, err := (PCMTranscoder{}).Transcode(context.Background(), &Capture{}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if _, err := (PCMTranscoder{}).Transcode(context.Background(), nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestQuantizeSaturates(t *testing.T) {
	out := quantize([]float64{-2.0, -1.0, 0.0, 0.999, 2.0})
	if out[0] != -32768 {
		t.Errorf("quantize(-2.0) = %d, want -32768", out[0])
	}
	if out[1] != -32768 {
		t.Errorf("quantize(-1.0) = %d, want -32768", out[1])
	}
	if out[2] != 0 {
		t.Errorf("quantize(0) = %d, want 0", out[2])
	}
	if out[4] != 32767 {
		t.Errorf("quantize(2.0) = %d, want 32767 (saturate, not wrap)", out[4])
	}
}

func TestDownmixStereoAverages(t *testing.T) {
	// Two frames of stereo: (1000, 3000) and (-2000, -4000).
	mono := downmix([]int16{1000, 3000, -2000, -4000}, 2)
	if len(mono) != 2 {
		t.Fatalf("downmix produced %d frames, want 2", len(mono))
	}
	got := quantize(mono)
	if got[0] != 2000 {
		t.Errorf("frame 0 = %d, want 2000", got[0])
	}
	if got[1] != -3000 {
		t.Errorf("frame 1 = %d, want -3000", got[1])
	}
}

func TestFFmpegTranscoderToolMissing(t *testing.T) {
	tr := FFmpegTranscoder{Binary: "ffmpeg-definitely-not-installed"}
	_, err := tr.Transcode(context.Background(), &Capture{Data: []byte{1, 2, 3}, MIMEType: "audio/webm"})
	if !errors.Is(err, ErrToolUnavailable) {
		t.Fatalf("err = %v, want ErrToolUnavailable", err)
	}
}

func TestFFmpegTranscoderCleansTempOnFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub")
	}

	stub := filepath.Join(t.TempDir(), "ffmpeg-stub")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	scratch := t.TempDir()
	t.Setenv("TMPDIR", scratch)

	tr := FFmpegTranscoder{Binary: stub}
	_, err := tr.Transcode(context.Background(), &Capture{Data: []byte{1, 2, 3}, MIMEType: "audio/webm"})
	if !errors.Is(err, ErrUnsupportedContainer) {
		t.Fatalf("err = %v, want ErrUnsupportedContainer", err)
	}

	entries, err := os.ReadDir(scratch)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("temp artifacts left behind: %v", names)
	}
}

func TestChainTranscoderFallsBackOnContainer(t *testing.T) {
	// Native path rejects WebM, external path reports the missing tool: the
	// chain surfaces the external error so the caller can degrade to raw.
	chain := ChainTranscoder{
		Native:   PCMTranscoder{},
		External: FFmpegTranscoder{Binary: "ffmpeg-definitely-not-installed"},
	}
	_, err := chain.Transcode(context.Background(), &Capture{Data: []byte("webm-ish"), MIMEType: "audio/webm"})
	if !errors.Is(err, ErrToolUnavailable) {
		t.Fatalf("err = %v, want ErrToolUnavailable", err)
	}
}
