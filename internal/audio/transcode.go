package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Transcode errors. All of them are recoverable: the caller may fall back
// to submitting the original bytes in degraded mode.
var (
	ErrUnsupportedContainer = errors.New("audio: unsupported container format")
	ErrToolUnavailable      = errors.New("audio: external transcode tool not available")
	ErrEmptyInput           = errors.New("audio: empty transcode input")
)

// Transcoder converts a Capture into a self-contained 16 kHz mono 16-bit
// PCM WAV file.
type Transcoder interface {
	Transcode(ctx context.Context, c *Capture) ([]byte, error)
}

// PCMTranscoder decodes WAV input in-process: downmix to mono, resample to
// the target rate by linear interpolation, re-quantize with saturating
// clamping. It cannot open compressed containers (WebM/Ogg); those need the
// ffmpeg path.
type PCMTranscoder struct{}

func (PCMTranscoder) Transcode(_ context.Context, c *Capture) ([]byte, error) {
	if c == nil || len(c.Data) == 0 {
		return nil, ErrEmptyInput
	}

	pcm, err := DecodeWAV(c.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedContainer, err)
	}

	mono := downmix(pcm.Samples, pcm.Channels)
	resampled := resample(mono, pcm.SampleRate, TargetSampleRate)
	return EncodeWAV(quantize(resampled), TargetSampleRate)
}

// downmix reduces interleaved samples to one normalized float channel.
// Stereo pairs are averaged.
func downmix(samples []int16, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(samples))
		for i, s := range samples {
			out[i] = float64(s) / 32768.0
		}
		return out
	}

	frames := len(samples) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(samples[i*channels+ch])
		}
		out[i] = sum / float64(channels) / 32768.0
	}
	return out
}

// resample converts between sample rates using linear interpolation between
// the two nearest source samples. At equal rates the input is returned
// unchanged so repeated transcoding is lossless.
func resample(in []float64, from, to int) []float64 {
	if from == to || len(in) == 0 {
		return in
	}

	outLen := int(math.Round(float64(len(in)) * float64(to) / float64(from)))
	if outLen == 0 {
		outLen = 1
	}
	out := make([]float64, outLen)
	step := float64(from) / float64(to)

	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = in[j] + frac*(in[j+1]-in[j])
	}
	return out
}

// quantize converts normalized floats to 16-bit signed integers. Values
// outside [-1, 1] saturate; they never wrap.
func quantize(in []float64) []int16 {
	out := make([]int16, len(in))
	for i, x := range in {
		v := math.Round(x * 32768.0)
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}

// FFmpegTranscoder shells out to ffmpeg for containers the in-process path
// cannot open (WebM/Opus, Ogg, MP3). Temp artifacts are removed on every
// exit path.
type FFmpegTranscoder struct {
	// Binary overrides the ffmpeg executable name, mainly for tests.
	Binary string
	// Timeout bounds one conversion. Zero means 30s.
	Timeout time.Duration
}

func (t FFmpegTranscoder) Transcode(ctx context.Context, c *Capture) ([]byte, error) {
	if c == nil || len(c.Data) == 0 {
		return nil, ErrEmptyInput
	}

	bin := t.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	in, err := os.CreateTemp("", "capture-*"+extension(c.MIMEType))
	if err != nil {
		return nil, fmt.Errorf("audio: create temp input: %w", err)
	}
	inPath := in.Name()
	outPath := inPath + ".wav"
	defer func() {
		os.Remove(inPath)
		os.Remove(outPath)
	}()

	if _, err := in.Write(c.Data); err != nil {
		in.Close()
		return nil, fmt.Errorf("audio: write temp input: %w", err)
	}
	if err := in.Close(); err != nil {
		return nil, fmt.Errorf("audio: close temp input: %w", err)
	}

	cmd := exec.CommandContext(ctx, bin,
		"-i", inPath,
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		outPath,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg: %v: %s", ErrUnsupportedContainer, err, strings.TrimSpace(stderr.String()))
	}

	wav, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("audio: read converted output: %w", err)
	}
	if err := ValidateWAV(wav); err != nil {
		return nil, err
	}
	return wav, nil
}

// extension guesses a temp-file suffix from the capture MIME type so ffmpeg
// can sniff the container.
func extension(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "webm"):
		return ".webm"
	case strings.Contains(mimeType, "ogg"):
		return ".ogg"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return ".mp3"
	case strings.Contains(mimeType, "wav"):
		return ".wav"
	default:
		return ".bin"
	}
}

// ChainTranscoder tries the in-process path first and falls back to ffmpeg
// for containers it cannot open.
type ChainTranscoder struct {
	Native   Transcoder
	External Transcoder
}

func NewChainTranscoder() ChainTranscoder {
	return ChainTranscoder{Native: PCMTranscoder{}, External: FFmpegTranscoder{}}
}

func (t ChainTranscoder) Transcode(ctx context.Context, c *Capture) ([]byte, error) {
	wav, err := t.Native.Transcode(ctx, c)
	if err == nil {
		return wav, nil
	}
	if !errors.Is(err, ErrUnsupportedContainer) || t.External == nil {
		return nil, err
	}
	return t.External.Transcode(ctx, c)
}
