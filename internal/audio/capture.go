package audio

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

// Capture errors. These surface directly to the user; no pipeline attempt
// is made when capture fails.
var (
	ErrPermissionDenied  = errors.New("audio: microphone permission denied")
	ErrDeviceUnavailable = errors.New("audio: no audio input device available")
	ErrEmptyRecording    = errors.New("audio: recording contains no audio data")
	ErrNotRecording      = errors.New("audio: no active recording")
)

// ChunkSource abstracts a chunked audio input such as a browser
// MediaRecorder streaming over a websocket, or a fake source in tests.
//
// Open acquires the underlying input and may fail with ErrPermissionDenied
// or ErrDeviceUnavailable. Chunks yields encoded byte chunks until the
// source is exhausted or closed. Close releases the input; it must be safe
// to call regardless of how far capture got.
type ChunkSource interface {
	Open(ctx context.Context) error
	Chunks() <-chan []byte
	MIMEType() string
	Close() error
}

// Capture is one finished recording: the raw encoded container bytes plus
// the MIME type they were produced with.
type Capture struct {
	Data     []byte
	MIMEType string
}

// Recorder produces exactly one Capture per Start/Stop pair. Only one
// capture may be active at a time; Start during an active recording is
// ignored rather than queued.
type Recorder struct {
	src ChunkSource

	mu        sync.Mutex
	recording bool
	buf       bytes.Buffer
	drained   chan struct{}
}

func NewRecorder(src ChunkSource) *Recorder {
	return &Recorder{src: src}
}

// Start opens the source and begins buffering chunks in the background.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return nil
	}
	r.recording = true
	r.buf.Reset()
	r.drained = make(chan struct{})
	r.mu.Unlock()

	if err := r.src.Open(ctx); err != nil {
		r.mu.Lock()
		r.recording = false
		close(r.drained)
		r.mu.Unlock()
		_ = r.src.Close()
		return err
	}

	go func() {
		for chunk := range r.src.Chunks() {
			if len(chunk) == 0 {
				continue
			}
			r.mu.Lock()
			r.buf.Write(chunk)
			r.mu.Unlock()
		}
		close(r.drained)
	}()

	return nil
}

// Stop releases the source, waits for buffered chunks to drain, and
// assembles the capture. The source is released even when the result is
// empty.
func (r *Recorder) Stop() (*Capture, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	r.recording = false
	drained := r.drained
	r.mu.Unlock()

	err := r.src.Close()
	<-drained

	r.mu.Lock()
	data := make([]byte, r.buf.Len())
	copy(data, r.buf.Bytes())
	r.buf.Reset()
	r.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyRecording
	}

	return &Capture{Data: data, MIMEType: r.src.MIMEType()}, nil
}
