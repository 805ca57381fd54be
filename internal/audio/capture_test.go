package audio

import (
	"context"
	"errors"
	"testing"
)

// fakeSource feeds predefined chunks, recording whether it was released.
type fakeSource struct {
	chunks  [][]byte
	openErr error

	ch     chan []byte
	closed bool
}

func (f *fakeSource) Open(_ context.Context) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.ch = make(chan []byte, len(f.chunks)+1)
	for _, c := range f.chunks {
		f.ch <- c
	}
	return nil
}

func (f *fakeSource) Chunks() <-chan []byte { return f.ch }
func (f *fakeSource) MIMEType() string      { return "audio/webm" }

func (f *fakeSource) Close() error {
	f.closed = true
	if f.ch != nil {
		close(f.ch)
	}
	return nil
}

func TestRecorderAssemblesChunks(t *testing.T) {
	src := &fakeSource{chunks: [][]byte{[]byte("abc"), []byte("def"), []byte("g")}}
	r := NewRecorder(src)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	capture, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if string(capture.Data) != "abcdefg" {
		t.Errorf("capture data = %q, want %q", capture.Data, "abcdefg")
	}
	if capture.MIMEType != "audio/webm" {
		t.Errorf("mime type = %q, want audio/webm", capture.MIMEType)
	}
	if !src.closed {
		t.Error("source was not released after Stop")
	}
}

func TestRecorderEmptyRecording(t *testing.T) {
	src := &fakeSource{}
	r := NewRecorder(src)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	_, err := r.Stop()
	if !errors.Is(err, ErrEmptyRecording) {
		t.Fatalf("Stop err = %v, want ErrEmptyRecording", err)
	}
	if !src.closed {
		t.Error("source was not released on empty recording")
	}
}

func TestRecorderPermissionDenied(t *testing.T) {
	src := &fakeSource{openErr: ErrPermissionDenied}
	r := NewRecorder(src)

	err := r.Start(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Start err = %v, want ErrPermissionDenied", err)
	}
	if !src.closed {
		t.Error("source was not released after failed Start")
	}
}

func TestRecorderDoubleStartIgnored(t *testing.T) {
	src := &fakeSource{chunks: [][]byte{[]byte("x")}}
	r := NewRecorder(src)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	// Second start while recording must be a no-op, not a queued request.
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("second Start returned %v, want nil no-op", err)
	}

	capture, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if string(capture.Data) != "x" {
		t.Errorf("capture data = %q, want %q", capture.Data, "x")
	}
}

func TestRecorderStopWithoutStart(t *testing.T) {
	r := NewRecorder(&fakeSource{})
	if _, err := r.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("Stop err = %v, want ErrNotRecording", err)
	}
}
