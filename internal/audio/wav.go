package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// TargetSampleRate is the sample rate the scoring vendor requires.
const TargetSampleRate = 16000

// headerSize is the canonical RIFF/WAVE/fmt/data header length.
const headerSize = 44

// wavHeader is the canonical 44-byte PCM WAV header.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // file size - 8
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 = PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // byte length of the sample data
}

// PCM holds decoded sample data. Samples are interleaved when Channels > 1.
type PCM struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// EncodeWAV wraps mono 16-bit samples in a WAV container. The data-chunk
// size is always recomputed from the actual sample count.
func EncodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("audio: cannot encode empty sample data")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d", sampleRate)
	}

	dataSize := uint32(len(samples) * 2)
	h := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   1,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * 2,
		BlockAlign:    2,
		BitsPerSample: 16,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(samples)*2))
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("audio: write wav header: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("audio: write sample data: %w", err)
	}
	return buf.Bytes(), nil
}

// wavFormat is the decoded fmt chunk.
type wavFormat struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	BitsPerSample uint16
}

// findChunks walks the RIFF chunk list and returns the format description
// and the raw data-chunk payload. Writers insert extra chunks freely
// (ffmpeg puts a LIST/INFO chunk before data), so offsets beyond the
// 12-byte RIFF header are never assumed. Odd-sized chunks carry a pad byte.
func findChunks(data []byte) (*wavFormat, []byte, error) {
	if len(data) < 12 {
		return nil, nil, fmt.Errorf("audio: wav too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" {
		return nil, nil, fmt.Errorf("audio: missing RIFF marker")
	}
	if string(data[8:12]) != "WAVE" {
		return nil, nil, fmt.Errorf("audio: missing WAVE marker")
	}

	var (
		format  *wavFormat
		samples []byte
	)

	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(data) {
			return nil, nil, fmt.Errorf("audio: wav %q chunk truncated", id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, nil, fmt.Errorf("audio: fmt chunk too small: %d bytes", size)
			}
			format = &wavFormat{
				AudioFormat:   binary.LittleEndian.Uint16(data[body : body+2]),
				NumChannels:   binary.LittleEndian.Uint16(data[body+2 : body+4]),
				SampleRate:    binary.LittleEndian.Uint32(data[body+4 : body+8]),
				BitsPerSample: binary.LittleEndian.Uint16(data[body+14 : body+16]),
			}
		case "data":
			samples = data[body : body+size]
		}

		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if format == nil {
		return nil, nil, fmt.Errorf("audio: missing fmt chunk")
	}
	if samples == nil {
		return nil, nil, fmt.Errorf("audio: missing data chunk")
	}
	return format, samples, nil
}

// DecodeWAV parses a PCM WAV file, tolerating extra chunks around fmt and
// data. Mono and stereo 16-bit input is accepted; anything else is rejected.
func DecodeWAV(data []byte) (*PCM, error) {
	format, raw, err := findChunks(data)
	if err != nil {
		return nil, err
	}

	if format.AudioFormat != 1 {
		return nil, fmt.Errorf("audio: unsupported wav format %d, want PCM", format.AudioFormat)
	}
	if format.BitsPerSample != 16 {
		return nil, fmt.Errorf("audio: unsupported bit depth %d, want 16", format.BitsPerSample)
	}
	if format.NumChannels != 1 && format.NumChannels != 2 {
		return nil, fmt.Errorf("audio: unsupported channel count %d", format.NumChannels)
	}
	if format.SampleRate == 0 {
		return nil, fmt.Errorf("audio: invalid sample rate 0")
	}

	n := len(raw) / 2
	if n == 0 {
		return nil, fmt.Errorf("audio: wav contains no sample data")
	}

	samples := make([]int16, n)
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("audio: read sample data: %w", err)
	}

	return &PCM{
		Samples:    samples,
		SampleRate: int(format.SampleRate),
		Channels:   int(format.NumChannels),
	}, nil
}

// ValidateWAV checks the container markers and chunk structure without
// decoding sample data.
func ValidateWAV(data []byte) error {
	_, _, err := findChunks(data)
	return err
}

// WAVDuration returns the play time of a mono 16-bit WAV file in seconds.
func WAVDuration(data []byte) (float64, error) {
	format, raw, err := findChunks(data)
	if err != nil {
		return 0, err
	}
	if format.SampleRate == 0 {
		return 0, fmt.Errorf("audio: invalid sample rate 0")
	}
	return float64(len(raw)/2) / float64(format.SampleRate), nil
}
