// Package wavfile writes mono 16-bit PCM audio as a canonical WAV
// file. It writes a provisional 44-byte header up front, streams
// samples, then seeks back and patches the two size fields once the
// final sample count is known.
package wavfile

import (
	"encoding/binary"
	"fmt"
	"os"
)

// header is the canonical 44-byte RIFF/WAVE header for mono 16-bit
// PCM.
type header struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// Writer is a PCMSink backed by a WAV file on disk. It implements
// sstv.PCMSink structurally, without importing the sstv package.
type Writer struct {
	f              *os.File
	sampleRate     int
	samplesWritten int64
}

// Create opens path and writes a provisional WAV header for mono
// 16-bit PCM at sampleRate. The header is patched with final sizes on
// Close.
func Create(path string, sampleRate int) (*Writer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wavfile: sample rate must be positive, got %d", sampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wavfile: create %s: %w", path, err)
	}

	w := &Writer{f: f, sampleRate: sampleRate}
	if err := w.writeHeader(0); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader(dataSize uint32) error {
	h := header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1, // PCM
		NumChannels:   1,
		SampleRate:    uint32(w.sampleRate),
		ByteRate:      uint32(w.sampleRate * 2),
		BlockAlign:    2,
		BitsPerSample: 16,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}
	if _, err := w.f.Seek(0, 0); err != nil {
		return fmt.Errorf("wavfile: seek to header: %w", err)
	}
	if err := binary.Write(w.f, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("wavfile: write header: %w", err)
	}
	return nil
}

// WriteSample appends one little-endian signed 16-bit sample.
func (w *Writer) WriteSample(s int16) error {
	if err := binary.Write(w.f, binary.LittleEndian, s); err != nil {
		return fmt.Errorf("wavfile: write sample: %w", err)
	}
	w.samplesWritten++
	return nil
}

// SamplesWritten returns the number of samples written so far.
func (w *Writer) SamplesWritten() int64 {
	return w.samplesWritten
}

// Close patches the header's ChunkSize and Subchunk2Size with the
// final sample count, then closes the underlying file. Close is not
// safe to call twice.
func (w *Writer) Close() error {
	dataSize := uint32(w.samplesWritten * 2)
	if err := w.writeHeader(dataSize); err != nil {
		w.f.Close()
		return err
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("wavfile: close %s: %w", w.f.Name(), err)
	}
	return nil
}
