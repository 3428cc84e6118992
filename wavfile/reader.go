package wavfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

// ReadSamples reads a mono 16-bit PCM WAV file written by Create and
// returns its samples in order. It exists for the CLI's optional
// -verify pass; the core encoder never reads back its own output.
func ReadSamples(path string) ([]int16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wavfile: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("wavfile: read header: %w", err)
	}
	if string(h.ChunkID[:]) != "RIFF" || string(h.Format[:]) != "WAVE" {
		return nil, fmt.Errorf("wavfile: %s is not a RIFF/WAVE file", path)
	}
	if h.AudioFormat != 1 || h.NumChannels != 1 || h.BitsPerSample != 16 {
		return nil, fmt.Errorf("wavfile: %s is not mono 16-bit PCM", path)
	}

	n := int(h.Subchunk2Size) / 2
	samples := make([]int16, n)
	if err := binary.Read(r, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("wavfile: read samples: %w", err)
	}
	return samples, nil
}
