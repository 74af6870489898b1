// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTestWAV(dir string, rate, n int) (string, error) {
	path := filepath.Join(dir, "test.wav")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	if err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           make([]int, n),
		SourceBitDepth: 16,
	}); err != nil {
		return "", err
	}
	return path, enc.Close()
}
