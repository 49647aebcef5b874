// Package decode is the audio-file decoding collaborator spec.md treats as
// external: it turns an MP3/WAV/OGG file into 16 kHz mono 16-bit PCM
// samples, grounded in the teacher's audio.go openStreamer/CollectSample
// but with the playback half (speaker, crossfade, TUI state) dropped —
// nothing downstream of the fingerprint generator plays audio back.
package decode

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

const (
	// TargetSampleRate is the sample rate the generator requires.
	TargetSampleRate = 16000
	resampleQuality  = 4
)

// Decoded holds the resampled mono samples and their total duration.
type Decoded struct {
	Samples  []int16
	Duration time.Duration
}

// File decodes path (MP3, WAV, or Ogg/Vorbis, detected by content sniffing)
// into 16 kHz mono int16 samples.
func File(path string) (Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return Decoded{}, fmt.Errorf("decode: open %s: %w", path, err)
	}
	defer f.Close()

	mimeBuf := make([]byte, 512)
	n, _ := f.ReadAt(mimeBuf, 0)
	mime := http.DetectContentType(mimeBuf[:n])
	if mime == "application/octet-stream" && n >= 2 && mimeBuf[0] == 0xFF && mimeBuf[1]&0xE0 == 0xE0 {
		// MPEG audio frame sync with no leading ID3v2 tag.
		mime = "audio/mpeg"
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch mime {
	case "audio/mpeg":
		stream, format, err = mp3.Decode(f)
	case "audio/wave", "audio/wav", "audio/x-wav":
		stream, format, err = wav.Decode(f)
	case "application/ogg":
		stream, format, err = vorbis.Decode(f)
	default:
		return Decoded{}, fmt.Errorf("decode: unsupported mime type %q", mime)
	}
	if err != nil {
		return Decoded{}, fmt.Errorf("decode: %s: %w", path, err)
	}
	defer stream.Close()

	duration := format.SampleRate.D(stream.Len())

	resampled := beep.Resample(resampleQuality, format.SampleRate, TargetSampleRate, stream)
	samples := collectMono16(resampled)

	return Decoded{Samples: samples, Duration: duration}, nil
}

// collectMono16 drains s to completion, mixing stereo to mono and
// converting beep's [-1,1] float64 samples to int16 PCM.
func collectMono16(s beep.Streamer) []int16 {
	buf := make([][2]float64, 4096)
	var out []int16
	for {
		n, ok := s.Stream(buf)
		for _, sample := range buf[:n] {
			mono := (sample[0] + sample[1]) / 2
			out = append(out, floatToInt16(mono))
		}
		if !ok {
			break
		}
	}
	return out
}

func floatToInt16(v float64) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}
