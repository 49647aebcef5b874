// Package driver orchestrates per-file recognition: window selection,
// repeated signature draining, recognition retries, and metadata writing,
// grounded in original_source/metaaudio.py's __main__ loop.
package driver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/metaaudio/fingerprint/internal/coverart"
	"github.com/metaaudio/fingerprint/internal/decode"
	"github.com/metaaudio/fingerprint/internal/fsguard"
	"github.com/metaaudio/fingerprint/internal/shazam"
	"github.com/metaaudio/fingerprint/internal/tags"
)

const (
	maxSignatureTimeSeconds = 12
	centeredWindowSeconds   = 12
	longFileThresholdSecs   = 36
	minRetryDelay           = 500 * time.Millisecond
	maxRetries              = 3
)

// Options configures a ProcessDir run, mirroring the CLI flags in spec.md §6.
type Options struct {
	// Rename moves a recognized file to a name derived from its metadata.
	Rename bool
	// Overwrite allows Rename to replace an existing file; invalid
	// without Rename (the caller is expected to have validated this).
	Overwrite bool
	// Delay is the base retry delay, floored at 500ms.
	Delay time.Duration
}

func (o Options) baseDelay() time.Duration {
	if o.Delay < minRetryDelay {
		return minRetryDelay
	}
	return o.Delay
}

// Driver processes a directory of audio files, recognising each and
// writing back ID3 metadata on a match.
type Driver struct {
	Client *shazam.Client
	Logger *log.Logger
}

// New returns a Driver with a default client and a logger writing to stderr.
func New() *Driver {
	return &Driver{
		Client: shazam.NewClient(),
		Logger: log.New(os.Stderr),
	}
}

// ProcessDir walks dir for audio files and attempts to recognise and tag
// each one, isolating per-file failures per spec.md §7.
func (d *Driver) ProcessDir(ctx context.Context, dir string, opts Options) error {
	baseDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("driver: resolve %s: %w", dir, err)
	}

	var files []string
	err = filepath.WalkDir(baseDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".mp3") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("driver: walk %s: %w", dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("driver: no MP3 files found in %s", dir)
	}

	for _, path := range files {
		if err := d.processFile(ctx, path, baseDir, opts); err != nil {
			d.Logger.Error("skipping file", "file", path, "error", err)
		}
	}
	return nil
}

func (d *Driver) processFile(ctx context.Context, path, baseDir string, opts Options) error {
	known, err := tags.HasKnownArtist(path)
	if err != nil {
		return fmt.Errorf("reading existing metadata: %w", err)
	}
	if known {
		d.Logger.Info("skipping already-tagged file", "file", path)
		return nil
	}

	if err := fsguard.Check(path, baseDir); err != nil {
		return fmt.Errorf("filesystem guard: %w", err)
	}

	decoded, err := decode.File(path)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	samples := centeredWindow(decoded)

	gen := shazam.NewGenerator()
	gen.MaxTimeSeconds = maxSignatureTimeSeconds
	gen.Feed(samples)

	for {
		sig, ok := gen.GetNextSignature()
		if !ok {
			d.Logger.Warn("no signature generated", "file", path)
			return nil
		}

		result, err := d.recogniseWithRetry(ctx, sig, opts, path)
		if err != nil {
			return fmt.Errorf("recognition: %w", err)
		}

		if len(result.Matches) == 0 {
			d.Logger.Info("no match yet, feeding more input", "file", path,
				"seconds_processed", float64(sig.NumberSamples)/16000)
			continue
		}

		return d.writeResult(ctx, path, result, opts)
	}
}

// centeredWindow implements spec.md §4.5 step 2: files longer than 36s are
// sliced to a centered 12-second window.
func centeredWindow(decoded decode.Decoded) []int16 {
	samples := decoded.Samples
	if decoded.Duration.Seconds() <= longFileThresholdSecs {
		return samples
	}
	start := int((decoded.Duration.Seconds()/2 - centeredWindowSeconds/2) * decode.TargetSampleRate)
	if start < 0 {
		start = 0
	}
	if start >= len(samples) {
		return nil
	}
	end := start + centeredWindowSeconds*decode.TargetSampleRate
	if end > len(samples) {
		end = len(samples)
	}
	return samples[start:end]
}

func (d *Driver) recogniseWithRetry(ctx context.Context, sig shazam.Signature, opts Options, path string) (shazam.Result, error) {
	delay := opts.baseDelay()
	var lastErr error
	for attempt := 1; attempt <= maxRetries+1; attempt++ {
		result, err := d.Client.Recognise(ctx, sig)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if attempt > maxRetries {
			break
		}
		backoff := delay
		if scaled := time.Duration(float64(delay) * math.Pow(2, float64(attempt-1))); scaled > backoff {
			backoff = scaled
		}
		d.Logger.Warn("recognition request failed, retrying", "file", path,
			"attempt", attempt, "delay", backoff, "error", err)
		select {
		case <-ctx.Done():
			return shazam.Result{}, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return shazam.Result{}, fmt.Errorf("giving up after %d attempts: %w", maxRetries+1, lastErr)
}

func (d *Driver) writeResult(ctx context.Context, path string, result shazam.Result, opts Options) error {
	title, artist, album, genre, label, year, coverArtURL := result.Metadata()

	var jpeg []byte
	if coverArtURL != "" {
		art, err := coverart.Fetch(ctx, coverArtURL)
		if err != nil {
			d.Logger.Warn("cover art fetch failed, continuing without it", "file", path, "error", err)
		} else {
			jpeg = art
		}
	}

	if err := tags.Write(path, tags.Metadata{
		Title:        title,
		Artist:       artist,
		Album:        album,
		Genre:        genre,
		Label:        label,
		Year:         year,
		CoverArtJPEG: jpeg,
	}); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	d.Logger.Info("recognised", "file", path, "artist", artist, "title", title)

	if opts.Rename && artist != "" && title != "" {
		if err := d.rename(path, artist, title, opts.Overwrite); err != nil {
			d.Logger.Warn("rename failed", "file", path, "error", err)
		}
	}
	return nil
}

// rename moves path to "<artist> - <title>.mp3" alongside it, sanitizing
// the derived name per spec.md §6.
func (d *Driver) rename(path, artist, title string, overwrite bool) error {
	dir := filepath.Dir(path)
	const ext = ".mp3"
	stem := fsguard.SanitizeFilename(fmt.Sprintf("%s - %s", artist, title))
	// fsguard's 128-byte cap counts the extension too.
	if limit := 128 - len(ext); len(stem) > limit {
		stem = stem[:limit]
	}
	dest := filepath.Join(dir, stem+ext)
	if dest == path {
		return nil
	}
	if !overwrite {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("destination %s already exists", dest)
		}
	}
	return os.Rename(path, dest)
}

// ErrConflictingFlags is returned when --overwrite is given without --rename.
var ErrConflictingFlags = errors.New("--overwrite requires --rename")
