// Package tags writes recognition results into a file's ID3 frames and
// checks whether a file already carries usable artist metadata, following
// original_source/metaaudio.py's setmp3metadata.
package tags

import (
	"fmt"
	"os"
	"strings"

	"github.com/bogem/id3v2/v2"
	dhowdentag "github.com/dhowden/tag"
)

// Metadata is the set of fields written into a file's ID3 frames on a
// successful recognition.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	Genre       string
	Label       string
	Year        string
	CoverArtJPEG []byte
}

// writtenFrames are the frames spec.md §6 names; any prior instance is
// removed before the new value is written.
var writtenFrames = []string{"TIT2", "TPE1", "TALB", "TCON", "TPUB", "TYER", "TDRC", "APIC"}

// HasKnownArtist reports whether filepath already carries an artist tag
// other than empty or "Unknown" (case-insensitive), per the driver's
// skip-if-tagged precondition.
func HasKnownArtist(filepath string) (bool, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return false, fmt.Errorf("tags: open %s: %w", filepath, err)
	}
	defer f.Close()

	m, err := dhowdentag.ReadFrom(f)
	if err != nil {
		// No readable metadata is not a known-artist condition.
		return false, nil //nolint:nilerr
	}
	artist := strings.TrimSpace(m.Artist())
	return artist != "" && !strings.EqualFold(artist, "Unknown"), nil
}

// Write removes any prior instance of the frames this core writes, then
// writes the supplied metadata, including a front-cover APIC frame if
// CoverArtJPEG is non-empty.
func Write(filepath string, md Metadata) error {
	tag, err := id3v2.Open(filepath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("tags: open %s: %w", filepath, err)
	}
	defer tag.Close()

	for _, id := range writtenFrames {
		tag.DeleteFrames(id)
	}

	tag.SetTitle(md.Title)
	tag.SetArtist(md.Artist)
	tag.SetAlbum(md.Album)
	tag.SetGenre(md.Genre)
	tag.AddTextFrame(tag.CommonID("TPUB"), tag.DefaultEncoding(), md.Label)
	tag.AddTextFrame(tag.CommonID("TYER"), tag.DefaultEncoding(), md.Year)
	tag.AddTextFrame(tag.CommonID("TDRC"), tag.DefaultEncoding(), md.Year)

	if len(md.CoverArtJPEG) > 0 {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     md.CoverArtJPEG,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("tags: save %s: %w", filepath, err)
	}
	return nil
}
