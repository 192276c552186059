package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned for target formats outside the catalog.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Encoder names understood by ffmpeg.
const (
	VideoH264 = "libx264"
	VideoVP9  = "libvpx-vp9"
	AudioAAC  = "aac"
	AudioOpus = "libopus"
)

// Format describes one supported target container and the codec pair
// used when a file has to be re-encoded into it.
type Format struct {
	ID         string `json:"id" yaml:"-"`
	VideoCodec string `json:"videoCodec" yaml:"video"`
	AudioCodec string `json:"audioCodec" yaml:"audio"`
	MimeType   string `json:"mimeType" yaml:"mime,omitempty"`
}

// defaultFormats is the built-in table. One line per format.
var defaultFormats = []Format{
	{ID: "mp4", VideoCodec: VideoH264, AudioCodec: AudioAAC, MimeType: "video/mp4"},
	{ID: "mkv", VideoCodec: VideoH264, AudioCodec: AudioAAC, MimeType: "video/x-matroska"},
	{ID: "mov", VideoCodec: VideoH264, AudioCodec: AudioAAC, MimeType: "video/quicktime"},
	{ID: "avi", VideoCodec: VideoH264, AudioCodec: AudioAAC, MimeType: "video/x-msvideo"},
	{ID: "flv", VideoCodec: VideoH264, AudioCodec: AudioAAC, MimeType: "video/x-flv"},
	{ID: "wmv", VideoCodec: VideoH264, AudioCodec: AudioAAC, MimeType: "video/x-ms-wmv"},
	{ID: "m4v", VideoCodec: VideoH264, AudioCodec: AudioAAC, MimeType: "video/x-m4v"},
	{ID: "3gp", VideoCodec: VideoH264, AudioCodec: AudioAAC, MimeType: "video/3gpp"},
	{ID: "ogv", VideoCodec: VideoH264, AudioCodec: AudioAAC, MimeType: "video/ogg"},
	{ID: "webm", VideoCodec: VideoVP9, AudioCodec: AudioOpus, MimeType: "video/webm"},
}

// Catalog is a closed, read-only set of formats. It is safe for concurrent use.
type Catalog struct {
	formats map[string]Format
}

// DefaultFormats returns a copy of the built-in table.
func DefaultFormats() []Format {
	out := make([]Format, len(defaultFormats))
	copy(out, defaultFormats)
	return out
}

// Default returns a catalog built from the built-in table.
func Default() *Catalog {
	c, err := New(defaultFormats)
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid default table: %v", err))
	}
	return c
}

// New builds a catalog from entries. IDs are normalized to lower case and
// must be unique; both codecs are required.
func New(entries []Format) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("catalog: no formats")
	}

	formats := make(map[string]Format, len(entries))
	for _, f := range entries {
		f.ID = normalize(f.ID)
		if f.ID == "" {
			return nil, errors.New("catalog: empty format id")
		}
		if f.VideoCodec == "" || f.AudioCodec == "" {
			return nil, fmt.Errorf("catalog: format %q needs both a video and an audio codec", f.ID)
		}
		if _, dup := formats[f.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate format %q", f.ID)
		}
		if f.MimeType == "" {
			f.MimeType = "application/octet-stream"
		}
		formats[f.ID] = f
	}

	return &Catalog{formats: formats}, nil
}

// Restrict returns a catalog holding only the listed formats. Every id must
// already be present.
func (c *Catalog) Restrict(ids []string) (*Catalog, error) {
	entries := make([]Format, 0, len(ids))
	for _, id := range ids {
		f, ok := c.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("catalog: %w: %s", ErrUnsupportedFormat, id)
		}
		entries = append(entries, f)
	}
	return New(entries)
}

// Lookup returns the format registered under id.
func (c *Catalog) Lookup(id string) (Format, bool) {
	f, ok := c.formats[normalize(id)]
	return f, ok
}

// IsSupported reports whether id is a known target format.
func (c *Catalog) IsSupported(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

// CodecsFor returns the video and audio encoders for a target format.
func (c *Catalog) CodecsFor(id string) (video, audio string, err error) {
	f, ok := c.Lookup(id)
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, id)
	}
	return f.VideoCodec, f.AudioCodec, nil
}

// MimeType returns the content type served for a format.
func (c *Catalog) MimeType(id string) string {
	if f, ok := c.Lookup(id); ok {
		return f.MimeType
	}
	return "application/octet-stream"
}

// IDs returns the sorted format identifiers.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.formats))
	for id := range c.formats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Formats returns all formats sorted by id.
func (c *Catalog) Formats() []Format {
	ids := c.IDs()
	out := make([]Format, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.formats[id])
	}
	return out
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
