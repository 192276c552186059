package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// tableFile is the on-disk codec table:
//
//	formats:
//	  mp4:  {video: libx264, audio: aac, mime: video/mp4}
//	  webm: {video: libvpx-vp9, audio: libopus, mime: video/webm}
type tableFile struct {
	Formats map[string]Format `yaml:"formats"`
}

// Parse builds a catalog from a YAML codec table. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var tf tableFile
	if err := dec.Decode(&tf); err != nil {
		return nil, fmt.Errorf("catalog: parse codec table: %w", err)
	}

	entries := make([]Format, 0, len(tf.Formats))
	for id, f := range tf.Formats {
		f.ID = id
		entries = append(entries, f)
	}
	return New(entries)
}

// LoadFile reads a YAML codec table from path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator supplied config path
	if err != nil {
		return nil, fmt.Errorf("catalog: read codec table: %w", err)
	}
	return Parse(data)
}
