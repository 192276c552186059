package naming

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FallbackName is used when sanitizing leaves nothing usable.
const FallbackName = "upload"

// maxNameLen keeps names well under common filesystem limits.
const maxNameLen = 200

// Policy selects how output files are named.
type Policy string

const (
	// PolicyPreserve keeps the upload's base name: clip.avi -> clip.mp4.
	PolicyPreserve Policy = "preserve"
	// PolicyFixed always names the output output.<ext>.
	PolicyFixed Policy = "fixed"
)

// ParsePolicy maps a config value onto a Policy, defaulting to PolicyPreserve.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), string(PolicyFixed)) {
		return PolicyFixed
	}
	return PolicyPreserve
}

// SecureFilename reduces an untrusted client filename to a flat ASCII name
// made of [A-Za-z0-9_.-]. Directory components are flattened, whitespace
// runs become underscores, accents are folded, and leading/trailing dots
// and underscores are stripped. The result may be empty.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r > unicode.MaxASCII:
			continue
		case r == '/' || r == '\\':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	joined := strings.Join(strings.Fields(b.String()), "_")

	b.Reset()
	for _, r := range joined {
		if isSafeRune(r) {
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), "._")
	if isReservedDeviceName(out) {
		out = "_" + out
	}
	return truncate(out)
}

// Sanitize is SecureFilename with FallbackName substituted for empty results.
func Sanitize(name string) string {
	if s := SecureFilename(name); s != "" {
		return s
	}
	return FallbackName
}

// SplitExt splits a sanitized filename into its base and lowercased
// extension without the dot.
func SplitExt(name string) (base, ext string) {
	dot := filepath.Ext(name)
	base = strings.TrimSuffix(name, dot)
	if base == "" {
		// ".mp4" style names have no extension, only a base.
		return name, ""
	}
	return base, strings.ToLower(strings.TrimPrefix(dot, "."))
}

// OutputName builds the converted file's name for a source base name.
func OutputName(policy Policy, base, format string) string {
	if policy == PolicyFixed || base == "" {
		base = "output"
	}
	return base + "." + format
}

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.' || r == '-':
		return true
	default:
		return false
	}
}

var reservedDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"LPT1": true, "LPT2": true, "LPT3": true,
}

func isReservedDeviceName(name string) bool {
	base, _, _ := strings.Cut(name, ".")
	return reservedDeviceNames[strings.ToUpper(base)]
}

func truncate(name string) string {
	if len(name) <= maxNameLen {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) >= maxNameLen/2 {
		ext = ""
	}
	return name[:maxNameLen-len(ext)] + ext
}
