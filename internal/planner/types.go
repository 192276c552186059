package planner

import (
	"video-converter/internal/naming"
)

// Strategy is how a file gets from its source container to the target.
type Strategy int

const (
	// StrategyReEncode decodes and re-compresses both tracks.
	StrategyReEncode Strategy = iota
	// StrategyRemux copies the encoded streams into a new container.
	StrategyRemux
)

func (s Strategy) String() string {
	if s == StrategyRemux {
		return "remux"
	}
	return "reencode"
}

// Workspace-relative directories the plan reads from and writes to.
const (
	InputDir  = "in"
	OutputDir = "out"
)

// Source describes an uploaded file. Name must already be sanitized.
type Source struct {
	Name string // sanitized filename, e.g. "clip.avi"
	Base string // name without extension, e.g. "clip"
	Ext  string // lowercased extension without dot, e.g. "avi"
}

// NewSource derives a Source from a sanitized filename.
func NewSource(name string) Source {
	base, ext := naming.SplitExt(name)
	return Source{Name: name, Base: base, Ext: ext}
}

// Plan is the decided conversion for one request. It is immutable once
// built; Args returns a copy of the argument list.
type Plan struct {
	Strategy   Strategy
	Target     string
	VideoCodec string // empty for remux
	AudioCodec string // empty for remux
	InputName  string
	OutputName string
	InputPath  string // relative to the workspace
	OutputPath string // relative to the workspace

	args []string
}

// Args returns the encoder arguments, excluding the binary itself.
func (p *Plan) Args() []string {
	out := make([]string, len(p.args))
	copy(out, p.args)
	return out
}
