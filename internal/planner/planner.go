package planner

import (
	"path"
	"strings"

	"video-converter/internal/catalog"
	"video-converter/internal/naming"
)

// Options are the tunables applied to every plan.
type Options struct {
	// Overwrite passes -y so an existing output never blocks the encoder.
	Overwrite bool
	// VideoBitrate is passed as -b:v on re-encodes when non-empty (e.g. "2M").
	VideoBitrate string
	// ExperimentalAudio passes -strict experimental on re-encodes, which
	// some AAC encoder builds require.
	ExperimentalAudio bool
	// Naming selects the output filename policy.
	Naming naming.Policy
}

// DefaultOptions mirrors the converter's historical command line.
func DefaultOptions() Options {
	return Options{
		Overwrite:         true,
		ExperimentalAudio: true,
		Naming:            naming.PolicyPreserve,
	}
}

// Planner turns a source and a target format into a Plan. It is read-only
// after construction and safe for concurrent use.
type Planner struct {
	catalog *catalog.Catalog
	opts    Options
}

// New creates a Planner backed by cat.
func New(cat *catalog.Catalog, opts Options) *Planner {
	if opts.Naming == "" {
		opts.Naming = naming.PolicyPreserve
	}
	return &Planner{catalog: cat, opts: opts}
}

// Catalog returns the catalog the planner resolves formats against.
func (p *Planner) Catalog() *catalog.Catalog {
	return p.catalog
}

// Plan decides between remux and re-encode and builds the argument list.
// It fails with catalog.ErrUnsupportedFormat for unknown targets.
func (p *Planner) Plan(src Source, target string) (*Plan, error) {
	target = strings.ToLower(strings.TrimSpace(target))

	videoCodec, audioCodec, err := p.catalog.CodecsFor(target)
	if err != nil {
		return nil, err
	}

	outputName := naming.OutputName(p.opts.Naming, src.Base, target)
	plan := &Plan{
		Strategy:   StrategyReEncode,
		Target:     target,
		InputName:  src.Name,
		OutputName: outputName,
		InputPath:  path.Join(InputDir, src.Name),
		OutputPath: path.Join(OutputDir, outputName),
	}

	// Preamble and input.
	args := make([]string, 0, 16)
	args = append(args, "-hide_banner", "-nostdin")
	if p.opts.Overwrite {
		args = append(args, "-y")
	}
	args = append(args, "-i", plan.InputPath)

	if CanRemux(src.Ext, target) {
		plan.Strategy = StrategyRemux
		args = append(args, "-c", "copy")
	} else {
		plan.VideoCodec = videoCodec
		plan.AudioCodec = audioCodec

		args = append(args, "-c:v", videoCodec)
		if p.opts.VideoBitrate != "" {
			args = append(args, "-b:v", p.opts.VideoBitrate)
		}
		args = append(args, "-c:a", audioCodec)
		if p.opts.ExperimentalAudio {
			args = append(args, "-strict", "experimental")
		}
	}

	// Output.
	args = append(args, plan.OutputPath)
	plan.args = args

	return plan, nil
}
