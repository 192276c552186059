package planner

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"video-converter/internal/catalog"
	"video-converter/internal/naming"
)

func TestCanRemux(t *testing.T) {
	tests := []struct {
		src      string
		target   string
		expected bool
	}{
		{"mkv", "mp4", true},
		{"mov", "mp4", true},
		{"mp4", "mkv", true},
		{"mp4", "mov", true},
		{"avi", "mp4", false},
		{"mp4", "webm", false},
		{"mkv", "webm", false},
		{"webm", "mp4", false},
		{"mp4", "mp4", false},
		{"mkv", "mov", false},
		{"", "mp4", false},
	}

	for _, tt := range tests {
		t.Run(tt.src+"->"+tt.target, func(t *testing.T) {
			if got := CanRemux(tt.src, tt.target); got != tt.expected {
				t.Errorf("CanRemux(%q, %q) = %v, expected %v", tt.src, tt.target, got, tt.expected)
			}
		})
	}
}

func TestPlanRemux(t *testing.T) {
	p := New(catalog.Default(), DefaultOptions())

	plan, err := p.Plan(NewSource("clip.mp4"), "MKV")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	if plan.Strategy != StrategyRemux {
		t.Errorf("Expected remux, got %s", plan.Strategy)
	}
	if plan.VideoCodec != "" || plan.AudioCodec != "" {
		t.Errorf("Expected no codecs for remux, got %q/%q", plan.VideoCodec, plan.AudioCodec)
	}

	want := []string{"-hide_banner", "-nostdin", "-y", "-i", "in/clip.mp4", "-c", "copy", "out/clip.mkv"}
	if diff := cmp.Diff(want, plan.Args()); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}

	for _, a := range plan.Args() {
		if a == "-c:v" || a == "-c:a" || a == "-strict" {
			t.Errorf("Remux plan carries codec argument %q", a)
		}
	}
}

func TestPlanReEncodeCodecs(t *testing.T) {
	p := New(catalog.Default(), DefaultOptions())

	tests := []struct {
		name      string
		source    string
		target    string
		wantVideo string
		wantAudio string
	}{
		{"avi to mp4", "clip.avi", "mp4", catalog.VideoH264, catalog.AudioAAC},
		{"mp4 to webm", "clip.mp4", "webm", catalog.VideoVP9, catalog.AudioOpus},
		{"mkv to webm", "clip.mkv", "webm", catalog.VideoVP9, catalog.AudioOpus},
		{"mov to mkv", "clip.mov", "mkv", catalog.VideoH264, catalog.AudioAAC},
		{"mp4 to mp4", "clip.mp4", "mp4", catalog.VideoH264, catalog.AudioAAC},
		{"no extension", "clip", "avi", catalog.VideoH264, catalog.AudioAAC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := p.Plan(NewSource(tt.source), tt.target)
			if err != nil {
				t.Fatalf("Plan failed: %v", err)
			}
			if plan.Strategy != StrategyReEncode {
				t.Errorf("Expected reencode, got %s", plan.Strategy)
			}
			if plan.VideoCodec != tt.wantVideo || plan.AudioCodec != tt.wantAudio {
				t.Errorf("Expected %s/%s, got %s/%s", tt.wantVideo, tt.wantAudio, plan.VideoCodec, plan.AudioCodec)
			}
		})
	}
}

func TestPlanReEncodeArgs(t *testing.T) {
	p := New(catalog.Default(), DefaultOptions())

	plan, err := p.Plan(NewSource("clip.avi"), "webm")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	want := []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", "in/clip.avi",
		"-c:v", "libvpx-vp9",
		"-c:a", "libopus",
		"-strict", "experimental",
		"out/clip.webm",
	}
	if diff := cmp.Diff(want, plan.Args()); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanOptions(t *testing.T) {
	p := New(catalog.Default(), Options{
		Overwrite:    false,
		VideoBitrate: "2M",
		Naming:       naming.PolicyFixed,
	})

	plan, err := p.Plan(NewSource("clip.avi"), "mp4")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	want := []string{
		"-hide_banner", "-nostdin",
		"-i", "in/clip.avi",
		"-c:v", "libx264", "-b:v", "2M",
		"-c:a", "aac",
		"out/output.mp4",
	}
	if diff := cmp.Diff(want, plan.Args()); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
	if plan.OutputName != "output.mp4" {
		t.Errorf("Expected output.mp4, got %s", plan.OutputName)
	}
}

func TestPlanUnsupportedFormat(t *testing.T) {
	p := New(catalog.Default(), DefaultOptions())

	_, err := p.Plan(NewSource("clip.mp4"), "xyz")
	if !errors.Is(err, catalog.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestPlanArgsIsCopy(t *testing.T) {
	p := New(catalog.Default(), DefaultOptions())

	plan, err := p.Plan(NewSource("clip.mp4"), "mkv")
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}

	args := plan.Args()
	args[0] = "mutated"
	if plan.Args()[0] != "-hide_banner" {
		t.Error("Expected Args to return an independent copy")
	}
}

func TestStrategyString(t *testing.T) {
	if StrategyRemux.String() != "remux" || StrategyReEncode.String() != "reencode" {
		t.Errorf("Unexpected strategy labels: %s %s", StrategyRemux, StrategyReEncode)
	}
}
