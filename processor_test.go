package metasprite_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/retroblast-engine/metasprite"
	"github.com/retroblast-engine/metasprite/internal/asebuild"
)

type recorder struct {
	action string
	order  int
	seen   *[]string
	err    error
}

func (r recorder) Action() string { return r.action }
func (r recorder) Order() int { return r.order }

func (r recorder) Process(ctx *metasprite.ImportContext, layer *metasprite.Layer) error {
	*r.seen = append(*r.seen, layer.Name)
	return r.err
}

func metaFile() *metasprite.File {
	b := asebuild.New(2, 2)
	b.Frame(100).
		Image("@late(1)", 0).
		Image("@early(1)", 0).
		Image("@late(2)", 0).
		Image("@early(2)", 0).
		Image("@pivto", 0).
		Tags(asebuild.Tag{From: 0, To: 0, Name: "idle #loop"})
	f, err := metasprite.Parse(b.Bytes())
	if err != nil {
		panic(err)
	}
	return f
}

func TestRegistryRunOrder(t *testing.T) {
	var seen []string
	reg, err := metasprite.NewRegistry(
		recorder{action: "late", order: 10, seen: &seen},
		recorder{action: "early", order: 0, seen: &seen},
		recorder{action: "pivot", order: 0, seen: &seen},
	)
	if err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	ctx := metasprite.NewImportContext(metaFile(), nil, zerolog.New(&logs))
	if err := reg.Run(ctx); err != nil {
		t.Fatal(err)
	}

	want := []string{"@early(2)", "@early(1)", "@late(2)", "@late(1)"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("visit order mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), `"suggestion":"pivot"`) {
		t.Errorf("missing suggestion for @pivto in logs: %s", logs.String())
	}
}

func TestRegistryDuplicate(t *testing.T) {
	var seen []string
	_, err := metasprite.NewRegistry(
		recorder{action: "pivot", seen: &seen},
		recorder{action: "pivot", seen: &seen},
	)
	if err == nil || !strings.Contains(err.Error(), `duplicate processor for action "pivot"`) {
		t.Errorf("err = %v", err)
	}
}

func TestRegistryProcessError(t *testing.T) {
	var seen []string
	boom := errors.New("boom")
	reg, err := metasprite.NewRegistry(recorder{action: "early", seen: &seen, err: boom})
	if err != nil {
		t.Fatal(err)
	}

	err = reg.Run(metasprite.NewImportContext(metaFile(), nil, zerolog.Nop()))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if len(seen) != 1 {
		t.Errorf("processing continued after an error: %v", seen)
	}
}

func TestRegistrySuggest(t *testing.T) {
	var seen []string
	reg, _ := metasprite.NewRegistry(
		recorder{action: "pivot", seen: &seen},
		recorder{action: "transform", seen: &seen},
	)
	tests := map[string]string{
		"pivto":   "pivot",
		"trans":   "transform",
		"pvt":     "pivot",
		"nothing": "",
	}
	for in, want := range tests {
		if got := reg.Suggest(in); got != want {
			t.Errorf("Suggest(%q) = %q, want %q", in, got, want)
		}
	}
	if diff := cmp.Diff([]string{"pivot", "transform"}, reg.Actions()); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestImportContextClips(t *testing.T) {
	f := mustParse(t, walkFile())
	ctx := metasprite.NewImportContext(f, nil, zerolog.Nop())

	if ctx.Settings.PPU != 48 {
		t.Errorf("default settings not applied: %+v", ctx.Settings)
	}
	clip := ctx.Clips["walk"]
	if clip == nil {
		t.Fatal("no clip for tag walk")
	}
	if !clip.Loop || clip.Duration != f.TagDuration(f.FrameTag("walk")) {
		t.Errorf("clip = %+v", clip)
	}
	want := []metasprite.Keyframe{
		{Time: 0, Frame: 2},
		{Time: 150 * time.Millisecond, Frame: 3},
		{Time: 250 * time.Millisecond, Frame: 4},
		{Time: 350 * time.Millisecond, Frame: 4},
	}
	if diff := cmp.Diff(want, clip.Sprites["Sprites/body"]); diff != "" {
		t.Errorf("sprite track of body mismatch (-want +got):\n%s", diff)
	}
	if _, ok := clip.Sprites["Sprites"]; ok {
		t.Error("root without content layers got a sprite track")
	}
}

func TestImportContextDuplicateTags(t *testing.T) {
	b := asebuild.New(2, 2)
	b.Frame(100).
		Image("a", 0).
		Tags(
			asebuild.Tag{From: 0, To: 0, Name: "walk"},
			asebuild.Tag{From: 1, To: 2, Name: "walk"},
		)
	b.Frame(100)
	b.Frame(100)
	f := mustParse(t, b.Bytes())

	var logs bytes.Buffer
	ctx := metasprite.NewImportContext(f, nil, zerolog.New(&logs))

	if len(ctx.Clips) != 1 {
		t.Fatalf("clips = %d, want 1", len(ctx.Clips))
	}
	if clip := ctx.Clips["walk"]; clip.Tag != f.FrameTags[0] {
		t.Errorf("clip walk built from tag %d..%d, want the first tag", clip.Tag.From, clip.Tag.To)
	}
	if dups := f.DuplicateTags(); len(dups) != 1 || dups[0] != f.FrameTags[1] {
		t.Errorf("DuplicateTags = %v, want the second tag", dups)
	}
	if !strings.Contains(logs.String(), "duplicate frame tag name") || !strings.Contains(logs.String(), `"tag":"walk"`) {
		t.Errorf("duplicate tag was not logged: %s", logs.String())
	}
}

func TestCurve(t *testing.T) {
	var c metasprite.Curve
	c.AddKey(200, 3)
	c.AddKey(0, 1)
	c.AddKey(100, 2)
	c.AddKey(100, 5)

	want := []metasprite.CurveKey{{Time: 0, Value: 1}, {Time: 100, Value: 5}, {Time: 200, Value: 3}}
	if diff := cmp.Diff(want, c.Keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if v, ok := c.KeyAt(100); !ok || v != 5 {
		t.Errorf("KeyAt(100) = %v, %v", v, ok)
	}
	if _, ok := c.KeyAt(150); ok {
		t.Error("KeyAt between keys matched")
	}
	if v := c.Evaluate(150); v != 5 {
		t.Errorf("Evaluate(150) = %v, want 5", v)
	}
}
