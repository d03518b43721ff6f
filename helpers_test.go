package metasprite_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/retroblast-engine/metasprite"
	"github.com/retroblast-engine/metasprite/internal/asebuild"
)

func mustParse(t *testing.T, data []byte, opts ...metasprite.Option) *metasprite.File {
	t.Helper()
	f, err := metasprite.Parse(data, opts...)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return f
}

func expectFormatError(t *testing.T, err error, contains string) *metasprite.FormatError {
	t.Helper()
	var fe *metasprite.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %v", err)
	}
	if !strings.Contains(fe.Reason, contains) {
		t.Errorf("reason %q does not mention %q", fe.Reason, contains)
	}
	return fe
}

func hasWarning(f *metasprite.File, stage, contains string) bool {
	for _, w := range f.Warnings {
		if w.Stage == stage && strings.Contains(w.Message, contains) {
			return true
		}
	}
	return false
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-4
}

// walkFile is a 4x4 canvas, five frames of [100,100,150,100,100] ms, one
// "body" group holding an image layer with a cel in every frame, and a
// "walk" tag over frames 2..4.
func walkFile() []byte {
	b := asebuild.New(4, 4)
	durations := []int{100, 100, 150, 100, 100}
	for i, d := range durations {
		f := b.Frame(d)
		if i == 0 {
			f.Group("body", 0).
				Image("torso", 1).
				Tags(asebuild.Tag{From: 2, To: 4, Name: "walk #loop"})
		}
		f.RawCel(1, i%2, 0, 2, 2, asebuild.Fill(2, 2, 255, 0, 0, 255))
	}
	return b.Bytes()
}
