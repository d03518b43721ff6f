package metasprite_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/retroblast-engine/metasprite"
	"github.com/retroblast-engine/metasprite/internal/asebuild"
)

func directionFile(direction uint8, name string) *metasprite.File {
	b := asebuild.New(2, 2)
	b.Frame(100).Tags(asebuild.Tag{From: 1, To: 4, Direction: direction, Name: name})
	for i := 0; i < 4; i++ {
		b.Frame(100 + 10*i)
	}
	f, err := metasprite.Parse(b.Bytes())
	if err != nil {
		panic(err)
	}
	return f
}

func TestAnimationPlayOrder(t *testing.T) {
	tests := []struct {
		direction uint8
		want      []int
	}{
		{0, []int{1, 2, 3, 4}},
		{1, []int{4, 3, 2, 1}},
		{2, []int{1, 2, 3, 4, 3, 2}},
		{3, []int{4, 3, 2, 1, 2, 3}},
	}
	for _, tt := range tests {
		f := directionFile(tt.direction, "t")
		tag := f.FrameTags[0]
		t.Run(tag.Direction.String(), func(t *testing.T) {
			a := f.NewAnimation(tag, time.Time{})
			if diff := cmp.Diff(tt.want, a.Frames); diff != "" {
				t.Errorf("play order mismatch (-want +got):\n%s", diff)
			}
			for i, fr := range a.Frames {
				if a.Duration[i] != f.Frames[fr].DurationTime() {
					t.Errorf("duration of entry %d = %v", i, a.Duration[i])
				}
			}
		})
	}
}

func TestAnimationUpdateLoops(t *testing.T) {
	f := directionFile(0, "walk #loop")
	start := time.Unix(0, 0)
	a := f.NewAnimation(f.FrameTags[0], start)
	if !a.Loop {
		t.Fatal("tag with #loop does not loop")
	}

	// Frames 1..4 last 100, 110, 120 and 130 ms.
	steps := []struct {
		at   time.Duration
		want int
	}{
		{50 * time.Millisecond, 1},
		{100 * time.Millisecond, 2},
		{330 * time.Millisecond, 4},
		{460 * time.Millisecond, 1},
		{560 * time.Millisecond, 2},
	}
	for _, s := range steps {
		a.Update(start.Add(s.at))
		if got := a.Frame(); got != s.want {
			t.Errorf("at %v frame = %d, want %d", s.at, got, s.want)
		}
	}
	if a.Done {
		t.Error("looping animation reported done")
	}
}

func TestAnimationUpdateStops(t *testing.T) {
	f := directionFile(0, "once")
	start := time.Unix(0, 0)
	a := f.NewAnimation(f.FrameTags[0], start)

	if a.Update(start.Add(10 * time.Second)) != true {
		t.Error("Update did not report a change")
	}
	if a.Frame() != 4 || !a.Done {
		t.Errorf("frame = %d, done = %v; want last frame and done", a.Frame(), a.Done)
	}
	if a.Update(start.Add(20 * time.Second)) {
		t.Error("finished animation changed frame")
	}

	a.Reset(start)
	if a.Frame() != 1 || a.Done {
		t.Error("Reset did not rewind")
	}
}
