package metasprite_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/retroblast-engine/metasprite"
	"github.com/retroblast-engine/metasprite/internal/asebuild"
)

func TestParseFrames(t *testing.T) {
	f := mustParse(t, walkFile())

	if f.Width != 4 || f.Height != 4 {
		t.Errorf("canvas = %dx%d, want 4x4", f.Width, f.Height)
	}
	if len(f.Frames) != 5 {
		t.Fatalf("got %d frames, want 5", len(f.Frames))
	}
	var durations []int
	for i, fr := range f.Frames {
		if fr.ID != i {
			t.Errorf("frame %d has ID %d", i, fr.ID)
		}
		durations = append(durations, fr.Duration)
	}
	if diff := cmp.Diff([]int{100, 100, 150, 100, 100}, durations); diff != "" {
		t.Errorf("durations mismatch (-want +got):\n%s", diff)
	}
	if len(f.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", f.Warnings)
	}
}

func TestParseCelsBelongToKnownLayers(t *testing.T) {
	b := asebuild.New(4, 4)
	b.Frame(100).
		Image("a", 0).
		Image("b", 0).
		RawCel(0, 0, 0, 1, 1, asebuild.Fill(1, 1, 1, 2, 3, 255)).
		RawCel(1, 0, 0, 1, 1, asebuild.Fill(1, 1, 1, 2, 3, 255)).
		RawCel(7, 0, 0, 1, 1, asebuild.Fill(1, 1, 1, 2, 3, 255))

	f := mustParse(t, b.Bytes())
	for index := range f.Frames[0].Cels {
		if f.FindLayer(index) == nil {
			t.Errorf("cel keyed by unknown layer %d", index)
		}
	}
	if len(f.Frames[0].Cels) != 2 {
		t.Errorf("got %d cels, want 2", len(f.Frames[0].Cels))
	}
}

func TestParseCompressedMatchesRaw(t *testing.T) {
	pixels := make([]byte, 0, 3*2*4)
	for i := 0; i < 6; i++ {
		pixels = append(pixels, byte(i*40), byte(255-i*40), byte(i), byte(100+i*30))
	}

	build := func(compressed bool) []byte {
		b := asebuild.New(8, 8)
		fr := b.Frame(100).Image("layer", 0)
		if compressed {
			fr.CompressedCel(0, 2, 3, 3, 2, pixels)
		} else {
			fr.RawCel(0, 2, 3, 3, 2, pixels)
		}
		return b.Bytes()
	}

	raw := mustParse(t, build(false)).Frames[0].Cels[0]
	zip := mustParse(t, build(true)).Frames[0].Cels[0]

	if zip.Type != metasprite.CompressedImageData || raw.Type != metasprite.RawImageData {
		t.Errorf("types = %v / %v", raw.Type, zip.Type)
	}
	if raw.Bounds() != zip.Bounds() {
		t.Errorf("bounds %v != %v", raw.Bounds(), zip.Bounds())
	}
	if diff := cmp.Diff(raw.Pixels(), zip.Pixels()); diff != "" {
		t.Errorf("compressed pixels differ from raw (-raw +compressed):\n%s", diff)
	}
	if got := raw.Pixel(3, 3); got != raw.PixelRaw(1, 0) {
		t.Errorf("Pixel(3,3) = %v, want PixelRaw(1,0) = %v", got, raw.PixelRaw(1, 0))
	}
	if got := raw.Pixel(0, 0); got != (metasprite.Color{}) {
		t.Errorf("Pixel outside the cel = %v, want transparent", got)
	}
}

func TestParseHeaderErrors(t *testing.T) {
	good := walkFile()

	tests := []struct {
		name     string
		data     func() []byte
		contains string
	}{
		{
			name:     "short header",
			data:     func() []byte { return good[:60] },
			contains: "truncated file header",
		},
		{
			name: "bad magic",
			data: func() []byte {
				d := bytes.Clone(good)
				d[4], d[5] = 0x00, 0x00
				return d
			},
			contains: "file header magic",
		},
		{
			name: "indexed color depth",
			data: func() []byte {
				b := asebuild.New(4, 4)
				b.ColorDepth = 8
				b.Frame(100)
				return b.Bytes()
			},
			contains: "8 bpp (Indexed)",
		},
		{
			name: "bad frame magic",
			data: func() []byte {
				b := asebuild.New(4, 4)
				b.Frame(100).BadMagic = 0xBEEF
				return b.Bytes()
			},
			contains: "frame magic",
		},
		{
			name: "chunk size below header size",
			data: func() []byte {
				b := asebuild.New(4, 4)
				b.Frame(100)
				d := b.Bytes()
				// Append a chunk declaring 2 bytes and fix up the frame header.
				d = append(d, 0x02, 0x00, 0x00, 0x00, 0x04, 0x20)
				d[128] += 6
				d[128+6] = 1
				return d
			},
			contains: "invalid chunk size 2",
		},
		{
			name:     "truncated frame",
			data:     func() []byte { return good[:len(good)-10] },
			contains: "truncated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := metasprite.Parse(tt.data())
			if f != nil {
				t.Error("expected no document alongside an error")
			}
			expectFormatError(t, err, tt.contains)
		})
	}
}

func TestParseNewChunkCount(t *testing.T) {
	b := asebuild.New(2, 2)
	fr := b.Frame(80).Image("a", 0).RawCel(0, 0, 0, 1, 1, asebuild.Fill(1, 1, 0, 0, 0, 255))
	fr.NewChunkCount = true

	f := mustParse(t, b.Bytes())
	if len(f.Frames[0].Cels) != 1 {
		t.Errorf("got %d cels, want 1", len(f.Frames[0].Cels))
	}
}

func TestParseSkipsUnknownChunks(t *testing.T) {
	b := asebuild.New(2, 2)
	b.Frame(100).
		Chunk(asebuild.ChunkPalette, make([]byte, 20)).
		Image("a", 0).
		Chunk(0x7777, []byte{1, 2, 3}).
		RawCel(0, 0, 0, 1, 1, asebuild.Fill(1, 1, 0, 0, 0, 255)).
		Chunk(asebuild.ChunkCelExtra, make([]byte, 36))

	f := mustParse(t, b.Bytes())
	if len(f.Frames[0].Cels) != 1 || len(f.ContentLayers) != 1 {
		t.Errorf("got %d cels and %d layers, want 1 and 1", len(f.Frames[0].Cels), len(f.ContentLayers))
	}
}

func TestParseColorProfile(t *testing.T) {
	b := asebuild.New(2, 2)
	b.Frame(100).ColorProfile(1)

	f := mustParse(t, b.Bytes())
	if f.ColorProfile != metasprite.ColorProfile(metasprite.UseSRGB) {
		t.Errorf("color profile = %v, want sRGB", f.ColorProfile)
	}
}

func TestParseFrameWarnings(t *testing.T) {
	b := asebuild.New(2, 2)
	b.Frame(100).SizeDelta = 4
	b.Trailing = []byte{0, 0, 0}

	f := mustParse(t, b.Bytes())
	if !hasWarning(f, "frame", "declares 20 bytes, read 16") {
		t.Errorf("missing frame size warning in %v", f.Warnings)
	}
	if !hasWarning(f, "frame", "3 bytes left") {
		t.Errorf("missing trailing bytes warning in %v", f.Warnings)
	}
}

func TestParseStrict(t *testing.T) {
	b := asebuild.New(2, 2)
	b.Frame(100)
	b.Trailing = []byte{0}

	_, err := metasprite.Parse(b.Bytes(), metasprite.WithStrictParsing())
	expectFormatError(t, err, "strict parsing")
}

func TestParseLogsWarnings(t *testing.T) {
	b := asebuild.New(2, 2)
	b.Frame(100).Layer(asebuild.Layer{Name: "tiles", Type: asebuild.LayerTilemap, Opacity: 255})

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	f := mustParse(t, b.Bytes(), metasprite.WithLogger(logger))

	if !hasWarning(f, "layer", "tilemap layer") {
		t.Errorf("missing tilemap warning in %v", f.Warnings)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"stage":"layer"`)) {
		t.Errorf("warning not logged: %s", buf.String())
	}
}

func TestParseCelErrors(t *testing.T) {
	t.Run("pixel count", func(t *testing.T) {
		b := asebuild.New(4, 4)
		b.Frame(100).Image("a", 0).RawCel(0, 0, 0, 2, 2, asebuild.Fill(1, 1, 0, 0, 0, 255))
		_, err := metasprite.Parse(b.Bytes())
		expectFormatError(t, err, "color buffer size incorrect")
	})
	t.Run("partial pixel", func(t *testing.T) {
		b := asebuild.New(4, 4)
		b.Frame(100).Image("a", 0).RawCel(0, 0, 0, 1, 1, []byte{1, 2, 3})
		_, err := metasprite.Parse(b.Bytes())
		expectFormatError(t, err, "not a multiple of 4")
	})
	t.Run("compressed cel larger than declared", func(t *testing.T) {
		b := asebuild.New(4, 4)
		b.Frame(100).Image("a", 0).CompressedCel(0, 0, 0, 1, 1, asebuild.Fill(64, 64, 0, 0, 0, 255))
		_, err := metasprite.Parse(b.Bytes())
		expectFormatError(t, err, "inflate to more than 4 bytes")
	})
	t.Run("duplicate cel", func(t *testing.T) {
		b := asebuild.New(4, 4)
		b.Frame(100).Image("a", 0).
			RawCel(0, 0, 0, 1, 1, asebuild.Fill(1, 1, 0, 0, 0, 255)).
			RawCel(0, 1, 1, 1, 1, asebuild.Fill(1, 1, 0, 0, 0, 255))
		_, err := metasprite.Parse(b.Bytes())
		expectFormatError(t, err, "two cels for layer 0")
	})
	t.Run("tilemap cel dropped", func(t *testing.T) {
		b := asebuild.New(4, 4)
		b.Frame(100).Image("a", 0).Cel(asebuild.Cel{Layer: 0, Opacity: 255, Type: asebuild.CelTilemap, Extra: make([]byte, 8)})
		f := mustParse(t, b.Bytes())
		if len(f.Frames[0].Cels) != 0 {
			t.Error("tilemap cel was kept")
		}
		if !hasWarning(f, "cel", "tilemap cel") {
			t.Errorf("missing tilemap cel warning in %v", f.Warnings)
		}
	})
}

func TestParseTruncatedIsFormatError(t *testing.T) {
	data := walkFile()
	for n := 0; n < len(data); n += 7 {
		_, err := metasprite.Parse(data[:n])
		var fe *metasprite.FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("prefix of %d bytes: expected *FormatError, got %v", n, err)
		}
	}
}
