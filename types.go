package metasprite

// Aseprite primitive types, named as in the file format documentation.
type (
	BYTE  = uint8  // An 8-bit unsigned integer value
	WORD  = uint16 // A 16-bit unsigned integer value
	SHORT = int16  // A 16-bit signed integer value
	DWORD = uint32 // A 32-bit unsigned integer value
)

// Chunk types.
const (
	ChunkLayer        WORD = 0x2004
	ChunkCel          WORD = 0x2005
	ChunkCelExtra     WORD = 0x2006 // skipped
	ChunkColorProfile WORD = 0x2007
	ChunkFrameTags    WORD = 0x2018
	ChunkPalette      WORD = 0x2019 // skipped
	ChunkUserData     WORD = 0x2020
)

const (
	MagicNumber      = 0xA5E0
	MagicNumberFrame = 0xF1FA

	ColorDepthRGBA      WORD = 32
	ColorDepthGrayscale WORD = 16
	ColorDepthIndexed   WORD = 8
)

// Header is the 128-byte file header.
type Header struct {
	FileSize          DWORD    // File size (4 bytes)
	MagicNumberHeader WORD     // Magic number (0xA5E0) (2 bytes)
	FrameCount        WORD     // Number of frames (2 bytes)
	Width             WORD     // Width in pixels (2 bytes)
	Height            WORD     // Height in pixels (2 bytes)
	ColorDepth        WORD     // Color depth (bits per pixel) (32 bpp = RGBA, 16 bpp = Grayscale, 8 bpp = Indexed) (2 bytes)
	Flags             DWORD    // Flags: 1 = Layer opacity has valid value (4 bytes)
	Speed             WORD     // Speed (deprecated, use the frame duration of each frame header) (2 bytes)
	Reserved1         DWORD    // Reserved (set to 0) (4 bytes)
	Reserved2         DWORD    // Reserved (set to 0) (4 bytes)
	TransparentIdx    BYTE     // Palette entry which represents transparent color (only for Indexed sprites) (1 byte)
	IgnoreBytes       [3]BYTE  // Ignore these bytes (3 bytes)
	NumColors         WORD     // Number of colors (0 means 256 for old sprites format) (2 bytes)
	PixelWidth        BYTE     // Pixel width (pixel ratio is "pixel width/pixel height") (1 byte)
	PixelHeight       BYTE     // Pixel height (1 byte)
	GridX             SHORT    // X position of the grid (2 bytes)
	GridY             SHORT    // Y position of the grid (2 bytes)
	GridWidth         WORD     // Grid width (zero if there is no grid) (2 bytes)
	GridHeight        WORD     // Grid height (zero if there is no grid) (2 bytes)
	FutureUse         [84]BYTE // For future use (set to zero) (84 bytes)
}

func (h Header) ColorDepthDescription() string {
	switch h.ColorDepth {
	case ColorDepthRGBA:
		return "RGBA"
	case ColorDepthGrayscale:
		return "Grayscale"
	case ColorDepthIndexed:
		return "Indexed"
	default:
		return "Unknown color depth"
	}
}

func (h Header) IsLayerOpacityValid() bool {
	return h.Flags&1 != 0
}

// FrameHeader is the 16-byte header in front of every frame.
type FrameHeader struct {
	BytesInFrame  DWORD   // Bytes in frame, header included (4 bytes)
	MagicNumber   WORD    // Magic number (0xF1FA) (2 bytes)
	OldChunkCount WORD    // Old chunk count; 0xFFFF means use NewChunkCount (2 bytes)
	FrameDuration WORD    // Frame duration in milliseconds (2 bytes)
	Reserved      [2]BYTE // Reserved (set to 0) (2 bytes)
	NewChunkCount DWORD   // New chunk count; 0 means use OldChunkCount (4 bytes)
}

func (fh *FrameHeader) NumberOfChunks() uint32 {
	if fh.OldChunkCount == 0xFFFF {
		return fh.NewChunkCount
	}
	if fh.NewChunkCount == 0 {
		return uint32(fh.OldChunkCount)
	}
	return fh.NewChunkCount
}

const (
	headerSize      = 128
	frameHeaderSize = 16
	chunkHeaderSize = 6
)

// layerChunk is the fixed part of a 0x2004 chunk; the name follows.
type layerChunk struct {
	Flags         WORD    // 1 = Visible
	Type          WORD    // 0 = Normal image, 1 = Group, 2 = Tilemap
	ChildLevel    WORD    // Nesting depth relative to the root
	DefaultWidth  WORD    // Ignored
	DefaultHeight WORD    // Ignored
	BlendMode     WORD    // See BlendMode
	Opacity       BYTE    // Only valid when the header says so
	Reserved      [3]BYTE // For future (set to zero)
}

const (
	layerFlagVisible WORD = 1

	layerTypeImage   WORD = 0
	layerTypeGroup   WORD = 1
	layerTypeTilemap WORD = 2
)

// CelDataType represents the encoding of a cel chunk.
type CelDataType WORD

const (
	RawImageData CelDataType = iota
	LinkedCelData
	CompressedImageData
	CompressedTilemapData
)

func (t CelDataType) String() string {
	switch t {
	case RawImageData:
		return "Raw Image"
	case LinkedCelData:
		return "Linked Cel"
	case CompressedImageData:
		return "Compressed Image"
	case CompressedTilemapData:
		return "Compressed Tilemap"
	default:
		return "Unknown"
	}
}

// celChunk is the fixed part of a 0x2005 chunk.
type celChunk struct {
	LayerIndex   WORD        // Layer index (2 bytes)
	XPosition    SHORT       // X position (2 bytes)
	YPosition    SHORT       // Y position (2 bytes)
	OpacityLevel BYTE        // Opacity level (0-255) (1 byte)
	CelType      CelDataType // Cel Type (2 bytes)
	ZIndex       SHORT       // Z-Index (2 bytes)
	Reserved     [5]BYTE     // Reserved for future use (5 bytes)
}

// LoopAnimationDirection is the playback direction of a frame tag.
type LoopAnimationDirection BYTE

const (
	Forward         LoopAnimationDirection = iota // 0 = forward
	Reverse                                       // 1 = reverse
	PingPong                                      // 2 = ping-pong
	PingPongReverse                               // 3 = ping-pong reverse
)

func (d LoopAnimationDirection) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case PingPong:
		return "ping-pong"
	case PingPongReverse:
		return "ping-pong reverse"
	default:
		return "unknown"
	}
}

// RepeatTimes is how many times a tag plays; 0 means unspecified.
type RepeatTimes WORD

// tagChunk is the fixed part of one tag entry in a 0x2018 chunk.
type tagChunk struct {
	FromFrame          WORD                   // Frame where the tag starts (2 bytes)
	ToFrame            WORD                   // Frame where the tag ends (2 bytes)
	AnimationDirection LoopAnimationDirection // Loop animation direction (1 byte)
	Repeat             RepeatTimes            // Repeat N times (2 bytes)
	Reserved           [6]BYTE                // For future (set to zero) (6 bytes)
	Deprecated         [3]BYTE                // Deprecated tag color (3 bytes)
	ExtraByte          BYTE                   // Extra byte (1 byte)
}

const (
	userDataHasText  DWORD = 1
	userDataHasColor DWORD = 2
)

// Color profile types of a 0x2007 chunk.
const (
	NoColorProfile WORD = iota
	UseSRGB
	UseEmbeddedICCProfile
)

var colorProfileTypes = map[WORD]string{
	NoColorProfile:        "No color profile (as in old .aseprite files)",
	UseSRGB:               "Use sRGB",
	UseEmbeddedICCProfile: "Use the embedded ICC profile",
}

// ColorProfile records the color profile chunk type. The ICC payload is not kept.
type ColorProfile WORD

func (c ColorProfile) String() string {
	if description, exists := colorProfileTypes[WORD(c)]; exists {
		return description
	}
	return "Unknown color profile type"
}
