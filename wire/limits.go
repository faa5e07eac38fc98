package wire

// DefaultMaxFrame is the default maximum encoded frame size (1 MiB).
// Audio blocks are never split; get/set-chunk payloads larger than
// DefaultMaxChunk are split into DefaultMaxChunk-sized pieces sharing one
// tag (spec.md §4.4 "Chunked transfer").
const DefaultMaxFrame int = 1 << 20

// DefaultMaxChunk (CHUNK_BYTES) is the default maximum payload carried by
// a single chunk frame of a chunked get/set-chunk transfer.
const DefaultMaxChunk int = 64 * 1024

// MaxFrameHardLimit is a ceiling Reader and Writer enforce on every frame
// regardless of their configured MaxFrame, the way bifaci/frame.go
// enforces a hard ceiling regardless of negotiation.
const MaxFrameHardLimit int = 16 << 20

// DefaultMaxReorderBuffer is kept for parity with the teacher's Limits
// shape, but is unused by this bridge: each context's pending FIFO is a
// strict queue, never reordered.
const DefaultMaxReorderBuffer int = 1

// Limits are the frame-size limits a Reader or Writer enforces. The
// PLUGIN_MAIN handshake does not exchange them: each endpoint uses
// DefaultLimits unless SetLimits is called, and Negotiate is a helper
// for combining two proposals.
type Limits struct {
	MaxFrame         int
	MaxChunk         int
	MaxReorderBuffer int
}

// DefaultLimits returns this endpoint's proposed limits before
// negotiation.
func DefaultLimits() Limits {
	return Limits{
		MaxFrame:         DefaultMaxFrame,
		MaxChunk:         DefaultMaxChunk,
		MaxReorderBuffer: DefaultMaxReorderBuffer,
	}
}

// Negotiate returns the element-wise minimum of two limit sets — the
// safe choice both peers can honor.
func Negotiate(a, b Limits) Limits {
	return Limits{
		MaxFrame:         minInt(a.MaxFrame, b.MaxFrame),
		MaxChunk:         minInt(a.MaxChunk, b.MaxChunk),
		MaxReorderBuffer: minInt(a.MaxReorderBuffer, b.MaxReorderBuffer),
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
