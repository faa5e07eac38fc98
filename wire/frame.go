// Package wire implements the bridge channel's frame format: the
// fixed-shape request/response record exchanged between the shim and the
// host agent, its CBOR wire encoding, and the length-prefixed reader/writer
// pair layered over a raw byte stream.
package wire

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// ProtocolVersion pins the wire format. Bumped only on a breaking change
// to the frame layout.
const ProtocolVersion uint8 = 1

// Cmd is the frame's command discriminator (closed set, spec.md §3).
type Cmd uint8

const (
	// CmdPluginMain is the handshake frame, tag 0, carrying PluginData.
	CmdPluginMain Cmd = iota
	// CmdPluginData is an unsolicited out-of-band PluginData refresh.
	CmdPluginData
	// CmdEffectDispatch forwards a call on the plugin's dispatch entry
	// point (shim -> host agent).
	CmdEffectDispatch
	// CmdAudioMasterCallback forwards a call on the host callback
	// (host agent -> shim).
	CmdAudioMasterCallback
	// CmdGetParameter reads a scalar parameter value.
	CmdGetParameter
	// CmdSetParameter writes a scalar parameter value; fire-and-forget.
	CmdSetParameter
	// CmdProcess runs one single-precision audio block.
	CmdProcess
	// CmdProcessDouble runs one double-precision audio block.
	CmdProcessDouble
	// CmdShowWindow requests the editor window be made visible.
	CmdShowWindow
	// CmdSetSchedParam carries a real-time scheduling hint for the RT
	// thread.
	CmdSetSchedParam
)

func (c Cmd) String() string {
	switch c {
	case CmdPluginMain:
		return "PLUGIN_MAIN"
	case CmdPluginData:
		return "PLUGIN_DATA"
	case CmdEffectDispatch:
		return "EFFECT_DISPATCH"
	case CmdAudioMasterCallback:
		return "AUDIO_MASTER_CALLBACK"
	case CmdGetParameter:
		return "GET_PARAMETER"
	case CmdSetParameter:
		return "SET_PARAMETER"
	case CmdProcess:
		return "PROCESS"
	case CmdProcessDouble:
		return "PROCESS_DOUBLE"
	case CmdShowWindow:
		return "SHOW_WINDOW"
	case CmdSetSchedParam:
		return "SET_SCHEDPARAM"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(c))
	}
}

// IsCallback reports whether a frame with this command is a peer-initiated
// call rather than a response: i.e. a command the *other* endpoint issues
// and this endpoint must serve. Used by the multiplexer (channel package)
// to decide whether to dispatch a received frame inline during wait().
func (c Cmd) IsCallback(weAreShim bool) bool {
	switch c {
	case CmdEffectDispatch, CmdGetParameter, CmdSetParameter, CmdProcess,
		CmdProcessDouble, CmdShowWindow, CmdSetSchedParam:
		// Shim -> host agent direction.
		return !weAreShim
	case CmdAudioMasterCallback:
		// Host agent -> shim direction.
		return weAreShim
	default:
		return false
	}
}

// Tag is the correlation id pairing a request with its response. Tag 0 is
// reserved for unsolicited frames (handshake, PLUGIN_DATA push).
type Tag uint32

// Frame is a single message on the bridge channel. Exactly one Frame is
// carried per channel message; partial frames never occur (Reader and
// Writer in io.go enforce this with a length prefix).
type Frame struct {
	Tag Tag
	Cmd Cmd

	// PluginData payload (CmdPluginMain, CmdPluginData).
	PluginData *PluginData

	// Effect / audio-master payload (CmdEffectDispatch,
	// CmdAudioMasterCallback). Shape is identical for both directions.
	Opcode int32
	Index  int32
	Value  int64
	Opt    float32
	Data   []byte

	// Audio block payload (CmdProcess, CmdProcessDouble). Samples are
	// channel-major: all of channel 0, then channel 1, etc.
	NumFrames    uint32
	NumChannels  uint32
	SamplesF32   []float32
	SamplesF64   []float64

	// Scalar payload (CmdGetParameter/CmdSetParameter use Index plus
	// Value carrying float32 bits — see ParamValueBits/ParamValueFromBits).

	// CmdShowWindow carries the parent-window handle in Value on the
	// request, and the plugin's window handle in both Index and Value on
	// the response.

	// CmdSetSchedParam payload.
	SchedPolicy   string
	SchedPriority int32

	// Chunk transfer bookkeeping (get/set-chunk opcodes span multiple
	// frames sharing one tag; see chunk.go in the shim and host agent
	// packages). ChunkTotal is set on the first frame of a chunked
	// transfer to announce total length; ChunkFinal marks the last
	// frame of a chunked get- or set-transfer.
	ChunkTotal *uint64
	ChunkFinal bool

	// StreamID correlates a chunk transfer's constituent frames beyond
	// the tag, for diagnostics; generated with uuid.New() the way the
	// teacher generates stream correlation ids for multiplexed
	// transfers.
	StreamID string

	// Checksum is the FNV-1a hash of Data, required on every frame of a
	// chunked get/set-chunk transfer (spec.md §4.4; a safe augmentation
	// over the original C++, which had no chunk integrity check).
	Checksum *uint64
}

// NewStreamID returns a fresh random identifier for a chunked transfer.
func NewStreamID() string {
	return uuid.New().String()
}

// ParamValueBits and ParamValueFromBits pack/unpack the float32
// parameter value carried in Value
// for GET_PARAMETER/SET_PARAMETER frames (the frame's Value field is an
// int64 container so one struct serves every opcode family; parameters
// are always float32 per the PLUGIN ABI).
func ParamValueBits(v float32) int64 {
	return int64(math.Float32bits(v))
}

func ParamValueFromBits(v int64) float32 {
	return math.Float32frombits(uint32(v))
}

// ComputeChecksum computes the FNV-1a 64-bit hash of data, matching
// bifaci/frame.go's ComputeChecksum (same constants, same algorithm).
func ComputeChecksum(data []byte) uint64 {
	const fnvOffsetBasis = uint64(0xcbf29ce484222325)
	const fnvPrime = uint64(0x100000001b3)

	hash := fnvOffsetBasis
	for _, b := range data {
		hash ^= uint64(b)
		hash *= fnvPrime
	}
	return hash
}

// VerifyChunkChecksum verifies a chunk-transfer frame's checksum against
// its Data. Returns nil if valid, an error if the checksum is missing or
// does not match.
func VerifyChunkChecksum(f *Frame) error {
	if f.Checksum == nil {
		return fmt.Errorf("wire: chunk frame missing required checksum")
	}
	expected := ComputeChecksum(f.Data)
	if *f.Checksum != expected {
		return fmt.Errorf("wire: chunk checksum mismatch: expected %d, got %d (%d bytes)", expected, *f.Checksum, len(f.Data))
	}
	return nil
}

// PluginData is the mutable snapshot of the plugin descriptor fields
// mirrored between shim and host agent (spec.md §3).
type PluginData struct {
	CanSetParameter    bool
	CanGetParameter    bool
	CanReplacing       bool
	CanDoublePrecision bool

	NumPrograms int32
	NumParams   int32
	NumInputs   int32
	NumOutputs  int32

	Flags        int32
	InitialDelay int32
	UniqueID     int32
	Version      int32
}

// Equal reports whether two PluginData snapshots carry identical values;
// used by the host agent's reconciliation pass (spec.md §4.4, invariant
// 3 in §3) to detect divergence cheaply without reflection.
func (p PluginData) Equal(o PluginData) bool {
	return p == o
}
