package abi

// Rect mirrors the PLUGIN ABI's editor bounding rectangle, as returned by
// OpEditGetRect.
type Rect struct {
	Top    int16
	Left   int16
	Bottom int16
	Right  int16
}

// PinProperties mirrors the PLUGIN ABI's per-pin (input/output channel)
// property struct, returned by OpGetInputProperties/OpGetOutputProperties.
type PinProperties struct {
	Label          string // max 63 bytes + NUL on the wire, truncated on marshal
	Flags          int32
	ArrangementType int32
	ShortLabel     string // max 7 bytes + NUL
}

// ParameterProperties mirrors the PLUGIN ABI's extended parameter
// property struct (step sizes, display label, category).
type ParameterProperties struct {
	StepFloat      float32
	SmallStepFloat float32
	LargeStepFloat float32
	Label          string
	Flags          int32
	MinInteger     int32
	MaxInteger     int32
	StepInteger    int32
	LargeStepInteger int32
	ShortLabel     string
}

// SpeakerArrangement mirrors the PLUGIN ABI's variable-length speaker
// arrangement struct: a type tag plus one descriptor per declared
// speaker.
type SpeakerArrangement struct {
	Type     int32
	Speakers []Speaker
}

// Speaker describes one channel's position in a SpeakerArrangement.
type Speaker struct {
	Azimuth   float32
	Elevation float32
	Radius    float32
	Reserved  float32
	Name      string // max 63 bytes + NUL
	Type      int32
}

// MidiEvent mirrors one self-describing event record from the PLUGIN
// ABI's MIDI batch payload (spec.md §3 "MIDI batch payload"): receivers
// reconstruct an array-of-pointers view just before invoking the plugin,
// as spec.md §9's "Pointer-graph MIDI events" Design Note describes.
type MidiEvent struct {
	Type        int32
	DeltaFrames int32
	Flags       int32
	Data        []byte // densely packed; ByteSize() reports 12 + len(Data)
}

// ByteSize reports the size, in bytes, this event occupies when packed
// densely on the wire (its own fixed header plus its variable Data).
func (e MidiEvent) ByteSize() int {
	return 12 + len(e.Data)
}

// Descriptor is the mutable descriptor snapshot mirrored between shim and
// host agent — the ABI-facing counterpart of wire.PluginData, expanded
// with the capability-gated function-pointer view the shim null-checks
// before exposing an ABI entry point to the host DAW (spec.md §4.4
// "Capability booleans whose value is false cause the shim to null out
// the corresponding ABI function pointer").
type Descriptor struct {
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

// EnabledEntryPoints reports, for each capability-gated ABI function
// pointer, whether it should be non-nil given this descriptor. The
// original source additionally nulls a pointer when the count backing a
// capability is zero (SPEC_FULL.md "Supplemented features"): a plugin
// reporting CanGetParameter but NumParams == 0 still gets its
// getParameter pointer nulled, since there is nothing to get.
type EnabledEntryPoints struct {
	SetParameter bool
	GetParameter bool
	Process      bool
	ProcessDouble bool
}

// Enabled computes the gated entry-point set for d.
func (d Descriptor) Enabled() EnabledEntryPoints {
	return EnabledEntryPoints{
		SetParameter:  d.CanSetParameter && d.NumParams > 0,
		GetParameter:  d.CanGetParameter && d.NumParams > 0,
		Process:       d.CanReplacing,
		ProcessDouble: d.CanDoublePrecision,
	}
}
