// Package abi holds the bit-exact data structures and opcode identifiers
// of the PLUGIN ABI surface (spec.md §6): the effect descriptor, its
// dispatch opcode set, the host callback's opcode set, and the property
// structs (rect, pin properties, parameter properties, speaker
// arrangement, MIDI event) exchanged by value through those opcodes.
//
// Numeric opcode values are assigned locally, in the declaration order of
// the constants below; opcodes of different marshalling groups
// (value-only, string-returning, buffer-accepting, property-query,
// edit-rect, speaker-arrangement, MIDI, chunked, close) are interleaved
// in that order. The real third-party header is not available in this
// environment, so the values are not reproduced byte-for-byte; every
// opcode's *name*, *grouping*, and *marshalling policy* is grounded on
// original_source/plugin.cc and spec.md §4.3.
package abi

// EffectOpcode is an opcode on the plugin's dispatch entry point (shim ->
// host agent, CmdEffectDispatch).
type EffectOpcode int32

const (
	OpOpen EffectOpcode = iota
	OpClose
	OpSetProgram
	OpGetProgram
	OpSetProgramName
	OpGetProgramName
	OpGetParamLabel
	OpGetParamDisplay
	OpGetParamName
	OpSetSampleRate
	OpSetBlockSize
	OpMainsChanged
	OpEditGetRect
	OpEditOpen
	OpEditClose
	OpEditIdle
	OpIdentify     // deprecated pin op, value-only
	OpGetChunk
	OpSetChunk
	OpProcessEvents
	OpCanBeAutomated // deprecated pin op
	OpGetProgramNameIndexed
	OpGetInputProperties
	OpGetOutputProperties
	OpGetPlugCategory
	OpSetSpeakerArrangement
	OpGetSpeakerArrangement
	OpGetEffectName
	OpGetVendorString
	OpGetProductString
	OpGetVendorVersion
	OpVendorSpecific
	OpCanDo
	OpGetAbiVersion
	OpKeysRequired // deprecated pin op
	OpBeginSetProgram
	OpEndSetProgram
	OpStartProcess
	OpStopProcess
	OpGetParameterProperties
)

// ReturnsString reports whether the response carries a NUL-terminated
// string in its data slot (spec.md §4.3 "Buffer-returning string
// opcodes").
func (op EffectOpcode) ReturnsString() bool {
	switch op {
	case OpGetProgramName, OpGetParamLabel, OpGetParamDisplay, OpGetParamName,
		OpGetEffectName, OpGetVendorString, OpGetProductString,
		OpGetProgramNameIndexed:
		return true
	default:
		return false
	}
}

// AcceptsBuffer reports whether the request carries a caller-supplied
// string in its data slot (spec.md §4.3 "Buffer-accepting opcodes").
func (op EffectOpcode) AcceptsBuffer() bool {
	switch op {
	case OpSetProgramName, OpCanDo, OpVendorSpecific:
		return true
	default:
		return false
	}
}

// AudioMasterOpcode is an opcode on the host's callback entry point (host
// agent -> shim, CmdAudioMasterCallback).
type AudioMasterOpcode int32

const (
	AMAutomate AudioMasterOpcode = iota
	AMVersion
	AMCurrentID
	AMIdle
	AMPinConnected // deprecated
	AMWantMidi     // deprecated
	AMGetTime
	AMProcessEvents
	AMSetTime
	AMTempoAt // deprecated
	AMGetNumAutomatableParameters
	AMGetParameterQuantization
	AMIOChanged
	AMNeedIdle // deprecated
	AMSizeWindow
	AMGetSampleRate
	AMGetBlockSize
	AMGetInputLatency
	AMGetOutputLatency
	AMGetPreviousPlug
	AMGetNextPlug
	AMWillReplaceOrAccumulate
	AMGetCurrentProcessLevel
	AMGetAutomationState
	AMOfflineStart
	AMOfflineRead
	AMOfflineWrite
	AMOfflineGetCurrentPass
	AMOfflineGetCurrentMetaPass
	AMGetVendorString
	AMGetProductString
	AMGetVendorVersion
	AMVendorSpecific
	AMSetIcon
	AMCanDo
	AMGetLanguage
	AMOpenWindow
	AMCloseWindow
	AMGetDirectory
	AMUpdateDisplay
	AMBeginEdit
	AMEndEdit
	AMOpenFileSelector
	AMCloseFileSelector
)

