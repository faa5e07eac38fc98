package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectOpcodeReturnsString(t *testing.T) {
	assert.True(t, OpGetEffectName.ReturnsString())
	assert.True(t, OpGetProgramName.ReturnsString())
	assert.False(t, OpOpen.ReturnsString())
}

func TestEffectOpcodeAcceptsBuffer(t *testing.T) {
	assert.True(t, OpSetProgramName.AcceptsBuffer())
	assert.True(t, OpCanDo.AcceptsBuffer())
	assert.False(t, OpGetEffectName.AcceptsBuffer())
}

func TestEffectOpcodeGroupsAreDisjoint(t *testing.T) {
	// An opcode should never be both string-returning and buffer-accepting
	// (spec.md §4.3's opcode families partition the opcode set).
	all := []EffectOpcode{
		OpOpen, OpClose, OpSetProgram, OpGetProgram, OpSetProgramName,
		OpGetProgramName, OpGetParamLabel, OpGetParamDisplay, OpGetParamName,
		OpSetSampleRate, OpSetBlockSize, OpMainsChanged, OpEditGetRect,
		OpEditOpen, OpEditClose, OpEditIdle, OpIdentify, OpGetChunk,
		OpSetChunk, OpProcessEvents, OpCanBeAutomated, OpGetProgramNameIndexed,
		OpGetInputProperties, OpGetOutputProperties, OpGetPlugCategory,
		OpSetSpeakerArrangement, OpGetSpeakerArrangement, OpGetEffectName,
		OpGetVendorString, OpGetProductString, OpGetVendorVersion,
		OpVendorSpecific, OpCanDo, OpGetAbiVersion, OpKeysRequired,
		OpBeginSetProgram, OpEndSetProgram, OpStartProcess, OpStopProcess,
		OpGetParameterProperties,
	}
	for _, op := range all {
		groups := 0
		if op.ReturnsString() {
			groups++
		}
		if op.AcceptsBuffer() {
			groups++
		}
		assert.LessOrEqualf(t, groups, 1, "opcode %v belongs to more than one marshalling group", op)
	}
}
