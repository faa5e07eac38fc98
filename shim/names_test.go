package shim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluginbridge/bridge/abi"
	"github.com/pluginbridge/bridge/wire"
)

func TestGetEffectNameCopiesNulTerminated(t *testing.T) {
	l := &fakeLauncher{
		onMain: func(r *wire.Reader, w *wire.Writer) {
			req, err := r.ReadFrame()
			require.NoError(t, err)
			require.Equal(t, int32(abi.OpGetEffectName), req.Opcode)
			require.NoError(t, w.WriteFrame(&wire.Frame{Tag: req.Tag, Cmd: wire.CmdEffectDispatch, Data: []byte("Gainer\x00")}))
		},
	}
	s := newTestShim(t, l, nil)

	dst := make([]byte, 16)
	require.NoError(t, s.GetEffectName(dst))
	assert.Equal(t, "Gainer", string(dst[:6]))
	assert.Equal(t, byte(0), dst[6])
}

func TestSetProgramNameAndCanDo(t *testing.T) {
	var gotOpcodes []int32
	var gotData [][]byte
	l := &fakeLauncher{
		onMain: func(r *wire.Reader, w *wire.Writer) {
			for i := 0; i < 2; i++ {
				req, err := r.ReadFrame()
				require.NoError(t, err)
				gotOpcodes = append(gotOpcodes, req.Opcode)
				gotData = append(gotData, req.Data)
				require.NoError(t, w.WriteFrame(&wire.Frame{Tag: req.Tag, Cmd: wire.CmdEffectDispatch, Value: 1}))
			}
		},
	}
	s := newTestShim(t, l, nil)

	require.NoError(t, s.SetProgramName("Lead 1"))
	ok, err := s.CanDo("sendVstMidiEvent")
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, gotOpcodes, 2)
	assert.Equal(t, int32(abi.OpSetProgramName), gotOpcodes[0])
	assert.Equal(t, int32(abi.OpCanDo), gotOpcodes[1])
	assert.Equal(t, "Lead 1\x00", string(gotData[0]))
	assert.Equal(t, "sendVstMidiEvent\x00", string(gotData[1]))
}

func TestGetStringRejectsNonStringOpcode(t *testing.T) {
	s := newTestShim(t, &fakeLauncher{}, nil)
	err := s.GetString(abi.OpOpen, 0, make([]byte, 8))
	assert.Error(t, err)
}

func TestSetBufferRejectsNonBufferOpcode(t *testing.T) {
	s := newTestShim(t, &fakeLauncher{}, nil)
	_, err := s.SetBuffer(abi.OpOpen, 0, []byte("x"))
	assert.Error(t, err)
}
