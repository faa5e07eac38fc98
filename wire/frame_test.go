package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmdString(t *testing.T) {
	assert.Equal(t, "PLUGIN_MAIN", CmdPluginMain.String())
	assert.Equal(t, "EFFECT_DISPATCH", CmdEffectDispatch.String())
	assert.Equal(t, "UNKNOWN(99)", Cmd(99).String())
}

func TestCmdIsCallback(t *testing.T) {
	// EFFECT_DISPATCH is shim -> host agent: a callback from the host
	// agent's perspective, not the shim's.
	assert.True(t, CmdEffectDispatch.IsCallback(false))
	assert.False(t, CmdEffectDispatch.IsCallback(true))

	// AUDIO_MASTER_CALLBACK is host agent -> shim: the reverse.
	assert.True(t, CmdAudioMasterCallback.IsCallback(true))
	assert.False(t, CmdAudioMasterCallback.IsCallback(false))

	assert.False(t, CmdPluginMain.IsCallback(true))
	assert.False(t, CmdPluginMain.IsCallback(false))
}

func TestParamValueBitsRoundTrip(t *testing.T) {
	for _, v := range []float32{0, 1, -1, 0.5, 3.14159, -1000000.5} {
		bits := ParamValueBits(v)
		assert.Equal(t, v, ParamValueFromBits(bits))
	}
}

func TestComputeChecksumDeterministic(t *testing.T) {
	data := []byte("the quick brown fox")
	sum1 := ComputeChecksum(data)
	sum2 := ComputeChecksum(data)
	assert.Equal(t, sum1, sum2)
	assert.NotEqual(t, sum1, ComputeChecksum([]byte("the quick brown fax")))
}

func TestComputeChecksumEmpty(t *testing.T) {
	// FNV-1a offset basis is the hash of the empty string.
	assert.Equal(t, uint64(0xcbf29ce484222325), ComputeChecksum(nil))
}

func TestVerifyChunkChecksum(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	sum := ComputeChecksum(data)

	ok := &Frame{Data: data, Checksum: &sum}
	require.NoError(t, VerifyChunkChecksum(ok))

	missing := &Frame{Data: data}
	assert.Error(t, VerifyChunkChecksum(missing))

	wrongSum := uint64(0)
	mismatched := &Frame{Data: data, Checksum: &wrongSum}
	assert.Error(t, VerifyChunkChecksum(mismatched))
}

func TestPluginDataEqual(t *testing.T) {
	a := PluginData{NumParams: 4, CanReplacing: true}
	b := a
	assert.True(t, a.Equal(b))

	b.NumParams = 5
	assert.False(t, a.Equal(b))
}

func TestNewStreamIDUnique(t *testing.T) {
	a := NewStreamID()
	b := NewStreamID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
