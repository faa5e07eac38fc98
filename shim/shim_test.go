package shim

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluginbridge/bridge/abi"
	"github.com/pluginbridge/bridge/launcher"
	"github.com/pluginbridge/bridge/wire"
)

// fakeLauncher spawns a goroutine playing the host agent's side of the
// bridge channel directly over the wire protocol (no channel.Context),
// so these tests exercise only the shim package's translation logic.
type fakeLauncher struct {
	pluginData wire.PluginData
	onMain     func(r *wire.Reader, w *wire.Writer)
	onRT       func(r *wire.Reader, w *wire.Writer)
}

func (l *fakeLauncher) Launch(hostAgentPath, pluginPath string) (*launcher.Process, error) {
	mainShim, mainAgent := net.Pipe()
	rtShim, rtAgent := net.Pipe()

	go func() {
		r := wire.NewReader(mainAgent)
		w := wire.NewWriter(mainAgent)
		if err := wire.HandshakeAccept(r, w, &l.pluginData); err != nil {
			return
		}
		if l.onMain != nil {
			l.onMain(r, w)
		}
	}()
	if l.onRT != nil {
		go l.onRT(wire.NewReader(rtAgent), wire.NewWriter(rtAgent))
	}

	return &launcher.Process{Main: mainShim, Realtime: rtShim}, nil
}

func newTestShim(t *testing.T, l *fakeLauncher, cb HostCallback) *Shim {
	t.Helper()
	s, err := New(l, "host-agent", "plugin.so", cb)
	require.NoError(t, err)
	return s
}

func TestNewPerformsHandshake(t *testing.T) {
	l := &fakeLauncher{pluginData: wire.PluginData{NumParams: 8, CanGetParameter: true}}
	s := newTestShim(t, l, nil)

	d := s.Descriptor()
	assert.Equal(t, int32(8), d.NumParams)
	assert.True(t, d.CanGetParameter)
}

func TestDispatchRoundTrip(t *testing.T) {
	l := &fakeLauncher{
		onMain: func(r *wire.Reader, w *wire.Writer) {
			req, err := r.ReadFrame()
			require.NoError(t, err)
			require.NoError(t, w.WriteFrame(&wire.Frame{
				Tag: req.Tag, Cmd: wire.CmdEffectDispatch, Value: req.Value + 1,
			}))
		},
	}
	s := newTestShim(t, l, nil)

	value, _, err := s.Dispatch(abi.OpOpen, 0, 41, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), value)
}

func TestGetSetParameterOnRealtimeContext(t *testing.T) {
	l := &fakeLauncher{
		onRT: func(r *wire.Reader, w *wire.Writer) {
			// SET_PARAMETER: fire-and-forget, no response.
			setReq, err := r.ReadFrame()
			require.NoError(t, err)
			require.Equal(t, wire.CmdSetParameter, setReq.Cmd)

			// GET_PARAMETER: respond with the value just set.
			getReq, err := r.ReadFrame()
			require.NoError(t, err)
			require.NoError(t, w.WriteFrame(&wire.Frame{
				Tag: getReq.Tag, Cmd: wire.CmdGetParameter, Value: setReq.Value,
			}))
		},
	}
	s := newTestShim(t, l, nil)

	require.NoError(t, s.SetParameter(3, 0.75))
	v, err := s.GetParameter(3)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, v, 0.0001)
}

func TestProcessRoundTrip(t *testing.T) {
	l := &fakeLauncher{
		onRT: func(r *wire.Reader, w *wire.Writer) {
			req, err := r.ReadFrame()
			require.NoError(t, err)
			out := make([]float32, len(req.SamplesF32))
			for i, s := range req.SamplesF32 {
				out[i] = s * 2
			}
			require.NoError(t, w.WriteFrame(&wire.Frame{
				Tag: req.Tag, Cmd: wire.CmdProcess,
				NumFrames: req.NumFrames, NumChannels: req.NumChannels, SamplesF32: out,
			}))
		},
	}
	s := newTestShim(t, l, nil)

	in := [][]float32{{1, 2, 3}}
	out := [][]float32{make([]float32, 3)}
	require.NoError(t, s.Process(in, out, 3))
	assert.Equal(t, []float32{2, 4, 6}, out[0])
}

func TestHostCallbackForwardedReentrantly(t *testing.T) {
	var gotOp abi.AudioMasterOpcode
	cb := func(op abi.AudioMasterOpcode, index int32, value int64, data []byte, opt float32) (int64, []byte) {
		gotOp = op
		return value * 10, nil
	}

	l := &fakeLauncher{
		onMain: func(r *wire.Reader, w *wire.Writer) {
			dispatchReq, err := r.ReadFrame()
			require.NoError(t, err)

			// While "processing" the dispatch call, call back into the
			// host before answering — the re-entrant case spec.md
			// describes (shim must serve this while blocked in Wait).
			require.NoError(t, w.WriteFrame(&wire.Frame{
				Tag: 2, Cmd: wire.CmdAudioMasterCallback, Opcode: int32(abi.AMGetSampleRate), Value: 5,
			}))
			cbResp, err := r.ReadFrame()
			require.NoError(t, err)

			require.NoError(t, w.WriteFrame(&wire.Frame{
				Tag: dispatchReq.Tag, Cmd: wire.CmdEffectDispatch, Value: cbResp.Value,
			}))
		},
	}
	s := newTestShim(t, l, cb)

	value, _, err := s.Dispatch(abi.OpOpen, 0, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, abi.AMGetSampleRate, gotOp)
	assert.Equal(t, int64(50), value)
}

func TestSetSpeakerArrangementEncodesBothSides(t *testing.T) {
	var gotData []byte
	l := &fakeLauncher{
		onMain: func(r *wire.Reader, w *wire.Writer) {
			req, err := r.ReadFrame()
			require.NoError(t, err)
			gotData = req.Data
			require.NoError(t, w.WriteFrame(&wire.Frame{Tag: req.Tag, Cmd: wire.CmdEffectDispatch, Value: 1}))
		},
	}
	s := newTestShim(t, l, nil)

	in := abi.SpeakerArrangement{Type: 1, Speakers: []abi.Speaker{{Name: "L", Type: 1}}}
	out := abi.SpeakerArrangement{Type: 1, Speakers: []abi.Speaker{{Name: "R", Type: 2}, {Name: "C", Type: 3}}}

	ok, err := s.SetSpeakerArrangement(in, out)
	require.NoError(t, err)
	assert.True(t, ok)

	wantIn := abi.EncodeSpeakerArrangement(in)
	wantOut := abi.EncodeSpeakerArrangement(out)
	assert.Equal(t, append(wantIn, wantOut...), gotData)
}

func TestGetSpeakerArrangementDecodesBothSides(t *testing.T) {
	in := abi.SpeakerArrangement{Type: 1, Speakers: []abi.Speaker{{Name: "L", Type: 1}}}
	out := abi.SpeakerArrangement{Type: 1, Speakers: []abi.Speaker{{Name: "R", Type: 2}, {Name: "C", Type: 3}}}
	canned := append(abi.EncodeSpeakerArrangement(in), abi.EncodeSpeakerArrangement(out)...)

	l := &fakeLauncher{
		onMain: func(r *wire.Reader, w *wire.Writer) {
			req, err := r.ReadFrame()
			require.NoError(t, err)
			require.NoError(t, w.WriteFrame(&wire.Frame{Tag: req.Tag, Cmd: wire.CmdEffectDispatch, Data: canned}))
		},
	}
	s := newTestShim(t, l, nil)

	gotIn, gotOut, err := s.GetSpeakerArrangement()
	require.NoError(t, err)
	require.Len(t, gotIn.Speakers, 1)
	require.Len(t, gotOut.Speakers, 2)
	assert.Equal(t, "L", gotIn.Speakers[0].Name)
	assert.Equal(t, "R", gotOut.Speakers[0].Name)
	assert.Equal(t, "C", gotOut.Speakers[1].Name)
}

func TestEditRectClampQuirkPreserved(t *testing.T) {
	l := &fakeLauncher{
		onMain: func(r *wire.Reader, w *wire.Writer) {
			req, err := r.ReadFrame()
			require.NoError(t, err)
			data := abi.EncodeRect(abi.Rect{Top: 0, Left: 0, Bottom: 600, Right: 800})
			require.NoError(t, w.WriteFrame(&wire.Frame{Tag: req.Tag, Cmd: wire.CmdEffectDispatch, Data: data}))
		},
	}
	s := newTestShim(t, l, nil)

	rect, err := s.GetEditRect()
	require.NoError(t, err)
	// The real reported size was 800x600, but the preserved quirk clamps
	// the rect handed back to the host to exactly 1x1.
	assert.Equal(t, int16(1), rect.Bottom-rect.Top)
	assert.Equal(t, int16(1), rect.Right-rect.Left)
}

func TestCloseIsFireAndForgetAndMarksClosing(t *testing.T) {
	closeReceived := make(chan *wire.Frame, 1)
	l := &fakeLauncher{
		onMain: func(r *wire.Reader, w *wire.Writer) {
			f, err := r.ReadFrame()
			if err == nil {
				closeReceived <- f
			}
		},
	}
	s := newTestShim(t, l, nil)

	assert.False(t, s.IsClosing())
	require.NoError(t, s.Close())
	assert.True(t, s.IsClosing())

	select {
	case f := <-closeReceived:
		assert.Equal(t, wire.CmdEffectDispatch, f.Cmd)
		assert.Equal(t, int32(abi.OpClose), f.Opcode)
	case <-time.After(time.Second):
		t.Fatal("close dispatch frame never arrived")
	}
}
