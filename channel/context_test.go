package channel

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluginbridge/bridge/wire"
)

// newPipeContexts wires a shim-role Context and a host-agent-role Context
// over an in-memory net.Pipe, mirroring how Shim.New/hostagent.New wire a
// Context over a real process pipe.
func newPipeContexts(t *testing.T, shimCallback, agentCallback Handler, shimOneWay, agentOneWay OneWayHandler) (*Context, *Context) {
	t.Helper()
	shimConn, agentConn := net.Pipe()

	shimCtx := New("shim", RoleShim, wire.NewReader(shimConn), wire.NewWriter(shimConn), shimConn, 1, shimCallback, shimOneWay)
	agentCtx := New("agent", RoleHostAgent, wire.NewReader(agentConn), wire.NewWriter(agentConn), agentConn, 0, agentCallback, agentOneWay)
	return shimCtx, agentCtx
}

func TestSendRequestWaitRoundTrip(t *testing.T) {
	agentHandler := func(req *wire.Frame) (*wire.Frame, error) {
		return &wire.Frame{Cmd: wire.CmdEffectDispatch, Value: req.Value + 1}, nil
	}
	shimCtx, agentCtx := newPipeContexts(t, nil, agentHandler, nil, nil)
	defer shimCtx.Close()
	defer agentCtx.Close()

	go func() {
		_ = agentCtx.ServeOne()
	}()

	tag, err := shimCtx.SendRequest(&wire.Frame{Cmd: wire.CmdEffectDispatch, Value: 41})
	require.NoError(t, err)

	resp, err := shimCtx.Wait(tag)
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.Value)
}

func TestTagAllocationParityAndAdvance(t *testing.T) {
	shimCtx, agentCtx := newPipeContexts(t, nil, func(req *wire.Frame) (*wire.Frame, error) {
		return &wire.Frame{Cmd: req.Cmd}, nil
	}, nil, nil)
	defer shimCtx.Close()
	defer agentCtx.Close()

	go func() {
		for i := 0; i < 2; i++ {
			_ = agentCtx.ServeOne()
		}
	}()

	tag1, err := shimCtx.SendRequest(&wire.Frame{Cmd: wire.CmdEffectDispatch})
	require.NoError(t, err)
	_, err = shimCtx.Wait(tag1)
	require.NoError(t, err)

	tag2, err := shimCtx.SendRequest(&wire.Frame{Cmd: wire.CmdEffectDispatch})
	require.NoError(t, err)
	_, err = shimCtx.Wait(tag2)
	require.NoError(t, err)

	assert.Equal(t, wire.Tag(tag1+2), tag2)
	assert.Equal(t, uint32(1), uint32(tag1)%2) // shim parity is odd
}

func TestReentrantCallbackServedWhileWaiting(t *testing.T) {
	var shimCtx *Context

	shimCallback := func(req *wire.Frame) (*wire.Frame, error) {
		require.Equal(t, wire.CmdAudioMasterCallback, req.Cmd)
		return &wire.Frame{Cmd: wire.CmdAudioMasterCallback, Value: req.Value * 2}, nil
	}

	var agentCtx *Context
	agentCallback := func(req *wire.Frame) (*wire.Frame, error) {
		// While serving the shim's dispatch request, call back into the
		// shim and wait for its answer before replying — the re-entrant
		// case spec.md describes.
		cbTag, err := agentCtx.SendRequest(&wire.Frame{Cmd: wire.CmdAudioMasterCallback, Value: 10})
		require.NoError(t, err)
		cbResp, err := agentCtx.Wait(cbTag)
		require.NoError(t, err)
		return &wire.Frame{Cmd: wire.CmdEffectDispatch, Value: cbResp.Value + 1}, nil
	}

	shimCtx, agentCtx = newPipeContexts(t, shimCallback, agentCallback, nil, nil)
	defer shimCtx.Close()
	defer agentCtx.Close()

	go func() {
		_ = agentCtx.ServeOne()
	}()

	tag, err := shimCtx.SendRequest(&wire.Frame{Cmd: wire.CmdEffectDispatch})
	require.NoError(t, err)

	resp, err := shimCtx.Wait(tag)
	require.NoError(t, err)
	assert.Equal(t, int64(21), resp.Value) // (10*2)+1
}

func TestSendFireAndForgetDoesNotBlock(t *testing.T) {
	received := make(chan *wire.Frame, 1)
	agentCallback := func(req *wire.Frame) (*wire.Frame, error) {
		received <- req
		return nil, nil // SET_PARAMETER expects no response
	}

	shimCtx, agentCtx := newPipeContexts(t, nil, agentCallback, nil, nil)
	defer shimCtx.Close()
	defer agentCtx.Close()

	go func() {
		_ = agentCtx.ServeOne()
	}()

	err := shimCtx.SendFireAndForget(&wire.Frame{Cmd: wire.CmdSetParameter, Index: 3, Value: 99})
	require.NoError(t, err)

	select {
	case f := <-received:
		assert.Equal(t, wire.CmdSetParameter, f.Cmd)
		assert.Equal(t, int64(99), f.Value)
	case <-time.After(time.Second):
		t.Fatal("fire-and-forget frame never arrived")
	}
}

func TestSendOneWayForcesTagZero(t *testing.T) {
	var got *wire.Frame
	oneWay := func(f *wire.Frame) { got = f }

	shimCtx, agentCtx := newPipeContexts(t, nil, nil, nil, oneWay)
	defer shimCtx.Close()
	defer agentCtx.Close()

	done := make(chan struct{})
	go func() {
		_ = agentCtx.ServeOne()
		close(done)
	}()

	err := shimCtx.SendOneWay(&wire.Frame{Cmd: wire.CmdPluginData, Tag: 77})
	require.NoError(t, err)

	<-done
	require.NotNil(t, got)
	assert.Equal(t, wire.Tag(0), got.Tag)
}

func TestCloseIsIdempotent(t *testing.T) {
	shimCtx, agentCtx := newPipeContexts(t, nil, nil, nil, nil)
	defer agentCtx.Close()

	require.NoError(t, shimCtx.Close())
	require.NoError(t, shimCtx.Close())

	_, err := shimCtx.SendRequest(&wire.Frame{Cmd: wire.CmdEffectDispatch})
	assert.ErrorIs(t, err, ErrClosed)
}
