// Package shim implements the native-side bridge endpoint: it is loaded
// into the host DAW process in place of the real (foreign-ABI) plugin
// library and translates every PLUGIN ABI entry point into a request on
// the bridge channel, following the per-opcode marshalling policy of
// spec.md §4.3.
//
// The actual C-ABI export surface (the cgo boundary a DAW's dlopen/
// dlsym calls land on) is an external concern — spec.md §1 scopes the
// dynamic loader for the foreign binary and any GUI window embedding
// mechanism out of the core — so this package exposes plain Go methods
// on *Shim that such a thin export layer would call into, rather than
// cgo-exported functions itself.
package shim

import (
	"fmt"
	"sync"

	"github.com/pluginbridge/bridge/abi"
	"github.com/pluginbridge/bridge/channel"
	"github.com/pluginbridge/bridge/launcher"
	"github.com/pluginbridge/bridge/wire"
)

// HostCallback is the DAW's own callback function pointer, supplied to
// the plugin's entry point by the host application. AUDIO_MASTER_CALLBACK
// frames arriving from the host agent are forwarded to it verbatim
// (spec.md §4.4 "Callbacks invoked by the plugin into its host are
// converted into outbound AUDIO_MASTER_CALLBACK frames").
type HostCallback func(op abi.AudioMasterOpcode, index int32, value int64, data []byte, opt float32) (int64, []byte)

// Shim is the native-side bridge endpoint for one plugin instance.
type Shim struct {
	main *channel.Context
	rt   *channel.Context

	process *launcher.Process

	hostCallback HostCallback

	mu         sync.RWMutex
	descriptor abi.Descriptor

	editRectMu sync.Mutex
	editRect   abi.Rect

	closing bool
}

// New spawns the host agent via l, performs the PLUGIN_MAIN handshake on
// MainContext, and returns a ready Shim (spec.md §4.5 steps 1-2).
func New(l launcher.Launcher, hostAgentPath, pluginPath string, hostCallback HostCallback) (*Shim, error) {
	proc, err := l.Launch(hostAgentPath, pluginPath)
	if err != nil {
		return nil, fmt.Errorf("shim: launch: %w", err)
	}

	s := &Shim{process: proc, hostCallback: hostCallback}

	mainReader := wire.NewReader(proc.Main)
	mainWriter := wire.NewWriter(proc.Main)
	initial, err := wire.HandshakeInitiate(mainReader, mainWriter)
	if err != nil {
		proc.Kill()
		return nil, fmt.Errorf("shim: handshake: %w", err)
	}
	s.descriptor = abi.FromWire(*initial)

	s.main = channel.New("main", channel.RoleShim, mainReader, mainWriter, proc.Main, 1, s.handleCallback, s.handleOneWay)
	s.rt = channel.New("rt", channel.RoleShim, wire.NewReader(proc.Realtime), wire.NewWriter(proc.Realtime), proc.Realtime, 1, s.handleCallback, s.handleOneWay)

	return s, nil
}

// Descriptor returns a snapshot of the mirrored plugin descriptor. The
// host DAW-facing wrapper reads this to populate the ABI struct fields
// and to decide which entry points are non-nil (spec.md §4.4).
func (s *Shim) Descriptor() abi.Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.descriptor
}

// handleOneWay applies an unsolicited PLUGIN_DATA push (spec.md §4.4
// "PluginData reconciliation"; invariant 3 in §3). Registered as the
// OneWayHandler for both contexts since the host agent may emit the push
// "on the current thread's context".
func (s *Shim) handleOneWay(f *wire.Frame) {
	if f.Cmd != wire.CmdPluginData || f.PluginData == nil {
		return
	}
	s.mu.Lock()
	s.descriptor = abi.FromWire(*f.PluginData)
	s.mu.Unlock()
}

// handleCallback serves an incoming AUDIO_MASTER_CALLBACK frame by
// invoking the host DAW's own callback and returning its result
// (spec.md §4.2 invariant 2: dispatched inline while this shim is still
// awaiting its own outstanding dispatch response).
func (s *Shim) handleCallback(req *wire.Frame) (*wire.Frame, error) {
	if req.Cmd != wire.CmdAudioMasterCallback {
		return nil, fmt.Errorf("shim: unexpected callback cmd %s", req.Cmd)
	}
	if s.hostCallback == nil {
		return &wire.Frame{Cmd: wire.CmdAudioMasterCallback}, nil
	}
	value, data := s.hostCallback(abi.AudioMasterOpcode(req.Opcode), req.Index, req.Value, req.Data, req.Opt)
	return &wire.Frame{
		Cmd:    wire.CmdAudioMasterCallback,
		Opcode: req.Opcode,
		Index:  req.Index,
		Value:  value,
		Data:   data,
	}, nil
}

// Close sends the close request fire-and-forget and marks the endpoint
// closing (spec.md §4.5 step 4: "shim sends the close request, does not
// wait, and schedules its own destruction once the current dispatch
// returns"). The caller — the thin ABI-export wrapper serving effClose —
// is responsible for invoking Teardown only after that dispatch call has
// unwound back to the host, which is exactly the deferred-destruction
// contract spec.md describes.
func (s *Shim) Close() error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	return s.main.SendFireAndForget(&wire.Frame{Cmd: wire.CmdEffectDispatch, Opcode: int32(abi.OpClose)})
}

// Teardown waits for the host agent process to exit and releases the
// bridge channels. Must only be called after Close and after the close
// dispatch has unwound (spec.md §4.5 step 4 "the shim reaps the child
// during endpoint teardown").
func (s *Shim) Teardown() error {
	_, err := s.process.Wait()
	s.main.Close()
	s.rt.Close()
	return err
}

// IsClosing reports whether Close has been called.
func (s *Shim) IsClosing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closing
}
