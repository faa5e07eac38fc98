// Package hostagent implements the foreign-ABI bridge endpoint: the
// standalone helper process that loads the real plugin binary and
// translates bridge-channel requests into calls on it, mirroring every
// opcode family the shim package translates in the opposite direction
// (spec.md §4.4).
//
// Loading the foreign-ABI plugin binary itself is out of scope (spec.md
// §1 "a plugin loader for the foreign ABI" is an external collaborator),
// so this package talks to the plugin only through the Plugin interface;
// a real deployment supplies an implementation that actually dlopens the
// foreign library and calls through its entry points.
package hostagent

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/pluginbridge/bridge/abi"
	"github.com/pluginbridge/bridge/channel"
	"github.com/pluginbridge/bridge/launcher"
	"github.com/pluginbridge/bridge/wire"
)

// ErrUnknownOpcode is returned when a dispatch frame names an opcode this
// agent has no translation for (spec.md §7 "Unknown opcode").
var ErrUnknownOpcode = errors.New("hostagent: unknown opcode")

// CallbackFunc is the shape of a plugin-initiated call into its host,
// forwarded across the bridge as an outbound AUDIO_MASTER_CALLBACK frame
// (spec.md §4.4).
type CallbackFunc func(op abi.AudioMasterOpcode, index int32, value int64, data []byte, opt float32) (int64, []byte)

// Plugin is the external collaborator wrapping the loaded foreign-ABI
// plugin instance. SetHostCallback is called once at construction with
// one callback per thread class, so the plugin's own calls into its host
// are forwarded on whichever context it is currently being served on
// (spec.md §4.4; invariant 4 in §3 — MainContext and RealtimeContext
// never share a tag space). A real implementation dispatches to mainCB
// when called from its dispatch entry point and to rtCB when called from
// its audio-processing entry point, the way original_source/plugin.cc's
// callback pointer is selected by the calling thread's index.
type Plugin interface {
	Descriptor() wire.PluginData
	SetHostCallback(mainCB, rtCB CallbackFunc)

	Dispatch(op abi.EffectOpcode, index int32, value int64, opt float32, data []byte) (int64, []byte, error)
	GetParameter(index int32) (float32, error)
	SetParameter(index int32, value float32)
	Process(inputs [][]float32, nframes int) [][]float32
	ProcessDouble(inputs [][]float64, nframes int) [][]float64
	ShowWindow(parentHandle int64) (int64, error)
}

// Agent is one host agent instance serving a single plugin across its
// MainContext and RealtimeContext.
type Agent struct {
	main *channel.Context
	rt   *channel.Context

	plugin    Plugin
	scheduler launcher.RTScheduler
	logger    *slog.Logger

	mu       sync.Mutex
	lastData wire.PluginData

	chunkMu sync.Mutex
	chunkIn map[wire.Tag][]byte
}

// New performs the PLUGIN_MAIN handshake on mainRW (spec.md §4.5 step 2
// host-agent side) and returns a running Agent. scheduler may be nil, in
// which case SET_SCHEDPARAM is a no-op.
func New(mainRW, rtRW io.ReadWriteCloser, plugin Plugin, scheduler launcher.RTScheduler, logger *slog.Logger) (*Agent, error) {
	if scheduler == nil {
		scheduler = launcher.NoopRTScheduler{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &Agent{
		plugin:    plugin,
		scheduler: scheduler,
		logger:    logger,
		chunkIn:   make(map[wire.Tag][]byte),
	}

	descriptor := plugin.Descriptor()
	a.lastData = descriptor

	mainReader := wire.NewReader(mainRW)
	mainWriter := wire.NewWriter(mainRW)
	if err := wire.HandshakeAccept(mainReader, mainWriter, &descriptor); err != nil {
		return nil, fmt.Errorf("hostagent: handshake: %w", err)
	}

	a.main = channel.New("main", channel.RoleHostAgent, mainReader, mainWriter, mainRW, 0, a.handleRequest, a.handleOneWay)
	a.rt = channel.New("rt", channel.RoleHostAgent, wire.NewReader(rtRW), wire.NewWriter(rtRW), rtRW, 0, a.handleRequest, a.handleOneWay)

	plugin.SetHostCallback(a.forwardCallbackOn(a.main), a.forwardCallbackOn(a.rt))

	return a, nil
}

// Run services both contexts until either one's channel closes or
// returns a fatal error (spec.md §7 "Channel closed / I/O fatal ...
// endpoint terminates").
func (a *Agent) Run() error {
	errCh := make(chan error, 2)
	go func() { errCh <- a.serveLoop(a.main) }()
	go func() { errCh <- a.serveLoop(a.rt) }()
	return <-errCh
}

func (a *Agent) serveLoop(c *channel.Context) error {
	for {
		if err := c.ServeOne(); err != nil {
			if a.logger != nil {
				a.logger.Error("channel closed", "error", err)
			}
			return err
		}
	}
}

// handleOneWay is registered on both contexts but the host agent never
// receives unsolicited frames in steady state (it is the side that
// originates the PLUGIN_DATA push); present for interface symmetry with
// the shim.
func (a *Agent) handleOneWay(*wire.Frame) {}

// MaybePushPluginData re-reads the plugin's descriptor and, if it has
// changed since the last snapshot, pushes an unsolicited PLUGIN_DATA
// frame (spec.md §4.4 "PluginData reconciliation"; invariant 3 in §3).
// Callers invoke this after any dispatch that could mutate the
// descriptor (program change, chunk load, mains-changed).
func (a *Agent) MaybePushPluginData() error {
	current := a.plugin.Descriptor()

	a.mu.Lock()
	changed := !current.Equal(a.lastData)
	if changed {
		a.lastData = current
	}
	a.mu.Unlock()

	if !changed {
		return nil
	}
	return a.main.SendOneWay(&wire.Frame{Cmd: wire.CmdPluginData, PluginData: &current})
}
