package hostagent

import (
	"fmt"

	"github.com/pluginbridge/bridge/wire"
)

// handleShowWindow serves SHOW_WINDOW: the request's Value carries the
// host DAW's opaque parent-window handle, and the response's Index
// carries the plugin's own opaque window handle (spec.md §4.4 "Window
// handle exchange via an opaque integer handle"). Neither side
// interprets the handle's bits; it is only ever round-tripped between
// the two native windowing systems by the external embedding layer
// spec.md §1 scopes out of this bridge.
func (a *Agent) handleShowWindow(req *wire.Frame) (*wire.Frame, error) {
	handle, err := a.plugin.ShowWindow(req.Value)
	if err != nil {
		return nil, fmt.Errorf("hostagent: show_window: %w", err)
	}
	return &wire.Frame{Cmd: wire.CmdShowWindow, Index: int32(handle), Value: handle}, nil
}
