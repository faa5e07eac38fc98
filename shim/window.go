package shim

import (
	"fmt"

	"github.com/pluginbridge/bridge/wire"
)

// ShowWindow requests the editor window be made visible, passing the
// host DAW's opaque parent-window handle and returning the plugin's own
// opaque window handle (spec.md §4.4 "Window handle exchange").
func (s *Shim) ShowWindow(parentHandle int64) (int64, error) {
	tag, err := s.main.SendRequest(&wire.Frame{Cmd: wire.CmdShowWindow, Value: parentHandle})
	if err != nil {
		return 0, fmt.Errorf("shim: show_window: %w", err)
	}
	resp, err := s.main.Wait(tag)
	if err != nil {
		return 0, fmt.Errorf("shim: show_window: %w", err)
	}
	return resp.Value, nil
}
