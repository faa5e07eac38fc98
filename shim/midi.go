package shim

import (
	"fmt"

	"github.com/pluginbridge/bridge/abi"
)

// ProcessEvents forwards a batch of MIDI events to the plugin on
// MainContext (spec.md §4.3 "MIDI batch payload"; §9 "Pointer-graph MIDI
// events" Design Note: the caller's events are flattened to a dense wire
// encoding here. The host agent passes those bytes unchanged to
// Plugin.Dispatch; abi.DecodeMidiEvents reverses the encoding for a
// Plugin implementation that needs the individual events).
func (s *Shim) ProcessEvents(events []abi.MidiEvent) error {
	_, _, err := s.Dispatch(abi.OpProcessEvents, 0, 0, 0, abi.EncodeMidiEvents(events))
	if err != nil {
		return fmt.Errorf("shim: process_events: %w", err)
	}
	return nil
}
