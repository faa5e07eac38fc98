package shim

import (
	"fmt"

	"github.com/pluginbridge/bridge/wire"
)

// GetParameter reads a scalar parameter value on RealtimeContext
// exclusively (spec.md §4.3 "The shim's real-time entry points ...
// exclusively use RealtimeContext").
func (s *Shim) GetParameter(index int32) (float32, error) {
	tag, err := s.rt.SendRequest(&wire.Frame{Cmd: wire.CmdGetParameter, Index: index})
	if err != nil {
		return 0, fmt.Errorf("shim: get_parameter: %w", err)
	}
	resp, err := s.rt.Wait(tag)
	if err != nil {
		return 0, fmt.Errorf("shim: get_parameter: %w", err)
	}
	return wire.ParamValueFromBits(resp.Value), nil
}

// SetParameter writes a scalar parameter value on RealtimeContext. Per
// spec.md §3 invariant 1 and §9's Open Question, SET_PARAMETER is
// fire-and-forget: a tag is still allocated from the normal counter, but
// no response is awaited.
func (s *Shim) SetParameter(index int32, value float32) error {
	err := s.rt.SendFireAndForget(&wire.Frame{
		Cmd:   wire.CmdSetParameter,
		Index: index,
		Value: wire.ParamValueBits(value),
	})
	if err != nil {
		return fmt.Errorf("shim: set_parameter: %w", err)
	}
	return nil
}
