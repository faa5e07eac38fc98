package shim

import (
	"fmt"

	"github.com/pluginbridge/bridge/wire"
)

// SetSchedParam forwards a real-time scheduling hint to the host agent's
// RT thread (SPEC_FULL.md "Supplemented features: SET_SCHEDPARAM payload
// shape"). Sent on RealtimeContext since it governs that thread.
func (s *Shim) SetSchedParam(policy string, priority int32) error {
	tag, err := s.rt.SendRequest(&wire.Frame{Cmd: wire.CmdSetSchedParam, SchedPolicy: policy, SchedPriority: priority})
	if err != nil {
		return fmt.Errorf("shim: set_schedparam: %w", err)
	}
	resp, err := s.rt.Wait(tag)
	if err != nil {
		return fmt.Errorf("shim: set_schedparam: %w", err)
	}
	if resp.Value != 0 {
		return fmt.Errorf("shim: set_schedparam: host agent rejected: %s", string(resp.Data))
	}
	return nil
}
