package hostagent

import (
	"fmt"

	"github.com/pluginbridge/bridge/wire"
)

// handleSetSchedParam applies a real-time scheduling hint to the agent's
// RealtimeContext thread via the injected RTScheduler collaborator
// (SPEC_FULL.md "Supplemented features: SET_SCHEDPARAM payload shape";
// original_source/host/host.cc applies a POSIX sched_param to its RT
// thread the same way). A scheduler failure is reported back as a
// nonzero Value rather than a channel-fatal error, since a denied
// scheduling request (e.g. missing privilege) is routine and should not
// tear down the bridge.
func (a *Agent) handleSetSchedParam(req *wire.Frame) (*wire.Frame, error) {
	if err := a.scheduler.Apply(req.SchedPolicy, req.SchedPriority); err != nil {
		if a.logger != nil {
			a.logger.Warn("set_schedparam failed", "policy", req.SchedPolicy, "priority", req.SchedPriority, "error", err)
		}
		return &wire.Frame{Cmd: wire.CmdSetSchedParam, Value: 1, Data: []byte(fmt.Sprintf("%v", err))}, nil
	}
	return &wire.Frame{Cmd: wire.CmdSetSchedParam, Value: 0}, nil
}
