package hostagent

import (
	"github.com/pluginbridge/bridge/abi"
	"github.com/pluginbridge/bridge/channel"
	"github.com/pluginbridge/bridge/wire"
)

// forwardCallbackOn returns a CallbackFunc that translates a
// plugin-initiated call into its host into an outbound
// AUDIO_MASTER_CALLBACK request on ctx, answering synchronously (spec.md
// §4.4 "Callbacks invoked by the plugin into its host are converted into
// outbound AUDIO_MASTER_CALLBACK frames"; invariant 2 in §3 — this call
// may itself be served while the shim is still awaiting a dispatch
// response, which is exactly the re-entrant case ChannelContext.Wait
// handles by dispatching inline).
//
// The plugin must invoke the closure bound to whichever context is
// currently serving it: original_source/host/host.cc picks
// g_host.tld[thr].socket by the calling thread's index, since
// MainContext and RealtimeContext never share a socket, tag space, or
// FIFO (spec.md §2). New binds one closure per context, each of which is
// only ever touched by that context's own owning goroutine, so no
// locking is needed here beyond what channel.Context itself does.
func (a *Agent) forwardCallbackOn(ctx *channel.Context) CallbackFunc {
	return func(op abi.AudioMasterOpcode, index int32, value int64, data []byte, opt float32) (int64, []byte) {
		tag, err := ctx.SendRequest(&wire.Frame{
			Cmd:    wire.CmdAudioMasterCallback,
			Opcode: int32(op),
			Index:  index,
			Value:  value,
			Opt:    opt,
			Data:   data,
		})
		if err != nil {
			if a.logger != nil {
				a.logger.Error("forward callback: send failed", "opcode", op, "error", err)
			}
			return 0, nil
		}

		resp, err := ctx.Wait(tag)
		if err != nil {
			if a.logger != nil {
				a.logger.Error("forward callback: wait failed", "opcode", op, "error", err)
			}
			return 0, nil
		}
		return resp.Value, resp.Data
	}
}
