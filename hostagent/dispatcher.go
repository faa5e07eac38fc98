package hostagent

import (
	"fmt"

	"github.com/pluginbridge/bridge/abi"
	"github.com/pluginbridge/bridge/wire"
)

// handleRequest is the Handler registered on both contexts: it is invoked
// for every frame whose Cmd belongs to the shim-to-host-agent direction
// (channel.Context.dispatchInline via Cmd.IsCallback), and routes by Cmd
// to this agent's per-opcode-family translator (spec.md §4.4, mirroring
// the shim's own dispatch.go/parameters.go/process.go/editrect.go/
// properties.go/speaker.go/midi.go/chunk.go in reverse).
func (a *Agent) handleRequest(req *wire.Frame) (*wire.Frame, error) {
	switch req.Cmd {
	case wire.CmdEffectDispatch:
		return a.handleEffectDispatch(req)
	case wire.CmdGetParameter:
		return a.handleGetParameter(req)
	case wire.CmdSetParameter:
		return a.handleSetParameter(req)
	case wire.CmdProcess:
		return a.handleProcess(req)
	case wire.CmdProcessDouble:
		return a.handleProcessDouble(req)
	case wire.CmdShowWindow:
		return a.handleShowWindow(req)
	case wire.CmdSetSchedParam:
		return a.handleSetSchedParam(req)
	default:
		return nil, fmt.Errorf("hostagent: %w: %s", ErrUnknownOpcode, req.Cmd)
	}
}

// handleEffectDispatch serves every non-realtime ABI entry point that
// funnels through the plugin's dispatch function, with get/set-chunk
// (abi.OpGetChunk/abi.OpSetChunk) given chunked-transfer treatment
// (spec.md §4.4 "Chunked transfer") instead of a bare round trip.
func (a *Agent) handleEffectDispatch(req *wire.Frame) (*wire.Frame, error) {
	op := abi.EffectOpcode(req.Opcode)

	switch op {
	case abi.OpSetChunk:
		return a.handleSetChunk(req)
	case abi.OpGetChunk:
		return a.handleGetChunk(req)
	}

	value, data, err := a.plugin.Dispatch(op, req.Index, req.Value, req.Opt, req.Data)
	if err != nil {
		return nil, fmt.Errorf("hostagent: dispatch %v: %w", op, err)
	}

	if pushErr := a.MaybePushPluginData(); pushErr != nil && a.logger != nil {
		a.logger.Warn("plugin data push failed", "error", pushErr)
	}

	return &wire.Frame{Cmd: wire.CmdEffectDispatch, Opcode: req.Opcode, Index: req.Index, Value: value, Data: data}, nil
}

func (a *Agent) handleGetParameter(req *wire.Frame) (*wire.Frame, error) {
	v, err := a.plugin.GetParameter(req.Index)
	if err != nil {
		return nil, fmt.Errorf("hostagent: get_parameter: %w", err)
	}
	return &wire.Frame{Cmd: wire.CmdGetParameter, Index: req.Index, Value: wire.ParamValueBits(v)}, nil
}

// handleSetParameter serves SET_PARAMETER. Per spec.md §9's Open
// Question, this remains a fire-and-forget call on the wire even though a
// tag was allocated for it; the handler returns a nil response so
// dispatchInline writes nothing back.
func (a *Agent) handleSetParameter(req *wire.Frame) (*wire.Frame, error) {
	a.plugin.SetParameter(req.Index, wire.ParamValueFromBits(req.Value))
	return nil, nil
}

func (a *Agent) handleProcess(req *wire.Frame) (*wire.Frame, error) {
	inputs := unpackSamplesF32(req.SamplesF32, int(req.NumChannels), int(req.NumFrames))
	outputs := a.plugin.Process(inputs, int(req.NumFrames))
	return &wire.Frame{
		Cmd:         wire.CmdProcess,
		NumFrames:   req.NumFrames,
		NumChannels: uint32(len(outputs)),
		SamplesF32:  packSamplesF32(outputs, int(req.NumFrames)),
	}, nil
}

func (a *Agent) handleProcessDouble(req *wire.Frame) (*wire.Frame, error) {
	inputs := unpackSamplesF64(req.SamplesF64, int(req.NumChannels), int(req.NumFrames))
	outputs := a.plugin.ProcessDouble(inputs, int(req.NumFrames))
	return &wire.Frame{
		Cmd:         wire.CmdProcessDouble,
		NumFrames:   req.NumFrames,
		NumChannels: uint32(len(outputs)),
		SamplesF64:  packSamplesF64(outputs, int(req.NumFrames)),
	}, nil
}

func unpackSamplesF32(flat []float32, channels, nframes int) [][]float32 {
	out := make([][]float32, channels)
	for i := range out {
		start := i * nframes
		end := start + nframes
		if end > len(flat) {
			out[i] = make([]float32, nframes)
			continue
		}
		buf := make([]float32, nframes)
		copy(buf, flat[start:end])
		out[i] = buf
	}
	return out
}

func packSamplesF32(channels [][]float32, nframes int) []float32 {
	out := make([]float32, 0, len(channels)*nframes)
	for _, ch := range channels {
		if len(ch) < nframes {
			padded := make([]float32, nframes)
			copy(padded, ch)
			out = append(out, padded...)
			continue
		}
		out = append(out, ch[:nframes]...)
	}
	return out
}

func unpackSamplesF64(flat []float64, channels, nframes int) [][]float64 {
	out := make([][]float64, channels)
	for i := range out {
		start := i * nframes
		end := start + nframes
		if end > len(flat) {
			out[i] = make([]float64, nframes)
			continue
		}
		buf := make([]float64, nframes)
		copy(buf, flat[start:end])
		out[i] = buf
	}
	return out
}

func packSamplesF64(channels [][]float64, nframes int) []float64 {
	out := make([]float64, 0, len(channels)*nframes)
	for _, ch := range channels {
		if len(ch) < nframes {
			padded := make([]float64, nframes)
			copy(padded, ch)
			out = append(out, padded...)
			continue
		}
		out = append(out, ch[:nframes]...)
	}
	return out
}
