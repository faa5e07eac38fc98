package shim

import (
	"fmt"

	"github.com/pluginbridge/bridge/wire"
)

// Process runs one single-precision audio block on RealtimeContext
// exclusively. inputs and outputs are laid out one slice per channel;
// spec.md §3's channel-major wire layout is produced/consumed by
// packSamplesF32/unpackSamplesF32 so the caller keeps its own
// per-channel buffer convention.
func (s *Shim) Process(inputs [][]float32, outputs [][]float32, nframes int) error {
	req := &wire.Frame{
		Cmd:         wire.CmdProcess,
		NumFrames:   uint32(nframes),
		NumChannels: uint32(len(inputs)),
		SamplesF32:  packSamplesF32(inputs, nframes),
	}
	tag, err := s.rt.SendRequest(req)
	if err != nil {
		return fmt.Errorf("shim: process: %w", err)
	}
	resp, err := s.rt.Wait(tag)
	if err != nil {
		return fmt.Errorf("shim: process: %w", err)
	}
	unpackSamplesF32(resp.SamplesF32, outputs, int(resp.NumFrames))
	return nil
}

// ProcessDouble is Process's double-precision counterpart
// (CmdProcessDouble), gated by the plugin's CanDoublePrecision
// capability.
func (s *Shim) ProcessDouble(inputs [][]float64, outputs [][]float64, nframes int) error {
	req := &wire.Frame{
		Cmd:         wire.CmdProcessDouble,
		NumFrames:   uint32(nframes),
		NumChannels: uint32(len(inputs)),
		SamplesF64:  packSamplesF64(inputs, nframes),
	}
	tag, err := s.rt.SendRequest(req)
	if err != nil {
		return fmt.Errorf("shim: process_double: %w", err)
	}
	resp, err := s.rt.Wait(tag)
	if err != nil {
		return fmt.Errorf("shim: process_double: %w", err)
	}
	unpackSamplesF64(resp.SamplesF64, outputs, int(resp.NumFrames))
	return nil
}

// packSamplesF32 flattens per-channel buffers into the wire's
// channel-major layout (spec.md §3 "first all samples of channel 0,
// then channel 1, etc."). The RT thread must not allocate beyond this
// frame buffer (spec.md §5); callers on a genuine real-time thread
// should reuse a pre-sized slice across calls rather than relying on
// this helper's allocation in the hot path.
func packSamplesF32(channels [][]float32, nframes int) []float32 {
	out := make([]float32, 0, len(channels)*nframes)
	for _, ch := range channels {
		out = append(out, ch[:nframes]...)
	}
	return out
}

func unpackSamplesF32(flat []float32, channels [][]float32, nframes int) {
	for i, ch := range channels {
		start := i * nframes
		if start+nframes > len(flat) {
			return
		}
		copy(ch[:nframes], flat[start:start+nframes])
	}
}

func packSamplesF64(channels [][]float64, nframes int) []float64 {
	out := make([]float64, 0, len(channels)*nframes)
	for _, ch := range channels {
		out = append(out, ch[:nframes]...)
	}
	return out
}

func unpackSamplesF64(flat []float64, channels [][]float64, nframes int) {
	for i, ch := range channels {
		start := i * nframes
		if start+nframes > len(flat) {
			return
		}
		copy(ch[:nframes], flat[start:start+nframes])
	}
}
