package hostagent

import (
	"fmt"

	"github.com/pluginbridge/bridge/abi"
	"github.com/pluginbridge/bridge/wire"
)

// handleSetChunk assembles the frames of a chunked set-chunk transfer
// (spec.md §4.4 "Chunked transfer": "a single logical message spans
// multiple frames ... sharing the originating tag"). Non-final frames are
// buffered and answered with a nil response (suppressing a reply per
// frame); only the final frame triggers the actual plugin call and a
// single ack.
func (a *Agent) handleSetChunk(req *wire.Frame) (*wire.Frame, error) {
	if err := wire.VerifyChunkChecksum(req); err != nil {
		a.chunkMu.Lock()
		delete(a.chunkIn, req.Tag)
		a.chunkMu.Unlock()
		return nil, fmt.Errorf("hostagent: set_chunk: %w", err)
	}

	a.chunkMu.Lock()
	buf := append(a.chunkIn[req.Tag], req.Data...)
	if !req.ChunkFinal {
		a.chunkIn[req.Tag] = buf
		a.chunkMu.Unlock()
		return nil, nil
	}
	delete(a.chunkIn, req.Tag)
	a.chunkMu.Unlock()

	isPreset := req.Index != 0
	value, _, err := a.plugin.Dispatch(abi.OpSetChunk, boolToIndex(isPreset), int64(len(buf)), 0, buf)
	if err != nil {
		return nil, fmt.Errorf("hostagent: set_chunk: %w", err)
	}

	if pushErr := a.MaybePushPluginData(); pushErr != nil && a.logger != nil {
		a.logger.Warn("plugin data push failed", "error", pushErr)
	}

	return &wire.Frame{Cmd: wire.CmdEffectDispatch, Opcode: int32(abi.OpSetChunk), Index: req.Index, Value: value}, nil
}

// handleGetChunk retrieves the plugin's chunk and, if it exceeds
// wire.DefaultMaxChunk, splits it across continuation frames written
// directly on the context before returning a nil response (the first
// frame is written here too, so dispatchInline must not write a second
// one).
func (a *Agent) handleGetChunk(req *wire.Frame) (*wire.Frame, error) {
	_, data, err := a.plugin.Dispatch(abi.OpGetChunk, req.Index, 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("hostagent: get_chunk: %w", err)
	}

	chunkSize := wire.DefaultMaxChunk
	if len(data) <= chunkSize {
		sum := wire.ComputeChecksum(data)
		return &wire.Frame{Cmd: wire.CmdEffectDispatch, Opcode: int32(abi.OpGetChunk), Index: req.Index, Data: data, Checksum: &sum}, nil
	}

	total := uint64(len(data))
	streamID := wire.NewStreamID()
	offset := 0
	for offset < len(data) {
		end := offset + chunkSize
		final := end >= len(data)
		if final {
			end = len(data)
		}
		sum := wire.ComputeChecksum(data[offset:end])
		frame := &wire.Frame{
			Cmd:        wire.CmdEffectDispatch,
			Opcode:     int32(abi.OpGetChunk),
			Index:      req.Index,
			Data:       data[offset:end],
			ChunkFinal: final,
			StreamID:   streamID,
			Checksum:   &sum,
		}
		if offset == 0 {
			frame.ChunkTotal = &total
		}
		if err := a.main.SendContinuation(req.Tag, frame); err != nil {
			return nil, fmt.Errorf("hostagent: get_chunk: continuation: %w", err)
		}
		offset = end
	}

	// All frames already written directly above; suppress
	// dispatchInline's automatic response.
	return nil, nil
}

func boolToIndex(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
