package shim

import (
	"fmt"

	"github.com/pluginbridge/bridge/abi"
	"github.com/pluginbridge/bridge/wire"
)

// GetChunk retrieves the plugin's full chunk/preset state, reassembling
// it from as many continuation frames as the host agent sends (spec.md
// §4.4 "Chunked transfer": "a single logical message spans multiple
// frames ... sharing the originating tag"). isPreset selects between the
// bank chunk and the single-program chunk, matching OpGetChunk's Index
// argument convention.
func (s *Shim) GetChunk(isPreset bool) ([]byte, error) {
	index := int32(0)
	if isPreset {
		index = 1
	}

	tag, err := s.main.SendRequest(&wire.Frame{
		Cmd:    wire.CmdEffectDispatch,
		Opcode: int32(abi.OpGetChunk),
		Index:  index,
	})
	if err != nil {
		return nil, fmt.Errorf("shim: get_chunk: %w", err)
	}

	first, err := s.main.Wait(tag)
	if err != nil {
		return nil, fmt.Errorf("shim: get_chunk: %w", err)
	}
	if err := wire.VerifyChunkChecksum(first); err != nil {
		return nil, fmt.Errorf("shim: get_chunk: %w", err)
	}

	if first.ChunkTotal == nil {
		// Whole chunk fit in one frame.
		return first.Data, nil
	}

	buf := make([]byte, 0, *first.ChunkTotal)
	buf = append(buf, first.Data...)
	final := first.ChunkFinal
	for !final {
		next, err := s.main.Wait(tag)
		if err != nil {
			return nil, fmt.Errorf("shim: get_chunk: continuation: %w", err)
		}
		if err := wire.VerifyChunkChecksum(next); err != nil {
			return nil, fmt.Errorf("shim: get_chunk: %w", err)
		}
		buf = append(buf, next.Data...)
		final = next.ChunkFinal
	}
	return buf, nil
}

// SetChunk pushes a full chunk/preset state to the plugin, splitting it
// into wire.DefaultMaxChunk-sized frames sharing one tag when it exceeds
// that size (spec.md §4.4 "Chunked transfer").
func (s *Shim) SetChunk(data []byte, isPreset bool) error {
	index := int32(0)
	if isPreset {
		index = 1
	}

	streamID := wire.NewStreamID()
	chunkSize := wire.DefaultMaxChunk
	total := uint64(len(data))

	first := data
	final := true
	if len(data) > chunkSize {
		first = data[:chunkSize]
		final = false
	}
	firstSum := wire.ComputeChecksum(first)

	tag, err := s.main.SendRequest(&wire.Frame{
		Cmd:        wire.CmdEffectDispatch,
		Opcode:     int32(abi.OpSetChunk),
		Index:      index,
		Data:       first,
		ChunkTotal: &total,
		ChunkFinal: final,
		StreamID:   streamID,
		Checksum:   &firstSum,
	})
	if err != nil {
		return fmt.Errorf("shim: set_chunk: %w", err)
	}

	for offset := len(first); offset < len(data); {
		end := offset + chunkSize
		isLast := end >= len(data)
		if isLast {
			end = len(data)
		}
		sum := wire.ComputeChecksum(data[offset:end])
		if err := s.main.SendContinuation(tag, &wire.Frame{
			Cmd:        wire.CmdEffectDispatch,
			Opcode:     int32(abi.OpSetChunk),
			Index:      index,
			Data:       data[offset:end],
			ChunkFinal: isLast,
			StreamID:   streamID,
			Checksum:   &sum,
		}); err != nil {
			return fmt.Errorf("shim: set_chunk: continuation: %w", err)
		}
		offset = end
	}

	if _, err := s.main.Wait(tag); err != nil {
		return fmt.Errorf("shim: set_chunk: ack: %w", err)
	}
	return nil
}
