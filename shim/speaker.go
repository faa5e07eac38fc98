package shim

import (
	"fmt"

	"github.com/pluginbridge/bridge/abi"
)

// SetSpeakerArrangement pushes a new input/output speaker layout to the
// plugin (spec.md §4.3 "Speaker arrangement"). The arrangement's wire
// encoding is carried in the request's data slot, Index unused.
func (s *Shim) SetSpeakerArrangement(in, out abi.SpeakerArrangement) (bool, error) {
	data := append(abi.EncodeSpeakerArrangement(in), abi.EncodeSpeakerArrangement(out)...)
	value, _, err := s.Dispatch(abi.OpSetSpeakerArrangement, 0, 0, 0, data)
	if err != nil {
		return false, fmt.Errorf("shim: set_speaker_arrangement: %w", err)
	}
	return value != 0, nil
}

// GetSpeakerArrangement retrieves the plugin's current input and output
// speaker layout.
func (s *Shim) GetSpeakerArrangement() (in, out abi.SpeakerArrangement, err error) {
	_, data, err := s.Dispatch(abi.OpGetSpeakerArrangement, 0, 0, 0, nil)
	if err != nil {
		return abi.SpeakerArrangement{}, abi.SpeakerArrangement{}, fmt.Errorf("shim: get_speaker_arrangement: %w", err)
	}
	if len(data) == 0 {
		return abi.SpeakerArrangement{}, abi.SpeakerArrangement{}, nil
	}

	in, rest, err := splitSpeakerArrangement(data)
	if err != nil {
		return abi.SpeakerArrangement{}, abi.SpeakerArrangement{}, fmt.Errorf("shim: get_speaker_arrangement: %w", err)
	}
	out, err = abi.DecodeSpeakerArrangement(rest)
	if err != nil {
		return abi.SpeakerArrangement{}, abi.SpeakerArrangement{}, fmt.Errorf("shim: get_speaker_arrangement: %w", err)
	}
	return in, out, nil
}

// splitSpeakerArrangement decodes the first of two back-to-back
// SpeakerArrangement encodings from data and returns it along with the
// remaining bytes, since the wire form carries no outer length prefix
// between the two.
func splitSpeakerArrangement(data []byte) (abi.SpeakerArrangement, []byte, error) {
	if len(data) < 8 {
		return abi.SpeakerArrangement{}, nil, fmt.Errorf("need at least 8 bytes, got %d", len(data))
	}
	count := int(uint32(data[4]) | uint32(data[5])<<8 | uint32(data[6])<<16 | uint32(data[7])<<24)
	size := 8 + count*speakerRecordWidth
	if size > len(data) {
		return abi.SpeakerArrangement{}, nil, fmt.Errorf("truncated speaker block")
	}
	arr, err := abi.DecodeSpeakerArrangement(data[:size])
	if err != nil {
		return abi.SpeakerArrangement{}, nil, err
	}
	return arr, data[size:], nil
}

// speakerRecordWidth matches abi.EncodeSpeakerArrangement's per-speaker
// record size (4 floats + a 64-byte name + a type tag).
const speakerRecordWidth = 4 + 4 + 4 + 4 + 64 + 4
