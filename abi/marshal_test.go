package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectRoundTrip(t *testing.T) {
	r := Rect{Top: 10, Left: 20, Bottom: 300, Right: 400}
	got, err := DecodeRect(EncodeRect(r))
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestDecodeRectTooShort(t *testing.T) {
	_, err := DecodeRect([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestPinPropertiesRoundTrip(t *testing.T) {
	p := PinProperties{
		Label:           "Left Input",
		Flags:           3,
		ArrangementType: 1,
		ShortLabel:      "In L",
	}
	got, err := DecodePinProperties(EncodePinProperties(p))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPinPropertiesLabelTruncation(t *testing.T) {
	longLabel := make([]byte, 200)
	for i := range longLabel {
		longLabel[i] = 'x'
	}
	p := PinProperties{Label: string(longLabel)}
	got, err := DecodePinProperties(EncodePinProperties(p))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got.Label), pinLabelWidth)
}

func TestParameterPropertiesRoundTrip(t *testing.T) {
	p := ParameterProperties{
		StepFloat:        0.1,
		SmallStepFloat:   0.01,
		LargeStepFloat:   1.0,
		Label:            "Cutoff",
		Flags:            5,
		MinInteger:       0,
		MaxInteger:       127,
		StepInteger:      1,
		LargeStepInteger: 10,
		ShortLabel:       "Cutof",
	}
	got, err := DecodeParameterProperties(EncodeParameterProperties(p))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestSpeakerArrangementRoundTrip(t *testing.T) {
	sa := SpeakerArrangement{
		Type: 2,
		Speakers: []Speaker{
			{Azimuth: 0, Elevation: 0, Radius: 1, Name: "L", Type: 1},
			{Azimuth: 90, Elevation: 0, Radius: 1, Name: "R", Type: 2},
		},
	}
	got, err := DecodeSpeakerArrangement(EncodeSpeakerArrangement(sa))
	require.NoError(t, err)
	assert.Equal(t, sa, got)
}

func TestSpeakerArrangementEmpty(t *testing.T) {
	sa := SpeakerArrangement{Type: 0}
	got, err := DecodeSpeakerArrangement(EncodeSpeakerArrangement(sa))
	require.NoError(t, err)
	assert.Equal(t, 0, len(got.Speakers))
}

func TestSpeakerArrangementTruncated(t *testing.T) {
	sa := SpeakerArrangement{Type: 1, Speakers: []Speaker{{Name: "L"}}}
	buf := EncodeSpeakerArrangement(sa)
	_, err := DecodeSpeakerArrangement(buf[:len(buf)-10])
	assert.Error(t, err)
}

func TestMidiEventsRoundTrip(t *testing.T) {
	events := []MidiEvent{
		{Type: 1, DeltaFrames: 0, Flags: 0, Data: []byte{0x90, 0x40, 0x7f, 0x00}},
		{Type: 1, DeltaFrames: 128, Flags: 0, Data: []byte{0x80, 0x40, 0x00, 0x00}},
	}
	got, err := DecodeMidiEvents(EncodeMidiEvents(events))
	require.NoError(t, err)
	assert.Equal(t, events, got)
}

func TestMidiEventByteSize(t *testing.T) {
	e := MidiEvent{Data: []byte{1, 2, 3, 4}}
	assert.Equal(t, 16, e.ByteSize())
}

// TestMidiEventsRoundTripVariableLengthData covers a sysex-sized payload
// next to ordinary 1- and 3-byte channel messages in the same batch,
// confirming each event is self-describing rather than packed into a
// fixed-width data slot.
func TestMidiEventsRoundTripVariableLengthData(t *testing.T) {
	sysex := make([]byte, 257)
	for i := range sysex {
		sysex[i] = byte(i)
	}
	events := []MidiEvent{
		{Type: 1, DeltaFrames: 0, Flags: 0, Data: []byte{0xf0}},
		{Type: 1, DeltaFrames: 4, Flags: 0, Data: sysex},
		{Type: 1, DeltaFrames: 8, Flags: 0, Data: []byte{0x90, 0x40, 0x7f}},
	}
	got, err := DecodeMidiEvents(EncodeMidiEvents(events))
	require.NoError(t, err)
	assert.Equal(t, events, got)
}

func TestDecodeMidiEventsTruncated(t *testing.T) {
	events := []MidiEvent{{Type: 1, Data: []byte{1, 2, 3, 4}}}
	buf := EncodeMidiEvents(events)
	_, err := DecodeMidiEvents(buf[:len(buf)-4])
	assert.Error(t, err)
}
