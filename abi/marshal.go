package abi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// This file packs/unpacks the fixed-shape property structs exchanged
// through the frame's data slot (spec.md §3 "Effect payload ... data is
// length-prefixed by the frame's overall length"). Layout is little
// endian (spec.md §6 "Wire format"), with fixed-width string fields
// truncated/padded the way the real ABI's caller-allocated buffers are.

func putString(buf *bytes.Buffer, s string, width int) {
	b := make([]byte, width)
	n := copy(b[:width-1], s)
	_ = n
	buf.Write(b)
}

func getString(b []byte) string {
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	return string(b)
}

// EncodeRect packs a Rect into its 8-byte wire form.
func EncodeRect(r Rect) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(r.Top))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(r.Left))
	binary.LittleEndian.PutUint16(buf[4:6], uint16(r.Bottom))
	binary.LittleEndian.PutUint16(buf[6:8], uint16(r.Right))
	return buf
}

// DecodeRect unpacks a Rect from its 8-byte wire form.
func DecodeRect(b []byte) (Rect, error) {
	if len(b) < 8 {
		return Rect{}, fmt.Errorf("abi: rect: need 8 bytes, got %d", len(b))
	}
	return Rect{
		Top:    int16(binary.LittleEndian.Uint16(b[0:2])),
		Left:   int16(binary.LittleEndian.Uint16(b[2:4])),
		Bottom: int16(binary.LittleEndian.Uint16(b[4:6])),
		Right:  int16(binary.LittleEndian.Uint16(b[6:8])),
	}, nil
}

const (
	pinLabelWidth      = 64
	pinShortLabelWidth = 8
	pinFixedWidth      = pinLabelWidth + 4 + 4 + pinShortLabelWidth
)

// EncodePinProperties packs a PinProperties into its wire form.
func EncodePinProperties(p PinProperties) []byte {
	buf := new(bytes.Buffer)
	putString(buf, p.Label, pinLabelWidth)
	binary.Write(buf, binary.LittleEndian, p.Flags)
	binary.Write(buf, binary.LittleEndian, p.ArrangementType)
	putString(buf, p.ShortLabel, pinShortLabelWidth)
	return buf.Bytes()
}

// DecodePinProperties unpacks a PinProperties from its wire form.
func DecodePinProperties(b []byte) (PinProperties, error) {
	if len(b) < pinFixedWidth {
		return PinProperties{}, fmt.Errorf("abi: pin_properties: need %d bytes, got %d", pinFixedWidth, len(b))
	}
	off := 0
	label := getString(b[off : off+pinLabelWidth])
	off += pinLabelWidth
	flags := int32(binary.LittleEndian.Uint32(b[off : off+4]))
	off += 4
	arr := int32(binary.LittleEndian.Uint32(b[off : off+4]))
	off += 4
	short := getString(b[off : off+pinShortLabelWidth])
	return PinProperties{Label: label, Flags: flags, ArrangementType: arr, ShortLabel: short}, nil
}

const (
	paramLabelWidth      = 64
	paramShortLabelWidth = 8
	paramFixedWidth      = 4 + 4 + 4 + paramLabelWidth + 4 + 4 + 4 + 4 + 4 + paramShortLabelWidth
)

// EncodeParameterProperties packs a ParameterProperties into its wire
// form.
func EncodeParameterProperties(p ParameterProperties) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, p.StepFloat)
	binary.Write(buf, binary.LittleEndian, p.SmallStepFloat)
	binary.Write(buf, binary.LittleEndian, p.LargeStepFloat)
	putString(buf, p.Label, paramLabelWidth)
	binary.Write(buf, binary.LittleEndian, p.Flags)
	binary.Write(buf, binary.LittleEndian, p.MinInteger)
	binary.Write(buf, binary.LittleEndian, p.MaxInteger)
	binary.Write(buf, binary.LittleEndian, p.StepInteger)
	binary.Write(buf, binary.LittleEndian, p.LargeStepInteger)
	putString(buf, p.ShortLabel, paramShortLabelWidth)
	return buf.Bytes()
}

// DecodeParameterProperties unpacks a ParameterProperties from its wire
// form.
func DecodeParameterProperties(b []byte) (ParameterProperties, error) {
	if len(b) < paramFixedWidth {
		return ParameterProperties{}, fmt.Errorf("abi: parameter_properties: need %d bytes, got %d", paramFixedWidth, len(b))
	}
	off := 0
	readF32 := func() float32 {
		v := math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4]))
		off += 4
		return v
	}
	readI32 := func() int32 {
		v := int32(binary.LittleEndian.Uint32(b[off : off+4]))
		off += 4
		return v
	}

	p := ParameterProperties{}
	p.StepFloat = readF32()
	p.SmallStepFloat = readF32()
	p.LargeStepFloat = readF32()
	p.Label = getString(b[off : off+paramLabelWidth])
	off += paramLabelWidth
	p.Flags = readI32()
	p.MinInteger = readI32()
	p.MaxInteger = readI32()
	p.StepInteger = readI32()
	p.LargeStepInteger = readI32()
	p.ShortLabel = getString(b[off : off+paramShortLabelWidth])
	return p, nil
}

const speakerLabelWidth = 64
const speakerFixedWidth = 4 + 4 + 4 + 4 + speakerLabelWidth + 4

// EncodeSpeakerArrangement packs a SpeakerArrangement into its wire form:
// a type tag, a speaker count, then one fixed-width Speaker record per
// entry (spec.md §4.3 "Speaker arrangement").
func EncodeSpeakerArrangement(a SpeakerArrangement) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, a.Type)
	binary.Write(buf, binary.LittleEndian, int32(len(a.Speakers)))
	for _, sp := range a.Speakers {
		binary.Write(buf, binary.LittleEndian, sp.Azimuth)
		binary.Write(buf, binary.LittleEndian, sp.Elevation)
		binary.Write(buf, binary.LittleEndian, sp.Radius)
		binary.Write(buf, binary.LittleEndian, sp.Reserved)
		putString(buf, sp.Name, speakerLabelWidth)
		binary.Write(buf, binary.LittleEndian, sp.Type)
	}
	return buf.Bytes()
}

// DecodeSpeakerArrangement unpacks a SpeakerArrangement from its wire
// form.
func DecodeSpeakerArrangement(b []byte) (SpeakerArrangement, error) {
	if len(b) < 8 {
		return SpeakerArrangement{}, fmt.Errorf("abi: speaker_arrangement: need at least 8 bytes, got %d", len(b))
	}
	typ := int32(binary.LittleEndian.Uint32(b[0:4]))
	count := int32(binary.LittleEndian.Uint32(b[4:8]))
	off := 8
	speakers := make([]Speaker, 0, count)
	for i := int32(0); i < count; i++ {
		if off+speakerFixedWidth > len(b) {
			return SpeakerArrangement{}, fmt.Errorf("abi: speaker_arrangement: truncated at speaker %d", i)
		}
		sp := Speaker{
			Azimuth:   math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4])),
			Elevation: math.Float32frombits(binary.LittleEndian.Uint32(b[off+4 : off+8])),
			Radius:    math.Float32frombits(binary.LittleEndian.Uint32(b[off+8 : off+12])),
			Reserved:  math.Float32frombits(binary.LittleEndian.Uint32(b[off+12 : off+16])),
		}
		off += 16
		sp.Name = getString(b[off : off+speakerLabelWidth])
		off += speakerLabelWidth
		sp.Type = int32(binary.LittleEndian.Uint32(b[off : off+4]))
		off += 4
		speakers = append(speakers, sp)
	}
	return SpeakerArrangement{Type: typ, Speakers: speakers}, nil
}

// midiEventHeaderWidth is the size of an event's fixed header fields —
// Type, DeltaFrames, Flags — excluding the DataLen prefix and the
// variable Data that follows it.
const midiEventHeaderWidth = 12

// EncodeMidiEvents densely packs a batch of MidiEvent records (spec.md §3
// "MIDI batch payload"): a count, then for each event its fixed header, a
// DataLen, and exactly DataLen bytes of data, with no padding between
// events — each record is self-describing so a variable-length payload
// (e.g. sysex) round-trips intact, the way original_source/plugin.cc's
// memcpy(me, evs->events[i], sizeof(*me)+evs->events[i]->byteSize) copies
// exactly byteSize data bytes per event rather than a fixed slot.
func EncodeMidiEvents(events []MidiEvent) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, int32(len(events)))
	for _, e := range events {
		binary.Write(buf, binary.LittleEndian, e.Type)
		binary.Write(buf, binary.LittleEndian, e.DeltaFrames)
		binary.Write(buf, binary.LittleEndian, e.Flags)
		dataLen := int32(e.ByteSize() - midiEventHeaderWidth)
		binary.Write(buf, binary.LittleEndian, dataLen)
		buf.Write(e.Data)
	}
	return buf.Bytes()
}

// DecodeMidiEvents reverses EncodeMidiEvents, advancing past each event by
// its own recorded DataLen rather than any fixed width.
func DecodeMidiEvents(b []byte) ([]MidiEvent, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("abi: midi_events: need at least 4 bytes, got %d", len(b))
	}
	count := int32(binary.LittleEndian.Uint32(b[0:4]))
	off := 4
	events := make([]MidiEvent, 0, count)
	for i := int32(0); i < count; i++ {
		if off+midiEventHeaderWidth+4 > len(b) {
			return nil, fmt.Errorf("abi: midi_events: truncated at event %d", i)
		}
		typ := int32(binary.LittleEndian.Uint32(b[off : off+4]))
		delta := int32(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		flags := int32(binary.LittleEndian.Uint32(b[off+8 : off+12]))
		dataLen := int32(binary.LittleEndian.Uint32(b[off+12 : off+16]))
		off += midiEventHeaderWidth + 4
		if dataLen < 0 || off+int(dataLen) > len(b) {
			return nil, fmt.Errorf("abi: midi_events: truncated data at event %d", i)
		}
		data := make([]byte, dataLen)
		copy(data, b[off:off+int(dataLen)])
		off += int(dataLen)
		events = append(events, MidiEvent{Type: typ, DeltaFrames: delta, Flags: flags, Data: data})
	}
	return events, nil
}
