package wire

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBOR map keys. Small integers keep the encoded frame compact on the
// real-time path, the way bifaci/codec.go keys its frame map (matching an
// external peer implementation is not a concern here, but the same
// discipline — fixed integer keys, optional fields simply absent — keeps
// the codec cheap to encode/decode on every PROCESS call).
const (
	keyTag           = 0
	keyCmd           = 1
	keyPluginData    = 2
	keyOpcode        = 3
	keyIndex         = 4
	keyValue         = 5
	keyOpt           = 6
	keyData          = 7
	keyNumFrames     = 8
	keyNumChannels   = 9
	keySamplesF32    = 10
	keySamplesF64    = 11
	keySchedPolicy   = 12
	keySchedPriority = 13
	keyChunkTotal    = 14
	keyChunkFinal    = 15
	keyStreamID      = 16
	keyChecksum      = 17
)

const (
	pdCanSet        = 0
	pdCanGet        = 1
	pdCanReplacing  = 2
	pdCanDouble     = 3
	pdNumPrograms   = 4
	pdNumParams     = 5
	pdNumInputs     = 6
	pdNumOutputs    = 7
	pdFlags         = 8
	pdInitialDelay  = 9
	pdUniqueID      = 10
	pdVersion       = 11
)

func encodePluginData(pd *PluginData) map[int]interface{} {
	return map[int]interface{}{
		pdCanSet:       pd.CanSetParameter,
		pdCanGet:       pd.CanGetParameter,
		pdCanReplacing: pd.CanReplacing,
		pdCanDouble:    pd.CanDoublePrecision,
		pdNumPrograms:  pd.NumPrograms,
		pdNumParams:    pd.NumParams,
		pdNumInputs:    pd.NumInputs,
		pdNumOutputs:   pd.NumOutputs,
		pdFlags:        pd.Flags,
		pdInitialDelay: pd.InitialDelay,
		pdUniqueID:     pd.UniqueID,
		pdVersion:      pd.Version,
	}
}

func decodePluginData(m map[int]interface{}) (*PluginData, error) {
	pd := &PluginData{}
	var err error
	if pd.CanSetParameter, err = boolField(m, pdCanSet); err != nil {
		return nil, err
	}
	if pd.CanGetParameter, err = boolField(m, pdCanGet); err != nil {
		return nil, err
	}
	if pd.CanReplacing, err = boolField(m, pdCanReplacing); err != nil {
		return nil, err
	}
	if pd.CanDoublePrecision, err = boolField(m, pdCanDouble); err != nil {
		return nil, err
	}
	pd.NumPrograms = int32Field(m, pdNumPrograms)
	pd.NumParams = int32Field(m, pdNumParams)
	pd.NumInputs = int32Field(m, pdNumInputs)
	pd.NumOutputs = int32Field(m, pdNumOutputs)
	pd.Flags = int32Field(m, pdFlags)
	pd.InitialDelay = int32Field(m, pdInitialDelay)
	pd.UniqueID = int32Field(m, pdUniqueID)
	pd.Version = int32Field(m, pdVersion)
	return pd, nil
}

func boolField(m map[int]interface{}, key int) (bool, error) {
	v, ok := m[key]
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("field %d: expected bool", key)
	}
	return b, nil
}

// int32Field extracts an integer from a CBOR-decoded map, tolerating the
// several integer Go types a CBOR decoder may hand back (int64, uint64).
func int32Field(m map[int]interface{}, key int) int32 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return int32(n)
	case uint64:
		return int32(n)
	case int:
		return int32(n)
	default:
		return 0
	}
}

func int64Field(m map[int]interface{}, key int) int64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return n
	case uint64:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

func uint64Field(m map[int]interface{}, key int) uint64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case uint64:
		return n
	case int64:
		return uint64(n)
	case int:
		return uint64(n)
	default:
		return 0
	}
}

// EncodeFrame encodes a Frame to CBOR bytes.
func EncodeFrame(f *Frame) ([]byte, error) {
	m := make(map[int]interface{})
	m[keyTag] = uint32(f.Tag)
	m[keyCmd] = uint8(f.Cmd)

	if f.PluginData != nil {
		m[keyPluginData] = encodePluginData(f.PluginData)
	}
	if f.Opcode != 0 {
		m[keyOpcode] = f.Opcode
	}
	if f.Index != 0 {
		m[keyIndex] = f.Index
	}
	if f.Value != 0 {
		m[keyValue] = f.Value
	}
	if f.Opt != 0 {
		m[keyOpt] = f.Opt
	}
	if f.Data != nil {
		m[keyData] = f.Data
	}
	if f.NumFrames != 0 {
		m[keyNumFrames] = f.NumFrames
	}
	if f.NumChannels != 0 {
		m[keyNumChannels] = f.NumChannels
	}
	if f.SamplesF32 != nil {
		m[keySamplesF32] = f.SamplesF32
	}
	if f.SamplesF64 != nil {
		m[keySamplesF64] = f.SamplesF64
	}
	if f.SchedPolicy != "" {
		m[keySchedPolicy] = f.SchedPolicy
	}
	if f.SchedPriority != 0 {
		m[keySchedPriority] = f.SchedPriority
	}
	if f.ChunkTotal != nil {
		m[keyChunkTotal] = *f.ChunkTotal
	}
	if f.ChunkFinal {
		m[keyChunkFinal] = true
	}
	if f.StreamID != "" {
		m[keyStreamID] = f.StreamID
	}
	if f.Checksum != nil {
		m[keyChecksum] = *f.Checksum
	}

	return cbor.Marshal(m)
}

// DecodeFrame decodes CBOR bytes into a Frame.
func DecodeFrame(data []byte) (*Frame, error) {
	var raw map[int]interface{}
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	f := &Frame{}

	if _, ok := raw[keyTag]; !ok {
		return nil, errors.New("wire: frame missing tag")
	}
	f.Tag = Tag(uint64Field(raw, keyTag))

	cmdVal, ok := raw[keyCmd]
	if !ok {
		return nil, errors.New("wire: frame missing cmd")
	}
	switch v := cmdVal.(type) {
	case uint64:
		f.Cmd = Cmd(v)
	case int64:
		f.Cmd = Cmd(v)
	default:
		return nil, errors.New("wire: cmd must be an integer")
	}

	if pdVal, ok := raw[keyPluginData]; ok {
		pm, err := asIntMap(pdVal)
		if err != nil {
			return nil, fmt.Errorf("wire: plugin_data: %w", err)
		}
		pd, err := decodePluginData(pm)
		if err != nil {
			return nil, err
		}
		f.PluginData = pd
	}

	f.Opcode = int32Field(raw, keyOpcode)
	f.Index = int32Field(raw, keyIndex)
	f.Value = int64Field(raw, keyValue)
	if optVal, ok := raw[keyOpt]; ok {
		if opt, ok := optVal.(float32); ok {
			f.Opt = opt
		} else if optF64, ok := optVal.(float64); ok {
			f.Opt = float32(optF64)
		}
	}
	if dataVal, ok := raw[keyData]; ok {
		if b, ok := dataVal.([]byte); ok {
			f.Data = b
		}
	}
	f.NumFrames = uint32(uint64Field(raw, keyNumFrames))
	f.NumChannels = uint32(uint64Field(raw, keyNumChannels))
	if v, ok := raw[keySamplesF32]; ok {
		samples, err := asFloat32Slice(v)
		if err != nil {
			return nil, fmt.Errorf("wire: samples_f32: %w", err)
		}
		f.SamplesF32 = samples
	}
	if v, ok := raw[keySamplesF64]; ok {
		samples, err := asFloat64Slice(v)
		if err != nil {
			return nil, fmt.Errorf("wire: samples_f64: %w", err)
		}
		f.SamplesF64 = samples
	}
	if v, ok := raw[keySchedPolicy]; ok {
		if s, ok := v.(string); ok {
			f.SchedPolicy = s
		}
	}
	f.SchedPriority = int32Field(raw, keySchedPriority)
	if v, ok := raw[keyChunkTotal]; ok {
		n := uint64Field(map[int]interface{}{0: v}, 0)
		f.ChunkTotal = &n
	}
	if v, ok := raw[keyChunkFinal]; ok {
		if b, ok := v.(bool); ok {
			f.ChunkFinal = b
		}
	}
	if v, ok := raw[keyStreamID]; ok {
		if s, ok := v.(string); ok {
			f.StreamID = s
		}
	}
	if v, ok := raw[keyChecksum]; ok {
		n := uint64Field(map[int]interface{}{0: v}, 0)
		f.Checksum = &n
	}

	return f, nil
}

// asIntMap converts a CBOR-decoded nested map (which may come back keyed
// by interface{} rather than int, depending on the decoder's generic
// path) into map[int]interface{}.
func asIntMap(v interface{}) (map[int]interface{}, error) {
	switch m := v.(type) {
	case map[int]interface{}:
		return m, nil
	case map[interface{}]interface{}:
		out := make(map[int]interface{}, len(m))
		for k, val := range m {
			switch ik := k.(type) {
			case int64:
				out[int(ik)] = val
			case uint64:
				out[int(ik)] = val
			case int:
				out[ik] = val
			default:
				return nil, fmt.Errorf("non-integer map key %v", k)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected map, got %T", v)
	}
}

func asFloat32Slice(v interface{}) ([]float32, error) {
	items, ok := v.([]interface{})
	if !ok {
		if f32, ok := v.([]float32); ok {
			return f32, nil
		}
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]float32, len(items))
	for i, item := range items {
		switch n := item.(type) {
		case float64:
			out[i] = float32(n)
		case float32:
			out[i] = n
		default:
			return nil, fmt.Errorf("sample %d: expected float, got %T", i, item)
		}
	}
	return out, nil
}

func asFloat64Slice(v interface{}) ([]float64, error) {
	items, ok := v.([]interface{})
	if !ok {
		if f64, ok := v.([]float64); ok {
			return f64, nil
		}
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("sample %d: expected float, got %T", i, item)
		}
		out[i] = f
	}
	return out, nil
}
