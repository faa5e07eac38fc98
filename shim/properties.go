package shim

import (
	"fmt"

	"github.com/pluginbridge/bridge/abi"
)

// GetParameterProperties issues the parameter-property query (spec.md
// §4.3 "Pin/parameter property queries": "zero the response's property
// struct, send, await, return struct via caller's pointer").
func (s *Shim) GetParameterProperties(index int32) (abi.ParameterProperties, bool, error) {
	_, data, err := s.Dispatch(abi.OpGetParameterProperties, index, 0, 0, nil)
	if err != nil {
		return abi.ParameterProperties{}, false, fmt.Errorf("shim: get_parameter_properties: %w", err)
	}
	if len(data) == 0 {
		return abi.ParameterProperties{}, false, nil
	}
	props, err := abi.DecodeParameterProperties(data)
	if err != nil {
		return abi.ParameterProperties{}, false, fmt.Errorf("shim: get_parameter_properties: %w", err)
	}
	return props, true, nil
}

// GetInputProperties and GetOutputProperties issue the pin-property
// query for an input or output channel respectively.
func (s *Shim) GetInputProperties(index int32) (abi.PinProperties, bool, error) {
	return s.pinProperties(abi.OpGetInputProperties, index)
}

func (s *Shim) GetOutputProperties(index int32) (abi.PinProperties, bool, error) {
	return s.pinProperties(abi.OpGetOutputProperties, index)
}

func (s *Shim) pinProperties(op abi.EffectOpcode, index int32) (abi.PinProperties, bool, error) {
	_, data, err := s.Dispatch(op, index, 0, 0, nil)
	if err != nil {
		return abi.PinProperties{}, false, fmt.Errorf("shim: pin_properties: %w", err)
	}
	if len(data) == 0 {
		return abi.PinProperties{}, false, nil
	}
	props, err := abi.DecodePinProperties(data)
	if err != nil {
		return abi.PinProperties{}, false, fmt.Errorf("shim: pin_properties: %w", err)
	}
	return props, true, nil
}
