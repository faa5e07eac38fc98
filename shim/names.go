package shim

import "github.com/pluginbridge/bridge/abi"

// GetEffectName, GetVendorString, and GetProductString query the plugin's
// fixed identity strings (spec.md §4.3 "Buffer-returning string
// opcodes"), copying the result into dst.
func (s *Shim) GetEffectName(dst []byte) error {
	return s.GetString(abi.OpGetEffectName, 0, dst)
}

func (s *Shim) GetVendorString(dst []byte) error {
	return s.GetString(abi.OpGetVendorString, 0, dst)
}

func (s *Shim) GetProductString(dst []byte) error {
	return s.GetString(abi.OpGetProductString, 0, dst)
}

// GetParamLabel, GetParamDisplay, and GetParamName query the unit label,
// formatted value, and name of the parameter at index.
func (s *Shim) GetParamLabel(index int32, dst []byte) error {
	return s.GetString(abi.OpGetParamLabel, index, dst)
}

func (s *Shim) GetParamDisplay(index int32, dst []byte) error {
	return s.GetString(abi.OpGetParamDisplay, index, dst)
}

func (s *Shim) GetParamName(index int32, dst []byte) error {
	return s.GetString(abi.OpGetParamName, index, dst)
}

// GetProgramName and GetProgramNameIndexed query the current program's
// name and, respectively, the name of the program at index without
// switching to it.
func (s *Shim) GetProgramName(dst []byte) error {
	return s.GetString(abi.OpGetProgramName, 0, dst)
}

func (s *Shim) GetProgramNameIndexed(index int32, dst []byte) error {
	return s.GetString(abi.OpGetProgramNameIndexed, index, dst)
}

// SetProgramName renames the current program.
func (s *Shim) SetProgramName(name string) error {
	_, err := s.SetBuffer(abi.OpSetProgramName, 0, []byte(name))
	return err
}

// CanDo answers the plugin's can-do string query (spec.md §4.3
// "Buffer-accepting opcodes"); a result of 1 means yes.
func (s *Shim) CanDo(name string) (bool, error) {
	value, err := s.SetBuffer(abi.OpCanDo, 0, []byte(name))
	if err != nil {
		return false, err
	}
	return value == 1, nil
}
