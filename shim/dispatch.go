package shim

import (
	"bytes"
	"fmt"

	"github.com/pluginbridge/bridge/abi"
	"github.com/pluginbridge/bridge/wire"
)

// Dispatch sends a single EFFECT_DISPATCH request on MainContext and
// returns the scalar result and any response data. It implements
// spec.md §4.3's "value-only", "buffer-accepting", and
// "buffer-returning string" marshalling policies, which all share the
// same request/response shape and differ only in which side of the round
// trip carries the data slot.
//
// These non-realtime ABI entry points funnel through here: set block
// size, set sample rate, set/get program, edit-idle, open, key events,
// mains changed, start/stop process, begin/end set-program, the
// deprecated pin ops, capability queries, get/set program name,
// param label/display/name, effect/vendor/product name, indexed program
// name, and can-do. Close does not: Shim.Close sends its request
// fire-and-forget without waiting.
func (s *Shim) Dispatch(op abi.EffectOpcode, index int32, value int64, opt float32, data []byte) (int64, []byte, error) {
	tag, err := s.main.SendRequest(&wire.Frame{
		Cmd:    wire.CmdEffectDispatch,
		Opcode: int32(op),
		Index:  index,
		Value:  value,
		Opt:    opt,
		Data:   data,
	})
	if err != nil {
		return 0, nil, fmt.Errorf("shim: dispatch %v: %w", op, err)
	}

	resp, err := s.main.Wait(tag)
	if err != nil {
		return 0, nil, fmt.Errorf("shim: dispatch %v: %w", op, err)
	}
	return resp.Value, resp.Data, nil
}

// GetString issues a buffer-returning string opcode and copies the
// NUL-terminated result into dst, truncating to len(dst)-1 bytes plus a
// terminator the way the real ABI's fixed-size caller buffers require.
func (s *Shim) GetString(op abi.EffectOpcode, index int32, dst []byte) error {
	if !op.ReturnsString() {
		return fmt.Errorf("shim: %v is not a string-returning opcode", op)
	}
	_, data, err := s.Dispatch(op, index, 0, 0, nil)
	if err != nil {
		return err
	}
	copyNulTerminated(dst, data)
	return nil
}

// SetBuffer issues a buffer-accepting opcode (set program name, can-do
// query) carrying src in the request's data slot, returning the scalar
// result.
func (s *Shim) SetBuffer(op abi.EffectOpcode, index int32, src []byte) (int64, error) {
	if !op.AcceptsBuffer() {
		return 0, fmt.Errorf("shim: %v is not a buffer-accepting opcode", op)
	}
	value, _, err := s.Dispatch(op, index, 0, 0, nulTerminate(src))
	return value, err
}

// copyNulTerminated copies the NUL-terminated prefix of src into dst,
// bounded by len(dst).
func copyNulTerminated(dst, src []byte) {
	if n := bytes.IndexByte(src, 0); n >= 0 {
		src = src[:n]
	}
	n := copy(dst, src)
	if n < len(dst) {
		dst[n] = 0
	} else if len(dst) > 0 {
		dst[len(dst)-1] = 0
	}
}

// nulTerminate returns src with a trailing NUL byte appended, the shape
// the wire's data slot expects for buffer-accepting opcodes.
func nulTerminate(src []byte) []byte {
	out := make([]byte, len(src)+1)
	copy(out, src)
	return out
}
