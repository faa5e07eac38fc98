package shim

import (
	"encoding/binary"
	"fmt"

	"github.com/pluginbridge/bridge/abi"
)

// GetEditRect issues the edit-rect query and stores the received rect in
// endpoint-owned storage, returning a pointer to it (spec.md §4.3
// "Edit-rect query").
//
// Quirk (spec.md §9 Open Question, preserved verbatim): after populating
// the real rect from the response, the shim clamps the rect it hands
// back to the host to 1x1. It is unclear from original_source/plugin.cc
// whether this is an intentional workaround for a specific host or a
// latent bug; spec.md instructs preserving the observed behavior rather
// than "fixing" it, so the clamp happens unconditionally after storage.
func (s *Shim) GetEditRect() (*abi.Rect, error) {
	_, data, err := s.Dispatch(abi.OpEditGetRect, 0, 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("shim: edit_get_rect: %w", err)
	}

	var rect abi.Rect
	if len(data) >= 8 {
		rect.Top = int16(binary.LittleEndian.Uint16(data[0:2]))
		rect.Left = int16(binary.LittleEndian.Uint16(data[2:4]))
		rect.Bottom = int16(binary.LittleEndian.Uint16(data[4:6]))
		rect.Right = int16(binary.LittleEndian.Uint16(data[6:8]))
	}

	s.editRectMu.Lock()
	s.editRect = rect
	// Preserved quirk: clamp to 1x1 regardless of the real reported
	// size.
	s.editRect.Bottom = s.editRect.Top + 1
	s.editRect.Right = s.editRect.Left + 1
	clamped := s.editRect
	s.editRectMu.Unlock()

	return &clamped, nil
}
