package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Reader reads length-prefixed CBOR frames from a bridge channel. Every
// channel message carries exactly one frame, so a short read of the
// length prefix or payload is always an error, never a sign to wait for
// more data within the same message (spec.md §4.1).
type Reader struct {
	r      io.Reader
	limits Limits
}

// NewReader wraps r, which must deliver exactly one frame's bytes between
// successive reads sufficient to satisfy io.ReadFull (a pipe, a socket, or
// — for tests — an in-memory duplex buffer).
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, limits: DefaultLimits()}
}

// SetLimits updates the negotiated frame-size limits this reader
// enforces.
func (fr *Reader) SetLimits(l Limits) { fr.limits = l }

// ReadFrame reads and decodes one frame. A zero-byte read (io.EOF on the
// length prefix) signals the peer closed the channel and is propagated
// verbatim so the endpoint loop can treat it as fatal per spec.md §7.
func (fr *Reader) ReadFrame() (*Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(fr.r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(lenBuf[:])

	if int(length) > fr.limits.MaxFrame {
		return nil, fmt.Errorf("wire: frame size %d exceeds negotiated max %d", length, fr.limits.MaxFrame)
	}
	if int(length) > MaxFrameHardLimit {
		return nil, fmt.Errorf("wire: frame size %d exceeds hard limit %d", length, MaxFrameHardLimit)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(fr.r, buf); err != nil {
		return nil, err
	}
	return DecodeFrame(buf)
}

// Writer writes length-prefixed CBOR frames to a bridge channel.
type Writer struct {
	w      io.Writer
	limits Limits
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, limits: DefaultLimits()}
}

// SetLimits updates the negotiated frame-size limits this writer
// enforces.
func (fw *Writer) SetLimits(l Limits) { fw.limits = l }

// WriteFrame encodes and writes one frame as a single channel message.
func (fw *Writer) WriteFrame(f *Frame) error {
	buf, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	if len(buf) > fw.limits.MaxFrame {
		return fmt.Errorf("wire: encoded frame size %d exceeds negotiated max %d", len(buf), fw.limits.MaxFrame)
	}
	if len(buf) > MaxFrameHardLimit {
		return fmt.Errorf("wire: encoded frame size %d exceeds hard limit %d", len(buf), MaxFrameHardLimit)
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(buf)))
	if _, err := fw.w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err = fw.w.Write(buf)
	return err
}

// HandshakeInitiate performs the shim side of the PLUGIN_MAIN handshake
// (spec.md §4.5 step 2): write a tag-0 PLUGIN_MAIN frame and await the
// host agent's tag-0 PLUGIN_MAIN response carrying the initial
// PluginData.
func HandshakeInitiate(r *Reader, w *Writer) (*PluginData, error) {
	if err := w.WriteFrame(&Frame{Tag: 0, Cmd: CmdPluginMain}); err != nil {
		return nil, fmt.Errorf("wire: handshake write: %w", err)
	}

	resp, err := r.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("wire: handshake read: %w", err)
	}
	if resp.Cmd != CmdPluginMain {
		return nil, fmt.Errorf("wire: expected PLUGIN_MAIN handshake response, got %s", resp.Cmd)
	}
	if resp.PluginData == nil {
		return nil, errors.New("wire: PLUGIN_MAIN response missing plugin data")
	}
	return resp.PluginData, nil
}

// HandshakeAccept performs the host agent side of the handshake: read the
// shim's tag-0 PLUGIN_MAIN frame, then respond with tag-0 PLUGIN_MAIN
// carrying the freshly loaded plugin's descriptor.
func HandshakeAccept(r *Reader, w *Writer, initial *PluginData) error {
	req, err := r.ReadFrame()
	if err != nil {
		return fmt.Errorf("wire: handshake read: %w", err)
	}
	if req.Cmd != CmdPluginMain {
		return fmt.Errorf("wire: expected PLUGIN_MAIN handshake, got %s", req.Cmd)
	}
	return w.WriteFrame(&Frame{Tag: 0, Cmd: CmdPluginMain, PluginData: initial})
}
