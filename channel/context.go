// Package channel implements the bridge's multiplexer: one ChannelContext
// per thread class (MainContext, RealtimeContext), each owning a tag
// counter, a pending-frame FIFO, and the re-entrant wait/serve logic that
// lets a peer-initiated callback be answered inline while this side is
// still blocked awaiting its own response (spec.md §4.2).
//
// Grounded on bifaci/host.go's split between a background reader
// goroutine (readerLoop) feeding an event channel and a single owning
// goroutine that drains it (the host's select loop in Run). A
// ChannelContext narrows that multi-plugin event loop down to the single
// peer, two-thread-class shape this bridge needs: only the goroutine that
// calls SendRequest/Wait/ServeOne ever touches the pending FIFO or tag
// counter, so there is nothing to lock — the re-entrant mutex called for
// in spec.md §9's Design Notes is modeled as single-thread ownership
// instead, exactly as that note allows.
package channel

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/pluginbridge/bridge/wire"
)

// ErrClosed is returned by Wait/ServeOne/SendRequest once the channel has
// been torn down (read of zero bytes, or explicit Close).
var ErrClosed = errors.New("channel: closed")

// Handler answers an incoming peer-initiated call (a frame whose Cmd is a
// callback in the opposite direction of this context's owner) and returns
// the response frame to write back, carrying the same tag. A nil
// response means nothing is written back: the host agent returns nil for
// SET_PARAMETER, for non-final set-chunk frames, and for a multi-frame
// get-chunk whose frames it has already written itself.
type Handler func(req *wire.Frame) (*wire.Frame, error)

// OneWayHandler processes an unsolicited frame (tag 0): handshake is
// consumed directly by HandshakeInitiate/Accept, so in steady state the
// only one-way traffic is an out-of-band PLUGIN_DATA push.
type OneWayHandler func(frame *wire.Frame)

// Role identifies which endpoint owns a context, since the meaning of
// "incoming call" vs "our response" is direction-dependent.
type Role int

const (
	// RoleShim marks a context owned by the native-side shim.
	RoleShim Role = iota
	// RoleHostAgent marks a context owned by the foreign-side host
	// agent.
	RoleHostAgent
)

// Context is one channel plus its multiplexer state: tag counter, pending
// FIFO, and the background reader feeding them. One per thread class per
// endpoint (spec.md §2: MainContext, RealtimeContext never share a
// socket, tag space, or FIFO — invariant 4 in §3).
type Context struct {
	name   string
	role   Role
	reader *wire.Reader
	writer *wire.Writer
	closer io.Closer

	onCallback Handler
	onOneWay   OneWayHandler

	nextTag uint32 // advances by 2; parity fixed at construction
	parity  uint32

	pending []*wire.Frame // frames read but not yet claimed by a Wait

	incoming chan frameOrErr
	closed   int32
}

type frameOrErr struct {
	frame *wire.Frame
	err   error
}

// New creates a Context and starts its background reader goroutine.
// parity selects this side's tag parity (0 or 1); the peer must use the
// other value so neither side ever allocates a tag the other could also
// produce.
func New(name string, role Role, r *wire.Reader, w *wire.Writer, closer io.Closer, parity uint32, onCallback Handler, onOneWay OneWayHandler) *Context {
	c := &Context{
		name:       name,
		role:       role,
		reader:     r,
		writer:     w,
		closer:     closer,
		onCallback: onCallback,
		onOneWay:   onOneWay,
		parity:     parity & 1,
		incoming:   make(chan frameOrErr, 16),
	}
	c.nextTag = c.parity
	if c.nextTag == 0 {
		// Tag 0 is reserved for unsolicited frames; the first
		// allocated request tag is this side's parity plus 2.
		c.nextTag = 2
	}
	go c.readLoop()
	return c
}

func (c *Context) readLoop() {
	for {
		f, err := c.reader.ReadFrame()
		c.incoming <- frameOrErr{frame: f, err: err}
		if err != nil {
			return
		}
	}
}

// Close tears down the context. Safe to call more than once.
func (c *Context) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

func (c *Context) isClosed() bool {
	return atomic.LoadInt32(&c.closed) != 0
}

// allocTag returns the next tag for this context, advancing by 2 (spec.md
// §3 "Tag discipline").
func (c *Context) allocTag() wire.Tag {
	t := c.nextTag
	c.nextTag += 2
	return wire.Tag(t)
}

// SendRequest writes f with a freshly allocated tag and returns it. The
// caller must follow with Wait(tag) unless the request is fire-and-forget
// (SET_PARAMETER; spec.md §3 invariant 1).
func (c *Context) SendRequest(f *wire.Frame) (wire.Tag, error) {
	if c.isClosed() {
		return 0, ErrClosed
	}
	tag := c.allocTag()
	f.Tag = tag
	if err := c.writer.WriteFrame(f); err != nil {
		return tag, fmt.Errorf("channel %s: send: %w", c.name, err)
	}
	return tag, nil
}

// SendFireAndForget writes f with a freshly allocated tag but does not
// wait for (and the peer does not send) a response. Used only for
// SET_PARAMETER (spec.md §3 invariant 1, §9 Open Question: the tag is
// still allocated from the normal counter so the tag space stays
// consistent, it simply has no matching response).
func (c *Context) SendFireAndForget(f *wire.Frame) error {
	_, err := c.SendRequest(f)
	return err
}

// Wait blocks until a frame tagged with tag arrives, serving any
// peer-initiated callbacks and one-way frames inline along the way
// (spec.md §4.2, invariant 2 in §3). The context mutex is modeled as
// single-goroutine ownership: Wait must only be called from the
// goroutine that owns this Context.
func (c *Context) Wait(tag wire.Tag) (*wire.Frame, error) {
	for i, f := range c.pending {
		if f.Tag == tag {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return f, nil
		}
	}

	for {
		item, ok := <-c.incoming
		if !ok {
			return nil, ErrClosed
		}
		if item.err != nil {
			return nil, fmt.Errorf("channel %s: %w", c.name, translateReadErr(item.err))
		}
		f := item.frame

		if f.Tag == tag {
			return f, nil
		}

		if f.Tag == 0 {
			if c.onOneWay != nil {
				c.onOneWay(f)
			}
			continue
		}

		if f.Cmd.IsCallback(c.role == RoleShim) {
			if err := c.dispatchInline(f); err != nil {
				return nil, err
			}
			continue
		}

		// Belongs to our side but not the tag we're waiting on
		// (another in-flight request on this same context, or a
		// continuation frame of a chunked transfer); park it.
		c.pending = append(c.pending, f)
	}
}

// ServeOne reads and dispatches a single incoming frame as a call,
// blocking until one arrives. Used by the endpoint's idle loop when no
// outbound request is pending on this context.
func (c *Context) ServeOne() error {
	for i, f := range c.pending {
		if f.Cmd.IsCallback(c.role == RoleShim) {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return c.dispatchInline(f)
		}
	}

	item, ok := <-c.incoming
	if !ok {
		return ErrClosed
	}
	if item.err != nil {
		return fmt.Errorf("channel %s: %w", c.name, translateReadErr(item.err))
	}
	f := item.frame
	if f.Tag == 0 {
		if c.onOneWay != nil {
			c.onOneWay(f)
		}
		return nil
	}
	if f.Cmd.IsCallback(c.role == RoleShim) {
		return c.dispatchInline(f)
	}
	// A response arrived while nothing was waiting for it (protocol
	// violation by the peer, or a stale continuation); park it so a
	// future Wait can still find it instead of losing the frame.
	c.pending = append(c.pending, f)
	return nil
}

func (c *Context) dispatchInline(req *wire.Frame) error {
	if c.onCallback == nil {
		return fmt.Errorf("channel %s: no handler registered for callback %s", c.name, req.Cmd)
	}
	resp, err := c.onCallback(req)
	if err != nil {
		return fmt.Errorf("channel %s: callback %s: %w", c.name, req.Cmd, err)
	}
	if resp == nil {
		return nil
	}
	resp.Tag = req.Tag
	if werr := c.writer.WriteFrame(resp); werr != nil {
		return fmt.Errorf("channel %s: callback response: %w", c.name, werr)
	}
	return nil
}

// translateReadErr normalizes a read failure (including io.EOF, meaning
// the peer closed the channel) into ErrClosed's error chain while keeping
// the underlying cause visible via errors.Is/errors.Unwrap.
func translateReadErr(err error) error {
	if err == io.EOF {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return err
}

// SendContinuation writes f carrying an already-allocated tag without
// allocating a new one, for the later frames of a chunked transfer that
// must all share the originating request's tag (spec.md §4.4 "Chunked
// transfer": "a single logical message spans multiple frames ... sharing
// the originating tag").
func (c *Context) SendContinuation(tag wire.Tag, f *wire.Frame) error {
	if c.isClosed() {
		return ErrClosed
	}
	f.Tag = tag
	if err := c.writer.WriteFrame(f); err != nil {
		return fmt.Errorf("channel %s: send continuation: %w", c.name, err)
	}
	return nil
}

// SendOneWay writes f with Tag forced to 0: an unsolicited frame with no
// expected response (spec.md §3 "tag 0 reserved for unsolicited frames" —
// the handshake and the PLUGIN_DATA push are the only members of this
// set).
func (c *Context) SendOneWay(f *wire.Frame) error {
	if c.isClosed() {
		return ErrClosed
	}
	f.Tag = 0
	if err := c.writer.WriteFrame(f); err != nil {
		return fmt.Errorf("channel %s: send one-way: %w", c.name, err)
	}
	return nil
}

// SetLimits updates the negotiated frame-size limits for both directions
// of this context.
func (c *Context) SetLimits(l wire.Limits) {
	c.reader.SetLimits(l)
	c.writer.SetLimits(l)
}
