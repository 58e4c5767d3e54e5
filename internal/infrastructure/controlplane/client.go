package controlplane

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/streamfabric/corert/internal/core/service"
	"github.com/streamfabric/corert/internal/infrastructure/metrics"
	"github.com/streamfabric/corert/pkg/serialization"
)

// InstanceErrorHandler receives InstanceError events addressed to a
// specific partition instance. Interpreting the payload is opaque to
// the core (spec.md §4.8).
type InstanceErrorHandler func(ev *Event)

// Options configures a Client at construction time.
type Options struct {
	// Stream is the bidi event stream to drive. If nil, Start dials
	// Address via DialArchitect and owns the resulting connection
	// (the "owns progress engine" construction mode of spec.md §4.8).
	Stream Stream
	// Address is used to dial when Stream is nil.
	Address string
	// Serializer encodes/decodes AnyPayload bodies. Defaults to
	// serialization.DefaultSerializer().
	Serializer *serialization.Serializer
	// WorkerInfo is the payload sent with the initial
	// ClientRegisterWorkers request.
	WorkerInfo interface{}
	// OnInstanceError handles InstanceError events. Optional.
	OnInstanceError InstanceErrorHandler
	// RegisterTimeout bounds the initial registration handshake.
	RegisterTimeout time.Duration
	Log             zerolog.Logger
}

type pendingUnary struct {
	resultCh chan unaryResult
	timer    *time.Timer
}

type unaryResult struct {
	payload AnyPayload
	err     error
}

// Client is the control-plane client of spec.md §4.8: a single
// long-lived bidi event stream to the architect, unary request/response
// correlation by tag, a state-update behaviour subject, and a named
// subscription-service registry. It embeds service.Lifecycle so it
// composes into the runtime via service.Composite like any other
// long-lived component.
type Client struct {
	*service.Lifecycle

	opts   Options
	ser    *serialization.Serializer
	stream Stream
	closer func() error
	log    zerolog.Logger

	stateMu   sync.RWMutex
	state     ClientState
	operReady chan struct{}

	tagSeq  atomic.Uint64
	pendMu  sync.Mutex
	pending map[uint64]*pendingUnary

	writeCh chan *Event
	done    chan struct{}

	subs    *subscriptionRegistry
	subject *stateSubject

	closeOnce sync.Once
}

// New constructs a Client in the Disconnected state. Call Start to
// dial (or adopt the supplied Stream), perform the registration
// handshake, and drive the client toward Operational.
func New(opts Options) *Client {
	ser := opts.Serializer
	if ser == nil {
		ser = serialization.DefaultSerializer()
	}
	if opts.RegisterTimeout <= 0 {
		opts.RegisterTimeout = 10 * time.Second
	}

	c := &Client{
		opts:      opts,
		ser:       ser,
		stream:    opts.Stream,
		log:       opts.Log,
		state:     Disconnected,
		operReady: make(chan struct{}),
		pending:   make(map[uint64]*pendingUnary),
		writeCh:   make(chan *Event, 64),
		done:      make(chan struct{}),
		subs:      newSubscriptionRegistry(),
		subject:   newStateSubject(),
	}
	c.Lifecycle = service.NewLifecycle(service.Hooks{
		OnStart: c.onStart,
		OnStop:  c.onStop,
		OnKill:  c.onKill,
	})
	return c
}

// State returns the client's current ClientState (distinct from the
// embedded service.Lifecycle's generic State).
func (c *Client) State() ClientState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

func (c *Client) setState(s ClientState) {
	c.stateMu.Lock()
	prev := c.state
	c.state = s
	if s == Operational {
		select {
		case <-c.operReady:
		default:
			close(c.operReady)
		}
	}
	c.stateMu.Unlock()
	if prev != s {
		c.log.Info().Stringer("from", prev).Stringer("to", s).Msg("controlplane: state transition")
		metrics.SetControlPlaneState(s.String())
	}
}

func (c *Client) onStart(ctx context.Context) error {
	if c.stream == nil {
		stream, closer, err := DialArchitect(ctx, c.opts.Address)
		if err != nil {
			c.setState(FailedToConnect)
			return err
		}
		c.stream = stream
		c.closer = closer
	}
	c.setState(Connected)

	go c.writeLoop()
	go c.readLoop()

	c.setState(RegisteringWorkers)
	regCtx, cancel := context.WithTimeout(ctx, c.opts.RegisterTimeout)
	defer cancel()
	if _, err := AwaitUnary[struct{}](regCtx, c, ClientRegisterWorkers, c.opts.WorkerInfo); err != nil {
		c.setState(FailedToConnect)
		return fmt.Errorf("controlplane: register workers: %w", err)
	}
	c.setState(Operational)
	return nil
}

func (c *Client) onStop(ctx context.Context) error {
	_ = c.stream.CloseSend()
	c.closeOnce.Do(func() { close(c.done) })
	if c.closer != nil {
		return c.closer()
	}
	return nil
}

func (c *Client) onKill() {
	c.failAllPending(ErrTransport)
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) writeLoop() {
	for {
		select {
		case ev := <-c.writeCh:
			if err := c.stream.Send(ev); err != nil {
				c.onTransportError(err)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) readLoop() {
	for {
		ev, err := c.stream.Recv()
		if err != nil {
			c.onTransportError(err)
			return
		}
		c.handleIncoming(ev)
	}
}

func (c *Client) onTransportError(err error) {
	c.setState(FailedToConnect)
	c.log.Warn().Err(err).Msg("controlplane: transport failure")
	c.failAllPending(errors.Join(ErrTransport, err))
	c.Kill()
}

func (c *Client) failAllPending(err error) {
	c.pendMu.Lock()
	pending := c.pending
	c.pending = make(map[uint64]*pendingUnary)
	c.pendMu.Unlock()
	for _, p := range pending {
		if p.timer != nil {
			p.timer.Stop()
		}
		metrics.IncControlPlaneUnaryFailed()
		p.resultCh <- unaryResult{err: err}
	}
}

// handleIncoming classifies one event (spec.md §4.8 "Incoming event
// handler"): fulfill a matching pending unary promise, or dispatch by
// EventType.
func (c *Client) handleIncoming(ev *Event) {
	if ev.Tag != 0 {
		c.pendMu.Lock()
		p, ok := c.pending[ev.Tag]
		if ok {
			delete(c.pending, ev.Tag)
		}
		c.pendMu.Unlock()
		if ok {
			if p.timer != nil {
				p.timer.Stop()
			}
			if ev.Error != nil {
				p.resultCh <- unaryResult{err: fmt.Errorf("%w: %s", ErrRemote, ev.Error.Message)}
			} else {
				p.resultCh <- unaryResult{payload: ev.Message}
			}
			return
		}
		c.log.Warn().Uint64("tag", ev.Tag).Msg("controlplane: late response to retired tag discarded")
		return
	}

	switch ev.EventType {
	case ServerStateUpdate:
		var state ControlPlaneState
		if err := ev.Message.Decode(c.ser, &state); err != nil {
			c.log.Warn().Err(err).Msg("controlplane: failed to decode state update")
			return
		}
		count := c.subject.Publish(state)
		metrics.IncControlPlaneStateUpdates()
		for name, members := range state.SubscriptionMembers {
			if svc, ok := c.subs.lookup(name); ok {
				svc.setMembers(members)
			}
		}
		c.log.Info().Uint64("state_update_count", count).Msg("controlplane: state update published")
	case InstanceError:
		if c.opts.OnInstanceError != nil {
			c.opts.OnInstanceError(ev)
		}
	case ServerError:
		msg := ""
		if ev.Error != nil {
			msg = ev.Error.Message
		}
		c.log.Error().Str("message", msg).Msg("controlplane: server error, terminating")
		c.setState(FailedToConnect)
		c.failAllPending(fmt.Errorf("%w: %s", ErrRemote, msg))
		c.Kill()
	default:
		c.log.Warn().Stringer("event_type", ev.EventType).Msg("controlplane: unhandled event type")
	}
}

// IssueEvent enqueues a fire-and-forget event; no response is expected
// (spec.md §4.8).
func (c *Client) IssueEvent(eventType EventType, msg interface{}) error {
	payload, err := c.encode(msg)
	if err != nil {
		return err
	}
	return c.send(&Event{EventType: eventType, Message: payload})
}

func (c *Client) encode(msg interface{}) (AnyPayload, error) {
	if msg == nil {
		return AnyPayload{}, nil
	}
	return EncodePayload(c.ser, fmt.Sprintf("%T", msg), msg)
}

func (c *Client) send(ev *Event) error {
	select {
	case c.writeCh <- ev:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

func (c *Client) nextTag() uint64 {
	// Tag 0 means "no correlation" (spec.md §9's replacement note: a
	// monotonic counter, never a pointer value), so the sequence starts
	// at 1.
	return c.tagSeq.Add(1)
}

// AsyncStatus is the handle returned by AsyncUnary; AwaitResponse
// blocks for the matching incoming event regardless of the relative
// arrival order of other tagged events (Invariant I5).
type AsyncStatus[Resp any] struct {
	ch  chan unaryResult
	ser *serialization.Serializer
}

// AwaitResponse blocks until the response arrives, ctx is done, or the
// request times out / the transport fails.
func (a *AsyncStatus[Resp]) AwaitResponse(ctx context.Context) (Resp, error) {
	var zero Resp
	select {
	case res := <-a.ch:
		if res.err != nil {
			return zero, res.err
		}
		var resp Resp
		if res.payload.Value == nil {
			return resp, nil
		}
		if err := res.payload.Decode(a.ser, &resp); err != nil {
			return zero, err
		}
		return resp, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// AsyncUnary allocates a promise, places its tag on the outgoing event,
// and returns a handle whose AwaitResponse blocks for the matching
// response (spec.md §4.2 "Unary request"). It gates on Operational for
// every event type except ClientRegisterWorkers, which the client's own
// registration handshake sends before Operational is reached.
func AsyncUnary[Resp any](ctx context.Context, c *Client, eventType EventType, req interface{}) (*AsyncStatus[Resp], error) {
	if eventType != ClientRegisterWorkers {
		if err := c.waitOperational(ctx); err != nil {
			return nil, err
		}
	}

	payload, err := c.encode(req)
	if err != nil {
		return nil, err
	}

	tag := c.nextTag()
	p := &pendingUnary{resultCh: make(chan unaryResult, 1)}

	if deadline, ok := ctx.Deadline(); ok {
		d := time.Until(deadline)
		p.timer = time.AfterFunc(d, func() {
			c.pendMu.Lock()
			_, stillPending := c.pending[tag]
			delete(c.pending, tag)
			c.pendMu.Unlock()
			if stillPending {
				metrics.IncControlPlaneUnaryTimeout()
				p.resultCh <- unaryResult{err: ErrTimeout}
			}
		})
	}

	c.pendMu.Lock()
	c.pending[tag] = p
	c.pendMu.Unlock()

	if err := c.send(&Event{EventType: eventType, Tag: tag, Message: payload}); err != nil {
		c.pendMu.Lock()
		delete(c.pending, tag)
		c.pendMu.Unlock()
		return nil, err
	}
	metrics.IncControlPlaneUnarySent()

	return &AsyncStatus[Resp]{ch: p.resultCh, ser: c.ser}, nil
}

// AwaitUnary composes AsyncUnary and AwaitResponse into the synchronous
// convenience of spec.md §4.2.
func AwaitUnary[Resp any](ctx context.Context, c *Client, eventType EventType, req interface{}) (Resp, error) {
	var zero Resp
	status, err := AsyncUnary[Resp](ctx, c, eventType, req)
	if err != nil {
		return zero, err
	}
	return status.AwaitResponse(ctx)
}

// waitOperational blocks until the client reaches Operational, the
// client shuts down first (ErrNotReady), or ctx is done.
func (c *Client) waitOperational(ctx context.Context) error {
	if c.State() == Operational {
		return nil
	}
	select {
	case <-c.operReady:
		return nil
	case <-c.done:
		return ErrNotReady
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel receiving every published
// ControlPlaneState (current value first, if any) and an unsubscribe
// function.
func (c *Client) Subscribe() (<-chan ControlPlaneState, func()) {
	return c.subject.Subscribe()
}

// StateUpdateCount reports how many state updates have been published,
// used for freshness testing (Invariant I6).
func (c *Client) StateUpdateCount() uint64 {
	return c.subject.UpdateCount()
}

// GetOrCreateSubscriptionService returns the existing subscription
// service for name, or creates one and enqueues its registration event
// (spec.md §4.8).
func (c *Client) GetOrCreateSubscriptionService(name string, roles []string) (*SubscriptionService, error) {
	svc, created := c.subs.getOrCreate(name, roles)
	if created {
		if err := c.IssueEvent(ClientSubscriptionServiceRegister, subscriptionRegisterRequest{Name: name, Roles: roles}); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

type subscriptionRegisterRequest struct {
	Name  string
	Roles []string
}
