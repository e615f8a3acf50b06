package osc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultQueueSize = 64

// Option configures a Sender or a Client.
type Option func(*senderOptions)

type senderOptions struct {
	queueSize int
	logger    *zap.Logger
	limiter   *rate.Limiter
	laddr     *net.UDPAddr
}

// WithQueueSize sets the capacity of the send queue. The default is 64.
func WithQueueSize(n int) Option {
	return func(o *senderOptions) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithLogger sets the logger used for transport events. The default is a
// no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *senderOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRateLimit paces outgoing datagrams through the given limiter. Useful
// against control surfaces that drop input when flooded.
func WithRateLimit(l *rate.Limiter) Option {
	return func(o *senderOptions) { o.limiter = l }
}

// WithLocalAddr sets the local address a dialed client binds to. It has no
// effect on a standalone Sender.
func WithLocalAddr(laddr *net.UDPAddr) Option {
	return func(o *senderOptions) { o.laddr = laddr }
}

type sendRequest struct {
	peer   *Peer
	packet Packet
}

// Sender serializes outgoing encodes onto UDP sockets. Packets are enqueued
// together with their destination Peer; a single goroutine dequeues, encodes
// into one reused buffer, and transmits, so at most one encode-plus-send is
// in flight at a time. Producers on any goroutine serialize through the
// queue, not through the buffer.
//
// A transmit failure is fatal to the Sender: the loop logs the error, records
// it, and exits, and every later Send fails with ErrSenderClosed. Callers
// that want retry semantics build them on top.
type Sender struct {
	queue  chan sendRequest
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	logger  *zap.Logger
	limiter *rate.Limiter

	mu      sync.Mutex
	started bool
	err     error
}

// NewSender returns a Sender with a bounded queue. Start must be called
// before packets are transmitted.
func NewSender(opts ...Option) *Sender {
	o := senderOptions{queueSize: defaultQueueSize, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Sender{
		queue:   make(chan sendRequest, o.queueSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		logger:  o.logger,
		limiter: o.limiter,
	}
}

// Start launches the send loop. Calling Start more than once has no effect.
func (s *Sender) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	go s.run()
}

// Stop terminates the send loop and waits for it to exit. Packets enqueued
// before Stop are transmitted first; packets enqueued after Stop fail with
// ErrSenderClosed.
func (s *Sender) Stop() {
	s.cancel()

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.done
	}
}

// Err returns the error that terminated the send loop, or nil.
func (s *Sender) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Send enqueues packet for delivery to peer, blocking while the queue is
// full. It fails with ErrSenderClosed once the loop has terminated.
func (s *Sender) Send(peer *Peer, packet Packet) error {
	select {
	case <-s.ctx.Done():
		return ErrSenderClosed
	case s.queue <- sendRequest{peer: peer, packet: packet}:
		return nil
	}
}

// TrySend is the non-blocking variant of Send. It fails with ErrQueueFull
// when the queue is at capacity.
func (s *Sender) TrySend(peer *Peer, packet Packet) error {
	select {
	case <-s.ctx.Done():
		return ErrSenderClosed
	default:
	}

	select {
	case s.queue <- sendRequest{peer: peer, packet: packet}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *Sender) run() {
	defer close(s.done)

	buf := bPool.Get().(*[]byte)
	defer bPool.Put(buf)

	for {
		select {
		case <-s.ctx.Done():
			s.drain(*buf)
			return

		case req := <-s.queue:
			if err := s.transmit(s.ctx, req, *buf); err != nil {
				if errors.Is(err, context.Canceled) {
					s.drain(*buf)
					return
				}
				s.fail(err)
				return
			}
		}
	}
}

// drain flushes packets that were enqueued before the stop request.
func (s *Sender) drain(buf []byte) {
	for {
		select {
		case req := <-s.queue:
			if err := s.transmit(context.Background(), req, buf); err != nil {
				s.fail(err)
				return
			}
		default:
			return
		}
	}
}

// transmit encodes req into buf and hands the bytes to the peer. The buffer
// is reused for the next request as soon as the write returns.
func (s *Sender) transmit(ctx context.Context, req sendRequest, buf []byte) error {
	n, err := req.packet.marshalInto(buf)
	if err != nil {
		return fmt.Errorf("transmit: encode: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if err := req.peer.send(buf[:n]); err != nil {
		return fmt.Errorf("transmit to %v: %v: %w", req.peer.Addr(), err, ErrTransportFault)
	}

	return nil
}

// fail records the terminal error. The queue drains no further.
func (s *Sender) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	s.logger.Error("osc: sender terminated", zap.Error(err))
	s.cancel()
}
