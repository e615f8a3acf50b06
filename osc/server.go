package osc

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Server states. A server moves Idle -> Running -> Stopping -> Closed and is
// not restartable.
const (
	serverIdle int32 = iota
	serverRunning
	serverStopping
	serverClosed
)

// Server represents an OSC server. The server listens on Addr for incoming
// OSC packets and bundles and routes them through its Dispatcher. Handlers
// run synchronously on the receive goroutine: a slow handler delays the
// packets behind it.
type Server struct {
	Addr        string
	Dispatcher  *Dispatcher
	ReadTimeout time.Duration

	// Logger receives dropped-packet reports and transport faults. Defaults
	// to a no-op logger.
	Logger *zap.Logger

	mu     sync.Mutex
	state  int32
	conn   net.PacketConn
	sender *Sender
	log    *zap.Logger
}

// ListenAndServe listens on addr and dispatches incoming OSC packets through
// d. A nil d drops every message.
func ListenAndServe(addr string, d *Dispatcher) error {
	s := &Server{Addr: addr, Dispatcher: d}
	return s.ListenAndServe()
}

// ListenAndServe retrieves incoming OSC packets and dispatches them. It
// blocks until Close is called.
func (s *Server) ListenAndServe() error {
	ln, err := net.ListenPacket("udp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Handle registers a Method function for the given OSC address, creating the
// Dispatcher if needed. It must not be called concurrently with Serve's
// startup.
func (s *Server) Handle(addr string, method MethodFunc) (*Registration, error) {
	if s.Dispatcher == nil {
		s.Dispatcher = NewDispatcher()
	}
	return s.Dispatcher.AddMethodFunc(addr, method)
}

// Serve retrieves incoming OSC packets from the given connection and
// dispatches them. It owns c and closes it on return. Serve returns nil
// after Close; a socket failure without a stop request returns an error
// wrapping ErrTransportFault.
//
// A packet that fails to decode is logged and dropped; malformed input from
// one sender must not take down listening for the others.
func (s *Server) Serve(c net.PacketConn) error {
	s.mu.Lock()
	if s.state != serverIdle {
		s.mu.Unlock()
		return errors.New("osc: server already served")
	}
	if s.Dispatcher == nil {
		s.Dispatcher = NewDispatcher()
	}
	s.log = s.Logger
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.conn = c
	s.sender = NewSender(WithLogger(s.log))
	s.sender.Start()
	atomic.StoreInt32(&s.state, serverRunning)
	s.mu.Unlock()

	defer func() {
		s.sender.Stop()
		c.Close()
		atomic.StoreInt32(&s.state, serverClosed)
	}()

	buf := bPool.Get().(*[]byte)
	defer bPool.Put(buf)

	var tempDelay time.Duration
	for {
		if s.ReadTimeout != 0 {
			if err := c.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
				return err
			}
		}

		n, addr, err := c.ReadFrom(*buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				time.Sleep(tempDelay)
				continue
			}
			if atomic.LoadInt32(&s.state) == serverStopping {
				return nil
			}
			s.log.Error("osc: receive failed", zap.Error(err))
			return fmt.Errorf("Serve: %v: %w", err, ErrTransportFault)
		}
		tempDelay = 0

		if n == 0 {
			continue
		}

		data := make([]byte, n)
		copy(data, (*buf)[:n])

		p, err := parsePacket(data)
		if err != nil {
			s.log.Warn("osc: dropping undecodable packet",
				zap.Stringer("from", addr),
				zap.Int("bytes", n),
				zap.Error(err))
			continue
		}

		s.dispatch(p, addr)
	}
}

// dispatch delivers one packet. A panicking handler is contained so it
// cannot take down the receive loop.
func (s *Server) dispatch(p Packet, a net.Addr) {
	defer func() {
		if err := recover(); err != nil {
			s.log.Error("osc: panic in handler",
				zap.Stringer("from", a),
				zap.Any("panic", err),
				zap.Stack("stack"))
		}
	}()
	s.Dispatcher.Dispatch(p, a)
}

// Close stops the server. The pending read is unblocked by closing the
// socket; Serve then returns nil and releases its resources.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if atomic.LoadInt32(&s.state) != serverRunning {
		return ErrTransportClosed
	}
	atomic.StoreInt32(&s.state, serverStopping)
	return s.conn.Close()
}

// Send enqueues packet for transmission from the server's socket to addr,
// typically the Sender address of a received message. It is valid only while
// the server is running.
func (s *Server) Send(to net.Addr, packet Packet) error {
	s.mu.Lock()
	if atomic.LoadInt32(&s.state) != serverRunning {
		s.mu.Unlock()
		return ErrTransportClosed
	}
	peer := &Peer{addr: to, pc: s.conn}
	sender := s.sender
	s.mu.Unlock()

	return sender.Send(peer, packet)
}

// Peer returns a server-role Peer that sends from the server's socket to
// addr. It is valid only while the server is running.
func (s *Server) Peer(addr net.Addr) *Peer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Peer{addr: addr, pc: s.conn}
}

// ReceivePacketFromConn reads a single packet from c, honoring ReadTimeout.
// It does not require the serve loop to be running and does not dispatch.
func (s *Server) ReceivePacketFromConn(c net.PacketConn) (Packet, net.Addr, error) {
	if s.ReadTimeout != 0 {
		if err := c.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
			return nil, nil, err
		}
	}

	buf := bPool.Get().(*[]byte)
	defer bPool.Put(buf)

	n, a, err := c.ReadFrom(*buf)
	if err != nil {
		return nil, a, err
	}

	data := make([]byte, n)
	copy(data, (*buf)[:n])

	p, err := parsePacket(data)
	return p, a, err
}
