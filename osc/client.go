package osc

import (
	"net"
)

// Client sends OSC Packets to a single server over UDP. Packets are queued
// and transmitted in order by a background Sender; Send returns once the
// packet is enqueued, not once it is on the wire.
type Client struct {
	peer   *Peer
	sender *Sender
}

// Dial creates a new OSC Client connected to the specified server and starts
// its send loop.
func Dial(addr string, opts ...Option) (*Client, error) {
	o := senderOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialUDP("udp", o.laddr, raddr)
	if err != nil {
		return nil, err
	}

	c := &Client{
		peer:   &Peer{addr: raddr, conn: conn},
		sender: NewSender(opts...),
	}
	c.sender.Start()
	return c, nil
}

// Peer returns the client's endpoint.
func (c *Client) Peer() *Peer {
	return c.peer
}

// Send enqueues an OSC Packet for transmission to the server, blocking while
// the queue is full. It fails with ErrSenderClosed once the sender has
// terminated; Err reports why.
func (c *Client) Send(packet Packet) error {
	return c.sender.Send(c.peer, packet)
}

// TrySend is the non-blocking variant of Send. It fails with ErrQueueFull
// when the queue is at capacity.
func (c *Client) TrySend(packet Packet) error {
	return c.sender.TrySend(c.peer, packet)
}

// Err returns the error that terminated the client's sender, if any.
func (c *Client) Err() error {
	return c.sender.Err()
}

// Close flushes queued packets, stops the sender, and closes the connection
// to the server.
func (c *Client) Close() error {
	c.sender.Stop()
	return c.peer.Close()
}
