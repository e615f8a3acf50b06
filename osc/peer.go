package osc

import (
	"net"
)

// Peer is an addressed transport endpoint, used as the destination of queued
// sends. A client-role Peer owns a connected UDP socket and writes to it
// directly; a server-role Peer borrows the server's packet socket and
// addresses each datagram explicitly. A Peer belongs to the transport that
// created it and must not be shared across transports.
type Peer struct {
	addr net.Addr

	// Exactly one of the two is set, selecting the send primitive.
	conn *net.UDPConn   // connected socket, client role
	pc   net.PacketConn // shared server socket, server role
}

// NewPeer resolves target as host:port and returns a client-role Peer with
// its own connected socket.
func NewPeer(target string) (*Peer, error) {
	raddr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}

	return &Peer{addr: raddr, conn: conn}, nil
}

// Addr returns the peer's target address.
func (p *Peer) Addr() net.Addr {
	return p.addr
}

// SetAddr retargets a server-role peer, typically to the Sender address of a
// message that just arrived. Client-role peers have a connected socket and
// cannot be retargeted.
func (p *Peer) SetAddr(addr net.Addr) {
	if p.conn == nil {
		p.addr = addr
	}
}

// send transmits one encoded packet using the role-appropriate primitive.
func (p *Peer) send(b []byte) error {
	if p.conn != nil {
		_, err := p.conn.Write(b)
		return err
	}
	_, err := p.pc.WriteTo(b, p.addr)
	return err
}

// Close releases the peer's own socket, if it has one. Server-role peers
// share the server's socket and leave it open.
func (p *Peer) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
