package osc

import (
	"fmt"
	"net"
	"strings"
	"sync"
)

// Method is an interface for OSC Methods.
type Method interface {
	HandleMessage(msg *Message)
}

// MethodFunc implements the Method interface. Type definition for an OSC
// Method function.
type MethodFunc func(msg *Message)

// HandleMessage calls itself with the given OSC Message. Implements the
// Method interface.
func (f MethodFunc) HandleMessage(msg *Message) {
	f(msg)
}

// Dispatcher routes received OSC Packets to the Methods registered for their
// exact address. It is safe for concurrent use: registrations may be added
// and removed from any goroutine, including from inside a running Method.
type Dispatcher struct {
	mu      sync.RWMutex
	methods map[string][]*Registration
}

// Registration ties a Method to the address it was registered under. It is
// the handle used to deregister the method again.
type Registration struct {
	d      *Dispatcher
	addr   string
	method Method
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{methods: make(map[string][]*Registration)}
}

// AddMethod registers a new OSC Method for the given OSC address. Multiple
// methods may share one address; they are invoked in registration order. The
// address must be a literal path: pattern characters are rejected since the
// dispatcher matches exact addresses only.
func (d *Dispatcher) AddMethod(addr string, method Method) (*Registration, error) {
	if addr == "" || addr[0] != '/' {
		return nil, fmt.Errorf("AddMethod: OSC address must begin with '/': %q", addr)
	}
	if strings.ContainsAny(addr, "*?,[]{}# ") {
		return nil, fmt.Errorf("AddMethod: OSC address may not contain any characters in \"*?,[]{}# \"")
	}

	r := &Registration{d: d, addr: addr, method: method}

	d.mu.Lock()
	if d.methods == nil {
		d.methods = make(map[string][]*Registration)
	}
	d.methods[addr] = append(d.methods[addr], r)
	d.mu.Unlock()

	return r, nil
}

// AddMethodFunc allows you to just pass a MethodFunc.
func (d *Dispatcher) AddMethodFunc(addr string, method MethodFunc) (*Registration, error) {
	return d.AddMethod(addr, method)
}

// Remove deregisters the method. Removing during a dispatch pass is safe:
// the in-flight pass iterates a snapshot and completes, the next inbound
// message observes the updated table. Remove is idempotent.
func (r *Registration) Remove() {
	d := r.d

	d.mu.Lock()
	defer d.mu.Unlock()

	regs := d.methods[r.addr]
	for i, reg := range regs {
		if reg == r {
			regs = append(regs[:i], regs[i+1:]...)
			break
		}
	}
	if len(regs) == 0 {
		delete(d.methods, r.addr)
	} else {
		d.methods[r.addr] = regs
	}
}

// Addr returns the address the registration is bound to.
func (r *Registration) Addr() string {
	return r.addr
}

// Dispatch delivers packet to the registered Methods, synchronously on the
// caller's goroutine. Messages invoke every Method registered for exactly
// their address, in registration order; a message with no registered Method
// is dropped silently. Bundles are flattened in declaration order, the
// messages of each level before the contents of its nested bundles. Bundle
// time tags do not delay or reorder delivery.
func (d *Dispatcher) Dispatch(packet Packet, a net.Addr) {
	switch p := packet.(type) {
	case *Message:
		d.dispatchMessage(p, a)

	case *Bundle:
		queue := []*Bundle{p}
		for len(queue) > 0 {
			bundle := queue[0]
			queue = queue[1:]
			for _, elem := range bundle.Elements {
				switch e := elem.(type) {
				case *Message:
					d.dispatchMessage(e, a)
				case *Bundle:
					queue = append(queue, e)
				}
			}
		}
	}
}

// dispatchMessage invokes the methods registered for the message's address.
// Iteration runs over a snapshot taken under the read lock, so a method that
// mutates the table never corrupts the in-progress fan-out.
func (d *Dispatcher) dispatchMessage(msg *Message, a net.Addr) {
	msg.Sender = a

	d.mu.RLock()
	regs := d.methods[msg.Address]
	snapshot := make([]*Registration, len(regs))
	copy(snapshot, regs)
	d.mu.RUnlock()

	for _, r := range snapshot {
		r.method.HandleMessage(msg)
	}
}
