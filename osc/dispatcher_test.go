package osc

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMethodInvalidAddress(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"empty", ""},
		{"no_leading_slash", "address"},
		{"wildcard", "/address/*"},
		{"question_mark", "/a?"},
		{"comma", "/a,b"},
		{"brackets", "/a[0-9]"},
		{"braces", "/a{b,c}"},
		{"hash", "/a#b"},
		{"space", "/a b"},
	}

	d := NewDispatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := d.AddMethod(tt.addr, MethodFunc(func(msg *Message) {}))
			assert.Error(t, err)
			assert.Nil(t, r)
		})
	}
}

func TestDispatchFanOutOrder(t *testing.T) {
	d := NewDispatcher()

	var got []int
	for i := 0; i < 3; i++ {
		i := i
		_, err := d.AddMethodFunc("/order", func(msg *Message) {
			got = append(got, i)
		})
		require.NoError(t, err)
	}

	d.Dispatch(NewMessage("/order"), nil)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestDispatchNoMatch(t *testing.T) {
	d := NewDispatcher()
	_, err := d.AddMethodFunc("/known", func(msg *Message) {
		t.Errorf("method for %q invoked for a different address", "/known")
	})
	require.NoError(t, err)

	// An unmatched message is dropped, not an error.
	d.Dispatch(NewMessage("/unknown"), nil)
	d.Dispatch(NewMessage("/known/deeper"), nil)
}

func TestDispatchZeroValueDispatcher(t *testing.T) {
	var d Dispatcher

	called := false
	_, err := d.AddMethodFunc("/zv", func(msg *Message) { called = true })
	require.NoError(t, err)

	d.Dispatch(NewMessage("/zv"), nil)
	assert.True(t, called)
}

func TestDispatchSetsSender(t *testing.T) {
	d := NewDispatcher()
	from := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000}

	var got net.Addr
	_, err := d.AddMethodFunc("/who", func(msg *Message) { got = msg.Sender })
	require.NoError(t, err)

	d.Dispatch(NewMessage("/who"), from)
	assert.Equal(t, net.Addr(from), got)
}

// Bundles flatten breadth-first: the messages of each level are delivered
// before any nested bundle's contents, regardless of declaration order.
func TestDispatchBundleOrder(t *testing.T) {
	d := NewDispatcher()

	var got []string
	record := func(msg *Message) { got = append(got, msg.Address) }
	for _, addr := range []string{"/a", "/b", "/c", "/d"} {
		_, err := d.AddMethodFunc(addr, record)
		require.NoError(t, err)
	}

	inner := NewBundle(NewMessage("/c"), NewBundle(NewMessage("/d")))
	outer := NewBundle(NewBundle(NewMessage("/a")), NewMessage("/b"), inner)

	d.Dispatch(outer, nil)
	assert.Equal(t, []string{"/b", "/a", "/c", "/d"}, got)
}

func TestRegistrationRemove(t *testing.T) {
	d := NewDispatcher()

	var calls int
	r, err := d.AddMethodFunc("/once", func(msg *Message) { calls++ })
	require.NoError(t, err)
	assert.Equal(t, "/once", r.Addr())

	d.Dispatch(NewMessage("/once"), nil)
	r.Remove()
	d.Dispatch(NewMessage("/once"), nil)
	assert.Equal(t, 1, calls)

	// Idempotent.
	r.Remove()
}

func TestRegistrationRemoveDuringDispatch(t *testing.T) {
	d := NewDispatcher()

	var got []string
	var first *Registration
	first, _ = d.AddMethodFunc("/self", func(msg *Message) {
		got = append(got, "first")
		first.Remove()
	})
	_, err := d.AddMethodFunc("/self", func(msg *Message) {
		got = append(got, "second")
	})
	require.NoError(t, err)

	// The in-flight pass completes over its snapshot.
	d.Dispatch(NewMessage("/self"), nil)
	assert.Equal(t, []string{"first", "second"}, got)

	// The next pass observes the removal.
	d.Dispatch(NewMessage("/self"), nil)
	assert.Equal(t, []string{"first", "second", "second"}, got)
}

func TestRegistrationRemoveSharedAddress(t *testing.T) {
	d := NewDispatcher()

	var aCalls, bCalls int
	ra, _ := d.AddMethodFunc("/shared", func(msg *Message) { aCalls++ })
	_, err := d.AddMethodFunc("/shared", func(msg *Message) { bCalls++ })
	require.NoError(t, err)

	ra.Remove()
	d.Dispatch(NewMessage("/shared"), nil)
	assert.Equal(t, 0, aCalls)
	assert.Equal(t, 1, bCalls)
}
