package osc

import (
	"encoding/binary"
	"time"
)

const secondsFrom1900To1970 = 2208988800

// TimetagImmediate is the reserved time tag meaning "immediately": 63 zero
// bits followed by a one in the least significant bit. It is never produced
// by the time or millisecond conversions.
const TimetagImmediate = Timetag(1)

// Timetag represents an OSC Time Tag.
// An OSC Time Tag is defined as follows:
// Time tags are represented by a 64 bit fixed point number. The first 32 bits
// specify the number of seconds since midnight on January 1, 1900, and the
// last 32 bits specify fractional parts of a second to a precision of about
// 200 picoseconds. This is the representation used by Internet NTP timestamps.
type Timetag uint64

// NewTimetag returns a time tag for the current time.
func NewTimetag() Timetag {
	return NewTimetagFromTime(time.Now())
}

// NewImmediateTimetag returns the reserved "immediately" time tag.
func NewImmediateTimetag() Timetag {
	return TimetagImmediate
}

// NewTimetagFromTime returns a new OSC time tag from a time.Time.
func NewTimetagFromTime(t time.Time) Timetag {
	secs := uint64(secondsFrom1900To1970 + t.Unix())
	frac := (uint64(t.Nanosecond()) << 32) / 1000000000
	return Timetag(secs<<32 | frac)
}

// NewTimetagFromMillis returns a new OSC time tag from milliseconds since the
// Unix epoch. The conversion is exact to one millisecond in both directions.
func NewTimetagFromMillis(ms int64) Timetag {
	secs := uint64(ms/1000 + secondsFrom1900To1970)
	frac := (uint64(ms%1000) << 32) / 1000
	return Timetag(secs<<32 | frac)
}

// IsImmediate reports whether the time tag is the reserved "immediately"
// value.
func (t Timetag) IsImmediate() bool {
	return t == TimetagImmediate
}

// Time returns the time. The fractional part is rounded to the nearest
// nanosecond; truncating here would undo the truncation of the encode and
// lose one unit on every round trip.
func (t Timetag) Time() time.Time {
	secs := int64(t>>32) - secondsFrom1900To1970
	nanos := (uint64(uint32(t))*1000000000 + 1<<31) >> 32
	return time.Unix(secs, int64(nanos))
}

// Millis returns the time tag as milliseconds since the Unix epoch, rounded
// to the nearest millisecond.
func (t Timetag) Millis() int64 {
	secs := int64(t>>32) - secondsFrom1900To1970
	ms := (uint64(uint32(t))*1000 + 1<<31) >> 32
	return secs*1000 + int64(ms)
}

// FractionalSecond returns the last 32 bits of the OSC time tag. Specifies
// the fractional part of a second.
func (t Timetag) FractionalSecond() uint32 {
	return uint32(t)
}

// SecondsSinceEpoch returns the first 32 bits (the number of seconds since
// midnight 1900) from the OSC time tag.
func (t Timetag) SecondsSinceEpoch() uint32 {
	return uint32(t >> 32)
}

// TimeTag returns the raw time tag value.
func (t Timetag) TimeTag() uint64 {
	return uint64(t)
}

// MarshalBinary converts the OSC time tag to a byte array.
func (t Timetag) MarshalBinary() (b []byte, err error) {
	b = make([]byte, bit64Size)
	binary.BigEndian.PutUint64(b, uint64(t))
	return
}

// SetTime sets the value of the OSC time tag.
func (t *Timetag) SetTime(time time.Time) {
	*t = NewTimetagFromTime(time)
}

// ExpiresIn calculates the duration until the current time is the same as
// the value of the time tag. It returns zero for immediate tags and tags in
// the past. Delivery is not delayed by the transport; a scheduler built on
// top can use this to implement execute-at-time semantics.
func (t Timetag) ExpiresIn() time.Duration {
	if t <= TimetagImmediate {
		return 0
	}

	d := time.Until(t.Time())
	if d <= 0 {
		return 0
	}

	return d
}
