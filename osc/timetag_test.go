package osc

import (
	"reflect"
	"testing"
	"time"
)

func TestTimetagImmediate(t *testing.T) {
	tag := NewImmediateTimetag()
	if !tag.IsImmediate() {
		t.Errorf("NewImmediateTimetag().IsImmediate() = false")
	}

	got, err := tag.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	want := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MarshalBinary() got = %v, want %v", got, want)
	}
}

func TestTimetagFromTimeNeverImmediate(t *testing.T) {
	if NewTimetagFromTime(time.Unix(0, 0)).IsImmediate() {
		t.Errorf("NewTimetagFromTime(epoch) collides with the immediate tag")
	}
	if NewTimetagFromMillis(0).IsImmediate() {
		t.Errorf("NewTimetagFromMillis(0) collides with the immediate tag")
	}
	if NewTimetag().IsImmediate() {
		t.Errorf("NewTimetag() collides with the immediate tag")
	}
}

func TestTimetagMillisRoundTrip(t *testing.T) {
	// Most values are not multiples of 125 ms, so their fractional part has
	// no exact 32-bit representation; the round trip must still be exact.
	for _, ms := range []int64{0, 1, 2, 123, 457, 999, 1000, 1001, 1699999999999, 1700000000123, 1893456000999} {
		if got := NewTimetagFromMillis(ms).Millis(); got != ms {
			t.Errorf("NewTimetagFromMillis(%d).Millis() = %d", ms, got)
		}
	}
}

func TestTimetagMillisTimeAgree(t *testing.T) {
	for _, ms := range []int64{1, 333, 999, 1700000000123} {
		tag := NewTimetagFromMillis(ms)
		if got := tag.Time().UnixMilli(); got != tag.Millis() {
			t.Errorf("NewTimetagFromMillis(%d): Time().UnixMilli() = %d, Millis() = %d", ms, got, tag.Millis())
		}
	}
}

func TestTimetagTimeRoundTrip(t *testing.T) {
	in := time.Date(2024, time.March, 7, 12, 30, 45, 123456789, time.UTC)
	out := NewTimetagFromTime(in).Time()

	diff := out.Sub(in)
	if diff < 0 {
		diff = -diff
	}
	if diff > time.Millisecond {
		t.Errorf("Time() = %v, want %v within 1ms", out, in)
	}
}

func TestTimetagFields(t *testing.T) {
	tag := Timetag(0x0102030405060708)
	if got := tag.SecondsSinceEpoch(); got != 0x01020304 {
		t.Errorf("SecondsSinceEpoch() = %#x, want 0x01020304", got)
	}
	if got := tag.FractionalSecond(); got != 0x05060708 {
		t.Errorf("FractionalSecond() = %#x, want 0x05060708", got)
	}
	if got := tag.TimeTag(); got != 0x0102030405060708 {
		t.Errorf("TimeTag() = %#x, want 0x0102030405060708", got)
	}
}

func TestTimetagSetTime(t *testing.T) {
	var tag Timetag
	in := time.Unix(1700000000, 0)
	tag.SetTime(in)
	if got := tag.Time().Unix(); got != in.Unix() {
		t.Errorf("SetTime() then Time().Unix() = %d, want %d", got, in.Unix())
	}
}

func TestTimetagExpiresIn(t *testing.T) {
	tests := []struct {
		name string
		tag  Timetag
		want time.Duration
	}{
		{"zero", Timetag(0), 0},
		{"immediate", TimetagImmediate, 0},
		{"past", NewTimetagFromTime(time.Now().Add(-time.Minute)), 0},
		{"future", NewTimetagFromTime(time.Now().Add(time.Minute)), time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.tag.ExpiresIn()
			if tt.want == 0 {
				if got != 0 {
					t.Errorf("ExpiresIn() = %v, want 0", got)
				}
				return
			}
			if got <= tt.want-time.Second || got > tt.want {
				t.Errorf("ExpiresIn() = %v, want roughly %v", got, tt.want)
			}
		})
	}
}
