package osc

// TypeTag identifies the wire type of a single OSC argument.
type TypeTag rune

const (
	TypeInt32   TypeTag = 'i'
	TypeInt64   TypeTag = 'h'
	TypeFloat32 TypeTag = 'f'
	TypeFloat64 TypeTag = 'd'
	TypeString  TypeTag = 's'
	TypeBlob    TypeTag = 'b'
	TypeInvalid TypeTag = 0
)

// Arg is a single OSC argument carrying an explicit type tag. The codec never
// infers the tag from the dynamic type of Value; the tag travels with the
// value and the two must agree when the argument is encoded. Built with the
// constructor for the type you mean, the pair is correct by construction.
type Arg struct {
	Tag   TypeTag
	Value interface{}
}

// Int32 returns an 'i' tagged argument.
func Int32(v int32) Arg { return Arg{TypeInt32, v} }

// Int64 returns an 'h' tagged argument.
func Int64(v int64) Arg { return Arg{TypeInt64, v} }

// Float32 returns an 'f' tagged argument.
func Float32(v float32) Arg { return Arg{TypeFloat32, v} }

// Float64 returns a 'd' tagged argument.
func Float64(v float64) Arg { return Arg{TypeFloat64, v} }

// String returns an 's' tagged argument. The string may not contain null
// bytes; a null would terminate the string early on the wire.
func String(v string) Arg { return Arg{TypeString, v} }

// Blob returns a 'b' tagged argument holding raw bytes.
func Blob(v []byte) Arg { return Arg{TypeBlob, v} }
