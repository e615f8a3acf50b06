package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soundctl/go-osc/osc"
)

var (
	target  string
	bundled bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "oscsend ADDRESS [TYPETAGS ARG...]",
	Short: "Send an OSC message over UDP",
	Long: `oscsend encodes a single OSC message and sends it to a server over UDP.

The first argument is the OSC address, the second the type tag string (without
the leading comma), followed by one literal per tag:

  i  int32       h  int64
  f  float32     d  float64
  s  string      b  blob (hex digits, e.g. deadbeef)

Examples:
  oscsend --to localhost:8765 /synth/freq f 440.0
  oscsend --to localhost:8765 /mixer/label is 3 "channel three"
  oscsend --to localhost:8765 --bundle /seq/start`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := buildMessage(args)
		if err != nil {
			return err
		}

		var opts []osc.Option
		if verbose {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync()
			opts = append(opts, osc.WithLogger(logger))
			logger.Info("sending", zap.String("to", target), zap.Stringer("message", msg))
		}

		client, err := osc.Dial(target, opts...)
		if err != nil {
			return fmt.Errorf("dial %s: %w", target, err)
		}

		var packet osc.Packet = msg
		if bundled {
			packet = osc.NewBundle(msg)
		}
		if err := client.Send(packet); err != nil {
			client.Close()
			return err
		}

		// Close flushes the queue before releasing the socket.
		if err := client.Close(); err != nil {
			return err
		}
		return client.Err()
	},
}

// buildMessage turns "/addr tags arg..." command line arguments into a
// Message. Each tag consumes exactly one literal.
func buildMessage(args []string) (*osc.Message, error) {
	msg := osc.NewMessage(args[0])
	if len(args) == 1 {
		return msg, nil
	}

	tags := args[1]
	literals := args[2:]
	if len(literals) != len(tags) {
		return nil, fmt.Errorf("type tags %q need %d arguments, got %d", tags, len(tags), len(literals))
	}

	for i, tag := range tags {
		arg, err := parseArg(osc.TypeTag(tag), literals[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		msg.Append(arg)
	}
	return msg, nil
}

func parseArg(tag osc.TypeTag, lit string) (osc.Arg, error) {
	switch tag {
	case osc.TypeInt32:
		v, err := strconv.ParseInt(lit, 10, 32)
		if err != nil {
			return osc.Arg{}, fmt.Errorf("%q is not an int32: %w", lit, err)
		}
		return osc.Int32(int32(v)), nil

	case osc.TypeInt64:
		v, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return osc.Arg{}, fmt.Errorf("%q is not an int64: %w", lit, err)
		}
		return osc.Int64(v), nil

	case osc.TypeFloat32:
		v, err := strconv.ParseFloat(lit, 32)
		if err != nil {
			return osc.Arg{}, fmt.Errorf("%q is not a float32: %w", lit, err)
		}
		return osc.Float32(float32(v)), nil

	case osc.TypeFloat64:
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return osc.Arg{}, fmt.Errorf("%q is not a float64: %w", lit, err)
		}
		return osc.Float64(v), nil

	case osc.TypeString:
		return osc.String(lit), nil

	case osc.TypeBlob:
		if len(lit)%2 != 0 {
			return osc.Arg{}, fmt.Errorf("blob hex %q has odd length", lit)
		}
		b := make([]byte, len(lit)/2)
		for i := range b {
			v, err := strconv.ParseUint(lit[2*i:2*i+2], 16, 8)
			if err != nil {
				return osc.Arg{}, fmt.Errorf("%q is not hex: %w", lit, err)
			}
			b[i] = byte(v)
		}
		return osc.Blob(b), nil
	}

	return osc.Arg{}, fmt.Errorf("unsupported type tag %q", tag)
}

func init() {
	rootCmd.Flags().StringVar(&target, "to", "localhost:8765", "server address as host:port")
	rootCmd.Flags().BoolVar(&bundled, "bundle", false, "wrap the message in an immediate bundle")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log transport events")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
