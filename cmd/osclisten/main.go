package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/soundctl/go-osc/osc"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "osclisten",
	Short: "Listen for OSC packets over UDP",
	Long: `osclisten binds a UDP port and logs every OSC message it receives.

With --route, only the given literal addresses are dispatched and everything
else is dropped; without it, every decodable message is logged.

Settings come from flags, from environment variables with the OSCLISTEN
prefix (OSCLISTEN_LISTEN, OSCLISTEN_LOG_LEVEL, ...), or from a YAML config
file given with --config.`,
	RunE: run,
}

func run(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	logger, err := newLogger(viper.GetString("log_level"), viper.GetString("log_format"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	listen := viper.GetString("listen")
	routes := viper.GetStringSlice("route")

	s := &osc.Server{
		Addr:   listen,
		Logger: logger,
	}

	report := func(msg *osc.Message) {
		logger.Info("message",
			zap.String("address", msg.Address),
			zap.String("typetags", msg.TypeTags()),
			zap.Stringer("from", msg.Sender),
			zap.String("body", msg.String()))
	}

	if len(routes) == 0 {
		// Monitor mode: log everything, registered per packet as it arrives.
		return monitor(s, logger)
	}

	for _, route := range routes {
		if _, err := s.Handle(route, report); err != nil {
			return fmt.Errorf("route %q: %w", route, err)
		}
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		s.Close()
	}()

	logger.Info("listening", zap.String("addr", listen), zap.Strings("routes", routes))
	return s.ListenAndServe()
}

// monitor reads packets one at a time and logs every message, bundles
// included, without any registered routes.
func monitor(s *osc.Server, logger *zap.Logger) error {
	c, err := net.ListenPacket("udp", s.Addr)
	if err != nil {
		return err
	}

	var closing atomic.Bool
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutting down")
		closing.Store(true)
		c.Close()
	}()

	logger.Info("monitoring", zap.String("addr", s.Addr))
	for {
		p, from, err := s.ReceivePacketFromConn(c)
		if err != nil {
			if closing.Load() {
				return nil
			}
			if from != nil {
				logger.Warn("dropping undecodable packet", zap.Stringer("from", from), zap.Error(err))
				continue
			}
			logger.Error("receive failed", zap.Error(err))
			return err
		}

		logPacket(logger, p, from)
	}
}

func logPacket(logger *zap.Logger, p osc.Packet, from net.Addr) {
	switch v := p.(type) {
	case *osc.Message:
		logger.Info("message",
			zap.String("address", v.Address),
			zap.String("typetags", v.TypeTags()),
			zap.Stringer("from", from),
			zap.String("body", v.String()))
	case *osc.Bundle:
		logger.Info("bundle",
			zap.Uint64("timetag", v.Timetag.TimeTag()),
			zap.Int("elements", len(v.Elements)),
			zap.Stringer("from", from))
		for _, elem := range v.Elements {
			logPacket(logger, elem, from)
		}
	}
}

// newLogger mirrors the usual level/format switch: console for humans, json
// for collectors.
func newLogger(level, format string) (*zap.Logger, error) {
	lvl := zap.NewAtomicLevel()
	switch strings.ToLower(level) {
	case "debug":
		lvl.SetLevel(zap.DebugLevel)
	case "", "info":
		lvl.SetLevel(zap.InfoLevel)
	case "warn", "warning":
		lvl.SetLevel(zap.WarnLevel)
	case "error":
		lvl.SetLevel(zap.ErrorLevel)
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(format) {
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	case "", "console":
		encCfg = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), lvl)
	return zap.New(core), nil
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "YAML config file")
	rootCmd.Flags().String("listen", ":8765", "UDP address to bind as host:port")
	rootCmd.Flags().StringSlice("route", nil, "dispatch only these literal addresses (repeatable)")
	rootCmd.Flags().String("log-level", "info", "debug, info, warn, or error")
	rootCmd.Flags().String("log-format", "console", "console or json")

	viper.SetEnvPrefix("OSCLISTEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for key, flag := range map[string]string{
		"listen":     "listen",
		"route":      "route",
		"log_level":  "log-level",
		"log_format": "log-format",
	} {
		if err := viper.BindPFlag(key, rootCmd.Flags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
