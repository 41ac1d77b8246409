// Command abci-counter hosts the counter example application behind an
// ABCI socket server, configurable via flags or ABCI_COUNTER_-prefixed
// environment variables (viper's usual precedence). No config file is read.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dusk-network/abci-go/examples/counter"
	"github.com/dusk-network/abci-go/internal/transport"
	"github.com/dusk-network/abci-go/pkg/abci"
)

var log = logger.WithFields(logger.Fields{"prefix": "abci-counter"})

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Fatal("abci-counter: exiting")
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "abci-counter",
		Short: "Serve the counter example application over ABCI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "tcp://127.0.0.1:26658", "ABCI socket address: tcp://host:port, unix:///path")
	flags.String("debug-addr", "", "optional unix socket for the read-only debug introspection RPC")
	flags.String("log-level", "info", "logrus level: trace, debug, info, warn, error")

	_ = v.BindPFlag("addr", flags.Lookup("addr"))
	_ = v.BindPFlag("debug-addr", flags.Lookup("debug-addr"))
	_ = v.BindPFlag("log-level", flags.Lookup("log-level"))
	v.SetEnvPrefix("ABCI_COUNTER")
	v.AutomaticEnv()

	return cmd
}

func run(v *viper.Viper) error {
	level, err := logger.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("abci-counter: %w", err)
	}
	logger.SetLevel(level)

	addr, err := parseAddress(v.GetString("addr"))
	if err != nil {
		return fmt.Errorf("abci-counter: %w", err)
	}

	ln, err := transport.Listen(addr)
	if err != nil {
		return fmt.Errorf("abci-counter: listen: %w", err)
	}

	app := counter.NewApp()
	server := abci.NewServer(ln, abci.Handlers{
		Consensus: app,
		Mempool:   app,
		Info:      app,
		Snapshot:  app,
		Echo:      app,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if debugAddr := v.GetString("debug-addr"); debugAddr != "" {
		go serveDebug(ctx, server, debugAddr)
	}

	log.WithField("addr", addr.String()).Info("abci-counter: serving")
	if err := server.Serve(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("abci-counter: serve: %w", err)
	}
	return nil
}

func serveDebug(ctx context.Context, server *abci.Server, path string) {
	// gRPC wants a plain net.Listener; the debug channel carries no ABCI
	// framing, so it bypasses internal/transport entirely.
	nl, err := net.Listen("unix", path)
	if err != nil {
		log.WithError(err).Warn("abci-counter: debug listener failed")
		return
	}
	gs := server.NewDebugServer()
	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()
	if err := gs.Serve(nl); err != nil {
		log.WithError(err).Debug("abci-counter: debug server stopped")
	}
}

func parseAddress(raw string) (transport.Address, error) {
	switch {
	case len(raw) > len("tcp://") && raw[:len("tcp://")] == "tcp://":
		return transport.NewTCPAddress(raw[len("tcp://"):]), nil
	case len(raw) > len("unix://") && raw[:len("unix://")] == "unix://":
		return transport.NewUnixAddress(raw[len("unix://"):]), nil
	default:
		return transport.Address{}, fmt.Errorf("unrecognized address %q (want tcp://... or unix://...)", raw)
	}
}
