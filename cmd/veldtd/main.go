package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/veldt-lang/veldt/internal/config"
	"github.com/veldt-lang/veldt/internal/diagnostics"
	"github.com/veldt-lang/veldt/internal/report"
	"github.com/veldt-lang/veldt/internal/service"
	"github.com/veldt-lang/veldt/internal/store"
	"github.com/veldt-lang/veldt/pkg/veldt"
)

// declsFlag collects repeated --decls arguments.
type declsFlag []string

func (f *declsFlag) String() string { return strings.Join(*f, ",") }

func (f *declsFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func defaultAddr() string {
	if addr := os.Getenv(config.DaemonAddrEnv); addr != "" {
		return addr
	}
	return config.DefaultDaemonAddr
}

func main() {
	var decls declsFlag
	addr := flag.String("addr", defaultAddr(), "listen address")
	tracePath := flag.String("trace", os.Getenv(config.TraceDBEnv), "record every verdict to this SQLite database")
	logLevel := flag.String("log-level", "info", "zerolog level: trace|debug|info|warn|error")
	flag.Var(&decls, "decls", "declaration file (.vd or .yaml); repeatable")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)

	if err := run(*addr, decls, *tracePath, logger); err != nil {
		logger.Error().Err(err).Str("code", diagnostics.ErrG001).Msg("daemon failed")
		os.Exit(1)
	}
}

func run(addr string, decls []string, tracePath string, logger zerolog.Logger) error {
	if len(decls) == 0 {
		return fmt.Errorf("no declaration files; pass at least one --decls")
	}

	engine := veldt.New()
	for _, path := range decls {
		if err := engine.LoadFile(path); err != nil {
			return err
		}
	}
	if err := engine.Seal(); err != nil {
		return err
	}
	for _, rep := range engine.Reports() {
		if rep.Status != report.StatusResolved {
			logger.Warn().
				Str("goal", rep.Goal).
				Str("verdict", string(rep.Status)).
				Msg("declaration require failed")
		}
	}
	logger.Info().
		Int("files", len(decls)).
		Int("impls", len(engine.Registry().Records())).
		Msg("registry sealed")

	options := []service.ServiceOption{service.WithLogger(logger)}
	if tracePath != "" {
		st, err := store.Open(tracePath, store.WithLogger(logger))
		if err != nil {
			return err
		}
		defer st.Close()
		options = append(options, service.WithStore(st))
		logger.Info().Str("path", tracePath).Msg("trace store open")
	}

	svc, err := service.New(engine.Registry(), options...)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	server := grpc.NewServer()
	svc.Register(server)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", listener.Addr().String()).Msg("daemon listening")
		errCh <- server.Serve(listener)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		server.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}
