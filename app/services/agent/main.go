package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/compoundlabs/compounder/app/services/agent/handlers"
	"github.com/compoundlabs/compounder/business/core/agent"
	"github.com/compoundlabs/compounder/business/data/history"
	"github.com/compoundlabs/compounder/foundation/events"
	"github.com/compoundlabs/compounder/foundation/ledger"
	"github.com/compoundlabs/compounder/foundation/logger"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("AGENT")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		Node struct {
			URL         string        `conf:"default:http://localhost:8545"`
			DialTimeout time.Duration `conf:"default:10s"`
		}
		Agent struct {
			KeyFile        string        `conf:"default:zagent/accounts/agent.ecdsa"`
			Years          float64       `conf:"default:1.0"`
			Rate           float64       `conf:"default:0.069"`
			AvgFees        float64       `conf:"default:0.001"`
			DefaultWait    time.Duration `conf:"default:24h"`
			ConfirmTimeout time.Duration `conf:"default:2m"`
			RetryWait      time.Duration `conf:"default:1m"`
		}
		History struct {
			Backend   string `conf:"default:memory,help:memory or redis"`
			RedisAddr string `conf:"default:localhost:6379"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "AGENT"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Ledger Support

	// Connect to the configured node. The agent never talks to the chain
	// except through this client.
	dialCtx, cancel := context.WithTimeout(context.Background(), cfg.Node.DialTimeout)
	defer cancel()

	lgr, err := ledger.NewEthereum(dialCtx, cfg.Node.URL)
	if err != nil {
		return fmt.Errorf("connecting to node: %w", err)
	}
	defer lgr.Close()

	// Log the node's view of the chain for documentation in the logs.
	status, err := lgr.Status(dialCtx)
	if err != nil {
		return fmt.Errorf("querying node status: %w", err)
	}
	log.Infow("startup", "status", "node connected", "chain_id", status.ChainID, "block_number", status.BlockNumber)

	// =========================================================================
	// Agent Support

	// Need to load the private key file for the account being compounded so
	// the agent can sign its self payments.
	privateKey, err := crypto.LoadECDSA(cfg.Agent.KeyFile)
	if err != nil {
		return fmt.Errorf("unable to load private key for agent: %w", err)
	}

	// Select the history store backend keeping the per-cycle audit trail.
	var store history.Store
	switch cfg.History.Backend {
	case "memory":
		store = history.NewMemory()
	case "redis":
		store = history.NewRedis(cfg.History.RedisAddr)
	default:
		return fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}

	// The agent packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	agt, err := agent.New(agent.Config{
		Ledger:         lgr,
		Store:          store,
		PrivateKey:     privateKey,
		Years:          cfg.Agent.Years,
		Rate:           cfg.Agent.Rate,
		AvgFees:        cfg.Agent.AvgFees,
		DefaultWait:    cfg.Agent.DefaultWait,
		ConfirmTimeout: cfg.Agent.ConfirmTimeout,
		RetryWait:      cfg.Agent.RetryWait,
		EvHandler:      ev,
	})
	if err != nil {
		return fmt.Errorf("constructing agent: %w", err)
	}

	log.Infow("startup", "status", "agent constructed", "account", agt.Account())

	// Start the compounding loop.
	agt.Run()
	defer agt.Shutdown()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.
	debugMux := handlers.DebugStandardLibraryMux()

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Agent:    agt,
		Ledger:   lgr,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
