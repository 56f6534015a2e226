package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ChordDHT/internal/bootstrap"
	"ChordDHT/internal/client"
	"ChordDHT/internal/config"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
	zapfactory "ChordDHT/internal/logger/zap"
	"ChordDHT/internal/node"
	"ChordDHT/internal/server"
	"ChordDHT/internal/telemetry"
)

var defaultConfigPath = "config/node/config.yaml"

func main() {
	// Literal CLI surface (spec.md §6); takes precedence over the YAML
	// ambient config for anything it covers.
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	address := flag.String("address", "", "bind address and identity source, host:port (required)")
	join := flag.String("join", "", "bootstrap peer host:port; absent means solo ring")
	monitor := flag.String("monitor", "", "monitor endpoint to push state snapshots to")
	mBits := flag.Int("m", 160, "identifier bits")
	rSize := flag.Int("r", 4, "successor list size")
	kFactor := flag.Int("k", 2, "replication factor, must be <= r")
	flag.Parse()

	if *address == "" {
		log.Fatal("--address is required")
	}
	if *kFactor <= 0 || *kFactor > *rSize {
		log.Fatalf("--k must satisfy 1 <= k <= r (got k=%d, r=%d)", *kFactor, *rSize)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
	}
	cfg.ApplyEnvOverrides()
	cfg.DHT.IDBits = *mBits
	cfg.DHT.FaultTolerance.SuccessorListSize = *rSize
	cfg.DHT.FaultTolerance.ReplicationFactor = *kFactor
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var lgr logger.Logger
	if cfg.Logger.Active {
		zapLog, err := zapfactory.New(cfg.Logger)
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		defer func() { _ = zapLog.Sync() }()
		lgr = zapfactory.NewAdapter(zapLog)
	} else {
		lgr = &logger.NopLogger{}
	}
	cfg.LogConfig(lgr)

	// --address is the bind address and identity source (spec.md §6);
	// since the host half is given explicitly, Listen's interface-picking
	// mode is bypassed and only used as a no-op default.
	addrHost, addrPort, err := net.SplitHostPort(*address)
	if err != nil {
		log.Fatalf("invalid --address %q: %v", *address, err)
	}
	port, err := strconv.Atoi(addrPort)
	if err != nil {
		log.Fatalf("invalid --address %q: port %q is not numeric", *address, addrPort)
	}
	bind := cfg.Node.Bind
	if bind == "" {
		bind = addrHost
	}
	lis, advertised, err := server.Listen("", bind, addrHost, port)
	if err != nil {
		lgr.Error("failed to bind listener", logger.F("address", *address), logger.F("err", err))
		os.Exit(2)
	}
	defer func() { _ = lis.Close() }()
	lgr.Debug("listener bound", logger.F("advertised", advertised))

	space, err := domain.NewSpace(cfg.DHT.IDBits, cfg.DHT.FaultTolerance.SuccessorListSize, cfg.DHT.FaultTolerance.ReplicationFactor)
	if err != nil {
		lgr.Error("failed to build identifier space", logger.F("err", err))
		os.Exit(2)
	}
	lgr.Debug("identifier space built",
		logger.F("bits", space.Bits), logger.F("successorListSize", space.SuccListSize),
		logger.F("replicationFactor", space.ReplicationFactor))

	var id domain.ID
	if cfg.Node.Id == "" {
		id = space.HashString(advertised)
	} else {
		id, err = space.FromHexString(cfg.Node.Id)
		if err != nil {
			lgr.Error("invalid node id in configuration", logger.F("err", err))
			os.Exit(2)
		}
	}
	self := &domain.Node{ID: id, Addr: advertised}
	lgr = lgr.Named("node").With(logger.FNode("self", self))
	lgr.Info("node identity assigned")

	shutdownTracer := telemetry.InitTracer(cfg.Telemetry, "ChordDHT-Node", id)
	defer func() { _ = shutdownTracer(context.Background()) }()

	cp := client.NewPool(
		cfg.DHT.FaultTolerance.FailureTimeout,
		cfg.DHT.FaultTolerance.FailureTimeout,
		client.WithLogger(lgr.Named("clientpool")),
	)
	defer func() { _ = cp.Close() }()

	n := node.New(self, space, cp,
		node.WithLogger(lgr),
		node.WithMonitorAddr(*monitor),
	)
	lgr.Debug("node constructed")

	srv, err := server.New(lis, n, nil, server.WithLogger(lgr.Named("server")))
	if err != nil {
		lgr.Error("failed to initialize gRPC server", logger.F("err", err))
		os.Exit(2)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()
	lgr.Debug("gRPC server started")

	// Resolve bootstrap mode: literal --join wins over the configured
	// discovery mechanism; no peer at all means a fresh solo ring.
	var disc bootstrap.Bootstrap
	register := true
	switch {
	case *join != "":
		disc = bootstrap.NewStaticBootstrap([]string{*join})
	case cfg.DHT.Bootstrap.Mode == "dns":
		disc, err = bootstrap.NewRoute53Bootstrap(cfg.DHT.Bootstrap.Register)
		if err != nil {
			lgr.Error("failed to initialize Route53 bootstrap", logger.F("err", err))
			srv.Stop()
			os.Exit(1)
		}
		register = cfg.DHT.Bootstrap.Register.Enabled
	case cfg.DHT.Bootstrap.Mode == "static":
		disc = bootstrap.NewStaticBootstrap(cfg.DHT.Bootstrap.Peers)
	default:
		disc = bootstrap.NewStaticBootstrap(nil)
	}

	bootstrapCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	peers, err := disc.Discover(bootstrapCtx)
	cancel()
	if err != nil {
		lgr.Error("failed to resolve bootstrap peers", logger.F("err", err))
		srv.Stop()
		os.Exit(1)
	}

	if len(peers) == 0 {
		n.Start()
		lgr.Info("no bootstrap peers found, starting solo ring")
	} else {
		joinCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := n.Join(joinCtx, peers[0])
		cancel()
		if err != nil {
			lgr.Error("failed to join DHT", logger.F("bootstrap", peers[0]), logger.F("err", err))
			srv.Stop()
			os.Exit(1)
		}
		lgr.Info("joined existing ring", logger.F("bootstrap", peers[0]))
	}

	if register {
		registerCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := disc.Register(registerCtx, self); err != nil {
			lgr.Warn("failed to register node", logger.F("err", err))
		}
		cancel()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	n.StartStabilizers(ctx, node.StabilizerIntervals{
		Stabilize:        cfg.DHT.FaultTolerance.StabilizationInterval,
		FixFingers:       cfg.DHT.Fingers.FixInterval,
		CheckPredecessor: cfg.DHT.FaultTolerance.CheckPredecessorInterval,
		Replicate:        cfg.DHT.FaultTolerance.StabilizationInterval,
		MonitorPush:      cfg.DHT.Monitor.PushInterval,
	})
	lgr.Debug("maintenance loops started")

	select {
	case <-ctx.Done():
		lgr.Info("shutdown signal received, leaving ring")
		stop()

		leaveCtx, leaveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := n.Leave(leaveCtx); err != nil {
			lgr.Warn("graceful leave failed", logger.F("err", err))
		}
		leaveCancel()

		if register {
			deregCtx, deregCancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := disc.Deregister(deregCtx, self); err != nil {
				lgr.Warn("failed to deregister node", logger.F("err", err))
			}
			deregCancel()
		}

		stopped := make(chan struct{})
		go func() { srv.GracefulStop(); close(stopped) }()
		select {
		case <-stopped:
			lgr.Info("server stopped gracefully")
		case <-time.After(5 * time.Second):
			lgr.Warn("graceful stop timed out, forcing shutdown")
			srv.Stop()
		}
		os.Exit(0)

	case err := <-serveErr:
		lgr.Error("gRPC server terminated unexpectedly", logger.F("err", err))
		stop()
		os.Exit(1)
	}
}
