// Package config defines the node's YAML-driven ambient configuration:
// everything beyond the literal CLI flag surface (identity, bind address,
// bootstrap peer/join) that cmd/node accepts directly.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"ChordDHT/internal/configloader"
	"ChordDHT/internal/logger"
)

type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "stdout" or "otlp"
	Endpoint string `yaml:"endpoint"`
}

type TelemetryConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
}

type FileLoggerConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

type LoggerConfig struct {
	Active   bool             `yaml:"active"`
	Level    string           `yaml:"level"`
	Encoding string           `yaml:"encoding"` // "console" or "json"
	Mode     string           `yaml:"mode"`     // "stdout" or "file"
	File     FileLoggerConfig `yaml:"file"`
}

// FingersConfig controls the fix_fingers maintenance loop (spec C7).
type FingersConfig struct {
	FixInterval time.Duration `yaml:"fixInterval"`
}

// FaultToleranceConfig controls the stabilize and check_predecessor loops
// and the size of the successor list they maintain (spec C3, C7).
type FaultToleranceConfig struct {
	SuccessorListSize       int           `yaml:"successorListSize"`
	ReplicationFactor       int           `yaml:"replicationFactor"`
	StabilizationInterval   time.Duration `yaml:"stabilizationInterval"`
	CheckPredecessorInterval time.Duration `yaml:"checkPredecessorInterval"`
	FailureTimeout          time.Duration `yaml:"failureTimeout"`
}

type RegisterConfig struct {
	Enabled      bool   `yaml:"enabled"`
	HostedZoneID string `yaml:"hostedZoneId"`
	DomainSuffix string `yaml:"domainSuffix"`
	TTL          int64  `yaml:"ttl"`
}

// BootstrapConfig selects how the node discovers its join peer set when the
// CLI --join flag is absent. "static" uses Peers; "dns" resolves an AWS
// Route53 record (optionally registering this node back into it).
type BootstrapConfig struct {
	Mode     string         `yaml:"mode"` // "init", "static", "dns"
	DNSName  string         `yaml:"dnsName"`
	SRV      bool           `yaml:"srv"`
	Port     int            `yaml:"port"`
	Peers    []string       `yaml:"peers"`
	Register RegisterConfig `yaml:"register"`
}

type MonitorConfig struct {
	PushInterval time.Duration `yaml:"pushInterval"`
}

type DHTConfig struct {
	IDBits         int                  `yaml:"idBits"`
	Fingers        FingersConfig        `yaml:"fingers"`
	FaultTolerance FaultToleranceConfig `yaml:"faultTolerance"`
	Bootstrap      BootstrapConfig      `yaml:"bootstrap"`
	Monitor        MonitorConfig        `yaml:"monitor"`
}

type NodeConfig struct {
	Id   string `yaml:"id"`
	Bind string `yaml:"bind"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type Config struct {
	Logger    LoggerConfig    `yaml:"logger"`
	DHT       DHTConfig       `yaml:"dht"`
	Node      NodeConfig      `yaml:"node"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Default returns the ambient configuration used when no --config file is
// given: a single-process-friendly baseline (m=20 bits, r=successor list
// size 4, k=replication factor 2). cmd/node overwrites m, r and k with its
// --m/--r/--k flags, whose defaults are 160, 4 and 2.
func Default() Config {
	return Config{
		Logger: LoggerConfig{
			Active:   true,
			Level:    "info",
			Encoding: "console",
			Mode:     "stdout",
		},
		DHT: DHTConfig{
			IDBits: 20,
			Fingers: FingersConfig{
				FixInterval: 300 * time.Millisecond,
			},
			FaultTolerance: FaultToleranceConfig{
				SuccessorListSize:        4,
				ReplicationFactor:        2,
				StabilizationInterval:    500 * time.Millisecond,
				CheckPredecessorInterval: 1 * time.Second,
				FailureTimeout:           750 * time.Millisecond,
			},
			Bootstrap: BootstrapConfig{Mode: "init"},
			Monitor:   MonitorConfig{PushInterval: 2 * time.Second},
		},
		Node: NodeConfig{Bind: "0.0.0.0"},
	}
}

// LoadConfig parses the YAML file at path. Callers should follow with
// ApplyEnvOverrides and ValidateConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if err := configloader.LoadYAML(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnvOverrides layers environment variables over the loaded config.
// Supported variables: NODE_ID, NODE_BIND, NODE_HOST, NODE_PORT,
// BOOTSTRAP_MODE, BOOTSTRAP_DNSNAME, BOOTSTRAP_SRV, BOOTSTRAP_PORT,
// BOOTSTRAP_PEERS (comma-separated), REGISTER_ENABLED, REGISTER_ZONE_ID,
// REGISTER_SUFFIX, REGISTER_TTL, TRACE_ENABLED, TRACE_EXPORTER,
// TRACE_ENDPOINT, LOGGER_ENABLED, LOGGER_LEVEL, LOGGER_ENCODING,
// LOGGER_MODE, LOGGER_FILE_PATH.
func (cfg *Config) ApplyEnvOverrides() {
	configloader.OverrideString(&cfg.Node.Id, "NODE_ID")
	configloader.OverrideString(&cfg.Node.Bind, "NODE_BIND")
	configloader.OverrideString(&cfg.Node.Host, "NODE_HOST")
	configloader.OverrideInt(&cfg.Node.Port, "NODE_PORT")

	configloader.OverrideString(&cfg.DHT.Bootstrap.Mode, "BOOTSTRAP_MODE")
	configloader.OverrideString(&cfg.DHT.Bootstrap.DNSName, "BOOTSTRAP_DNSNAME")
	configloader.OverrideBool(&cfg.DHT.Bootstrap.SRV, "BOOTSTRAP_SRV")
	configloader.OverrideInt(&cfg.DHT.Bootstrap.Port, "BOOTSTRAP_PORT")
	configloader.OverrideStringSlice(&cfg.DHT.Bootstrap.Peers, "BOOTSTRAP_PEERS")

	configloader.OverrideBool(&cfg.DHT.Bootstrap.Register.Enabled, "REGISTER_ENABLED")
	configloader.OverrideString(&cfg.DHT.Bootstrap.Register.HostedZoneID, "REGISTER_ZONE_ID")
	configloader.OverrideString(&cfg.DHT.Bootstrap.Register.DomainSuffix, "REGISTER_SUFFIX")
	configloader.OverrideInt64(&cfg.DHT.Bootstrap.Register.TTL, "REGISTER_TTL")

	configloader.OverrideBool(&cfg.Telemetry.Tracing.Enabled, "TRACE_ENABLED")
	configloader.OverrideString(&cfg.Telemetry.Tracing.Exporter, "TRACE_EXPORTER")
	configloader.OverrideString(&cfg.Telemetry.Tracing.Endpoint, "TRACE_ENDPOINT")

	configloader.OverrideBool(&cfg.Logger.Active, "LOGGER_ENABLED")
	configloader.OverrideString(&cfg.Logger.Level, "LOGGER_LEVEL")
	configloader.OverrideString(&cfg.Logger.Encoding, "LOGGER_ENCODING")
	configloader.OverrideString(&cfg.Logger.Mode, "LOGGER_MODE")
	configloader.OverrideString(&cfg.Logger.File.Path, "LOGGER_FILE_PATH")
}

// ValidateConfig performs structural validation: required fields, ranges,
// and enum-like values. It does not second-guess protocol-level choices
// (e.g. whether replicationFactor is wise), only whether the file is
// well-formed enough to start the node.
func (cfg *Config) ValidateConfig() error {
	var errs []string

	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.level: %s", cfg.Logger.Level))
	}
	switch cfg.Logger.Encoding {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.encoding: %s", cfg.Logger.Encoding))
	}
	switch cfg.Logger.Mode {
	case "stdout":
	case "file":
		if cfg.Logger.File.Path == "" {
			errs = append(errs, "logger.file.path is required when mode=file")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.mode: %s", cfg.Logger.Mode))
	}

	if cfg.DHT.IDBits <= 0 {
		errs = append(errs, "dht.idBits must be > 0")
	}
	ft := cfg.DHT.FaultTolerance
	if ft.SuccessorListSize <= 0 {
		errs = append(errs, "dht.faultTolerance.successorListSize must be > 0")
	}
	if ft.ReplicationFactor <= 0 || ft.ReplicationFactor > ft.SuccessorListSize {
		errs = append(errs, "dht.faultTolerance.replicationFactor must be in [1, successorListSize]")
	}
	if ft.StabilizationInterval <= 0 {
		errs = append(errs, "dht.faultTolerance.stabilizationInterval must be > 0")
	}
	if ft.CheckPredecessorInterval <= 0 {
		errs = append(errs, "dht.faultTolerance.checkPredecessorInterval must be > 0")
	}
	if ft.FailureTimeout <= 0 {
		errs = append(errs, "dht.faultTolerance.failureTimeout must be > 0")
	}
	if cfg.DHT.Fingers.FixInterval <= 0 {
		errs = append(errs, "dht.fingers.fixInterval must be > 0")
	}

	b := cfg.DHT.Bootstrap
	switch b.Mode {
	case "dns":
		if b.DNSName == "" {
			errs = append(errs, "bootstrap.dnsName is required in mode=dns")
		}
		if !b.SRV && b.Port <= 0 {
			errs = append(errs, "bootstrap.port must be > 0 when using A/AAAA (srv=false)")
		}
		if b.Register.Enabled {
			if b.Register.HostedZoneID == "" {
				errs = append(errs, "bootstrap.register.hostedZoneId is required when register.enabled=true")
			}
			if b.Register.DomainSuffix == "" {
				errs = append(errs, "bootstrap.register.domainSuffix is required when register.enabled=true")
			}
			if b.Register.TTL <= 0 {
				errs = append(errs, "bootstrap.register.ttl must be > 0 when register.enabled=true")
			}
		}
	case "static":
		for _, p := range b.Peers {
			if _, _, err := net.SplitHostPort(p); err != nil {
				errs = append(errs, fmt.Sprintf("invalid peer address %q in bootstrap.peers: %v", p, err))
			}
		}
	case "init":
	default:
		errs = append(errs, fmt.Sprintf("invalid bootstrap.mode: %s (must be init, static or dns)", b.Mode))
	}

	if cfg.Node.Port < 0 || cfg.Node.Port > 65535 {
		errs = append(errs, fmt.Sprintf("node.port must be in [0,65535], got %d", cfg.Node.Port))
	}

	if cfg.Telemetry.Tracing.Enabled {
		switch cfg.Telemetry.Tracing.Exporter {
		case "stdout", "otlp":
		default:
			errs = append(errs, fmt.Sprintf("invalid telemetry.tracing.exporter: %s", cfg.Telemetry.Tracing.Exporter))
		}
		if cfg.Telemetry.Tracing.Endpoint == "" && cfg.Telemetry.Tracing.Exporter == "otlp" {
			errs = append(errs, "telemetry.tracing.endpoint is required for the otlp exporter")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LogConfig emits the effective configuration at DEBUG level, useful when
// diagnosing startup issues.
func (cfg *Config) LogConfig(lgr logger.Logger) {
	lgr.Debug("loaded configuration",
		logger.F("logger.active", cfg.Logger.Active),
		logger.F("logger.level", cfg.Logger.Level),
		logger.F("logger.encoding", cfg.Logger.Encoding),
		logger.F("logger.mode", cfg.Logger.Mode),
		logger.F("dht.idBits", cfg.DHT.IDBits),
		logger.F("dht.fingers.fixInterval", cfg.DHT.Fingers.FixInterval.String()),
		logger.F("dht.faultTolerance.successorListSize", cfg.DHT.FaultTolerance.SuccessorListSize),
		logger.F("dht.faultTolerance.replicationFactor", cfg.DHT.FaultTolerance.ReplicationFactor),
		logger.F("dht.faultTolerance.stabilizationInterval", cfg.DHT.FaultTolerance.StabilizationInterval.String()),
		logger.F("dht.faultTolerance.checkPredecessorInterval", cfg.DHT.FaultTolerance.CheckPredecessorInterval.String()),
		logger.F("dht.faultTolerance.failureTimeout", cfg.DHT.FaultTolerance.FailureTimeout.String()),
		logger.F("dht.bootstrap.mode", cfg.DHT.Bootstrap.Mode),
		logger.F("dht.bootstrap.peers", cfg.DHT.Bootstrap.Peers),
		logger.F("node.id", cfg.Node.Id),
		logger.F("node.bind", cfg.Node.Bind),
		logger.F("node.port", cfg.Node.Port),
		logger.F("telemetry.tracing.enabled", cfg.Telemetry.Tracing.Enabled),
		logger.F("telemetry.tracing.exporter", cfg.Telemetry.Tracing.Exporter),
	)
}
