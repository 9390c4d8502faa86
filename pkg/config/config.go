package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/chainscope/redeemscan/pkg/chains"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig              `mapstructure:"server"`
	Network  string                    `mapstructure:"network"`
	Store    StoreConfig               `mapstructure:"store"`
	Database DatabaseConfig            `mapstructure:"database"`
	Solana   SolanaConfig              `mapstructure:"solana"`
	EVM      map[string]EVMChainConfig `mapstructure:"evm"`
	Routes   map[string]string         `mapstructure:"routes"`
	Matcher  MatcherConfig             `mapstructure:"matcher"`
	Scanner  ScannerConfig             `mapstructure:"scanner"`
	Logging  LoggingConfig             `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// RequestTimeout bounds a single lookup end to end, scans included.
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects and configures the durable redemption store backend
type StoreConfig struct {
	// Backend is one of "pebble", "redis", "postgres".
	Backend string       `mapstructure:"backend"`
	Pebble  PebbleConfig `mapstructure:"pebble"`
	Redis   RedisConfig  `mapstructure:"redis"`
}

// PebbleConfig contains settings for the embedded pebble backend
type PebbleConfig struct {
	Dir string `mapstructure:"dir"`
}

// RedisConfig contains settings for the redis backend
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatabaseConfig contains database connection settings for the postgres backend
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// SolanaConfig contains Solana JSON-RPC client settings
type SolanaConfig struct {
	RPCURL string `mapstructure:"rpc_url"`
	// BridgeAuthority is the mint authority the bridge uses when minting
	// wrapped assets; mint candidates from any other authority are rejected.
	BridgeAuthority string  `mapstructure:"bridge_authority"`
	TokenProgram    string  `mapstructure:"token_program"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
}

// EVMChainConfig contains per-chain settings for an EVM destination.
// The map key under `evm` is the chain name ("ethereum", "bsc", ...).
type EVMChainConfig struct {
	RPCURL string `mapstructure:"rpc_url"`
	// BridgeContract is the token bridge address that emits TransferRedeemed.
	BridgeContract string  `mapstructure:"bridge_contract"`
	RPS            float64 `mapstructure:"rps"`
	Burst          int     `mapstructure:"burst"`
	// ChainID is the bridge chain id for deployments outside the built-in
	// registry; load registers them so routes can point at them. Ignored
	// for chains the registry already knows.
	ChainID uint16 `mapstructure:"chain_id"`
}

// MatcherConfig contains the amount-tolerance constants used when deciding
// whether a candidate event is the redemption of a given transfer
type MatcherConfig struct {
	MintTolerance       int64   `mapstructure:"mint_tolerance"`
	TransferTolerance   int64   `mapstructure:"transfer_tolerance"`
	NormalizedTolerance float64 `mapstructure:"normalized_tolerance"`
}

// ScannerConfig contains candidate-set bounds and the block-range widening schedule
type ScannerConfig struct {
	Slack            time.Duration `mapstructure:"slack"`
	CandidateCap     int           `mapstructure:"candidate_cap"`
	PageLimit        int           `mapstructure:"page_limit"`
	FetchConcurrency int           `mapstructure:"fetch_concurrency"`
	InitialSpan      uint64        `mapstructure:"initial_span"`
	GrowthFactor     uint64        `mapstructure:"growth_factor"`
	MaxWindows       int           `mapstructure:"max_windows"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.request_timeout", "60s")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "90s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Network defaults
	viper.SetDefault("network", "mainnet")

	// Store defaults
	viper.SetDefault("store.backend", "pebble")
	viper.SetDefault("store.pebble.dir", "./data")
	viper.SetDefault("store.redis.addr", "localhost:6379")
	viper.SetDefault("store.redis.db", 0)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "redeemscan")

	// Solana defaults
	viper.SetDefault("solana.token_program", "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	viper.SetDefault("solana.rps", 8)
	viper.SetDefault("solana.burst", 16)

	// Matcher defaults
	viper.SetDefault("matcher.mint_tolerance", 10000)
	viper.SetDefault("matcher.transfer_tolerance", 200000)
	viper.SetDefault("matcher.normalized_tolerance", 1.0)

	// Scanner defaults
	viper.SetDefault("scanner.slack", "5m")
	viper.SetDefault("scanner.candidate_cap", 100)
	viper.SetDefault("scanner.page_limit", 1000)
	viper.SetDefault("scanner.fetch_concurrency", 8)
	viper.SetDefault("scanner.initial_span", 360)
	viper.SetDefault("scanner.growth_factor", 4)
	viper.SetDefault("scanner.max_windows", 4)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Network != "mainnet" && config.Network != "testnet" {
		return fmt.Errorf("network must be mainnet or testnet, got %q", config.Network)
	}
	switch config.Store.Backend {
	case "pebble", "redis", "postgres":
	default:
		return fmt.Errorf("store.backend must be pebble, redis or postgres, got %q", config.Store.Backend)
	}
	if config.Store.Backend == "postgres" && config.Database.Host == "" {
		return fmt.Errorf("database.host is required for the postgres backend")
	}
	if len(config.Routes) == 0 {
		return fmt.Errorf("at least one route is required")
	}
	// Custom EVM deployments enter the chain registry here, before the
	// route checks below resolve names against it.
	for name, chain := range config.EVM {
		if _, ok := chains.ByName(name); ok {
			continue
		}
		if chain.ChainID == 0 {
			return fmt.Errorf("evm.%s.chain_id is required for chains outside the built-in registry", name)
		}
		if err := chains.Register(chains.Info{ID: chains.ID(chain.ChainID), Name: name, Family: chains.FamilyEVM}); err != nil {
			return fmt.Errorf("evm.%s: %w", name, err)
		}
	}
	// Scans run on the destination chain only, so routes need an endpoint
	// for the destination but not for the source.
	for source, destination := range config.Routes {
		if _, ok := chains.ByName(source); !ok {
			return fmt.Errorf("route %s -> %s: unknown source chain", source, destination)
		}
		if _, ok := chains.ByName(destination); !ok {
			return fmt.Errorf("route %s -> %s: unknown destination chain", source, destination)
		}
		if destination == "solana" {
			if config.Solana.RPCURL == "" {
				return fmt.Errorf("solana.rpc_url is required by route %s -> %s", source, destination)
			}
			continue
		}
		chain, ok := config.EVM[destination]
		if !ok || chain.RPCURL == "" {
			return fmt.Errorf("evm.%s.rpc_url is required by route %s -> %s", destination, source, destination)
		}
	}
	if config.Matcher.MintTolerance <= 0 || config.Matcher.TransferTolerance <= 0 {
		return fmt.Errorf("matcher tolerances must be positive")
	}
	if config.Scanner.MaxWindows < 1 {
		return fmt.Errorf("scanner.max_windows must be at least 1")
	}
	if config.Scanner.GrowthFactor < 2 {
		return fmt.Errorf("scanner.growth_factor must be at least 2")
	}
	if config.Scanner.InitialSpan < 1 {
		return fmt.Errorf("scanner.initial_span must be at least 1")
	}
	return nil
}
