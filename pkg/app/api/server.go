// Package api implements app.Runner for the API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	ethcommon "github.com/ethereum/go-ethereum/common"

	apiv1 "github.com/chainscope/redeemscan/pkg/api"
	apphttp "github.com/chainscope/redeemscan/pkg/app/http"
	"github.com/chainscope/redeemscan/pkg/chains"
	"github.com/chainscope/redeemscan/pkg/config"
	"github.com/chainscope/redeemscan/pkg/ethereum"
	"github.com/chainscope/redeemscan/pkg/evmscan"
	"github.com/chainscope/redeemscan/pkg/locator"
	"github.com/chainscope/redeemscan/pkg/pgutil"
	"github.com/chainscope/redeemscan/pkg/ratelimit"
	"github.com/chainscope/redeemscan/pkg/solana"
	"github.com/chainscope/redeemscan/pkg/solscan"
	"github.com/chainscope/redeemscan/pkg/store"
	"github.com/chainscope/redeemscan/pkg/store/pebbledb"
	"github.com/chainscope/redeemscan/pkg/store/pgdb"
	"github.com/chainscope/redeemscan/pkg/store/redisdb"
	"github.com/chainscope/redeemscan/pkg/token"
)

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new api server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting redemption locator API server",
		zap.String("network", cfg.Network),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	st, err := s.openStore(ctx, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	evmClients, err := s.openEVMClients(logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, client := range evmClients {
			client.Close()
		}
	}()

	tokenService := token.NewService(st, logger)
	for chain, client := range evmClients {
		tokenService.RegisterChain(chain, client)
	}

	loc, err := s.buildLocator(st, tokenService, evmClients, logger)
	if err != nil {
		return err
	}

	router := s.setupRouter(loc, tokenService, logger)

	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

// openStore opens the configured result cache backend.
func (s *Server) openStore(ctx context.Context, logger *zap.Logger) (store.Store, error) {
	cfg := s.cfg
	switch cfg.Store.Backend {
	case "pebble":
		st, err := pebbledb.New(cfg.Store.Pebble.Dir)
		if err != nil {
			return nil, fmt.Errorf("open pebble store: %w", err)
		}
		logger.Info("Opened pebble store", zap.String("dir", cfg.Store.Pebble.Dir))
		return st, nil

	case "redis":
		st, err := redisdb.New(ctx, cfg.Store.Redis.Addr, cfg.Store.Redis.Username, cfg.Store.Redis.Password, cfg.Store.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("connect redis store: %w", err)
		}
		logger.Info("Connected to redis store", zap.String("addr", cfg.Store.Redis.Addr))
		return st, nil

	case "postgres":
		db, err := pgutil.ConnectDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres store: %w", err)
		}
		logger.Info("Connected to postgres store",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Database))
		return pgdb.NewStore(db), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// openEVMClients dials every configured EVM chain.
func (s *Server) openEVMClients(logger *zap.Logger) (map[string]*ethereum.Client, error) {
	clients := make(map[string]*ethereum.Client, len(s.cfg.EVM))
	for chain, chainCfg := range s.cfg.EVM {
		client, err := ethereum.NewClient(chain, chainCfg, logger)
		if err != nil {
			for _, c := range clients {
				c.Close()
			}
			return nil, fmt.Errorf("connect %s client: %w", chain, err)
		}
		clients[chain] = client
	}
	return clients, nil
}

// buildLocator registers one scanner/matcher pair per configured route. The
// destination chain's family decides which pair can search it.
func (s *Server) buildLocator(st store.Store, tokens *token.Service, evmClients map[string]*ethereum.Client, logger *zap.Logger) (*locator.Locator, error) {
	cfg := s.cfg
	loc := locator.NewLocator(st, logger)

	var solClient *solana.Client

	for srcName, destName := range cfg.Routes {
		src, ok := chains.ByName(srcName)
		if !ok {
			return nil, fmt.Errorf("route source %q: unknown chain", srcName)
		}
		dest, ok := chains.ByName(destName)
		if !ok {
			return nil, fmt.Errorf("route destination %q: unknown chain", destName)
		}

		switch dest.Family {
		case chains.FamilyEVM:
			client, ok := evmClients[dest.Name]
			if !ok {
				return nil, fmt.Errorf("route %s->%s: no evm config for %s", srcName, destName, destName)
			}
			bridge := ethcommon.HexToAddress(cfg.EVM[dest.Name].BridgeContract)
			loc.RegisterRoute(src.ID,
				evmscan.NewScanner(dest.Name, client, bridge, cfg.Scanner, logger),
				evmscan.NewTransferMatcher(dest.Name, tokens, cfg.Matcher, logger))

		case chains.FamilySolana:
			if solClient == nil {
				limiter := ratelimit.NewLimiter(cfg.Solana.RPS, cfg.Solana.Burst, "solana")
				solClient = solana.NewClient(cfg.Solana.RPCURL, limiter, logger)
			}
			loc.RegisterRoute(src.ID,
				solscan.NewScanner(solClient, cfg.Solana.TokenProgram, cfg.Scanner, logger),
				solscan.NewMintMatcher(cfg.Solana.BridgeAuthority, cfg.Matcher))

		default:
			return nil, fmt.Errorf("route %s->%s: unsupported family %q", srcName, destName, dest.Family)
		}

		logger.Info("Registered redemption route",
			zap.String("source", src.Name),
			zap.String("destination", dest.Name))
	}

	return loc, nil
}

func (s *Server) setupRouter(loc *locator.Locator, tokens *token.Service, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Lookup endpoints
	r.Route("/api/v1", func(r chi.Router) {
		apiv1.RegisterRoutes(r, loc, tokens, chains.Network(s.cfg.Network), logger)
	})

	return r
}
