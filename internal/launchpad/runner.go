// =============================
// File: internal/launchpad/runner.go
// =============================
package launchpad

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-launchpad/internal/config"
	"github.com/rovshanmuradov/solana-launchpad/internal/engine"
	"github.com/rovshanmuradov/solana-launchpad/internal/events"
	"github.com/rovshanmuradov/solana-launchpad/internal/export"
	"github.com/rovshanmuradov/solana-launchpad/internal/launch"
	"github.com/rovshanmuradov/solana-launchpad/internal/logger"
	"github.com/rovshanmuradov/solana-launchpad/internal/metrics"
	"github.com/rovshanmuradov/solana-launchpad/internal/platform"
	"github.com/rovshanmuradov/solana-launchpad/internal/storage"
	"github.com/rovshanmuradov/solana-launchpad/internal/storage/postgres"
	"github.com/rovshanmuradov/solana-launchpad/internal/task"
)

const exportBatchLimit = 10_000

// Runner wires the launchpad together: config, logging, storage, event bus,
// engine, and the scripted operation scenario.
type Runner struct {
	bootLog   *zap.Logger
	log       *logger.Logger
	cfg       *config.Config
	owner     solana.PublicKey
	store     storage.Storage
	bus       *events.Bus
	engine    *engine.Engine
	collector *metrics.Collector
	exporter  *export.TradeExporter
	tasks     []*task.Task
}

// NewRunner constructs an uninitialized runner. bootLog covers the window
// before the configured logger exists.
func NewRunner(bootLog *zap.Logger) *Runner {
	return &Runner{bootLog: bootLog}
}

// Initialize loads configuration and builds every component. Nothing trades
// yet; Run drives the scenario.
func (r *Runner) Initialize(configPath string) error {
	r.bootLog.Info("Loading configuration", zap.String("path", configPath))

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	r.cfg = cfg

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	r.log = log

	r.owner, err = solana.PublicKeyFromBase58(cfg.Owner)
	if err != nil {
		return fmt.Errorf("invalid owner identity: %w", err)
	}

	if cfg.PostgresURL != "" {
		store, err := postgres.NewStorage(cfg.PostgresURL, log.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect storage: %w", err)
		}
		if err := store.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.store = store
	}

	r.collector = metrics.NewCollector()
	r.exporter = export.NewTradeExporter(log.Logger)

	r.bus = events.NewBus(log.Logger, cfg.EventBufferSize)
	r.subscribeObservers()

	registry := platform.NewRegistry(log.Logger)
	book := launch.NewBook(log.Logger)
	transfer := engine.NewNopTransfer(log.Logger)

	eng, err := engine.New(
		engine.Config{LockOnGraduation: cfg.LockOnGraduation},
		registry, book, launch.NewMemoryRegistrar(), transfer, r.store, r.bus, log.Logger,
	)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}
	r.engine = eng

	if cfg.TasksFile != "" {
		tasks, err := task.NewManager(log.Logger).LoadTasksYAML(cfg.TasksFile)
		if err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		r.tasks = tasks
	}

	return nil
}

// subscribeObservers mirrors the domain event stream into the log and the
// metrics collector.
func (r *Runner) subscribeObservers() {
	tradeSides := map[events.EventType]string{
		events.TokensBought: "buy",
		events.TokensSold:   "sell",
	}
	for eventType, side := range tradeSides {
		r.bus.SubscribeFunc(eventType, func(_ context.Context, e events.Event) error {
			if trade, ok := e.(events.TradeEvent); ok {
				r.collector.RecordTrade(side, trade.SolAmount, trade.Fee)
			}
			return nil
		})
	}
	r.bus.SubscribeFunc(events.TokenCreated, func(_ context.Context, _ events.Event) error {
		r.collector.RecordTokenCreated()
		return nil
	})
	r.bus.SubscribeFunc(events.TokenGraduated, func(_ context.Context, e events.Event) error {
		if grad, ok := e.(events.TokenGraduatedEvent); ok {
			r.collector.RecordGraduation(grad.Token.String(), grad.RealLiquidity)
			r.log.Info("Token reached its target pool balance",
				zap.String("token", grad.Token.String()),
				zap.Uint64("real_liquidity", grad.RealLiquidity))
		}
		return nil
	})
	r.bus.SubscribeFunc(events.FeesWithdrawn, func(_ context.Context, e events.Event) error {
		if w, ok := e.(events.FeesWithdrawnEvent); ok {
			r.collector.RecordFeesWithdrawn(w.Amount)
			r.log.Info("Platform fees withdrawn", zap.Uint64("amount", w.Amount))
		}
		return nil
	})
}

// Run initializes the platform registry and executes the loaded scenario.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.engine.InitializePlatform(platform.Params{
		Owner:             r.owner,
		FeeBps:            r.cfg.FeeBps,
		TotalSupply:       r.cfg.TotalSupply,
		VirtualSol:        r.cfg.VirtualSol,
		TargetPoolBalance: r.cfg.TargetPoolBalance,
	}); err != nil {
		return fmt.Errorf("failed to initialize platform: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if r.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(r.collector.Registry(), promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: r.cfg.MetricsAddr, Handler: mux}

		g.Go(func() error {
			r.log.Info("Serving metrics", zap.String("addr", r.cfg.MetricsAddr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel() // scenario completion stops the metrics server
		return r.runTasks(ctx)
	})

	return g.Wait()
}

// runTasks executes the scenario in order; trades on one token depend on the
// previous ones, so there is no parallelism across a single scenario.
func (r *Runner) runTasks(ctx context.Context) error {
	for _, t := range r.tasks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		caller := r.owner
		if t.Caller != "" {
			parsed, err := solana.PublicKeyFromBase58(t.Caller)
			if err != nil {
				return fmt.Errorf("task %q: invalid caller: %w", t.TaskName, err)
			}
			caller = parsed
		}

		end := r.log.TrackPerformance(string(t.Operation))
		err := r.runTask(ctx, t, caller)
		end()
		if err != nil {
			return fmt.Errorf("task %q failed: %w", t.TaskName, err)
		}
	}
	return nil
}

func (r *Runner) runTask(ctx context.Context, t *task.Task, caller solana.PublicKey) error {
	switch t.Operation {
	case task.OperationCreate:
		info, err := r.engine.CreateToken(ctx, caller, launch.Metadata{
			Name:   t.TokenName,
			Symbol: t.Symbol,
			URI:    t.URI,
		})
		if err != nil {
			return err
		}
		r.log.WithToken(t.TokenName, info.Token.String()).Info("Token launched",
			zap.Uint64("total_supply", info.TotalSupply),
			zap.Uint64("virtual_sol", info.VirtualSol))
		return nil

	case task.OperationBuy:
		res, err := r.engine.BuyTokens(ctx, caller, t.TokenName, t.AmountSol)
		if err != nil {
			return err
		}
		r.trackLiquidity(t.TokenName)
		r.log.WithToken(t.TokenName, res.Token.String()).Info("Buy settled",
			zap.Uint64("sol_in", res.SolAmount),
			zap.Uint64("tokens_out", res.TokenAmount),
			zap.Uint64("fee", res.Fee))
		return nil

	case task.OperationSell:
		res, err := r.engine.SellTokens(ctx, caller, t.TokenName, t.AmountTokens)
		if err != nil {
			return err
		}
		r.trackLiquidity(t.TokenName)
		r.log.WithToken(t.TokenName, res.Token.String()).Info("Sell settled",
			zap.Uint64("tokens_in", res.TokenAmount),
			zap.Uint64("sol_out", res.SolAmount),
			zap.Uint64("fee", res.Fee))
		return nil

	case task.OperationWithdrawFees:
		amount, err := r.engine.WithdrawFees(ctx, caller)
		if err != nil {
			return err
		}
		r.log.Info("Fees withdrawn", zap.Uint64("amount", amount))
		return nil

	case task.OperationExportTrades:
		return r.exportTrades(ctx, t)
	}
	return fmt.Errorf("unsupported operation %q", t.Operation)
}

// trackLiquidity refreshes the per-token liquidity gauge after a trade.
func (r *Runner) trackLiquidity(name string) {
	info, err := r.engine.GetToken(name)
	if err != nil {
		return
	}
	r.collector.UpdatePoolLiquidity(info.Token.String(), info.RealLiquidity())
}

func (r *Runner) exportTrades(ctx context.Context, t *task.Task) error {
	if r.store == nil {
		return fmt.Errorf("export_trades requires postgres_url to be configured")
	}

	tokenFilter := ""
	if t.TokenName != "" {
		info, err := r.engine.GetToken(t.TokenName)
		if err != nil {
			return err
		}
		tokenFilter = info.Token.String()
	}

	trades, err := r.store.ListTrades(ctx, tokenFilter, exportBatchLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list trades: %w", err)
	}

	_, err = r.exporter.ExportTrades(trades, export.Options{
		Format:      export.Format(t.Format),
		TokenFilter: tokenFilter,
		OutputDir:   t.OutputDir,
	})
	return err
}

// Shutdown drains the event bus and flushes logs.
func (r *Runner) Shutdown() {
	if r.bus != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = r.bus.Shutdown(ctx)
	}
	if r.log != nil {
		_ = r.log.Sync()
	}
}
