package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/orbitalworks/refinery/internal/config"
	"github.com/orbitalworks/refinery/internal/data"
	"github.com/orbitalworks/refinery/internal/db"
	"github.com/orbitalworks/refinery/internal/game/converter"
	"github.com/orbitalworks/refinery/internal/sim"
	"github.com/orbitalworks/refinery/internal/telemetry"
	"github.com/orbitalworks/refinery/internal/world"
)

const ConfigPath = "config/refineryd.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("REFINERY_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadRefinery(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("refineryd starting",
		"log_level", cfg.LogLevel,
		"tick_interval", cfg.Sim.TickInterval,
		"timestep", cfg.Sim.Timestep)

	// Load the recipe registry.
	registry, err := data.LoadRecipes(cfg.Recipes.Path)
	if err != nil {
		return fmt.Errorf("loading recipes: %w", err)
	}

	var sinks []sim.Sink

	// Telemetry database is optional.
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		sinks = append(sinks, db.NewTelemetryRepository(database.Pool()))
	}

	var hub *telemetry.Hub
	if cfg.Telemetry.Enabled {
		hub = telemetry.NewHub()
		sinks = append(sinks, hub)
	}

	manager := sim.NewManager(cfg.Sim.TickInterval, cfg.Sim.Timestep, sinks...)
	if err := buildUnits(manager, cfg.Vessels); err != nil {
		return err
	}
	manager.ResolveAll(registry)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := manager.Run(gctx); err != nil {
			return fmt.Errorf("tick manager: %w", err)
		}
		return nil
	})

	if cfg.Recipes.Watch {
		g.Go(func() error {
			if err := registry.Watch(gctx, func() {
				manager.RequestResolve(registry)
			}); err != nil {
				return fmt.Errorf("recipe watcher: %w", err)
			}
			return nil
		})
	}

	if hub != nil {
		addr := net.JoinHostPort(cfg.Telemetry.BindAddress, strconv.Itoa(cfg.Telemetry.Port))
		mux := http.NewServeMux()
		mux.Handle("/telemetry", hub)
		srv := &http.Server{Addr: addr, Handler: mux}

		g.Go(func() error {
			slog.Info("starting telemetry server", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("telemetry server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// buildUnits constructs vessels and converter instances from config and
// registers them with the tick manager.
func buildUnits(manager *sim.Manager, vessels []config.Vessel) error {
	for _, vc := range vessels {
		if vc.Name == "" {
			return fmt.Errorf("vessel without a name in config")
		}

		vessel := world.NewVessel(vc.Name, vc.BaseTemperature, vc.HeatCapacity)
		for _, tc := range vc.Tanks {
			vessel.AddTank(tc.Resource, tc.Amount, tc.Capacity)
		}

		unit := &sim.Unit{Vessel: vessel}
		for _, cc := range vc.Converters {
			curve := converter.DefaultCurve()
			if cc.MinTemp != 0 {
				curve.MinTemp = cc.MinTemp
			}
			if cc.MaxTemp != 0 {
				curve.MaxTemp = cc.MaxTemp
			}

			conv := converter.New(converter.Config{
				RecipeName: cc.Recipe,
				Rate:       cc.Rate,
				Curve:      curve,
			})
			unit.Instances = append(unit.Instances, &sim.Instance{
				Conv:   conv,
				Active: cc.Active,
			})
		}

		manager.AddUnit(unit)
		slog.Info("vessel configured",
			"vessel", vc.Name,
			"tanks", len(vc.Tanks),
			"converters", len(vc.Converters))
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
