package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/percy-raskova/babylon-sub001/internal/api"
	"github.com/percy-raskova/babylon-sub001/internal/config"
	"github.com/percy-raskova/babylon-sub001/internal/event"
	"github.com/percy-raskova/babylon-sub001/internal/hydrate"
	"github.com/percy-raskova/babylon-sub001/internal/observer"
	"github.com/percy-raskova/babylon-sub001/internal/persistence"
	"github.com/percy-raskova/babylon-sub001/internal/sim"
	"github.com/percy-raskova/babylon-sub001/internal/world"
)

func newRunCmd() *cobra.Command {
	var (
		configPath    string
		scenarioPath  string
		ticks         uint64
		seed          int64
		dbPath        string
		listenAddr    string
		snapshotEvery uint64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation to its tick limit or endgame",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}

			var initial *world.State
			if scenarioPath != "" {
				var err error
				initial, err = hydrate.LoadFile(scenarioPath)
				if err != nil {
					return err
				}
			} else {
				gen := hydrate.DefaultGenConfig()
				gen.Seed = seed
				initial = hydrate.Generate(gen)
				slog.Info("generated scenario", "seed", seed,
					"classes", len(initial.Classes), "territories", len(initial.Territories))
			}

			bus := event.NewBus()
			metrics := observer.NewMetrics()
			narrative := observer.NewNarrative()
			topology := observer.NewTopology()
			detector := observer.NewEndgame(cfg.Endgame)
			for _, o := range []event.Observer{metrics, narrative, topology, detector} {
				if err := bus.Register(o); err != nil {
					return err
				}
			}

			loop, err := sim.New(cfg, initial, seed, bus)
			if err != nil {
				return err
			}

			if dbPath != "" {
				db, err := persistence.Open(dbPath)
				if err != nil {
					return err
				}
				defer db.Close()

				rawCfg, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("marshal config: %w", err)
				}
				if err := db.CreateRun(loop.RunID(), seed, string(rawCfg)); err != nil {
					return err
				}
				if err := bus.Register(persistence.NewRecorder(db, loop.RunID(), snapshotEvery)); err != nil {
					return err
				}
			}

			var relay *api.Relay
			if listenAddr != "" {
				relay = api.NewRelay()
				if err := bus.Register(relay); err != nil {
					return err
				}
				srv := &api.Server{
					Loop:     loop,
					Metrics:  metrics,
					Topology: topology,
					Relay:    relay,
					Addr:     listenAddr,
				}
				srv.Start()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			final, err := loop.Run(ctx, ticks)
			if err != nil {
				return err
			}
			if relay != nil {
				relay.Close()
			}

			slog.Info("final state",
				"tick", final.Tick,
				"digest", final.Digest(),
				"narrative_beats", narrative.Pending(),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file (defaults built in)")
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "snapshot JSON to hydrate from (default: generated)")
	cmd.Flags().Uint64Var(&ticks, "ticks", 1000, "tick limit (0 = run to endgame)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random stream seed")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database for run persistence")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "observation API address (e.g. :8080)")
	cmd.Flags().Uint64Var(&snapshotEvery, "snapshot-every", 100, "persist a snapshot every N ticks")
	return cmd
}
