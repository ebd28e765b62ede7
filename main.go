// hostwatch — self-contained host observability agent.
// Samples CPU/memory on an interval, evaluates thresholds into alerts, and
// serves summarized views through a session-authenticated REST API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"hostwatch/internal/auth"
	"hostwatch/internal/collector"
	"hostwatch/internal/config"
	"hostwatch/internal/logscan"
	"hostwatch/internal/report"
	"hostwatch/internal/server"
	"hostwatch/internal/store"
)

const asciiLogo = `
 ██╗  ██╗ ██████╗ ███████╗████████╗██╗    ██╗ █████╗ ████████╗ ██████╗██╗  ██╗
 ██║  ██║██╔═══██╗██╔════╝╚══██╔══╝██║    ██║██╔══██╗╚══██╔══╝██╔════╝██║  ██║
 ███████║██║   ██║███████╗   ██║   ██║ █╗ ██║███████║   ██║   ██║     ███████║
 ██╔══██║██║   ██║╚════██║   ██║   ██║███╗██║██╔══██║   ██║   ██║     ██╔══██║
 ██║  ██║╚██████╔╝███████║   ██║   ╚███╔███╔╝██║  ██║   ██║   ╚██████╗██║  ██║
 ╚═╝  ╚═╝ ╚═════╝ ╚══════╝   ╚═╝    ╚══╝╚══╝ ╚═╝  ╚═╝   ╚═╝    ╚═════╝╚═╝  ╚═╝
`

const version = "v0.1.0"

func printBanner(mode string) {
	fmt.Printf("%s\n", asciiLogo)
	fmt.Printf("  ► hostwatch %s  |  Mode: %s\n\n", version, mode)
}

func main() {
	root := &cobra.Command{
		Use:          "hostwatch",
		Short:        "hostwatch — single-binary host observability agent",
		Long:         `hostwatch samples host CPU and memory usage, raises threshold alerts, and exposes metrics, alerts, and summary reports over an authenticated REST API.`,
		SilenceUsage: true,
	}

	// ── server subcommand ─────────────────────────────────────────────────────
	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start the hostwatch agent and API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner("SERVER")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			db, err := store.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}

			samples := store.NewSampleStore(db)
			alerts := store.NewAlertStore(db)
			users := store.NewUserStore(db)

			sessions := auth.NewManager(users, time.Duration(cfg.SessionTTL)*time.Second)
			thresholds := collector.NewRegistry(cfg.CPULimit, cfg.MemoryLimit)
			summarizer := report.NewSummarizer(samples, alerts)

			coll := collector.New(samples, alerts, thresholds, collector.HostSampler{},
				time.Duration(cfg.CollectInterval)*time.Second, cfg.MaxSamples)
			coll.Start()
			defer coll.Stop()

			gin.SetMode(gin.ReleaseMode)
			engine := gin.New()
			engine.Use(gin.Recovery(), server.CORSMiddleware())

			api := &server.API{
				Sessions:   sessions,
				Summarizer: summarizer,
				Thresholds: thresholds,
				Collector:  coll,
			}
			api.RegisterRoutes(engine)
			server.RegisterStaticFiles(engine)

			addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
			limits := thresholds.Get()
			fmt.Printf("  ✓ API + status page → http://%s\n", addr)
			fmt.Printf("  ✓ Sampling every %ds (thresholds: cpu %.0f%% / memory %.0f%%)\n\n",
				cfg.CollectInterval, limits.CPU, limits.Memory)

			srv := &http.Server{Addr: addr, Handler: engine}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt)

			select {
			case err := <-errCh:
				return err
			case <-quit:
				fmt.Println("\n  → Shutting down gracefully…")
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(ctx)
				return nil
			}
		},
	}

	// ── genlogs subcommand ────────────────────────────────────────────────────
	genlogsCmd := &cobra.Command{
		Use:   "genlogs",
		Short: "Generate a sample log file for the analyzer",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			count, _ := cmd.Flags().GetInt("count")
			if err := logscan.WriteSampleLog(file, count); err != nil {
				return err
			}
			fmt.Printf("  ✓ Generated %d log entries in %q\n", count, file)
			return nil
		},
	}
	genlogsCmd.Flags().String("file", "sample.log", "Output log file path")
	genlogsCmd.Flags().Int("count", 200, "Number of log entries to generate")

	// ── version subcommand ────────────────────────────────────────────────────
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print hostwatch version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hostwatch %s\n", version)
		},
	}

	root.AddCommand(serverCmd, genlogsCmd, versionCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
