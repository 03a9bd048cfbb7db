package cmd

import (
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/mfalkner/partdesk/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront web server",
	Long: `Start the storefront web server with the embedded chat widget.

The server renders the demo storefront page and exposes the conversation
API the widget uses.

Examples:
  # Start with defaults (localhost:8080)
  partdesk serve

  # Start on custom host and port
  partdesk serve --host 0.0.0.0 --port 3000

  # Disable CORS (behind a reverse proxy)
  partdesk serve --no-cors`,
	RunE: runServe,
}

var (
	serveHost   string
	servePort   int
	serveNoCORS bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "",
		"Host address to bind to")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0,
		"Port to listen on")
	serveCmd.Flags().BoolVar(&serveNoCORS, "no-cors", false,
		"Disable CORS headers")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Serve.Host = serveHost
	}
	if servePort != 0 {
		cfg.Serve.Port = servePort
	}
	if serveNoCORS {
		cfg.Serve.EnableCORS = false
	}

	logger := newLogger(cfg)

	client, err := newAssistant(cfg, logger)
	if err != nil {
		return err
	}

	server, err := web.NewServer(client,
		web.WithLogger(logger),
		web.WithConfig(web.Config{
			Host:       cfg.Serve.Host,
			Port:       cfg.Serve.Port,
			EnableCORS: cfg.Serve.EnableCORS,
		}),
	)
	if err != nil {
		return err
	}

	// Pick up log-level edits without a restart.
	viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("config file changed", "file", e.Name)
		logger.SetLevel(viper.GetString("log.level"))
	})
	viper.WatchConfig()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx)
	})

	logger.Info("storefront server running",
		"addr", server.Addr(),
		"assistant", cfg.Assistant.BaseURL,
		"cors", cfg.Serve.EnableCORS,
	)

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
