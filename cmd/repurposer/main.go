package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/TobiSchelling/repurposer/internal/backend"
	"github.com/TobiSchelling/repurposer/internal/cache"
	"github.com/TobiSchelling/repurposer/internal/config"
	"github.com/TobiSchelling/repurposer/internal/database"
	"github.com/TobiSchelling/repurposer/internal/fetch"
	"github.com/TobiSchelling/repurposer/internal/llm"
	"github.com/TobiSchelling/repurposer/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	logger     = zap.NewNop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "repurposer",
	Short:        "Turn one piece of writing into platform-ready posts",
	Long:         "Repurposer adapts an article or URL into Twitter/X threads, LinkedIn and Instagram posts, newsletters, email sequences and summaries.",
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return setupLogger("info")
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return setupLogger(cfg.Logging.Level)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(apiKeyCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(serveCmd)
}

func setupLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	logger = l
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("repurposer", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/repurposer/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to choose an LLM provider, then set a key with: repurposer apikey set")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		stats, err := svc.db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}
		usage, err := svc.GetUsage(cmd.Context())
		if err != nil {
			return fmt.Errorf("getting usage: %w", err)
		}
		key, err := svc.GetAPIKey()
		if err != nil {
			return err
		}

		fmt.Printf("Database: %s\n\n", svc.db.Path())
		fmt.Println("Content:")
		fmt.Printf("  Submissions: %d\n", stats.Inputs)
		fmt.Printf("  Outputs: %d\n", stats.Outputs)
		fmt.Printf("  Brand voices: %d\n", stats.Voices)
		fmt.Println("\nProvider:")
		fmt.Printf("  LLM: %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
		switch {
		case key != "":
			fmt.Printf("  API key: %s (stored)\n", key)
		case cfg.EnvAPIKey() != "":
			fmt.Printf("  API key: from $%s\n", cfg.LLM.APIKeyEnv)
		default:
			fmt.Println("  API key: not set")
		}
		fmt.Println("\nUsage:")
		fmt.Printf("  %s\n", usageLine(usage))
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		addr := fmt.Sprintf("localhost:%d", port)
		fmt.Printf("Starting server at http://%s/api\n", addr)
		fmt.Println("Press Ctrl+C to stop")
		logger.Info("server listening", zap.String("addr", addr))
		return http.ListenAndServe(addr, server.New(svc, logger).Handler())
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

// service is the local backend plus the database it owns.
type service struct {
	*backend.Local
	db *database.DB
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(cfg.DBPath(), logger)
}

// openBackend opens the database, the optional fetch cache and the backend.
// The returned func releases them.
func openBackend() (*service, func(), error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	closers := []func() error{db.Close}

	fetchOpts := []fetch.Option{fetch.WithLogger(logger), fetch.WithUserAgent(cfg.Fetch.UserAgent)}
	if cfg.Cache.RedisAddr != "" {
		client, err := cache.Connect(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			logger.Warn("fetch cache disabled", zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
		} else {
			rc := cache.NewRedisCache(client, "repurposer:fetch:", cfg.CacheTTL(), logger)
			fetchOpts = append(fetchOpts, fetch.WithCache(rc))
			closers = append(closers, rc.Close)
		}
	}

	b := backend.New(db, fetch.New(cfg.FetchTimeout(), fetchOpts...), backend.Options{
		NewProvider: func(key string) (llm.Provider, error) {
			return llm.CreateProvider(llm.Settings{
				Provider:  cfg.LLM.Provider,
				Model:     cfg.LLM.Model,
				APIKey:    key,
				BaseURL:   cfg.LLM.BaseURL,
				OllamaURL: cfg.LLM.OllamaURL,
			})
		},
		Provider:     cfg.LLM.Provider,
		EnvAPIKey:    cfg.EnvAPIKey(),
		Defaults:     cfg.PlatformDefaults(),
		MonthlyLimit: cfg.Usage.MonthlyLimit,
		MaxTokens:    cfg.LLM.MaxTokens,
		ExportDir:    cfg.ExportDir(),
	}, logger)

	done := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Debug("close failed", zap.Error(err))
			}
		}
	}
	return &service{Local: b, db: db}, done, nil
}
