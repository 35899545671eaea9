package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fieldscript/fieldscript/internal/config"
	"github.com/fieldscript/fieldscript/internal/job"
	"github.com/fieldscript/fieldscript/internal/keycrypto"
	"github.com/fieldscript/fieldscript/internal/ocr"
	"github.com/fieldscript/fieldscript/internal/server"
	"github.com/fieldscript/fieldscript/internal/server/middleware"
	"github.com/fieldscript/fieldscript/internal/usage"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the FieldScript API server",
		Long:  "Start the HTTP server that accepts OCR submissions and serves job results.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (debug logging, dry-run and /debug endpoints)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	viper.BindPFlag("server.dev", cmd.Flags().Lookup("dev"))

	return cmd
}

func runServe(host string, port int, dev bool) error {
	// Flags override the config file, which overrides defaults.
	fileCfg := config.DefaultYAMLConfig()
	if path := viper.ConfigFileUsed(); path != "" {
		loaded, err := config.LoadYAMLConfig(path)
		if err != nil {
			return err
		}
		fileCfg = loaded
	}
	dev = dev || fileCfg.Server.Dev

	logLevel := slog.LevelInfo
	if dev || fileCfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	}
	var logger *slog.Logger
	if fileCfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	}

	// The pepper gates startup: without it no stored key hash can be
	// verified, so there is nothing useful the server could do.
	pepper, err := resolvePepper()
	if err != nil {
		return err
	}
	hasher, err := keycrypto.New(pepper, false)
	if err != nil {
		return err
	}

	keys, err := openKeyStore(hasher)
	if err != nil {
		return fmt.Errorf("open key store: %w", err)
	}
	defer keys.Close()
	logger.Info("key store initialized", "driver", viper.GetString("store.driver"))

	jobs := job.NewManager(&ocr.StubEngine{}, logger)
	if fileCfg.OCR.MaxImageBytes > 0 && fileCfg.OCR.MaxTotalBytes > 0 {
		jobs.SetCaps(fileCfg.OCR.MaxImageBytes, fileCfg.OCR.MaxTotalBytes)
	}

	rec := usage.NewRecorder()

	srvCfg := server.Config{
		Host:            host,
		Port:            port,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		Dev:             dev,
		RateLimit:       middleware.DefaultRateLimit,
		RateWindow:      middleware.DefaultRateWindow,
	}
	if d, err := time.ParseDuration(fileCfg.Server.ShutdownTimeout); err == nil && d > 0 {
		srvCfg.ShutdownTimeout = d
	}
	if len(fileCfg.Server.CORS.Origins) > 0 {
		srvCfg.CORSOrigins = fileCfg.Server.CORS.Origins
	}
	if fileCfg.RateLimit.Requests > 0 {
		srvCfg.RateLimit = fileCfg.RateLimit.Requests
	}
	if d, err := time.ParseDuration(fileCfg.RateLimit.Window); err == nil && d > 0 {
		srvCfg.RateWindow = d
	}

	srv := server.New(srvCfg, keys, jobs, rec, logger)

	fmt.Printf("→ FieldScript %s\n", versionString())
	fmt.Printf("→ Listening on http://%s:%d\n", host, port)
	fmt.Printf("→ OpenAPI:    http://%s:%d/openapi.json\n", host, port)
	fmt.Printf("→ Health:     http://%s:%d/health\n", host, port)
	if dev {
		fmt.Printf("→ Dev mode:   dry-run and /debug endpoints enabled\n")
	}
	fmt.Println()

	return srv.ListenAndServe()
}
