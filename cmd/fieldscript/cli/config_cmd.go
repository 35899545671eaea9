package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage FieldScript configuration",
		Long:  "Initialize a default configuration file or display the current effective configuration.",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

// ---------- config init ----------

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default fieldscript.yaml configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")

	return cmd
}

const defaultConfig = `# FieldScript Configuration

server:
  host: 0.0.0.0
  port: 8080
  shutdown_timeout: 30s
  dev: false
  cors:
    origins:
      - "*"

# API key hashing. The pepper is mixed into every key hash; rotating it
# invalidates all stored keys. Prefer the FIELDSCRIPT_AUTH_PEPPER env var.
auth:
  pepper: ""

# Key store backend: sqlite (default, lives in the data dir), postgres, mysql
store:
  driver: sqlite
  dsn: ""

# Payload limits for OCR submissions (bytes, estimated before decoding)
ocr:
  max_image_bytes: 10485760
  max_total_bytes: 20971520

# Fixed-window rate limiting per client IP
rate_limit:
  requests: 60
  window: 60s

# Logging
logging:
  level: info    # debug, info, warn, error
  format: text   # text or json
`

func runConfigInit(force bool) error {
	path := "fieldscript.yaml"

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println("Set auth.pepper (or FIELDSCRIPT_AUTH_PEPPER), then run 'fieldscript serve'.")
	return nil
}

// ---------- config show ----------

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}

	return cmd
}

func runConfigShow() error {
	initConfig()

	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		fmt.Printf("Config file: %s\n", configFile)
	} else {
		fmt.Println("Config file: (none found, using defaults)")
	}
	fmt.Println()

	settings := viper.AllSettings()
	if len(settings) == 0 {
		fmt.Println("No configuration settings loaded.")
		fmt.Println("Run 'fieldscript config init' to create a default configuration file.")
		return nil
	}

	// Never print the pepper, even masked length would leak.
	if auth, ok := settings["auth"].(map[string]interface{}); ok {
		if _, ok := auth["pepper"]; ok {
			auth["pepper"] = "(redacted)"
		}
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	os.Stdout.Write(data)

	return nil
}
