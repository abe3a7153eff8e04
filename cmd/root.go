package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devtoy/cli/internal/auth"
	"github.com/devtoy/cli/internal/config"
	"github.com/devtoy/cli/internal/devto"
	"github.com/devtoy/cli/internal/logging"
)

var (
	// Resolved per invocation in PersistentPreRunE
	cfg      *config.Config
	logger   *slog.Logger
	keyStore *auth.Store

	// Command line flags
	cfgFile string
	verbose bool
	noColor bool
	version = "1.0.0" // This will be set during build
)

// flagKeys maps flag names to the config keys they override
var flagKeys = map[string]string{
	"base-url":    config.KeyBaseURL,
	"key-file":    config.KeyKeyFile,
	"timeout":     config.KeyTimeout,
	"log-level":   config.KeyLogLevel,
	"formatter":   config.KeyFormatter,
	"concurrency": config.KeyConcurrency,
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "devtoy",
	Short: "devtoy - list and export your dev.to articles",
	Long: `devtoy talks to the dev.to API with your personal API key. It lists your
published articles and downloads them as formatted markdown files.

The API key is requested on first use and cached under the system temp
directory until you run 'devtoy auth logout'.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// setup resolves configuration and builds the shared logger and key store
func setup(cmd *cobra.Command, args []string) error {
	v := viper.New()
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}

	used, err := config.Init(v, cfgFile)
	if err != nil {
		return err
	}

	c, err := config.Load(v)
	if err != nil {
		return err
	}
	if verbose {
		c.LogLevel = "debug"
	}
	cfg = c

	logger = logging.New(os.Stderr, cfg.LogLevel)
	if used != "" {
		logger.Debug("using config file", slog.String("path", used))
	}

	configureColor(noColor || os.Getenv("NO_COLOR") != "")
	keyStore = auth.NewStore(cfg.KeyFile, nil)
	return nil
}

// newClient builds an API client that obtains the key from the shared store
func newClient() *devto.Client {
	client := devto.NewClient(cfg.BaseURL, keyStore)
	client.Timeout = cfg.Timeout
	client.Logger = logger
	return client
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./devtoy.yaml or ~/.config/devtoy/devtoy.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "dev.to API base URL (default "+devto.DefaultBaseURL+")")
	rootCmd.PersistentFlags().String("key-file", "", "Where the API key is cached (default "+auth.DefaultPath()+")")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP timeout for API calls (default 1m0s)")
	rootCmd.PersistentFlags().String("log-level", "", "Diagnostic log level: debug, info, warn, error (default warn)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Add version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of devtoy",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("devtoy v%s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)
}
