package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/arthur-debert/listings/formats"
	"github.com/arthur-debert/listings/listings/store"
	"github.com/arthur-debert/listings/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settings is the effective configuration of one invocation: the store
// configuration plus the options that only concern the command line.
type settings struct {
	types.Config `mapstructure:",squash" yaml:",inline"`

	Format   string `mapstructure:"format" yaml:"format"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`
	Yes      bool   `mapstructure:"yes" yaml:"yes"`
}

// CLI implements the Viper-driven listings command line
type CLI struct {
	rootCmd   *cobra.Command
	viperInst *viper.Viper

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	settings  settings
	logger    *slog.Logger
	logCloser io.Closer

	// storeOpts are appended to the options every command opens the store with
	storeOpts []store.Option
}

// NewCLI creates the command tree reading from in and writing to out and errOut
func NewCLI(in io.Reader, out, errOut io.Writer, storeOpts ...store.Option) *CLI {
	cli := &CLI{
		viperInst: viper.New(),
		in:        in,
		out:       out,
		errOut:    errOut,
		logger:    slog.New(slog.DiscardHandler),
		storeOpts: storeOpts,
	}

	cli.setupViperConfig()
	cli.createRootCommand()
	cli.addCommands()

	return cli
}

// setupViperConfig registers defaults and environment variable support.
// Config files are read once flags are parsed, see loadSettings.
func (cli *CLI) setupViperConfig() {
	def := types.DefaultConfig()
	defaults := map[string]any{
		"data_dir":             def.DataDir,
		"recovery_dir":         def.RecoveryDir,
		"backup_file":          def.BackupFile,
		"report_file":          def.ReportFile,
		"recovery_text_file":   def.RecoveryTextFile,
		"recovery_binary_file": def.RecoveryBinaryFile,
		"capacity":             def.Capacity,
		"startup_policy":       string(def.StartupPolicy),
		"malformed_lines":      string(def.MalformedLines),
		"format":               formats.Table.Name,
		"log_level":            "warn",
		"verbose":              false,
		"yes":                  false,
	}
	for key, value := range defaults {
		cli.viperInst.SetDefault(key, value)
	}

	// LISTINGS_DATA_DIR, LISTINGS_STARTUP_POLICY, ...
	cli.viperInst.SetEnvPrefix("LISTINGS")
	cli.viperInst.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cli.viperInst.AutomaticEnv()
}

// createRootCommand creates the root Cobra command with Viper integration
func (cli *CLI) createRootCommand() {
	cli.rootCmd = &cobra.Command{
		Use:   "listings",
		Short: "Listings CLI - real-estate listing record store",
		Long: `Listings keeps up to 100 real-estate listings and mirrors every change
to a recovery snapshot (text and binary) so the next run can pick up
where this one stopped.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (LISTINGS_*)
3. Configuration file (--config, LISTINGS_CONFIG or listings.yaml in
   ., ~/.listings or /etc/listings)
4. Built-in defaults

Examples:
  listings add --ref 12 --broker "Ivan Petrov" --type Apartment --area Center \
    --exposition South --price 250000 --total-area 85 --rooms 3 --floor 4
  listings list --format json
  listings update 12 status reserved
  listings report sold-by-broker
  listings backup save --file /tmp/properties.bin`,

		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.loadSettings()
		},
	}

	cli.rootCmd.SetIn(cli.in)
	cli.rootCmd.SetOut(cli.out)
	cli.rootCmd.SetErr(cli.errOut)

	cli.addGlobalFlags()
}

// addGlobalFlags adds persistent flags that apply to all commands
func (cli *CLI) addGlobalFlags() {
	flags := cli.rootCmd.PersistentFlags()

	flags.StringP("config", "c", "", "Configuration file (default listings.yaml)")
	flags.StringP("data-dir", "d", "", "Directory for backup, report and recovery files")
	flags.StringP("format", "f", "", fmt.Sprintf("Output format (%s)", strings.Join(formats.List(), "|")))
	flags.String("startup-policy", "", "Recovery snapshot handling on start (auto|confirm|ignore)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.BoolP("yes", "y", false, "Answer yes to every confirmation")
	flags.BoolP("verbose", "v", false, "Also write log records to stderr")

	for key, flag := range map[string]string{
		"data_dir":       "data-dir",
		"format":         "format",
		"startup_policy": "startup-policy",
		"log_level":      "log-level",
		"yes":            "yes",
		"verbose":        "verbose",
	} {
		_ = cli.viperInst.BindPFlag(key, flags.Lookup(flag))
	}
}

// loadSettings reads the config file, resolves every source into
// cli.settings and starts logging.
func (cli *CLI) loadSettings() error {
	if err := cli.readConfigFile(); err != nil {
		return NewConfigError("read configuration", err)
	}

	var s settings
	if err := cli.viperInst.Unmarshal(&s); err != nil {
		return NewConfigError("decode configuration", err)
	}
	s.StartupPolicy = types.StartupPolicy(strings.ToLower(string(s.StartupPolicy)))
	s.MalformedLines = types.MalformedPolicy(strings.ToLower(string(s.MalformedLines)))
	s.Format = strings.ToLower(s.Format)
	if err := s.Validate(); err != nil {
		return NewConfigError("validate configuration", err)
	}
	if _, err := formats.Get(s.Format); err != nil {
		return NewFormatError(s.Format)
	}
	cli.settings = s

	logger, closer, err := initLogging(s.LogLevel, s.Verbose, cli.errOut)
	if err != nil {
		// The store still works without a log file.
		fmt.Fprintf(cli.errOut, "Warning: %v\n", err)
		return nil
	}
	cli.logger, cli.logCloser = logger, closer
	cli.logger.Debug("configuration loaded", "config_file", cli.viperInst.ConfigFileUsed(), "data_dir", s.DataDir)
	return nil
}

// readConfigFile honours --config, then LISTINGS_CONFIG, then the default
// search path. A missing default file is not an error.
func (cli *CLI) readConfigFile() error {
	configFile, _ := cli.rootCmd.PersistentFlags().GetString("config")
	if configFile == "" {
		configFile = os.Getenv("LISTINGS_CONFIG")
	}

	if configFile != "" {
		cli.viperInst.SetConfigFile(configFile)
	} else {
		cli.viperInst.SetConfigName("listings")
		cli.viperInst.SetConfigType("yaml")
		cli.viperInst.AddConfigPath(".")
		cli.viperInst.AddConfigPath("$HOME/.listings")
		cli.viperInst.AddConfigPath("/etc/listings")
	}

	err := cli.viperInst.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

// openService opens the store with the effective settings and reports
// anything unusual about the recovery snapshot on stderr.
func (cli *CLI) openService() (*store.Service, error) {
	opts := append([]store.Option{
		store.WithLogger(cli.logger),
		store.WithConfirmer(newConfirmer(cli.settings.Yes, cli.in, cli.errOut)),
	}, cli.storeOpts...)

	svc, err := store.Open(cli.settings.Config, opts...)
	if err != nil {
		return nil, WrapError("open store", err, CommonSuggestions.CheckDataDir)
	}

	report := svc.Startup()
	if report.Err != nil {
		fmt.Fprintf(cli.errOut, "Warning: recovery data is corrupt, starting with an empty store: %v\n", report.Err)
	}
	if report.TextErr != nil {
		fmt.Fprintf(cli.errOut, "Warning: recovery text file unusable, restored from the binary snapshot: %v\n", report.TextErr)
	}
	if report.Skipped > 0 {
		fmt.Fprintf(cli.errOut, "Warning: skipped %d malformed recovery line(s)\n", report.Skipped)
	}
	return svc, nil
}

// render writes v in the configured output format
func (cli *CLI) render(v any) error {
	f, err := formats.Get(cli.settings.Format)
	if err != nil {
		return NewFormatError(cli.settings.Format)
	}
	return f.Render(cli.out, v)
}

// human reports whether the output format is meant to be read by people.
// Status lines are suppressed for the structured formats.
func (cli *CLI) human() bool {
	return cli.settings.Format != formats.JSON.Name && cli.settings.Format != formats.YAML.Name
}

func (cli *CLI) printf(format string, args ...any) {
	if cli.human() {
		fmt.Fprintf(cli.out, format, args...)
	}
}

// addCommands adds all the CLI commands
func (cli *CLI) addCommands() {
	cli.addAddCommand()
	cli.addGetCommand()
	cli.addListCommand()
	cli.addDeleteCommand()
	cli.addUpdateCommand()

	cli.addSearchCommand()
	cli.addSortCommand()
	cli.addReportCommand()

	cli.addBackupCommand()
	cli.addExportCommand()
	cli.addArchiveCommand()
	cli.addConfigCommand()
}

// Execute runs the CLI with os.Args
func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// Run executes args and returns the process exit code. An empty query
// result is informational and exits zero.
func (cli *CLI) Run(args []string) int {
	cli.rootCmd.SetArgs(args)
	err := cli.Execute()
	if cli.logCloser != nil {
		_ = cli.logCloser.Close()
		cli.logCloser = nil
	}
	if err == nil {
		return 0
	}
	if errors.Is(err, types.ErrNoMatch) {
		fmt.Fprintf(cli.out, "%s.\n", capitalize(err.Error()))
		return 0
	}
	fmt.Fprintf(cli.errOut, "Error: %v\n", err)
	return 1
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// GetRootCommand returns the root Cobra command for testing
func (cli *CLI) GetRootCommand() *cobra.Command {
	return cli.rootCmd
}
