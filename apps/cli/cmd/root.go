package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/hitvars/packages/core/errs"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag    string
	envFlag       string
	envFileFlag   string
	dotenvDirFlag string
	varFlags      []string
	sessionFlag   string
	storeFlag     string
	outputFlag    string
	noColorFlag   bool
	verboseFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "hitvars",
	Short: "Resolve {{placeholders}} in request files.",
	Long: `hitvars resolves {{...}} placeholders in HTTP request files against
environments, file variables, captured response values and built-in
functions such as {{$guid}} or {{$timestamp -1 d}}.

Values captured from responses with "# @capture name = $.path" are kept
per session so later requests can use them.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits with the status of the failure.
func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFlag, "config", getEnvString("HITVARS_CONFIG", ""), "Path to config file (env: HITVARS_CONFIG)")
	flags.StringVarP(&envFlag, "env", "e", getEnvString("HITVARS_ENV", ""), "Environment to use (env: HITVARS_ENV)")
	flags.StringVar(&envFileFlag, "env-file", getEnvString("HITVARS_ENV_FILE", ""), "Path to environments file (env: HITVARS_ENV_FILE)")
	flags.StringVar(&dotenvDirFlag, "dotenv-dir", getEnvString("HITVARS_DOTENV_DIR", ""), "Directory where the .env search starts (env: HITVARS_DOTENV_DIR)")
	flags.StringArrayVar(&varFlags, "var", nil, "Set a request variable (name=value), may be repeated")
	flags.StringVarP(&sessionFlag, "session", "s", getEnvString("HITVARS_SESSION", ""), "Capture session name (env: HITVARS_SESSION)")
	flags.StringVar(&storeFlag, "store", getEnvString("HITVARS_STORE", ""), "Path to the capture store (env: HITVARS_STORE)")
	flags.StringVarP(&outputFlag, "output", "o", getEnvString("HITVARS_OUTPUT", "console"), "Output format: console, json (env: HITVARS_OUTPUT)")
	flags.BoolVar(&noColorFlag, "no-color", getEnvBool("HITVARS_NO_COLOR", false), "Disable colored output (env: HITVARS_NO_COLOR)")
	flags.BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("HITVARS_VERBOSE", false), "Verbose output (env: HITVARS_VERBOSE)")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(capturesCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

// exitError carries a specific exit status out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func exitCodeFor(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if _, ok := errs.KindOf(err); ok {
		return ExitResolveFailure
	}
	return ExitUsageError
}

// errResolveFailed is returned once failures have already been reported.
var errResolveFailed = withExitCode(ExitResolveFailure, fmt.Errorf("resolution failed"))
