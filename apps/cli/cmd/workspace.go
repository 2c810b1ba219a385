package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/hitvars/packages/builtin"
	"github.com/abdul-hamid-achik/hitvars/packages/core/config"
	"github.com/abdul-hamid-achik/hitvars/packages/core/env"
	"github.com/abdul-hamid-achik/hitvars/packages/db"
	"github.com/abdul-hamid-achik/hitvars/packages/output"
	"github.com/spf13/cobra"
)

// stdinName is the argument that reads a document from standard input.
const stdinName = "-"

// workspace holds everything a command needs to resolve placeholders: the
// merged configuration, the built-in functions with their dotenv cache and
// the output formatter.
type workspace struct {
	cfg       *config.Config
	formatter output.Formatter
	funcs     *builtin.Resolver
	resolver  *env.Resolver
	vars      map[string]string
	stdin     io.Reader
}

func newWorkspace(cmd *cobra.Command) (*workspace, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	vars, err := parseVarFlags(varFlags)
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}

	formatter := newFormatter(cmd, cfg)
	cache := builtin.NewDotenvCache(cfg.DotenvDir, builtin.WithDotenvWarnFunc(formatter.FormatWarning))
	funcs := builtin.NewResolver(builtin.WithDotenv(cache))

	return &workspace{
		cfg:       cfg,
		formatter: formatter,
		funcs:     funcs,
		resolver:  env.NewResolver(funcs),
		vars:      vars,
		stdin:     cmd.InOrStdin(),
	}, nil
}

// loadConfig loads the config file (if present) and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	overrides := &config.Config{
		DefaultEnvironment: envFlag,
		EnvironmentsFile:   envFileFlag,
		DotenvDir:          dotenvDirFlag,
		StorePath:          storeFlag,
		Session:            sessionFlag,
	}
	if noColorFlag {
		overrides.NoColor = config.BoolPtr(true)
	}
	return fileConfig.Merge(overrides), nil
}

func newFormatter(cmd *cobra.Command, cfg *config.Config) output.Formatter {
	switch strings.ToLower(outputFlag) {
	case "json":
		return output.NewJSONFormatter(output.JSONWithWriter(cmd.OutOrStdout()))
	default: // "console"
		return output.NewConsoleFormatter(
			output.WithWriter(cmd.OutOrStdout()),
			output.WithErrWriter(cmd.ErrOrStderr()),
			output.WithVerbose(verboseFlag),
			output.WithNoColor(cfg.GetNoColor()),
		)
	}
}

// flush writes buffered output for formatters that accumulate results.
func (w *workspace) flush() error {
	if flushable, ok := w.formatter.(output.Flushable); ok {
		if err := flushable.Flush(); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}
	return nil
}

func parseVarFlags(flags []string) (map[string]string, error) {
	vars := make(map[string]string, len(flags))
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q, expected name=value", f)
		}
		vars[name] = value
	}
	return vars, nil
}

// readDocument reads a request file, or stdin for "-".
func (w *workspace) readDocument(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinName {
		data, err = io.ReadAll(w.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", withExitCode(ExitInputError, fmt.Errorf("reading %s: %w", path, err))
	}
	return string(data), nil
}

// environments loads the configured environments file, or the first one
// found in dir. A nil result means the project has none.
func (w *workspace) environments(dir string) (*env.Environments, error) {
	path := w.cfg.EnvironmentsFile
	if path == "" {
		found, ok := env.FindEnvironments(dir)
		if !ok {
			return nil, nil
		}
		path = found
	}
	envs, err := env.LoadEnvironments(path)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	return envs, nil
}

// scopes assembles the scope layers for a document located in dir: shared
// and active environment variables, the document's own declarations, then
// stored captures and --var values in the request layer.
func (w *workspace) scopes(ctx context.Context, dir, text string) (*env.Scopes, error) {
	envs, err := w.environments(dir)
	if err != nil {
		return nil, err
	}

	scopes := env.NewScopes()
	if envs != nil {
		active := w.cfg.DefaultEnvironment
		if _, ok := envs.Named[active]; !ok && envFlag == "" {
			// the configured default is only a preference
			active = ""
		}
		scopes, err = envs.Scopes(active)
		if err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
	}

	scopes.SetAll(env.SourceFile, env.FileVariables(text))

	captured, err := w.storedCaptures(ctx)
	if err != nil {
		return nil, err
	}
	scopes.SetAll(env.SourceRequest, captured)
	scopes.SetAll(env.SourceRequest, w.vars)
	return scopes, nil
}

// openStore opens the capture store, creating it when create is set. A
// missing store without create yields a nil store.
func (w *workspace) openStore(create bool) (*db.Store, error) {
	path := w.cfg.StorePath
	if path == "" {
		return nil, nil
	}
	if !create {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
	}
	store, err := db.Open(path)
	if err != nil {
		return nil, withExitCode(ExitStoreError, err)
	}
	return store, nil
}

func (w *workspace) storedCaptures(ctx context.Context) (map[string]string, error) {
	store, err := w.openStore(false)
	if err != nil || store == nil {
		return nil, err
	}
	defer store.Close()

	values, err := store.Load(ctx, w.session())
	if err != nil {
		return nil, withExitCode(ExitStoreError, err)
	}
	return values, nil
}

func (w *workspace) session() string {
	if w.cfg.Session == "" {
		return db.DefaultSession
	}
	return w.cfg.Session
}

// documentDir is the directory environment files are searched from.
func documentDir(path string) string {
	if path == stdinName {
		return "."
	}
	return filepath.Dir(path)
}
