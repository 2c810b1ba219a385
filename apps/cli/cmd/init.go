package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/abdul-hamid-achik/hitvars/packages/core/config"
	"github.com/abdul-hamid-achik/hitvars/packages/core/env"
	"github.com/abdul-hamid-achik/hitvars/packages/import/openapi"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	forceInit       bool
	fromOpenAPIFlag string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new hitvars project",
	Long: `Initialize a new hitvars project in the current directory.

This creates:
  - hitvars.env.yaml       - Shared and per-environment variables
  - .hitvars.config.json   - Configuration file
  - example.http           - Example request file

With --from-openapi, one environment is created per server of an OpenAPI
document instead of the example environments.

Examples:
  hitvars init
  hitvars init --force
  hitvars init --from-openapi openapi.yaml`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
	initCmd.Flags().StringVar(&fromOpenAPIFlag, "from-openapi", "", "Derive environments from the servers of an OpenAPI file or URL")
}

const exampleRequestFile = `@apiVersion = v1

### Log in
# @name login
# @capture token = $.access_token
# @capture requestId = headers.X-Request-Id
POST {{baseUrl}}/{{apiVersion}}/login
Content-Type: application/json
X-Request-Id: {{$guid}}

{
  "user": "{{user}}",
  "password": "{{$dotenv API_PASSWORD}}",
  "issuedAt": "{{$datetime iso8601}}"
}

### Fetch the current user
GET {{baseUrl}}/{{apiVersion}}/me
Authorization: Bearer {{token}}
If-Modified-Since: {{$datetime rfc1123 -1 d}}
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	envFile := filepath.Join(cwd, "hitvars.env.yaml")
	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	exampleFile := filepath.Join(cwd, "example.http")

	if !forceInit {
		for _, f := range []string{envFile, configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	environments, err := initEnvironments(cmd)
	if err != nil {
		return err
	}

	envYAML, err := yaml.Marshal(environments)
	if err != nil {
		return err
	}
	if err := os.WriteFile(envFile, envYAML, 0644); err != nil {
		return fmt.Errorf("failed to create environments file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", envFile)

	cfg := config.DefaultConfig()
	if names := environments.Names(); len(names) > 0 && !slices.Contains(names, cfg.DefaultEnvironment) {
		cfg.DefaultEnvironment = names[0]
	}
	cfg.Headers = map[string]string{"User-Agent": "hitvars/" + version}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(exampleFile, []byte(exampleRequestFile), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nhitvars project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'hitvars list example.http' to see the variables in scope.\n")

	return nil
}

func initEnvironments(cmd *cobra.Command) (*env.Environments, error) {
	if fromOpenAPIFlag == "" {
		return &env.Environments{
			Shared: map[string]string{"user": "demo"},
			Named: map[string]map[string]string{
				"dev":     {"baseUrl": "http://localhost:3000"},
				"staging": {"baseUrl": "https://staging.api.example.com"},
				"prod":    {"baseUrl": "https://api.example.com"},
			},
		}, nil
	}

	envs, err := openapi.NewConverter().ConvertFile(cmd.Context(), fromOpenAPIFlag)
	if err != nil {
		return nil, withExitCode(ExitInputError, err)
	}
	if len(envs.Named) == 0 {
		return nil, withExitCode(ExitInputError, fmt.Errorf("%s declares no servers", fromOpenAPIFlag))
	}
	return envs, nil
}
