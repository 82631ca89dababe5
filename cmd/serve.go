package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gamedrops/droplist/handler"
	"github.com/gamedrops/droplist/registry"
	"github.com/gamedrops/droplist/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const serveDescription = `` +
	`Runs the subscription API as a plain HTTP server backed by the GitHub
document store, for self-hosted deployments that don't use the Lambda.

Settings come from a YAML config file:

  addr: ":8080"
  github_token: "ghp_..."
  repo_owner: "gamedrops"
  repo_name: "drops-data"
  subscribers_path: "subscribers.json"

Any setting absent from the file falls back to the corresponding environment
variable (ADDR, GITHUB_TOKEN, REPO_OWNER, REPO_NAME, SUBSCRIBERS_PATH).`

// ServeConfig holds the self-hosted server's settings.
type ServeConfig struct {
	Addr            string `yaml:"addr"`
	GitHubToken     string `yaml:"github_token"`
	RepoOwner       string `yaml:"repo_owner"`
	RepoName        string `yaml:"repo_name"`
	SubscribersPath string `yaml:"subscribers_path"`
}

func init() {
	rootCmd.AddCommand(newServeCmd())
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the subscription API as an HTTP server",
		Long:  serveDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := loadServeConfig(
				getStringFlag(cmd, FlagConfig), os.Getenv,
			)
			if err != nil {
				return err
			}

			logger := log.Default()
			server := newServer(cfg, logger)
			logger.Printf("listening on %s", cfg.Addr)
			return server.ListenAndServe()
		},
	}
	cmd.Flags().StringP(FlagConfig, "c", "", "path to a YAML config file")
	return cmd
}

func loadServeConfig(
	path string, getenv func(string) string,
) (cfg *ServeConfig, err error) {
	cfg = &ServeConfig{}

	if path != "" {
		var raw []byte
		if raw, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read config: %s", err)
		} else if err = yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %s", err)
		}
	}

	fallbacks := []struct {
		value   *string
		varname string
	}{
		{&cfg.GitHubToken, "GITHUB_TOKEN"},
		{&cfg.RepoOwner, "REPO_OWNER"},
		{&cfg.RepoName, "REPO_NAME"},
		{&cfg.SubscribersPath, "SUBSCRIBERS_PATH"},
	}
	missing := make([]string, 0, len(fallbacks))

	for _, fb := range fallbacks {
		if *fb.value == "" {
			*fb.value = getenv(fb.varname)
		}
		if *fb.value == "" {
			missing = append(missing, fb.varname)
		}
	}

	if cfg.Addr == "" {
		if cfg.Addr = getenv("ADDR"); cfg.Addr == "" {
			cfg.Addr = ":8080"
		}
	}

	if len(missing) != 0 {
		return nil, fmt.Errorf(
			"missing server settings: %s", strings.Join(missing, ", "),
		)
	}
	return
}

func newServer(cfg *ServeConfig, logger *log.Logger) *http.Server {
	docStore := store.NewGitHubStore(
		cfg.RepoOwner, cfg.RepoName, cfg.GitHubToken,
	)
	updater := registry.NewUpdater(docStore, cfg.SubscribersPath, logger)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.NewRouter(updater, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
