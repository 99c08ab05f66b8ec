package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/storyspark-lab/storyspark/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the application configuration file
type AppConfig struct {
	Story StorySection `toml:"story"`
}

// StorySection configures the story workflow
type StorySection struct {
	MaxScenes     int `toml:"max_scenes"`
	RetrieveLimit int `toml:"retrieve_limit"`
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if a.Story.MaxScenes < 1 {
		return goerr.Wrap(ErrInvalidConfig, "max_scenes must be at least 1",
			goerr.V("max_scenes", a.Story.MaxScenes))
	}
	if a.Story.RetrieveLimit < 1 {
		return goerr.Wrap(ErrInvalidConfig, "retrieve_limit must be at least 1",
			goerr.V("retrieve_limit", a.Story.RetrieveLimit))
	}
	return nil
}

// ToStoryConfig converts the file representation to the domain configuration
func (a *AppConfig) ToStoryConfig() *domainConfig.StoryConfig {
	return &domainConfig.StoryConfig{
		MaxScenes:     a.Story.MaxScenes,
		RetrieveLimit: a.Story.RetrieveLimit,
	}
}

// LoadAppConfiguration loads the application configuration from a TOML file.
// Fields missing from the file fall back to the defaults.
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	config := AppConfig{
		Story: StorySection{
			MaxScenes:     domainConfig.DefaultMaxScenes,
			RetrieveLimit: domainConfig.DefaultRetrieveLimit,
		},
	}
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// Story holds the CLI flag pointing at the configuration file
type Story struct {
	path string
}

// Flags returns CLI flags for story configuration
func (s *Story) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to TOML configuration file",
			Sources:     cli.EnvVars("STORYSPARK_CONFIG"),
			Destination: &s.path,
		},
	}
}

// Configure loads the story configuration, falling back to defaults when no
// configuration file is given.
func (s *Story) Configure() (*domainConfig.StoryConfig, error) {
	if s.path == "" {
		return domainConfig.DefaultStoryConfig(), nil
	}

	appCfg, err := LoadAppConfiguration(s.path)
	if err != nil {
		return nil, err
	}
	return appCfg.ToStoryConfig(), nil
}
