package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/orgdesk/pkg/domain/model/config"
	"github.com/secmon-lab/orgdesk/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the application configuration file
type AppConfig struct {
	Console ConsoleSection `toml:"console"`
}

// ConsoleSection is the [console] table. Zero values fall back to the defaults.
type ConsoleSection struct {
	PageSize      int      `toml:"page_size"`
	Avatars       []string `toml:"avatars"`
	DefaultStatus string   `toml:"default_status"`
}

// ToDomainConsole converts the file representation, applying defaults for omitted keys
func (a *AppConfig) ToDomainConsole() (*domainConfig.Console, error) {
	console := domainConfig.DefaultConsole()

	if a.Console.PageSize != 0 {
		console.PageSize = a.Console.PageSize
	}
	if len(a.Console.Avatars) > 0 {
		avatars := make(types.AvatarSet, len(a.Console.Avatars))
		for i, v := range a.Console.Avatars {
			avatars[i] = types.AvatarID(v)
		}
		console.Avatars = avatars
	}
	if a.Console.DefaultStatus != "" {
		status, err := types.ParseEmployeeStatus(a.Console.DefaultStatus)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "invalid default_status", goerr.V("default_status", a.Console.DefaultStatus))
		}
		console.DefaultStatus = status
	}

	if err := console.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, err.Error())
	}

	return console, nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V(ConfigPathKey, path), goerr.V("error", err.Error()))
	}

	return &config, nil
}

// Console holds the --config flag
type Console struct {
	path string
}

func (c *Console) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML application config",
			Sources:     cli.EnvVars("ORGDESK_CONFIG"),
			Destination: &c.path,
		},
	}
}

// Configure returns the console config from the file, or the defaults when no path is set
func (c *Console) Configure() (*domainConfig.Console, error) {
	if c.path == "" {
		return domainConfig.DefaultConsole(), nil
	}

	appCfg, err := LoadAppConfiguration(c.path)
	if err != nil {
		return nil, err
	}

	console, err := appCfg.ToDomainConsole()
	if err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, c.path))
	}
	return console, nil
}

// NewConsoleForTest creates a Console flag holder pointing at path
func NewConsoleForTest(path string) *Console {
	return &Console{path: path}
}
