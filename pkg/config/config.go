package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/cuemby/burrow/pkg/hosts"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/message"
	"github.com/cuemby/burrow/pkg/name"
	"gopkg.in/yaml.v3"
)

// ErrMaxChain is returned when cache.max_chain is set to anything but the
// fixed limit
var ErrMaxChain = fmt.Errorf("cache.max_chain must be %d", name.MaximumChainLength)

// Config is the burrow configuration file
type Config struct {
	Log       LogConfig   `yaml:"log"`
	HostsFile string      `yaml:"hosts_file"`
	DataDir   string      `yaml:"data_dir"`
	Transport string      `yaml:"transport"`
	Cache     CacheConfig `yaml:"cache"`
}

type LogConfig struct {
	Level log.Level `yaml:"level"`
	JSON  bool      `yaml:"json"`
}

type CacheConfig struct {
	// MaxChain is read-only; it exists so a file can state the limit it
	// was written against
	MaxChain int `yaml:"max_chain"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Log:       LogConfig{Level: log.InfoLevel},
		HostsFile: hosts.DefaultPath,
		DataDir:   "./burrow-data",
		Transport: message.TransportUDP.String(),
		Cache:     CacheConfig{MaxChain: name.MaximumChainLength},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field
func (c *Config) Validate() error {
	var errs []error
	if !c.Log.Level.Valid() {
		errs = append(errs, fmt.Errorf("unknown log level: %q", c.Log.Level))
	}
	if _, err := message.ParseTransport(c.Transport); err != nil {
		errs = append(errs, err)
	}
	if c.Cache.MaxChain != name.MaximumChainLength {
		errs = append(errs, ErrMaxChain)
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	return errors.Join(errs...)
}

// TransportValue returns the parsed transport; call after Validate
func (c *Config) TransportValue() message.Transport {
	t, _ := message.ParseTransport(c.Transport)
	return t
}

// LogConfig converts the log section for log.Init
func (c *Config) LogOptions() log.Config {
	return log.Config{Level: c.Log.Level, JSONOutput: c.Log.JSON}
}
