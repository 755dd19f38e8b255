//go:build !tinygo

package app

import (
	_ "embed"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// DefaultYAML returns the default configuration as a YAML document.
func DefaultYAML() []byte {
	return defaultYAML
}

// LoadConfig parses a YAML document. Keys it leaves out keep their
// DefaultConfig values.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := LoadConfig(data)
	if err != nil {
		return Config{}, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// UnmarshalYAML accepts a duration string or a number of milliseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: duration must be a scalar", value.Line)
	}
	if value.Tag == "!!int" {
		var ms int64
		if err := value.Decode(&ms); err != nil {
			return errors.Wrapf(err, "line %d", value.Line)
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	v, err := time.ParseDuration(value.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", value.Line)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}
