package compile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v2"
)

// configFilenames are the config file names looked up in the working
// directory and its ancestors, in preference order.
var configFilenames = []string{"relaygen.yaml", "relaygen.yml", ".relaygen.yaml"}

// fileConfig mirrors Options in relaygen.yaml. Command-line flags take
// precedence over file values.
type fileConfig struct {
	Schema             string            `yaml:"schema"`
	Src                string            `yaml:"src"`
	Extensions         []string          `yaml:"extensions"`
	Include            []string          `yaml:"include"`
	Exclude            []string          `yaml:"exclude"`
	Language           string            `yaml:"language"`
	ArtifactDirectory  string            `yaml:"artifactDirectory"`
	CustomScalars      map[string]string `yaml:"customScalars"`
	NoFutureProofEnums bool              `yaml:"noFutureProofEnums"`
}

// findConfigFile walks from dir upward until it finds one of the known
// config filenames. An empty path with nil error means no config file.
func findConfigFile(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range configFilenames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			} else if !errors.Is(err, fs.ErrNotExist) {
				return "", err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func loadConfigFile(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// apply fills options the command line left unset. Config paths are
// interpreted relative to the config file's directory.
func (c fileConfig) apply(o Options, configDir string) Options {
	if o.Schema == "" && c.Schema != "" {
		o.Schema = joinIfRelative(configDir, c.Schema)
	}
	if o.Src == "" && c.Src != "" {
		o.Src = joinIfRelative(configDir, c.Src)
	}
	if len(o.Extensions) == 0 {
		o.Extensions = c.Extensions
	}
	if len(o.Include) == 0 {
		o.Include = c.Include
	}
	if len(o.Exclude) == 0 {
		o.Exclude = c.Exclude
	}
	if o.Language == "" {
		o.Language = c.Language
	}
	if o.ArtifactDirectory == "" {
		o.ArtifactDirectory = c.ArtifactDirectory
	}
	if o.CustomScalars == nil {
		o.CustomScalars = c.CustomScalars
	}
	if !o.NoFutureProofEnums {
		o.NoFutureProofEnums = c.NoFutureProofEnums
	}
	return o
}

func joinIfRelative(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
