package job

import (
	"os"
	"path/filepath"
	"strconv"

	"oss.nandlabs.io/regular/envfile"
	"oss.nandlabs.io/regular/fsutils"
)

// Config is the global configuration loaded once per session from the
// config root.
type Config struct {
	ConfigRoot  string
	StateRoot   string
	DefaultsEnv map[string]string
	MaxWorkers  int // 0 means unbounded
}

// LoadConfig reads the defaults env file and max-workers file from
// configRoot. outerEnv is the process environment, used for
// substitution inside defaults/env.
func LoadConfig(configRoot, stateRoot string, outerEnv map[string]string) (Config, error) {
	cfg := Config{
		ConfigRoot:  configRoot,
		StateRoot:   stateRoot,
		DefaultsEnv: map[string]string{},
	}

	defaultsEnvPath := filepath.Join(configRoot, ReservedDefaults, fileEnv)
	if fsutils.FileExists(defaultsEnvPath) {
		f, err := os.Open(defaultsEnvPath)
		if err != nil {
			return Config{}, err
		}
		defer f.Close()
		m, err := envfile.Parse(f, outerEnv)
		if err != nil {
			return Config{}, err
		}
		cfg.DefaultsEnv = m.ToMap()
	}

	maxWorkersPath := filepath.Join(configRoot, fileMaxWorkers)
	if v, ok, err := readTrimmed(maxWorkersPath); err != nil {
		return Config{}, err
	} else if ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxWorkers = n
	}

	return cfg, nil
}
