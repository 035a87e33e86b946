package shop

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options. Config files are JWCC (JSON
// with comments and trailing commas).
type Config struct {
	// From config files (serialized)
	RemoteURL string `json:"remote_url,omitempty"`
	RemoteKey string `json:"remote_key,omitempty"`
	StatePath string `json:"state_path,omitempty"`

	// Resolved paths (computed, not serialized)
	StatePathAbs string `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string
	Project string
}

// ConfigFileName is the project-level config file name.
const ConfigFileName = ".tobuy.json"

// Configured reports whether remote sync credentials are present. Absence
// of either disables all remote operations without error.
func (c Config) Configured() bool {
	return c.RemoteURL != "" && c.RemoteKey != ""
}

// HistoryPath is where the interactive shell keeps its input history,
// next to the state blob.
func (c Config) HistoryPath() string {
	return filepath.Join(filepath.Dir(c.StatePathAbs), "shell_history")
}

// globalConfigPath returns the user config file path. Uses
// $XDG_CONFIG_HOME/tobuy/config.json if set, otherwise
// ~/.config/tobuy/config.json. Empty when no home can be determined.
func globalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "tobuy", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "tobuy", "config.json")
	}

	return ""
}

// defaultStatePath returns the durable state blob location. Uses
// $XDG_DATA_HOME/tobuy/state.json if set, otherwise
// ~/.local/share/tobuy/state.json, falling back to the working directory.
func defaultStatePath(workDir string, env map[string]string) string {
	if xdgData := env["XDG_DATA_HOME"]; xdgData != "" {
		return filepath.Join(xdgData, "tobuy", "state.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".local", "share", "tobuy", "state.json")
	}

	return filepath.Join(workDir, ".tobuy-state.json")
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDir           string            // resolved working directory
	ConfigPath        string            // -c/--config flag value
	StatePathOverride string            // --state flag value; empty means no override
	Env               map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest
// wins): defaults, global user config, project config (.tobuy.json),
// explicit config file, CLI overrides. The state path is resolved to an
// absolute path.
func LoadConfig(input LoadConfigInput) (Config, error) {
	cfg := Config{}

	globalCfg, globalPath, err := loadConfigFile(globalConfigPath(input.Env), false)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectFile := filepath.Join(input.WorkDir, ConfigFileName)
	mustExist := false

	if input.ConfigPath != "" {
		projectFile = input.ConfigPath
		if !filepath.IsAbs(projectFile) {
			projectFile = filepath.Join(input.WorkDir, projectFile)
		}

		mustExist = true
	}

	projectCfg, projectPath, err := loadConfigFile(projectFile, mustExist)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if input.StatePathOverride != "" {
		cfg.StatePath = input.StatePathOverride
	}

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = defaultStatePath(input.WorkDir, input.Env)
	}

	if filepath.IsAbs(statePath) {
		cfg.StatePathAbs = statePath
	} else {
		cfg.StatePathAbs = filepath.Join(input.WorkDir, statePath)
	}

	return cfg, nil
}

// loadConfigFile loads one config file. Missing optional files return a
// zero config and empty path.
func loadConfigFile(path string, mustExist bool) (Config, string, error) {
	if path == "" {
		return Config{}, "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, "", nil
		}

		return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, "", fmt.Errorf("%w %s: %v", ErrConfigInvalid, path, err)
	}

	var cfg Config

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, "", fmt.Errorf("%w %s: %v", ErrConfigInvalid, path, err)
	}

	return cfg, path, nil
}

// mergeConfig overlays non-empty fields of overlay onto base.
func mergeConfig(base, overlay Config) Config {
	if overlay.RemoteURL != "" {
		base.RemoteURL = overlay.RemoteURL
	}

	if overlay.RemoteKey != "" {
		base.RemoteKey = overlay.RemoteKey
	}

	if overlay.StatePath != "" {
		base.StatePath = overlay.StatePath
	}

	return base
}

// SaveUserConfig writes cfg's serializable fields to the global user
// config file, creating directories as needed. Used by "config
// set-remote" and "config clear-remote".
func SaveUserConfig(cfg Config, env map[string]string) (string, error) {
	path := globalConfigPath(env)
	if path == "" {
		return "", fmt.Errorf("%w: no home directory for user config", ErrConfigFileRead)
	}

	err := os.MkdirAll(filepath.Dir(path), dirPerms)
	if err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}

	err = os.WriteFile(path, append(data, '\n'), filePerms)
	if err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}

	return path, nil
}
