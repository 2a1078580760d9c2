package repo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config stores repository-local settings.
type Config struct {
	User  UserConfig  `toml:"user"`
	Merge MergeConfig `toml:"merge"`
}

// UserConfig identifies the default commit author.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// MergeConfig controls how conflicted content is rendered. The marker
// convention is policy, not fixed behavior: labels are configurable.
type MergeConfig struct {
	OursLabel   string `toml:"ours_label"`
	TheirsLabel string `toml:"theirs_label"`
}

func defaultConfig() *Config {
	return &Config{
		Merge: MergeConfig{OursLabel: "ours", TheirsLabel: "theirs"},
	}
}

func (r *Repo) configPath() string {
	return filepath.Join(r.GritDir, "config.toml")
}

// ReadConfig reads .grit/config.toml. A missing file yields the defaults.
func (r *Repo) ReadConfig() (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("read config: unmarshal: %w", err)
	}
	if cfg.Merge.OursLabel == "" {
		cfg.Merge.OursLabel = "ours"
	}
	if cfg.Merge.TheirsLabel == "" {
		cfg.Merge.TheirsLabel = "theirs"
	}
	return cfg, nil
}

// WriteConfig atomically writes .grit/config.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = defaultConfig()
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(r.GritDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// DefaultAuthor returns the configured author identity, or a bare fallback
// when none is set.
func (r *Repo) DefaultAuthor() string {
	cfg, err := r.ReadConfig()
	if err != nil || cfg.User.Name == "" {
		return "unknown"
	}
	if cfg.User.Email != "" {
		return fmt.Sprintf("%s <%s>", cfg.User.Name, cfg.User.Email)
	}
	return cfg.User.Name
}
