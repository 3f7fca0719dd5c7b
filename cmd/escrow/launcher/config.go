package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/Neverland-Money/go-escrow/escrow"
	"github.com/Neverland-Money/go-escrow/integration"
)

// Config aggregates every subsystem's configuration the launcher needs.
// The YAML layout of a config file mirrors the struct layout.
type Config struct {
	Node   NodeConfig   `yaml:"node"`
	Escrow EscrowConfig `yaml:"escrow"`
	Store  StoreConfig  `yaml:"store"`
}

type NodeConfig struct {
	DataDir string        `yaml:"datadir"`
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Verbosity int    `yaml:"verbosity"`
	Format    string `yaml:"format"`
	Color     bool   `yaml:"color"`
	SentryDSN string `yaml:"sentrydsn"`
}

type EscrowConfig struct {
	NetworkName string `yaml:"network"`
	NetworkID   uint64 `yaml:"networkid"`
	FakeNet     bool   `yaml:"fakenet"`
	FakeLocks   int    `yaml:"fakelocks"`
}

type StoreConfig struct {
	Preset  string `yaml:"preset"`
	CacheMB int    `yaml:"cache"`
}

func defaultConfig() Config {
	d := DefaultConfig()
	return Config{
		Node: NodeConfig{
			DataDir: resolvePath(d.Node.DataDir),
			Logging: LoggingConfig{
				Verbosity: d.Logging.Verbosity,
				Format:    d.Logging.Format,
				Color:     d.Logging.Color,
			},
		},
		Escrow: EscrowConfig{
			NetworkName: d.Network.ChainName,
			NetworkID:   d.Network.NetworkID,
			FakeLocks:   d.Network.FakeLocks,
		},
		Store: StoreConfig{
			Preset:  d.Storage.Preset,
			CacheMB: d.Storage.CacheSizeMB,
		},
	}
}

// MakeAllConfigs merges defaults, the optional config file and CLI flag
// overrides into a single validated config struct.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if file := ctx.String("config"); file != "" {
		if err := loadConfigFile(resolvePath(file), &cfg); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", file, err)
		}
	}

	applyCLIOverrides(ctx, &cfg)

	rules, err := rulesByName(cfg.Escrow.NetworkName)
	if err != nil {
		return Config{}, err
	}
	cfg.Escrow.NetworkID = rules.NetworkID

	preset, err := integration.GetPresetByName(cfg.Store.Preset)
	if err != nil {
		return Config{}, err
	}
	if preset.Backend == integration.BackendBadger {
		if err := ensureDir(cfg.Node.DataDir); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.IsSet("datadir") {
		cfg.Node.DataDir = resolvePath(ctx.String("datadir"))
	}

	if ctx.IsSet("log.format") {
		cfg.Node.Logging.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Node.Logging.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("log.color") {
		cfg.Node.Logging.Color = ctx.Bool("log.color")
	}
	if ctx.IsSet("sentry.dsn") {
		cfg.Node.Logging.SentryDSN = ctx.String("sentry.dsn")
	}

	if ctx.IsSet("network") {
		cfg.Escrow.NetworkName = ctx.String("network")
	}
	if ctx.IsSet("fakenet") {
		cfg.Escrow.FakeNet = true
		cfg.Escrow.NetworkName = "fake"
		cfg.Escrow.FakeLocks = ctx.Int("fakenet")
	}

	if ctx.IsSet("db.preset") {
		cfg.Store.Preset = ctx.String("db.preset")
	}
	if ctx.IsSet("cache") {
		cfg.Store.CacheMB = ctx.Int("cache")
	}
}

func rulesByName(name string) (escrow.Rules, error) {
	switch name {
	case "main":
		return escrow.MainNetRules(), nil
	case "test":
		return escrow.TestNetRules(), nil
	case "fake":
		return escrow.FakeNetRules(), nil
	default:
		return escrow.Rules{}, fmt.Errorf("unknown network %q (valid: main, test, fake)", name)
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
