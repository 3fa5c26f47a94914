package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/tab-mirror/internal/app"
	"github.com/atomicstack/tab-mirror/internal/state"
	"github.com/spf13/viper"
)

// Config captures runtime configuration for the application.
type Config struct {
	App      app.Config
	Logging  Logging
	Features Features
	Flags    map[string]string
	Args     []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

type Features struct {
	Verbose bool
}

const (
	envConfig    = "TAB_MIRROR_CONFIG"
	envHost      = "TAB_MIRROR_HOST"
	envRemoteURL = "TAB_MIRROR_REMOTE_URL"
	envSeed      = "TAB_MIRROR_SEED"
	envHeight    = "TAB_MIRROR_HEIGHT"
	envRowHeight = "TAB_MIRROR_ROW_HEIGHT"
	envOverscan  = "TAB_MIRROR_OVERSCAN"
	envDebounce  = "TAB_MIRROR_DEBOUNCE"
	envResync    = "TAB_MIRROR_RESYNC"
	envList      = "TAB_MIRROR_LIST"
	envVerbose   = "TAB_MIRROR_VERBOSE"
	envTrace     = "TAB_MIRROR_TRACE"
	envLogFile   = "TAB_MIRROR_LOG_FILE"
)

const (
	HostMemory = "memory"
	HostCDP    = "cdp"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Values resolve
// flag first, then environment, then the YAML config file, then defaults.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	path := configPath(args, env)
	file, err := readFile(path)
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("tab-mirror", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	configFile := fs.String("config", path, "path to a YAML config file")
	hostKind := fs.String("host", envOrDefault(env, envHost, file.GetString("host")), "host browser backend (memory or cdp)")
	remoteURL := fs.String("remote-url", envOrDefault(env, envRemoteURL, file.GetString("remote-url")), "DevTools endpoint of the browser for the cdp host")
	seed := fs.String("seed", envOrDefault(env, envSeed, file.GetString("seed")), "YAML window/tab topology for the memory host")
	height := fs.Int("height", envOrInt(env, envHeight, file.GetInt("height")), "available height in rows (0 uses terminal height)")
	rowHeight := fs.Float64("row-height", envOrFloat(env, envRowHeight, file.GetFloat64("row-height")), "height of one tab row")
	overscan := fs.Float64("overscan", envOrFloat(env, envOverscan, file.GetFloat64("overscan")), "column capacity overscan factor")
	debounce := fs.Duration("debounce", envOrDuration(env, envDebounce, file.GetDuration("debounce")), "full refresh coalescing window")
	resync := fs.Duration("resync", envOrDuration(env, envResync, file.GetDuration("resync")), "periodic full refresh interval (0 disables)")
	list := fs.Bool("list", envOrBool(env, envList, false), "print the current windows and tabs and exit")
	trace := fs.Bool("trace", envOrBool(env, envTrace, file.GetBool("trace")), "enable verbose JSON trace logging")
	verbose := fs.Bool("verbose", envOrBool(env, envVerbose, file.GetBool("verbose")), "print success messages for actions")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, file.GetString("log-file")), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}

	cfg := Config{
		App: app.Config{
			Host:       strings.ToLower(strings.TrimSpace(*hostKind)),
			RemoteURL:  *remoteURL,
			Seed:       *seed,
			Height:     *height,
			RowHeight:  *rowHeight,
			Overscan:   *overscan,
			Debounce:   *debounce,
			Resync:     *resync,
			List:       *list,
			Verbose:    *verbose,
			ConfigPath: *configFile,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Features: Features{
			Verbose: *verbose,
		},
		Flags: map[string]string{
			"config":    *configFile,
			"host":      *hostKind,
			"remoteURL": *remoteURL,
			"seed":      *seed,
			"height":    strconv.Itoa(*height),
			"rowHeight": strconv.FormatFloat(*rowHeight, 'g', -1, 64),
			"overscan":  strconv.FormatFloat(*overscan, 'g', -1, 64),
			"debounce":  debounce.String(),
			"resync":    resync.String(),
			"list":      strconv.FormatBool(*list),
			"trace":     strconv.FormatBool(*trace),
			"verbose":   strconv.FormatBool(*verbose),
			"logFile":   *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

// newViper returns a viper instance carrying the built-in defaults.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("host", HostMemory)
	v.SetDefault("remote-url", "")
	v.SetDefault("seed", "")
	v.SetDefault("height", 0)
	v.SetDefault("row-height", state.DefaultRowHeight)
	v.SetDefault("overscan", state.DefaultOverscan)
	v.SetDefault("debounce", time.Second)
	v.SetDefault("resync", time.Duration(0))
	v.SetDefault("trace", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log-file", "")
	return v
}

func readFile(path string) (*viper.Viper, error) {
	v := newViper()
	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}

// configPath finds --config ahead of the main parse so the file can supply
// flag defaults.
func configPath(args []string, env map[string]string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if value, ok := strings.CutPrefix(name, "config="); ok {
			return value
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return envOrDefault(env, envConfig, "")
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrFloat(env map[string]string, key string, fallback float64) float64 {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	switch cfg.App.Host {
	case HostMemory:
	case HostCDP:
		if strings.TrimSpace(cfg.App.RemoteURL) == "" {
			return fmt.Errorf("host %q requires remote-url", HostCDP)
		}
	default:
		return fmt.Errorf("unknown host %q (want %s or %s)", cfg.App.Host, HostMemory, HostCDP)
	}
	if cfg.App.RowHeight <= 0 {
		return fmt.Errorf("row-height must be > 0 (got %g)", cfg.App.RowHeight)
	}
	if cfg.App.Overscan <= 0 {
		return fmt.Errorf("overscan must be > 0 (got %g)", cfg.App.Overscan)
	}
	if cfg.App.Debounce < 0 {
		return fmt.Errorf("debounce must be >= 0 (got %s)", cfg.App.Debounce)
	}
	if cfg.App.Resync < 0 {
		return fmt.Errorf("resync must be >= 0 (got %s)", cfg.App.Resync)
	}
	return nil
}
