package settings

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/sessionize/internal/domain"
	"github.com/spf13/viper"
)

const (
	configName  = "config"
	configType  = "toml"
	configDir   = ".sessionize"
	reportsFile = "reports.toml"
	envPrefix   = "SESSIONIZE"

	KeyInactivitySeconds = "inactivity.seconds"
	KeyInactivityPath    = "inactivity.path"
	KeyInputPath         = "input.path"
	KeyOutputPath        = "output.path"
	KeyReportsPath       = "reports.path"
	KeyLogLevel          = "log.level"

	defaultOutputPath = "-"
	defaultLogLevel   = "warn"
)

var (
	ErrInactivityNotConfigured = errors.New("inactivity threshold is not configured")
	ErrInputNotConfigured      = errors.New("input path is not configured")
)

type Settings struct {
	Inactivity Inactivity `toml:"inactivity" yaml:"inactivity"`
	Input      Path       `toml:"input" yaml:"input"`
	Output     Path       `toml:"output" yaml:"output"`
	Reports    Path       `toml:"reports" yaml:"reports"`
	Log        Log        `toml:"log" yaml:"log"`
}

type Inactivity struct {
	Seconds int64 `toml:"seconds,omitempty" yaml:"seconds,omitempty"`
	// Path names a file whose first line holds the threshold in seconds.
	Path string `toml:"path,omitempty" yaml:"path,omitempty"`
}

type Path struct {
	Path string `toml:"path" yaml:"path"`
}

type Log struct {
	Level string `toml:"level" yaml:"level"`
}

// Load resolves settings from flags bound on cfg, SESSIONIZE_* environment
// variables, the config file and defaults, in that order. configFile
// overrides the default ~/.sessionize/config.toml lookup.
func Load(cfg *viper.Viper, configFile string) (Settings, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, fmt.Errorf("resolve home directory: %w", err)
	}

	if configFile != "" {
		cfg.SetConfigFile(configFile)
	} else {
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	}

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault(KeyOutputPath, defaultOutputPath)
	cfg.SetDefault(KeyReportsPath, filepath.Join(homeDir, configDir, reportsFile))
	cfg.SetDefault(KeyLogLevel, defaultLogLevel)

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	seconds, err := inactivitySeconds(cfg)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Inactivity: Inactivity{
			Seconds: seconds,
			Path:    cfg.GetString(KeyInactivityPath),
		},
		Input:   Path{Path: cfg.GetString(KeyInputPath)},
		Output:  Path{Path: cfg.GetString(KeyOutputPath)},
		Reports: Path{Path: cfg.GetString(KeyReportsPath)},
		Log:     Log{Level: cfg.GetString(KeyLogLevel)},
	}, nil
}

// inactivitySeconds parses inactivity.seconds as a decimal integer and
// validates its range. It returns 0 when the key is not set anywhere.
func inactivitySeconds(cfg *viper.Viper) (int64, error) {
	if !cfg.IsSet(KeyInactivitySeconds) {
		return 0, nil
	}

	raw := strings.TrimSpace(cfg.GetString(KeyInactivitySeconds))
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", KeyInactivitySeconds, raw, err)
	}

	if _, err := domain.NewInactivityWindow(seconds); err != nil {
		return 0, fmt.Errorf("%s: %w", KeyInactivitySeconds, err)
	}

	return seconds, nil
}

// Window validates the configured inactivity threshold. An explicit number of
// seconds takes precedence over the threshold file; Load never yields zero
// for a configured value.
func (s Settings) Window() (domain.InactivityWindow, error) {
	if s.Inactivity.Seconds != 0 {
		return domain.NewInactivityWindow(s.Inactivity.Seconds)
	}

	if s.Inactivity.Path == "" {
		return 0, ErrInactivityNotConfigured
	}

	seconds, err := readThresholdFile(s.Inactivity.Path)
	if err != nil {
		return 0, err
	}

	return domain.NewInactivityWindow(seconds)
}

func (s Settings) InputPath() (string, error) {
	if strings.TrimSpace(s.Input.Path) == "" {
		return "", ErrInputNotConfigured
	}

	return s.Input.Path, nil
}

func (s Settings) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.Log.Level)); err != nil {
		return slog.LevelWarn, fmt.Errorf("parse log level: %w", err)
	}

	return level, nil
}

func readThresholdFile(path string) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open inactivity file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, fmt.Errorf("read inactivity file: %w", err)
		}
		return 0, fmt.Errorf("read inactivity file: %w", ErrInactivityNotConfigured)
	}

	raw := strings.TrimSpace(scanner.Text())
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse inactivity threshold %q: %w", raw, err)
	}

	return seconds, nil
}
