package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"aboutsettings/internal/services"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envPrefix = "ABOUT_"

// Config holds runtime settings for the daemon and CLI
type Config struct {
	Listen          string        `yaml:"listen"`
	OSReleasePath   string        `yaml:"osRelease"`
	HWReleasePath   string        `yaml:"hwRelease"`
	SerialPath      string        `yaml:"serialFile"`
	MountTablePath  string        `yaml:"mountTable"`
	SysfsRoot       string        `yaml:"sysfsRoot"`
	CandidateMounts []string      `yaml:"candidateMounts"`
	LogLevel        string        `yaml:"logLevel"`
	LogFormat       string        `yaml:"logFormat"`
	AuthSecretFile  string        `yaml:"authSecretFile"`
	TokenExpiry     time.Duration `yaml:"tokenExpiry"`
	RateLimit       float64       `yaml:"rateLimit"`
	RateBurst       int           `yaml:"rateBurst"`
	AllowIPs        []string      `yaml:"allowIPs"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Listen:          "localhost:8080",
		OSReleasePath:   services.DefaultOSReleasePath,
		HWReleasePath:   services.DefaultHWReleasePath,
		SerialPath:      services.DefaultSerialPath,
		SysfsRoot:       "/sys",
		CandidateMounts: append([]string(nil), services.DefaultCandidateMounts...),
		LogLevel:        "info",
		LogFormat:       "console",
		TokenExpiry:     services.DefaultTokenExpiry,
		RateLimit:       100,
		RateBurst:       200,
	}
}

func envVars(name string) cli.ValueSourceChain {
	return cli.EnvVars(envPrefix + name)
}

// Flags returns the flags shared by all commands
func Flags() []cli.Flag {
	def := Default()
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "YAML configuration file", Sources: envVars("CONFIG")},
		&cli.StringFlag{Name: "listen", Usage: "HTTP listen address", Value: def.Listen, Sources: envVars("LISTEN")},
		&cli.StringFlag{Name: "os-release", Usage: "software release file", Value: def.OSReleasePath, Sources: envVars("OS_RELEASE")},
		&cli.StringFlag{Name: "hw-release", Usage: "hardware adaptation release file", Value: def.HWReleasePath, Sources: envVars("HW_RELEASE")},
		&cli.StringFlag{Name: "serial-file", Usage: "serial number file", Value: def.SerialPath, Sources: envVars("SERIAL_FILE")},
		&cli.StringFlag{Name: "mount-table", Usage: "mtab format file to read instead of the live mount table", Sources: envVars("MOUNT_TABLE")},
		&cli.StringFlag{Name: "sysfs-root", Usage: "sysfs mount point", Value: def.SysfsRoot, Sources: envVars("SYSFS_ROOT")},
		&cli.StringSliceFlag{Name: "candidate-mount", Usage: "optional mountpoint reported when on its own device", Value: def.CandidateMounts, Sources: envVars("CANDIDATE_MOUNTS")},
		&cli.StringFlag{Name: "log-level", Usage: "log level (debug, info, warn, error)", Value: def.LogLevel, Sources: envVars("LOG_LEVEL")},
		&cli.StringFlag{Name: "log-format", Usage: "log format (console, json)", Value: def.LogFormat, Sources: envVars("LOG_FORMAT")},
		&cli.StringFlag{Name: "auth-secret-file", Usage: "token signing secret; enables auth on identifier routes", Sources: envVars("AUTH_SECRET_FILE")},
		&cli.DurationFlag{Name: "token-expiry", Usage: "lifetime of generated tokens", Value: def.TokenExpiry, Sources: envVars("TOKEN_EXPIRY")},
		&cli.FloatFlag{Name: "rate-limit", Usage: "requests per second per client IP", Value: def.RateLimit, Sources: envVars("RATE_LIMIT")},
		&cli.IntFlag{Name: "rate-burst", Usage: "request burst per client IP", Value: def.RateBurst, Sources: envVars("RATE_BURST")},
		&cli.StringSliceFlag{Name: "allow-ip", Usage: "client IP allowed to connect (default all)", Sources: envVars("ALLOW_IPS")},
	}
}

// Load builds the configuration from defaults, the optional YAML file and
// flags or environment variables, in increasing precedence
func Load(cmd *cli.Command) (Config, error) {
	cfg := Default()

	if path := cmd.String("config"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	setString := func(name string, dst *string) {
		if cmd.IsSet(name) {
			*dst = cmd.String(name)
		}
	}
	setString("listen", &cfg.Listen)
	setString("os-release", &cfg.OSReleasePath)
	setString("hw-release", &cfg.HWReleasePath)
	setString("serial-file", &cfg.SerialPath)
	setString("mount-table", &cfg.MountTablePath)
	setString("sysfs-root", &cfg.SysfsRoot)
	setString("log-level", &cfg.LogLevel)
	setString("log-format", &cfg.LogFormat)
	setString("auth-secret-file", &cfg.AuthSecretFile)

	if cmd.IsSet("candidate-mount") {
		cfg.CandidateMounts = cmd.StringSlice("candidate-mount")
	}
	if cmd.IsSet("allow-ip") {
		cfg.AllowIPs = cmd.StringSlice("allow-ip")
	}
	if cmd.IsSet("token-expiry") {
		cfg.TokenExpiry = cmd.Duration("token-expiry")
	}
	if cmd.IsSet("rate-limit") {
		cfg.RateLimit = cmd.Float("rate-limit")
	}
	if cmd.IsSet("rate-burst") {
		cfg.RateBurst = int(cmd.Int("rate-burst"))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration for values the daemon cannot run with
func (c Config) Validate() error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, errors.New("listen address must not be empty"))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("rate limit must be positive, got %v", c.RateLimit))
	}
	if c.RateBurst <= 0 {
		errs = append(errs, fmt.Errorf("rate burst must be positive, got %d", c.RateBurst))
	}

	paths := map[string]string{
		"os-release":       c.OSReleasePath,
		"hw-release":       c.HWReleasePath,
		"serial-file":      c.SerialPath,
		"mount-table":      c.MountTablePath,
		"sysfs-root":       c.SysfsRoot,
		"auth-secret-file": c.AuthSecretFile,
	}
	for name, path := range paths {
		if path != "" && !filepath.IsAbs(path) {
			errs = append(errs, fmt.Errorf("%s must be an absolute path, got %q", name, path))
		}
	}

	return errors.Join(errs...)
}

// ProviderOptions maps the configuration onto DeviceInfoProvider options
func (c Config) ProviderOptions() []services.Option {
	opts := []services.Option{
		services.WithOSReleasePath(c.OSReleasePath),
		services.WithHWReleasePath(c.HWReleasePath),
		services.WithSerialPath(c.SerialPath),
		services.WithCandidateMounts(c.CandidateMounts),
		services.WithHardwareAddresses(services.NewSysfsNetwork(c.SysfsRoot)),
	}
	if c.MountTablePath != "" {
		opts = append(opts, services.WithMountSource(services.MtabMounts{Path: c.MountTablePath}))
	}
	return opts
}
