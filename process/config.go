package process

import (
	"math"
	"time"

	"github.com/kbukum/subprocess/config"
	"github.com/kbukum/subprocess/logger"
	"github.com/kbukum/subprocess/resilience"
	"github.com/kbukum/subprocess/validation"
)

// Environment modes.
const (
	// EnvMerge overlays the override onto the parent environment.
	EnvMerge = "merge"
	// EnvReplace uses the override as the whole child environment.
	EnvReplace = "replace"
)

// Pre-exec hook policies.
const (
	// PreExecSkip accepts a hook but never runs it.
	PreExecSkip = "skip"
	// PreExecParent runs the hook in the parent right before launch.
	PreExecParent = "parent"
	// PreExecReject refuses requests that carry a hook.
	PreExecReject = "reject"
)

// DefaultMaxFD is the highest descriptor number accepted in fds_to_keep.
const DefaultMaxFD = math.MaxInt32

// Config configures a Spawner.
type Config struct {
	Name string `yaml:"name" mapstructure:"name"`
	// MaxFD bounds every descriptor number a request may name.
	MaxFD         int64  `yaml:"max_fd" mapstructure:"max_fd"`
	EnvMode       string `yaml:"env_mode" mapstructure:"env_mode"`
	PreExecPolicy string `yaml:"preexec_policy" mapstructure:"preexec_policy"`
	// GracePeriod is how long Stop and Run wait after SIGTERM before SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`

	Launch resilience.BulkheadConfig `yaml:"launch" mapstructure:"launch"`
	Retry  resilience.RetryConfig    `yaml:"retry" mapstructure:"retry"`
	// Logging configures the logger LoadConfig registers under Name.
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "process-spawner"
	}
	if c.MaxFD == 0 {
		c.MaxFD = DefaultMaxFD
	}
	if c.EnvMode == "" {
		c.EnvMode = EnvMerge
	}
	if c.PreExecPolicy == "" {
		c.PreExecPolicy = PreExecSkip
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = 5 * time.Second
	}
	if c.Launch.Name == "" {
		c.Launch.Name = "launch"
	}

	retryDefaults := resilience.DefaultRetryConfig()
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = retryDefaults.MaxAttempts
	}
	if c.Retry.InitialBackoff <= 0 {
		c.Retry.InitialBackoff = retryDefaults.InitialBackoff
	}
	if c.Retry.MaxBackoff <= 0 {
		c.Retry.MaxBackoff = retryDefaults.MaxBackoff
	}
	if c.Retry.BackoffFactor <= 0 {
		c.Retry.BackoffFactor = retryDefaults.BackoffFactor
	}
	if c.Retry.RetryIf == nil {
		c.Retry.RetryIf = retryDefaults.RetryIf
	}

	c.Logging.ApplyDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	err := validation.New().
		Required("name", c.Name).
		Range("max_fd", c.MaxFD, 3, DefaultMaxFD).
		OneOf("env_mode", c.EnvMode, []string{EnvMerge, EnvReplace}).
		OneOf("preexec_policy", c.PreExecPolicy, []string{PreExecSkip, PreExecParent, PreExecReject}).
		Custom(c.GracePeriod > 0, "grace_period", "must be positive").
		Min("retry.max_attempts", int64(c.Retry.MaxAttempts), 1).
		Validate()
	if err != nil {
		return err
	}
	return c.Logging.Validate()
}

// LoadConfig reads a Config named name through the config loader, then
// applies defaults and validates it. A logger built from the logging section
// is registered under the spawner name, where NewSpawner finds it.
func LoadConfig(name string, opts ...config.LoaderOption) (Config, error) {
	var cfg Config
	if err := config.LoadConfig(name, &cfg, opts...); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	logger.Register(cfg.Name, logger.New(&cfg.Logging, cfg.Name).WithComponent(cfg.Name))
	return cfg, nil
}
