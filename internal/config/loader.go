package config

import (
	"context"
	"os"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/goalwatch/internal/domain/engine"
)

const (
	// EnvConfigPath names the variable holding an optional YAML file path.
	EnvConfigPath = "GOALWATCH_CONFIG"
	envPrefix     = "GOALWATCH_"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GOALWATCH_CONFIG is set
//  3. env (prefix GOALWATCH_, "__" separates nested keys)
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, os.Getenv(EnvConfigPath))
}

// LoadFile is Load with an explicit file path. An empty path skips the file layer.
func LoadFile(_ context.Context, path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, crerr.Mark(crerr.Wrapf(err, "read %s", path), ErrLoadConfig)
		}
	}

	// GOALWATCH_SCANNER__WORKER_COUNT -> scanner.worker_count
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "read env"), ErrLoadConfig)
	}

	cfg := *New()
	// ZeroFields makes a configured list replace the default list instead of
	// overwriting it element by element.
	dc := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:           &cfg,
		WeaklyTypedInput: true,
		ZeroFields:       true,
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", DecoderConfig: dc}); err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "decode"), ErrLoadConfig)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints and that the engine accepts the
// score patterns.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return crerr.Mark(crerr.Wrap(err, "validate"), ErrInvalidConfig)
	}
	if _, err := engine.New(cfg.Engine); err != nil {
		return crerr.Mark(crerr.Wrap(err, "engine"), ErrInvalidConfig)
	}
	return nil
}
