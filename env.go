package rwpool

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
)

// FromEnv builds a Config from environment variables carrying the given
// prefix. Variable names map to Config fields by lowercasing what follows
// the prefix, so FromEnv("DB_") reads DB_DATABASE_URL, DB_TEST_MODE,
// DB_MAX_CONNS, DB_CONNECT_TIMEOUT, and so on. Durations accept Go duration
// strings ("10s", "30m"). Unset variables leave the zero value, which New
// replaces with its documented defaults.
func FromEnv(prefix string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: prefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, prefix)), value
		},
	}), nil); err != nil {
		return Config{}, fmt.Errorf("rwpool: failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("rwpool: failed to unmarshal environment: %w", err)
	}

	return cfg, nil
}
