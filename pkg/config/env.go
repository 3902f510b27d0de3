package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// applyEnvFile loads KEY=VALUE pairs from a local env file into the
// process environment before viper reads it. Variables already set win
// over file values, so a real environment always overrides .env.
func applyEnvFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read env file %s", path)
	}

	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, unquoteEnvValue(value)); err != nil {
			return errors.Wrapf(err, "set %s from %s", key, path)
		}
	}
	return nil
}

func unquoteEnvValue(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		double := strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)
		single := strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")
		if double || single {
			return value[1 : len(value)-1]
		}
	}
	return value
}
