package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prefix of environment variables overriding config file, e.g.
// SPARKIFY_CLUSTER_DB_PASSWORD overrides [CLUSTER] DB_PASSWORD.
const EnvPrefix = "SPARKIFY"

// Defaults
const (
	DefaultRegion      = "us-west-2"
	DefaultPort        = 5439
	DefaultClusterType = "multi-node"
)

func newViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "Fail to read config file: %s", path)
	}

	return v, nil
}

// getString returns value of "section.key". Quotes around the value are
// removed because INI files of the project are written as KEY='value'.
func getString(v *viper.Viper, key string) string {
	s := strings.TrimSpace(v.GetString(key))
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			s = s[1 : len(s)-1]
		}
	}
	return s
}

func getInt(v *viper.Viper, key string) (int, error) {
	s := getString(v, key)
	if s == "" {
		return 0, nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, errors.Wrapf(err, "Invalid integer of %s: %q", key, s)
	}
	return n, nil
}

// missingKeys collects names of empty required values.
type missingKeys []string

func (x *missingKeys) check(name, value string) {
	if value == "" {
		*x = append(*x, name)
	}
}

func (x missingKeys) err() error {
	if len(x) == 0 {
		return nil
	}
	return fmt.Errorf("Missing required config: %s", strings.Join(x, ", "))
}
