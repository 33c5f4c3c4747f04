package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable droidfs reads.
const EnvPrefix = "DROIDFS"

// flagKeys maps configuration keys to the flag names registered by RegisterFlags.
var flagKeys = map[string]string{
	"sdkVersion":     "sdk-version",
	"sharedRoot":     "shared-root",
	"appExternalDir": "app-external-dir",
	"localPath":      "local-path",
	"assetsDir":      "assets-dir",
	"classpathDir":   "classpath-dir",
	"format":         "format",
	"templateFile":   "template",
	"verbose":        "verbose",
	"watch.debounce": "debounce",
	"watch.interval": "poll-interval",
}

// SetDefaults installs the default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("sdkVersion", 0)
	v.SetDefault("sharedRoot", "")
	v.SetDefault("appExternalDir", "")
	v.SetDefault("localPath", "")
	v.SetDefault("assetsDir", "")
	v.SetDefault("classpathDir", "")
	v.SetDefault("format", "text")
	v.SetDefault("templateFile", "")
	v.SetDefault("verbose", false)
	v.SetDefault("watch.debounce", "300ms")
	v.SetDefault("watch.interval", "0s")
}

// Load resolves Options with the precedence Flags > Env > Config File > Defaults.
// configFile may be empty, in which case .droidfs.yaml or droidfs.yaml in the
// working directory are used when present. flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Options, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(".droidfs")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
			}
			v.SetConfigName("droidfs")
			if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
			}
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	opts := &Options{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}
	opts.ConfigFile = v.ConfigFileUsed()
	return opts, nil
}
