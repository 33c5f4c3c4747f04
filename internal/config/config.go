package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Report formats accepted by the roots and resolve commands.
var validFormats = map[string]bool{
	"text": true,
	"yaml": true,
	"toml": true,
	"json": true,
}

// WatchConfig holds configuration specific to watch mode.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Interval time.Duration `mapstructure:"interval"` // 0 disables polling
}

// Options holds all the configuration settings for droidfs.
// Tags are used by Viper for unmarshalling from config files, env vars, and flags.
type Options struct {
	// Device description
	SDKVersion     int    `mapstructure:"sdkVersion"`
	SharedRoot     string `mapstructure:"sharedRoot"`
	AppExternalDir string `mapstructure:"appExternalDir"` // empty means the OS provides none
	LocalPath      string `mapstructure:"localPath"`      // empty means "fall back to the external root"

	// Bundled content
	AssetsDir    string `mapstructure:"assetsDir"`
	ClasspathDir string `mapstructure:"classpathDir"`

	// Output
	Format       string `mapstructure:"format"`
	TemplateFile string `mapstructure:"templateFile"`
	Verbose      bool   `mapstructure:"verbose"`

	Watch WatchConfig `mapstructure:"watch"`

	ConfigFile string `mapstructure:"config"`
}

// RegisterFlags defines the command-line flags backing Options on flags.
func RegisterFlags(flags *pflag.FlagSet, opts *Options) {
	flags.StringVarP(&opts.ConfigFile, "config", "c", "", "Configuration file path (default: .droidfs.yaml, droidfs.yaml)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable verbose debug logging")

	flags.IntVar(&opts.SDKVersion, "sdk-version", 0, "OS API level of the device being described")
	flags.StringVar(&opts.SharedRoot, "shared-root", "", "Shared (external) storage root directory")
	flags.StringVar(&opts.AppExternalDir, "app-external-dir", "", "App-scoped external files directory, if the OS provides one")
	flags.StringVar(&opts.LocalPath, "local-path", "", "Private local storage root (defaults to the external root)")

	flags.StringVar(&opts.AssetsDir, "assets-dir", "", "Directory holding the unpacked bundled assets")
	flags.StringVar(&opts.ClasspathDir, "classpath-dir", "", "Directory holding classpath resources")

	flags.StringVarP(&opts.Format, "format", "f", "text", "Output format: text, yaml, toml or json")
	flags.StringVar(&opts.TemplateFile, "template", "", "Path to a custom Go template for report output")
	flags.DurationVar(&opts.Watch.Debounce, "debounce", 300*time.Millisecond, "Debounce applied to storage events in watch mode")
	flags.DurationVar(&opts.Watch.Interval, "poll-interval", 0, "Also re-check storage availability at this interval in watch mode (0 disables)")
}

// ValidateConfig checks the loaded configuration options for validity.
func (opts *Options) ValidateConfig() error {
	var errs []string

	if opts.SDKVersion <= 0 {
		errs = append(errs, "sdkVersion must be positive")
	}

	if strings.TrimSpace(opts.SharedRoot) == "" {
		errs = append(errs, "sharedRoot cannot be empty")
	} else if !filepath.IsAbs(opts.SharedRoot) {
		errs = append(errs, fmt.Sprintf("sharedRoot '%s' must be an absolute path", opts.SharedRoot))
	}
	// A missing shared root is reported as removed media, not rejected here.

	if opts.AppExternalDir != "" && !filepath.IsAbs(opts.AppExternalDir) {
		errs = append(errs, fmt.Sprintf("appExternalDir '%s' must be an absolute path", opts.AppExternalDir))
	}

	for _, d := range []struct{ name, dir string }{
		{"assetsDir", opts.AssetsDir},
		{"classpathDir", opts.ClasspathDir},
	} {
		name, dir := d.name, d.dir
		if dir == "" {
			continue
		}
		info, err := os.Stat(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				errs = append(errs, fmt.Sprintf("%s '%s' does not exist", name, dir))
			} else {
				errs = append(errs, fmt.Sprintf("cannot access %s '%s': %v", name, dir, err))
			}
		} else if !info.IsDir() {
			errs = append(errs, fmt.Sprintf("%s '%s' is not a directory", name, dir))
		}
	}

	if !validFormats[opts.Format] {
		errs = append(errs, fmt.Sprintf("format must be one of text, yaml, toml, json (got '%s')", opts.Format))
	}

	if opts.TemplateFile != "" {
		info, err := os.Stat(opts.TemplateFile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				errs = append(errs, fmt.Sprintf("templateFile '%s' does not exist", opts.TemplateFile))
			} else {
				errs = append(errs, fmt.Sprintf("cannot access templateFile '%s': %v", opts.TemplateFile, err))
			}
		} else if info.IsDir() {
			errs = append(errs, fmt.Sprintf("templateFile '%s' is a directory, not a file", opts.TemplateFile))
		}
	}

	if opts.Watch.Debounce < 0 {
		errs = append(errs, "watch.debounce duration must be non-negative")
	}
	if opts.Watch.Interval < 0 {
		errs = append(errs, "watch.interval duration must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	return nil
}
