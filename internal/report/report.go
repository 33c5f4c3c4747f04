// Package report renders storage-root snapshots and resolved descriptors for
// the command line.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/stackvity/droidfs/internal/files"
	"github.com/stackvity/droidfs/internal/handle"
)

// Roots is a snapshot of what a resolver decided plus live availability.
type Roots struct {
	OSVersion         int       `json:"os_version" yaml:"os_version" toml:"os_version"`
	LegacyWriting     bool      `json:"legacy_writing" yaml:"legacy_writing" toml:"legacy_writing"`
	ExternalRoot      string    `json:"external_root" yaml:"external_root" toml:"external_root"`
	ExternalAvailable bool      `json:"external_available" yaml:"external_available" toml:"external_available"`
	LocalRoot         string    `json:"local_root" yaml:"local_root" toml:"local_root"`
	LocalAvailable    bool      `json:"local_available" yaml:"local_available" toml:"local_available"`
	GeneratedAt       time.Time `json:"generated_at" yaml:"generated_at" toml:"generated_at"`
}

// Snapshot captures r at time now.
func Snapshot(r *files.Resolver, now time.Time) Roots {
	return Roots{
		OSVersion:         r.OSVersion(),
		LegacyWriting:     r.LegacyWriting(),
		ExternalRoot:      r.ExternalStoragePath(),
		ExternalAvailable: r.IsExternalStorageAvailable(),
		LocalRoot:         r.LocalStoragePath(),
		LocalAvailable:    r.IsLocalStorageAvailable(),
		GeneratedAt:       now.UTC(),
	}
}

// Resolution describes one resolved descriptor.
type Resolution struct {
	Kind      files.Kind `json:"kind" yaml:"kind" toml:"kind"`
	Path      string     `json:"path" yaml:"path" toml:"path"`
	Resolved  string     `json:"resolved" yaml:"resolved" toml:"resolved"`
	HasAssets bool       `json:"has_assets" yaml:"has_assets" toml:"has_assets"`
	Exists    bool       `json:"exists" yaml:"exists" toml:"exists"`
}

// Describe resolves d through f and records whether it currently exists.
func Describe(d files.Descriptor, f *handle.Factory) Resolution {
	h := f.Open(d)
	return Resolution{
		Kind:      d.Kind,
		Path:      d.Path,
		Resolved:  h.Path(),
		HasAssets: d.Assets != nil,
		Exists:    h.Exists(),
	}
}

// Render encodes v in format: "text", "yaml", "toml" or "json".
func Render(v any, format string) ([]byte, error) {
	switch format {
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return out, nil
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, fmt.Errorf("failed to marshal TOML: %w", err)
		}
		return buf.Bytes(), nil
	case "json":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return append(out, '\n'), nil
	case "text", "":
		return renderText(v)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func renderText(v any) ([]byte, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	switch r := v.(type) {
	case Roots:
		fmt.Fprintf(w, "OS version:\t%d\n", r.OSVersion)
		fmt.Fprintf(w, "Legacy writing:\t%t\n", r.LegacyWriting)
		fmt.Fprintf(w, "External root:\t%s\n", r.ExternalRoot)
		fmt.Fprintf(w, "External available:\t%t\n", r.ExternalAvailable)
		fmt.Fprintf(w, "Local root:\t%s\n", r.LocalRoot)
		fmt.Fprintf(w, "Local available:\t%t\n", r.LocalAvailable)
	case Resolution:
		fmt.Fprintf(w, "Kind:\t%s\n", r.Kind)
		fmt.Fprintf(w, "Path:\t%s\n", r.Path)
		fmt.Fprintf(w, "Resolved:\t%s\n", r.Resolved)
		fmt.Fprintf(w, "Asset reader:\t%t\n", r.HasAssets)
		fmt.Fprintf(w, "Exists:\t%t\n", r.Exists)
	default:
		return nil, fmt.Errorf("no text rendering for %T", v)
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
