package template

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/stackvity/droidfs/internal/filesystem"
)

// Executor renders reports through a user-supplied Go template, used in
// place of the built-in formats when a template file is configured.
type Executor struct {
	template *template.Template
	filePath string
}

// NewExecutor parses the template at templateFilePath.
// Returns nil, nil if templateFilePath is empty so callers fall back to the
// built-in formats.
func NewExecutor(templateFilePath string, fs filesystem.FileSystem) (*Executor, error) {
	if templateFilePath == "" {
		return nil, nil
	}

	templateContent, err := fs.ReadFile(templateFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file '%s': %w", templateFilePath, err)
	}

	tmpl, err := template.New(templateFilePath).Option("missingkey=error").Parse(string(templateContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template file '%s': %w", templateFilePath, err)
	}

	return &Executor{
		template: tmpl,
		filePath: templateFilePath,
	}, nil
}

// Execute applies the template to data, typically a report.Roots or
// report.Resolution value.
func (e *Executor) Execute(data any) ([]byte, error) {
	var rendered bytes.Buffer
	if err := e.template.Execute(&rendered, data); err != nil {
		return nil, fmt.Errorf("failed to execute template '%s': %w", e.filePath, err)
	}
	return rendered.Bytes(), nil
}
