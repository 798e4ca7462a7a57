// Package prompt renders the summarization prompts sent to an inference
// engine. Styles are registered as text/template templates; callers pick a
// style and supply the source text plus optional custom instructions.
package prompt

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	digesterrors "github.com/sweetpotato0/digest/errors"
)

// Vars holds the values substituted into a template.
type Vars map[string]any

// Manager holds named prompt templates. It is safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{templates: make(map[string]*template.Template)}
}

// Register parses content and stores it under name. Registering the same
// name twice is an error.
func (m *Manager) Register(name, content string) error {
	if name == "" {
		return fmt.Errorf("%w: template name must not be empty", digesterrors.ErrInvalidRequest)
	}
	tmpl, err := template.New(name).Parse(content)
	if err != nil {
		return fmt.Errorf("parse template %q: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.templates[name]; exists {
		return fmt.Errorf("template %q already registered", name)
	}
	m.templates[name] = tmpl
	return nil
}

// Render executes the named template with vars.
func (m *Manager) Render(name string, vars Vars) (string, error) {
	m.mu.RLock()
	tmpl, ok := m.templates[name]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: template %q", digesterrors.ErrNotFound, name)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}
	return buf.String(), nil
}

// Names returns the registered template names, in no particular order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.templates))
	for name := range m.templates {
		names = append(names, name)
	}
	return names
}
