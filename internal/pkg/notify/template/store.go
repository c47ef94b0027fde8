// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package template

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when no template is registered under a name
var ErrNotFound = errors.New("template not found")

// Store is an in-memory template registry
type Store struct {
	mu        sync.RWMutex
	templates map[string]*Template
	engine    *TemplateEngine
}

func NewStore() *Store {
	return &Store{
		templates: make(map[string]*Template),
		engine:    NewTemplateEngine(),
	}
}

// Register validates and stores t, replacing any template of the same name
func (s *Store) Register(t *Template) error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if err := s.engine.ValidateTemplate(t.Title); err != nil {
		return fmt.Errorf("invalid title in %s: %w", t.Name, err)
	}
	if err := s.engine.ValidateTemplate(t.Content); err != nil {
		return fmt.Errorf("invalid content in %s: %w", t.Name, err)
	}
	s.mu.Lock()
	s.templates[t.Name] = t
	s.mu.Unlock()
	return nil
}

func (s *Store) Get(name string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return t, nil
}

func (s *Store) Remove(name string) {
	s.mu.Lock()
	delete(s.templates, name)
	s.mu.Unlock()
}

func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	return names
}

// LoadDir registers every *.tmpl file in dir. The file name without extension
// is the template name, the first line is the subject and the rest is the body.
// *.html.tmpl files are sent as html.
func (s *Store) LoadDir(dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.tmpl"))
	if err != nil {
		return 0, err
	}
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return 0, err
		}
		base := strings.TrimSuffix(filepath.Base(f), ".tmpl")
		format := "text"
		if strings.HasSuffix(base, ".html") {
			base = strings.TrimSuffix(base, ".html")
			format = "html"
		}
		title, content, _ := strings.Cut(string(raw), "\n")
		t := &Template{
			Name:    base,
			Title:   strings.TrimSpace(strings.TrimPrefix(title, "Subject:")),
			Content: strings.TrimLeft(content, "\r\n"),
			Format:  format,
		}
		if err := s.Register(t); err != nil {
			return 0, err
		}
	}
	return len(files), nil
}

// Render renders the named template's subject and body
func (s *Store) Render(name string, data map[string]any) (t *Template, subject, body string, err error) {
	t, err = s.Get(name)
	if err != nil {
		return nil, "", "", err
	}
	if subject, err = s.engine.Render(t.Title, data); err != nil {
		return nil, "", "", err
	}
	if body, err = s.engine.Render(t.Content, data); err != nil {
		return nil, "", "", err
	}
	return t, subject, body, nil
}
