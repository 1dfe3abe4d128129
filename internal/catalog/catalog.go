// Package catalog holds the municipal services and emergency contacts shown
// to citizens. The data is embedded YAML so it ships inside the binary.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Service is a municipal service citizens can complain about
type Service struct {
	Category    string `yaml:"category" json:"category"`
	Code        string `yaml:"code" json:"code"`
	Icon        string `yaml:"icon" json:"icon"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// EmergencyContact is a 24/7 emergency number
type EmergencyContact struct {
	Icon   string `yaml:"icon" json:"icon"`
	Name   string `yaml:"name" json:"name"`
	Number string `yaml:"number" json:"number"`
}

// Catalog is the full set of services and contacts
type Catalog struct {
	Services          []Service          `yaml:"services" json:"services"`
	EmergencyContacts []EmergencyContact `yaml:"emergency_contacts" json:"emergency_contacts"`
}

// Default returns the embedded catalog
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from a YAML file, falling back to the embedded one
// when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(content)
}

// Parse decodes and validates catalog YAML
func Parse(content []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(content, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every service has a unique category and a two-letter code
func (c *Catalog) Validate() error {
	if len(c.Services) == 0 {
		return fmt.Errorf("catalog has no services")
	}

	seen := make(map[string]bool, len(c.Services))
	for _, s := range c.Services {
		category := strings.ToLower(strings.TrimSpace(s.Category))
		if category == "" {
			return fmt.Errorf("service %q has no category", s.Name)
		}
		if seen[category] {
			return fmt.Errorf("duplicate service category %q", s.Category)
		}
		seen[category] = true

		if len([]rune(s.Code)) != 2 || strings.ToUpper(s.Code) != s.Code {
			return fmt.Errorf("service %q needs a two-letter uppercase code, got %q", s.Category, s.Code)
		}
	}
	return nil
}

// ServiceCodes maps each service category to its complaint ID code
func (c *Catalog) ServiceCodes() map[string]string {
	codes := make(map[string]string, len(c.Services))
	for _, s := range c.Services {
		codes[s.Category] = s.Code
	}
	return codes
}
