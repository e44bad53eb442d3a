package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"autosonic/internal/domain"
)

const (
	fallbackLabel = "Unknown Issue"
	fallbackColor = "gray"
	fallbackIcon  = "alert-circle"
)

var builtin = map[string]domain.DamageStyle{
	"engine_knock":          {Label: "Engine Knock", Color: "red", Icon: "engine"},
	"brake_squeal":          {Label: "Brake Squeal", Color: "orange", Icon: "disc"},
	"transmission_grinding": {Label: "Transmission Grinding", Color: "purple", Icon: "cog"},
	"exhaust_leak":          {Label: "Exhaust Leak", Color: "yellow", Icon: "wind"},
	"belt_squeal":           {Label: "Belt Squeal", Color: "blue", Icon: "refresh-cw"},
	"normal_operation":      {Label: "Normal Operation", Color: "green", Icon: "check-circle"},
	"analysis_failed":       {Label: "Analysis Failed", Color: "gray", Icon: "x-circle"},
	"unknown":               {Label: fallbackLabel, Color: fallbackColor, Icon: fallbackIcon},
}

// Catalog maps damage type identifiers to display styles.
type Catalog struct {
	styles   map[string]domain.DamageStyle
	fallback domain.DamageStyle
}

type catalogFile struct {
	DamageTypes map[string]domain.DamageStyle `yaml:"damage_types"`
	Fallback    domain.DamageStyle            `yaml:"fallback"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	styles := make(map[string]domain.DamageStyle, len(builtin))
	for id, style := range builtin {
		styles[id] = style
	}
	return &Catalog{
		styles:   styles,
		fallback: domain.DamageStyle{Label: fallbackLabel, Color: fallbackColor, Icon: fallbackIcon},
	}
}

// Load reads a YAML override file on top of the built-in catalog.
// A blank path or a missing file yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	c := Default()
	if strings.TrimSpace(path) == "" {
		return c, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read catalog file %q: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(contents, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %q: %w", path, err)
	}

	for id, style := range file.DamageTypes {
		key := normalizeID(id)
		if key == "" {
			return nil, fmt.Errorf("catalog file %q: damage type id cannot be empty", path)
		}
		c.styles[key] = merge(c.styles[key], style)
	}
	c.fallback = merge(c.fallback, file.Fallback)

	return c, nil
}

// Lookup returns the style for damageType, or the fallback style with a
// label derived from the identifier when it is not catalogued.
func (c *Catalog) Lookup(damageType string) domain.DamageStyle {
	key := normalizeID(damageType)
	if style, ok := c.styles[key]; ok {
		if style.Label == "" {
			style.Label = humanizeID(key)
		}
		if style.Color == "" {
			style.Color = c.fallback.Color
		}
		if style.Icon == "" {
			style.Icon = c.fallback.Icon
		}
		return style
	}

	style := c.fallback
	if label := humanizeID(key); label != "" {
		style.Label = label
	}
	return style
}

// Known reports whether damageType has its own catalog entry.
func (c *Catalog) Known(damageType string) bool {
	_, ok := c.styles[normalizeID(damageType)]
	return ok
}

func merge(base domain.DamageStyle, override domain.DamageStyle) domain.DamageStyle {
	if v := strings.TrimSpace(override.Label); v != "" {
		base.Label = v
	}
	if v := strings.TrimSpace(override.Color); v != "" {
		base.Color = v
	}
	if v := strings.TrimSpace(override.Icon); v != "" {
		base.Icon = v
	}
	return base
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func humanizeID(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	if len(words) == 0 {
		return ""
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}
