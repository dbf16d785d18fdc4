package pricing

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Item is a single priced entry of a catalog.
type Item struct {
	Label string  `yaml:"label" json:"label"`
	USD   float64 `yaml:"usd" json:"usd"`
}

// Catalog is an ordered, immutable price list quoted in USD.
type Catalog struct {
	Key         string `yaml:"key" json:"key"`
	Title       string `yaml:"title" json:"title"`
	Emoji       string `yaml:"emoji" json:"emoji"`
	Description string `yaml:"description" json:"description"`
	Items       []Item `yaml:"items" json:"items"`
}

// DefaultCatalogs returns the built-in virtual currency bundles and club tiers.
func DefaultCatalogs() []Catalog {
	return []Catalog{
		{
			Key:         "pavos",
			Title:       "Pavos Fortnite",
			Emoji:       "🪙",
			Description: "Recargá pavos de forma segura",
			Items: []Item{
				{Label: "🪙 1.000 Pavos", USD: 6},
				{Label: "🪙 2.800 Pavos", USD: 15},
				{Label: "🪙 5.000 Pavos", USD: 28},
				{Label: "🪙 13.500 Pavos", USD: 42},
			},
		},
		{
			Key:         "club",
			Title:       "Club de Fortnite",
			Emoji:       "🎟️",
			Description: "Beneficios exclusivos todos los meses",
			Items: []Item{
				{Label: "🎟️ 1 mes", USD: 3},
				{Label: "🎟️ 3 meses", USD: 9},
				{Label: "🎟️ 6 meses", USD: 15},
			},
		},
	}
}

// Validate reports the first structural problem with c.
func (c Catalog) Validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return errors.New("catalog key is required")
	}
	if len(c.Items) == 0 {
		return fmt.Errorf("catalog %s has no items", c.Key)
	}
	for i, item := range c.Items {
		if strings.TrimSpace(item.Label) == "" {
			return fmt.Errorf("catalog %s item %d has no label", c.Key, i)
		}
		if item.USD <= 0 {
			return fmt.Errorf("catalog %s item %q must have a positive usd price", c.Key, item.Label)
		}
	}
	return nil
}

type catalogFile struct {
	Catalogs []Catalog `yaml:"catalogs"`
}

// LoadCatalogs reads catalogs from a YAML file of the form
//
//	catalogs:
//	  - key: pavos
//	    title: Pavos Fortnite
//	    items:
//	      - {label: "1.000 Pavos", usd: 6}
//
// Keys are lower-cased and must be unique.
func LoadCatalogs(path string) ([]Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogs: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalogs: %w", err)
	}
	if len(file.Catalogs) == 0 {
		return nil, errors.New("catalog file defines no catalogs")
	}

	seen := make(map[string]struct{}, len(file.Catalogs))
	for i := range file.Catalogs {
		c := &file.Catalogs[i]
		c.Key = strings.ToLower(strings.TrimSpace(c.Key))
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[c.Key]; dup {
			return nil, fmt.Errorf("duplicate catalog key %s", c.Key)
		}
		seen[c.Key] = struct{}{}
	}
	return file.Catalogs, nil
}
