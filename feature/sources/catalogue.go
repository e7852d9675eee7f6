package sources

import (
	"fmt"
	"os"

	"bansync/core/models"

	"gopkg.in/yaml.v3"
)

// catalogue is the YAML layout of the sources file.
type catalogue struct {
	Lists []models.BanSourceList `yaml:"lists"`
}

// LoadCatalogue reads the list definitions from a YAML file.
func LoadCatalogue(path string) ([]models.BanSourceList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue: %w", err)
	}
	return ParseCatalogue(data)
}

// ParseCatalogue decodes and validates list definitions.
func ParseCatalogue(data []byte) ([]models.BanSourceList, error) {
	var c catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Lists))
	for _, l := range c.Lists {
		if l.ID == "" {
			return nil, fmt.Errorf("catalogue entry %q has no id", l.Name)
		}
		if _, dup := seen[l.ID]; dup {
			return nil, fmt.Errorf("duplicate list id %q", l.ID)
		}
		seen[l.ID] = struct{}{}

		switch l.Provider {
		case models.ProviderJSONFeed, models.ProviderBucketDump, models.ProviderBucketExport:
		default:
			return nil, fmt.Errorf("list %s: unknown provider %q", l.ID, l.Provider)
		}
	}
	return c.Lists, nil
}
