package cliparse

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/portalcipa/cipa-server/schedule"
)

// Seed holds first-run values applied when no settings are stored yet
type Seed struct {
	CompanyName    string           `yaml:"company_name"`
	PortalTitle    string           `yaml:"portal_title"`
	Mandate        string           `yaml:"mandate"`
	ElectedCount   int              `yaml:"elected_count"`
	AdminEmails    []string         `yaml:"admin_emails"`
	TimelineEvents []schedule.Event `yaml:"timeline_events"`
}

// LoadSeed reads a YAML seed file. An empty path yields an empty seed.
func LoadSeed(path string) (*Seed, error) {
	if path == "" {
		return &Seed{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	if seed.ElectedCount < 0 {
		return nil, errors.New("elected_count must not be negative")
	}
	for i, ev := range seed.TimelineEvents {
		if ev.Activity == "" {
			return nil, fmt.Errorf("timeline_events[%d]: activity required", i)
		}
	}

	return &seed, nil
}
