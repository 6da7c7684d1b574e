package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

type Kind string

const (
	KindSkill    Kind = "skill"
	KindUltimate Kind = "ultimate"
)

// Ability is one castable entry from the character catalog. The battle core
// only consumes TriggerPhrase and Kind; the rest rides along for the
// presentation layer.
type Ability struct {
	Name             string `json:"name"`
	TriggerPhrase    string `json:"trigger_phrase"`
	Kind             Kind   `json:"kind"`
	ImageRef         string `json:"image_ref,omitempty"`
	EffectDurationMs int    `json:"effect_duration_ms,omitempty"`
}

type Character struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Skill    Ability `json:"skill"`
	Ultimate Ability `json:"ultimate"`
}

type Catalog struct {
	characters map[string]Character
}

type rawCatalog struct {
	Characters []Character `json:"characters"`
}

// Load reads the character catalog at path. It requires the `characters`
// array and validates that every entry carries both trigger phrases.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}
	var rc rawCatalog
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	if len(rc.Characters) == 0 {
		return nil, fmt.Errorf("catalog file %s: characters is empty", path)
	}

	chars := make(map[string]Character, len(rc.Characters))
	for _, c := range rc.Characters {
		if c.ID == "" {
			return nil, fmt.Errorf("catalog file %s: character missing 'id'", path)
		}
		if c.Skill.TriggerPhrase == "" {
			return nil, fmt.Errorf("catalog file %s: character %s: skill missing 'trigger_phrase'", path, c.ID)
		}
		if c.Ultimate.TriggerPhrase == "" {
			return nil, fmt.Errorf("catalog file %s: character %s: ultimate missing 'trigger_phrase'", path, c.ID)
		}
		if _, dup := chars[c.ID]; dup {
			return nil, fmt.Errorf("catalog file %s: duplicate character id %s", path, c.ID)
		}
		c.Skill.Kind = KindSkill
		c.Ultimate.Kind = KindUltimate
		chars[c.ID] = c
	}
	return &Catalog{characters: chars}, nil
}

func (c *Catalog) Character(id string) (Character, bool) {
	ch, ok := c.characters[id]
	return ch, ok
}

func (c *Catalog) Len() int {
	return len(c.characters)
}
