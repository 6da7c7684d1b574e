package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "characters.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validCatalog = `{
  "characters": [
    {
      "id": "frost-mage",
      "name": "서리 마법사",
      "skill": {"name": "Ice Lance", "trigger_phrase": "얼음 창이여 꿰뚫어라", "effect_duration_ms": 800},
      "ultimate": {"name": "Absolute Zero", "trigger_phrase": "만물이여 얼어붙어라", "effect_duration_ms": 2000}
    }
  ]
}`

func TestLoad(t *testing.T) {
	c, err := Load(writeCatalog(t, validCatalog))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	ch, ok := c.Character("frost-mage")
	require.True(t, ok)
	assert.Equal(t, "얼음 창이여 꿰뚫어라", ch.Skill.TriggerPhrase)
	assert.Equal(t, KindSkill, ch.Skill.Kind)
	assert.Equal(t, KindUltimate, ch.Ultimate.Kind)

	_, ok = c.Character("nope")
	assert.False(t, ok)
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{name: "empty characters", content: `{"characters": []}`},
		{name: "missing id", content: `{"characters": [{"skill": {"trigger_phrase": "x"}, "ultimate": {"trigger_phrase": "y"}}]}`},
		{name: "missing skill phrase", content: `{"characters": [{"id": "a", "skill": {}, "ultimate": {"trigger_phrase": "y"}}]}`},
		{name: "missing ultimate phrase", content: `{"characters": [{"id": "a", "skill": {"trigger_phrase": "x"}, "ultimate": {}}]}`},
		{name: "bad json", content: `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeCatalog(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_DuplicateID(t *testing.T) {
	content := `{"characters": [
		{"id": "a", "skill": {"trigger_phrase": "x"}, "ultimate": {"trigger_phrase": "y"}},
		{"id": "a", "skill": {"trigger_phrase": "x"}, "ultimate": {"trigger_phrase": "y"}}
	]}`
	_, err := Load(writeCatalog(t, content))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
