package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesWebDefaults(t *testing.T) {
	path := writeTemp(t, "settings.yaml", `
debug:
  log: true
discord:
  enabled: true
  token: abc123
  channelId: "555"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug.Log)
	assert.True(t, cfg.Discord.Enabled)
	assert.Equal(t, "abc123", cfg.Discord.Token)
	assert.Equal(t, "localhost", cfg.Web.Host)
	assert.Equal(t, 8087, cfg.Web.Port)
}

func TestLoadKeepsExplicitWebSettings(t *testing.T) {
	path := writeTemp(t, "settings.yaml", `
web:
  enabled: true
  host: 0.0.0.0
  port: 9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Web.Host)
	assert.Equal(t, 9000, cfg.Web.Port)
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	path := writeTemp(t, "settings.yaml", "discord: [broken")
	_, err := Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCharacterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warrior.yaml")

	cfg := &CharacterCfg{
		GrindingHotspotID: 7,
		Food:              "Tough Jerky",
		Drink:             "Refreshing Spring Water",
	}
	cfg.Loot.Common = true
	cfg.Vendor.SellUncommon = true

	require.NoError(t, SaveCharacter(path, cfg))

	loaded, err := LoadCharacter(path)
	require.NoError(t, err)
	assert.Equal(t, "Tough Jerky", loaded.Food)
	assert.Equal(t, 7, loaded.GrindingHotspotID)
	assert.True(t, loaded.Loot.Common)
	assert.True(t, loaded.Vendor.SellUncommon)
}

func TestLootQuality(t *testing.T) {
	var cfg CharacterCfg
	cfg.Loot.Common = true
	cfg.Loot.Uncommon = true

	assert.False(t, cfg.LootQuality(0), "poor stays on the corpse unless enabled")
	assert.True(t, cfg.LootQuality(1))
	assert.True(t, cfg.LootQuality(2))
	assert.True(t, cfg.LootQuality(3), "rare and above is always worth taking")
	assert.True(t, cfg.LootQuality(4))
}
