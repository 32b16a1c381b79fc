package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Debug struct {
		Log bool `yaml:"log"`
	} `yaml:"debug"`
	LogSaveDirectory string `yaml:"logSaveDirectory"`
	Discord          struct {
		Enabled           bool     `yaml:"enabled"`
		EnableRareLoot    bool     `yaml:"enableRareLootMessages"`
		EnableLevelUp     bool     `yaml:"enableLevelUpMessages"`
		EnableErrors      bool     `yaml:"enableErrorMessages"`
		BotAdmins         []string `yaml:"botAdmins"`
		ChannelID         string   `yaml:"channelId"`
		Token             string   `yaml:"token"`
		UseWebhook        bool     `yaml:"useWebhook"`
		WebhookURL        string   `yaml:"webhookUrl"`
		ItemWebhookURL    string   `yaml:"itemWebhookUrl"`
		MentionOnDeath    bool     `yaml:"mentionOnDeath"`
		MentionedUserID   string   `yaml:"mentionedUserId"`
		MentionOnKillStop bool     `yaml:"mentionOnKillswitch"`
	} `yaml:"discord"`
	Telegram struct {
		Enabled bool   `yaml:"enabled"`
		ChatID  int64  `yaml:"chatId"`
		Token   string `yaml:"token"`
	} `yaml:"telegram"`
	Web struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"web"`
}

// CharacterCfg holds everything that varies per bot character: what to loot,
// what to sell, who to never attack, and which safety switches are armed.
type CharacterCfg struct {
	GrindingHotspotID int    `yaml:"grindingHotspotId"`
	CurrentTravelPath string `yaml:"currentTravelPath"`

	Loot struct {
		Poor          bool     `yaml:"poor"`
		Common        bool     `yaml:"common"`
		Uncommon      bool     `yaml:"uncommon"`
		ExcludedNames []string `yaml:"excludedNames"`
	} `yaml:"loot"`

	Vendor struct {
		SellUncommon  bool     `yaml:"sellUncommon"`
		ExcludedNames []string `yaml:"excludedNames"`
	} `yaml:"vendor"`

	Food  string `yaml:"food"`
	Drink string `yaml:"drink"`

	// BotFriend is a second bot running alongside this one; its kills are
	// never looted and its targets never stolen.
	BotFriend string `yaml:"botFriend"`

	Battlegrounds bool `yaml:"battlegrounds"`
	ArenaSkirmish bool `yaml:"arenaSkirmish"`

	Killswitch struct {
		TeleportCheck bool `yaml:"teleportCheck"`
		StuckCheck    bool `yaml:"stuckCheck"`
		GMZoneCheck   bool `yaml:"gmZoneCheck"`
	} `yaml:"killswitch"`
}

func (c CharacterCfg) LootQuality(quality int) bool {
	switch quality {
	case 0:
		return c.Loot.Poor
	case 1:
		return c.Loot.Common
	case 2:
		return c.Loot.Uncommon
	default:
		return true
	}
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading settings file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("error parsing settings file: %w", err)
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8087
	}
	if cfg.Web.Host == "" {
		cfg.Web.Host = "localhost"
	}

	return cfg, nil
}

func LoadCharacter(path string) (*CharacterCfg, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading character file %s: %w", path, err)
	}

	cfg := &CharacterCfg{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("error parsing character file: %w", err)
	}

	return cfg, nil
}

func SaveCharacter(path string, cfg *CharacterCfg) error {
	d, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshalling character config: %w", err)
	}
	if err := os.WriteFile(path, d, 0o644); err != nil {
		return fmt.Errorf("error writing character file %s: %w", path, err)
	}

	return nil
}
