package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SlackAPIToken      string `yaml:"slack_api_token"`
	SlackOrgChannel    string `yaml:"slack_announce_channel_org"`
	SlackPublicChannel string `yaml:"slack_announce_channel_pub"`

	RosterSheetURL  string            `yaml:"roster_sheet_url"`
	RosterChannel   string            `yaml:"roster_channel"`
	RosterIDColumn  string            `yaml:"roster_id_column"`
	RosterColumns   map[string]string `yaml:"roster_columns"` // record field -> column header
	GoogleAPIToken  string            `yaml:"google_api_token"`
	EventsSheetURL  string            `yaml:"events_sheet_url"`
	RolesSheetURL   string            `yaml:"roles_sheet_url"`
	RoleExcludeList []string          `yaml:"role_exclude_list"`

	ShortlinkSheetURL string `yaml:"shortlink_sheet_url"`
	RebrandlyAPIKey   string `yaml:"rebrandly_api_key"`
	ShortlinkDomain   string `yaml:"shortlink_domain"`

	TrelloAppKey   string   `yaml:"trello_app_key"`
	TrelloToken    string   `yaml:"trello_token"`
	TrelloBoardURL string   `yaml:"trello_board_url"`
	CardIgnoreList []string `yaml:"card_ignore_list"`

	LockPrefix    string   `yaml:"lock_prefix"`
	SkipKeywords  []string `yaml:"skip_keywords"`
	UnsetKeywords []string `yaml:"unset_keywords"`
	RenderCap     int      `yaml:"render_cap"`

	DBPath                     string            `yaml:"db_path"`
	Timezone                   string            `yaml:"timezone"`
	ExternalHTTPTimeoutSeconds int               `yaml:"external_http_timeout_seconds"`
	Schedules                  map[string]string `yaml:"schedules"` // job name -> cron expression

	Location *time.Location `yaml:"-"`
}

// LoadConfig reads config.yaml (or CONFIG_PATH), applies env-var overrides,
// then fills defaults. Missing per-service credentials are not fatal here;
// each job validates what it actually needs before running.
func LoadConfig() Config {
	return LoadConfigFrom("")
}

// LoadConfigFrom is LoadConfig with an explicit path; an empty path falls
// back to CONFIG_PATH and then ./config.yaml.
func LoadConfigFrom(path string) Config {
	var cfg Config

	configPath := path
	if configPath == "" {
		configPath = "config.yaml"
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			configPath = envPath
		}
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values. Names follow the .env files these
	// scripts were historically driven by.
	envOverride(&cfg.SlackAPIToken, "SLACK_API_TOKEN")
	envOverride(&cfg.SlackOrgChannel, "SLACK_ANNOUNCE_CHANNEL_ORG")
	envOverride(&cfg.SlackPublicChannel, "SLACK_ANNOUNCE_CHANNEL_PUB")
	envOverride(&cfg.RosterSheetURL, "ROSTER_SHEET_URL")
	envOverride(&cfg.RosterChannel, "ROSTER_CHANNEL")
	envOverride(&cfg.GoogleAPIToken, "GOOGLE_API_TOKEN")
	envOverride(&cfg.EventsSheetURL, "EVENTS_SHEET_URL")
	envOverride(&cfg.RolesSheetURL, "ROLES_SHEET_URL")
	envOverride(&cfg.ShortlinkSheetURL, "SHORTLINK_GSHEET")
	envOverride(&cfg.RebrandlyAPIKey, "REBRANDLY_API_KEY")
	envOverride(&cfg.ShortlinkDomain, "SHORTLINK_DOMAIN")
	envOverride(&cfg.TrelloAppKey, "TRELLO_APP_KEY")
	envOverride(&cfg.TrelloToken, "TRELLO_SECRET")
	envOverride(&cfg.TrelloBoardURL, "TRELLO_BOARD_URL")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverrideList(&cfg.CardIgnoreList, "CARD_IGNORE_LIST")
	envOverrideList(&cfg.RoleExcludeList, "ROLE_EXCLUDE_LIST")

	// Defaults
	if cfg.RosterIDColumn == "" {
		cfg.RosterIDColumn = "slack_id"
	}
	if cfg.RosterColumns == nil {
		cfg.RosterColumns = map[string]string{
			"first_name":     "first_name",
			"last_name":      "last_name",
			"slack_id":       "slack_id",
			"slack_username": "slack_username",
			"avatar_url":     "avatar_url",
		}
	}
	if cfg.LockPrefix == "" {
		cfg.LockPrefix = "lock:"
	}
	if cfg.SkipKeywords == nil {
		cfg.SkipKeywords = []string{"pass", "skip", "none"}
	}
	if cfg.RenderCap == 0 {
		cfg.RenderCap = 10
	}
	if cfg.RenderCap < 0 {
		log.Fatalf("invalid render_cap '%d': must be >= 1", cfg.RenderCap)
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg
}

// RequireFields aborts unless every named config value is non-empty. Jobs
// call this with just the credentials they depend on.
func (c Config) RequireFields(fields map[string]string) {
	for name, val := range fields {
		if val == "" {
			log.Fatalf("Required config '%s' is not set (via config.yaml or env var)", name)
		}
	}
}

func (c Config) SlackConfigured() bool {
	return c.SlackAPIToken != ""
}

func (c Config) TrelloConfigured() bool {
	return c.TrelloAppKey != "" && c.TrelloToken != ""
}

func (c Config) DBConfigured() bool {
	return c.DBPath != ""
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideList(field *[]string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = nil
		for _, item := range strings.Split(val, ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				*field = append(*field, item)
			}
		}
	}
}

// Describe formats the subset of config relevant to a job, for the
// confirmation prompt shown before anything is written.
func (c Config) Describe(pairs ...[2]string) string {
	var b strings.Builder
	b.WriteString("We are using the following configuration:\n")
	for _, p := range pairs {
		fmt.Fprintf(&b, "  * %s: %s\n", p[0], p[1])
	}
	return b.String()
}
