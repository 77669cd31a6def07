package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/harrison/scour/internal/rules"
)

// RuleConfig declares an additional cleanup rule in the config file.
// At most one of IndicatorFile and IndicatorExt may be set; when neither
// is set the rule matches its folder unconditionally.
type RuleConfig struct {
	// Folder is the directory name the rule matches (e.g. "node_modules")
	Folder string `yaml:"folder"`

	// IndicatorFile requires a sibling file with this exact name
	IndicatorFile string `yaml:"indicator_file"`

	// IndicatorExt requires a sibling file with this extension (no dot)
	IndicatorExt string `yaml:"indicator_ext"`

	// Description labels the rule in reports (e.g. "Gradle cache")
	Description string `yaml:"description"`
}

// Rule converts the declaration into a cleanup rule.
func (rc RuleConfig) Rule() rules.Rule {
	r := rules.Rule{Folder: rc.Folder, Description: rc.Description}
	switch {
	case rc.IndicatorFile != "":
		r.Indicator = rules.SiblingFile(rc.IndicatorFile)
	case rc.IndicatorExt != "":
		r.Indicator = rules.SiblingExt(rc.IndicatorExt)
	}
	if r.Description == "" {
		r.Description = rc.Folder
	}
	return r
}

// HistoryConfig controls the run history ledger
type HistoryConfig struct {
	// Enabled records cleanup runs in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath overrides the database location (default: $SCOUR_HOME/history/runs.db)
	DBPath string `yaml:"db_path"`
}

// CleanConfig extends cleanup behavior
type CleanConfig struct {
	// Rules are appended after the built-in rule table
	Rules []RuleConfig `yaml:"rules"`
}

// CombineConfig extends aggregation filtering
type CombineConfig struct {
	// IgnoreDirs are directory names skipped in addition to the built-in set
	IgnoreDirs []string `yaml:"ignore_dirs"`

	// IgnoreFiles are file names skipped in addition to the built-in set
	IgnoreFiles []string `yaml:"ignore_files"`

	// TextNames are extensionless artifact names accepted in addition to the built-in set
	TextNames []string `yaml:"text_names"`
}

// Config represents scour configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// History contains run history configuration
	History HistoryConfig `yaml:"history"`

	// Clean contains cleanup mode configuration
	Clean CleanConfig `yaml:"clean"`

	// Combine contains aggregation mode configuration
	Combine CombineConfig `yaml:"combine"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "", // resolved under the scour home at open time
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}

	// Nested sections merge field by field, and only when the section is
	// present in the file. A bare `history:` key must not zero the defaults.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if section, exists := rawMap["history"]; exists && section != nil {
			historyMap, _ := section.(map[string]interface{})
			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = fileCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = fileCfg.History.DBPath
			}
		}
	}

	cfg.Clean.Rules = fileCfg.Clean.Rules
	cfg.Combine.IgnoreDirs = fileCfg.Combine.IgnoreDirs
	cfg.Combine.IgnoreFiles = fileCfg.Combine.IgnoreFiles
	cfg.Combine.TextNames = fileCfg.Combine.TextNames

	return cfg, nil
}

// CleanRules returns the effective rule table: the built-in rules followed
// by any rules declared in the config file, in declaration order.
func (c *Config) CleanRules() []rules.Rule {
	table := rules.Default()
	for _, rc := range c.Clean.Rules {
		table = append(table, rc.Rule())
	}
	return table
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	for i, rc := range c.Clean.Rules {
		if rc.Folder == "" {
			return fmt.Errorf("clean.rules[%d]: folder cannot be empty", i)
		}
		if rc.IndicatorFile != "" && rc.IndicatorExt != "" {
			return fmt.Errorf("clean.rules[%d] (%s): indicator_file and indicator_ext are mutually exclusive", i, rc.Folder)
		}
	}

	return nil
}
