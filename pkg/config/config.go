/*
Package config manages TOML config for kwserve.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/bastiangx/kwserve/internal/utils"
	"github.com/bastiangx/kwserve/pkg/analysis"
	"github.com/bastiangx/kwserve/pkg/extract"
	"github.com/bastiangx/kwserve/pkg/prefix"
)

// Environment variables that override file values.
const (
	EnvPrefix   = "KWSERVE_PREFIX"
	EnvFormat   = "KWSERVE_FORMAT"
	EnvHTTPAddr = "KWSERVE_HTTP_ADDR"
)

// Formats accepted by [report] format.
var Formats = []string{"text", "json", "msgpack"}

// Config holds the entire config structure
type Config struct {
	Extract  ExtractConfig  `toml:"extract"`
	Report   ReportConfig   `toml:"report"`
	Analysis AnalysisConfig `toml:"analysis"`
	Server   ServerConfig   `toml:"server"`
}

// ExtractConfig controls how calls are found in documents.
type ExtractConfig struct {
	Prefix        string `toml:"prefix"`
	DetectPrefix  bool   `toml:"detect_prefix"`
	ImportModule  string `toml:"import_module"`
	RequireParens bool   `toml:"require_parens"`
	TrimParens    bool   `toml:"trim_parens"`
}

// ReportConfig controls output.
type ReportConfig struct {
	Limit     int    `toml:"limit"`
	Format    string `toml:"format"`
	Precision int    `toml:"precision"`
}

// AnalysisConfig holds batch analysis options.
type AnalysisConfig struct {
	Workers int `toml:"workers"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	HTTPAddr  string `toml:"http_addr"`
	CacheSize int    `toml:"cache_size"`
}

// GetDefaultConfigPath returns the default path for config.toml, under the
// platform config dir or the first writable fallback.
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigPath("config.toml")
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/kwserve/config.toml
// 3. Builtin defaults
//
// Environment overrides are applied on top in every case.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path := loadFile(customConfigPath)
	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, path, err
	}
	return config, path, nil
}

func loadFile(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			Prefix:        extract.DefaultPrefix,
			DetectPrefix:  false,
			ImportModule:  prefix.DefaultModule,
			RequireParens: false,
			TrimParens:    false,
		},
		Report: ReportConfig{
			Limit:     0,
			Format:    "text",
			Precision: 3,
		},
		Analysis: AnalysisConfig{
			Workers: analysis.DefaultWorkers,
		},
		Server: ServerConfig{
			HTTPAddr:  ":8080",
			CacheSize: 16,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file, keeping whatever can be salvaged
// from a malformed one.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		log.Debugf("Strict parse of %s failed: %v", configPath, err)
		return tryPartialParse(configPath)
	}
	return config, nil
}

func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "extract"); ok {
		extractExtractConfig(section, &config.Extract)
	}
	if section, ok := utils.ExtractSection(tempConfig, "report"); ok {
		extractReportConfig(section, &config.Report)
	}
	if section, ok := utils.ExtractSection(tempConfig, "analysis"); ok {
		if val, ok := utils.ExtractInt64(section, "workers"); ok {
			config.Analysis.Workers = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	return config, nil
}

func extractExtractConfig(data map[string]any, ex *ExtractConfig) {
	if val, ok := utils.ExtractString(data, "prefix"); ok {
		ex.Prefix = val
	}
	if val, ok := utils.ExtractBool(data, "detect_prefix"); ok {
		ex.DetectPrefix = val
	}
	if val, ok := utils.ExtractString(data, "import_module"); ok {
		ex.ImportModule = val
	}
	if val, ok := utils.ExtractBool(data, "require_parens"); ok {
		ex.RequireParens = val
	}
	if val, ok := utils.ExtractBool(data, "trim_parens"); ok {
		ex.TrimParens = val
	}
}

func extractReportConfig(data map[string]any, report *ReportConfig) {
	if val, ok := utils.ExtractInt64(data, "limit"); ok {
		report.Limit = val
	}
	if val, ok := utils.ExtractString(data, "format"); ok {
		report.Format = val
	}
	if val, ok := utils.ExtractInt64(data, "precision"); ok {
		report.Precision = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractString(data, "http_addr"); ok {
		server.HTTPAddr = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		server.CacheSize = val
	}
}

// ApplyEnv loads .env from the working directory (if any) and applies
// the KWSERVE_* overrides.
func (c *Config) ApplyEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Debugf("Ignoring .env: %v", err)
	}
	if v := os.Getenv(EnvPrefix); v != "" {
		c.Extract.Prefix = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		c.Report.Format = strings.ToLower(v)
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		c.Server.HTTPAddr = v
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Extract.Prefix) == "" {
		return fmt.Errorf("extract.prefix must not be empty")
	}
	if !utils.IsValidName(c.Extract.Prefix, 64) {
		return fmt.Errorf("extract.prefix %q is not a valid name", c.Extract.Prefix)
	}
	valid := false
	for _, f := range Formats {
		if c.Report.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("report.format %q must be one of %s", c.Report.Format, strings.Join(Formats, ", "))
	}
	if c.Report.Limit < 0 {
		return fmt.Errorf("report.limit must be >= 0, got %d", c.Report.Limit)
	}
	if c.Report.Precision < 0 || c.Report.Precision > 12 {
		return fmt.Errorf("report.precision must be within 0..12, got %d", c.Report.Precision)
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be >= 1, got %d", c.Analysis.Workers)
	}
	if c.Server.CacheSize < 1 {
		return fmt.Errorf("server.cache_size must be >= 1, got %d", c.Server.CacheSize)
	}
	return nil
}

// AnalysisOptions converts the config into orchestrator options.
func (c *Config) AnalysisOptions() analysis.Options {
	return analysis.Options{
		Prefix:       c.Extract.Prefix,
		DetectPrefix: c.Extract.DetectPrefix,
		ImportModule: c.Extract.ImportModule,
		Extract:      extract.Options{
			RequireParens: c.Extract.RequireParens,
			TrimParens:    c.Extract.TrimParens,
		},
		Limit:        c.Report.Limit,
		Workers:      c.Analysis.Workers,
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "built-in defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
