package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/foldergen/foldergen/fgen"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Generator GeneratorConfig `mapstructure:"generator"`
	History   HistoryConfig   `mapstructure:"history"`
}

// ServerConfig stores HTTP hosting layer configurations.
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	OpenBrowser bool   `mapstructure:"openBrowser"`
	UploadDir   string `mapstructure:"uploadDir"`
}

// GeneratorConfig stores generation engine configurations.
type GeneratorConfig struct {
	OutputRoot          string   `mapstructure:"outputRoot"`
	MainFolderName      string   `mapstructure:"mainFolderName"`
	MaxSourceFileBytes  int64    `mapstructure:"maxSourceFileBytes"`
	LevelPolicy         string   `mapstructure:"levelPolicy"`
	SupportedExtensions []string `mapstructure:"supportedExtensions"`
	ScanWorkers         int      `mapstructure:"scanWorkers"`
}

// HistoryConfig stores run history database details.
type HistoryConfig struct {
	DSN     string `mapstructure:"dsn"`
	Enabled bool   `mapstructure:"enabled"`
}

var AppConfig Config

// DefaultSupportedExtensions matches the document/spreadsheet/presentation/image
// families the reference deployment accepts from a source folder.
var DefaultSupportedExtensions = []string{
	".doc", ".docx", ".txt", ".pdf", ".rtf",
	".xls", ".xlsx", ".csv", ".ods",
	".ppt", ".pptx",
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff",
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("server.addr", "127.0.0.1:8787")
	viper.SetDefault("server.openBrowser", false)
	viper.SetDefault("server.uploadDir", internal.DefaultUploadDir)

	viper.SetDefault("generator.outputRoot", internal.DefaultOutputRoot())
	viper.SetDefault("generator.mainFolderName", internal.DefaultMainFolderName)
	viper.SetDefault("generator.maxSourceFileBytes", 10*1024*1024)
	viper.SetDefault("generator.levelPolicy", "legacy")
	viper.SetDefault("generator.supportedExtensions", DefaultSupportedExtensions)
	viper.SetDefault("generator.scanWorkers", 4)

	viper.SetDefault("history.dsn", internal.DefaultHistoryDBPath)
	viper.SetDefault("history.enabled", true)

	// The replacer must be registered before env lookups happen; AutomaticEnv
	// only flips a flag, so the order here is what makes the mapping explicit.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // server.openBrowser becomes SERVER_OPENBROWSER
	viper.AutomaticEnv()                                   // Read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults will be used.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
