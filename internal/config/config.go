// Package config loads application configuration from config.yaml and the
// DRIVERLEDGER_* environment.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	OCR      OCRConfig      `yaml:"ocr" mapstructure:"ocr"`
	ANAF     ANAFConfig     `yaml:"anaf" mapstructure:"anaf"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// HTTPConfig configures the HTTP listener.
type HTTPConfig struct {
	Port            int `yaml:"port" mapstructure:"port"`
	ReadTimeoutSecs int `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs"`
	MaxUploadMB     int `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// DatabaseConfig configures the Postgres pool.
type DatabaseConfig struct {
	URL                  string `yaml:"url" mapstructure:"url"`
	MaxConns             int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns             int32  `yaml:"min_conns" mapstructure:"min_conns"`
	DialTimeoutSecs      int    `yaml:"dial_timeout_secs" mapstructure:"dial_timeout_secs"`
	StatementTimeoutSecs int    `yaml:"statement_timeout_secs" mapstructure:"statement_timeout_secs"`
}

// OCRConfig configures text recognition.
type OCRConfig struct {
	Tesseract           string `yaml:"tesseract" mapstructure:"tesseract"`
	Language            string `yaml:"language" mapstructure:"language"`
	PSM                 int    `yaml:"psm" mapstructure:"psm"`
	OEM                 int    `yaml:"oem" mapstructure:"oem"`
	TessdataDir         string `yaml:"tessdata_dir" mapstructure:"tessdata_dir"`
	EnableTSVConfidence bool   `yaml:"enable_tsv_confidence" mapstructure:"enable_tsv_confidence"`
}

// ANAFConfig configures the tax-registry client.
type ANAFConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

func (c DatabaseConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSecs) * time.Second
}

func (c DatabaseConfig) StatementTimeout() time.Duration {
	return time.Duration(c.StatementTimeoutSecs) * time.Second
}

// Validate checks the fields the daemon cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "database.url is required")
	}
	if c.HTTP.Port <= 0 {
		missing = append(missing, "http.port must be > 0")
	}
	if c.HTTP.MaxUploadMB <= 0 {
		missing = append(missing, "http.max_upload_mb must be > 0")
	}
	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DRIVERLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout_secs", 15)
	v.SetDefault("http.max_upload_mb", 10)
	v.SetDefault("database.max_conns", 8)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.dial_timeout_secs", 10)
	v.SetDefault("database.statement_timeout_secs", 30)
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.language", "ron")
	v.SetDefault("ocr.psm", 6)
	v.SetDefault("ocr.oem", 1)
	v.SetDefault("anaf.timeout_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return logger, nil
}
