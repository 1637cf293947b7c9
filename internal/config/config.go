package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	CORS     CORSConfig
	Provider ProviderConfig
	Audit    AuditConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds settings for the LLM extraction backend.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// AuditConfig holds the tunable knobs of the math checker and risk scorer.
// The tolerance, weights, deny list, and missing-field points are policy,
// not contract: they live here so they can be re-tuned without touching
// detection logic.
type AuditConfig struct {
	Tolerance           float64  `mapstructure:"tolerance"`
	MaxFlags            int      `mapstructure:"max_flags"`
	VendorDenyList      []string `mapstructure:"vendor_deny_list"`
	LineMathWeight      float64  `mapstructure:"line_math_weight"`
	GrandTotalWeight    float64  `mapstructure:"grand_total_weight"`
	MissingFieldWeight  float64  `mapstructure:"missing_field_weight"`
	NegativeQtyWeight   float64  `mapstructure:"negative_qty_weight"`
	SuspiciousWeight    float64  `mapstructure:"suspicious_weight"`
	MissingVendorPoints int      `mapstructure:"missing_vendor_points"`
	MissingDatePoints   int      `mapstructure:"missing_date_points"`
	MissingNumberPoints int      `mapstructure:"missing_number_points"`
	NoLineItemsPoints   int      `mapstructure:"no_line_items_points"`
	FieldErrorPoints    int      `mapstructure:"field_error_points"`
}

// Load reads configuration from environment variables with the INVAUDIT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INVAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Provider defaults
	v.SetDefault("provider.provider", "openai")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.default_model", "")
	v.SetDefault("provider.timeout_secs", 120)

	// Audit defaults
	v.SetDefault("audit.tolerance", 0.01)
	v.SetDefault("audit.max_flags", 10)
	v.SetDefault("audit.vendor_deny_list", "cash,n/a,test,unknown,none,misc")
	v.SetDefault("audit.line_math_weight", 1.2)
	v.SetDefault("audit.grand_total_weight", 1.2)
	v.SetDefault("audit.missing_field_weight", 1.0)
	v.SetDefault("audit.negative_qty_weight", 0.5)
	v.SetDefault("audit.suspicious_weight", 0.5)
	v.SetDefault("audit.missing_vendor_points", 15)
	v.SetDefault("audit.missing_date_points", 10)
	v.SetDefault("audit.missing_number_points", 5)
	v.SetDefault("audit.no_line_items_points", 20)
	v.SetDefault("audit.field_error_points", 5)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                 "INVAUDIT_SERVER_PORT",
		"server.read_timeout":         "INVAUDIT_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "INVAUDIT_SERVER_WRITE_TIMEOUT",
		"server.environment":          "INVAUDIT_SERVER_ENVIRONMENT",
		"log.level":                   "INVAUDIT_LOG_LEVEL",
		"log.format":                  "INVAUDIT_LOG_FORMAT",
		"cors.allowed_origins":        "INVAUDIT_CORS_ALLOWED_ORIGINS",
		"provider.provider":           "INVAUDIT_PROVIDER",
		"provider.api_key":            "INVAUDIT_PROVIDER_API_KEY",
		"provider.default_model":      "INVAUDIT_PROVIDER_DEFAULT_MODEL",
		"provider.timeout_secs":       "INVAUDIT_PROVIDER_TIMEOUT_SECS",
		"audit.tolerance":             "INVAUDIT_AUDIT_TOLERANCE",
		"audit.max_flags":             "INVAUDIT_AUDIT_MAX_FLAGS",
		"audit.vendor_deny_list":      "INVAUDIT_AUDIT_VENDOR_DENY_LIST",
		"audit.line_math_weight":      "INVAUDIT_AUDIT_LINE_MATH_WEIGHT",
		"audit.grand_total_weight":    "INVAUDIT_AUDIT_GRAND_TOTAL_WEIGHT",
		"audit.missing_field_weight":  "INVAUDIT_AUDIT_MISSING_FIELD_WEIGHT",
		"audit.negative_qty_weight":   "INVAUDIT_AUDIT_NEGATIVE_QTY_WEIGHT",
		"audit.suspicious_weight":     "INVAUDIT_AUDIT_SUSPICIOUS_WEIGHT",
		"audit.missing_vendor_points": "INVAUDIT_AUDIT_MISSING_VENDOR_POINTS",
		"audit.missing_date_points":   "INVAUDIT_AUDIT_MISSING_DATE_POINTS",
		"audit.missing_number_points": "INVAUDIT_AUDIT_MISSING_NUMBER_POINTS",
		"audit.no_line_items_points":  "INVAUDIT_AUDIT_NO_LINE_ITEMS_POINTS",
		"audit.field_error_points":    "INVAUDIT_AUDIT_FIELD_ERROR_POINTS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INVAUDIT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVAUDIT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitTrim(v.GetString("cors.allowed_origins")),
	}
	cfg.Provider = ProviderConfig{
		Provider:     v.GetString("provider.provider"),
		APIKey:       v.GetString("provider.api_key"),
		DefaultModel: v.GetString("provider.default_model"),
		TimeoutSecs:  v.GetInt("provider.timeout_secs"),
	}
	cfg.Audit = AuditConfig{
		Tolerance:           v.GetFloat64("audit.tolerance"),
		MaxFlags:            v.GetInt("audit.max_flags"),
		VendorDenyList:      splitTrim(v.GetString("audit.vendor_deny_list")),
		LineMathWeight:      v.GetFloat64("audit.line_math_weight"),
		GrandTotalWeight:    v.GetFloat64("audit.grand_total_weight"),
		MissingFieldWeight:  v.GetFloat64("audit.missing_field_weight"),
		NegativeQtyWeight:   v.GetFloat64("audit.negative_qty_weight"),
		SuspiciousWeight:    v.GetFloat64("audit.suspicious_weight"),
		MissingVendorPoints: v.GetInt("audit.missing_vendor_points"),
		MissingDatePoints:   v.GetInt("audit.missing_date_points"),
		MissingNumberPoints: v.GetInt("audit.missing_number_points"),
		NoLineItemsPoints:   v.GetInt("audit.no_line_items_points"),
		FieldErrorPoints:    v.GetInt("audit.field_error_points"),
	}

	return cfg, nil
}

// splitTrim parses a comma-separated string into a slice, dropping empties.
func splitTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
