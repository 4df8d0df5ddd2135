// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/file-converter/internal/ai"
	"github.com/pdiddy/file-converter/internal/office"
	"github.com/pdiddy/file-converter/internal/secrets"
	"github.com/pdiddy/file-converter/pkg/types"
)

const defaultUserAgent = "file-converter/0.1"

func setDefaults() {
	viper.SetDefault("ai.model", ai.DefaultModel)
	viper.SetDefault("ai.base_url", ai.DefaultBaseURL)
	viper.SetDefault("ai.timeout", 120*time.Second)
	viper.SetDefault("ai.temperature", 0.1)
	viper.SetDefault("ai.max_tokens", ai.DefaultMaxTokens)
	viper.SetDefault("ai.max_retries", 3)

	viper.SetDefault("privacy.audit_file", "groq_audit_log.json")
	viper.SetDefault("privacy.strict", false)
	viper.SetDefault("privacy.anonymize", false)

	viper.SetDefault("office.timeout", office.DefaultTimeout)
	viper.SetDefault("office.container_image", office.DefaultImage)
	viper.SetDefault("office.use_container", true)

	viper.SetDefault("render.ocr_dpi", 300)
	viper.SetDefault("render.image_dpi", 200)
	viper.SetDefault("render.ocr_language", "eng")
	viper.SetDefault("render.min_ocr_confidence", 30)
	viper.SetDefault("render.download_browser", false)

	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.data_dir", defaultDataDir())
}

// bindLegacyEnv maps the environment variables earlier releases read.
func bindLegacyEnv() {
	_ = viper.BindEnv("ai.api_key", "FILE_CONVERTER_AI_API_KEY", "GROQ_API_KEY")
	_ = viper.BindEnv("privacy.allow_sensitive", "FILE_CONVERTER_PRIVACY_ALLOW_SENSITIVE", "GROQ_ALLOW_SENSITIVE")
	_ = viper.BindEnv("privacy.audit_mode", "FILE_CONVERTER_PRIVACY_AUDIT_MODE", "GROQ_AUDIT_MODE")
	_ = viper.BindEnv("privacy.disable_ai", "FILE_CONVERTER_PRIVACY_DISABLE_AI", "DISABLE_GROQ_MODE")
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "file-converter")
	}
	return ".file-converter"
}

// loadConfig assembles the effective configuration from viper and the
// secrets directory.
func loadConfig() types.ConverterConfig {
	return types.ConverterConfig{
		AI: types.AIConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("ai.timeout"),
				UserAgent: defaultUserAgent,
			},
			Model:       viper.GetString("ai.model"),
			APIKey:      secretDefault(secrets.GroqAPIKey, viper.GetString("ai.api_key")),
			BaseURL:     viper.GetString("ai.base_url"),
			Temperature: viper.GetFloat64("ai.temperature"),
			MaxTokens:   viper.GetInt("ai.max_tokens"),
			MaxRetries:  viper.GetInt("ai.max_retries"),
		},
		Privacy: types.PrivacyConfig{
			AllowSensitive: viper.GetBool("privacy.allow_sensitive"),
			AuditMode:      viper.GetBool("privacy.audit_mode"),
			AuditFile:      viper.GetString("privacy.audit_file"),
			DisableAI:      viper.GetBool("privacy.disable_ai"),
			Strict:         viper.GetBool("privacy.strict"),
			Anonymize:      viper.GetBool("privacy.anonymize"),
		},
		Office: types.OfficeConfig{
			Binary:         viper.GetString("office.binary"),
			Timeout:        viper.GetDuration("office.timeout"),
			ContainerImage: viper.GetString("office.container_image"),
			UseContainer:   viper.GetBool("office.use_container"),
		},
		Render: types.RenderConfig{
			OCRDPI:           viper.GetInt("render.ocr_dpi"),
			ImageDPI:         viper.GetInt("render.image_dpi"),
			OCRLanguage:      viper.GetString("render.ocr_language"),
			MinOCRConfidence: viper.GetFloat64("render.min_ocr_confidence"),
			BrowserPath:      viper.GetString("render.browser_path"),
			DownloadBrowser:  viper.GetBool("render.download_browser"),
		},
		History: types.HistoryConfig{
			Enabled: viper.GetBool("history.enabled"),
			DataDir: viper.GetString("history.data_dir"),
		},
	}
}

// secretDefault returns fallback when set, otherwise the secret for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets.Get(key)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Show prints the configuration after merging defaults, the config file,
environment variables and .secrets/. The API key is masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if cfg.AI.APIKey != "" {
			cfg.AI.APIKey = maskKey(cfg.AI.APIKey)
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

func maskKey(k string) string {
	if len(k) <= 8 {
		return "****"
	}
	return k[:4] + "…" + k[len(k)-4:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
