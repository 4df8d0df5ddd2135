// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "file-converter/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds settings for the OpenAI-compatible LLM service (Groq by default).
type AIConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the model identifier (e.g. "llama-3.3-70b-versatile").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL is the OpenAI-compatible endpoint root.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Temperature is the sampling temperature (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens caps the completion length (default 8000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// PrivacyConfig controls what may leave the machine.
type PrivacyConfig struct {
	// AllowSensitive lets non-interactive runs send sensitive documents to the AI service.
	AllowSensitive bool `json:"allow_sensitive" yaml:"allow_sensitive"`

	// AuditMode records every AI payload before it is sent.
	AuditMode bool `json:"audit_mode" yaml:"audit_mode"`

	// AuditFile is the JSON audit log path (default "groq_audit_log.json").
	AuditFile string `json:"audit_file" yaml:"audit_file"`

	// DisableAI forces local processing whenever sensitive content is found.
	DisableAI bool `json:"disable_ai" yaml:"disable_ai"`

	// Strict treats any sensitive finding as a reason to stay local.
	Strict bool `json:"strict" yaml:"strict"`

	// Anonymize replaces detected identifiers with placeholders before a
	// layout is audited or sent to the AI service.
	Anonymize bool `json:"anonymize" yaml:"anonymize"`
}

// OfficeConfig holds settings for the LibreOffice backend.
type OfficeConfig struct {
	// Binary overrides discovery of soffice.
	Binary string `json:"binary,omitempty" yaml:"binary,omitempty"`

	// Timeout bounds a single conversion (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// ContainerImage is used when no local LibreOffice is installed.
	ContainerImage string `json:"container_image" yaml:"container_image"`

	// UseContainer allows falling back to a docker/podman image.
	UseContainer bool `json:"use_container" yaml:"use_container"`
}

// RenderConfig holds rasterisation, OCR and browser settings.
type RenderConfig struct {
	// OCRDPI is the rasterisation resolution for OCR mode (default 300).
	OCRDPI int `json:"ocr_dpi" yaml:"ocr_dpi"`

	// ImageDPI is the resolution for image mode and pdf→png (default 200).
	ImageDPI int `json:"image_dpi" yaml:"image_dpi"`

	// OCRLanguage is the tesseract language code (default "eng").
	OCRLanguage string `json:"ocr_language" yaml:"ocr_language"`

	// MinOCRConfidence drops OCR words below this confidence (default 30).
	MinOCRConfidence float64 `json:"min_ocr_confidence" yaml:"min_ocr_confidence"`

	// BrowserPath overrides Chromium discovery.
	BrowserPath string `json:"browser_path,omitempty" yaml:"browser_path,omitempty"`

	// DownloadBrowser lets the converter fetch a Chromium build when none is installed.
	DownloadBrowser bool `json:"download_browser" yaml:"download_browser"`
}

// HistoryConfig holds settings for the conversion history database.
type HistoryConfig struct {
	// Enabled turns recording on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// DataDir contains history.db and exports.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// ConverterConfig groups all component configurations.
type ConverterConfig struct {
	AI      AIConfig      `json:"ai" yaml:"ai"`
	Privacy PrivacyConfig `json:"privacy" yaml:"privacy"`
	Office  OfficeConfig  `json:"office" yaml:"office"`
	Render  RenderConfig  `json:"render" yaml:"render"`
	History HistoryConfig `json:"history" yaml:"history"`
}
