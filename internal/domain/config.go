package domain

// Config mirrors ~/.whatif-advisor/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Models              []ModelDefinition `yaml:"models"`
	Filter              FilterSettings    `yaml:"filter"`
	Gate                GateSettings      `yaml:"gate"`
}

// Preferences captures user-level toggles.
type Preferences struct {
	DefaultModel   string `yaml:"default_model"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// FilterSettings configures pre-reasoner noise filtering.
type FilterSettings struct {
	// PatternsFile is a user pattern source appended after the built-in set.
	PatternsFile string `yaml:"patterns_file"`
	// FuzzyThreshold is the similarity ratio for fuzzy patterns (0.0-1.0).
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

// GateSettings configures risk gating defaults; CLI flags override them
// per run.
type GateSettings struct {
	AgentsDir   string            `yaml:"agents_dir"`
	Thresholds  map[string]string `yaml:"thresholds"`
	SkipBuckets []string          `yaml:"skip_buckets"`
}

// ModelDefinition describes a reasoning service endpoint declared in the
// config file.
type ModelDefinition struct {
	Name       string    `yaml:"name"`
	Endpoint   string    `yaml:"endpoint"`
	AuthEnvVar string    `yaml:"auth_env_var"`
	ModelID    string    `yaml:"model_id"`
	MaxTokens  int       `yaml:"max_tokens"`
	APIFormat  APIFormat `yaml:"api_format,omitempty"`
}

// APIFormat controls how requests are built and responses parsed for a
// given reasoning service. All fields are optional; the zero value is an
// OpenAI-compatible chat completion API.
type APIFormat struct {
	// AuthHeaderName defaults to "Authorization".
	AuthHeaderName string `yaml:"auth_header_name,omitempty"`
	// AuthHeaderPrefix is prepended to the key value; defaults to
	// "Bearer " unless a custom header name is set (e.g. Anthropic's
	// x-api-key carries the bare key).
	AuthHeaderPrefix string `yaml:"auth_header_prefix,omitempty"`
	// SystemMessageMode is "inline" (system message in the messages
	// array) or "separate" (a top-level system field).
	SystemMessageMode string `yaml:"system_message_mode,omitempty"`
	// ContentWrapper is "standard" (string content) or "anthropic"
	// (content wrapped in a typed text block array).
	ContentWrapper string `yaml:"content_wrapper,omitempty"`
	// ResponseJSONPath locates the generated text in the response body,
	// e.g. "choices[0].message.content" or "content[0].text".
	ResponseJSONPath string `yaml:"response_json_path,omitempty"`
	// ExtraHeaders are sent with every request, e.g. anthropic-version.
	ExtraHeaders map[string]string `yaml:"extra_headers,omitempty"`
}

const (
	SystemMessageModeInline   = "inline"
	SystemMessageModeSeparate = "separate"

	ContentWrapperStandard  = "standard"
	ContentWrapperAnthropic = "anthropic"

	DefaultResponsePath   = "choices[0].message.content"
	AnthropicResponsePath = "content[0].text"
)

// GetAuthHeaderName returns the auth header name with default fallback.
func (f APIFormat) GetAuthHeaderName() string {
	if f.AuthHeaderName == "" {
		return "Authorization"
	}
	return f.AuthHeaderName
}

// GetAuthHeaderPrefix returns the value prefix for the auth header. An
// empty prefix is intentional when a custom header name is configured.
func (f APIFormat) GetAuthHeaderPrefix() string {
	if f.AuthHeaderPrefix == "" && f.AuthHeaderName == "" {
		return "Bearer "
	}
	return f.AuthHeaderPrefix
}

// GetSystemMessageMode returns the system message mode with default fallback.
func (f APIFormat) GetSystemMessageMode() string {
	if f.SystemMessageMode == "" {
		return SystemMessageModeInline
	}
	return f.SystemMessageMode
}

// GetContentWrapper returns the content wrapper with default fallback.
func (f APIFormat) GetContentWrapper() string {
	if f.ContentWrapper == "" {
		return ContentWrapperStandard
	}
	return f.ContentWrapper
}

// GetResponseJSONPath returns the response extraction path with default fallback.
func (f APIFormat) GetResponseJSONPath() string {
	if f.ResponseJSONPath == "" {
		return DefaultResponsePath
	}
	return f.ResponseJSONPath
}
