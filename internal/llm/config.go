// Package llm provides the language model client used to parse and tailor resumes.
package llm

// ModelTier represents the capability level of a model
type ModelTier string

const (
	// TierLite is for cheap cleanup tasks such as trimming scraped job postings
	TierLite ModelTier = "lite"
	// TierStandard is for structured extraction such as parsing an uploaded CV
	TierStandard ModelTier = "standard"
	// TierAdvanced is for rewriting a resume against a job description
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// Config selects the provider and the model behind each tier.
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32

	// MaxOutputTokens caps response length; zero leaves the provider default.
	MaxOutputTokens int32

	// SystemInstruction is sent with every prompt.
	SystemInstruction string
}

// defaultSystemInstruction keeps resume output grounded in the input.
const defaultSystemInstruction = "You edit resumes. Use only facts present in the input. " +
	"Never invent employers, schools, dates or skills."

// DefaultConfig returns the Gemini configuration.
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature:       0.1,
		MaxOutputTokens:   8192,
		SystemInstruction: defaultSystemInstruction,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of c with model serving tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}
