package metrics

// TokenUsage captures the token counts the model reported for one call.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// Record adds the usage to the token counters for model.
func (u TokenUsage) Record(model string) {
	if u.IsZero() {
		return
	}
	LLMTokensUsed.WithLabelValues(model, "prompt").Add(float64(u.PromptTokens))
	LLMTokensUsed.WithLabelValues(model, "completion").Add(float64(u.CompletionTokens))
}
