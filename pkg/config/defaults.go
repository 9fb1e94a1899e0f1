package config

// builtinDefaults returns the configuration merged underneath the loaded
// YAML. User values always win; these only fill gaps.
func builtinDefaults() Config {
	return Config{
		Budget: BudgetConfig{
			CostCapUSD: 0.05,
		},
		History: HistoryConfig{
			Dir:       "./state/history",
			MaxTokens: 30_000,
		},
		Persona: PersonaConfig{
			Dir: "./state/personas",
		},
		CostLog: CostLogConfig{
			Path: "./state/costs.jsonl",
		},
	}
}
