package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Data.BaseURL == "" {
		cfg.Data.BaseURL = "http://localhost:8090/data"
	}
	if cfg.Data.TimeoutSeconds == 0 {
		cfg.Data.TimeoutSeconds = 30
	}
	if cfg.Data.Retries == 0 {
		cfg.Data.Retries = 1
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Ranking.RelevanceThreshold == 0 {
		cfg.Ranking.RelevanceThreshold = 30
	}
	if cfg.Ranking.DefaultLimit == 0 {
		cfg.Ranking.DefaultLimit = 10
	}
	if cfg.Ranking.MaxLimit == 0 {
		cfg.Ranking.MaxLimit = 100
	}
	if cfg.Pipeline.Dimensions == 0 {
		cfg.Pipeline.Dimensions = 384
	}
	if cfg.Pipeline.MaxTokens == 0 {
		cfg.Pipeline.MaxTokens = 256
	}
}
