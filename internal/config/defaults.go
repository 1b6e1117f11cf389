package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kotae/data/db/faqs.db"
	}
	if cfg.Storage.CacheDir == "" {
		cfg.Storage.CacheDir = "/usr/local/var/kotae/data/cache"
	}
	if cfg.Storage.KeywordIndexPath == "" {
		cfg.Storage.KeywordIndexPath = "/usr/local/var/kotae/data/indices/bleve"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/kotae/data/models/multilingual-e5-small.onnx"
	}
	if cfg.Embedding.ModelID == "" {
		cfg.Embedding.ModelID = "intfloat/multilingual-e5-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Cache.Metric == "" {
		cfg.Cache.Metric = "l2"
	}
	if cfg.Cache.EmbedWorkers == 0 {
		cfg.Cache.EmbedWorkers = 4
	}
	if cfg.Cache.EmbedRetries == 0 {
		cfg.Cache.EmbedRetries = 3
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.MaxTopK == 0 {
		cfg.Retrieval.MaxTopK = 50
	}
	if cfg.Retrieval.ContextPrefix == "" {
		cfg.Retrieval.ContextPrefix = "サービスについて："
	}
	if cfg.Bedrock.Region == "" {
		cfg.Bedrock.Region = "us-east-1"
	}
	if cfg.Bedrock.ModelID == "" {
		cfg.Bedrock.ModelID = "anthropic.claude-sonnet-4-20250514-v1:0"
	}
	if cfg.Bedrock.MaxTokens == 0 {
		cfg.Bedrock.MaxTokens = 1024
	}
	if cfg.FAQ.MaxQuestionLength == 0 {
		cfg.FAQ.MaxQuestionLength = 500
	}
	if cfg.FAQ.MaxAnswerLength == 0 {
		cfg.FAQ.MaxAnswerLength = 2000
	}
}
