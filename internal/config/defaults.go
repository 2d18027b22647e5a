package config

const (
	QAModeExtractive = "extractive"
	QAModeGenerative = "generative"

	EmbeddingONNX   = "onnx"
	EmbeddingOpenAI = "openai"
	EmbeddingHash   = "hash"

	SummarizerFrequency = "frequency"
	SummarizerOpenAI    = "openai"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 25
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kioku/data/db/sources.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/kioku/data/indices/bleve"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/kioku/data/knowledge.index"
	}
	if cfg.Storage.DocumentsPath == "" {
		cfg.Storage.DocumentsPath = "/usr/local/var/kioku/data/knowledge.json"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = EmbeddingONNX
	}
	if cfg.Embedding.Provider == EmbeddingONNX && cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/kioku/data/models/all-MiniLM-L6-v2.onnx"
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
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Vector.IndexType == "" {
		cfg.Vector.IndexType = "flat"
	}
	if cfg.Chunking.MaxChars == 0 {
		cfg.Chunking.MaxChars = 500
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = 50
	}
	if cfg.QA.Mode == "" {
		cfg.QA.Mode = QAModeExtractive
	}
	if cfg.QA.TopK == 0 {
		cfg.QA.TopK = 3
	}
	if cfg.QA.MinScore == 0 {
		cfg.QA.MinScore = 0.2
	}
	if cfg.QA.MaxDistance == 0 {
		cfg.QA.MaxDistance = 1.5
	}
	if cfg.QA.Model == "" {
		cfg.QA.Model = "gpt-4o-mini"
	}
	if cfg.QA.MaxTokens == 0 {
		cfg.QA.MaxTokens = 256
	}
	if cfg.Search.KeywordWeight == 0 && cfg.Search.SemanticWeight == 0 {
		cfg.Search.KeywordWeight = 0.5
		cfg.Search.SemanticWeight = 0.5
	}
	if cfg.Search.TopKCandidates == 0 {
		cfg.Search.TopKCandidates = 50
	}
	if cfg.Search.MaxDistance == 0 {
		cfg.Search.MaxDistance = 1.5
	}
	if cfg.Summarizer.Provider == "" {
		cfg.Summarizer.Provider = SummarizerFrequency
	}
	if cfg.Summarizer.MinLength == 0 {
		cfg.Summarizer.MinLength = 40
	}
	if cfg.Summarizer.MaxLength == 0 {
		cfg.Summarizer.MaxLength = 120
	}
	if cfg.Summarizer.KeyPoints == 0 {
		cfg.Summarizer.KeyPoints = 5
	}
	if cfg.Summarizer.Model == "" {
		cfg.Summarizer.Model = cfg.QA.Model
	}
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".xlsx"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
