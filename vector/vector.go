package vector

import "context"

type Config struct {
	Persistent bool            `yaml:"persistent"`
	Path       string          `yaml:"path"`
	Embedding  EmbeddingConfig `yaml:"embedding"`
}

type EmbeddingProvider string

const (
	// EmbeddingProviderDefault uses the store's built-in embedding function.
	EmbeddingProviderDefault EmbeddingProvider = ""
	EmbeddingProviderOpenAI  EmbeddingProvider = "openai"
	EmbeddingProviderOllama  EmbeddingProvider = "ollama"
)

type EmbeddingConfig struct {
	Provider EmbeddingProvider `yaml:"provider"`
	Model    string            `yaml:"model"`
	BaseURL  string            `yaml:"baseURL"`
}

type VectorDB interface {
	Collection(name string) (Collection, error)
}

type Collection interface {
	AddDocument(ctx context.Context, doc Document) error
	FindDocument(ctx context.Context, id string) (Document, error)
	Query(ctx context.Context, query string, k int) ([]Document, error)
	DeleteBySource(ctx context.Context, source string) error
	Count() int
}

type Document struct {
	ID        string            `json:"id"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Content   string            `json:"content"`
	Embedding []float32         `json:"embedding,omitempty"`
}
