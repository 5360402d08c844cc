package chromem

import (
	"context"
	"os"

	"github.com/philippgille/chromem-go"

	"github.com/rdanilin/docquery/vector"
)

func NewChromemVectorDB(cfg vector.Config) (vector.VectorDB, error) {
	var db *chromem.DB
	if !cfg.Persistent {
		db = chromem.NewDB()
	} else {
		d, err := chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, err
		}

		db = d
	}

	return &chromemVectorDB{
		db:        db,
		embedding: embeddingFunc(cfg.Embedding),
	}, nil
}

func embeddingFunc(cfg vector.EmbeddingConfig) chromem.EmbeddingFunc {
	switch cfg.Provider {
	case vector.EmbeddingProviderOpenAI:
		model := chromem.EmbeddingModelOpenAI3Small
		if cfg.Model != "" {
			model = chromem.EmbeddingModelOpenAI(cfg.Model)
		}

		return chromem.NewEmbeddingFuncOpenAI(os.Getenv("OPENAI_API_KEY"), model)

	case vector.EmbeddingProviderOllama:
		model := cfg.Model
		if model == "" {
			model = "nomic-embed-text"
		}

		return chromem.NewEmbeddingFuncOllama(model, cfg.BaseURL)

	default:
		// nil lets chromem pick its own default embedding function
		return nil
	}
}

type chromemVectorDB struct {
	db        *chromem.DB
	embedding chromem.EmbeddingFunc
}

func (vdb *chromemVectorDB) Collection(name string) (vector.Collection, error) {
	c, err := vdb.db.GetOrCreateCollection(name, nil, vdb.embedding)
	if err != nil {
		return nil, err
	}

	return &collection{c}, nil
}

type collection struct {
	collection *chromem.Collection
}

func (c *collection) AddDocument(ctx context.Context, doc vector.Document) error {
	document := chromem.Document{
		ID:        doc.ID,
		Metadata:  doc.Metadata,
		Embedding: doc.Embedding,
		Content:   doc.Content,
	}

	return c.collection.AddDocument(ctx, document)
}

func (c *collection) FindDocument(ctx context.Context, id string) (vector.Document, error) {
	document, err := c.collection.GetByID(ctx, id)
	if err != nil {
		return vector.Document{}, err
	}

	return vector.Document{
		ID:        document.ID,
		Metadata:  document.Metadata,
		Embedding: document.Embedding,
		Content:   document.Content,
	}, nil
}

func (c *collection) Query(ctx context.Context, query string, k int) ([]vector.Document, error) {
	if k > c.collection.Count() {
		k = c.collection.Count()
	}

	if k == 0 {
		return []vector.Document{}, nil
	}

	results, err := c.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, err
	}

	docs := make([]vector.Document, len(results))
	for i, result := range results {
		docs[i] = vector.Document{
			ID:        result.ID,
			Metadata:  result.Metadata,
			Embedding: result.Embedding,
			Content:   result.Content,
		}
	}

	return docs, nil
}

func (c *collection) DeleteBySource(ctx context.Context, source string) error {
	where := map[string]string{"source": source}
	return c.collection.Delete(ctx, where, nil)
}

func (c *collection) Count() int {
	return c.collection.Count()
}
