package docquery

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/rdanilin/docquery/vector"
)

func TestConfigYAMLUnmarshal(t *testing.T) {
	assert := assert.New(t)

	input := `collections:
  - name: dama
    description: Data management body of knowledge
  - name: ctk
    description: Technology consulting documentation
defaultK: 5
maxK: 20
searchTimeout: 30s
vector:
  persistent: true
  path: /var/lib/docquery/vectors
  embedding:
    provider: ollama
    model: nomic-embed-text
    baseURL: http://localhost:11434/api`

	var config Config
	if err := yaml.Unmarshal([]byte(input), &config); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Len(config.Collections, 2)
	assert.Equal("dama", config.Collections[0].Name)
	assert.Equal(5, config.DefaultK)
	assert.Equal(30*time.Second, config.SearchTimeout.Duration())
	assert.True(config.Vector.Persistent)
	assert.Equal(vector.EmbeddingProviderOllama, config.Vector.Embedding.Provider)
}

func TestDurationJSONRoundTrip(t *testing.T) {
	assert := assert.New(t)

	d := Duration(90 * time.Second)

	bs, err := json.Marshal(d)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(`"1m30s"`, string(bs))

	var parsed Duration
	if err := json.Unmarshal(bs, &parsed); err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(d, parsed)
}

func TestToolName(t *testing.T) {
	assert := assert.New(t)

	cfg := CollectionConfig{Name: "dama"}
	assert.Equal("dama_search", cfg.ToolName())
}

func TestSearchToolForCollection(t *testing.T) {
	assert := assert.New(t)

	cfg := CollectionConfig{
		Name:        "dama",
		Description: "Data management body of knowledge",
	}

	tool := SearchToolForCollection(cfg, 5)

	assert.Equal("dama_search", tool.Name)
	assert.Equal("Data management body of knowledge", tool.Description)
	assert.Contains(tool.InputSchema.Required, "query")
	assert.Contains(tool.InputSchema.Properties, "k")

	// A missing description still yields a usable tool.
	tool = SearchToolForCollection(CollectionConfig{Name: "ctk"}, 5)
	assert.NotEmpty(tool.Description)
}

func TestFormatDocuments(t *testing.T) {
	assert := assert.New(t)

	docs := []vector.Document{
		{Content: "A", Metadata: map[string]string{"src": "doc1"}},
		{Content: "B", Metadata: map[string]string{"src": "doc2"}},
	}

	expected := "Source: {'src': 'doc1'}\nContent: A\n\nSource: {'src': 'doc2'}\nContent: B"
	assert.Equal(expected, FormatDocuments(docs))

	assert.Equal("", FormatDocuments(nil))
	assert.Equal("Source: {}\nContent: C", FormatDocuments([]vector.Document{{Content: "C"}}))
}

func TestFormatMetadataSortsKeys(t *testing.T) {
	assert := assert.New(t)

	metadata := map[string]string{
		"source": "a.txt",
		"chunk":  "0",
	}

	assert.Equal("{'chunk': '0', 'source': 'a.txt'}", formatMetadata(metadata))
}

func TestTruncateQuery(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("short", TruncateQuery("short", 10))
	assert.Equal("0123456789...", TruncateQuery("0123456789abcdef", 10))
}

func TestSearchResultToCallToolResult(t *testing.T) {
	assert := assert.New(t)

	result := SearchResult{
		Collection: "dama",
		Content:    "Source: {'src': 'doc1'}\nContent: A",
		Documents: []vector.Document{
			{ID: "1", Content: "A", Metadata: map[string]string{"src": "doc1"}},
		},
	}

	callResult := result.ToCallToolResult()

	assert.False(callResult.IsError)
	assert.Len(callResult.Content, 2)
}
