package docquery

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/rdanilin/docquery/vector"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnknownTool        = errors.New("unknown tool")
	ErrSearchFailed       = errors.New("search failed")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrNoCollections      = errors.New("no collections configured")
	ErrVectorDBNotSet     = errors.New("vector database not set")
)

const (
	DefaultK             = 5
	DefaultMaxK          = 20
	DefaultSearchTimeout = 30 * time.Second
)

type Config struct {
	Collections   []CollectionConfig `yaml:"collections"`
	DefaultK      int                `yaml:"defaultK"`
	MaxK          int                `yaml:"maxK"`
	SearchTimeout Duration           `yaml:"searchTimeout"`
	Vector        vector.Config      `yaml:"vector"`
}

type CollectionConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// ToolName derives the tool advertised for this collection.
func (c CollectionConfig) ToolName() string {
	return c.Name + "_search"
}

type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	str := d.Duration().String()
	return json.Marshal(str)
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() ([]byte, error) {
	str := d.Duration().String()
	return yaml.Marshal(str)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}

	duration, err := time.ParseDuration(str)
	if err != nil {
		return err
	}

	*d = Duration(duration)
	return nil
}

// SearchResult is the success payload of one tool invocation: the
// concatenated human-readable text plus the raw ranked result items.
type SearchResult struct {
	Collection string            `json:"collection"`
	Content    string            `json:"content"`
	Documents  []vector.Document `json:"documents"`
}

func (r *SearchResult) ToCallToolResult() *mcp.CallToolResult {
	contents := make([]mcp.Content, 0, len(r.Documents)+1)
	contents = append(contents, mcp.NewTextContent(r.Content))

	for _, doc := range r.Documents {
		bs, err := json.Marshal(&doc)
		if err != nil {
			continue
		}

		resource := mcp.TextResourceContents{
			URI:      "docquery://" + r.Collection + "/" + doc.ID,
			MIMEType: "application/json",
			Text:     string(bs),
		}

		contents = append(contents, mcp.NewEmbeddedResource(resource))
	}

	return &mcp.CallToolResult{
		Content: contents,
	}
}

type CollectionInfo struct {
	Name      string `json:"name"`
	Documents int    `json:"documents"`
}

// FormatDocuments renders ranked results as two-line records,
// blank-line separated:
//
//	Source: {'src': 'doc1'}
//	Content: ...
func FormatDocuments(docs []vector.Document) string {
	records := make([]string, len(docs))
	for i, doc := range docs {
		records[i] = fmt.Sprintf("Source: %s\nContent: %s", formatMetadata(doc.Metadata), doc.Content)
	}

	return strings.Join(records, "\n\n")
}

// Metadata renders as a dict-style literal with sorted keys so the
// Source line stays compact and stable across runs.
func formatMetadata(metadata map[string]string) string {
	if len(metadata) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = fmt.Sprintf("'%s': '%s'", key, metadata[key])
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// TruncateQuery bounds queries in log output.
func TruncateQuery(query string, max int) string {
	if len(query) <= max {
		return query
	}

	return query[:max] + "..."
}

func SearchToolForCollection(cfg CollectionConfig, defaultK int) mcp.Tool {
	description := cfg.Description
	if description == "" {
		description = "Semantic search over the " + cfg.Name + " collection"
	}

	return mcp.NewTool(cfg.ToolName(),
		mcp.WithDescription(description),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithNumber("k",
			mcp.Description("Number of results to return"),
			mcp.DefaultNumber(float64(defaultK)),
			mcp.Min(1),
		),
	)
}
