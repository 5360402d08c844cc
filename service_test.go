package docquery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/rdanilin/docquery/vector"
)

type stubCollection struct {
	docs []vector.Document

	queryErr error

	queryCalls int
	addCalls   int
}

func (c *stubCollection) AddDocument(ctx context.Context, doc vector.Document) error {
	c.addCalls++
	c.docs = append(c.docs, doc)
	return nil
}

func (c *stubCollection) FindDocument(ctx context.Context, id string) (vector.Document, error) {
	for _, doc := range c.docs {
		if doc.ID == id {
			return doc, nil
		}
	}

	return vector.Document{}, errors.New("document not found")
}

func (c *stubCollection) Query(ctx context.Context, query string, k int) ([]vector.Document, error) {
	c.queryCalls++

	if c.queryErr != nil {
		return nil, c.queryErr
	}

	if k > len(c.docs) {
		k = len(c.docs)
	}

	return c.docs[:k], nil
}

func (c *stubCollection) DeleteBySource(ctx context.Context, source string) error {
	kept := c.docs[:0]
	for _, doc := range c.docs {
		if doc.Metadata["source"] != source {
			kept = append(kept, doc)
		}
	}

	c.docs = kept
	return nil
}

func (c *stubCollection) Count() int {
	return len(c.docs)
}

type stubVectorDB struct {
	collections map[string]*stubCollection
	err         error
}

func (db *stubVectorDB) Collection(name string) (vector.Collection, error) {
	if db.err != nil {
		return nil, db.err
	}

	c, ok := db.collections[name]
	if !ok {
		c = &stubCollection{}
		db.collections[name] = c
	}

	return c, nil
}

type docqueryTestSuite struct {
	suite.Suite
	ctx  context.Context
	svc  Service
	dama *stubCollection
	ctk  *stubCollection
}

func (suite *docqueryTestSuite) SetupTest() {
	suite.ctx = context.Background()

	suite.dama = &stubCollection{
		docs: []vector.Document{
			{ID: "1", Content: "A", Metadata: map[string]string{"src": "doc1"}},
			{ID: "2", Content: "B", Metadata: map[string]string{"src": "doc2"}},
		},
	}
	suite.ctk = &stubCollection{}

	db := &stubVectorDB{
		collections: map[string]*stubCollection{
			"dama": suite.dama,
			"ctk":  suite.ctk,
		},
	}

	cfg := Config{
		Collections: []CollectionConfig{
			{Name: "dama", Description: "Data management body of knowledge"},
			{Name: "ctk", Description: "Technology consulting documentation"},
		},
	}

	svc, err := NewService(suite.ctx, cfg, db)
	if err != nil {
		suite.FailNow(err.Error())
		return
	}

	suite.svc = svc
}

func (suite *docqueryTestSuite) TestListTools() {
	tools, err := suite.svc.ListTools(suite.ctx)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Len(tools, 2)
	suite.Equal("dama_search", tools[0].Name)
	suite.Equal("ctk_search", tools[1].Name)
	suite.Contains(tools[0].InputSchema.Required, "query")

	// Idempotent: a second listing is identical.
	again, err := suite.svc.ListTools(suite.ctx)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Equal(tools, again)
}

func (suite *docqueryTestSuite) TestCallTool() {
	req := mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
		Params: mcp.CallToolParams{
			Name: "dama_search",
			Arguments: map[string]any{
				"query": "anything",
				"k":     2,
			},
		},
	}

	result, err := suite.svc.CallTool(suite.ctx, req)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.False(result.IsError)
	suite.Len(result.Content, 3, "formatted text plus one artifact per result")

	content, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		suite.Fail("invalid type")
		return
	}

	first := "Source: {'src': 'doc1'}\nContent: A"
	second := "Source: {'src': 'doc2'}\nContent: B"

	suite.Contains(content.Text, first)
	suite.Contains(content.Text, second)
	suite.Less(strings.Index(content.Text, first), strings.Index(content.Text, second),
		"records keep the ranked order")

	suite.Equal(1, suite.dama.queryCalls)
}

func (suite *docqueryTestSuite) TestCallToolUnknownTool() {
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "nonexistent",
			Arguments: map[string]any{
				"query": "x",
			},
		},
	}

	result, err := suite.svc.CallTool(suite.ctx, req)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.True(result.IsError)
	suite.Contains(toolErrorText(result), "unknown tool")
	suite.Equal(0, suite.dama.queryCalls)
	suite.Equal(0, suite.ctk.queryCalls)
}

func (suite *docqueryTestSuite) TestCallToolEmptyQuery() {
	for _, arguments := range []map[string]any{
		{"query": ""},
		{},
	} {
		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "dama_search",
				Arguments: arguments,
			},
		}

		result, err := suite.svc.CallTool(suite.ctx, req)
		if err != nil {
			suite.Fail(err.Error())
			return
		}

		suite.True(result.IsError)
		suite.Contains(toolErrorText(result), "invalid argument")
	}

	// Preconditions failed, so the store was never touched.
	suite.Equal(0, suite.dama.queryCalls)
}

func (suite *docqueryTestSuite) TestCallToolInvalidK() {
	for _, k := range []any{0, -1, 1.5, "five"} {
		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "dama_search",
				Arguments: map[string]any{
					"query": "anything",
					"k":     k,
				},
			},
		}

		result, err := suite.svc.CallTool(suite.ctx, req)
		if err != nil {
			suite.Fail(err.Error())
			return
		}

		suite.True(result.IsError)
		suite.Contains(toolErrorText(result), "invalid argument")
	}

	suite.Equal(0, suite.dama.queryCalls)
}

func (suite *docqueryTestSuite) TestCallToolKLargerThanStored() {
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "dama_search",
			Arguments: map[string]any{
				"query": "anything",
				"k":     10,
			},
		},
	}

	result, err := suite.svc.CallTool(suite.ctx, req)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.False(result.IsError)
	suite.Len(result.Content, 3, "all stored documents, no error")
}

func (suite *docqueryTestSuite) TestCallToolSearchFailure() {
	suite.dama.queryErr = errors.New("connection to 10.0.0.7:8443 refused: credentials rejected")

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "dama_search",
			Arguments: map[string]any{
				"query": "anything",
			},
		},
	}

	result, err := suite.svc.CallTool(suite.ctx, req)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.True(result.IsError)
	suite.Equal("search failed", toolErrorText(result))
	suite.NotContains(toolErrorText(result), "10.0.0.7")
}

func (suite *docqueryTestSuite) TestSearch() {
	result, err := suite.svc.Search(suite.ctx, "dama", "anything", 2)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Equal("dama", result.Collection)
	suite.Len(result.Documents, 2)
	suite.Equal("A", result.Documents[0].Content)

	_, err = suite.svc.Search(suite.ctx, "unknown", "anything")
	suite.ErrorIs(err, ErrCollectionNotFound)

	_, err = suite.svc.Search(suite.ctx, "dama", "  ")
	suite.ErrorIs(err, ErrInvalidArgument)

	_, err = suite.svc.Search(suite.ctx, "dama", "anything", 0)
	suite.ErrorIs(err, ErrInvalidArgument)
}

func (suite *docqueryTestSuite) TestDocumentLifecycle() {
	dir := suite.T().TempDir()
	path := filepath.Join(dir, "notes.txt")

	err := os.WriteFile(path, []byte("Data stewardship assigns accountability for data assets."), 0644)
	if err != nil {
		suite.FailNow(err.Error())
		return
	}

	added, err := suite.svc.ProcessDocument(suite.ctx, path, "ctk")
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Equal(1, added)

	// Re-processing the same file adds nothing.
	added, err = suite.svc.ProcessDocument(suite.ctx, path, "ctk")
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Equal(0, added)

	infos, err := suite.svc.DocumentInfo(suite.ctx, "ctk")
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Len(infos, 1)
	suite.Equal(1, infos[0].Documents)

	err = suite.svc.DeleteDocument(suite.ctx, path, "ctk")
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	infos, err = suite.svc.DocumentInfo(suite.ctx, "ctk")
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Equal(0, infos[0].Documents)
}

func (suite *docqueryTestSuite) TestDocumentInfoAllCollections() {
	infos, err := suite.svc.DocumentInfo(suite.ctx, "")
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Len(infos, 2)
	suite.Equal("dama", infos[0].Name)
	suite.Equal(2, infos[0].Documents)
	suite.Equal("ctk", infos[1].Name)
}

func TestDocqueryTestSuite(t *testing.T) {
	suite.Run(t, new(docqueryTestSuite))
}

func toolErrorText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}

	content, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return ""
	}

	return content.Text
}

func TestNewServiceWithoutCollections(t *testing.T) {
	assert := assert.New(t)

	db := &stubVectorDB{collections: make(map[string]*stubCollection)}

	_, err := NewService(context.Background(), Config{}, db)
	assert.ErrorIs(err, ErrNoCollections)
}

func TestNewServiceBindFailureIsFatal(t *testing.T) {
	assert := assert.New(t)

	db := &stubVectorDB{
		collections: make(map[string]*stubCollection),
		err:         errors.New("index unavailable"),
	}

	cfg := Config{
		Collections: []CollectionConfig{
			{Name: "dama"},
		},
	}

	_, err := NewService(context.Background(), cfg, db)
	assert.Error(err)
}

func TestNewServiceWithoutVectorDB(t *testing.T) {
	assert := assert.New(t)

	cfg := Config{
		Collections: []CollectionConfig{
			{Name: "dama"},
		},
	}

	_, err := NewService(context.Background(), cfg, nil)
	assert.ErrorIs(err, ErrVectorDBNotSet)
}
