package docquery

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/rdanilin/docquery/ingest"
	"github.com/rdanilin/docquery/vector"
)

// Service defines the core logic of docquery.
type Service interface {

	// Close shuts down the service.
	Close() error

	// ListTools returns the advertised search tools, one per collection,
	// in configuration order.
	ListTools(ctx context.Context) ([]mcp.Tool, error)

	// CallTool dispatches one tool invocation. Caller and search failures
	// are returned as error payloads, never as Go errors, so nothing
	// internal crosses the protocol boundary.
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

	// Search runs a similarity search against a named collection.
	Search(ctx context.Context, collection string, query string, k ...int) (*SearchResult, error)

	// ProcessDocument loads, chunks and indexes a file into a collection,
	// returning the number of chunks added.
	ProcessDocument(ctx context.Context, path string, collection string) (int, error)

	// DeleteDocument removes all chunks of a source from a collection.
	DeleteDocument(ctx context.Context, source string, collection string) error

	// DocumentInfo reports stored chunk counts, for one collection or all.
	DocumentInfo(ctx context.Context, collection string) ([]CollectionInfo, error)
}

type ServiceMiddleware func(Service) Service

func NewService(ctx context.Context, cfg Config, db vector.VectorDB) (Service, error) {
	log := zap.L().With(
		zap.String("service", "docquery"),
	)

	if len(cfg.Collections) == 0 {
		return nil, ErrNoCollections
	}

	if db == nil {
		return nil, ErrVectorDBNotSet
	}

	if cfg.DefaultK <= 0 {
		cfg.DefaultK = DefaultK
	}

	if cfg.MaxK <= 0 {
		cfg.MaxK = DefaultMaxK
	}

	if cfg.MaxK < cfg.DefaultK {
		cfg.MaxK = cfg.DefaultK
	}

	if cfg.SearchTimeout.Duration() <= 0 {
		cfg.SearchTimeout = Duration(DefaultSearchTimeout)
	}

	svc := &service{
		entries: make([]*collectionEntry, 0, len(cfg.Collections)),
		byTool:  make(map[string]*collectionEntry),
		byName:  make(map[string]*collectionEntry),

		cfg: cfg,
		log: log,
	}

	// Every collection must bind, or the service never starts serving.
	for _, cc := range cfg.Collections {
		if cc.Name == "" {
			return nil, fmt.Errorf("%w: collection name is required", ErrInvalidArgument)
		}

		if _, ok := svc.byName[cc.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate collection %s", ErrInvalidArgument, cc.Name)
		}

		collection, err := db.Collection(cc.Name)
		if err != nil {
			return nil, err
		}

		entry := &collectionEntry{
			config:     cc,
			tool:       SearchToolForCollection(cc, cfg.DefaultK),
			collection: collection,
			processor:  ingest.NewProcessor(collection),
		}

		svc.entries = append(svc.entries, entry)
		svc.byTool[cc.ToolName()] = entry
		svc.byName[cc.Name] = entry

		log.Info("collection bound",
			zap.String("collection", cc.Name),
			zap.String("tool", cc.ToolName()),
		)
	}

	return svc, nil
}

// collectionEntry is one row of the static dispatch table built at
// construction time. The table is read-only afterwards.
type collectionEntry struct {
	config     CollectionConfig
	tool       mcp.Tool
	collection vector.Collection
	processor  *ingest.Processor
}

type service struct {
	entries []*collectionEntry
	byTool  map[string]*collectionEntry
	byName  map[string]*collectionEntry

	cfg Config
	log *zap.Logger
}

func (svc *service) Close() error {
	svc.log.Info("service closed",
		zap.String("action", "close"),
	)

	return nil
}

func (svc *service) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	tools := make([]mcp.Tool, len(svc.entries))
	for i, entry := range svc.entries {
		tools[i] = entry.tool
	}

	return tools, nil
}

func (svc *service) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.Params.Name

	entry, ok := svc.byTool[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", ErrUnknownTool, name)), nil
	}

	args := req.GetArguments()

	query, _ := args["query"].(string)

	k, err := resultCount(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result *SearchResult
	if k > 0 {
		result, err = svc.Search(ctx, entry.config.Name, query, k)
	} else {
		result, err = svc.Search(ctx, entry.config.Name, query)
	}

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return result.ToCallToolResult(), nil
}

// resultCount reads the optional k argument. Absent k returns 0 so the
// configured default applies; a present but non-positive or non-integer
// k is a caller error.
func resultCount(args map[string]any) (int, error) {
	raw, ok := args["k"]
	if !ok {
		return 0, nil
	}

	var k int

	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: k must be an integer", ErrInvalidArgument)
		}
		k = int(v)

	case int:
		k = v

	default:
		return 0, fmt.Errorf("%w: k must be a number", ErrInvalidArgument)
	}

	if k <= 0 {
		return 0, fmt.Errorf("%w: k must be positive", ErrInvalidArgument)
	}

	return k, nil
}

func (svc *service) Search(ctx context.Context, collection string, query string, k ...int) (*SearchResult, error) {
	entry, ok := svc.byName[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	// Preconditions are checked before any embedding or store work.
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidArgument)
	}

	n := svc.cfg.DefaultK
	if len(k) > 0 {
		if k[0] <= 0 {
			return nil, fmt.Errorf("%w: k must be positive", ErrInvalidArgument)
		}

		n = k[0]
	}

	if n > svc.cfg.MaxK {
		n = svc.cfg.MaxK
	}

	ctx, cancel := context.WithTimeout(ctx, svc.cfg.SearchTimeout.Duration())
	defer cancel()

	docs, err := entry.collection.Query(ctx, query, n)
	if err != nil {
		// Full detail stays server-side; the caller sees a generic failure.
		svc.log.Error("similarity search failed",
			zap.String("action", "search"),
			zap.String("collection", collection),
			zap.String("query", TruncateQuery(query, 64)),
			zap.Error(err),
		)

		return nil, ErrSearchFailed
	}

	return &SearchResult{
		Collection: collection,
		Content:    FormatDocuments(docs),
		Documents:  docs,
	}, nil
}

func (svc *service) ProcessDocument(ctx context.Context, path string, collection string) (int, error) {
	entry, ok := svc.byName[collection]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	if path == "" {
		return 0, fmt.Errorf("%w: path is required", ErrInvalidArgument)
	}

	if !ingest.Supported(path) {
		return 0, ingest.ErrUnsupportedFileType
	}

	return entry.processor.ProcessFile(ctx, path)
}

func (svc *service) DeleteDocument(ctx context.Context, source string, collection string) error {
	entry, ok := svc.byName[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	if source == "" {
		return fmt.Errorf("%w: source is required", ErrInvalidArgument)
	}

	return entry.collection.DeleteBySource(ctx, source)
}

func (svc *service) DocumentInfo(ctx context.Context, collection string) ([]CollectionInfo, error) {
	if collection != "" {
		entry, ok := svc.byName[collection]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
		}

		return []CollectionInfo{{
			Name:      entry.config.Name,
			Documents: entry.collection.Count(),
		}}, nil
	}

	infos := make([]CollectionInfo, len(svc.entries))
	for i, entry := range svc.entries {
		infos[i] = CollectionInfo{
			Name:      entry.config.Name,
			Documents: entry.collection.Count(),
		}
	}

	return infos, nil
}
