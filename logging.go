package docquery

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	log = log.With(
		zap.String("service", "docquery"),
	)

	return func(next Service) Service {
		log.Info("service initialized")

		return &loggingMiddleware{
			log:  log,
			next: next,
		}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) Close() error {
	log := mw.log.With(
		zap.String("action", "close"),
	)

	err := mw.next.Close()
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("service closed")
	return nil
}

func (mw *loggingMiddleware) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	log := mw.log.With(
		zap.String("action", "list_tools"),
	)

	tools, err := mw.next.ListTools(ctx)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("tools listed", zap.Int("count", len(tools)))
	return tools, nil
}

func (mw *loggingMiddleware) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log := mw.log.With(
		zap.String("action", "call_tool"),
		zap.String("tool", req.Params.Name),
	)

	result, err := mw.next.CallTool(ctx, req)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	if result.IsError {
		log.Warn("tool returned error payload")
	} else {
		log.Info("tool called")
	}

	return result, nil
}

func (mw *loggingMiddleware) Search(ctx context.Context, collection string, query string, k ...int) (*SearchResult, error) {
	log := mw.log.With(
		zap.String("action", "search"),
		zap.String("collection", collection),
		zap.String("query", TruncateQuery(query, 64)),
	)

	if len(k) > 0 {
		log = log.With(
			zap.Int("k", k[0]),
		)
	}

	result, err := mw.next.Search(ctx, collection, query, k...)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("search completed", zap.Int("count", len(result.Documents)))
	return result, nil
}

func (mw *loggingMiddleware) ProcessDocument(ctx context.Context, path string, collection string) (int, error) {
	log := mw.log.With(
		zap.String("action", "process_document"),
		zap.String("path", path),
		zap.String("collection", collection),
	)

	added, err := mw.next.ProcessDocument(ctx, path, collection)
	if err != nil {
		log.Error(err.Error())
		return 0, err
	}

	log.Info("document processed", zap.Int("added", added))
	return added, nil
}

func (mw *loggingMiddleware) DeleteDocument(ctx context.Context, source string, collection string) error {
	log := mw.log.With(
		zap.String("action", "delete_document"),
		zap.String("source", source),
		zap.String("collection", collection),
	)

	err := mw.next.DeleteDocument(ctx, source, collection)
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("document deleted")
	return nil
}

func (mw *loggingMiddleware) DocumentInfo(ctx context.Context, collection string) ([]CollectionInfo, error) {
	log := mw.log.With(
		zap.String("action", "document_info"),
	)

	if collection != "" {
		log = log.With(
			zap.String("collection", collection),
		)
	}

	infos, err := mw.next.DocumentInfo(ctx, collection)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("document info collected", zap.Int("collections", len(infos)))
	return infos, nil
}
