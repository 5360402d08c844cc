package docquery

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
)

// ProxyMiddleware satisfies Service through a remote EndpointSet, so a
// client process can drive a façade running elsewhere.
func ProxyMiddleware(endpoints *EndpointSet) ServiceMiddleware {
	return func(next Service) Service {
		return &proxyMiddleware{
			endpoints: endpoints,
		}
	}
}

type proxyMiddleware struct {
	endpoints *EndpointSet
}

func (mw *proxyMiddleware) Close() error {
	return errors.New("method not implemented")
}

func (mw *proxyMiddleware) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	resp, err := mw.endpoints.ListTools(ctx, nil)
	if err != nil {
		return nil, err
	}

	tools, ok := resp.([]mcp.Tool)
	if !ok {
		return nil, errors.New("invalid response type")
	}

	return tools, nil
}

func (mw *proxyMiddleware) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := mw.endpoints.CallTool(ctx, req)
	if err != nil {
		return nil, err
	}

	result, ok := resp.(*mcp.CallToolResult)
	if !ok {
		return nil, errors.New("invalid response type")
	}

	return result, nil
}

func (mw *proxyMiddleware) Search(ctx context.Context, collection string, query string, k ...int) (*SearchResult, error) {
	n := 0
	if len(k) > 0 {
		n = k[0]
	}

	req := SearchRequest{
		Collection: collection,
		Query:      query,
		K:          n,
	}

	resp, err := mw.endpoints.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	result, ok := resp.(*SearchResult)
	if !ok {
		return nil, errors.New("invalid response type")
	}

	return result, nil
}

func (mw *proxyMiddleware) ProcessDocument(ctx context.Context, path string, collection string) (int, error) {
	req := ProcessDocumentRequest{
		Path:       path,
		Collection: collection,
	}

	resp, err := mw.endpoints.ProcessDocument(ctx, req)
	if err != nil {
		return 0, err
	}

	result, ok := resp.(ProcessDocumentResponse)
	if !ok {
		return 0, errors.New("invalid response type")
	}

	return result.Added, nil
}

func (mw *proxyMiddleware) DeleteDocument(ctx context.Context, source string, collection string) error {
	req := DeleteDocumentRequest{
		Source:     source,
		Collection: collection,
	}

	_, err := mw.endpoints.DeleteDocument(ctx, req)
	return err
}

func (mw *proxyMiddleware) DocumentInfo(ctx context.Context, collection string) ([]CollectionInfo, error) {
	resp, err := mw.endpoints.DocumentInfo(ctx, collection)
	if err != nil {
		return nil, err
	}

	infos, ok := resp.([]CollectionInfo)
	if !ok {
		return nil, errors.New("invalid response type")
	}

	return infos, nil
}
