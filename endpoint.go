package docquery

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"
	"github.com/mark3labs/mcp-go/mcp"
)

type EndpointSet struct {
	ListTools       endpoint.Endpoint
	CallTool        endpoint.Endpoint
	Search          endpoint.Endpoint
	ProcessDocument endpoint.Endpoint
	DeleteDocument  endpoint.Endpoint
	DocumentInfo    endpoint.Endpoint
}

func ListToolsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		return svc.ListTools(ctx)
	}
}

type CallToolRequest = mcp.CallToolRequest

func CallToolEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(CallToolRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		return svc.CallTool(ctx, req)
	}
}

type SearchRequest struct {
	Collection string `json:"collection" form:"collection"`
	Query      string `json:"query" form:"query"`
	K          int    `json:"k,omitempty" form:"k"`
}

func SearchEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(SearchRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		if req.K > 0 {
			return svc.Search(ctx, req.Collection, req.Query, req.K)
		}

		return svc.Search(ctx, req.Collection, req.Query)
	}
}

type ProcessDocumentRequest struct {
	Path       string `json:"path"`
	Collection string `json:"collection"`
}

type ProcessDocumentResponse struct {
	Added int `json:"added"`
}

func ProcessDocumentEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(ProcessDocumentRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		added, err := svc.ProcessDocument(ctx, req.Path, req.Collection)
		if err != nil {
			return nil, err
		}

		return ProcessDocumentResponse{Added: added}, nil
	}
}

type DeleteDocumentRequest struct {
	Source     string `json:"source"`
	Collection string `json:"collection"`
}

func DeleteDocumentEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(DeleteDocumentRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		err := svc.DeleteDocument(ctx, req.Source, req.Collection)
		return nil, err
	}
}

func DocumentInfoEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		collection, ok := request.(string)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		return svc.DocumentInfo(ctx, collection)
	}
}
