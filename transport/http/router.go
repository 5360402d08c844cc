package http

import (
	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rdanilin/docquery"

	mcpE "github.com/rdanilin/docquery/mcp"
)

func AddRouters(r *gin.Engine, endpoints docquery.EndpointSet) {
	// RESTful API routes
	api := r.Group("/api")
	{
		api.GET("/tools", ListToolsHandler(endpoints.ListTools))
		api.POST("/search", SearchHandler(endpoints.Search))
		api.POST("/documents", ProcessDocumentHandler(endpoints.ProcessDocument))
		api.DELETE("/documents", DeleteDocumentHandler(endpoints.DeleteDocument))
		api.GET("/collections", DocumentInfoHandler(endpoints.DocumentInfo))
	}
}

func AddStreamableRouters(r *gin.Engine, endpoints map[mcp.MCPMethod]mcpE.MCPEndpoint) {
	mcp := r.Group("/mcp")
	{
		mcp.POST("/", MCPStreamableHandler(endpoints))
	}
}
