package nats

import (
	"github.com/nats-io/nats.go/micro"

	"github.com/rdanilin/docquery"
)

func AddEndpoints(group micro.Group, endpoints docquery.EndpointSet) {
	group.AddEndpoint("list_tools", ListToolsHandler(endpoints.ListTools))
	group.AddEndpoint("call_tool", CallToolHandler(endpoints.CallTool))
	group.AddEndpoint("search", SearchHandler(endpoints.Search))
	group.AddEndpoint("process_document", ProcessDocumentHandler(endpoints.ProcessDocument))
	group.AddEndpoint("delete_document", DeleteDocumentHandler(endpoints.DeleteDocument))
	group.AddEndpoint("document_info", DocumentInfoHandler(endpoints.DocumentInfo))
}
