package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"

	"github.com/rdanilin/docquery"

	natsT "github.com/rdanilin/docquery/transport/nats"
)

func main() {
	cmd := &cli.Command{
		Name:  "docquery_client",
		Usage: "Invoke docquery search tools",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "transport",
				Usage: "Transport to connect over: stdio, sse, streamable-http or nats (sse targets external SSE servers; docquery itself serves streamable-http)",
				Value: "streamable-http",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Server URL for sse and streamable-http transports",
				Value: "http://localhost:8080/mcp/",
			},
			&cli.StringFlag{
				Name:  "cmd",
				Usage: "Command to launch the server for the stdio transport",
			},
			&cli.StringFlag{
				Name:    "nats",
				Usage:   "NATS server URL",
				Sources: cli.EnvVars("NATS_URL"),
			},
			&cli.StringFlag{
				Name:    "nats-creds",
				Usage:   "NATS user credentials file",
				Sources: cli.EnvVars("NATS_CREDS"),
			},
			&cli.StringFlag{
				Name:  "nats-topic",
				Usage: "NATS topic prefix of the service endpoints",
				Value: "docquery",
			},
			&cli.StringFlag{
				Name:  "tool",
				Usage: "Tool to invoke, e.g. dama_search",
			},
			&cli.StringFlag{
				Name:  "query",
				Usage: "Search query",
			},
			&cli.IntFlag{
				Name:  "k",
				Usage: "Number of results to request",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "List the advertised tools and exit",
			},
		},
		Action: run,
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}

// toolCaller is the slice of the façade a client needs: discovery and
// a single request/response invocation.
type toolCaller interface {
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

func run(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	caller, closer, err := connect(ctx, cmd)
	if err != nil {
		// Connection failures are fatal to the run.
		return err
	}
	defer closer()

	tools, err := caller.ListTools(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Available tools:")
	for _, tool := range tools {
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}

	if cmd.Bool("list") {
		return nil
	}

	tool := cmd.String("tool")
	if tool == "" {
		return errors.New("no tool specified")
	}

	arguments := map[string]any{
		"query": cmd.String("query"),
	}

	if k := cmd.Int("k"); k != 0 {
		arguments["k"] = int(k)
	}

	req := mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
		Params: mcp.CallToolParams{
			Name:      tool,
			Arguments: arguments,
		},
	}

	result, err := caller.CallTool(ctx, req)
	if err != nil {
		return err
	}

	render(result)
	return nil
}

func connect(ctx context.Context, cmd *cli.Command) (toolCaller, func(), error) {
	transport := cmd.String("transport")

	if transport == "nats" {
		opts := []nats.Option{
			nats.Name("docquery_client"),
		}

		if creds := cmd.String("nats-creds"); creds != "" {
			opts = append(opts, nats.UserCredentials(creds))
		}

		nc, err := nats.Connect(cmd.String("nats"), opts...)
		if err != nil {
			return nil, nil, err
		}

		endpoints := natsT.MakeEndpoints(nc, cmd.String("nats-topic"))

		var svc docquery.Service
		svc = docquery.ProxyMiddleware(endpoints)(svc)

		return svc, func() { nc.Drain() }, nil
	}

	var (
		c   *client.Client
		err error
	)

	switch transport {
	case "stdio":
		cmdLine := strings.Fields(cmd.String("cmd"))
		if len(cmdLine) == 0 {
			return nil, nil, errors.New("no command provided for the stdio transport")
		}

		c, err = client.NewStdioMCPClient(cmdLine[0], nil, cmdLine[1:]...)

	case "sse":
		c, err = client.NewSSEMCPClient(cmd.String("url"))

	case "streamable-http":
		c, err = client.NewStreamableHttpClient(cmd.String("url"))

	default:
		return nil, nil, errors.New("unsupported transport type")
	}

	if err != nil {
		return nil, nil, err
	}

	if err := c.Start(ctx); err != nil {
		return nil, nil, err
	}

	req := mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo: mcp.Implementation{
				Name:    "docquery_client",
				Version: "1.0.0",
			},
		},
	}

	if _, err := c.Initialize(ctx, req); err != nil {
		c.Close()
		return nil, nil, err
	}

	return &mcpCaller{c}, func() { c.Close() }, nil
}

type mcpCaller struct {
	client *client.Client
}

func (c *mcpCaller) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	var (
		cursor mcp.Cursor
		tools  []mcp.Tool
	)

	for {
		req := mcp.ListToolsRequest{
			PaginatedRequest: mcp.PaginatedRequest{
				Params: mcp.PaginatedParams{
					Cursor: cursor,
				},
			},
		}

		results, err := c.client.ListTools(ctx, req)
		if err != nil {
			return nil, err
		}

		tools = append(tools, results.Tools...)

		cursor = results.NextCursor
		if cursor == "" {
			break
		}
	}

	return tools, nil
}

func (c *mcpCaller) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.client.CallTool(ctx, req)
}

// render prints a tool response. Error payloads are displayed verbatim
// and never crash the run.
func render(result *mcp.CallToolResult) {
	if result.IsError {
		for _, content := range result.Content {
			if text, ok := content.(mcp.TextContent); ok {
				fmt.Printf("tool error: %s\n", text.Text)
			}
		}
		return
	}

	for _, content := range result.Content {
		switch c := content.(type) {
		case mcp.TextContent:
			fmt.Println(c.Text)

		case mcp.EmbeddedResource:
			if resource, ok := c.Resource.(mcp.TextResourceContents); ok {
				fmt.Printf("artifact %s: %s\n", resource.URI, resource.Text)
			}
		}
	}
}
