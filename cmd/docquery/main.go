package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rdanilin/docquery"
	"github.com/rdanilin/docquery/persistence/chromem"

	mcpE "github.com/rdanilin/docquery/mcp"
	httpT "github.com/rdanilin/docquery/transport/http"
	natsT "github.com/rdanilin/docquery/transport/nats"
	stdioT "github.com/rdanilin/docquery/transport/stdio"
)

func main() {
	cmd := &cli.Command{
		Name:  "docquery",
		Usage: "Semantic document search served over MCP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Path to the docquery configuration directory",
			},
			&cli.BoolFlag{
				Name:  "stdio",
				Usage: "Serve MCP over stdio and exit on EOF",
				Value: false,
			},
			&cli.BoolFlag{
				Name:  "http",
				Usage: "Enable HTTP transport",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "http-addr",
				Usage: "HTTP server address",
				Value: ":8080",
			},
			&cli.StringFlag{
				Name:    "nats",
				Usage:   "NATS server URL. Empty disables the NATS transport",
				Sources: cli.EnvVars("NATS_URL"),
			},
			&cli.StringFlag{
				Name:    "nats-creds",
				Usage:   "NATS user credentials file",
				Sources: cli.EnvVars("NATS_CREDS"),
			},
			&cli.StringFlag{
				Name:  "nats-topic",
				Usage: "NATS topic prefix for the service endpoints",
				Value: "docquery",
			},
		},
		Action: run,
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	path := cmd.String("path")
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		path = filepath.Join(homeDir, ".docquery")
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	f, err := os.Open(filepath.Join(path, "config.yaml"))
	if err != nil {
		return err
	}
	defer f.Close()

	var cfg docquery.Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return err
	}

	if cfg.Vector.Path == "" {
		cfg.Vector.Path = filepath.Join(path, "vectors")
	}

	vector, err := chromem.NewChromemVectorDB(cfg.Vector)
	if err != nil {
		return err
	}

	svc, err := docquery.NewService(ctx, cfg, vector)
	if err != nil {
		return err
	}
	defer svc.Close()

	svc = docquery.LoggingMiddleware(log)(svc)

	mcpEndpoints := make(map[mcp.MCPMethod]mcpE.MCPEndpoint)
	mcpEndpoints[mcp.MethodInitialize] = mcpE.InitializeEndpoint(svc)
	mcpEndpoints[mcp.MethodPing] = mcpE.PingEndpoint(svc)
	mcpEndpoints[mcp.MethodToolsList] = mcpE.ListToolsEndpoint(svc)
	mcpEndpoints[mcp.MethodToolsCall] = mcpE.CallToolEndpoint(svc)

	if cmd.Bool("stdio") {
		s := stdioT.NewServer(os.Stdin, os.Stdout)
		for method, endpoint := range mcpEndpoints {
			s.AddEndpoint(method, endpoint)
		}

		errs := make(chan error, 1)
		go func() {
			errs <- s.Listen(ctx)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errs:
			return err

		case sign := <-quit:
			log.Info("graceful shutdown", zap.String("signal", sign.String()))
			return nil
		}
	}

	endpoints := docquery.EndpointSet{
		ListTools:       docquery.ListToolsEndpoint(svc),
		CallTool:        docquery.CallToolEndpoint(svc),
		Search:          docquery.SearchEndpoint(svc),
		ProcessDocument: docquery.ProcessDocumentEndpoint(svc),
		DeleteDocument:  docquery.DeleteDocumentEndpoint(svc),
		DocumentInfo:    docquery.DocumentInfoEndpoint(svc),
	}

	natsURL := cmd.String("nats")
	if natsURL != "" {
		opts := []nats.Option{
			nats.Name("docquery"),
		}

		if creds := cmd.String("nats-creds"); creds != "" {
			opts = append(opts, nats.UserCredentials(creds))
		}

		nc, err := nats.Connect(natsURL, opts...)
		if err != nil {
			return err
		}
		defer nc.Drain()

		srv, err := micro.AddService(nc, micro.Config{
			Name:    "docquery",
			Version: "1.0.0",
		})

		if err != nil {
			return err
		}
		defer srv.Stop()

		root := srv.AddGroup(cmd.String("nats-topic"))
		natsT.AddEndpoints(root, endpoints)
	}

	if cmd.Bool("http") {
		r := gin.Default()
		httpT.AddRouters(r, endpoints)
		httpT.AddStreamableRouters(r, mcpEndpoints)

		httpAddr := cmd.String("http-addr")
		go r.Run(httpAddr)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sign := <-quit

	log.Info("graceful shutdown", zap.String("signal", sign.String()))
	return nil
}
