package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/elad12390/bfl-api-mcp/internal/bfl"
	"github.com/elad12390/bfl-api-mcp/internal/config"
	"github.com/elad12390/bfl-api-mcp/internal/mcp"
	"github.com/elad12390/bfl-api-mcp/internal/storage"
	"github.com/elad12390/bfl-api-mcp/internal/tools"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Structured logging goes to stderr; stdout carries protocol messages.
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	slog.Info("Starting BFL MCP server on stdio...", "base_url", cfg.BaseURL, "output_path", cfg.OutputPath)

	client := bfl.NewHTTPClient(cfg.APIKey, cfg.BaseURL)
	saver := storage.NewFileSaver(cfg.OutputPath)
	toolHandler := tools.NewHandler(
		client,
		saver,
		time.Duration(cfg.TimeoutSec)*time.Second,
		time.Duration(cfg.PollIntervalSec)*time.Second,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := mcp.NewStdioServer(os.Stdin, os.Stdout)
	server.Start(ctx)

	// Main processing loop: one request at a time off the read channel.
	go func() {
		for request := range server.ReadChannel() {
			responsePtr := toolHandler.HandleRequest(request)

			// HandleRequest returns nil for notifications.
			if responsePtr != nil {
				server.WriteChannel() <- *responsePtr
			}
		}
		server.Close()
	}()

	server.Wait()
}
