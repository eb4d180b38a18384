package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/use-agent/newgoods/api/handler"
	"github.com/use-agent/newgoods/config"
	"github.com/use-agent/newgoods/scraper"
	"github.com/use-agent/newgoods/store"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the scraper as MCP tools over stdio.",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	initLogger(cfg.Log)

	sc, err := newScraper(cfg)
	if err != nil {
		return err
	}
	defer sc.Close()

	s := newMCPServer(sc)
	if err := server.ServeStdio(s); err != nil {
		slog.Error("mcp server error", "error", err)
		return err
	}
	return nil
}

func newMCPServer(sc *scraper.Scraper) *server.MCPServer {
	s := server.NewMCPServer(
		"newgoods",
		handler.Version,
		server.WithToolCapabilities(false),
	)

	fetchTool := mcp.NewTool("fetch_new_products",
		mcp.WithDescription("Fetch the FamilyMart new-products page and return every listing as a JSON array of {name, price, region}. Region is \"全国\" when the listing is not region-restricted."),
	)
	s.AddTool(fetchTool, handleFetchNewProducts(sc))

	latestTool := mcp.NewTool("latest_info",
		mcp.WithDescription("Return FamilyMart new products together with the currently running campaigns as JSON {products, campaigns}."),
	)
	s.AddTool(latestTool, handleLatestInfo(sc))

	return s
}

func handleFetchNewProducts(sc *scraper.Scraper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := sc.Scrape(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %v", err)), nil
		}
		data, err := store.EncodeJSON(res.Products)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleLatestInfo(sc *scraper.Scraper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info, err := sc.LatestInfo(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("latest info failed: %v", err)), nil
		}
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}
