package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ka2n/csvboard/api"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

// DefaultRowLimit caps fetch_dataset output when no limit is given.
const DefaultRowLimit = 100

var validate = validator.New()

func InitTools(board *api.Board) []server.ServerTool {
	tools := []server.ServerTool{}

	tools = append(tools, newServerTool(ListDatasets(board)))
	tools = append(tools, newServerTool(FetchDataset(board)))

	return tools
}

// DatasetInfo describes one configured source.
type DatasetInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	File        string `json:"file"`
	URL         string `json:"url"`
	LastUpdated string `json:"last_updated"`
	Signal      string `json:"signal"`
}

func ListDatasets(board *api.Board) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"list_datasets",
			mcp.WithDescription("List the CSV datasets on the dashboard with when each one last changed"),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			infos := lo.Map(board.Labels(ctx), func(p api.Panel, _ int) DatasetInfo {
				return DatasetInfo{
					ID:          p.ID,
					Title:       p.Title,
					File:        p.File,
					URL:         p.URL,
					LastUpdated: p.LastUpdated,
					Signal:      string(p.Tier),
				}
			})

			b, err := json.Marshal(infos)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(string(b)), nil
		}
}

func FetchDataset(board *api.Board) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"fetch_dataset",
			mcp.WithDescription("Fetch one CSV dataset as a markdown table, with its last updated time"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Dataset id as returned by list_datasets")),
			mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum number of rows; 0 or omitted means the default of %d", DefaultRowLimit))),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				ID    string `mapstructure:"id" validate:"required"`
				Limit int    `mapstructure:"limit" validate:"gte=0"`
			}
			var args ToolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := validate.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if args.Limit == 0 {
				args.Limit = DefaultRowLimit
			}

			panel, err := board.Panel(ctx, args.ID)
			if err != nil {
				return mcp.NewToolResultError(userMessage(err)), nil
			}
			if panel.Err != nil {
				return mcp.NewToolResultError(userMessage(panel.Err)), nil
			}

			var b strings.Builder
			fmt.Fprintf(&b, "# %s\n\n", panel.Title)
			fmt.Fprintf(&b, "Last updated: %s (%s)\n", panel.LastUpdated, panel.Tier)
			fmt.Fprintf(&b, "Source: %s\n", panel.URL)
			if n := len(panel.Table.Rows); n > args.Limit {
				fmt.Fprintf(&b, "Rows: %d of %d shown\n", args.Limit, n)
			} else {
				fmt.Fprintf(&b, "Rows: %d\n", n)
			}
			b.WriteString("\n")
			b.WriteString(panel.Table.Markdown(args.Limit))

			return mcp.NewToolResultText(b.String()), nil
		}
}

func userMessage(err error) string {
	if msg := failure.MessageOf(err); msg != "" {
		return msg.String()
	}
	return err.Error()
}
