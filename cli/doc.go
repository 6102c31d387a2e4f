// Package cli implements the command-line interface for csvboard.
//
// The cli package provides:
// - The web dashboard server (default command)
// - Freshness and source listings for scripts
// - A terminal table viewer with search
// - The MCP server entry point
package cli
