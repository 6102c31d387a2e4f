// Package mcp implements the Model Context Protocol server for csvboard.
//
// The mcp package provides:
// - MCP server implementation over stdio
// - Tools listing the configured datasets with their freshness
// - Tools fetching one dataset as a markdown table
package mcp
