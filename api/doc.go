// Package api assembles the board: for each configured CSV source it resolves
// a freshness label and loads the table.
//
// The api package provides:
// - Board, built once from configuration and shared by every surface
// - Panel, the per-source render context used by the web page, CLI and MCP tools
// - Version information
//
// Sub-packages hold the individual pieces: locator parses the base URL,
// freshness resolves "last updated" labels, dataset loads CSV files and
// cache memoises remote lookups.
package api
