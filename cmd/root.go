// Package cmd implements the sprints-mcp command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sprints-mcp",
	Short: "MCP server exposing Zoho Sprints as read-only tools",
	Long: `sprints-mcp is an MCP (Model Context Protocol) server that exposes
Zoho Sprints data as read-only tools over streaming HTTP.

Projects, sprints, work items, epics, users and releases become tools an
MCP client can call. Authentication against Zoho uses the OAuth refresh
token grant; credentials come from the environment.

Running sprints-mcp without a subcommand starts the server.`,
	RunE:         runServe,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
