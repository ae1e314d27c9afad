/*
Package main is the entry point for the chatbot service.

Usage:

	chatbot [command]

Available Commands:

	serve       Run the HTTP API server
	migrate     Apply pending database migrations
	analytics   Print a user's usage analytics as JSON
	events      Print a user's recent turn events
*/
package main

import (
	"fmt"
	"os"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
