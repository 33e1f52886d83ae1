// Daykeeper: context-aware daily schedule and habit tracking MCP server.
//
// Builds daily schedules with travel-time and weather awareness, and tracks
// habit streaks with completion analytics.
//
// Usage:
//
//	daykeeper serve    # Start MCP server (stdio transport)
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	dkserver "github.com/dvergara/daykeeper/internal/server"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		fs := flag.NewFlagSet("serve", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file (default ~/.daykeeper/config.yaml)")
		_ = fs.Parse(os.Args[2:])

		if err := run(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("daykeeper v%s\n", dkserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(configPath string) error {
	s, cleanup, err := dkserver.New(configPath)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Run cleanup on interrupt too: ServeStdio returns when stdin closes,
	// but a signal should still stop the reminder scheduler and close the
	// database cleanly.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cleanup()
		os.Exit(0)
	}()

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Daykeeper v%s — schedule and habit tracking MCP server

Usage:
  daykeeper serve [-config path]   Start the MCP server (stdio transport)

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "daykeeper": {
        "command": "daykeeper",
        "args": ["serve"]
      }
    }
  }
`, dkserver.Version)
}
