// Command zuora-ping verifies connectivity and credentials: it loads a
// configuration file, performs a login, and reports the session state.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rayjohnson/zuora/internal/config"
	"github.com/rayjohnson/zuora/pkg/zuora"
)

func main() {
	configPath := flag.String("config", "zuora.yaml", "path to configuration file")
	timeout := flag.Duration("timeout", 30*time.Second, "login timeout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zuora-ping: %v\n", err)
		os.Exit(1)
	}

	clientCfg := cfg.ClientConfig()
	if clientCfg.Log {
		clientCfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	client := zuora.New(clientCfg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := client.Authenticate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "zuora-ping: login failed: %v\n", err)
		os.Exit(1)
	}

	session := client.Session()
	fmt.Printf("login ok\n")
	fmt.Printf("endpoint:   %s\n", client.Endpoint())
	if session.ServerURL != "" {
		fmt.Printf("server url: %s\n", session.ServerURL)
	}
}
