// Package main - Entry point for the platform-cost API server
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"platform-cost/api"
	"platform-cost/internal/config"
	"platform-cost/internal/logging"
)

const version = "0.1.0"

func main() {
	cfgPath := flag.String("config", "", "config file (json, yaml, or hcl)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	pricingPath := flag.String("pricing", "", "pricing configuration file (overrides config)")
	flag.Parse()

	cfg := config.Get()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(loaded)
		cfg = loaded
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	defer logging.Sync()

	path := cfg.Pricing.Path
	if *pricingPath != "" {
		path = *pricingPath
	}
	pricing, err := config.LoadPricing(path)
	if err != nil {
		logging.Fatal("loading pricing configuration", zap.Error(err))
	}

	listen := cfg.Server.Addr
	if *addr != "" {
		listen = *addr
	}

	server := api.NewServer(version, pricing)
	logging.Info("starting platform-cost server",
		zap.String("addr", listen),
		zap.String("pricing", path),
		zap.Int("systems", len(pricing.Systems)))

	if err := server.ListenAndServe(listen); err != nil {
		logging.Fatal("server exited", zap.Error(err))
	}
}
