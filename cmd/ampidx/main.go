// Copyright 2025 The ampidx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the ampidx server and commandline interface.

ampidx serves AMP (Attribution-Mapped Provider) prefix suggestions from a
patricia trie built over a set of JSON records. It operates as a MessagePack
IPC server for editor/generic client integrations or as a standalone CLI for
interactive testing.

# Server Mode

The server builds an in-memory index once at startup and answers prefix
queries and stats requests over stdin/stdout with at most one suggestion
per query.

# CLI Mode

The CLI provides an interactive shell for debugging and testing the index's
behavior directly.

# Data Files

The data directory must contain one or more `*.json` files, each holding
either a JSON array of records or newline-delimited JSON records.

# Config

Runtime configuration is managed via an `ampidx.toml` file, which supports
settings for the build, server, and CLI stages. A default configuration is
created automatically if one does not exist.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/ncloudioj/ampidx/internal/cli"
	"github.com/ncloudioj/ampidx/internal/logger"
	"github.com/ncloudioj/ampidx/pkg/ampidx"
	"github.com/ncloudioj/ampidx/pkg/config"
	"github.com/ncloudioj/ampidx/pkg/ingest"
	"github.com/ncloudioj/ampidx/pkg/server"
)

const (
	Version = "0.1.0-beta"
	AppName = "ampidx"
	gh      = "https://github.com/ncloudioj/ampidx"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "", "Path to custom ampidx.toml file")
	dataDir := flag.String("data", "data/", "Directory containing *.json record files")
	debugMode := flag.Bool("v", false, "Toggle verbose mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	minPrefix := flag.Int("prmin", 1, "Minimum prefix length accepted by the CLI")
	maxPrefix := flag.Int("prmax", 64, "Maximum prefix length accepted by the CLI")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	appLog := logger.New(AppName)

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		appLog.Fatalf("failed to load config: %v", err)
	}
	appLog.Debugf("using config file: %s", configPath)

	resolvedDataDir := *dataDir
	if resolvedDataDir == "" {
		resolvedDataDir = appConfig.Build.DataDir
	}
	appLog.Debugf("loading records from: %s", resolvedDataDir)

	loader := ingest.NewLoader(resolvedDataDir)
	records, err := loader.Load()
	if err != nil {
		appLog.Fatalf("failed to load records: %v", err)
	}
	appLog.Debugf("loaded %d records from %d files (%d bytes)",
		loader.Stats().RecordsRead, loader.Stats().FilesRead, loader.Stats().BytesRead)

	if appConfig.Build.MaxRecords > 0 && len(records) > appConfig.Build.MaxRecords {
		records = records[:appConfig.Build.MaxRecords]
	}

	idx := ampidx.New()
	if err := idx.Build(records); err != nil {
		if appConfig.Build.RejectOnMismatch {
			appLog.Fatalf("failed to build index: %v", err)
		}
		appLog.Warnf("index build reported errors (continuing): %v", err)
	}
	appLog.Debug("index build done")

	if *cliMode {
		appLog.Debug("input info:", "minPrefix", *minPrefix, "maxPrefix", *maxPrefix)

		inputHandler := cli.NewInputHandler(idx, *minPrefix, *maxPrefix, appConfig.CLI.WarnOnRepetitive)
		if err := inputHandler.Start(); err != nil {
			appLog.Fatalf("CLI error: %v", err)
		}
		return
	}

	appLog.Debug("spawning IPC")
	srv := server.NewServer(idx, appConfig, configPath)

	showStartupInfo(appLog, resolvedDataDir, idx)

	if err := srv.Start(); err != nil {
		appLog.Fatalf("failed to start server: %v", err)
	}
}

func printVersion() {
	versionLog := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	versionLog.SetStyles(styles)

	versionLog.Print("")
	versionLog.Print("[ampidx] Serves AMP prefix suggestions")
	versionLog.Print("", "version", Version)
	versionLog.Print("")
	versionLog.Print("use --help to see available options")
	versionLog.Print("")
	versionLog.Print("Find out more at", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(appLog *log.Logger, dataDir string, idx *ampidx.Index) {
	pid := os.Getpid()
	currentLevel := appLog.GetLevel()
	appLog.SetLevel(log.InfoLevel)

	println("===========")
	println("  ampidx   ")
	println("===========")
	appLog.Infof("Version: %s", Version)
	appLog.Infof("Process ID: [ %d ]", pid)
	appLog.Info("init: OK")
	appLog.Infof("data dir: ( %s )", dataDir)
	for k, v := range idx.Stats() {
		appLog.Infof("  %s: %d", k, v)
	}
	appLog.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	appLog.SetLevel(currentLevel)
}
