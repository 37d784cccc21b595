package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uniaudio/internal/artifact"
	"uniaudio/internal/catalog"
	"uniaudio/internal/config"
	"uniaudio/internal/gateway"
	"uniaudio/internal/podcast"
	"uniaudio/internal/script"
	"uniaudio/internal/storage"
	"uniaudio/internal/task"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	root := &cobra.Command{
		Use:           "uniaudio",
		Short:         "Drive remote speech models through the WebGW task gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(logger),
		newPodcastCmd(logger),
		newAudioCmd(logger),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles the collaborators every gateway-facing command needs.
type app struct {
	cfg      *config.Config
	orch     *task.Orchestrator
	scratch  *artifact.Store
	scripts  *script.Processor
	voices   *catalog.Catalog
	store    storage.Store
	pipeline *podcast.Pipeline
}

// buildApp loads configuration and wires the service graph.
func buildApp(logger *zap.Logger) (*app, error) {
	cfg, err := config.NewLoader(config.WithMinIOPublicFallback()).Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	gw := gateway.NewClient(gateway.Config{
		URL:             cfg.Gateway.URL,
		APIKey:          cfg.Gateway.APIKey,
		AppID:           cfg.Gateway.AppID,
		SubmitTimeout:   cfg.Gateway.SubmitTimeout,
		PollTimeout:     cfg.Gateway.PollTimeout,
		DownloadTimeout: cfg.Gateway.DownloadTimeout,
	}, logger)

	scratch := artifact.NewStore(cfg.Scratch.Dir, cfg.Scratch.MaxFiles, logger)
	orch := task.NewOrchestrator(gw, scratch, task.Projects{
		Default:  cfg.Projects.Default,
		Instruct: cfg.Projects.Instruct,
		Legacy:   cfg.Projects.Legacy,
	}, logger)

	voices := catalog.Default(logger)
	if err := voices.LoadMerge(cfg.Catalog.VoiceListPath); err != nil {
		return nil, err
	}

	store, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	scripts := script.NewProcessor(logger)
	return &app{
		cfg:      cfg,
		orch:     orch,
		scratch:  scratch,
		scripts:  scripts,
		voices:   voices,
		store:    store,
		pipeline: podcast.NewPipeline(orch, scripts, voices, store, logger),
	}, nil
}
