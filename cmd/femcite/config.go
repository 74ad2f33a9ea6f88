// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/femcite/internal/export"
	"github.com/pdiddy/femcite/internal/format"
	"github.com/pdiddy/femcite/internal/generate"
	"github.com/pdiddy/femcite/internal/pipeline"
	"github.com/pdiddy/femcite/internal/search"
	"github.com/pdiddy/femcite/internal/secrets"
	"github.com/pdiddy/femcite/internal/synth"
	"github.com/pdiddy/femcite/pkg/types"
)

const defaultUserAgent = "femcite/0.1"

// setDefaults registers every configuration key so that FEMCITE_* variables
// are picked up by Unmarshal even without a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("search.endpoint", search.DefaultEndpoint)
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.top_k", search.DefaultTopK)
	v.SetDefault("search.max_retries", 0)
	v.SetDefault("search.timeout", 60*time.Second)
	v.SetDefault("search.user_agent", defaultUserAgent)

	v.SetDefault("generation.provider", string(types.ProviderOpenAI))
	v.SetDefault("generation.model", "")
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.base_url", "")
	v.SetDefault("generation.max_tokens", 4096)
	v.SetDefault("generation.requests_per_minute", 0)
	v.SetDefault("generation.timeout", 3*time.Minute)
	v.SetDefault("generation.user_agent", defaultUserAgent)

	v.SetDefault("export.dir", "femcite-output")
	v.SetDefault("export.per_session", true)
	v.SetDefault("export.csl", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.db_path", "")

	v.SetDefault("verify.enabled", true)
}

// loadConfig decodes the viper settings and fills missing API keys from the
// environment and the secrets directory.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	dir, _ := cmd.Flags().GetString("secrets-dir")
	if err := secrets.Fill(&cfg, dir); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// app holds the components shared by the ask, chat, and serve commands.
type app struct {
	cfg          types.Config
	logger       *zap.Logger
	orchestrator *pipeline.Orchestrator
	writer       *export.Writer
}

// newApp wires the search client, generation backend, synthesizer,
// formatter, and export writer into an orchestrator.
func newApp(cfg types.Config, logger *zap.Logger) (*app, error) {
	gen, err := generate.New(cfg.Generation)
	if err != nil {
		return nil, fmt.Errorf("configuring generation backend: %w", err)
	}

	client := search.NewClient(cfg.Search, &http.Client{Timeout: cfg.Search.Timeout})
	writer := export.New(cfg.Export, logger.Named("export"))
	orch := pipeline.New(
		client,
		synth.New(gen, logger.Named("synth")),
		format.New(gen, logger.Named("format")),
		writer,
		pipeline.OptionsFromConfig(cfg),
		logger.Named("pipeline"),
	)
	return &app{cfg: cfg, logger: logger, orchestrator: orch, writer: writer}, nil
}
