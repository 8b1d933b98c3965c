// Package cmd holds the docfoundry command-line entry point.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	gormlogger "gorm.io/gorm/logger"

	"docfoundry/internal/chunker"
	"docfoundry/internal/config"
	"docfoundry/internal/database"
	"docfoundry/internal/docgen"
	"docfoundry/internal/github"
	"docfoundry/internal/llm/client"
	"docfoundry/internal/refine"
	"docfoundry/internal/repositories"
	"docfoundry/internal/server"
	"docfoundry/internal/services"
	"docfoundry/internal/stream"
	"docfoundry/internal/tokenizer"
	"docfoundry/internal/utils"
)

var rootCmd = &cobra.Command{
	Use:   "docfoundry",
	Short: "docfoundry generates and refines repository documentation with LLMs",
	Long: `docfoundry serves an API that turns source files into unified developer
documentation: token-aware chunking, per-file generation, conversational
refinement with version history, and publishing accepted documents back
to the source host.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

// Execute is the entry point called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	if err := utils.LoadEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	logger, err := utils.NewApplicationLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := database.Init(database.Config{Path: cfg.DatabasePath, LogLevel: gormlogger.Warn})
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	repo := repositories.NewArtifactRepository(db)

	codec, err := tokenizer.NewCodec(cfg.Encoding)
	if err != nil {
		return fmt.Errorf("init tokenizer: %w", err)
	}
	chunks := chunker.New(codec, cfg.TokenBudget, cfg.Overlap)

	keyringService := services.NewKeyringService()
	apiKey, err := keyringService.GetApiKey(cfg.Provider)
	if err != nil {
		return fmt.Errorf("resolve %s API key: %w", cfg.Provider, err)
	}
	backend, err := client.NewForProvider(ctx, cfg.Provider, apiKey, cfg.Model)
	if err != nil {
		return fmt.Errorf("init %s backend: %w", cfg.Provider, err)
	}

	generator := docgen.NewGenerator(backend, chunks, logger,
		docgen.WithConcurrency(cfg.Concurrency),
		docgen.WithCache(cfg.CacheSize))
	assembler := docgen.NewAssembler()
	engine := refine.NewEngine(repo, backend, logger)
	orchestrator := stream.NewOrchestrator(generator, assembler, repo, logger)
	host := github.NewClient(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubRedirectURI)

	docService := services.NewDocService(generator, assembler, engine, orchestrator, repo, host, logger)
	if err := docService.Startup(ctx); err != nil {
		return err
	}

	srv := server.New(cfg.Addr, docService, host, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
