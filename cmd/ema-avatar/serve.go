package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/koscakluka/ema-avatar/core/avatar/heygen"
	"github.com/koscakluka/ema-avatar/core/llms"
	"github.com/koscakluka/ema-avatar/core/llms/openai"
	"github.com/koscakluka/ema-avatar/internal/config"
	"github.com/koscakluka/ema-avatar/internal/server"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(cfg *config.Config) *cobra.Command {
	var port, staticDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the backend that holds the avatar and language model credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("static-dir") {
				cfg.StaticDir = staticDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), *cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "port to listen on (PORT)")
	cmd.Flags().StringVar(&staticDir, "static-dir", "", "directory of static assets to serve (STATIC_DIR)")
	return cmd
}

func newLanguageModel(cfg config.Config) *openai.Client {
	opts := []openai.ClientOption{openai.WithAPIKey(cfg.LLMAPIKey())}
	if cfg.LLMProvider == config.LLMProviderGroq {
		opts = append(opts, openai.WithGroq())
	}
	opts = append(opts,
		openai.WithModel(cfg.LLMModel),
		openai.WithPromptOptions(llms.WithInstructions(cfg.SystemPrompt)),
	)
	return openai.NewClient(opts...)
}

func serve(ctx context.Context, cfg config.Config) error {
	cfg.WarnMissingServerCredentials()

	avatarClient := heygen.NewClient(
		heygen.WithAPIKey(cfg.HeyGenAPIKey),
		heygen.WithBaseURL(cfg.HeyGenAPIURL),
	)

	e := server.New(server.Handlers{
		Tokens:    avatarClient,
		Completer: newLanguageModel(cfg),
		Speaker:   avatarClient,
	}, server.Options{StaticDir: cfg.StaticDir})

	errs := make(chan error, 1)
	go func() {
		errs <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
