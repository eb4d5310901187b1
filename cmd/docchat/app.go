package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hubenschmidt/docchat/answer"
	"github.com/hubenschmidt/docchat/config"
	"github.com/hubenschmidt/docchat/llm"
	"github.com/hubenschmidt/docchat/pipelines"
	"github.com/hubenschmidt/docchat/vector"
)

// app holds the components shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  vector.Store
	rag    *pipelines.RAG
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	store, err := vector.NewStore(cfg.Store.Backend, cfg.StoreLocation(), cfg.Store.Table)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	logger.Info("vector store ready",
		zap.String("component", "vector"),
		zap.String("backend", cfg.Store.Backend),
	)

	prompt, err := answer.NewPrompt(cfg.RAG.SystemPrompt, cfg.RAG.DocumentLabel)
	if err != nil {
		store.Close()
		return nil, err
	}

	client := llm.NewOpenAIClientWithConfig(cfg.ClientConfig())
	rag, err := pipelines.NewRAG(pipelines.Config{
		Store:      store,
		Embedder:   client,
		EmbedModel: cfg.OpenAI.EmbedModel,
		Composer:   answer.NewComposer(client, cfg.ChatModel(), prompt),
		TopK:       cfg.RAG.TopK,
		Logger:     logger.Named("rag"),
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: store, rag: rag}, nil
}

func (a *app) Close() error {
	err := a.store.Close()
	_ = a.logger.Sync()
	return err
}

// requireAPIKey fails early for commands that always call the API.
func (a *app) requireAPIKey() error {
	if a.cfg.OpenAI.APIKey == "" {
		return errors.New("OpenAI API key not configured: set OPENAI_API_KEY")
	}
	return nil
}
