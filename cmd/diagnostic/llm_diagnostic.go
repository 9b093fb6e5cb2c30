// File: cmd/diagnostic/llm_diagnostic.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/iyunix/go-gemchat/internal/config"
	"github.com/iyunix/go-gemchat/internal/services/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	aiCfg := ai.DefaultConfig()
	aiCfg.Provider = cfg.AIProvider
	aiCfg.Temperature = cfg.AITemperature
	aiCfg.TopP = cfg.AITopP
	aiCfg.MaxOutputTokens = cfg.AIMaxOutputTokens
	if cfg.AIProvider == config.ProviderOpenAI {
		aiCfg.APIKey, aiCfg.BaseURL, aiCfg.Model = cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModelName
	} else {
		aiCfg.APIKey, aiCfg.Model = cfg.GeminiAPIKey, cfg.GeminiModelName
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.AIStreamTimeout)
	defer cancel()

	provider, err := ai.NewProvider(ctx, aiCfg)
	if err != nil {
		log.Fatalf("provider init failed: %v", err)
	}
	defer provider.Close()

	prompt := "What is the answer to life, universe and everything? Answer in one sentence."
	if len(os.Args) > 1 {
		prompt = strings.Join(os.Args[1:], " ")
	}
	fmt.Printf("Testing %s (%s)...\n", provider.Name(), aiCfg.Model)

	start := time.Now()
	var first time.Duration
	chunks := 0
	reason, err := provider.StreamChat(ctx, nil, prompt, func(delta string) error {
		if chunks == 0 {
			first = time.Since(start)
		}
		chunks++
		fmt.Print(delta)
		return nil
	})
	fmt.Println()
	if err != nil {
		log.Fatalf("stream failed after %d chunks: %v", chunks, err)
	}
	fmt.Printf("finish=%s chunks=%d first_chunk=%s total=%s\n", reason, chunks, first.Round(time.Millisecond), time.Since(start).Round(time.Millisecond))
}
