package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"repo-rag/internal/app"
	"repo-rag/internal/config"
	"repo-rag/internal/llm"
	"repo-rag/internal/logger"
	"repo-rag/internal/models"
	"repo-rag/internal/pipeline"
)

func main() {
	cfg := config.FromEnv()

	// Parse command line flags
	provider := flag.String("provider", cfg.LLM.Provider, "LLM backend: openai (any OpenAI-compatible API) or ollama")
	model := flag.String("model", cfg.LLM.Model, "Model name")
	apiKey := flag.String("api-key", "", "API key for this session (overrides OPENROUTER_API_KEY)")
	docs := flag.String("docs", cfg.DocsFolder, "Default document folder")
	topK := flag.Int("top-k", cfg.TopK, "Number of chunks to include in the prompt")
	interactive := flag.Bool("i", false, "Run in interactive mode")
	queryFlag := flag.String("q", "", "Query to answer (non-interactive mode)")
	showPrompt := flag.Bool("show-prompt", false, "Print the assembled prompt before the answers")
	flag.Parse()

	cfg.LLM.Provider = strings.ToLower(*provider)
	cfg.LLM.Model = *model
	cfg.DocsFolder = *docs
	cfg.TopK = *topK
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger.Setup(cfg)

	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	if *interactive {
		runInteractiveMode(ctx, a.Engine, cfg.QueryTimeout, *apiKey, *showPrompt)
		return
	}

	if *queryFlag == "" {
		log.Fatal("Query is required in non-interactive mode. Use -q 'your question'")
	}

	answer, err := processQuery(ctx, a.Engine, cfg.QueryTimeout, *queryFlag, *apiKey)
	if err != nil {
		log.Fatalf("Failed to process query: %v", err)
	}
	fmt.Println(formatAnswer(answer, *showPrompt))
}

func runInteractiveMode(ctx context.Context, engine *pipeline.Engine, timeout time.Duration, apiKey string, showPrompt bool) {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Repository assistant - ask about your documents or a GitHub repository URL (type 'exit' to quit)")

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}

		input := scanner.Text()
		if strings.ToLower(input) == "exit" || strings.ToLower(input) == "quit" {
			break
		}

		if strings.TrimSpace(input) == "" {
			continue
		}

		if strings.ToLower(input) == "/prompt" {
			showPrompt = !showPrompt
			fmt.Printf("Prompt display: %v\n", showPrompt)
			continue
		}

		fmt.Print("Thinking... ")

		answer, err := processQuery(ctx, engine, timeout, input, apiKey)
		if err != nil {
			fmt.Printf("\rError: %v\n", err)
			continue
		}

		fmt.Println("\r" + formatAnswer(answer, showPrompt))
	}
}

func processQuery(ctx context.Context, engine *pipeline.Engine, timeout time.Duration, query, apiKey string) (*models.Answer, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	startTime := time.Now()
	answer, err := engine.Answer(ctx, pipeline.Request{Query: query, APIKey: apiKey})
	if err != nil {
		var be *llm.BackendError
		if errors.As(err, &be) {
			return nil, fmt.Errorf("model call %d failed: %w", be.Turn, be.Err)
		}
		return nil, err
	}

	log.Printf("Query processed in %v", time.Since(startTime).Round(time.Millisecond))
	return answer, nil
}

func formatAnswer(answer *models.Answer, showPrompt bool) string {
	var sb strings.Builder

	if showPrompt {
		sb.WriteString("Prompt:\n")
		sb.WriteString(answer.Prompt)
		sb.WriteString("\n\n")
	}

	if answer.Repository != nil {
		sb.WriteString(fmt.Sprintf("Repository: %s (%d files at %s)\n\n",
			answer.Repository.URL, answer.Repository.FileCount, answer.Repository.LocalPath))
	} else if answer.RepositoryError != "" {
		sb.WriteString(fmt.Sprintf("Repository unavailable, answered from default documents: %s\n\n", answer.RepositoryError))
	}

	sb.WriteString("First answer:\n")
	sb.WriteString(answer.FirstResponse)
	sb.WriteString("\n\nAfter reconsidering:\n")
	sb.WriteString(answer.SecondResponse)
	sb.WriteString("\n\n")

	if len(answer.Sources) > 0 {
		sb.WriteString("Sources:\n")
		for i, source := range answer.Sources {
			sb.WriteString(fmt.Sprintf("  %d. [%s, chunk %d, %d matching words]\n",
				i+1, source.SourcePath, source.Index, source.MatchCount))
		}
	} else {
		sb.WriteString("Sources: none matched\n")
	}

	return sb.String()
}
