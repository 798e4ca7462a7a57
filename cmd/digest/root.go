package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sweetpotato0/digest/contrib/engine/claude"
	"github.com/sweetpotato0/digest/contrib/engine/gemini"
	"github.com/sweetpotato0/digest/contrib/engine/ollama"
	"github.com/sweetpotato0/digest/contrib/engine/openai"
	historymongo "github.com/sweetpotato0/digest/contrib/history/mongo"
	historypg "github.com/sweetpotato0/digest/contrib/history/postgres"
	historyredis "github.com/sweetpotato0/digest/contrib/history/redis"
	"github.com/sweetpotato0/digest/contrib/tokenizer/tiktoken"
	"github.com/sweetpotato0/digest/generate"
	"github.com/sweetpotato0/digest/history"
	"github.com/sweetpotato0/digest/middleware"
	"github.com/sweetpotato0/digest/pkg/logging"
	"github.com/sweetpotato0/digest/summarize"
)

var (
	engineFlag    string
	modelFlag     string
	baseURLFlag   string
	historyFlag   string
	tokenizerFlag string
)

var rootCmd = &cobra.Command{
	Use:   "digest",
	Short: "Summarize text with a local or hosted LLM",
	Long: `Digest turns long text into short summaries using a language model.

The default engine talks to a local Ollama server; OpenAI, Anthropic, and
Gemini engines are available with the matching API key set. Summaries can
be styled (bullet points, executive, academic, timeline, questions) and
past runs are kept in a bounded history.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&engineFlag, "engine", "ollama", "inference engine (ollama, openai, claude, gemini)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "llama3.2:latest", "model name, in the engine's vocabulary")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "override the engine's base URL")
	rootCmd.PersistentFlags().StringVar(&historyFlag, "history", "memory", "history backend (memory, redis, postgres, mongo)")
	rootCmd.PersistentFlags().StringVar(&tokenizerFlag, "tokenizer", "", "token counter for chunking (tiktoken encoding or model name; default approximate)")
}

// newEngine builds the engine named by --engine. API keys come from the
// environment through each engine's ConfigFromEnv/DefaultConfig.
func newEngine() (generate.Engine, error) {
	switch strings.ToLower(engineFlag) {
	case "ollama":
		cfg := ollama.ConfigFromEnv()
		if baseURLFlag != "" {
			cfg.WithBaseURL(baseURLFlag)
		}
		return ollama.New(cfg), nil
	case "openai":
		cfg := openai.DefaultConfig()
		if baseURLFlag != "" {
			cfg.WithBaseURL(baseURLFlag)
		}
		return openai.New(cfg), nil
	case "claude":
		cfg := claude.DefaultConfig()
		if baseURLFlag != "" {
			cfg.WithBaseURL(baseURLFlag)
		}
		return claude.New(cfg), nil
	case "gemini":
		cfg := gemini.DefaultConfig()
		if baseURLFlag != "" {
			cfg.WithBaseURL(baseURLFlag)
		}
		return gemini.New(cfg), nil
	default:
		return nil, fmt.Errorf("unknown engine %q (ollama, openai, claude, gemini)", engineFlag)
	}
}

// newStore builds the history backend named by --history. Connection
// settings come from the environment (REDIS_ADDR, POSTGRES_DSN, MONGO_URI).
func newStore() (history.Store, error) {
	switch strings.ToLower(historyFlag) {
	case "memory":
		return history.NewLog(history.DefaultCapacity), nil
	case "redis":
		return historyredis.New(historyredis.ConfigFromEnv()), nil
	case "postgres":
		return historypg.New(historypg.ConfigFromEnv())
	case "mongo":
		return historymongo.New(historymongo.ConfigFromEnv())
	default:
		return nil, fmt.Errorf("unknown history backend %q (memory, redis, postgres, mongo)", historyFlag)
	}
}

// newService wires engine, store, and tokenizer into a summarize.Service.
func newService() (*summarize.Service, error) {
	eng, err := newEngine()
	if err != nil {
		return nil, err
	}
	store, err := newStore()
	if err != nil {
		return nil, err
	}

	chain := middleware.NewChain(
		middleware.NewRunLogger(logging.WithComponent("run")),
	)

	opts := []summarize.Option{
		summarize.WithStore(store),
		summarize.WithChain(chain),
	}
	if tokenizerFlag != "" {
		tok, err := tiktoken.New(tokenizerFlag)
		if err != nil {
			return nil, fmt.Errorf("tokenizer: %w", err)
		}
		opts = append(opts, summarize.WithTokenizer(tok))
	}
	return summarize.New(eng, opts...), nil
}
