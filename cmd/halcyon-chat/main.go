// Command halcyon-chat is an interactive terminal client for the agent
// core. It wires configured providers, the builtin tool registry, and
// optional voice and retrieval capabilities into a REPL.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/halcyon-ai/halcyon/pkg/config"
	"github.com/halcyon-ai/halcyon/pkg/core"
	"github.com/halcyon-ai/halcyon/pkg/core/agent"
	"github.com/halcyon-ai/halcyon/pkg/core/gateway"
	"github.com/halcyon-ai/halcyon/pkg/core/providers/anthropic"
	"github.com/halcyon-ai/halcyon/pkg/core/providers/gemini"
	"github.com/halcyon-ai/halcyon/pkg/core/providers/openai"
	"github.com/halcyon-ai/halcyon/pkg/core/retrieval"
	"github.com/halcyon-ai/halcyon/pkg/core/session"
	"github.com/halcyon-ai/halcyon/pkg/core/tools"
	"github.com/halcyon-ai/halcyon/pkg/core/types"
	"github.com/halcyon-ai/halcyon/pkg/core/voice/tts"
)

var (
	flagProvider    string
	flagVoice       bool
	flagStream      bool
	flagMetricsAddr string
)

func main() {
	root := &cobra.Command{
		Use:   "halcyon-chat",
		Short: "Interactive chat session against the agent core",
		RunE:  run,
	}
	root.Flags().StringVar(&flagProvider, "provider", "", "preferred provider (anthropic, openai, gemini)")
	root.Flags().BoolVar(&flagVoice, "voice", false, "synthesize audio for each reply")
	root.Flags().BoolVar(&flagStream, "stream", false, "stream reply fragments as they arrive")
	root.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// turnProcessor is the surface the REPL needs; satisfied by both the
// base agent and the voice wrapper.
type turnProcessor interface {
	Process(ctx context.Context, userInput string, opts agent.Options) (*types.TurnResult, error)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	gw := gateway.New(buildProviders(cfg), gateway.WithLogger(logger))
	if len(gw.Providers()) == 0 {
		return core.ErrNoProviderAvailable
	}

	registry := tools.NewDefaultRegistry(logger, tools.BuiltinOptions{
		FileReadBaseDir: cfg.FileReadBaseDir,
	})

	systemPrompt := cfg.SystemPrompt
	if flagVoice && systemPrompt == config.DefaultSystemPrompt {
		systemPrompt = config.DefaultVoiceSystemPrompt
	}
	sess := session.New(systemPrompt,
		session.WithMaxHistoryLen(cfg.MaxHistoryLen),
		session.WithMaxContextTokens(cfg.MaxContextTokens),
		session.WithLogger(logger),
	)

	agentOpts := []agent.Option{
		agent.WithRegistry(registry),
		agent.WithLogger(logger),
	}
	if retriever := buildRetriever(cfg, logger); retriever != nil {
		agentOpts = append(agentOpts, agent.WithRetriever(retriever))
	}
	base := agent.New(sess, gw, agentOpts...)

	if flagMetricsAddr != "" {
		go serveMetrics(flagMetricsAddr, logger)
	}

	opts := agent.Options{
		Provider:        flagProvider,
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}

	var proc turnProcessor = base
	var voice *agent.VoiceAgent
	if flagVoice {
		if cfg.ElevenLabsAPIKey == "" {
			return core.NewConfigurationError("voice mode requires ELEVENLABS_API_KEY")
		}
		speaker := tts.NewSpeaker(tts.NewElevenLabs(cfg.ElevenLabsAPIKey), tts.SynthesizeOptions{
			Voice:  cfg.VoiceID,
			Model:  cfg.VoiceModel,
			Format: cfg.AudioFormat,
		})
		voice = agent.NewVoiceAgent(base, speaker, cfg.AudioFormat, logger)
		proc = voice
	}

	return repl(cmd.Context(), base, voice, proc, sess, opts)
}

func repl(ctx context.Context, base *agent.Agent, voice *agent.VoiceAgent, proc turnProcessor, sess *session.Session, opts agent.Options) error {
	fmt.Printf("session %s ready, /help for commands\n", sess.ID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/exit", "/quit":
			return nil
		case "/help":
			fmt.Println("commands: /stats /clear /exit")
			continue
		case "/clear":
			sess.Clear(true)
			fmt.Println("history cleared")
			continue
		case "/stats":
			stats := sess.Stats()
			fmt.Printf("turns=%d tokens=%d cost=$%.4f\n", stats.TurnCount, stats.CumulativeTokens, stats.CumulativeCost)
			continue
		}

		if flagStream {
			if err := streamTurn(ctx, base, voice, line, opts); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			continue
		}

		result, err := proc.Process(ctx, line, opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		fmt.Println(result.Text)
		if len(result.Audio) > 0 {
			fmt.Printf("[%d bytes of %s audio]\n", len(result.Audio), result.AudioFormat)
		}
		for _, src := range result.Sources {
			fmt.Printf("[source %s score=%.2f]\n", src.ID, src.Score)
		}
	}
}

func streamTurn(ctx context.Context, base *agent.Agent, voice *agent.VoiceAgent, line string, opts agent.Options) error {
	if voice != nil {
		return streamVoiceTurn(ctx, voice, line, opts)
	}

	ts, err := base.ProcessStream(ctx, line, opts)
	if err != nil {
		return err
	}
	for fragment := range ts.Fragments() {
		fmt.Print(fragment)
	}
	fmt.Println()
	_, err = ts.Result()
	return err
}

// streamVoiceTurn prints fragments as they arrive while audio chunks are
// drained concurrently; the chunk sizes are reported once both finish.
func streamVoiceTurn(ctx context.Context, voice *agent.VoiceAgent, line string, opts agent.Options) error {
	vs, err := voice.ProcessStream(ctx, line, opts)
	if err != nil {
		return err
	}

	var audioBytes int
	done := make(chan struct{})
	go func() {
		defer close(done)
		for chunk := range vs.Audio() {
			audioBytes += len(chunk)
		}
	}()

	for fragment := range vs.Fragments() {
		fmt.Print(fragment)
	}
	fmt.Println()
	<-done

	if audioBytes > 0 {
		fmt.Printf("[%d bytes of streamed audio]\n", audioBytes)
	}
	_, err = vs.Result()
	return err
}

func buildProviders(cfg *config.Config) []core.Provider {
	byName := map[string]core.Provider{
		"anthropic": anthropic.New(cfg.AnthropicAPIKey, anthropic.WithModel(cfg.AnthropicModel)),
		"openai":    openai.New(cfg.OpenAIAPIKey, openai.WithModel(cfg.OpenAIModel)),
		"gemini":    gemini.New(cfg.GeminiAPIKey, gemini.WithModel(cfg.GeminiModel)),
	}

	// Preference order: the configured default first, then the rest in a
	// stable order.
	order := []string{"anthropic", "openai", "gemini"}
	providers := []core.Provider{}
	if p, ok := byName[cfg.DefaultProvider]; ok {
		providers = append(providers, p)
	}
	for _, name := range order {
		if name == cfg.DefaultProvider {
			continue
		}
		providers = append(providers, byName[name])
	}
	return providers
}

func buildRetriever(cfg *config.Config, logger *slog.Logger) core.Retriever {
	if cfg.DatabaseDSN == "" || cfg.OpenAIAPIKey == "" {
		return nil
	}
	embedder, err := retrieval.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel, "")
	if err != nil {
		logger.Warn("embedder unavailable, retrieval disabled", "error", err)
		return nil
	}
	store, err := retrieval.NewStore(cfg.DatabaseDSN, 0)
	if err != nil {
		logger.Warn("document store unavailable, retrieval disabled", "error", err)
		return nil
	}
	return retrieval.New(embedder, store,
		retrieval.WithTopK(cfg.RetrievalTopK),
		retrieval.WithMinScore(cfg.RetrievalMin),
		retrieval.WithLogger(logger),
	)
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}
