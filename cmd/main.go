package main

import (
	"cmp"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/gommon/log"

	"pronounfix/pkg/glossary"
	"pronounfix/pkg/inference"
	"pronounfix/pkg/server"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	ttl := time.Hour
	if v := os.Getenv("GLOSSARY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Warnf("invalid GLOSSARY_TTL %q, using %s: %v", v, ttl, err)
		} else {
			ttl = d
		}
	}
	loader := glossary.NewLoader(cmp.Or(os.Getenv("GLOSSARY_SOURCE"), "glossary.json"), ttl)
	if _, err := loader.Load(ctx); err != nil {
		log.Warnf("glossary not loaded yet: %v", err)
	}
	if err := loader.Watch(ctx); err != nil {
		log.Warnf("glossary not watched: %v", err)
	}

	srv := server.NewServer(ctx, loader, selectInferencer(ctx))
	srv.Echo.Logger.SetLevel(log.DEBUG)
	srv.ReportsPath = os.Getenv("REPORTS_PATH")
	if err := srv.LoadReports(); err != nil {
		log.Warnf("Failed to load %s: %v", srv.ReportsPath, err)
	}

	addr := ":8080"
	if envAddr := os.Getenv("PORT"); envAddr != "" {
		addr = ":" + envAddr
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		done()
		close(finishedShutDown)
	}()

	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(err)
	}
	<-finishedShutDown
}

// selectInferencer prefers Gemini, then an OpenAI-compatible provider, then a
// local OpenAI-compatible server.
func selectInferencer(ctx context.Context) inference.Inferencer {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		gem, err := inference.NewGeminiInferencer(ctx, key, os.Getenv("GEMINI_MODEL"))
		if err == nil {
			log.Infof("Using Gemini for suggestions")
			return gem
		}
		log.Warnf("Gemini unavailable: %v", err)
	}

	if key := os.Getenv("GROK_API_KEY"); key != "" {
		return inference.NewOpenAIInferencer(inference.ProviderGrok, key, os.Getenv("GROK_MODEL"))
	}
	if key := os.Getenv("MOONSHOT_API_KEY"); key != "" {
		return inference.NewOpenAIInferencer(inference.ProviderMoonshot, key, os.Getenv("MOONSHOT_MODEL"))
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		if os.Getenv("LOCAL_LLM") == "" {
			log.Infof("No inference backend configured; suggestions use the heuristic")
			return nil
		}
		return inference.NewOpenAIInferencer(inference.ProviderLocal, "", os.Getenv("OPENAI_MODEL"))
	}
	return inference.NewOpenAIInferencer(inference.ProviderOpenAI, apiKey, os.Getenv("OPENAI_MODEL"))
}
