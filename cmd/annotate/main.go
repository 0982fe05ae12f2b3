// Command annotate labels a batch of sentences for causal language using
// an LLM annotation service and writes the predictions to a CSV file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/ahrav/go-concord/infrastructure/llm"
	"github.com/ahrav/go-concord/infrastructure/middleware"
	"github.com/ahrav/go-concord/internal/application"
	"github.com/ahrav/go-concord/internal/dataset"
)

func main() {
	var (
		inputPath  = flag.String("in", "sentences.csv", "Input sentence file (text column)")
		outputPath = flag.String("out", "predictions.csv", "Output prediction file")
		configPath = flag.String("config", "", "Optional YAML configuration file")
		model      = flag.String("model", "", "Override the configured model")
		apiStyle   = flag.String("api", "", "Override the API style (chat_completions or responses)")
		limit      = flag.Int("limit", 0, "Annotate at most this many sentences (0 = all)")
	)
	flag.Parse()

	cfg, err := application.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *apiStyle != "" {
		cfg.API = *apiStyle
	}
	if *limit > 0 {
		cfg.Limit = *limit
	}

	sentences, err := dataset.LoadSentences(*inputPath)
	if err != nil {
		log.Fatalf("Failed to load sentences: %v", err)
	}
	if cfg.Limit > 0 && cfg.Limit < len(sentences) {
		sentences = sentences[:cfg.Limit]
	}
	if len(sentences) == 0 {
		log.Fatalf("No sentences to annotate in %s", *inputPath)
	}

	client, err := llm.NewClient(cfg.ClientConfig())
	if err != nil {
		log.Fatalf("Failed to create annotation client: %v", err)
	}
	annotator := llm.Chain(client,
		llm.TracingMiddleware("annotate"),
		llm.MetricsMiddleware(middleware.NewPrometheusMetrics()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	labeler := application.NewLabeler(annotator, cfg.LabelerOptions()...)
	results, failures, err := labeler.Run(ctx, sentences)
	if err != nil {
		log.Fatalf("Annotation run aborted: %v", err)
	}

	if err := dataset.WritePredictions(*outputPath, results); err != nil {
		log.Fatalf("Failed to write predictions: %v", err)
	}

	fmt.Printf("Annotated %d/%d sentences with %s (%s API)\n",
		len(results), len(sentences), cfg.Model, cfg.API)
	fmt.Printf("Predictions written to %s\n", *outputPath)

	if len(failures) > 0 {
		fmt.Printf("\n%d sentences failed:\n", len(failures))
		for _, f := range failures {
			fmt.Printf("- %q: %v\n", f.Text, f.Err)
		}
	}
}
