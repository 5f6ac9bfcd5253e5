// coinlens-ingest loads raw corpus JSON exports into the knowledge store.
//
// Usage: coinlens-ingest <corpus.json> [more.json ...]
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"coinlens/internal/config"
	"coinlens/internal/ingest"
	"coinlens/internal/knowledge"
	"coinlens/internal/util"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("usage: coinlens-ingest <corpus.json> [more.json ...]")
	}

	cfgPath := "config/coinlens.yaml"
	if p := os.Getenv("COINLENS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	corpus, err := knowledge.NewStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening knowledge store: %v", err)
	}
	defer corpus.Close()

	ctx := context.Background()
	for _, path := range os.Args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("reading %s: %v", path, err)
		}

		items, stats, err := ingest.Parse(data, logger)
		if err != nil {
			log.Fatalf("parsing %s: %v", path, err)
		}

		for _, item := range items {
			if err := corpus.Upsert(ctx, item); err != nil {
				log.Fatalf("storing item %s from %s: %v", item.ID, path, err)
			}
		}

		logger.Info("ingested corpus file", "path", path,
			"items", stats.Items, "items_skipped", stats.ItemsSkipped,
			"mentions", stats.Mentions, "mentions_skipped", stats.MentionsSkipped)
	}
}
