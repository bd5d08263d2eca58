// Command smartmatch runs the recommendation pipeline against a catalog file
// and prints the result as JSON.
//
//	smartmatch -catalog products.xlsx -diet keto,vegano -max 4 "aceite de oliva" "harina de almendra"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/recipematch/backend/config"
	"github.com/recipematch/backend/internal/app"
	"github.com/recipematch/backend/internal/infrastructure/logging"
	"go.uber.org/zap/zapcore"
)

func main() {
	catalogFile := flag.String("catalog", "", "catalog file (.json or .xlsx)")
	diet := flag.String("diet", "", "comma-separated diet tags")
	maxProducts := flag.Int("max", 0, "maximum number of products (0 uses the configured default)")
	direct := flag.Bool("direct", false, "use direct word matching instead of product groups")
	flag.Parse()

	if err := run(*catalogFile, *diet, *maxProducts, *direct, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "smartmatch: %v\n", err)
		os.Exit(1)
	}
}

func run(catalogFile, diet string, maxProducts int, direct bool, ingredients []string) error {
	if catalogFile == "" {
		return fmt.Errorf("-catalog is required")
	}
	if len(ingredients) == 0 {
		return fmt.Errorf("at least one ingredient is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Catalog.Source = "file"
	cfg.Catalog.File = catalogFile
	cfg.Cache.Type = "memory"

	// logs go to stderr so stdout stays valid JSON
	logger, err := logging.NewWithSink(cfg.Log.Level, cfg.Server.Environment, zapcore.Lock(os.Stderr))
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	services, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	products, err := services.Catalog.Products(ctx)
	if err != nil {
		return err
	}

	var dietIDs []string
	for _, d := range strings.Split(diet, ",") {
		if d = strings.TrimSpace(d); d != "" {
			dietIDs = append(dietIDs, d)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if direct {
		return enc.Encode(services.Matcher.Match(ingredients, products, dietIDs))
	}
	return enc.Encode(services.Recommender.GetSmartMatches(ctx, ingredients, products, dietIDs, maxProducts))
}
