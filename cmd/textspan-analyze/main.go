package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/textspan/internal/extract"
	"github.com/cognicore/textspan/internal/rulepipe"
	"github.com/cognicore/textspan/pkg/textspan"
	"github.com/cognicore/textspan/pkg/textspan/config"
	"github.com/cognicore/textspan/pkg/textspan/render"
	"github.com/cognicore/textspan/pkg/textspan/store"
	"github.com/cognicore/textspan/pkg/textspan/store/sqlite"
	"github.com/cognicore/textspan/pkg/textspan/tags"
)

// appConfig holds environment defaults; flags override them.
type appConfig struct {
	TagSetDir string `env:"TEXTSPAN_TAGSETS"`
	RulesPath string `env:"TEXTSPAN_RULES"`
	DBPath    string `env:"TEXTSPAN_DB"`
	Language  string `env:"TEXTSPAN_LANG" envDefault:"en"`
}

// rulesFile configures the built-in rule pipeline.
//
// Format:
//
//	entities:
//	  new york: LOCATION
//	lemmas:
//	  cities: city
type rulesFile struct {
	Entities map[string]string `yaml:"entities"`
	Lemmas   map[string]string `yaml:"lemmas"`
}

func main() {
	_ = godotenv.Load()

	var cfg appConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatal("Failed to parse environment:", err)
	}

	var (
		language  = flag.String("lang", cfg.Language, "Language code of the input")
		tagSetDir = flag.String("tagsets", cfg.TagSetDir, "Directory of per-language tag set YAML files")
		rulesPath = flag.String("rules", cfg.RulesPath, "Rule pipeline YAML file (entities, lemmas)")
		dbPath    = flag.String("db", cfg.DBPath, "SQLite database to persist the analysis (optional)")
		verbose   = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: textspan-analyze [flags] <input file>")
	}
	input := flag.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var registry *tags.Registry
	if *tagSetDir != "" {
		var err error
		registry, err = config.LoadRegistry(*tagSetDir, logger)
		if err != nil {
			log.Fatal("Failed to load tag sets:", err)
		}
	} else {
		registry = tags.NewRegistry(logger)
	}

	ruleCfg := rulepipe.Config{}
	if *rulesPath != "" {
		data, err := os.ReadFile(*rulesPath)
		if err != nil {
			log.Fatal("Failed to read rules:", err)
		}
		var rules rulesFile
		if err := yaml.Unmarshal(data, &rules); err != nil {
			log.Fatal("Failed to parse rules:", err)
		}
		ruleCfg.Entities = rules.Entities
		ruleCfg.Lemmas = rules.Lemmas
	}

	analyzer := textspan.New(textspan.Options{Registry: registry, Logger: logger})
	if _, err := analyzer.RegisterPipeline(*language, rulepipe.New(ruleCfg)); err != nil {
		log.Fatal("Failed to register pipeline:", err)
	}

	text, err := extract.File(input)
	if err != nil {
		log.Fatal("Failed to extract text:", err)
	}

	ctx := context.Background()
	at, err := analyzer.Analyse(ctx, *language, text)
	if err != nil {
		log.Fatal("Analysis failed:", err)
	}

	doc := render.FromAnalysedText(*language, at)
	out, err := doc.JSON()
	if err != nil {
		log.Fatal("Failed to encode result:", err)
	}
	fmt.Println(string(out))

	if *dbPath != "" {
		db, err := sqlite.Open(ctx, *dbPath)
		if err != nil {
			log.Fatal("Failed to open database:", err)
		}
		defer db.Close()

		record := store.FromAnalysedText(*language, at, time.Now())
		if err := db.SaveAnalysis(ctx, record); err != nil {
			log.Fatal("Failed to persist analysis:", err)
		}
		logger.Info("analysis persisted", "id", record.ID, "db", *dbPath)
	}
}
