package main

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"bookcrud/internal/book"
	"bookcrud/internal/platform/config"
	"bookcrud/internal/platform/database"
	"bookcrud/internal/platform/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed books.yml
var defaultBooks []byte

type seedBook struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Year   *int   `yaml:"year"`
	ISBN   string `yaml:"isbn"`
}

func main() {
	file := flag.String("file", "", "YAML file with the books to insert (defaults to the bundled sample)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Flusher(log)()

	var src io.Reader = bytes.NewReader(defaultBooks)
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatal("failed to open seed file", zap.String("file", *file), zap.Error(err))
		}
		defer f.Close()
		src = f
	}

	inputs, err := loadSeed(src)
	if err != nil {
		log.Fatal("failed to read seed data", zap.Error(err))
	}

	ctx := context.Background()
	store, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	if err := store.Repo.EnsureSchema(ctx); err != nil {
		log.Fatal("failed to prepare schema", zap.Error(err))
	}

	inserted, err := seed(ctx, book.NewService(store.Repo, log), inputs, log)
	if err != nil {
		log.Fatal("seeding stopped", zap.Int("books.inserted", inserted), zap.Error(err))
	}
	log.Info("seeding finished", zap.Int("books.inserted", inserted))
}

func loadSeed(r io.Reader) ([]book.Input, error) {
	var books []seedBook
	if err := yaml.NewDecoder(r).Decode(&books); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed data: %w", err)
	}

	inputs := make([]book.Input, 0, len(books))
	for _, b := range books {
		inputs = append(inputs, book.Input{Title: b.Title, Author: b.Author, Year: b.Year, ISBN: b.ISBN})
	}
	return inputs, nil
}

// seed creates every input through the service. Invalid entries are logged and skipped.
func seed(ctx context.Context, svc *book.Service, inputs []book.Input, log *zap.Logger) (int, error) {
	inserted := 0
	for i, in := range inputs {
		created, err := svc.Create(ctx, in)
		if errors.Is(err, book.ErrInvalidInput) {
			log.Warn("skipping invalid book", zap.Int("seed.index", i), zap.String("book.title", in.Title), zap.Error(err))
			continue
		}
		if err != nil {
			return inserted, err
		}
		log.Debug("book inserted", zap.Int64("book.id", created.ID))
		inserted++
	}
	return inserted, nil
}
