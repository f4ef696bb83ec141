package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"tubedeck/internal/api"
	"tubedeck/internal/cache"
	"tubedeck/internal/config"
	"tubedeck/internal/domain"
	"tubedeck/internal/library"
	"tubedeck/internal/log"
	"tubedeck/internal/source/youtube"
	"tubedeck/internal/storage"
	"tubedeck/internal/videos"
)

// Version is set at build time via -ldflags
var Version = "dev"

const usage = `tubedeck - organize creators into categories and follow their uploads

Usage:
  tubedeck save <category-name> <channel-id> [title] [url]
  tubedeck categories
  tubedeck create <category-name>
  tubedeck rename <category-id> <new-name>
  tubedeck delete <category-id>
  tubedeck remove <category-id> <channel-id>
  tubedeck order <category-id> <order>
  tubedeck status <channel-id>
  tubedeck videos <category-id>
  tubedeck recent <channel-id> [channel-id ...]
  tubedeck resolve <url>
  tubedeck refresh-title <channel-id>
  tubedeck search <query>
  tubedeck export
  tubedeck import <file | ->
  tubedeck sweep
`

func main() {
	// Handle version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if showVersion {
		fmt.Printf("tubedeck %s\n", Version)
		return
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting tubedeck", "version", Version, "command", args[0])

	// Open persistence
	var kv domain.KV
	if cfg.Storage.Dir == "" {
		kv = storage.NewMemoryKV()
	} else {
		bolt, err := storage.OpenBolt(cfg.Storage.Dir)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		kv = bolt
	}
	defer kv.Close()

	ctx := context.Background()

	states := storage.NewStateStore(kv)
	remoteCache := cache.New(kv, logger)

	feed := youtube.NewFeedClient(logger)
	resolver := youtube.NewResolver(logger)

	var details domain.VideoDetails = unavailableDetails{}
	if cfg.YouTube.APIKey != "" {
		client, err := youtube.NewDetailsClient(ctx, cfg.YouTube.APIKey, logger)
		if err != nil {
			return fmt.Errorf("failed to create video details client: %w", err)
		}
		details = client
	}

	// Create services
	librarySvc := library.NewService(states, logger)
	aggregator := videos.NewAggregator(states, feed, details, remoteCache, logger)
	if cfg.Cache.VideoTTLMinutes > 0 {
		aggregator.SetTTL(time.Duration(cfg.Cache.VideoTTLMinutes) * time.Minute)
	}

	handler := api.NewHandler(librarySvc, aggregator, resolver, feed, states, logger)

	return dispatch(ctx, handler, kv, logger, cfg, args)
}

func dispatch(ctx context.Context, h *api.Handler, kv domain.KV, logger *slog.Logger, cfg *config.Config, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "save":
		if len(rest) < 2 {
			return errors.New("usage: tubedeck save <category-name> <channel-id> [title] [url]")
		}
		ch := domain.ChannelInfo{ChannelID: rest[1]}
		if len(rest) > 2 {
			ch.Title = rest[2]
		}
		if len(rest) > 3 {
			ch.URL = rest[3]
		}
		res, err := h.SaveCreator(api.SaveCreatorRequest{CategoryName: rest[0], Channel: ch})
		if err != nil {
			return err
		}
		return printJSON(res)

	case "categories":
		res, err := h.GetCategories()
		if err != nil {
			return err
		}
		return printJSON(res)

	case "create":
		if len(rest) != 1 {
			return errors.New("usage: tubedeck create <category-name>")
		}
		res, err := h.CreateCategory(rest[0])
		if err != nil {
			return err
		}
		return printJSON(res)

	case "rename":
		if len(rest) != 2 {
			return errors.New("usage: tubedeck rename <category-id> <new-name>")
		}
		res, err := h.RenameCategory(rest[0], rest[1])
		if err != nil {
			return err
		}
		return printJSON(res)

	case "delete":
		if len(rest) != 1 {
			return errors.New("usage: tubedeck delete <category-id>")
		}
		res, err := h.DeleteCategory(rest[0])
		if err != nil {
			return err
		}
		return printJSON(res)

	case "remove":
		if len(rest) != 2 {
			return errors.New("usage: tubedeck remove <category-id> <channel-id>")
		}
		res, err := h.RemoveChannelFromCategory(rest[0], rest[1])
		if err != nil {
			return err
		}
		return printJSON(res)

	case "order":
		if len(rest) != 2 {
			return errors.New("usage: tubedeck order <category-id> <order>")
		}
		order, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("order must be an integer: %w", err)
		}
		res, err := h.UpdateCategoryOrder(rest[0], order)
		if err != nil {
			return err
		}
		return printJSON(res)

	case "status":
		if len(rest) != 1 {
			return errors.New("usage: tubedeck status <channel-id>")
		}
		res, err := h.GetChannelStatus(rest[0])
		if err != nil {
			return err
		}
		return printJSON(res)

	case "videos":
		if len(rest) != 1 {
			return errors.New("usage: tubedeck videos <category-id>")
		}
		res, err := h.GetVideosForCategory(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(res)

	case "recent":
		if len(rest) == 0 {
			return errors.New("usage: tubedeck recent <channel-id> [channel-id ...]")
		}
		res, err := h.RecentLongFormVideos(ctx, rest)
		if err != nil {
			return err
		}
		return printJSON(res)

	case "resolve":
		if len(rest) != 1 {
			return errors.New("usage: tubedeck resolve <url>")
		}
		res, err := h.ResolveChannelFromURL(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(res)

	case "refresh-title":
		if len(rest) != 1 {
			return errors.New("usage: tubedeck refresh-title <channel-id>")
		}
		res, err := h.RefreshChannelTitle(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(res)

	case "search":
		if len(rest) == 0 {
			return errors.New("usage: tubedeck search <query>")
		}
		res, err := h.SearchLibrary(strings.Join(rest, " "))
		if err != nil {
			return err
		}
		return printJSON(res)

	case "export":
		doc, err := h.ExportState()
		if err != nil {
			return err
		}
		return printJSON(doc)

	case "import":
		if len(rest) != 1 {
			return errors.New("usage: tubedeck import <file | ->")
		}
		raw, err := readImportPayload(rest[0])
		if err != nil {
			return err
		}
		res, err := h.ImportState(raw)
		if err != nil {
			return err
		}
		return printJSON(res)

	case "sweep":
		interval := time.Duration(cfg.Cache.SweepIntervalHours) * time.Hour
		sweeper := cache.NewSweeper(kv, cache.Namespaces(), interval, logger)
		sweeper.Sweep()
		return nil

	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func readImportPayload(path string) (json.RawMessage, error) {
	if path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	return raw, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// unavailableDetails stands in when no Data API key is configured. The
// duration-filtered paths fail per channel and are skipped; everything else
// works without a key.
type unavailableDetails struct{}

func (unavailableDetails) Durations(ctx context.Context, videoIDs []string) (map[string]time.Duration, error) {
	return nil, errors.New("youtube api key not configured")
}
