package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	l10n "github.com/goliatone/go-l10n"
)

type resolveConfig struct {
	manifest  string
	root      string
	baseURL   string
	locales   []string
	resources []string
	messages  []string
	async     bool
	timeout   time.Duration
	logLevel  string
	logFormat string
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		reportError(err)
	}

	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		reportError(err)
	}
}

func reportError(err error) {
	fmt.Fprintf(os.Stderr, "l10n-resolve: %v\n", err)
	os.Exit(1)
}

func parseFlags(args []string) (resolveConfig, error) {
	var cfg resolveConfig

	flags := pflag.NewFlagSet("l10n-resolve", pflag.ContinueOnError)
	flags.StringVarP(&cfg.manifest, "manifest", "m", "l10n.yaml", "manifest declaring the file sources (yaml or toml)")
	flags.StringVar(&cfg.root, "root", "", "directory source paths are read from (defaults to the manifest directory)")
	flags.StringVar(&cfg.baseURL, "base-url", "", "fetch resources over HTTP from this base URL instead of disk")
	flags.StringSliceVarP(&cfg.locales, "locale", "l", nil, "requested locales in preference order; negotiated against the manifest sources")
	flags.StringSliceVarP(&cfg.resources, "resource", "r", nil, "resource id to resolve, suffix with ? to mark it optional")
	flags.StringSliceVar(&cfg.messages, "message", nil, "message ids to format with the resolved bundles")
	flags.BoolVar(&cfg.async, "async", false, "resolve with the concurrent stream instead of the blocking iterator")
	flags.DurationVar(&cfg.timeout, "timeout", 10*time.Second, "overall resolution timeout for --async and HTTP fetches")
	flags.StringVar(&cfg.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&cfg.logFormat, "log-format", "console", "log format (json, console, pretty)")

	if err := flags.Parse(args); err != nil {
		return resolveConfig{}, err
	}

	if len(cfg.resources) == 0 {
		return resolveConfig{}, errors.New("at least one --resource value is required")
	}
	if cfg.root == "" {
		cfg.root = filepath.Dir(cfg.manifest)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg resolveConfig, out io.Writer) error {
	manifest, err := l10n.LoadManifest(cfg.manifest)
	if err != nil {
		return err
	}

	provider, err := l10n.NewGoLoggerProvider(l10n.LoggerConfig{Level: cfg.logLevel, Format: cfg.logFormat})
	if err != nil {
		return err
	}

	registry, err := manifest.BuildRegistry(fetcherFor(cfg), l10n.WithLoggerProvider(provider))
	if err != nil {
		return err
	}

	locales := manifest.RequestedLocales()
	if len(cfg.locales) > 0 {
		locales = l10n.NegotiateLocales(cfg.locales, registry.AvailableLocales(), manifest.DefaultLocale)
	}

	ids := make([]l10n.ResourceID, 0, len(cfg.resources))
	for _, raw := range cfg.resources {
		ids = append(ids, l10n.ParseResourceID(raw))
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	results, err := resolve(ctx, registry, locales, ids, cfg.async)
	if err != nil {
		return err
	}
	for _, result := range results {
		printResult(out, result)
	}

	if len(cfg.messages) == 0 {
		return nil
	}

	loc := l10n.NewLocalization(registry, locales, ids)
	keys := make([]l10n.L10nKey, 0, len(cfg.messages))
	for _, id := range cfg.messages {
		keys = append(keys, l10n.L10nKey{ID: id})
	}

	var values []string
	if cfg.async {
		values, err = loc.FormatValues(ctx, keys)
	} else {
		values, err = loc.FormatValuesSync(keys)
	}
	if values == nil && err != nil {
		return err
	}
	for i, key := range keys {
		fmt.Fprintf(out, "%s = %s\n", key.ID, values[i])
	}
	for _, msgErr := range l10n.MessageErrors(err) {
		fmt.Fprintf(out, "  ! %v\n", msgErr)
	}
	return nil
}

func fetcherFor(cfg resolveConfig) func(l10n.SourceDefinition) l10n.FileFetcher {
	if cfg.baseURL != "" {
		fetcher := l10n.NewHTTPFetcher(cfg.baseURL, l10n.WithHTTPTimeout(cfg.timeout))
		return func(l10n.SourceDefinition) l10n.FileFetcher { return fetcher }
	}
	fetcher := l10n.NewDirFetcher(cfg.root)
	return func(l10n.SourceDefinition) l10n.FileFetcher { return fetcher }
}

func resolve(ctx context.Context, registry *l10n.Registry, locales []string, ids []l10n.ResourceID, async bool) ([]l10n.BundleResult, error) {
	var results []l10n.BundleResult
	if !async {
		it := registry.GenerateBundlesSync(locales, ids)
		for {
			result, ok := it.Next()
			if !ok {
				return results, nil
			}
			results = append(results, result)
		}
	}

	stream := registry.GenerateBundles(locales, ids)
	for {
		result, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			return results, nil
		}
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
}

func printResult(out io.Writer, result l10n.BundleResult) {
	if result.Ready() {
		fmt.Fprintf(out, "[%s] ready sources=%s messages=%d\n",
			result.Locale, strings.Join(result.Bundle.Sources(), ","), len(result.Bundle.MessageIDs()))
		for _, id := range result.Bundle.Missing() {
			fmt.Fprintf(out, "  - optional %s missing\n", id.Value)
		}
		return
	}

	fmt.Fprintf(out, "[%s] failed\n", result.Locale)
	var resErr *l10n.ResolutionError
	if errors.As(result.Err, &resErr) {
		for _, loadErr := range resErr.Errors {
			fmt.Fprintf(out, "  ! %s: %v\n", loadErr.Kind, loadErr)
		}
		return
	}
	fmt.Fprintf(out, "  ! %v\n", result.Err)
}
