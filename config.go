package l10n

import "fmt"

// registryConfig captures registry setup
type registryConfig struct {
	logger      Logger
	hooks       []ResolutionHook
	concurrency int
	memoizers   *MemoizerRegistry
	parser      BundleParser
}

// RegistryOption mutates the registry configuration during construction
type RegistryOption func(*registryConfig) error

func newRegistryConfig(opts ...RegistryOption) (*registryConfig, error) {
	cfg := &registryConfig{}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.logger == nil {
		cfg.logger = NoOpLogger()
	}

	if cfg.memoizers == nil {
		cfg.memoizers = NewMemoizerRegistry()
	}

	if cfg.parser == nil {
		cfg.parser = NewMessageFileParser()
	}

	cfg.hooks = filterHooks(cfg.hooks)

	return cfg, nil
}

func WithLogger(logger Logger) RegistryOption {
	return func(c *registryConfig) error {
		c.logger = logger
		return nil
	}
}

// WithLoggerProvider takes the "l10n" logger from provider
func WithLoggerProvider(provider LoggerProvider) RegistryOption {
	return func(c *registryConfig) error {
		if provider == nil {
			return nil
		}
		c.logger = provider.GetLogger("l10n")
		return nil
	}
}

func WithResolutionHooks(hooks ...ResolutionHook) RegistryOption {
	return func(c *registryConfig) error {
		c.hooks = append(c.hooks, hooks...)
		return nil
	}
}

// WithFetchConcurrency bounds how many resources of one locale are fetched
// at once by asynchronous generation. Zero means unbounded.
func WithFetchConcurrency(n int) RegistryOption {
	return func(c *registryConfig) error {
		if n < 0 {
			return fmt.Errorf("l10n: fetch concurrency must not be negative, got %d", n)
		}
		c.concurrency = n
		return nil
	}
}

// WithMemoizers shares language memoizers with other registries
func WithMemoizers(memoizers *MemoizerRegistry) RegistryOption {
	return func(c *registryConfig) error {
		c.memoizers = memoizers
		return nil
	}
}

func WithBundleParser(parser BundleParser) RegistryOption {
	return func(c *registryConfig) error {
		c.parser = parser
		return nil
	}
}
