package app

import (
	"io"
	"net/http"

	"github.com/yairfalse/apidrift/internal/api"
	"github.com/yairfalse/apidrift/internal/cache"
	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/internal/importer"
	"github.com/yairfalse/apidrift/internal/logger"
	"github.com/yairfalse/apidrift/internal/session"
	"github.com/yairfalse/apidrift/internal/storage"
	"github.com/yairfalse/apidrift/pkg/config"
)

// Options overrides parts of the wiring, mostly for tests
type Options struct {
	Version    string
	LogOutput  io.Writer
	TokenStore storage.TokenStore
	HTTPClient *http.Client
}

type AppFactory struct{}

func NewAppFactory() *AppFactory {
	return &AppFactory{}
}

// Create wires every component from cfg. The session is hydrated from the
// token store before Create returns.
func (f *AppFactory) Create(cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigurationError("Invalid configuration", err).
			WithSolutions("Check ~/.apidrift/config.yaml and APIDRIFT_* environment variables")
	}

	log, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
		Output: opts.LogOutput,
	})
	if err != nil {
		return nil, errors.ConfigurationError("Invalid logging configuration", err)
	}

	tokens := opts.TokenStore
	if tokens == nil {
		tokens = storage.NewFileTokenStore(cfg.Session.TokenFile)
	}

	sess := session.New(tokens, nil, log)
	if err := sess.Hydrate(); err != nil {
		log.Error("failed to read persisted token", err)
	}

	responses := cache.NewLRU(cache.Config{MaxItems: cfg.API.CacheSize, TTL: cfg.API.CacheTTL})

	userAgent := "apidrift"
	if opts.Version != "" {
		userAgent += "/" + opts.Version
	}

	clientOpts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithTokenSource(sess),
		api.WithUnauthorizedHandler(sess.HandleUnauthorized),
		api.WithRateLimit(cfg.API.RequestsPerSecond, cfg.API.Burst),
		api.WithCache(responses),
		api.WithLogger(log.WithField("component", "api")),
		api.WithUserAgent(userAgent),
		api.WithRetryAfterDefault(cfg.API.RetryAfterDefault),
	}
	if opts.HTTPClient != nil {
		clientOpts = append([]api.Option{api.WithHTTPClient(opts.HTTPClient)}, clientOpts...)
	}

	client, err := api.New(cfg.API.BaseURL, clientOpts...)
	if err != nil {
		return nil, err
	}
	sess.SetAuthenticator(client)

	return &App{
		config:   cfg,
		logger:   log,
		tokens:   tokens,
		session:  sess,
		cache:    responses,
		client:   client,
		importer: importer.New(client, importer.NewRegistry(), log),
	}, nil
}
