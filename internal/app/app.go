// Package app wires the apidrift components together for the CLI
package app

import (
	"io"

	"github.com/yairfalse/apidrift/internal/api"
	"github.com/yairfalse/apidrift/internal/browser"
	"github.com/yairfalse/apidrift/internal/cache"
	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/internal/impact"
	"github.com/yairfalse/apidrift/internal/importer"
	"github.com/yairfalse/apidrift/internal/logger"
	"github.com/yairfalse/apidrift/internal/output"
	"github.com/yairfalse/apidrift/internal/session"
	"github.com/yairfalse/apidrift/internal/snapshots"
	"github.com/yairfalse/apidrift/internal/storage"
	"github.com/yairfalse/apidrift/pkg/config"
	"github.com/yairfalse/apidrift/pkg/types"
)

type App struct {
	config   *config.Config
	logger   logger.Logger
	tokens   storage.TokenStore
	session  *session.Session
	cache    *cache.LRU
	client   *api.Client
	importer *importer.Importer
}

func (a *App) Config() *config.Config { return a.config }
func (a *App) Logger() logger.Logger { return a.logger }
func (a *App) Session() *session.Session { return a.session }
func (a *App) Client() *api.Client { return a.client }
func (a *App) Importer() *importer.Importer { return a.importer }

// RequireSession fails unless a token is held
func (a *App) RequireSession() error {
	if a.session.IsAuthenticated() {
		return nil
	}
	return errors.New(errors.ErrorTypeAuthentication, "You are not logged in").
		WithHelp("apidrift auth login")
}

// Printer creates a printer honoring the output settings
func (a *App) Printer(w io.Writer) (*output.Printer, error) {
	format, err := output.ParseFormat(a.config.Output.Format)
	if err != nil {
		return nil, errors.ConfigurationError(err.Error(), err)
	}
	return output.NewPrinter(w, output.Config{
		Format:          format,
		Pretty:          a.config.Output.Pretty,
		NoColor:         a.config.Output.NoColor,
		SnapshotColumns: a.config.Snapshots.Columns,
	}), nil
}

// Browser creates a diff browser over the API client
func (a *App) Browser(copier browser.Copier) *browser.Browser {
	d := a.config.Diff
	return browser.New(a.client, browser.Options{
		PageSize: d.PageSize,
		Display: browser.DisplayOptions{
			LargeValueThreshold: d.LargeValueThreshold,
			PreviewChars:        d.PreviewChars,
		},
		SearchDebounce: d.SearchDebounce,
		Copier:         copier,
	}, a.logger)
}

// Pager creates a snapshot pager for one collection
func (a *App) Pager(collectionID, collectionName string) *snapshots.Pager {
	return snapshots.New(a.client, collectionID, collectionName, a.config.Snapshots.PageSize, a.logger)
}

// ImpactView wraps an analysis with the configured risk thresholds
func (a *App) ImpactView(resp *types.ImpactAnalysisResponse) *impact.View {
	return impact.NewView(resp, impact.Thresholds{
		Medium: a.config.Impact.MediumThreshold,
		High:   a.config.Impact.HighThreshold,
	})
}

// CacheStats reports response cache metrics
func (a *App) CacheStats() cache.Stats {
	return a.client.CacheStats()
}
