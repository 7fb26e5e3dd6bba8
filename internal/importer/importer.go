// Package importer brings external collections under management, either
// from an exported file or through a third-party API key.
package importer

import (
	"context"
	"os"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/internal/logger"
	"github.com/yairfalse/apidrift/pkg/types"
)

// Backend is what the importer needs from the API client
type Backend interface {
	SaveCollection(ctx context.Context, req types.SaveCollectionRequest) (*types.Collection, error)
	ListRemoteCollections(ctx context.Context) ([]types.RemoteCollection, error)
}

// BatchResult tallies a multi-collection import
type BatchResult struct {
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Total returns the number of attempted imports
func (b BatchResult) Total() int {
	return b.Succeeded + b.Failed
}

// Importer submits collections to the backend and records them locally
type Importer struct {
	backend  Backend
	registry *Registry
	log      logger.Logger

	// OnImported is called after each successful import
	OnImported func(types.Collection)

	// OnAttempt is called once per distinct selection of a remote batch,
	// with the error of that import or nil
	OnAttempt func(id string, err error)
}

// New creates an importer writing into registry
func New(backend Backend, registry *Registry, log logger.Logger) *Importer {
	if registry == nil {
		registry = NewRegistry()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Importer{
		backend:  backend,
		registry: registry,
		log:      log.WithField("component", "importer"),
	}
}

// Registry returns the local collection list
func (i *Importer) Registry() *Registry {
	return i.registry
}

// ImportFile imports the collection document at path
func (i *Importer) ImportFile(ctx context.Context, path string) (*types.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FileSystemError(path, err)
	}
	return i.ImportDocument(ctx, data)
}

// ImportDocument validates a collection document and saves it
func (i *Importer) ImportDocument(ctx context.Context, data []byte) (*types.Collection, error) {
	req, err := ParseCollectionFile(data)
	if err != nil {
		return nil, err
	}
	return i.save(ctx, req)
}

// ListRemote lists the collections visible under the active API key
func (i *Importer) ListRemote(ctx context.Context) ([]types.RemoteCollection, error) {
	return i.backend.ListRemoteCollections(ctx)
}

// ImportRemote submits the selected remote collections one at a time. A
// failure is counted and the batch carries on.
func (i *Importer) ImportRemote(ctx context.Context, available []types.RemoteCollection, selected []string) BatchResult {
	byID := make(map[string]types.RemoteCollection, len(available))
	for _, rc := range available {
		byID[rc.ID] = rc
	}

	var result BatchResult
	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		if seen[id] {
			continue
		}
		seen[id] = true

		rc, ok := byID[id]
		if !ok {
			i.log.WithField("collection_id", id).Warn("selected collection is not available under this key")
			result.Failed++
			i.attempted(id, errors.ValidationError("Collection "+id+" is not available under the active API key"))
			continue
		}

		if _, err := i.save(ctx, types.SaveCollectionRequest{CollectionID: rc.ID, Name: rc.Name}); err != nil {
			i.log.WithField("collection_id", id).Error("import failed", err)
			result.Failed++
			i.attempted(id, err)
			continue
		}
		result.Succeeded++
		i.attempted(id, nil)
	}

	i.log.WithFields(map[string]interface{}{
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Info("batch import finished")
	return result
}

func (i *Importer) attempted(id string, err error) {
	if i.OnAttempt != nil {
		i.OnAttempt(id, err)
	}
}

func (i *Importer) save(ctx context.Context, req types.SaveCollectionRequest) (*types.Collection, error) {
	saved, err := i.backend.SaveCollection(ctx, req)
	if err != nil {
		return nil, err
	}
	if saved.ID == "" {
		saved.ID = req.CollectionID
	}
	if saved.Name == "" {
		saved.Name = req.Name
	}

	if i.registry.Upsert(*saved) {
		i.log.WithField("collection_id", saved.ID).Info("collection imported")
	} else {
		i.log.WithField("collection_id", saved.ID).Info("collection re-imported")
	}

	stored, _ := i.registry.Get(saved.ID)
	if i.OnImported != nil {
		i.OnImported(stored)
	}
	return &stored, nil
}
