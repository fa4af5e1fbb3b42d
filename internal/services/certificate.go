package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"survey/internal/datastore"
	"survey/internal/interfaces"
	"survey/internal/models"
	"survey/internal/pkg/logging"
	"survey/internal/pkg/storage"

	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceCertificate struct {
	container          *do.Injector
	readonlyPostgresDB *bun.DB
	store              interfaces.FileStore
}

func NewServiceCertificate(container *do.Injector) (*ServiceCertificate, error) {
	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	store, err := do.Invoke[interfaces.FileStore](container)
	if err != nil {
		return nil, err
	}

	return &ServiceCertificate{container, readonlyPostgresDB, store}, nil
}

// OpenCertificate returns the certificate row and a reader over its stored file.
// The caller closes the reader.
func (service *ServiceCertificate) OpenCertificate(ctx context.Context, certificateID int64) (*models.Certificate, io.ReadCloser, error) {
	certificate, err := datastore.GetCertificate(ctx, service.readonlyPostgresDB, certificateID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, goerr.Wrap(ErrCertificateNotFound, "no certificate row", goerr.V("certificate_id", certificateID))
	}
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load certificate", goerr.V("certificate_id", certificateID))
	}

	r, err := service.store.Open(ctx, certificate.Filepath)
	if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidKey) {
		return nil, nil, goerr.Wrap(ErrCertificateNotFound, "certificate file is missing",
			goerr.V("certificate_id", certificateID), goerr.V("key", certificate.Filepath))
	}
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to open certificate file", goerr.V("certificate_id", certificateID))
	}

	return certificate, r, nil
}

// CleanupOrphans removes stored objects older than minAge that no certificate
// references. It returns the number of removed objects.
func (service *ServiceCertificate) CleanupOrphans(ctx context.Context, now time.Time, minAge time.Duration) (int, error) {
	objects, err := service.store.List(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list stored objects")
	}

	candidates := make([]string, 0, len(objects))
	for _, o := range objects {
		if now.Sub(o.ModTime) >= minAge {
			candidates = append(candidates, o.Key)
		}
	}

	removed := 0
	for start := 0; start < len(candidates); start += cleanupBatchSize {
		end := min(start+cleanupBatchSize, len(candidates))
		batch := candidates[start:end]

		referenced, err := datastore.GetReferencedFilepaths(ctx, service.readonlyPostgresDB, batch)
		if err != nil {
			return removed, goerr.Wrap(err, "failed to check certificate references")
		}

		for _, key := range batch {
			if referenced[key] {
				continue
			}
			if err := service.store.Delete(ctx, key); err != nil {
				logging.From(ctx).Error("failed to remove orphan upload", "key", key, "error", err)
				continue
			}
			removed++
		}
	}

	return removed, nil
}

const cleanupBatchSize = 500
