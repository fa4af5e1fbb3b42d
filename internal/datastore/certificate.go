package datastore

import (
	"context"

	"survey/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableCertificate(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Certificate)(nil)).IfNotExists().
		ForeignKey(`("response_id") REFERENCES "responses" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Certificate)(nil)).Index("index_certificates_response_id").IfNotExists().Column("response_id").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertCertificates(ctx context.Context, db bun.IDB, certificates []*models.Certificate) error {
	if len(certificates) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(&certificates).Returning("id").Exec(ctx)
	return err
}

func GetCertificate(ctx context.Context, db bun.IDB, certificateID int64) (*models.Certificate, error) {
	var certificate models.Certificate
	err := db.NewSelect().Model(&certificate).Where("id = ?", certificateID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &certificate, nil
}

// GetReferencedFilepaths returns which of the given storage keys still belong to a certificate.
func GetReferencedFilepaths(ctx context.Context, db bun.IDB, paths []string) (map[string]bool, error) {
	referenced := make(map[string]bool, len(paths))
	if len(paths) == 0 {
		return referenced, nil
	}

	var found []string
	err := db.NewSelect().
		Model((*models.Certificate)(nil)).
		Column("filepath").
		Where("filepath IN (?)", bun.In(paths)).
		Scan(ctx, &found)
	if err != nil {
		return nil, err
	}

	for _, p := range found {
		referenced[p] = true
	}
	return referenced, nil
}
