package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cppla/intranet/config"
	"github.com/cppla/intranet/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.InitDatabase(config.AppConfig{DatabaseURL: "sqlite://:memory:", LogLevel: "silent"}, nil, models.All()...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func strPtr(s string) *string { return &s }

func requireNotFound(t *testing.T, err error, entity string) {
	t.Helper()
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, entity, nf.Entity)
}

func requireInvalid(t *testing.T, err error, fields ...string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	got := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		got = append(got, f.Field)
	}
	require.ElementsMatch(t, fields, got)
}
