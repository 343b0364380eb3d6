package storetest_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"bookstore-api/internal/infrastructure/boltdb"
	"bookstore-api/internal/infrastructure/storetest"
)

func TestBoltConformance(t *testing.T) {
	db, err := boltdb.Open(boltdb.Config{Path: filepath.Join(t.TempDir(), "conformance.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	storetest.RunConformance(t, func(t *testing.T) storetest.Stores {
		require.NoError(t, db.Reset())
		return storetest.BoltStores(db.DB)
	})
}
