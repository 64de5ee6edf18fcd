// Package repotest opens throwaway SQLite stores for tests.
package repotest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/account_service/internal/db"
	"github.com/Skotchmaster/account_service/internal/repo"
)

var seq atomic.Int64

// InitTestDB opens a private in-memory database with foreign keys on and
// the schema migrated. It is closed when the test ends.
func InitTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	url := fmt.Sprintf("sqlite://file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, seq.Add(1))

	gdb, err := db.Open(context.Background(), url)
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })

	if err := repo.New(gdb).Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return gdb
}
