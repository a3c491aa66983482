package repositories

import (
	log "github.com/sirupsen/logrus"
	"os"
	"path/filepath"
	"testing"
)

var dbCtx *DbContext

func clearDb() {
	dbCtx.DB.Exec("DELETE from conversation_records WHERE TRUE")
	dbCtx.DB.Exec("DELETE from arbitrary_data WHERE TRUE")
}

func TestMain(m *testing.M) {

	dir, err := os.MkdirTemp("", "relay-repositories")
	if err != nil {
		log.Fatal(err)
	}

	dbCtx, err = NewDbContext(filepath.Join(dir, "test.db"))
	if err != nil {
		log.Fatalf("could not create db context: %s", err)
	}

	if err = dbCtx.Migrate(); err != nil {
		log.Fatalf("could not migrate db: %s", err)
	}

	code := m.Run()

	_ = dbCtx.Close()
	_ = os.RemoveAll(dir)

	os.Exit(code)
}
