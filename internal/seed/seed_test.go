package seed

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Simplici0/dealdesk/internal/db"
	"github.com/Simplici0/dealdesk/internal/deal"
	"github.com/Simplici0/dealdesk/internal/migrations"
)

func openSeedDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()
	database := openSeedDB(t)

	for i := 0; i < 10; i++ {
		stats, err := Run(database)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 4 {
				t.Fatalf("expected 4 inserts in first run, got %d", stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM deal_defaults WHERE id = 1`, nil, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM products`, nil, 3)
	assertCount(t, database, `SELECT COUNT(*) FROM products WHERE code = ? AND active = TRUE`, deal.ProductGAP, 1)

	var docFee float64
	if err := database.QueryRow(`SELECT doc_fee FROM deal_defaults WHERE id = 1`).Scan(&docFee); err != nil {
		t.Fatalf("query doc fee: %v", err)
	}
	if docFee != deal.DefaultDocFee {
		t.Fatalf("doc fee = %v, want %v", docFee, deal.DefaultDocFee)
	}
}

func TestRunKeepsEditedRows(t *testing.T) {
	t.Parallel()
	database := openSeedDB(t)

	if _, err := Run(database); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if _, err := database.Exec(`UPDATE products SET list_price = 1200 WHERE code = ?`, deal.ProductGAP); err != nil {
		t.Fatalf("edit product: %v", err)
	}
	if _, err := Run(database); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var price float64
	if err := database.QueryRow(`SELECT list_price FROM products WHERE code = ?`, deal.ProductGAP).Scan(&price); err != nil {
		t.Fatalf("query product price: %v", err)
	}
	if price != 1200 {
		t.Fatalf("list price = %v, want 1200", price)
	}
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
