package seed

import (
	"database/sql"
	"fmt"

	"github.com/Simplici0/dealdesk/internal/deal"
)

type product struct {
	code       string
	name       string
	listPrice  float64
	profitRate float64
}

func standardProducts() []product {
	c := deal.StandardCatalog()
	return []product{
		{code: deal.ProductGAP, name: "GAP insurance", listPrice: c.GAPListPrice, profitRate: c.GAPProfitRate},
		{code: deal.ProductWarranty, name: "Extended warranty", listPrice: c.WarrantyListPrice, profitRate: c.WarrantyProfitRate},
		{code: deal.ProductProtection, name: "Protection package", listPrice: c.ProtectionListPrice, profitRate: c.ProtectionProfitRate},
	}
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way. Existing rows are never
// overwritten, so edits made through the admin endpoints survive restarts.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureDealDefaults(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	for _, p := range standardProducts() {
		if err := ensureProduct(tx, p, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureDealDefaults(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM deal_defaults WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check deal defaults existence: %w", err)
	}
	if exists {
		return nil
	}

	d := deal.StandardDefaults()
	if _, err := tx.Exec(`
		INSERT INTO deal_defaults (id, doc_fee, tax_rate, term_months, apr)
		VALUES (1, ?, ?, ?, ?)
	`, d.DocFee, d.TaxRate, d.TermMonths, d.APR); err != nil {
		return fmt.Errorf("insert deal defaults singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureProduct(tx *sql.Tx, p product, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM products WHERE code = ? LIMIT 1)`, p.code).Scan(&exists); err != nil {
		return fmt.Errorf("check product %s existence: %w", p.code, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO products (code, name, list_price, profit_rate, active)
		VALUES (?, ?, ?, ?, ?)
	`, p.code, p.name, p.listPrice, p.profitRate, true); err != nil {
		return fmt.Errorf("insert product %s: %w", p.code, err)
	}
	stats.Inserts++
	return nil
}
