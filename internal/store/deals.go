package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/dealdesk/internal/deal"
	"github.com/Simplici0/dealdesk/internal/money"
)

// NewDeal is a calculated deal about to be saved.
type NewDeal struct {
	CustomerName string
	Vehicle      string
	Notes        string
	Inputs       deal.Inputs
	Context      *deal.Vehicle
	Totals       deal.Totals
	Assessment   deal.Assessment
}

// Deal is a saved deal snapshot. Totals and Assessment are stored rounded to
// cents and are never recalculated on read.
type Deal struct {
	ID           int64           `json:"id"`
	Reference    string          `json:"reference"`
	CreatedAt    time.Time       `json:"created_at"`
	CustomerName string          `json:"customer_name"`
	Vehicle      string          `json:"vehicle"`
	Notes        string          `json:"notes"`
	Score        int             `json:"score"`
	Inputs       deal.Inputs     `json:"inputs"`
	Context      *deal.Vehicle   `json:"vehicle_context,omitempty"`
	Totals       deal.Totals     `json:"totals"`
	Assessment   deal.Assessment `json:"assessment"`
}

// DealSummary is one row of the deal list.
type DealSummary struct {
	ID             int64     `json:"id"`
	Reference      string    `json:"reference"`
	CreatedAt      time.Time `json:"created_at"`
	CustomerName   string    `json:"customer_name"`
	Vehicle        string    `json:"vehicle"`
	Score          int       `json:"score"`
	TotalDue       float64   `json:"total_due"`
	MonthlyPayment float64   `json:"monthly_payment"`
}

type inputsSnapshot struct {
	Inputs  deal.Inputs   `json:"inputs"`
	Vehicle *deal.Vehicle `json:"vehicle,omitempty"`
}

// GetDefaults returns the worksheet defaults, or deal.StandardDefaults when the
// singleton row has not been seeded.
func (s *Store) GetDefaults(ctx context.Context) (deal.Defaults, error) {
	var d deal.Defaults
	err := s.db.QueryRowContext(ctx, `
		SELECT doc_fee, tax_rate, term_months, apr
		FROM deal_defaults
		WHERE id = 1
	`).Scan(&d.DocFee, &d.TaxRate, &d.TermMonths, &d.APR)
	if errors.Is(err, sql.ErrNoRows) {
		return deal.StandardDefaults(), nil
	}
	if err != nil {
		return deal.Defaults{}, fmt.Errorf("query deal_defaults: %w", err)
	}
	return d, nil
}

// UpdateDefaults overwrites the worksheet defaults.
func (s *Store) UpdateDefaults(ctx context.Context, d deal.Defaults) error {
	if err := s.ensureDefaults(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE deal_defaults
		SET
			doc_fee = ?,
			tax_rate = ?,
			term_months = ?,
			apr = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`, d.DocFee, d.TaxRate, d.TermMonths, d.APR)
	if err != nil {
		return fmt.Errorf("update deal_defaults: %w", err)
	}
	return nil
}

func (s *Store) ensureDefaults(ctx context.Context) error {
	d := deal.StandardDefaults()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deal_defaults (id, doc_fee, tax_rate, term_months, apr)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, d.DocFee, d.TaxRate, d.TermMonths, d.APR)
	if err != nil {
		return fmt.Errorf("insert default deal_defaults: %w", err)
	}
	return nil
}

// Catalog loads active product list prices. Products missing from the table
// keep their deal.StandardCatalog values.
func (s *Store) Catalog(ctx context.Context) (deal.Catalog, error) {
	catalog := deal.StandardCatalog()

	rows, err := s.db.QueryContext(ctx, `
		SELECT code, list_price, profit_rate
		FROM products
		WHERE active = TRUE
	`)
	if err != nil {
		return catalog, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		var listPrice, profitRate float64
		if err := rows.Scan(&code, &listPrice, &profitRate); err != nil {
			return catalog, fmt.Errorf("scan product: %w", err)
		}
		switch code {
		case deal.ProductGAP:
			catalog.GAPListPrice, catalog.GAPProfitRate = listPrice, profitRate
		case deal.ProductWarranty:
			catalog.WarrantyListPrice, catalog.WarrantyProfitRate = listPrice, profitRate
		case deal.ProductProtection:
			catalog.ProtectionListPrice, catalog.ProtectionProfitRate = listPrice, profitRate
		}
	}
	if err := rows.Err(); err != nil {
		return catalog, fmt.Errorf("iterate products: %w", err)
	}

	return catalog, nil
}

// CreateDeal saves a calculated deal, rounding every money figure to cents.
// Deals with a NaN or infinite figure are rejected with ErrNonFinite.
func (s *Store) CreateDeal(ctx context.Context, nd NewDeal) (Deal, error) {
	if !dealFinite(nd) {
		return Deal{}, ErrNonFinite
	}

	totals := roundTotals(nd.Totals)
	assessment := roundAssessment(nd.Assessment)

	inputsJSON, err := json.Marshal(inputsSnapshot{Inputs: nd.Inputs, Vehicle: nd.Context})
	if err != nil {
		return Deal{}, fmt.Errorf("marshal deal inputs: %w", err)
	}
	totalsJSON, err := json.Marshal(totals)
	if err != nil {
		return Deal{}, fmt.Errorf("marshal deal totals: %w", err)
	}
	assessmentJSON, err := json.Marshal(assessment)
	if err != nil {
		return Deal{}, fmt.Errorf("marshal deal assessment: %w", err)
	}

	reference := uuid.NewString()
	createdAt := s.now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO deals (
			reference, created_at, customer_name, vehicle, notes, score, inputs_json, totals_json, assessment_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		reference,
		createdAt.Format("2006-01-02 15:04:05"),
		nd.CustomerName,
		nd.Vehicle,
		nd.Notes,
		assessment.Score,
		string(inputsJSON),
		string(totalsJSON),
		string(assessmentJSON),
	)
	if err != nil {
		return Deal{}, fmt.Errorf("insert deal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Deal{}, fmt.Errorf("read deal id: %w", err)
	}

	return s.GetDeal(ctx, id)
}

// GetDeal reads a saved deal snapshot.
func (s *Store) GetDeal(ctx context.Context, id int64) (Deal, error) {
	var d Deal
	var createdAt, inputsJSON, totalsJSON, assessmentJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT
			id,
			reference,
			created_at,
			COALESCE(customer_name, ''),
			COALESCE(vehicle, ''),
			COALESCE(notes, ''),
			score,
			inputs_json,
			totals_json,
			assessment_json
		FROM deals
		WHERE id = ?
	`, id).Scan(
		&d.ID,
		&d.Reference,
		&createdAt,
		&d.CustomerName,
		&d.Vehicle,
		&d.Notes,
		&d.Score,
		&inputsJSON,
		&totalsJSON,
		&assessmentJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Deal{}, ErrNotFound
	}
	if err != nil {
		return Deal{}, fmt.Errorf("query deal %d: %w", id, err)
	}

	if d.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return Deal{}, fmt.Errorf("parse deal created_at: %w", err)
	}

	var snapshot inputsSnapshot
	if err := json.Unmarshal([]byte(inputsJSON), &snapshot); err != nil {
		return Deal{}, fmt.Errorf("decode deal inputs: %w", err)
	}
	d.Inputs, d.Context = snapshot.Inputs, snapshot.Vehicle

	if err := json.Unmarshal([]byte(totalsJSON), &d.Totals); err != nil {
		return Deal{}, fmt.Errorf("decode deal totals: %w", err)
	}
	if err := json.Unmarshal([]byte(assessmentJSON), &d.Assessment); err != nil {
		return Deal{}, fmt.Errorf("decode deal assessment: %w", err)
	}

	return d, nil
}

// ListDeals returns deals newest first, optionally filtered by a substring of
// the customer name, vehicle or notes.
func (s *Store) ListDeals(ctx context.Context, query string) ([]DealSummary, error) {
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id,
			reference,
			created_at,
			COALESCE(customer_name, ''),
			COALESCE(vehicle, ''),
			score,
			totals_json
		FROM deals
		WHERE (? = '' OR COALESCE(customer_name, '') LIKE ? OR COALESCE(vehicle, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query deals: %w", err)
	}
	defer rows.Close()

	deals := make([]DealSummary, 0)
	for rows.Next() {
		var item DealSummary
		var createdAt, totalsJSON string
		if err := rows.Scan(&item.ID, &item.Reference, &createdAt, &item.CustomerName, &item.Vehicle, &item.Score, &totalsJSON); err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		if item.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("parse deal created_at: %w", err)
		}

		var totals deal.Totals
		if err := json.Unmarshal([]byte(totalsJSON), &totals); err != nil {
			return nil, fmt.Errorf("decode deal %d totals: %w", item.ID, err)
		}
		item.TotalDue = totals.TotalDue
		item.MonthlyPayment = totals.MonthlyPayment
		deals = append(deals, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deals: %w", err)
	}

	return deals, nil
}

func dealFinite(nd NewDeal) bool {
	t, a := nd.Totals, nd.Assessment
	values := []float64{
		t.TotalCashPrice, t.SubtotalPrice, t.NetTradeAllowance, t.TotalCredits, t.TotalFees,
		t.SubtotalTaxable, t.NetTaxableAmount, t.TaxAmount, t.TotalDue, t.BalanceDue,
		t.AmountFinanced, t.FinanceCharge, t.MonthlyPayment, t.TotalOfPayments,
		a.TotalSale, a.AmountFinanced, a.MonthlyPayment, a.SalesTax, a.FinanceCharge, a.LTV,
	}
	if a.FrontEnd != nil {
		values = append(values, *a.FrontEnd)
	}
	if a.TotalProfit != nil {
		values = append(values, *a.TotalProfit)
	}
	for _, sg := range a.Suggestions {
		values = append(values, sg.Profit)
	}
	return finite(values...)
}

func roundTotals(t deal.Totals) deal.Totals {
	return deal.Totals{
		TotalCashPrice:    money.Cents(t.TotalCashPrice),
		SubtotalPrice:     money.Cents(t.SubtotalPrice),
		NetTradeAllowance: money.Cents(t.NetTradeAllowance),
		TotalCredits:      money.Cents(t.TotalCredits),
		TotalFees:         money.Cents(t.TotalFees),
		SubtotalTaxable:   money.Cents(t.SubtotalTaxable),
		NetTaxableAmount:  money.Cents(t.NetTaxableAmount),
		TaxAmount:         money.Cents(t.TaxAmount),
		TotalDue:          money.Cents(t.TotalDue),
		BalanceDue:        money.Cents(t.BalanceDue),
		AmountFinanced:    money.Cents(t.AmountFinanced),
		FinanceCharge:     money.Cents(t.FinanceCharge),
		MonthlyPayment:    money.Cents(t.MonthlyPayment),
		TotalOfPayments:   money.Cents(t.TotalOfPayments),
	}
}

func roundAssessment(a deal.Assessment) deal.Assessment {
	out := a
	out.TotalSale = money.Cents(a.TotalSale)
	out.AmountFinanced = money.Cents(a.AmountFinanced)
	out.MonthlyPayment = money.Cents(a.MonthlyPayment)
	out.SalesTax = money.Cents(a.SalesTax)
	out.FinanceCharge = money.Cents(a.FinanceCharge)
	out.LTV = money.Cents(a.LTV)
	out.FrontEnd = centsPtr(a.FrontEnd)
	out.TotalProfit = centsPtr(a.TotalProfit)

	out.Suggestions = make([]deal.Suggestion, len(a.Suggestions))
	for i, s := range a.Suggestions {
		s.Profit = money.Cents(s.Profit)
		out.Suggestions[i] = s
	}
	if out.Warnings == nil {
		out.Warnings = []deal.Warning{}
	}
	return out
}

func centsPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	rounded := money.Cents(*v)
	return &rounded
}
