package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/dealdesk/internal/commission"
	"github.com/Simplici0/dealdesk/internal/money"
)

const dateLayout = "2006-01-02"

// PayoutRecord is a persisted payout statement.
type PayoutRecord struct {
	ID string `json:"id"`
	commission.Payout
	ComputedAt time.Time `json:"computed_at"`
}

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateRep saves a new rep and returns it with its assigned ID.
func (s *Store) CreateRep(ctx context.Context, rep commission.Rep) (commission.Rep, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sales_reps (
			name, upfront_commission, residual_rate, bonus_threshold, bonus_amount, clawback_days, start_date, end_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rep.Name,
		rep.UpfrontCommission,
		rep.ResidualRate,
		rep.BonusThreshold,
		rep.BonusAmount,
		rep.ClawbackDays,
		nullTimestamp(rep.StartDate, dateLayout),
		nullTimestamp(rep.EndDate, dateLayout),
	)
	if err != nil {
		return commission.Rep{}, fmt.Errorf("insert sales_rep: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return commission.Rep{}, fmt.Errorf("read sales_rep id: %w", err)
	}
	return s.GetRep(ctx, id)
}

// GetRep reads one rep.
func (s *Store) GetRep(ctx context.Context, id int64) (commission.Rep, error) {
	return getRep(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRep(ctx context.Context, q queryRower, id int64) (commission.Rep, error) {
	var rep commission.Rep
	var start, end sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT id, name, upfront_commission, residual_rate, bonus_threshold, bonus_amount, clawback_days, start_date, end_date
		FROM sales_reps
		WHERE id = ?
	`, id).Scan(
		&rep.ID,
		&rep.Name,
		&rep.UpfrontCommission,
		&rep.ResidualRate,
		&rep.BonusThreshold,
		&rep.BonusAmount,
		&rep.ClawbackDays,
		&start,
		&end,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return commission.Rep{}, ErrNotFound
	}
	if err != nil {
		return commission.Rep{}, fmt.Errorf("query sales_rep %d: %w", id, err)
	}

	if rep.StartDate, err = parseNullTimestamp(start); err != nil {
		return commission.Rep{}, fmt.Errorf("parse start_date: %w", err)
	}
	if rep.EndDate, err = parseNullTimestamp(end); err != nil {
		return commission.Rep{}, fmt.Errorf("parse end_date: %w", err)
	}
	return rep, nil
}

// CreateSignup saves a signup under a fresh ID. The rep must exist.
func (s *Store) CreateSignup(ctx context.Context, signup commission.Signup) (commission.Signup, error) {
	if _, err := s.GetRep(ctx, signup.RepID); err != nil {
		return commission.Signup{}, err
	}

	signup.ID = uuid.NewString()
	if signup.Status == "" {
		signup.Status = commission.StatusActive
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rep_signups (
			id, rep_id, customer_name, signup_date, status, monthly_rate, cancel_date, clawback_applied
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		signup.ID,
		signup.RepID,
		signup.CustomerName,
		signup.SignupDate.UTC().Format(dateLayout),
		signup.Status,
		signup.MonthlyRate,
		nullTimestamp(signup.CancelDate, time.RFC3339),
		signup.ClawbackApplied,
	)
	if err != nil {
		return commission.Signup{}, fmt.Errorf("insert rep_signup: %w", err)
	}
	return signup, nil
}

const signupColumns = `id, rep_id, COALESCE(customer_name, ''), signup_date, status, monthly_rate, cancel_date, clawback_applied`

func scanSignup(row rowScanner) (commission.Signup, error) {
	var signup commission.Signup
	var signupDate string
	var cancelDate sql.NullString
	if err := row.Scan(
		&signup.ID,
		&signup.RepID,
		&signup.CustomerName,
		&signupDate,
		&signup.Status,
		&signup.MonthlyRate,
		&cancelDate,
		&signup.ClawbackApplied,
	); err != nil {
		return commission.Signup{}, err
	}

	var err error
	if signup.SignupDate, err = parseTimestamp(signupDate); err != nil {
		return commission.Signup{}, fmt.Errorf("parse signup_date: %w", err)
	}
	if signup.CancelDate, err = parseNullTimestamp(cancelDate); err != nil {
		return commission.Signup{}, fmt.Errorf("parse cancel_date: %w", err)
	}
	return signup, nil
}

// ListSignups returns a rep's signups oldest first.
func (s *Store) ListSignups(ctx context.Context, repID int64) ([]commission.Signup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+signupColumns+`
		FROM rep_signups
		WHERE rep_id = ?
		ORDER BY signup_date ASC, created_at ASC, id ASC
	`, repID)
	if err != nil {
		return nil, fmt.Errorf("query rep_signups: %w", err)
	}
	defer rows.Close()

	signups := make([]commission.Signup, 0)
	for rows.Next() {
		signup, err := scanSignup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rep_signup: %w", err)
		}
		signups = append(signups, signup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rep_signups: %w", err)
	}
	return signups, nil
}

// CancelSignup cancels an active signup at the store's current time. The
// update only applies while the row is still active, so a second cancel
// returns ErrSignupNotActive and never re-applies a clawback.
func (s *Store) CancelSignup(ctx context.Context, signupID string) (commission.Signup, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return commission.Signup{}, fmt.Errorf("begin cancel tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := scanSignup(tx.QueryRowContext(ctx, `
		SELECT `+signupColumns+`
		FROM rep_signups
		WHERE id = ?
	`, signupID))
	if errors.Is(err, sql.ErrNoRows) {
		return commission.Signup{}, ErrNotFound
	}
	if err != nil {
		return commission.Signup{}, fmt.Errorf("query rep_signup %s: %w", signupID, err)
	}

	rep, err := getRep(ctx, tx, current.RepID)
	if err != nil {
		return commission.Signup{}, err
	}

	cancelled, ok := commission.Cancel(current, rep, s.now())
	if !ok {
		return current, ErrSignupNotActive
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE rep_signups
		SET status = ?, cancel_date = ?, clawback_applied = ?
		WHERE id = ? AND status = ?
	`,
		cancelled.Status,
		nullTimestamp(cancelled.CancelDate, time.RFC3339),
		cancelled.ClawbackApplied,
		signupID,
		commission.StatusActive,
	)
	if err != nil {
		return commission.Signup{}, fmt.Errorf("update rep_signup %s: %w", signupID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return commission.Signup{}, fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return current, ErrSignupNotActive
	}

	if err := tx.Commit(); err != nil {
		return commission.Signup{}, fmt.Errorf("commit cancel tx: %w", err)
	}
	return cancelled, nil
}

// SavePayout stores p, replacing any earlier statement for the same rep and
// period. Money figures are rounded to cents.
func (s *Store) SavePayout(ctx context.Context, p commission.Payout) (PayoutRecord, error) {
	if !finite(p.UpfrontTotal, p.ResidualTotal, p.BonusTotal, p.ClawbackTotal, p.GrossPayout, p.NetPayout) {
		return PayoutRecord{}, ErrNonFinite
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rep_payouts (
			id, rep_id, payout_period,
			upfront_total, upfront_count, residual_total, residual_accounts,
			bonus_total, clawback_total, clawback_count, gross_payout, net_payout, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(rep_id, payout_period) DO UPDATE SET
			upfront_total = excluded.upfront_total,
			upfront_count = excluded.upfront_count,
			residual_total = excluded.residual_total,
			residual_accounts = excluded.residual_accounts,
			bonus_total = excluded.bonus_total,
			clawback_total = excluded.clawback_total,
			clawback_count = excluded.clawback_count,
			gross_payout = excluded.gross_payout,
			net_payout = excluded.net_payout,
			computed_at = excluded.computed_at
	`,
		uuid.NewString(),
		p.RepID,
		p.PayoutPeriod,
		money.Cents(p.UpfrontTotal),
		p.UpfrontCount,
		money.Cents(p.ResidualTotal),
		p.ResidualAccounts,
		money.Cents(p.BonusTotal),
		money.Cents(p.ClawbackTotal),
		p.ClawbackCount,
		money.Cents(p.GrossPayout),
		money.Cents(p.NetPayout),
		s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return PayoutRecord{}, fmt.Errorf("upsert rep_payout: %w", err)
	}

	return scanPayout(s.db.QueryRowContext(ctx, `
		SELECT `+payoutColumns+`
		FROM rep_payouts
		WHERE rep_id = ? AND payout_period = ?
	`, p.RepID, p.PayoutPeriod))
}

const payoutColumns = `id, rep_id, payout_period, upfront_total, upfront_count, residual_total, residual_accounts,
	bonus_total, clawback_total, clawback_count, gross_payout, net_payout, computed_at`

func scanPayout(row rowScanner) (PayoutRecord, error) {
	var rec PayoutRecord
	var computedAt string
	if err := row.Scan(
		&rec.ID,
		&rec.RepID,
		&rec.PayoutPeriod,
		&rec.UpfrontTotal,
		&rec.UpfrontCount,
		&rec.ResidualTotal,
		&rec.ResidualAccounts,
		&rec.BonusTotal,
		&rec.ClawbackTotal,
		&rec.ClawbackCount,
		&rec.GrossPayout,
		&rec.NetPayout,
		&computedAt,
	); err != nil {
		return PayoutRecord{}, fmt.Errorf("scan rep_payout: %w", err)
	}

	var err error
	if rec.ComputedAt, err = parseTimestamp(computedAt); err != nil {
		return PayoutRecord{}, fmt.Errorf("parse computed_at: %w", err)
	}
	return rec, nil
}

// ListPayouts returns a rep's saved statements, latest period first.
func (s *Store) ListPayouts(ctx context.Context, repID int64) ([]PayoutRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+payoutColumns+`
		FROM rep_payouts
		WHERE rep_id = ?
		ORDER BY payout_period DESC
	`, repID)
	if err != nil {
		return nil, fmt.Errorf("query rep_payouts: %w", err)
	}
	defer rows.Close()

	payouts := make([]PayoutRecord, 0)
	for rows.Next() {
		rec, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rep_payouts: %w", err)
	}
	return payouts, nil
}
