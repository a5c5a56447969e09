package main

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/dealdesk/internal/deal"
	"github.com/Simplici0/dealdesk/internal/metrics"
	"github.com/Simplici0/dealdesk/internal/money"
	"github.com/Simplici0/dealdesk/internal/num"
	"github.com/Simplici0/dealdesk/internal/store"
)

type dealCalcResponse struct {
	Inputs     deal.Inputs     `json:"inputs"`
	Totals     deal.Totals     `json:"totals"`
	Assessment deal.Assessment `json:"assessment"`
}

type dealEvaluation struct {
	inputs     deal.Inputs
	vehicle    *deal.Vehicle
	totals     deal.Totals
	assessment deal.Assessment
}

// evaluate prices and scores the submitted worksheet against the stored
// defaults and product catalog.
func (s *server) evaluate(r *http.Request) (dealEvaluation, error) {
	defaults, err := s.store.GetDefaults(r.Context())
	if err != nil {
		return dealEvaluation{}, err
	}
	catalog, err := s.store.Catalog(r.Context())
	if err != nil {
		return dealEvaluation{}, err
	}

	in := deal.ParseInputs(r.Form, defaults)
	vehicle := deal.ParseVehicle(r.Form)
	return dealEvaluation{
		inputs:     in,
		vehicle:    vehicle,
		totals:     deal.ComputeTotals(in),
		assessment: deal.Assess(in, vehicle, catalog, s.now()),
	}, nil
}

func (s *server) handleDealCalc(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid form")
		return
	}

	ev, err := s.evaluate(r)
	if err != nil {
		s.respondStoreError(w, r, "failed to load deal settings", err)
		return
	}

	metrics.DealsEvaluated.WithLabelValues("false").Inc()
	metrics.DealScore.Observe(float64(ev.assessment.Score))
	s.respondJSON(w, http.StatusOK, dealCalcResponse{
		Inputs:     ev.inputs,
		Totals:     ev.totals,
		Assessment: ev.assessment,
	})
}

func (s *server) handleDealCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid form")
		return
	}

	ev, err := s.evaluate(r)
	if err != nil {
		s.respondStoreError(w, r, "failed to load deal settings", err)
		return
	}

	saved, err := s.store.CreateDeal(r.Context(), store.NewDeal{
		CustomerName: strings.TrimSpace(r.FormValue("customer_name")),
		Vehicle:      strings.TrimSpace(r.FormValue("vehicle")),
		Notes:        strings.TrimSpace(r.FormValue("notes")),
		Inputs:       ev.inputs,
		Context:      ev.vehicle,
		Totals:       ev.totals,
		Assessment:   ev.assessment,
	})
	if err != nil {
		s.respondStoreError(w, r, "failed to save deal", err)
		return
	}

	metrics.DealsEvaluated.WithLabelValues("true").Inc()
	metrics.DealScore.Observe(float64(saved.Score))
	s.log.Info("deal saved",
		zap.Int64("deal_id", saved.ID),
		zap.String("reference", saved.Reference),
		zap.Int("score", saved.Score),
	)

	w.Header().Set("Location", fmt.Sprintf("/deals/%d", saved.ID))
	s.respondJSON(w, http.StatusCreated, saved)
}

func (s *server) handleDealList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	deals, err := s.store.ListDeals(r.Context(), query)
	if err != nil {
		s.respondStoreError(w, r, "failed to load deals", err)
		return
	}
	s.respondJSON(w, http.StatusOK, deals)
}

func (s *server) handleDealDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid deal id")
		return
	}

	d, err := s.store.GetDeal(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, "failed to load deal", err)
		return
	}
	s.respondJSON(w, http.StatusOK, d)
}

func (s *server) handleDealText(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		http.Error(w, "invalid deal id", http.StatusBadRequest)
		return
	}

	d, err := s.store.GetDeal(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, "failed to load deal", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(dealText(d)))
}

// dealText renders a saved deal as a plain-text worksheet recap.
func dealText(d store.Deal) string {
	var b strings.Builder
	line := func(label string, v float64) {
		fmt.Fprintf(&b, "%s: %s\n", label, money.Format(v))
	}

	fmt.Fprintf(&b, "Deal %s\n", d.Reference)
	fmt.Fprintf(&b, "Created: %s\n", d.CreatedAt.Format("2006-01-02 15:04"))
	if d.CustomerName != "" {
		fmt.Fprintf(&b, "Customer: %s\n", d.CustomerName)
	}
	if d.Vehicle != "" {
		fmt.Fprintf(&b, "Vehicle: %s\n", d.Vehicle)
	}

	b.WriteString("\nPricing:\n")
	line("Cash price", d.Totals.TotalCashPrice)
	line("Subtotal", d.Totals.SubtotalPrice)
	line("Net trade allowance", d.Totals.NetTradeAllowance)
	line("Fees", d.Totals.TotalFees)
	line("Sales tax", d.Totals.TaxAmount)
	line("Total due", d.Totals.TotalDue)
	line("Balance due", d.Totals.BalanceDue)

	if d.Totals.AmountFinanced > 0 {
		b.WriteString("\nFinancing:\n")
		line("Amount financed", d.Totals.AmountFinanced)
		fmt.Fprintf(&b, "Monthly payment: %s x %d months at %s%% APR\n",
			money.Format(d.Totals.MonthlyPayment), d.Inputs.TermMonths, money.Format(d.Inputs.APR))
		line("Finance charge", d.Totals.FinanceCharge)
		line("Total of payments", d.Totals.TotalOfPayments)
	}

	fmt.Fprintf(&b, "\nDeal score: %d/100\n", d.Assessment.Score)
	if len(d.Assessment.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, warning := range d.Assessment.Warnings {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", warning.Severity, warning.Title, warning.Message)
		}
	}
	if len(d.Assessment.Suggestions) > 0 {
		b.WriteString("Suggestions:\n")
		for _, suggestion := range d.Assessment.Suggestions {
			fmt.Fprintf(&b, "- %s (est. profit %s)\n", suggestion.Title, money.Format(suggestion.Profit))
		}
	}

	if d.Notes != "" {
		fmt.Fprintf(&b, "\nNotes:\n%s\n", d.Notes)
	}
	return b.String()
}

func (s *server) handleDefaultsGet(w http.ResponseWriter, r *http.Request) {
	defaults, err := s.store.GetDefaults(r.Context())
	if err != nil {
		s.respondStoreError(w, r, "failed to load defaults", err)
		return
	}
	s.respondJSON(w, http.StatusOK, defaults)
}

// handleDefaultsUpdate changes only the submitted fields; anything blank or
// unparsable keeps its current value.
func (s *server) handleDefaultsUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid form")
		return
	}

	current, err := s.store.GetDefaults(r.Context())
	if err != nil {
		s.respondStoreError(w, r, "failed to load defaults", err)
		return
	}

	updated := deal.Defaults{
		DocFee:     num.Money(r.FormValue("doc_fee"), current.DocFee),
		TaxRate:    num.Money(r.FormValue("tax_rate"), current.TaxRate),
		TermMonths: num.Int(r.FormValue("term_months"), current.TermMonths),
		APR:        num.Money(r.FormValue("apr"), current.APR),
	}
	if updated.TermMonths < 0 {
		s.respondError(w, http.StatusBadRequest, "term_months must be >= 0")
		return
	}

	if err := s.store.UpdateDefaults(r.Context(), updated); err != nil {
		s.respondStoreError(w, r, "failed to save defaults", err)
		return
	}
	s.log.Info("deal defaults updated")
	s.respondJSON(w, http.StatusOK, updated)
}
