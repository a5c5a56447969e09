package main

import (
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Simplici0/dealdesk/internal/deal"
	"github.com/Simplici0/dealdesk/internal/store"
)

func worksheetForm() url.Values {
	form := url.Values{}
	form.Set("vehicle_cash_price", "$20,000")
	form.Set("down_payment", "2000")
	return form
}

func TestDealCalcAppliesStoredDefaults(t *testing.T) {
	s := newTestServer(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	rr := serve(t, s, http.MethodPost, "/deals/calc", worksheetForm())
	expectStatus(t, rr, http.StatusOK)

	var got dealCalcResponse
	decode(t, rr, &got)

	nearlyEqual(t, "docFee", got.Inputs.DocFee, deal.DefaultDocFee)
	if got.Inputs.TermMonths != deal.DefaultTermMonths {
		t.Fatalf("term months = %d, want %d", got.Inputs.TermMonths, deal.DefaultTermMonths)
	}
	nearlyEqual(t, "taxAmount", got.Totals.TaxAmount, 1471.6775)
	nearlyEqual(t, "amountFinanced", got.Totals.AmountFinanced, 19770.6775)

	if got.Assessment.Score < 0 || got.Assessment.Score > 100 {
		t.Fatalf("score out of range: %d", got.Assessment.Score)
	}
	if len(got.Assessment.Suggestions) == 0 || got.Assessment.Suggestions[0].Product != deal.ProductGAP {
		t.Fatalf("expected GAP to be the first suggestion, got %+v", got.Assessment.Suggestions)
	}
}

func TestDealCalcHonorsExplicitZero(t *testing.T) {
	s := newTestServer(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	form := worksheetForm()
	form.Set("doc_fee", "0")
	form.Set("tax_rate", "not-a-number")

	rr := serve(t, s, http.MethodPost, "/deals/calc", form)
	expectStatus(t, rr, http.StatusOK)

	var got dealCalcResponse
	decode(t, rr, &got)
	nearlyEqual(t, "docFee", got.Inputs.DocFee, 0)
	nearlyEqual(t, "taxRate", got.Inputs.TaxRate, deal.DefaultTaxRate)
}

func TestDealCreateStoresRoundedSnapshot(t *testing.T) {
	s := newTestServer(t, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))

	form := worksheetForm()
	form.Set("customer_name", "Dana Ortiz")
	form.Set("vehicle", "2021 Civic")
	form.Set("notes", "wants a lower payment")

	rr := serve(t, s, http.MethodPost, "/deals", form)
	expectStatus(t, rr, http.StatusCreated)

	var created store.Deal
	decode(t, rr, &created)
	if rr.Header().Get("Location") == "" {
		t.Fatalf("expected Location header")
	}
	nearlyEqual(t, "taxAmount", created.Totals.TaxAmount, 1471.68)
	nearlyEqual(t, "totalDue", created.Totals.TotalDue, 21770.68)

	detail := serve(t, s, http.MethodGet, rr.Header().Get("Location"), nil)
	expectStatus(t, detail, http.StatusOK)

	var reread store.Deal
	decode(t, detail, &reread)
	if reread.Reference != created.Reference || reread.CustomerName != "Dana Ortiz" {
		t.Fatalf("unexpected detail: %+v", reread)
	}
}

func TestHandleDealTextReturnsPlainText(t *testing.T) {
	s := newTestServer(t, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))

	form := worksheetForm()
	form.Set("customer_name", "Dana Ortiz")
	rr := serve(t, s, http.MethodPost, "/deals", form)
	expectStatus(t, rr, http.StatusCreated)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/deals/1/text", nil), "id", "1")
	text := httptest.NewRecorder()
	s.handleDealText(text, req)

	expectStatus(t, text, http.StatusOK)
	if !strings.Contains(text.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("expected text/plain content type, got %q", text.Header().Get("Content-Type"))
	}

	body := text.Body.String()
	for _, expected := range []string{
		"Customer: Dana Ortiz",
		"Sales tax: 1471.68",
		"Total due: 21770.68",
		"x 48 months at 18.00% APR",
		"Created: 2024-05-01 09:30",
		"Suggestions:",
	} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q, got: %s", expected, body)
		}
	}
}

func TestDealDetailErrors(t *testing.T) {
	s := newTestServer(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	expectStatus(t, serve(t, s, http.MethodGet, "/deals/99", nil), http.StatusNotFound)
	expectStatus(t, serve(t, s, http.MethodGet, "/deals/abc", nil), http.StatusBadRequest)
	expectStatus(t, serve(t, s, http.MethodGet, "/deals/99/text", nil), http.StatusNotFound)
}

func TestDealListFiltersByQuery(t *testing.T) {
	s := newTestServer(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	for _, name := range []string{"Ana Perez", "Luis Gomez"} {
		form := worksheetForm()
		form.Set("customer_name", name)
		expectStatus(t, serve(t, s, http.MethodPost, "/deals", form), http.StatusCreated)
	}

	rr := serve(t, s, http.MethodGet, "/deals?q=Luis", nil)
	expectStatus(t, rr, http.StatusOK)

	var deals []store.DealSummary
	decode(t, rr, &deals)
	if len(deals) != 1 || deals[0].CustomerName != "Luis Gomez" {
		t.Fatalf("unexpected filtered deals: %+v", deals)
	}
	nearlyEqual(t, "totalDue", deals[0].TotalDue, 21770.68)
}

func TestDefaultsUpdateKeepsUnsubmittedFields(t *testing.T) {
	s := newTestServer(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	form := url.Values{}
	form.Set("doc_fee", "150")
	rr := serve(t, s, http.MethodPost, "/admin/defaults", form)
	expectStatus(t, rr, http.StatusOK)

	rr = serve(t, s, http.MethodGet, "/admin/defaults", nil)
	expectStatus(t, rr, http.StatusOK)

	var got deal.Defaults
	decode(t, rr, &got)
	nearlyEqual(t, "docFee", got.DocFee, 150)
	nearlyEqual(t, "taxRate", got.TaxRate, deal.DefaultTaxRate)
	if got.TermMonths != deal.DefaultTermMonths {
		t.Fatalf("term months = %d, want %d", got.TermMonths, deal.DefaultTermMonths)
	}

	calc := serve(t, s, http.MethodPost, "/deals/calc", worksheetForm())
	var totals dealCalcResponse
	decode(t, calc, &totals)
	nearlyEqual(t, "docFee", totals.Inputs.DocFee, 150)
}

func TestDealCalcLongTermFallsBackToDefault(t *testing.T) {
	s := newTestServer(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	form := worksheetForm()
	form.Set("term_months", "50000")

	rr := serve(t, s, http.MethodPost, "/deals/calc", form)
	expectStatus(t, rr, http.StatusOK)

	var got dealCalcResponse
	decode(t, rr, &got)
	if got.Inputs.TermMonths != deal.DefaultTermMonths {
		t.Fatalf("term months = %d, want default %d", got.Inputs.TermMonths, deal.DefaultTermMonths)
	}
	if got.Totals.MonthlyPayment <= 0 || math.IsInf(got.Totals.MonthlyPayment, 0) {
		t.Fatalf("monthly payment = %v, want a finite positive value", got.Totals.MonthlyPayment)
	}
}

func TestDealCreateWithHugeAmountsDoesNotFail(t *testing.T) {
	s := newTestServer(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	form := url.Values{}
	form.Set("vehicle_cash_price", "1e308")
	form.Set("accessories_total", "1e308")
	form.Set("term_months", "99999999999")

	rr := serve(t, s, http.MethodPost, "/deals", form)
	expectStatus(t, rr, http.StatusCreated)

	var created store.Deal
	decode(t, rr, &created)
	if created.Inputs.VehicleCashPrice != 0 || created.Inputs.TermMonths != deal.DefaultTermMonths {
		t.Fatalf("expected out-of-range fields to take defaults, got %+v", created.Inputs)
	}
}

func TestRespondJSONReportsEncodeFailure(t *testing.T) {
	s := newTestServer(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	rr := httptest.NewRecorder()
	s.respondJSON(rr, http.StatusOK, map[string]float64{"monthly_payment": math.NaN()})

	expectStatus(t, rr, http.StatusInternalServerError)
	if !strings.Contains(rr.Body.String(), "failed to encode response") {
		t.Fatalf("expected an error body, got %q", rr.Body.String())
	}
}
