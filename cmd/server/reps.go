package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/dealdesk/internal/commission"
	"github.com/Simplici0/dealdesk/internal/metrics"
)

type vestingResponse struct {
	RepID int64 `json:"rep_id"`
	commission.Vesting
}

func (s *server) handleRepCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid form")
		return
	}

	rep, err := commission.ParseRep(r.Form)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.CreateRep(r.Context(), rep)
	if err != nil {
		s.respondStoreError(w, r, "failed to save rep", err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/reps/%d", saved.ID))
	s.respondJSON(w, http.StatusCreated, saved)
}

func (s *server) handleRepDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid rep id")
		return
	}

	rep, err := s.store.GetRep(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, "failed to load rep", err)
		return
	}
	s.respondJSON(w, http.StatusOK, rep)
}

func (s *server) handleRepVesting(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid rep id")
		return
	}

	rep, err := s.store.GetRep(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, "failed to load rep", err)
		return
	}
	s.respondJSON(w, http.StatusOK, vestingResponse{RepID: rep.ID, Vesting: commission.ComputeVesting(rep, s.now())})
}

func (s *server) handleSignupCreate(w http.ResponseWriter, r *http.Request) {
	repID, ok := parseIDParam(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid rep id")
		return
	}
	if err := r.ParseForm(); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid form")
		return
	}

	signup, err := commission.ParseSignup(r.Form, repID, s.now())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.CreateSignup(r.Context(), signup)
	if err != nil {
		s.respondStoreError(w, r, "failed to save signup", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, saved)
}

func (s *server) handleSignupList(w http.ResponseWriter, r *http.Request) {
	repID, ok := parseIDParam(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid rep id")
		return
	}

	if _, err := s.store.GetRep(r.Context(), repID); err != nil {
		s.respondStoreError(w, r, "failed to load rep", err)
		return
	}
	signups, err := s.store.ListSignups(r.Context(), repID)
	if err != nil {
		s.respondStoreError(w, r, "failed to load signups", err)
		return
	}
	s.respondJSON(w, http.StatusOK, signups)
}

func (s *server) handleSignupCancel(w http.ResponseWriter, r *http.Request) {
	signupID := chi.URLParam(r, "id")
	if signupID == "" {
		s.respondError(w, http.StatusBadRequest, "invalid signup id")
		return
	}

	cancelled, err := s.store.CancelSignup(r.Context(), signupID)
	if err != nil {
		s.respondStoreError(w, r, "failed to cancel signup", err)
		return
	}

	metrics.SignupsCancelled.WithLabelValues(cancelled.Status).Inc()
	s.log.Info("signup cancelled",
		zap.String("signup_id", cancelled.ID),
		zap.Int64("rep_id", cancelled.RepID),
		zap.String("status", cancelled.Status),
		zap.Bool("clawback_applied", cancelled.ClawbackApplied),
	)
	s.respondJSON(w, http.StatusOK, cancelled)
}

func (s *server) handlePayoutCompute(w http.ResponseWriter, r *http.Request) {
	repID, ok := parseIDParam(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid rep id")
		return
	}
	period, err := commission.ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := s.store.GetRep(r.Context(), repID)
	if err != nil {
		s.respondStoreError(w, r, "failed to load rep", err)
		return
	}
	signups, err := s.store.ListSignups(r.Context(), repID)
	if err != nil {
		s.respondStoreError(w, r, "failed to load signups", err)
		return
	}

	saved, err := s.store.SavePayout(r.Context(), commission.ComputePayout(rep, signups, period))
	if err != nil {
		s.respondStoreError(w, r, "failed to save payout", err)
		return
	}
	metrics.PayoutsComputed.Inc()
	s.respondJSON(w, http.StatusOK, saved)
}

func (s *server) handlePayoutList(w http.ResponseWriter, r *http.Request) {
	repID, ok := parseIDParam(r, "id")
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid rep id")
		return
	}

	if _, err := s.store.GetRep(r.Context(), repID); err != nil {
		s.respondStoreError(w, r, "failed to load rep", err)
		return
	}
	payouts, err := s.store.ListPayouts(r.Context(), repID)
	if err != nil {
		s.respondStoreError(w, r, "failed to load payouts", err)
		return
	}
	s.respondJSON(w, http.StatusOK, payouts)
}
