package http

import (
	"net/http"

	"savings/internal/log"
)

// handleSaveGoal submits the create or edit form.
func (s *Server) handleSaveGoal(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	p, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}

	toast, err := s.ctrl.SaveGoal(r.Context(), p.GoalInput())
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	s.appMetrics.goalsSaved.Add(1)
	s.writeToast(w, r, toast)
}

// handleDeleteGoal confirms the pending delete.
func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	toast, err := s.ctrl.DeleteGoal(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	s.appMetrics.deletions.Add(1)
	s.writeToast(w, r, toast)
}

// handleUndo restores the most recently deleted goal.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	toast, err := s.ctrl.Undo(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpUndo, err)
		return
	}
	s.appMetrics.undos.Add(1)
	s.writeToast(w, r, toast)
}

// handleDeposit submits the add-money form.
func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	p, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}

	toast, err := s.ctrl.Deposit(r.Context(), p.Get("amount"))
	if err != nil {
		s.writeError(w, r, log.OpDeposit, err)
		return
	}
	s.appMetrics.deposits.Add(1)
	s.writeToast(w, r, toast)
}

// handleSaveBackground applies the customizer selection.
func (s *Server) handleSaveBackground(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	toast, err := s.ctrl.SaveBackground(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpBackground, err)
		return
	}
	s.appMetrics.backgrounds.Add(1)
	s.writeToast(w, r, toast)
}
