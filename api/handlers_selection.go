package api

import (
	"net/http"

	"github.com/transferai/agreement-proxy/assist"
)

// handleInstitutions returns the sending-institution catalog.
// ?refresh=true bypasses the cache tiers.
func (s *Server) handleInstitutions(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("refresh") == "true"

	catalog, err := s.institutions.Catalog(r.Context(), force)
	if err != nil {
		s.sendErrorResponse(w, http.StatusBadGateway, err.Error())
		return
	}

	s.sendJSONResponse(w, map[string]interface{}{"institutions": catalog})
}

// handleSelection returns a consistent snapshot of the whole selection graph
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	s.sendJSONResponse(w, s.graph.Snapshot())
}

func (s *Server) handleSetSending(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sending []assist.Institution `json:"sending"`
	}
	if err := decodeJSONBody(r, &body); err != nil {
		s.sendErrorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.applyMutation(w, s.graph.SetSending(body.Sending))
}

func (s *Server) handleSetReceiving(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeJSONBody(r, &body); err != nil {
		s.sendErrorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.applyMutation(w, s.graph.SetReceiving(body.ID))
}

func (s *Server) handleSetYear(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeJSONBody(r, &body); err != nil {
		s.sendErrorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.applyMutation(w, s.graph.SetYear(body.ID))
}

func (s *Server) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category assist.Category `json:"category"`
	}
	if err := decodeJSONBody(r, &body); err != nil {
		s.sendErrorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.applyMutation(w, s.graph.SetCategory(body.Category))
}

func (s *Server) handleSetMajor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key string `json:"key"`
	}
	if err := decodeJSONBody(r, &body); err != nil {
		s.sendErrorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.applyMutation(w, s.graph.SetMajor(body.Key))
}

func (s *Server) handleSetActiveAgreement(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Index int `json:"index"`
	}
	if err := decodeJSONBody(r, &body); err != nil {
		s.sendErrorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.applyMutation(w, s.graph.SetActiveAgreement(body.Index))
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	s.applyMutation(w, s.graph.Retry())
}

// applyMutation maps a graph mutation result to the response: a rejected
// mutation is a 400, an accepted one returns the post-mutation snapshot
func (s *Server) applyMutation(w http.ResponseWriter, err error) {
	if err != nil {
		s.sendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	s.sendJSONResponse(w, s.graph.Snapshot())
}
