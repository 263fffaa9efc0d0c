package api

import (
	"net/http"
)

// handleHealth responds with 200 OK to indicate the service is running
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.cacheService.Stats()

	status := map[string]interface{}{
		"status": "ok",
		"cache": map[string]interface{}{
			"memory_items":       stats.MemoryItems,
			"persistent_enabled": stats.PersistentEnabled,
		},
	}

	s.sendJSONResponse(w, status)
}
