package web

import (
	"log"
	"net/http"

	"pocketgrove/internal/mapgen"
)

// GET /api/map.pdf
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	e, id, err := s.getOrCreateEntry(r.Context(), w, r)
	if err != nil {
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	e.mu.Lock()
	g := e.game
	pdf, err := mapgen.Generate(g.Layout(), g.Record(), "Travel record "+id[:min(8, len(id))])
	e.mu.Unlock()
	if err != nil {
		log.Printf("web: map %s: %v", id, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="pocket-grove-map.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		log.Printf("web: write map %s: %v", id, err)
	}
}
