package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/parcel-sim/parcel-sim/sim"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func (srv *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	srv.mu.Lock()
	runID, clock := srv.sim.RunID, srv.sim.Clock.String()
	srv.mu.Unlock()
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"run_id":  runID,
		"clock":   clock,
		"clients": srv.hub.ClientCount(),
	})
}

// handleSnapshot returns the whole world, or only one scene's entities with
// ?scene=<name>.
func (srv *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := srv.Snapshot()
	if scene := r.URL.Query().Get("scene"); scene != "" {
		if !sim.IsValidScene(scene) {
			writeError(w, r, http.StatusBadRequest, "unknown scene "+scene)
			return
		}
		snap = snap.InScene(scene)
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (srv *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, srv.Snapshot().Metrics)
}

// handleSwitchScene forwards a scene-switch intent. Unknown scenes are
// ignored by the simulator and reported as 404.
func (srv *Server) handleSwitchScene(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	srv.mu.Lock()
	ok := srv.sim.SwitchScene(name)
	current := srv.sim.Scene()
	srv.mu.Unlock()
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown scene "+name)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"scene": current})
}

func (srv *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	c := NewClient(conn, srv.hub)
	if !srv.hub.Register(c) {
		conn.Close()
		return
	}
	go c.WritePump()
	go c.ReadPump()
}

// requestLogger logs one line per request through logrus.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.WithField("request_id", middleware.GetReqID(r.Context())).
			Debugf("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
