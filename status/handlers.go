package status

import (
	"encoding/json"
	"net/http"
)

type deviceView struct {
	Name     string `json:"name,omitempty"`
	Channel  *uint8 `json:"channel,omitempty"`
	Port     uint16 `json:"port"`
	TargetIP string `json:"target_ip"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	views := s.reg.Snapshot()
	out := make([]deviceView, 0, len(views))
	for _, v := range views {
		dv := deviceView{Port: v.Port, TargetIP: v.IP}
		if dv.TargetIP == "" {
			dv.TargetIP = "unresolved"
		}
		if v.ByChannel {
			c := v.Channel
			dv.Channel = &c
		} else {
			dv.Name = v.Name
		}
		out = append(out, dv)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.store.get()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
