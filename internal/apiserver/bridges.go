package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
)

func (s *Server) listBridges(w http.ResponseWriter, r *http.Request) {
	bridges, err := s.bridges.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bridges)
}

func (s *Server) getBridge(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	b, err := s.bridges.Get(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) createBridge(w http.ResponseWriter, r *http.Request) {
	var b v1alpha1.Bridge
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := s.bridges.Create(&b); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &b)
}

func (s *Server) deleteBridge(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.bridges.Delete(name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
