package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jbweber/tinyvmm/api/v1alpha1"
)

func (s *Server) listVirtualMachines(w http.ResponseWriter, r *http.Request) {
	vms, err := s.vms.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vms)
}

func (s *Server) getVirtualMachine(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	vm, err := s.vms.Get(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vm)
}

func (s *Server) createVirtualMachine(w http.ResponseWriter, r *http.Request) {
	var vm v1alpha1.VirtualMachine
	if err := json.NewDecoder(r.Body).Decode(&vm); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	if vm.Spec.MAC == "" {
		mac, err := v1alpha1.DefaultMAC()
		if err != nil {
			writeError(w, err)
			return
		}
		vm.Spec.MAC = mac
	}

	if err := s.vms.Create(&vm); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &vm)
}

func (s *Server) deleteVirtualMachine(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.vms.Delete(name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
