package server

import (
	"net/http"

	"github.com/newmd/newmd/internal/server/httpx"
)

type appInfoResponse struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	ContentTarget string `json:"content_target"`
	StoreURL      string `json:"store_url"`
	Compare       string `json:"compare"`
}

type updateCheckResponse struct {
	CurrentVersion  string `json:"current_version"`
	UpdateAvailable bool   `json:"update_available"`
	StoreURL        string `json:"store_url,omitempty"`
}

func healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *stateStore) appInfoHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, appInfoResponse{
		Name:          "newmd",
		Version:       s.currentVersion,
		ContentTarget: s.cfg.Content.Target,
		StoreURL:      s.cfg.StoreURL(),
		Compare:       s.cfg.Update.Compare,
	})
}

func (s *stateStore) updateCheckHandler(w http.ResponseWriter, r *http.Request) {
	available := s.checker.CheckForUpdate(r.Context(), s.currentVersion)
	resp := updateCheckResponse{
		CurrentVersion:  s.currentVersion,
		UpdateAvailable: available,
	}
	if available {
		resp.StoreURL = s.cfg.StoreURL()
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (s *stateStore) contentRedirectHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.cfg.Content.Target, http.StatusFound)
}
