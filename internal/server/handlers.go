package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"docfoundry/internal/github"
	"docfoundry/internal/llm"
	"docfoundry/internal/llm/client"
	"docfoundry/internal/models"
	"docfoundry/internal/repositories"
	"docfoundry/internal/services"
)

type generateRequest struct {
	Files []models.FileRecord `json:"files"`
}

type refineRequest struct {
	DocumentationID string `json:"documentation_id"`
	Feedback        string `json:"feedback"`
}

type acceptRequest struct {
	DocumentationID string `json:"documentation_id"`
	Owner           string `json:"owner"`
	Repo            string `json:"repo"`
	Branch          string `json:"branch"`
	FilePath        string `json:"file_path"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &services.ValidationError{Detail: "invalid request body"})
		return
	}
	result, err := s.docs.Generate(r.Context(), req.Files)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &services.ValidationError{Detail: "invalid request body"})
		return
	}
	ch, err := s.docs.StreamGenerate(r.Context(), req.Files)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, fmt.Errorf("streaming unsupported"))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-ch:
			if !open {
				return
			}
			data, mErr := json.Marshal(event)
			if mErr != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
			if event.Terminal() {
				return
			}
		}
	}
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &services.ValidationError{Detail: "invalid request body"})
		return
	}
	result, err := s.docs.Refine(r.Context(), req.DocumentationID, req.Feedback)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &services.ValidationError{Detail: "invalid request body"})
		return
	}
	coords := models.RepoCoordinates{
		Owner:    req.Owner,
		Repo:     req.Repo,
		Branch:   req.Branch,
		FilePath: req.FilePath,
		Token:    bearerToken(r),
	}
	result, err := s.docs.Accept(r.Context(), req.DocumentationID, coords)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAuthRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.host.AuthorizeURL(), http.StatusTemporaryRedirect)
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		s.writeError(w, &services.ValidationError{Detail: "code query parameter is required"})
		return
	}
	token, err := s.host.ExchangeCode(r.Context(), code)
	if err != nil {
		s.writeError(w, err)
		return
	}
	user, err := s.host.FetchUser(r.Context(), token)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"user":         user,
	})
}

func (s *Server) handleListRepos(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		s.writeError(w, &services.ValidationError{Detail: "authorization token is required"})
		return
	}
	repos, err := s.host.ListUserRepos(r.Context(), token)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, repos)
}

func (s *Server) handleRepoFiles(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		s.writeError(w, &services.ValidationError{Detail: "authorization token is required"})
		return
	}
	owner := r.PathValue("owner")
	repo := r.PathValue("repo")
	branch := r.URL.Query().Get("branch")
	if branch == "" {
		branch = "main"
	}
	files, err := s.host.FetchFiles(r.Context(), owner, repo, branch, token)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleGenerateLocal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path   string `json:"path"`
		Branch string `json:"branch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &services.ValidationError{Detail: "invalid request body"})
		return
	}
	result, err := s.docs.GenerateFromLocal(r.Context(), req.Path, req.Branch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLocalBranches(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	branches, err := s.docs.ListLocalBranches(path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, branches)
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	catalog, err := client.LoadCatalog()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, catalog)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var validation *services.ValidationError
	var hostErr *github.APIError
	var rateLimit *llm.RateLimitError
	var upstream *llm.UpstreamError
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.Is(err, repositories.ErrArtifactNotFound):
		status = http.StatusNotFound
	case errors.As(err, &hostErr):
		status = hostErr.Status
	case errors.As(err, &rateLimit):
		status = http.StatusTooManyRequests
	case errors.As(err, &upstream):
		status = upstream.Status
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
