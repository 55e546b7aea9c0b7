package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nightconcept/cratesmith/internal/core/logging"
	"github.com/nightconcept/cratesmith/internal/core/project"
)

// ArchiveDigestHeader carries the "sha256:<hex>" digest of the returned archive.
const ArchiveDigestHeader = "X-Archive-Digest"

// CreateProjectRequest is the body of POST /api/v1/projects.
type CreateProjectRequest struct {
	Package    project.PackageInfo `json:"package"`
	TargetKind string              `json:"target_kind"`
	Starters   []string            `json:"starters"`
}

// Description converts the request into a generation description.
func (req CreateProjectRequest) Description() (*project.Description, error) {
	kind, err := project.ParseTargetKind(req.TargetKind)
	if err != nil {
		return nil, err
	}
	desc := project.NewDescription(req.Package.Name, kind)
	desc.Package.Description = req.Package.Description
	desc.Package.Author = req.Package.Author
	desc.Starters = append(desc.Starters, req.Starters...)
	return desc, nil
}

// StartersResponse is the body of GET /api/v1/starters.
type StartersResponse struct {
	Starters []string `json:"starters"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListStarters(w http.ResponseWriter, r *http.Request) {
	names, err := s.gen.Starters(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("list starters", "err", err)
		writeError(w, r, http.StatusInternalServerError, "STARTER_LOOKUP", "could not list starters")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, StartersResponse{Starters: names})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req CreateProjectRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("invalid request body: %v", err))
		return
	}
	desc, err := req.Description()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	res, err := s.gen.Build(r.Context(), desc)
	if err != nil {
		logger.Warn("generation failed", "name", desc.Package.Name, "err", err)
		writeGenerateError(w, r, err)
		return
	}
	defer func() {
		if err := res.Remove(); err != nil {
			logger.Warn("failed to remove project directory", "id", res.ID, "err", err)
		}
	}()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Name+".zip"))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Archive)))
	w.Header().Set(ArchiveDigestHeader, res.Digest)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Archive); err != nil {
		logger.Debug("failed to write archive", "id", res.ID, "err", err)
	}
}
