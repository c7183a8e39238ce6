// Package rest exposes the submission engine over HTTP/JSON. Handlers are
// thin: decode, delegate to the application service, encode. All business
// rules live in the domain and app layers.
package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/app"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/document"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/docversion"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/history"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/manifest"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/submission"
)

// Handler serves the submission engine's HTTP surface.
type Handler struct {
	service *app.Service
}

// NewHandler creates the HTTP handler set.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register installs all routes on a mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /submissions", h.createSubmission)
	mux.HandleFunc("GET /submissions/{id}", h.getSubmission)
	mux.HandleFunc("POST /submissions/{id}/manifest", h.buildManifest)
	mux.HandleFunc("POST /submissions/{id}/validate", h.validate)
	mux.HandleFunc("POST /submissions/{id}/build", h.build)
	mux.HandleFunc("POST /submissions/{id}/abandon", h.abandon)
	mux.HandleFunc("GET /submissions/{id}/history", h.listHistory)
	mux.HandleFunc("GET /profiles/{region}/rules", h.profileRules)

	mux.HandleFunc("POST /documents", h.putDocument)
	mux.HandleFunc("POST /documents/{id}/versions", h.createVersion)
	mux.HandleFunc("GET /documents/{id}/versions", h.listVersions)
	mux.HandleFunc("POST /documents/{id}/restore", h.restoreVersion)
	mux.HandleFunc("GET /versions/{id}", h.getVersion)
	mux.HandleFunc("GET /versions/{a}/diff/{b}", h.diffVersions)
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	body := errorBody{Code: string(code), Message: err.Error()}
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		body.Metadata = domainErr.Metadata
	}
	if code == apperrors.CodeUnknown {
		// Internal details stay in the logs.
		log.Printf("internal error: %v", err)
		body.Message = "internal error"
	}
	writeJSON(w, code.HTTPStatus(), errorResponse{Error: body})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func decodeJSON(r *http.Request, into any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(into); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidRequest, "malformed request body", err)
	}
	return nil
}

type submissionResponse struct {
	ID             string             `json:"id"`
	Region         string             `json:"region"`
	State          string             `json:"state"`
	Revision       uint64             `json:"revision"`
	Manifest       *manifest.Manifest `json:"manifest,omitempty"`
	Validation     any                `json:"validation,omitempty"`
	ResumeState    string             `json:"resumeState,omitempty"`
	FailureDetail  string             `json:"failureDetail,omitempty"`
	ArtifactDigest string             `json:"artifactDigest,omitempty"`
	TrackingID     string             `json:"trackingId,omitempty"`
	AckPending     bool               `json:"ackPending"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

func toSubmissionResponse(sub submission.Submission) submissionResponse {
	resp := submissionResponse{
		ID:             sub.ID,
		Region:         sub.Region,
		State:          string(sub.State),
		Revision:       sub.Revision,
		Manifest:       sub.Manifest,
		ResumeState:    string(sub.ResumeState),
		FailureDetail:  sub.FailureDetail,
		ArtifactDigest: sub.ArtifactDigest,
		TrackingID:     sub.TrackingID,
		AckPending:     sub.AckPending,
		CreatedAt:      sub.CreatedAt,
		UpdatedAt:      sub.UpdatedAt,
	}
	if sub.Validation != nil {
		resp.Validation = sub.Validation
	}
	return resp
}

type createSubmissionRequest struct {
	Region string `json:"region"`
}

func (h *Handler) createSubmission(w http.ResponseWriter, r *http.Request) {
	var req createSubmissionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sub, err := h.service.CreateSubmission(r.Context(), req.Region)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubmissionResponse(sub))
}

func (h *Handler) getSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.GetSubmission(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

type buildManifestRequest struct {
	Selections []manifest.Selection `json:"selections"`
}

func (h *Handler) buildManifest(w http.ResponseWriter, r *http.Request) {
	var req buildManifestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sub, err := h.service.BuildManifest(r.Context(), r.PathValue("id"), req.Selections)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Validate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Build(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

func (h *Handler) abandon(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Abandon(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

type historyEntryResponse struct {
	SubmissionID string    `json:"submissionId"`
	Seq          uint64    `json:"seq"`
	Event        string    `json:"event"`
	Timestamp    time.Time `json:"timestamp"`
	Detail       string    `json:"detail,omitempty"`
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]historyEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toHistoryResponse(entry))
	}
	writeJSON(w, http.StatusOK, out)
}

func toHistoryResponse(entry history.Entry) historyEntryResponse {
	return historyEntryResponse{
		SubmissionID: entry.SubmissionID,
		Seq:          entry.Seq,
		Event:        string(entry.Event),
		Timestamp:    entry.Timestamp,
		Detail:       entry.Detail,
	}
}

type profileRuleResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type profileResponse struct {
	Region            string                `json:"region"`
	Name              string                `json:"name"`
	MandatorySections []string              `json:"mandatorySections"`
	BlockingFloor     int                   `json:"blockingFloor"`
	Rules             []profileRuleResponse `json:"rules"`
}

func (h *Handler) profileRules(w http.ResponseWriter, r *http.Request) {
	prof, err := h.service.Profile(r.PathValue("region"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := profileResponse{
		Region:            prof.Region,
		Name:              prof.Name,
		MandatorySections: prof.MandatorySections,
		BlockingFloor:     prof.BlockingFloor,
		Rules:             make([]profileRuleResponse, 0, len(prof.Rules)),
	}
	for _, rule := range prof.Rules {
		resp.Rules = append(resp.Rules, profileRuleResponse{
			ID:          rule.ID,
			Description: rule.Description,
			Severity:    string(rule.Severity),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type putDocumentRequest struct {
	ID         string `json:"id"`
	SectionTag string `json:"sectionTag"`
	OwnerID    string `json:"ownerId"`
	Status     string `json:"status"`
}

func (h *Handler) putDocument(w http.ResponseWriter, r *http.Request) {
	var req putDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	status, ok := document.ParseStatus(req.Status)
	if !ok {
		writeError(w, apperrors.WithMetadata(apperrors.CodeInvalidRequest, "unknown document status", map[string]string{
			"status": req.Status,
		}))
		return
	}
	err := h.service.PutDocument(r.Context(), document.Document{
		ID:         req.ID,
		SectionTag: req.SectionTag,
		OwnerID:    req.OwnerID,
		Status:     status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type versionResponse struct {
	ID              string              `json:"id"`
	DocumentID      string              `json:"documentId"`
	VersionNumber   uint64              `json:"versionNumber"`
	AuthorID        string              `json:"authorId"`
	CreatedAt       time.Time           `json:"createdAt"`
	Snapshot        docversion.Snapshot `json:"snapshot"`
	SnapshotHash    string              `json:"snapshotHash"`
	ParentVersionID string              `json:"parentVersionId,omitempty"`
}

func toVersionResponse(version docversion.DocumentVersion) versionResponse {
	return versionResponse{
		ID:              version.ID,
		DocumentID:      version.DocumentID,
		VersionNumber:   version.VersionNumber,
		AuthorID:        version.AuthorID,
		CreatedAt:       version.CreatedAt,
		Snapshot:        version.Snapshot,
		SnapshotHash:    version.SnapshotHash,
		ParentVersionID: version.ParentVersionID,
	}
}

type createVersionRequest struct {
	Snapshot docversion.Snapshot `json:"snapshot"`
	AuthorID string              `json:"authorId"`
}

func (h *Handler) createVersion(w http.ResponseWriter, r *http.Request) {
	var req createVersionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	version, err := h.service.CreateVersion(r.Context(), r.PathValue("id"), req.Snapshot, req.AuthorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVersionResponse(version))
}

func (h *Handler) listVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.service.ListVersions(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]versionResponse, 0, len(versions))
	for _, version := range versions {
		out = append(out, toVersionResponse(version))
	}
	writeJSON(w, http.StatusOK, out)
}

type restoreVersionRequest struct {
	TargetVersionID string `json:"targetVersionId"`
	AuthorID        string `json:"authorId"`
}

func (h *Handler) restoreVersion(w http.ResponseWriter, r *http.Request) {
	var req restoreVersionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	version, err := h.service.RestoreVersion(r.Context(), r.PathValue("id"), req.TargetVersionID, req.AuthorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVersionResponse(version))
}

func (h *Handler) getVersion(w http.ResponseWriter, r *http.Request) {
	version, err := h.service.GetVersion(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toVersionResponse(version))
}

type diffResponse struct {
	Additions     []string `json:"additions"`
	Deletions     []string `json:"deletions"`
	ChangedFields []string `json:"changedFields"`
}

func (h *Handler) diffVersions(w http.ResponseWriter, r *http.Request) {
	diff, err := h.service.DiffVersions(r.Context(), r.PathValue("a"), r.PathValue("b"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diffResponse{
		Additions:     diff.Additions,
		Deletions:     diff.Deletions,
		ChangedFields: diff.ChangedFields,
	})
}
