// Package errors provides structured error handling for the submission engine.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidRequest represents a malformed or unparsable request.
	CodeInvalidRequest Code = "INVALID_REQUEST"

	// Storage errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"
	CodeVersionNotFound  Code = "VERSION_NOT_FOUND"
	CodeVersionConflict  Code = "VERSION_CONFLICT"
	CodeStateConflict    Code = "STATE_CONFLICT"

	// Profile errors
	CodeUnknownRegion        Code = "UNKNOWN_REGION"
	CodeProfileInvalid       Code = "PROFILE_INVALID"
	CodeProfileRuleInvalid   Code = "PROFILE_RULE_INVALID"
	CodeProfileWeightInvalid Code = "PROFILE_WEIGHT_INVALID"

	// Manifest errors
	CodeManifestEmptySelection    Code = "MANIFEST_EMPTY_SELECTION"
	CodeDuplicateSection          Code = "MANIFEST_DUPLICATE_SECTION"
	CodeMissingRequiredSection    Code = "MANIFEST_MISSING_REQUIRED_SECTION"
	CodeManifestSectionTagInvalid Code = "MANIFEST_SECTION_TAG_INVALID"

	// Submission errors
	CodeSubmissionEmptyRegion       Code = "SUBMISSION_EMPTY_REGION"
	CodeSubmissionInvalidTransition Code = "SUBMISSION_INVALID_STATE_TRANSITION"
	CodeSubmissionBlocked           Code = "SUBMISSION_BLOCKED"
	CodeSubmissionNotValidated      Code = "SUBMISSION_NOT_VALIDATED"
	CodeSubmissionNotAbandonable    Code = "SUBMISSION_NOT_ABANDONABLE"

	// Version store errors
	CodeVersionEmptyDocumentID Code = "VERSION_EMPTY_DOCUMENT_ID"
	CodeVersionEmptySnapshot   Code = "VERSION_EMPTY_SNAPSHOT"

	// Gateway errors
	CodeGatewayUnavailable Code = "GATEWAY_UNAVAILABLE"
	CodeGatewayRejected    Code = "GATEWAY_REJECTED"
	CodeAckPending         Code = "ACK_PENDING"
)

// HTTPStatus maps domain codes to HTTP status codes for the REST surface.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeInvalidRequest,
		CodeManifestEmptySelection,
		CodeDuplicateSection,
		CodeMissingRequiredSection,
		CodeManifestSectionTagInvalid,
		CodeSubmissionEmptyRegion,
		CodeVersionEmptyDocumentID,
		CodeVersionEmptySnapshot,
		CodeProfileInvalid,
		CodeProfileRuleInvalid,
		CodeProfileWeightInvalid:
		return http.StatusBadRequest

	// Not found - missing documents, versions, profiles
	case CodeNotFound,
		CodeDocumentNotFound,
		CodeVersionNotFound,
		CodeUnknownRegion:
		return http.StatusNotFound

	// Conflict - concurrent modification or disallowed lifecycle moves
	case CodeStateConflict,
		CodeVersionConflict,
		CodeSubmissionInvalidTransition,
		CodeSubmissionBlocked,
		CodeSubmissionNotValidated,
		CodeSubmissionNotAbandonable:
		return http.StatusConflict

	// Upstream gateway failures
	case CodeGatewayUnavailable,
		CodeGatewayRejected:
		return http.StatusBadGateway

	case CodeAckPending:
		return http.StatusAccepted
	}
	return http.StatusInternalServerError
}
