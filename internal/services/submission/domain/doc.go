// Package domain groups the submission engine's core model packages:
// authored documents, their immutable version history, regulatory rule
// profiles, manifest construction, validation, and the submission
// lifecycle aggregate.
package domain
