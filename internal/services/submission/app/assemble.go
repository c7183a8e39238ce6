package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/domain/manifest"
	"github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/services/submission/gateway"
)

// packageEnvelope is the canonical package encoding handed to the signer
// and the gateway. Field order is fixed by the struct, timestamps come
// from the frozen manifest, and sections are already in stable tag order,
// so identical manifests yield byte-identical packages.
type packageEnvelope struct {
	SubmissionID        string           `json:"submissionId"`
	Region              string           `json:"region"`
	ManifestFingerprint string           `json:"manifestFingerprint"`
	GeneratedAt         string           `json:"generatedAt"`
	CoverLetter         string           `json:"coverLetter"`
	Sections            []packageSection `json:"sections"`
}

type packageSection struct {
	SectionTag string `json:"sectionTag"`
	DocumentID string `json:"documentId"`
	VersionID  string `json:"versionId"`
}

// assembleArtifact derives the deterministic submission package from a
// frozen manifest.
func assembleArtifact(m manifest.Manifest) (gateway.Artifact, error) {
	leaves := m.Leaves()
	sections := make([]packageSection, 0, len(leaves))
	for _, leaf := range leaves {
		sections = append(sections, packageSection{
			SectionTag: leaf.SectionTag,
			DocumentID: leaf.DocumentID,
			VersionID:  leaf.VersionID,
		})
	}

	envelope := packageEnvelope{
		SubmissionID:        m.SubmissionID,
		Region:              m.Region,
		ManifestFingerprint: m.Fingerprint(),
		GeneratedAt:         m.GeneratedAt.UTC().Format(time.RFC3339Nano),
		CoverLetter:         coverLetter(m, len(sections)),
		Sections:            sections,
	}
	content, err := json.Marshal(envelope)
	if err != nil {
		return gateway.Artifact{}, fmt.Errorf("encode package: %w", err)
	}

	digest := sha256.Sum256(content)
	return gateway.Artifact{
		SubmissionID:        m.SubmissionID,
		Region:              m.Region,
		ManifestFingerprint: envelope.ManifestFingerprint,
		Content:             content,
		Digest:              hex.EncodeToString(digest[:]),
	}, nil
}

func coverLetter(m manifest.Manifest, sections int) string {
	return fmt.Sprintf("Submission %s to %s comprising %d sections, generated %s.",
		m.SubmissionID, m.Region, sections, m.GeneratedAt.UTC().Format(time.RFC3339))
}
