// Package profile loads candidate profiles and derives the skill list and
// evidence spans the interview probes against.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// EvidenceSource points at a span of profile text supporting a skill claim.
type EvidenceSource struct {
	Span string `json:"span"`
}

// SkillEntry is one claimed skill with its supporting evidence.
type SkillEntry struct {
	TaxonomyID      string           `json:"taxonomy_id"`
	EvidenceSources []EvidenceSource `json:"evidence_sources"`
}

// Profile is a parsed candidate profile.
type Profile struct {
	Skills []SkillEntry `json:"SKILLS"`
}

// Load reads and parses a profile JSON file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return &p, nil
}

// skillName derives the short skill name from a taxonomy ID: the last path
// segment, lowercased ("Tools/ML/PyTorch" -> "pytorch").
func skillName(taxonomyID string) string {
	parts := strings.Split(taxonomyID, "/")
	return strings.ToLower(parts[len(parts)-1])
}

// DeriveSkills returns the skill names claimed by the profile, in profile
// order. An empty profile falls back to a single "general" skill so the
// interview always has something to probe.
func (p *Profile) DeriveSkills() []string {
	var skills []string
	for _, entry := range p.Skills {
		if entry.TaxonomyID == "" {
			continue
		}
		skills = append(skills, skillName(entry.TaxonomyID))
	}
	if len(skills) == 0 {
		return []string{"general"}
	}
	return skills
}

// BuildSpans returns the evidence spans per skill.
func (p *Profile) BuildSpans() map[string][]string {
	spans := make(map[string][]string)
	for _, entry := range p.Skills {
		if entry.TaxonomyID == "" {
			continue
		}
		skill := skillName(entry.TaxonomyID)
		out := make([]string, 0, len(entry.EvidenceSources))
		for _, src := range entry.EvidenceSources {
			out = append(out, src.Span)
		}
		spans[skill] = out
	}
	return spans
}
