package profile

import apperrors "github.com/Jonmichaelpsmith/ClinicalSageAI-sub008/internal/platform/errors"

// Registry resolves profiles by region. It is populated once at startup
// and exposes no mutation to the validation path, so concurrent reads
// need no synchronization.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry builds a registry from validated profiles. Later profiles
// with the same region replace earlier ones, letting an external profile
// directory override embedded defaults.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	byRegion := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		byRegion[NormalizeRegion(p.Region)] = p
	}
	return &Registry{profiles: byRegion}, nil
}

// Profile returns the profile registered for a region.
func (r *Registry) Profile(region string) (Profile, error) {
	p, ok := r.profiles[NormalizeRegion(region)]
	if !ok {
		return Profile{}, apperrors.WithMetadata(apperrors.CodeUnknownRegion, "no profile registered for region", map[string]string{
			"region": region,
		})
	}
	return p, nil
}

// Regions lists registered region keys.
func (r *Registry) Regions() []string {
	out := make([]string, 0, len(r.profiles))
	for region := range r.profiles {
		out = append(out, region)
	}
	return out
}
