package domain

import "math"

// weightSumTolerance absorbs float accumulation when checking that the two
// index weights sum to 1.
const weightSumTolerance = 1e-9

// IndexWeights are the linear coefficients of the Elder Vulnerability Index.
// Each weight lies in [0,1] and together they sum to 1.
type IndexWeights struct {
	SocialVulnerability float64
	ElderlyShare        float64
}

// DefaultIndexWeights weighs vulnerability and elderly share equally.
func DefaultIndexWeights() IndexWeights {
	return IndexWeights{SocialVulnerability: 0.5, ElderlyShare: 0.5}
}

// Validate checks that both weights are in [0,1] and sum to 1.
func (w IndexWeights) Validate() error {
	if err := checkUnitInterval("svi_weight", w.SocialVulnerability); err != nil {
		return err
	}
	if err := checkUnitInterval("elderly_weight", w.ElderlyShare); err != nil {
		return err
	}
	if sum := w.SocialVulnerability + w.ElderlyShare; math.Abs(sum-1) > weightSumTolerance {
		return &ValidationError{Field: "index_weights", Value: sum, Reason: "weights must sum to 1"}
	}
	return nil
}

// ComputeIndex derives the Elder Vulnerability Index from the social
// vulnerability percentile s and the elderly population share e. The result
// is always in [0,1] and non-decreasing in both inputs (for e > 0).
//
// A zero elderly share means the demographic datum is absent; the index
// degrades to the SVI value alone rather than failing.
func ComputeIndex(s, e float64, w IndexWeights) (float64, error) {
	if err := w.Validate(); err != nil {
		return 0, err
	}
	if err := checkUnitInterval("social_vulnerability", s); err != nil {
		return 0, err
	}
	if err := checkUnitInterval("elderly_share", e); err != nil {
		return 0, err
	}

	if e == 0 {
		return s, nil
	}
	return clamp01(w.SocialVulnerability*s + w.ElderlyShare*e), nil
}

// checkUnitInterval returns a ValidationError unless v is a real number in [0,1].
func checkUnitInterval(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Value: v, Reason: "must be a finite number"}
	}
	if v < 0 || v > 1 {
		return &ValidationError{Field: field, Value: v, Reason: "must be in [0,1]"}
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
