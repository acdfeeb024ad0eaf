// Package classify maps confidence to a verdict and applies the risk and
// stability demotions. It never promotes.
package classify

import "github.com/okian/goalwatch/internal/domain/model"

// Bands are inclusive lower bounds on confidence.
type Bands struct {
	Strong    float64 `koanf:"strong" validate:"gt=0,lte=1"`
	Candidate float64 `koanf:"candidate" validate:"gt=0,ltefield=Strong"`
	Weak      float64 `koanf:"weak" validate:"gt=0,ltefield=Candidate"`
}

// Config holds the classifier tunables.
type Config struct {
	MaxScore       int     `koanf:"max_score" validate:"gt=0"`
	Bands          Bands   `koanf:"bands"`
	MinStability   float64 `koanf:"min_stability" validate:"gte=0,lte=1"`
	StrongMargin   float64 `koanf:"strong_margin"`
	RecoveryMargin float64 `koanf:"recovery_margin"`
}

// DefaultConfig returns the stock classifier.
func DefaultConfig() Config {
	return Config{
		MaxScore:       30,
		Bands:          Bands{Strong: 0.70, Candidate: 0.55, Weak: 0.45},
		MinStability:   0.35,
		StrongMargin:   4,
		RecoveryMargin: 2,
	}
}

// Confidence normalises a score against the full point scale.
func Confidence(score int, cfg Config) float64 {
	if cfg.MaxScore <= 0 {
		return 0
	}
	return float64(score) / float64(cfg.MaxScore)
}

// Base returns the confidence band before any demotion.
func Base(confidence float64, b Bands) model.Classification {
	switch {
	case confidence >= b.Strong:
		return model.StrongCandidate
	case confidence >= b.Candidate:
		return model.Candidate
	case confidence >= b.Weak:
		return model.WeakCandidate
	default:
		return model.Reject
	}
}

// Verdict is the classifier outcome.
type Verdict struct {
	Base           model.Classification
	Classification model.Classification
	// Unstable is set when a weak candidate was rejected for low stability.
	Unstable bool
}

// Classify applies the base band, then the demotions in order: risk
// warning, thin margin for strong, low stability for candidate. A weak
// candidate below the stability floor is rejected unless its margin reaches
// the recovery margin.
func Classify(confidence float64, riskWarned bool, st model.StabilityResult, cfg Config) Verdict {
	base := Base(confidence, cfg.Bands)
	c := base

	if riskWarned {
		switch c {
		case model.StrongCandidate:
			c = model.Candidate
		case model.Candidate:
			c = model.WeakCandidate
		}
	}
	if c == model.StrongCandidate && st.Margin < cfg.StrongMargin {
		c = model.Candidate
	}
	if c == model.Candidate && st.Index < cfg.MinStability+0.1 {
		c = model.WeakCandidate
	}

	v := Verdict{Base: base, Classification: c}
	if c == model.WeakCandidate && st.Index < cfg.MinStability && st.Margin < cfg.RecoveryMargin {
		v.Classification = model.Reject
		v.Unstable = true
	}
	return v
}
