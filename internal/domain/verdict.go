package domain

// Verdict is the outcome of classifying a claim against the record history.
type Verdict string

// Classification outcomes, highest priority first.
const (
	// VerdictExactDuplicate means the perceptual hash matched a stored record.
	VerdictExactDuplicate Verdict = "exact_duplicate"
	// VerdictSimilarImage means embedding similarity crossed the upper band.
	VerdictSimilarImage Verdict = "similar_image"
	// VerdictSameNarrative means embedding similarity crossed the lower band.
	VerdictSameNarrative Verdict = "same_narrative"
	// VerdictNoDuplicate means no stored record crossed any threshold.
	VerdictNoDuplicate Verdict = "no_duplicate"
)

// Matched reports whether the verdict attaches the claim to an existing cluster.
func (v Verdict) Matched() bool {
	switch v {
	case VerdictExactDuplicate, VerdictSimilarImage, VerdictSameNarrative:
		return true
	default:
		return false
	}
}

func (v Verdict) String() string { return string(v) }
