package matching

// Band is the confidence of a match.
type Band string

const (
	BandHigh   Band = "HIGH"
	BandMedium Band = "MEDIUM"
	BandLow    Band = "LOW"
	BandNone   Band = "NONE"
)

// Lower bounds of the bands.
const (
	HighThreshold   = 150
	MediumThreshold = 75
	LowThreshold    = 25
)

// BandOf returns the band for a score.
func BandOf(points int) Band {
	switch {
	case points >= HighThreshold:
		return BandHigh
	case points >= MediumThreshold:
		return BandMedium
	case points >= LowThreshold:
		return BandLow
	}
	return BandNone
}
