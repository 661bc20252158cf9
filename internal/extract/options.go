package extract

// Options holds the extraction thresholds.
type Options struct {
	// RepeatThreshold is the number of pages a line must appear on before it
	// is a header/footer candidate.
	RepeatThreshold int
	// MaxRemovableLen is the longest line that may be removed.
	MaxRemovableLen int
	// HardLineCeiling short-circuits removal for long lines.
	HardLineCeiling int
	// MaxOutputChars caps the final text, counted in runes.
	MaxOutputChars int

	RawMinLen        int
	RawKeepRatio     float64
	ShortFilteredLen int
	RawSurplus       int
}

// DefaultOptions returns the thresholds used when no pipeline file is configured.
func DefaultOptions() Options {
	return Options{
		RepeatThreshold:  3,
		MaxRemovableLen:  80,
		HardLineCeiling:  120,
		MaxOutputChars:   80000,
		RawMinLen:        4000,
		RawKeepRatio:     0.35,
		ShortFilteredLen: 1200,
		RawSurplus:       2000,
	}
}
