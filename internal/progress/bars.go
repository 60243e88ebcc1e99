package progress

// Source is the playback state the bars are projected from.
type Source interface {
	// Len returns the number of items.
	Len() int
	// Shown reports whether item i has completed or was skipped.
	Shown(i int) bool
	// Active returns the index of the item being timed, if any.
	Active() (int, bool)
	// Fraction returns the live fraction of the active item.
	Fraction() float64
}

// Bars returns the fill fraction of every item: 1 when shown, the live
// fraction for the active item and 0 otherwise.
func Bars(src Source) []float64 {
	n := src.Len()
	bars := make([]float64, n)
	active, ok := src.Active()
	for i := 0; i < n; i++ {
		switch {
		case src.Shown(i):
			bars[i] = 1
		case ok && i == active:
			bars[i] = clamp(src.Fraction())
		}
	}
	return bars
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
