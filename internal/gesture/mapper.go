package gesture

import "time"

// Mapper routes pointer events to intents by the region they started in.
// Rewind fires on release of a press in the rewind region; the advance
// region goes through a Classifier.
type Mapper struct {
	classifier *Classifier
	down       bool
	region     Region
}

// NewMapper creates a mapper whose holds commit after holdDelay.
func NewMapper(holdDelay time.Duration) *Mapper {
	return &Mapper{classifier: NewClassifier(holdDelay)}
}

// Phase returns the phase of the advance region classifier.
func (m *Mapper) Phase() Phase { return m.classifier.Phase() }

// Down handles a pointer going down at x on a surface of the given width.
func (m *Mapper) Down(x, width float64, now time.Time) Intent {
	if m.down {
		return IntentNone
	}
	m.down = true
	m.region = RegionAt(x, width)
	if m.region == RegionRewind {
		return IntentNone
	}
	return m.classifier.Press(now)
}

// Up handles the pointer being released. The position is not consulted: a
// press belongs to the region it started in.
func (m *Mapper) Up(now time.Time) Intent {
	if !m.down {
		return IntentNone
	}
	m.down = false
	if m.region == RegionRewind {
		return IntentRewind
	}
	return m.classifier.Release(now)
}

// Cancel aborts any press in progress.
func (m *Mapper) Cancel() Intent {
	if !m.down {
		return IntentNone
	}
	m.down = false
	if m.region == RegionRewind {
		return IntentNone
	}
	return m.classifier.Cancel()
}

// Tick lets a pending hold commit.
func (m *Mapper) Tick(now time.Time) Intent {
	return m.classifier.Tick(now)
}
