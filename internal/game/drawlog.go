package game

// A single pen movement. Immutable once appended.
type StrokeSegment struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	LastX float64 `json:"lastX"`
	LastY float64 `json:"lastY"`
	Color string  `json:"color"`
}

// DrawingLog is the ordered stroke history for the current turn. It is
// cleared at the start of every drawing phase; only the current drawer
// appends to it.
type DrawingLog struct {
	segments []StrokeSegment
}

func NewDrawingLog() *DrawingLog {
	return &DrawingLog{segments: make([]StrokeSegment, 0)}
}

func (l *DrawingLog) Append(seg StrokeSegment) {
	l.segments = append(l.segments, seg)
}

// Undo removes the most recent segment. Returns false on an empty log.
func (l *DrawingLog) Undo() bool {
	if len(l.segments) == 0 {
		return false
	}
	l.segments = l.segments[:len(l.segments)-1]
	return true
}

func (l *DrawingLog) Clear() {
	l.segments = make([]StrokeSegment, 0)
}

func (l *DrawingLog) Len() int {
	return len(l.segments)
}

// Snapshot returns a copy for catch-up delivery to joiners and for the
// full-log replace after an undo.
func (l *DrawingLog) Snapshot() []StrokeSegment {
	segments := make([]StrokeSegment, len(l.segments))
	copy(segments, l.segments)
	return segments
}
