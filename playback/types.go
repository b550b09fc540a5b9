package playback

// State of the playback engine
type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Frame is what the rendering sink draws for one cursor position: the processed
// series from sample 0 through Index inclusive.
type Frame struct {
	DatasetID   string    `json:"dataset_id"`
	Index       int       `json:"index"`
	Total       int       `json:"total"`
	TimeS       []int     `json:"time_s"`
	AltRawM     []float64 `json:"alt_raw_m"`
	AltCleanM   []float64 `json:"alt_clean_m"`
	VelCleanMPS []float64 `json:"vel_clean_mps"`
	Phase       string    `json:"phase,omitempty"`
}

// Source supplies frames of a processed dataset
type Source interface {
	Len() int
	Frame(idx int) Frame
}

// Sink receives rendered frames
type Sink interface {
	Render(frame Frame)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(frame Frame)

func (f SinkFunc) Render(frame Frame) { f(frame) }

// MultiSink fans a frame out to several sinks in order
type MultiSink []Sink

func (m MultiSink) Render(frame Frame) {
	for _, s := range m {
		if s != nil {
			s.Render(frame)
		}
	}
}
