package posts

import "sync"

const (
	StatusUploading = "uploading"
	StatusProgress  = "progress"
	StatusComplete  = "complete"
)

const (
	PhaseImages    = "images"
	PhaseImage     = "image"
	PhaseDocuments = "documents"
	PhaseDocument  = "document"
	PhasePost      = "post"
)

// ProgressEvent reports one step of a post creation.
// A terminal event carries either Data or Error.
type ProgressEvent struct {
	Status   string `json:"status,omitempty"`
	Type     string `json:"type,omitempty"`
	Current  int    `json:"current,omitempty"`
	Total    int    `json:"total,omitempty"`
	Progress *int   `json:"progress,omitempty"`
	Error    string `json:"error,omitempty"`
	Data     *Post  `json:"data,omitempty"`
}

// Terminal reports whether no further events follow e.
func (e ProgressEvent) Terminal() bool {
	return e.Error != "" || (e.Status == StatusComplete && e.Type == PhasePost)
}

// ProgressSink receives the events of a single creation.
// The producer calls Close once after the terminal event.
type ProgressSink interface {
	Send(event ProgressEvent)
	Close()
}

// ProgressStream is a ProgressSink bound to one request.
// Events are buffered on a channel read by the consumer; once the consumer
// detaches, further events are discarded instead of blocking the producer.
type ProgressStream struct {
	events chan ProgressEvent
	done   chan struct{}

	mu     sync.Mutex
	closed bool
	detach sync.Once
}

// NewProgressStream creates a stream buffering up to bufferSize events.
func NewProgressStream(bufferSize int) *ProgressStream {
	return &ProgressStream{
		events: make(chan ProgressEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Events returns the channel of emitted events. It is closed after the terminal event.
func (s *ProgressStream) Events() <-chan ProgressEvent {
	return s.events
}

// Send delivers event unless the stream is closed or the consumer has detached.
func (s *ProgressStream) Send(event ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.events <- event:
	case <-s.done:
	}
}

// Close ends the stream. Calling Close more than once is safe.
func (s *ProgressStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// Detach tells the producer the consumer has gone away.
func (s *ProgressStream) Detach() {
	s.detach.Do(func() {
		close(s.done)
	})
}

type discardSink struct{}

func (discardSink) Send(ProgressEvent) {}
func (discardSink) Close()             {}
