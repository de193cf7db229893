package canvas

import (
	"image"
	"math/rand"
	"sync"
	"time"

	"toddlerdoc-backend/internal/scribbles"
)

// CanvasWidth and CanvasHeight are the fixed editing canvas dimensions.
const (
	CanvasWidth  = 800
	CanvasHeight = 600

	// DefaultStagger is the delay between strokes appearing on the canvas.
	DefaultStagger = 200 * time.Millisecond
)

// Stroke is one scribble placed on the canvas.
type Stroke struct {
	Commands []PathCommand
	Color    string
	Width    float64
}

// Session is the server-side canvas state for one document. Strokes added
// in a batch appear one at a time on a stagger; a newer batch or a clear
// supersedes the running reveal.
type Session struct {
	DocumentID string
	FileName   string
	Style      scribbles.Style

	mu       sync.Mutex
	base     image.Image // nil when the document is a PDF
	isPDF    bool
	caption  string
	strokes  []Stroke
	genToken int
	clearSeq int
	stagger  time.Duration
}

// NewSession creates a canvas session. base is nil for PDF documents,
// which render a placeholder page instead.
func NewSession(documentID, fileName string, style scribbles.Style, base image.Image, isPDF bool, caption string) *Session {
	return &Session{
		DocumentID: documentID,
		FileName:   fileName,
		Style:      style,
		base:       base,
		isPDF:      isPDF,
		caption:    caption,
		stagger:    DefaultStagger,
	}
}

// SetStagger overrides the reveal interval. Tests use this to avoid
// real-time waits.
func (s *Session) SetStagger(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stagger = d
}

// AddStrokes starts a staggered reveal of the given strokes. If another
// batch arrives while this one is revealing, the remaining strokes of the
// old batch are flushed onto the canvas immediately so nothing is lost.
func (s *Session) AddStrokes(strokes []Stroke) {
	if len(strokes) == 0 {
		return
	}
	s.mu.Lock()
	s.genToken++
	token := s.genToken
	clearSeq := s.clearSeq
	interval := s.stagger
	s.mu.Unlock()

	go s.reveal(token, clearSeq, strokes, interval)
}

func (s *Session) reveal(token, clearSeq int, strokes []Stroke, interval time.Duration) {
	for i := range strokes {
		if i > 0 {
			time.Sleep(interval)
		}
		s.mu.Lock()
		if s.clearSeq != clearSeq {
			// Canvas was cleared; drop the rest of the batch.
			s.mu.Unlock()
			return
		}
		if s.genToken != token {
			// Superseded by a newer batch; flush what is left.
			s.strokes = append(s.strokes, strokes[i:]...)
			s.mu.Unlock()
			return
		}
		s.strokes = append(s.strokes, strokes[i])
		s.mu.Unlock()
	}
}

// Clear removes all strokes and the caption and cancels any running reveal.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genToken++
	s.clearSeq++
	s.strokes = nil
	s.caption = ""
}

// Strokes returns a snapshot of the strokes currently on the canvas.
func (s *Session) Strokes() []Stroke {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Stroke, len(s.strokes))
	copy(out, s.strokes)
	return out
}

// Caption returns the caption drawn under the canvas, if any.
func (s *Session) Caption() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caption
}

// SetCaption updates the canvas caption.
func (s *Session) SetCaption(caption string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caption = caption
}

// snapshot returns everything Render needs under one lock acquisition.
func (s *Session) snapshot() (image.Image, bool, string, []Stroke) {
	s.mu.Lock()
	defer s.mu.Unlock()
	strokes := make([]Stroke, len(s.strokes))
	copy(strokes, s.strokes)
	return s.base, s.isPDF, s.caption, strokes
}

// Manager tracks live canvas sessions keyed by document ID.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager constructs a Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Open registers a session, replacing any previous session for the document.
func (m *Manager) Open(session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.DocumentID] = session
}

// Get returns the session for a document, if one is open.
func (m *Manager) Get(documentID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[documentID]
	return session, ok
}

// Close removes the session for a document.
func (m *Manager) Close(documentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, documentID)
}

// RandomColor picks a palette color for a style using the package RNG.
func RandomColor(style scribbles.Style) string {
	palette := style.Palette()
	return palette[rand.Intn(len(palette))]
}
