// Package session implements the per-user session state store: the logged-in
// user, the assessment wizard, the generated plan and the plan chat.
//
// Every remote call runs outside the store lock. Results are applied only if
// the session generation is unchanged since the call was issued, so a logout
// or a new submission makes in-flight results stale and they are dropped.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/fitcoach/internal/agent"
	"github.com/ashureev/fitcoach/internal/assessment"
	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/metrics"
)

var (
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrNoChat       = errors.New("no chat session is open")
	ErrEmptyMessage = errors.New("message is empty")
	ErrStale        = errors.New("session changed while the request was in flight")
)

// Assistant is the model capability the store drives. *agent.Service
// implements it.
type Assistant interface {
	GeneratePlan(ctx context.Context, a domain.Assessment) (*domain.FitnessPlan, error)
	StartChat(ctx context.Context, plan *domain.FitnessPlan) (agent.Conversation, error)
	Greeting(userName string) string
}

// entry is one transcript slot. A pending entry is a reserved reply that has
// not arrived yet.
type entry struct {
	msg     domain.ChatMessage
	pending bool
}

// chat owns one open conversation and its send queue. tail is closed when the
// most recently queued send finishes.
type chat struct {
	conv agent.Conversation
	tail chan struct{}
}

// Session is the state store for one user tab.
type Session struct {
	assistant Assistant
	logger    *slog.Logger

	mu         sync.Mutex
	user       *domain.User
	wizard     *assessment.Wizard
	assessment *domain.Assessment
	plan       *domain.FitnessPlan
	completed  bool
	transcript []entry
	chat       *chat
	inFlight   int
	errMsg     string
	gen        uint64
	lastSeen   time.Time
}

// New creates an empty, logged-out session.
func New(assistant Assistant, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		assistant: assistant,
		logger:    logger,
		wizard:    assessment.NewWizard(),
		lastSeen:  time.Now(),
	}
}

// Login records the user. Nothing else changes.
func (s *Session) Login(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.LastSeenAt = now
	s.user = &u
}

// Logout resets the whole session in one step. Calls still in flight become
// stale.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.user = nil
	s.reset()
	s.wizard.Reset()
}

// reset clears everything derived from a submission. Caller holds mu.
func (s *Session) reset() {
	s.gen++
	s.assessment = nil
	s.plan = nil
	s.completed = false
	s.transcript = nil
	s.chat = nil
	s.inFlight = 0
	s.errMsg = ""
}

// User returns the logged-in user, if any.
func (s *Session) User() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// NextStep advances the wizard.
func (s *Session) NextStep() assessment.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.wizard.Next()
}

// PrevStep moves the wizard back.
func (s *Session) PrevStep() assessment.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.wizard.Prev()
}

// GoToStep jumps the wizard to step.
func (s *Session) GoToStep(step assessment.Step) assessment.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.wizard.GoTo(step)
}

// ApplyPatch merges answers into the wizard draft.
func (s *Session) ApplyPatch(p assessment.Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.wizard.Apply(p)
}

// ClearError dismisses the last submission error so the wizard can be used
// again.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.errMsg = ""
}

// SubmitDraft completes the wizard draft and submits it. An incomplete draft
// fails with a *domain.ValidationError and the model is not called.
func (s *Session) SubmitDraft(ctx context.Context) error {
	s.mu.Lock()
	a, err := s.wizard.Complete()
	if err != nil {
		s.errMsg = err.Error()
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	return s.SubmitAssessment(ctx, a)
}

// SubmitAssessment generates a plan for a and opens the plan chat.
// On return exactly one of plan or error is set, unless the call went stale.
func (s *Session) SubmitAssessment(ctx context.Context, a domain.Assessment) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	s.touch()
	s.reset()
	s.assessment = &a
	s.inFlight++
	gen := s.gen
	userName := s.user.Name
	s.mu.Unlock()
	defer s.finish(gen)

	plan, err := s.assistant.GeneratePlan(ctx, a)
	var conv agent.Conversation
	if err == nil {
		conv, err = s.assistant.StartChat(ctx, plan)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		metrics.StaleResults.WithLabelValues(metrics.KindPlan).Inc()
		s.logger.Info("discarding stale plan result")
		return ErrStale
	}
	if err != nil {
		s.errMsg = agent.PlanFailureMessage
		return err
	}

	s.plan = plan
	s.completed = true
	s.chat = &chat{conv: conv}
	s.transcript = []entry{{msg: domain.ChatMessage{Role: domain.RoleModel, Text: s.assistant.Greeting(userName)}}}
	return nil
}

// SendChatMessage appends text to the transcript, reserves the reply slot
// right after it and waits for the reply. Sends on one conversation run one
// at a time in call order.
func (s *Session) SendChatMessage(ctx context.Context, text string) (domain.ChatMessage, error) {
	s.mu.Lock()
	if s.chat == nil {
		s.mu.Unlock()
		return domain.ChatMessage{}, ErrNoChat
	}
	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return domain.ChatMessage{}, ErrEmptyMessage
	}
	s.touch()
	c := s.chat
	gen := s.gen
	s.transcript = append(s.transcript, entry{msg: domain.ChatMessage{Role: domain.RoleUser, Text: text}})
	slot := len(s.transcript)
	s.transcript = append(s.transcript, entry{msg: domain.ChatMessage{Role: domain.RoleModel}, pending: true})
	prev := c.tail
	done := make(chan struct{})
	c.tail = done
	s.inFlight++
	s.mu.Unlock()

	defer s.finish(gen)

	reply := s.exchange(ctx, c, prev, done, gen, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		metrics.StaleResults.WithLabelValues(metrics.KindChat).Inc()
		return domain.ChatMessage{}, ErrStale
	}
	msg := domain.ChatMessage{Role: domain.RoleModel, Text: reply}
	s.transcript[slot] = entry{msg: msg}
	return msg, nil
}

// exchange waits for the previous send on c, then sends text. done is
// closed once this turn no longer holds the queue.
func (s *Session) exchange(ctx context.Context, c *chat, prev <-chan struct{}, done chan struct{}, gen uint64, text string) string {
	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			go func() {
				<-prev
				close(done)
			}()
			return agent.ChatApologyMessage
		}
	}
	defer close(done)
	if !s.current(gen) {
		return ""
	}
	reply, err := c.conv.Send(ctx, text)
	if err != nil || reply == "" {
		if err != nil {
			s.logger.Warn("chat send failed", "error", err)
		}
		return agent.ChatApologyMessage
	}
	return reply
}

func (s *Session) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// finish ends one in-flight call of generation gen.
func (s *Session) finish(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen && s.inFlight > 0 {
		s.inFlight--
	}
}

// touch records activity. Caller holds mu.
func (s *Session) touch() {
	s.lastSeen = time.Now()
	if s.user != nil {
		s.user.LastSeenAt = s.lastSeen
	}
}

// LastSeen returns the time of the last mutation.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Snapshot is an immutable copy of the session for rendering. Plan points at
// a value the store never mutates.
type Snapshot struct {
	User       *domain.User           `json:"user"`
	Step       assessment.Step        `json:"step"`
	StepTitle  string                 `json:"stepTitle"`
	Progress   int                    `json:"progress"`
	Draft      domain.AssessmentDraft `json:"draft"`
	Summary    []assessment.Row       `json:"summary"`
	Assessment *domain.Assessment     `json:"assessment"`
	Plan       *domain.FitnessPlan    `json:"plan"`
	Completed  bool                   `json:"assessmentCompleted"`
	Transcript []domain.ChatMessage   `json:"chatHistory"`
	ChatOpen   bool                   `json:"chatOpen"`
	Loading    bool                   `json:"isLoading"`
	Error      string                 `json:"error,omitempty"`
}

// Snapshot copies the current state. Reserved reply slots are omitted.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Step:       s.wizard.Step(),
		StepTitle:  s.wizard.Step().Title(),
		Progress:   s.wizard.Progress(),
		Draft:      s.wizard.Draft(),
		Summary:    s.wizard.Summary(),
		Plan:       s.plan,
		Completed:  s.completed,
		Transcript: make([]domain.ChatMessage, 0, len(s.transcript)),
		ChatOpen:   s.chat != nil,
		Loading:    s.inFlight > 0,
		Error:      s.errMsg,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if s.assessment != nil {
		a := *s.assessment
		snap.Assessment = &a
	}
	for _, e := range s.transcript {
		if !e.pending {
			snap.Transcript = append(snap.Transcript, e.msg)
		}
	}
	return snap
}
