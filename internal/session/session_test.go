package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/fitcoach/internal/agent"
	"github.com/ashureev/fitcoach/internal/agent/agenttest"
	"github.com/ashureev/fitcoach/internal/assessment"
	"github.com/ashureev/fitcoach/internal/domain"
	"github.com/ashureev/fitcoach/internal/metrics"
	"github.com/ashureev/fitcoach/internal/session"
)

const greeting = "Hi Alex! I'm FitBot. Ask me anything about your new plan."

func ptr[T any](v T) *T { return &v }

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func sampleAssessment() domain.Assessment {
	return domain.Assessment{
		Goal:              domain.GoalGainMuscle,
		Gender:            domain.GenderMale,
		Age:               30,
		Height:            180,
		Weight:            75,
		ActivityLevel:     domain.ActivityModeratelyActive,
		DietaryPreference: "omnivore",
		SleepHours:        7,
		WaterIntake:       2.5,
	}
}

func newSession(t *testing.T, coach agent.Coach) *session.Session {
	t.Helper()
	svc, err := agent.NewServiceWithCoach(coach, "", nil, nil)
	require.NoError(t, err)
	s := session.New(svc, nil)
	s.Login(domain.User{Name: "Alex", Email: "alex@example.com"})
	return s
}

// chatReady returns a logged-in session with a generated plan and open chat.
func chatReady(t *testing.T, coach *agenttest.FakeCoach) *session.Session {
	t.Helper()
	s := newSession(t, coach)
	require.NoError(t, s.SubmitAssessment(context.Background(), sampleAssessment()))
	return s
}

func transcriptTexts(s *session.Session) []string {
	var out []string
	for _, m := range s.Snapshot().Transcript {
		out = append(out, string(m.Role)+":"+m.Text)
	}
	return out
}

func TestSubmitAssessmentSuccess(t *testing.T) {
	s := chatReady(t, &agenttest.FakeCoach{})

	snap := s.Snapshot()
	require.NotNil(t, snap.Plan)
	assert.Equal(t, agenttest.SamplePlan().Title, snap.Plan.Title)
	assert.True(t, snap.Completed)
	assert.True(t, snap.ChatOpen)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	require.NotNil(t, snap.Assessment)
	assert.Equal(t, sampleAssessment(), *snap.Assessment)
	assert.Equal(t, []domain.ChatMessage{{Role: domain.RoleModel, Text: greeting}}, snap.Transcript)
}

func TestSubmitAssessmentFailure(t *testing.T) {
	s := newSession(t, &agenttest.FakeCoach{PlanErr: errors.New("model overloaded")})

	err := s.SubmitAssessment(context.Background(), sampleAssessment())
	require.ErrorIs(t, err, agent.ErrPlanGeneration)

	snap := s.Snapshot()
	assert.Nil(t, snap.Plan)
	assert.False(t, snap.Completed)
	assert.False(t, snap.ChatOpen)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Transcript)
	assert.Equal(t, "Failed to generate your personalized plan. Please try again.", snap.Error)
}

func TestSubmitAssessmentChatStartFailureCountsAsGenerationFailure(t *testing.T) {
	s := newSession(t, &agenttest.FakeCoach{ChatErr: errors.New("chat unavailable")})

	err := s.SubmitAssessment(context.Background(), sampleAssessment())
	require.Error(t, err)

	snap := s.Snapshot()
	assert.Nil(t, snap.Plan)
	assert.False(t, snap.Completed)
	assert.Equal(t, agent.PlanFailureMessage, snap.Error)
}

func TestSubmitRequiresLogin(t *testing.T) {
	svc, err := agent.NewServiceWithCoach(&agenttest.FakeCoach{}, "", nil, nil)
	require.NoError(t, err)
	s := session.New(svc, nil)

	require.ErrorIs(t, s.SubmitAssessment(context.Background(), sampleAssessment()), session.ErrNotLoggedIn)
}

func TestResubmissionReplacesPreviousPlan(t *testing.T) {
	coach := &agenttest.FakeCoach{}
	s := chatReady(t, coach)
	_, err := s.SendChatMessage(context.Background(), "hello")
	require.NoError(t, err)

	coach.SetPlanErr(errors.New("boom"))
	require.Error(t, s.SubmitAssessment(context.Background(), sampleAssessment()))

	snap := s.Snapshot()
	assert.Nil(t, snap.Plan, "a failed resubmission must not leave the old plan behind")
	assert.Empty(t, snap.Transcript)
	assert.False(t, snap.ChatOpen)
	assert.NotEmpty(t, snap.Error)

	coach.SetPlanErr(nil)
	require.NoError(t, s.SubmitAssessment(context.Background(), sampleAssessment()))
	snap = s.Snapshot()
	assert.NotNil(t, snap.Plan)
	assert.Empty(t, snap.Error)
	assert.Len(t, snap.Transcript, 1)
	assert.Len(t, coach.Conversations(), 2)
}

func TestSubmitDraftValidatesBeforeCallingModel(t *testing.T) {
	coach := &agenttest.FakeCoach{}
	s := newSession(t, coach)
	s.NextStep()
	s.NextStep()
	s.NextStep()

	err := s.SubmitDraft(context.Background())
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("age"))
	assert.Equal(t, 0, coach.PlanCalls())
	assert.NotEmpty(t, s.Snapshot().Error)

	s.ApplyPatch(assessment.Patch{
		Age:               ptr(30),
		Height:            ptr(180.0),
		Weight:            ptr(75.0),
		DietaryPreference: ptr("omnivore"),
		SleepHours:        ptr(7.0),
		WaterIntake:       ptr(2.0),
	})
	require.NoError(t, s.SubmitDraft(context.Background()))
	assert.Equal(t, 1, coach.PlanCalls())
	assert.True(t, s.Snapshot().Completed)
}

func TestLogoutResetsEverything(t *testing.T) {
	s := chatReady(t, &agenttest.FakeCoach{})
	s.NextStep()
	_, err := s.SendChatMessage(context.Background(), "hi")
	require.NoError(t, err)

	s.Logout()

	snap := s.Snapshot()
	assert.Nil(t, snap.User)
	assert.Nil(t, snap.Plan)
	assert.Nil(t, snap.Assessment)
	assert.False(t, snap.Completed)
	assert.False(t, snap.ChatOpen)
	assert.Empty(t, snap.Transcript)
	assert.Empty(t, snap.Error)
	assert.Equal(t, assessment.StepGoal, snap.Step)

	_, ok := s.User()
	assert.False(t, ok)
}

func TestSendWithoutChatIsNoop(t *testing.T) {
	s := newSession(t, &agenttest.FakeCoach{})

	_, err := s.SendChatMessage(context.Background(), "anyone?")
	require.ErrorIs(t, err, session.ErrNoChat)
	assert.Empty(t, s.Snapshot().Transcript)
	assert.False(t, s.Snapshot().Loading)
}

func TestSendRejectsBlankMessage(t *testing.T) {
	s := chatReady(t, &agenttest.FakeCoach{})

	_, err := s.SendChatMessage(context.Background(), "   ")
	require.ErrorIs(t, err, session.ErrEmptyMessage)
	assert.Len(t, s.Snapshot().Transcript, 1)
}

func TestSendAppendsReplyAndApology(t *testing.T) {
	calls := 0
	coach := &agenttest.FakeCoach{
		NewConversation: func() *agenttest.FakeConversation {
			return &agenttest.FakeConversation{Reply: func(text string) (string, error) {
				calls++
				if calls == 2 {
					return "", errors.New("timeout")
				}
				return "answer to " + text, nil
			}}
		},
	}
	s := chatReady(t, coach)

	reply, err := s.SendChatMessage(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, "answer to q1", reply.Text)

	reply, err = s.SendChatMessage(context.Background(), "q2")
	require.NoError(t, err)
	assert.Equal(t, agent.ChatApologyMessage, reply.Text)

	assert.Equal(t, []string{
		"model:" + greeting,
		"user:q1",
		"model:answer to q1",
		"user:q2",
		"model:" + agent.ChatApologyMessage,
	}, transcriptTexts(s))
}

func TestConcurrentSendsKeepCallOrder(t *testing.T) {
	conv := &agenttest.FakeConversation{
		Gate:    make(chan struct{}),
		Started: make(chan string, 4),
	}
	coach := &agenttest.FakeCoach{NewConversation: func() *agenttest.FakeConversation { return conv }}
	s := chatReady(t, coach)

	results := make(chan error, 2)
	go func() {
		_, err := s.SendChatMessage(context.Background(), "first")
		results <- err
	}()
	require.Equal(t, "first", <-conv.Started)

	go func() {
		_, err := s.SendChatMessage(context.Background(), "second")
		results <- err
	}()

	require.Eventually(t, func() bool { return len(s.Snapshot().Transcript) == 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.Snapshot().Loading)
	assert.Equal(t, []string{"first"}, conv.Sent(), "second send must wait for the first reply")

	conv.Gate <- struct{}{}
	require.Equal(t, "second", <-conv.Started)
	conv.Gate <- struct{}{}

	require.NoError(t, <-results)
	require.NoError(t, <-results)

	assert.Equal(t, []string{
		"model:" + greeting,
		"user:first",
		"model:re: first",
		"user:second",
		"model:re: second",
	}, transcriptTexts(s))
	assert.False(t, s.Snapshot().Loading)
}

func TestLogoutDiscardsInFlightPlan(t *testing.T) {
	coach := &agenttest.FakeCoach{PlanGate: make(chan struct{})}
	s := newSession(t, coach)

	stale := counterValue(t, metrics.StaleResults.WithLabelValues(metrics.KindPlan))
	succeeded := counterValue(t, metrics.PlanGenerations.WithLabelValues(metrics.ResultSuccess))

	result := make(chan error, 1)
	go func() { result <- s.SubmitAssessment(context.Background(), sampleAssessment()) }()

	require.Eventually(t, func() bool { return s.Snapshot().Loading }, time.Second, 5*time.Millisecond)
	s.Logout()
	assert.False(t, s.Snapshot().Loading)

	coach.PlanGate <- struct{}{}
	require.ErrorIs(t, <-result, session.ErrStale)
	assert.Equal(t, stale+1, counterValue(t, metrics.StaleResults.WithLabelValues(metrics.KindPlan)))
	assert.Equal(t, succeeded+1, counterValue(t, metrics.PlanGenerations.WithLabelValues(metrics.ResultSuccess)),
		"the model call is counted once by its own result")

	snap := s.Snapshot()
	assert.Nil(t, snap.Plan)
	assert.False(t, snap.Completed)
	assert.Empty(t, snap.Transcript)
	assert.False(t, snap.Loading)
}

func TestLogoutDiscardsInFlightChatReply(t *testing.T) {
	conv := &agenttest.FakeConversation{Gate: make(chan struct{}), Started: make(chan string, 1)}
	coach := &agenttest.FakeCoach{NewConversation: func() *agenttest.FakeConversation { return conv }}
	s := chatReady(t, coach)
	stale := counterValue(t, metrics.StaleResults.WithLabelValues(metrics.KindChat))

	result := make(chan error, 1)
	go func() {
		_, err := s.SendChatMessage(context.Background(), "slow question")
		result <- err
	}()
	<-conv.Started

	s.Logout()
	conv.Gate <- struct{}{}
	require.ErrorIs(t, <-result, session.ErrStale)
	assert.Equal(t, stale+1, counterValue(t, metrics.StaleResults.WithLabelValues(metrics.KindChat)))

	assert.Empty(t, s.Snapshot().Transcript)
	assert.Nil(t, s.Snapshot().Plan)
}

func TestPlanXorErrorAfterEverySubmission(t *testing.T) {
	coach := &agenttest.FakeCoach{}
	s := newSession(t, coach)

	for i, fail := range []bool{false, true, true, false, true} {
		if fail {
			coach.SetPlanErr(errors.New("nope"))
		} else {
			coach.SetPlanErr(nil)
		}
		_ = s.SubmitAssessment(context.Background(), sampleAssessment())

		snap := s.Snapshot()
		hasPlan := snap.Plan != nil && snap.Completed
		hasErr := snap.Error != ""
		assert.True(t, hasPlan != hasErr, "submission %d: plan=%v error=%q", i, hasPlan, snap.Error)
		assert.Equal(t, hasPlan, len(snap.Transcript) == 1, "submission %d", i)
		assert.False(t, snap.Loading)
	}
}

func TestClearErrorAndWizardNavigation(t *testing.T) {
	s := newSession(t, &agenttest.FakeCoach{PlanErr: errors.New("x")})
	_ = s.SubmitAssessment(context.Background(), sampleAssessment())
	require.NotEmpty(t, s.Snapshot().Error)

	s.ClearError()
	assert.Empty(t, s.Snapshot().Error)

	assert.Equal(t, assessment.StepProfile, s.NextStep())
	assert.Equal(t, assessment.StepGoal, s.PrevStep())
	assert.Equal(t, assessment.StepGoal, s.PrevStep())
}
