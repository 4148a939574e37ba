// Package agenttest provides sample plans and scriptable fakes of the agent
// interfaces for tests in other packages.
package agenttest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ashureev/fitcoach/internal/agent"
	"github.com/ashureev/fitcoach/internal/domain"
)

// Days is the week order used by SamplePlan.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// SamplePlan returns a valid 7-day plan. Wednesday and Sunday are rest days
// without exercises; only Monday carries notes.
func SamplePlan() *domain.FitnessPlan {
	plan := &domain.FitnessPlan{
		Title:   "Your 4-Week Kickstart",
		Summary: "A balanced start mixing strength, cardio and recovery.",
		LifestyleRecommendations: domain.LifestyleRecommendations{
			Sleep:            "Aim for 7-8 hours and keep a fixed bedtime.",
			Hydration:        "Drink at least 2.5 liters of water daily.",
			StressManagement: "Take a 10 minute walk after lunch.",
		},
	}
	for i, day := range Days {
		w := domain.DailyWorkout{Day: day, Focus: "Full Body Strength"}
		switch day {
		case "Wednesday", "Sunday":
			w.Focus = "Rest"
			w.Exercises = []domain.WorkoutExercise{}
		default:
			w.Exercises = []domain.WorkoutExercise{
				{Name: "Squats", Sets: 3, Reps: "10-12", Rest: "60s"},
				{Name: "Push-ups", Sets: 3, Reps: "8-10", Rest: "60s"},
			}
		}
		if day == "Monday" {
			w.Notes = "Warm up for 5 minutes first."
		}
		plan.WorkoutPlan = append(plan.WorkoutPlan, w)

		plan.NutritionPlan = append(plan.NutritionPlan, domain.DailyNutrition{
			Day:            day,
			TotalCalories:  2000 + i*10,
			Macronutrients: domain.Macronutrients{Protein: 150, Carbs: 200, Fats: 60},
			Meals: []domain.Meal{
				{Name: "Breakfast", Description: "Oatmeal with berries", Calories: 450},
				{Name: "Lunch", Description: "Grilled chicken salad", Calories: 600},
				{Name: "Dinner", Description: "Salmon with rice", Calories: 700},
			},
		})
	}
	return plan
}

// SamplePlanJSON is SamplePlan encoded the way the model returns it.
func SamplePlanJSON() string {
	data, err := json.Marshal(SamplePlan())
	if err != nil {
		panic(err)
	}
	return string(data)
}

// FakeCoach is a scriptable agent.Coach.
type FakeCoach struct {
	mu sync.Mutex

	// Plan is returned by GeneratePlan; SamplePlan when nil.
	Plan *domain.FitnessPlan
	// PlanErr makes GeneratePlan fail.
	PlanErr error
	// ChatErr makes StartChat fail.
	ChatErr error
	// PlanGate, when set, blocks GeneratePlan until it receives a value.
	PlanGate chan struct{}
	// NewConversation builds each conversation; a default FakeConversation otherwise.
	NewConversation func() *FakeConversation

	planCalls     int
	conversations []*FakeConversation
}

// GeneratePlan implements agent.Planner.
func (f *FakeCoach) GeneratePlan(ctx context.Context, _ domain.Assessment) (*domain.FitnessPlan, error) {
	f.mu.Lock()
	f.planCalls++
	gate, plan, err := f.PlanGate, f.Plan, f.PlanErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if plan == nil {
		plan = SamplePlan()
	}
	return plan, nil
}

// StartChat implements agent.ChatStarter.
func (f *FakeCoach) StartChat(_ context.Context, _ *domain.FitnessPlan) (agent.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ChatErr != nil {
		return nil, f.ChatErr
	}
	var conv *FakeConversation
	if f.NewConversation != nil {
		conv = f.NewConversation()
	} else {
		conv = &FakeConversation{}
	}
	f.conversations = append(f.conversations, conv)
	return conv, nil
}

// SetPlanErr changes the GeneratePlan failure for later calls.
func (f *FakeCoach) SetPlanErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PlanErr = err
}

// SetPlanGate changes the GeneratePlan gate for later calls.
func (f *FakeCoach) SetPlanGate(gate chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PlanGate = gate
}

// PlanCalls returns how often GeneratePlan ran.
func (f *FakeCoach) PlanCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.planCalls
}

// Conversations returns every conversation handed out so far.
func (f *FakeCoach) Conversations() []*FakeConversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeConversation(nil), f.conversations...)
}

// FakeConversation is a scriptable agent.Conversation.
type FakeConversation struct {
	mu sync.Mutex

	// Reply computes the answer; "re: <text>" when nil.
	Reply func(text string) (string, error)
	// Gate, when set, blocks each Send until it receives a value.
	Gate chan struct{}
	// Started, when set, receives the text of each Send as it begins.
	Started chan string

	sent []string
}

// Send implements agent.Conversation.
func (c *FakeConversation) Send(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	c.sent = append(c.sent, text)
	reply, gate, started := c.Reply, c.Gate, c.Started
	c.mu.Unlock()

	if started != nil {
		started <- text
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if reply == nil {
		return "re: " + text, nil
	}
	return reply(text)
}

// Sent returns the messages received so far, in call order.
func (c *FakeConversation) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}
