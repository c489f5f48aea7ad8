package models

import (
	"fmt"
	"time"
)

// ExerciseType is one of the fixed exercise categories tracked per user.
type ExerciseType string

const (
	ExerciseDrag ExerciseType = "drag"
	ExerciseFill ExerciseType = "fill"
	ExerciseMult ExerciseType = "mult"
)

// ExerciseTypes lists every exercise type in storage order.
var ExerciseTypes = []ExerciseType{ExerciseDrag, ExerciseFill, ExerciseMult}

// ScoreColumn is the column holding the best score for t.
func (t ExerciseType) ScoreColumn() string {
	return string(t) + "_score"
}

// FlagColumn is the column holding the completion flag for t.
func (t ExerciseType) FlagColumn() string {
	return string(t)
}

// Valid reports whether t is a known exercise type.
func (t ExerciseType) Valid() bool {
	switch t {
	case ExerciseDrag, ExerciseFill, ExerciseMult:
		return true
	}
	return false
}

// Progress is the per-account exercise completion and score state.
type Progress struct {
	UserEmail string    `json:"user_email"`
	DragScore int       `json:"drag_score"`
	FillScore int       `json:"fill_score"`
	MultScore int       `json:"mult_score"`
	Drag      bool      `json:"drag"`
	Fill      bool      `json:"fill"`
	Mult      bool      `json:"mult"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// DefaultProgress is the zero-valued record reported for users that have
// not completed any exercise.
func DefaultProgress(email string) *Progress {
	return &Progress{UserEmail: email}
}

// NewProgress creates the first record for email after completing exercise
// with score.
func NewProgress(email string, exercise ExerciseType, score int) *Progress {
	p := DefaultProgress(email)
	p.Record(exercise, score)
	return p
}

// Record applies the monotonic merge for one exercise: the score only
// grows and the completion flag is set.
func (p *Progress) Record(exercise ExerciseType, score int) {
	switch exercise {
	case ExerciseDrag:
		p.DragScore = max(p.DragScore, score)
		p.Drag = true
	case ExerciseFill:
		p.FillScore = max(p.FillScore, score)
		p.Fill = true
	case ExerciseMult:
		p.MultScore = max(p.MultScore, score)
		p.Mult = true
	}
}

// TotalScore sums the per-exercise scores.
func (p *Progress) TotalScore() int {
	return p.DragScore + p.FillScore + p.MultScore
}

// Summary condenses p for account listings.
func (p *Progress) Summary() ProgressSummary {
	return ProgressSummary{Drag: p.Drag, Fill: p.Fill, Mult: p.Mult, Score: p.TotalScore()}
}

// Completion derives the completion status from p.
func (p *Progress) Completion() CompletionStatus {
	c := CompletionStatus{Drag: p.Drag, Fill: p.Fill, Mult: p.Mult}
	for _, done := range []bool{p.Drag, p.Fill, p.Mult} {
		if done {
			c.TotalCompleted++
		}
	}
	return c
}

// CompletionStatus reports which exercise types are done.
type CompletionStatus struct {
	Drag           bool `json:"drag"`
	Fill           bool `json:"fill"`
	Mult           bool `json:"mult"`
	TotalCompleted int  `json:"totalCompleted"`
}

// ProgressUpdate is one exercise submission.
type ProgressUpdate struct {
	UserEmail string
	Score     int
	Drag      bool
	Fill      bool
	Mult      bool
}

// Exercise resolves the single exercise type flagged in u. Submissions
// with no flag or several flags are rejected.
func (u ProgressUpdate) Exercise() (ExerciseType, error) {
	var found []ExerciseType
	if u.Drag {
		found = append(found, ExerciseDrag)
	}
	if u.Fill {
		found = append(found, ExerciseFill)
	}
	if u.Mult {
		found = append(found, ExerciseMult)
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return "", fmt.Errorf("one of drag, fill or mult must be set")
	default:
		return "", fmt.Errorf("only one of drag, fill or mult may be set, got %d", len(found))
	}
}
