package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExerciseType_Columns(t *testing.T) {
	assert.Equal(t, "drag_score", ExerciseDrag.ScoreColumn())
	assert.Equal(t, "fill", ExerciseFill.FlagColumn())
	assert.True(t, ExerciseMult.Valid())
	assert.False(t, ExerciseType("match").Valid())
}

func TestNewProgress_OnlyFlaggedExercise(t *testing.T) {
	p := NewProgress("a@x.com", ExerciseDrag, 50)

	assert.Equal(t, &Progress{UserEmail: "a@x.com", DragScore: 50, Drag: true}, p)
}

func TestProgress_RecordIsMonotonic(t *testing.T) {
	p := NewProgress("a@x.com", ExerciseDrag, 50)

	p.Record(ExerciseDrag, 30)
	assert.Equal(t, 50, p.DragScore)

	p.Record(ExerciseDrag, 70)
	assert.Equal(t, 70, p.DragScore)

	p.Record(ExerciseFill, 10)
	assert.Equal(t, 10, p.FillScore)
	assert.True(t, p.Fill)
	assert.False(t, p.Mult)
}

func TestProgress_Completion(t *testing.T) {
	assert.Equal(t, CompletionStatus{}, DefaultProgress("a@x.com").Completion())

	p := &Progress{Drag: true, Mult: true}
	assert.Equal(t, CompletionStatus{Drag: true, Mult: true, TotalCompleted: 2}, p.Completion())

	p.Fill = true
	assert.Equal(t, 3, p.Completion().TotalCompleted)
}

func TestProgress_Summary(t *testing.T) {
	p := &Progress{DragScore: 10, FillScore: 20, MultScore: 5, Fill: true}

	assert.Equal(t, ProgressSummary{Fill: true, Score: 35}, p.Summary())
}

func TestProgressUpdate_Exercise(t *testing.T) {
	tests := []struct {
		name    string
		upd     ProgressUpdate
		want    ExerciseType
		wantErr bool
	}{
		{name: "drag", upd: ProgressUpdate{Drag: true}, want: ExerciseDrag},
		{name: "fill", upd: ProgressUpdate{Fill: true}, want: ExerciseFill},
		{name: "mult", upd: ProgressUpdate{Mult: true}, want: ExerciseMult},
		{name: "none", upd: ProgressUpdate{}, wantErr: true},
		{name: "two", upd: ProgressUpdate{Drag: true, Mult: true}, wantErr: true},
		{name: "all", upd: ProgressUpdate{Drag: true, Fill: true, Mult: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.upd.Exercise()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccount_ViewHasNoHash(t *testing.T) {
	a := &Account{Email: "a@x.com", Username: "alice", PasswordHash: []byte("$2a$10$..."), IsAdmin: true}

	assert.Equal(t, AccountView{Email: "a@x.com", Username: "alice", Role: RoleAdmin, IsAdmin: true}, a.View())
}

func TestNewAccountSummary(t *testing.T) {
	a := &Account{Email: "b@x.com", Username: "bob"}

	s := NewAccountSummary(a, nil)
	assert.Equal(t, &AccountSummary{Username: "bob", Email: "b@x.com", Role: RoleUser}, s)

	s = NewAccountSummary(a, &Progress{Drag: true, DragScore: 40})
	assert.Equal(t, ProgressSummary{Drag: true, Score: 40}, s.Progress)
}
