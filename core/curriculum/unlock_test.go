package curriculum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func modules(n int) []Module {
	mods := make([]Module, n)
	for i := range mods {
		mods[i] = Module{ID: string(rune('a' + i)), TrackID: "t", DisplayOrder: i + 1, IsActive: true}
	}
	return mods
}

func lockStates(states []ModuleState) []bool {
	locked := make([]bool, len(states))
	for i, s := range states {
		locked[i] = s.IsLocked
	}
	return locked
}

func TestResolveUnlocks(t *testing.T) {
	tests := []struct {
		name       string
		modules    []Module
		completed  []string
		wantLocked []bool
	}{
		{name: "no modules", modules: nil, wantLocked: []bool{}},
		{name: "nothing completed", modules: modules(3), wantLocked: []bool{false, true, true}},
		{name: "first completed", modules: modules(3), completed: []string{"a"}, wantLocked: []bool{false, false, true}},
		{name: "all completed", modules: modules(3), completed: []string{"a", "b", "c"}, wantLocked: []bool{false, false, false}},
		{
			name: "gap: 3 completed without 2", modules: modules(4), completed: []string{"c"},
			wantLocked: []bool{false, true, false, false},
		},
		{
			name: "completed module is never locked", modules: modules(3), completed: []string{"b"},
			wantLocked: []bool{false, false, false},
		},
		{
			name: "duplicated completions", modules: modules(3), completed: []string{"a", "a", "a"},
			wantLocked: []bool{false, false, true},
		},
		{
			name: "unknown completions are ignored", modules: modules(2), completed: []string{"zz"},
			wantLocked: []bool{false, true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveUnlocks(tt.modules, tt.completed)
			if got == nil {
				t.Fatalf("ResolveUnlocks() = nil; want non-nil")
			}
			assert.Equal(t, tt.wantLocked, lockStates(got))
		})
	}
}

func TestResolveUnlocks_sortsByDisplayOrder(t *testing.T) {
	mods := []Module{
		{ID: "third", DisplayOrder: 30},
		{ID: "first", DisplayOrder: 10},
		{ID: "second", DisplayOrder: 20},
	}
	got := ResolveUnlocks(mods, []string{"first"})

	ids := make([]string, len(got))
	for i, s := range got {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"first", "second", "third"}, ids)
	assert.Equal(t, []bool{false, false, true}, lockStates(got))

	// input is left untouched
	assert.Equal(t, "third", mods[0].ID)
}

func TestResolveUnlocks_lockedImpliesPredecessorIncomplete(t *testing.T) {
	mods := modules(6)
	completedSets := [][]string{
		nil,
		{"a"},
		{"b", "d"},
		{"a", "c", "e"},
		{"f"},
		{"a", "b", "c", "d", "e", "f"},
	}
	for _, completed := range completedSets {
		states := ResolveUnlocks(mods, completed)
		if states[0].IsLocked {
			t.Errorf("first module locked with completed=%v", completed)
		}
		for i := 1; i < len(states); i++ {
			if states[i].IsLocked && states[i-1].IsCompleted {
				t.Errorf("module %d locked although %d is completed (completed=%v)", i, i-1, completed)
			}
			if states[i].IsLocked && states[i].IsCompleted {
				t.Errorf("completed module %d shown locked (completed=%v)", i, completed)
			}
		}
	}
}

func TestCompletedCount(t *testing.T) {
	states := ResolveUnlocks(modules(4), []string{"a", "c", "c"})
	if got := CompletedCount(states); got != 2 {
		t.Errorf("CompletedCount() = %d; want 2", got)
	}
}
