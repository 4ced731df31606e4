package curriculum

import "sort"

// ResolveUnlocks computes the lock state of modules for a student who completed the given module IDs.
//
// Modules are ordered by DisplayOrder. The first one is always unlocked. Any other module is locked
// when the module right before it is not completed, unless the module is itself completed.
// Only the immediate predecessor is considered: completing 3 without 2 still unlocks 4.
func ResolveUnlocks(modules []Module, completed []string) []ModuleState {
	done := make(map[string]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}

	ordered := make([]Module, len(modules))
	copy(ordered, modules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})

	states := make([]ModuleState, 0, len(ordered))
	for i, mod := range ordered {
		_, isCompleted := done[mod.ID]
		state := ModuleState{Module: mod, IsCompleted: isCompleted}
		if i > 0 && !isCompleted {
			state.IsLocked = !states[i-1].IsCompleted
		}
		states = append(states, state)
	}
	return states
}

// CompletedCount returns the number of completed modules in states.
func CompletedCount(states []ModuleState) int {
	var n int
	for _, s := range states {
		if s.IsCompleted {
			n++
		}
	}
	return n
}
