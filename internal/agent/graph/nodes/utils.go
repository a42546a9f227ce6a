package nodes

import (
	"github.com/shopagent-core-poc/server/internal/agent/model"
)

const DefaultMaxToolRounds = 3

// ===== Small helpers to keep handlers simple/readable =====
// normalizeMaxRounds returns a sane default when the provided value is invalid.
func normalizeMaxRounds(n int) int {
	if n <= 0 {
		return DefaultMaxToolRounds
	}
	return n
}

// checkAndMarkRoundLimit evaluates whether another tool round would exceed the
// budget and, if so, marks the state accordingly. Returns true when marked now.
func checkAndMarkRoundLimit(state *model.AppState, max int) bool {
	max = normalizeMaxRounds(max)
	if !state.RoundLimitReached && state.ToolRounds >= max {
		state.RoundLimitReached = true
		return true
	}
	return false
}

// incrementRoundAndCheck increments the round counter and marks the state if
// it exceeds the budget after incrementing. Returns true when exceeded.
func incrementRoundAndCheck(state *model.AppState, max int) bool {
	max = normalizeMaxRounds(max)
	state.ToolRounds++
	if state.ToolRounds > max {
		state.RoundLimitReached = true
		return true
	}
	return false
}
