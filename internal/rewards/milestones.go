// Package rewards pays listing owners when cumulative hired time crosses
// fixed milestones.
package rewards

// Milestone is one rung of the reward ladder. Index is 1-based; a listing's
// last_reward_milestone_index of 0 means nothing has been awarded yet.
type Milestone struct {
	Index   int
	Minutes int64
	Reward  int64
}

// Milestones is ordered by Minutes ascending.
var Milestones = []Milestone{
	{Index: 1, Minutes: 1000, Reward: 20000},
	{Index: 2, Minutes: 1500, Reward: 30000},
	{Index: 3, Minutes: 2500, Reward: 50000},
	{Index: 4, Minutes: 5000, Reward: 100000},
	{Index: 5, Minutes: 10000, Reward: 1000000},
}

// due returns the milestones after lastIndex that total minutes now satisfies.
func due(lastIndex int, total int64) []Milestone {
	var out []Milestone
	for _, m := range Milestones {
		if m.Index <= lastIndex {
			continue
		}
		if total < m.Minutes {
			break
		}
		out = append(out, m)
	}
	return out
}

// next returns the first milestone after lastIndex, if any remain.
func next(lastIndex int) (Milestone, bool) {
	for _, m := range Milestones {
		if m.Index > lastIndex {
			return m, true
		}
	}
	return Milestone{}, false
}
