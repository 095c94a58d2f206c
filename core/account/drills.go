package account

import "math"

// RecordDrill merges one drill submission into the account's history.
// A resubmission overwrites the existing record's score in place, keeping its
// position; a new drill is appended at the end. The derived standing fields
// are recomputed afterwards, so resubmitting the same {name, score} pair is
// idempotent.
func (a *Account) RecordDrill(name string, score float64) {
	for i := range a.Drills {
		if a.Drills[i].DrillName == name {
			a.Drills[i].Score = score
			a.recomputeStanding()
			return
		}
	}
	a.Drills = append(a.Drills, DrillRecord{DrillName: name, Score: score})
	a.recomputeStanding()
}

// recomputeStanding restores the derived-field invariants:
// DrillsCompleted == len(Drills) and PreparednessScore == the mean score
// rounded half away from zero, 0 when no drills are recorded.
func (a *Account) recomputeStanding() {
	a.DrillsCompleted = len(a.Drills)
	if len(a.Drills) == 0 {
		a.PreparednessScore = 0
		return
	}
	var total float64
	for _, d := range a.Drills {
		total += d.Score
	}
	a.PreparednessScore = int(math.Round(total / float64(len(a.Drills))))
}

// OverrideStanding overwrites the derived standing fields directly, bypassing
// reconciliation. Drills are left untouched, so the standing may diverge from
// them until the next RecordDrill. Nil fields are kept as-is.
func (a *Account) OverrideStanding(preparednessScore, drillsCompleted *int) {
	if preparednessScore != nil {
		a.PreparednessScore = *preparednessScore
	}
	if drillsCompleted != nil {
		a.DrillsCompleted = *drillsCompleted
	}
}
