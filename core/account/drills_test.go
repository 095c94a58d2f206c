package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccount_RecordDrill(t *testing.T) {
	tests := []struct {
		name        string
		submissions []DrillRecord
		wantDrills  []DrillRecord
		wantCount   int
		wantScore   int
	}{
		{
			name:        "first drill sets standing",
			submissions: []DrillRecord{{"evacuation", 90}},
			wantDrills:  []DrillRecord{{"evacuation", 90}},
			wantCount:   1,
			wantScore:   90,
		},
		{
			name:        "second drill averages",
			submissions: []DrillRecord{{"evacuation", 90}, {"lockdown", 70}},
			wantDrills:  []DrillRecord{{"evacuation", 90}, {"lockdown", 70}},
			wantCount:   2,
			wantScore:   80,
		},
		{
			name:        "resubmission overwrites in place",
			submissions: []DrillRecord{{"fire-drill", 80}, {"fire-drill", 60}},
			wantDrills:  []DrillRecord{{"fire-drill", 60}},
			wantCount:   1,
			wantScore:   60,
		},
		{
			name:        "resubmission keeps position",
			submissions: []DrillRecord{{"fire-drill", 80}, {"lockdown", 70}, {"fire-drill", 100}},
			wantDrills:  []DrillRecord{{"fire-drill", 100}, {"lockdown", 70}},
			wantCount:   2,
			wantScore:   85,
		},
		{
			name:        "identical resubmission is idempotent",
			submissions: []DrillRecord{{"evacuation", 90}, {"evacuation", 90}},
			wantDrills:  []DrillRecord{{"evacuation", 90}},
			wantCount:   1,
			wantScore:   90,
		},
		{
			name:        "mean rounds half away from zero",
			submissions: []DrillRecord{{"evacuation", 90}, {"lockdown", 71}},
			wantDrills:  []DrillRecord{{"evacuation", 90}, {"lockdown", 71}},
			wantCount:   2,
			wantScore:   81, // 80.5 rounds up
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var acct Account
			for _, sub := range tt.submissions {
				acct.RecordDrill(sub.DrillName, sub.Score)

				// derived-field invariants hold after every mutation
				assert.Equal(t, len(acct.Drills), acct.DrillsCompleted)
			}
			assert.Equal(t, tt.wantDrills, acct.Drills)
			assert.Equal(t, tt.wantCount, acct.DrillsCompleted)
			assert.Equal(t, tt.wantScore, acct.PreparednessScore)
		})
	}
}

func TestAccount_OverrideStanding(t *testing.T) {
	acct := Account{}
	acct.RecordDrill("evacuation", 90)

	prep := 42
	acct.OverrideStanding(&prep, nil)
	assert.Equal(t, 42, acct.PreparednessScore)
	assert.Equal(t, 1, acct.DrillsCompleted) // untouched

	completed := 7
	acct.OverrideStanding(nil, &completed)
	assert.Equal(t, 42, acct.PreparednessScore)
	assert.Equal(t, 7, acct.DrillsCompleted)

	// drills themselves are never touched by an override
	assert.Equal(t, []DrillRecord{{"evacuation", 90}}, acct.Drills)

	// the next reconciliation restores the invariants
	acct.RecordDrill("lockdown", 70)
	assert.Equal(t, 2, acct.DrillsCompleted)
	assert.Equal(t, 80, acct.PreparednessScore)
}

func TestAccount_CompletedDrills(t *testing.T) {
	var acct Account
	assert.Empty(t, acct.CompletedDrills())

	acct.RecordDrill("evacuation", 90)
	acct.RecordDrill("lockdown", 70)
	acct.RecordDrill("evacuation", 50)
	assert.Equal(t, []string{"evacuation", "lockdown"}, acct.CompletedDrills())
}
