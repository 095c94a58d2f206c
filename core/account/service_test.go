package account_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/safeschool/drillready/core/account"
	"github.com/safeschool/drillready/storage/database/inmem"
)

func setup(t *testing.T) (*account.Service, account.Repository) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := inmemdb.NewAccountRepository(db)
	svc := account.NewService(repo, nil, "DrillReady")
	return svc, repo
}

func register(t *testing.T, svc *account.Service, name, email, role, school string) account.Account {
	acct, err := svc.Register(context.Background(), account.NewAccount{
		Name:     name,
		Email:    email,
		Password: "s3cr3t!",
		Role:     role,
		SchoolID: school,
	})
	if err != nil {
		t.Fatalf("register() failed: %v", err)
	}
	return acct
}

func TestService_Register(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	acct := register(t, svc, "Jane Doe", "jane@school.test", account.RoleStudent, "sch-1")
	assert.NotEmpty(t, acct.ID)
	assert.Equal(t, []account.DrillRecord{}, acct.Drills)
	assert.Equal(t, 0, acct.DrillsCompleted)
	assert.Equal(t, 0, acct.PreparednessScore)
	assert.NoError(t, acct.CheckPassword("s3cr3t!"))
	assert.Error(t, acct.CheckPassword("nope"))

	got, err := svc.GetByEmailAndRole(ctx, "jane@school.test", account.RoleStudent)
	assert.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)
}

func TestService_CheckUniqueness(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	register(t, svc, "Jane Doe", "jane@school.test", account.RoleStudent, "sch-1")
	register(t, svc, "Head Admin", "head@school.test", account.RoleAdmin, "sch-1")

	tests := []struct {
		name    string
		na      account.NewAccount
		wantErr bool
	}{
		{
			name:    "email is unique across all accounts",
			na:      account.NewAccount{Email: "jane@school.test", Role: account.RoleAdmin, SchoolID: "sch-2"},
			wantErr: true,
		},
		{
			name:    "second admin for same school rejected",
			na:      account.NewAccount{Email: "other@school.test", Role: account.RoleAdmin, SchoolID: "sch-1"},
			wantErr: true,
		},
		{
			name: "first admin for another school accepted",
			na:   account.NewAccount{Email: "other@school.test", Role: account.RoleAdmin, SchoolID: "sch-2"},
		},
		{
			name: "second student in same school accepted",
			na:   account.NewAccount{Email: "other@school.test", Role: account.RoleStudent, SchoolID: "sch-1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CheckUniqueness(ctx, tt.na)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_RecordDrill(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	acct := register(t, svc, "Jane Doe", "jane@school.test", account.RoleStudent, "sch-1")

	got, err := svc.RecordDrill(ctx, acct.ID, "evacuation", 90)
	assert.NoError(t, err)
	assert.Equal(t, 1, got.DrillsCompleted)
	assert.Equal(t, 90, got.PreparednessScore)

	got, err = svc.RecordDrill(ctx, acct.ID, "lockdown", 70)
	assert.NoError(t, err)
	assert.Equal(t, 2, got.DrillsCompleted)
	assert.Equal(t, 80, got.PreparednessScore)

	// persisted, not just returned
	stored, err := svc.GetByID(ctx, acct.ID)
	assert.NoError(t, err)
	assert.Equal(t, got.Drills, stored.Drills)
	assert.Equal(t, 80, stored.PreparednessScore)

	_, err = svc.RecordDrill(ctx, "missing-id", "evacuation", 90)
	assert.Equal(t, account.ErrNotFound, err)
}

// Concurrent submissions for the same account must not lose drills to a
// read-modify-write race.
func TestService_RecordDrill_concurrent(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	acct := register(t, svc, "Jane Doe", "jane@school.test", account.RoleStudent, "sch-1")

	drills := []string{"evacuation", "lockdown", "fire-drill", "earthquake", "shelter"}
	var wg sync.WaitGroup
	for _, name := range drills {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := svc.RecordDrill(ctx, acct.ID, name, 80)
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	stored, err := svc.GetByID(ctx, acct.ID)
	assert.NoError(t, err)
	assert.Equal(t, len(drills), stored.DrillsCompleted)
	assert.Equal(t, 80, stored.PreparednessScore)
}

func TestService_OverrideStanding(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	acct := register(t, svc, "Jane Doe", "jane@school.test", account.RoleStudent, "sch-1")

	prep, completed := 55, 3
	got, err := svc.OverrideStanding(ctx, acct.ID, &prep, &completed)
	assert.NoError(t, err)
	assert.Equal(t, 55, got.PreparednessScore)
	assert.Equal(t, 3, got.DrillsCompleted)
	assert.Empty(t, got.Drills)

	_, err = svc.OverrideStanding(ctx, "missing-id", &prep, nil)
	assert.Equal(t, account.ErrNotFound, err)
}

func TestService_QuerySchoolStudents(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	s1 := register(t, svc, "Jane Doe", "jane@school.test", account.RoleStudent, "sch-1")
	s2 := register(t, svc, "John Doe", "john@school.test", account.RoleStudent, "sch-1")
	register(t, svc, "Other Kid", "kid@school.test", account.RoleStudent, "sch-2")
	register(t, svc, "Head Admin", "head@school.test", account.RoleAdmin, "sch-1")

	students, err := svc.QuerySchoolStudents(ctx, "sch-1")
	assert.NoError(t, err)

	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{s1.ID, s2.ID}, ids)
}
