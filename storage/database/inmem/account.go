package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/safeschool/drillready/core/account"
)

type accountRepository struct {
	db *accountTable
}

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db.account}
}

// clone copies the record so callers never alias the stored drill slice.
func clone(acct account.Account) account.Account {
	drills := make([]account.DrillRecord, len(acct.Drills))
	copy(drills, acct.Drills)
	acct.Drills = drills
	return acct
}

func (repo *accountRepository) query() []account.Account {
	accts := make([]account.Account, 0, len(repo.db.table))
	for _, acct := range repo.db.table {
		accts = append(accts, clone(*acct))
	}
	sort.Slice(accts, func(i, j int) bool { return accts[i].CreatedAt.Before(accts[j].CreatedAt) })
	return accts
}

func (repo *accountRepository) CheckUniqueness(_ context.Context, email, role, schoolID string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, acct := range repo.db.table {
		if acct.Email == email {
			return account.ErrEmailExists
		}
	}
	if role == account.RoleAdmin {
		for _, acct := range repo.db.table {
			if acct.Role == account.RoleAdmin && acct.SchoolID == schoolID {
				return account.ErrSchoolAdminExists
			}
		}
	}
	return nil
}

func (repo *accountRepository) CreateAccount(_ context.Context, acct account.Account) (account.Account, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	acct.ID = uuid.New().String()
	stored := clone(acct)
	repo.db.table[acct.ID] = &stored
	return clone(stored), nil
}

func (repo *accountRepository) GetAccountByID(_ context.Context, id string) (account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if acct, ok := repo.db.table[id]; ok {
		return clone(*acct), nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByEmailAndRole(_ context.Context, email, role string) (account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, acct := range repo.db.table {
		if acct.Email == email && acct.Role == role {
			return clone(*acct), nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) FilterAccounts(_ context.Context, filter account.QueryFilter) ([]account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	accts := make([]account.Account, 0)
	for _, acct := range repo.query() {
		if filter.Role != "" && acct.Role != filter.Role {
			continue
		}
		if filter.SchoolID != "" && acct.SchoolID != filter.SchoolID {
			continue
		}
		accts = append(accts, acct)
	}
	return accts, nil
}

func (repo *accountRepository) UpdateAccount(_ context.Context, acct account.Account) (account.Account, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[acct.ID]; !ok {
		return account.Account{}, account.ErrNotFound
	}
	stored := clone(acct)
	repo.db.table[acct.ID] = &stored
	return clone(stored), nil
}
