package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/safeschool/drillready/core/account"
)

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) account.Repository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CheckUniqueness(ctx context.Context, email, role, schoolID string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM account WHERE email = $1)`, email)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return account.ErrEmailExists
	}

	if role == account.RoleAdmin {
		err = repo.db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM account WHERE role = $1 AND school_id = $2)`,
			account.RoleAdmin, schoolID,
		)
		if err != nil {
			return errors.Wrap(err, "checking school admin uniqueness")
		}
		if exists {
			return account.ErrSchoolAdminExists
		}
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	acct.ID = uuid.New().String()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO account (id, name, email, role, school_id, password_hash, drills_completed, preparedness_score, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		acct.ID, acct.Name, acct.Email, acct.Role, acct.SchoolID, acct.PasswordHash,
		acct.DrillsCompleted, acct.PreparednessScore, acct.CreatedAt, acct.UpdatedAt,
	)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	if err = insertDrills(ctx, tx, acct); err != nil {
		return account.Account{}, err
	}
	if err = tx.Commit(); err != nil {
		return account.Account{}, errors.Wrap(err, "committing tx")
	}
	return acct, nil
}

func (repo *accountRepository) GetAccountByID(ctx context.Context, id string) (account.Account, error) {
	var acct account.Account
	err := repo.db.GetContext(ctx, &acct, `SELECT * FROM account WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, errors.Wrap(err, "getting account by id")
	}
	if err = repo.loadDrills(ctx, &acct); err != nil {
		return account.Account{}, err
	}
	return acct, nil
}

func (repo *accountRepository) GetAccountByEmailAndRole(ctx context.Context, email, role string) (account.Account, error) {
	var acct account.Account
	err := repo.db.GetContext(ctx, &acct, `SELECT * FROM account WHERE email = $1 AND role = $2`, email, role)
	if err != nil {
		if err == sql.ErrNoRows {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, errors.Wrap(err, "getting account by email and role")
	}
	if err = repo.loadDrills(ctx, &acct); err != nil {
		return account.Account{}, err
	}
	return acct, nil
}

func (repo *accountRepository) FilterAccounts(ctx context.Context, filter account.QueryFilter) ([]account.Account, error) {
	query := `SELECT * FROM account`
	conds := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.Role != "" {
		args = append(args, filter.Role)
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.SchoolID != "" {
		args = append(args, filter.SchoolID)
		conds = append(conds, fmt.Sprintf("school_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at`

	accts := make([]account.Account, 0)
	if err := repo.db.SelectContext(ctx, &accts, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering accounts")
	}
	for i := range accts {
		if err := repo.loadDrills(ctx, &accts[i]); err != nil {
			return nil, err
		}
	}
	return accts, nil
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE account
		 SET name = $2, email = $3, role = $4, school_id = $5, password_hash = $6,
		     drills_completed = $7, preparedness_score = $8, updated_at = $9
		 WHERE id = $1`,
		acct.ID, acct.Name, acct.Email, acct.Role, acct.SchoolID, acct.PasswordHash,
		acct.DrillsCompleted, acct.PreparednessScore, acct.UpdatedAt,
	)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "updating account")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return account.Account{}, account.ErrNotFound
	}

	// replace the drill history wholesale; position keeps completion order
	if _, err = tx.ExecContext(ctx, `DELETE FROM drill WHERE account_id = $1`, acct.ID); err != nil {
		return account.Account{}, errors.Wrap(err, "clearing drills")
	}
	if err = insertDrills(ctx, tx, acct); err != nil {
		return account.Account{}, err
	}
	if err = tx.Commit(); err != nil {
		return account.Account{}, errors.Wrap(err, "committing tx")
	}
	return acct, nil
}

func (repo *accountRepository) loadDrills(ctx context.Context, acct *account.Account) error {
	drills := make([]account.DrillRecord, 0)
	err := repo.db.SelectContext(ctx, &drills,
		`SELECT drill_name, score FROM drill WHERE account_id = $1 ORDER BY position`, acct.ID)
	if err != nil {
		return errors.Wrap(err, "loading drills")
	}
	acct.Drills = drills
	return nil
}

func insertDrills(ctx context.Context, tx *sqlx.Tx, acct account.Account) error {
	for i, d := range acct.Drills {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO drill (account_id, position, drill_name, score) VALUES ($1, $2, $3, $4)`,
			acct.ID, i, d.DrillName, d.Score,
		)
		if err != nil {
			return errors.Wrap(err, "inserting drill")
		}
	}
	return nil
}
