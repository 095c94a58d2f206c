package account

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/safeschool/drillready/core"
)

var (
	// errors
	ErrNotFound          = errors.New("account not found")
	ErrEmailExists       = errors.New("an account with this email already exists")
	ErrSchoolAdminExists = errors.New("an admin account already exists for this school")
)

type (
	Repository interface {
		// CheckUniqueness returns ErrEmailExists when the email is taken and,
		// for admin registrations, ErrSchoolAdminExists when the school
		// already has an admin.
		CheckUniqueness(ctx context.Context, email, role, schoolID string) error
		CreateAccount(ctx context.Context, acct Account) (Account, error)
		GetAccountByID(ctx context.Context, id string) (Account, error)
		GetAccountByEmailAndRole(ctx context.Context, email, role string) (Account, error)
		// FilterAccounts applies AND on the set QueryFilter fields.
		FilterAccounts(ctx context.Context, filter QueryFilter) ([]Account, error)
		// UpdateAccount persists the whole record, drills included.
		UpdateAccount(ctx context.Context, acct Account) (Account, error)
	}

	ServiceInterface interface {
		CheckUniqueness(ctx context.Context, na NewAccount) error
		Register(ctx context.Context, na NewAccount) (Account, error)
		GetByID(ctx context.Context, id string) (Account, error)
		GetByEmailAndRole(ctx context.Context, email, role string) (Account, error)
		QuerySchoolStudents(ctx context.Context, schoolID string) ([]Account, error)
		RecordDrill(ctx context.Context, accountID, drillName string, score float64) (Account, error)
		OverrideStanding(ctx context.Context, accountID string, preparednessScore, drillsCompleted *int) (Account, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		appName string

		// write serialization per account ID: drill recording and standing
		// overrides are read-modify-write over the whole record, and the last
		// UpdateAccount would otherwise win.
		mu    sync.Mutex
		locks map[string]*sync.Mutex
	}
)

var _ ServiceInterface = (*Service)(nil)

type QueryFilter struct {
	Role     string
	SchoolID string
}

func NewService(repo Repository, mailSvc core.EmailService, appName string) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		appName: appName,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (svc *Service) accountLock(id string) *sync.Mutex {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	lock, ok := svc.locks[id]
	if !ok {
		lock = new(sync.Mutex)
		svc.locks[id] = lock
	}
	return lock
}

func (svc *Service) CheckUniqueness(ctx context.Context, na NewAccount) error {
	if err := svc.repo.CheckUniqueness(ctx, na.Email, na.Role, na.SchoolID); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrEmailExists:
			field = "email"
		case ErrSchoolAdminExists:
			field = "role"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Register creates an Account with an empty drill history. No credential
// token is issued; the caller logs in separately.
func (svc *Service) Register(ctx context.Context, na NewAccount) (Account, error) {
	now := time.Now().UTC()
	acct := Account{
		Name:      na.Name,
		Email:     na.Email,
		Role:      na.Role,
		SchoolID:  na.SchoolID,
		Drills:    []DrillRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acct.SetPassword(na.Password); err != nil {
		return Account{}, errors.Wrap(err, "hashing password")
	}

	acct, err := svc.repo.CreateAccount(ctx, acct)
	if err != nil {
		return Account{}, err
	}
	svc.sendWelcomeEmail(acct)
	return acct, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Account, error) {
	return svc.repo.GetAccountByID(ctx, id)
}

func (svc *Service) GetByEmailAndRole(ctx context.Context, email, role string) (Account, error) {
	return svc.repo.GetAccountByEmailAndRole(ctx, core.CleanString(email, true /* lower */), role)
}

// QuerySchoolStudents returns all student accounts of one school.
func (svc *Service) QuerySchoolStudents(ctx context.Context, schoolID string) ([]Account, error) {
	return svc.repo.FilterAccounts(ctx, QueryFilter{Role: RoleStudent, SchoolID: schoolID})
}

// RecordDrill merges one drill submission into the account's history and
// persists the result.
func (svc *Service) RecordDrill(ctx context.Context, accountID, drillName string, score float64) (Account, error) {
	lock := svc.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	acct, err := svc.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return Account{}, err
	}
	acct.RecordDrill(drillName, score)
	acct.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAccount(ctx, acct)
}

// OverrideStanding overwrites the derived standing fields without going
// through drill reconciliation.
func (svc *Service) OverrideStanding(ctx context.Context, accountID string, preparednessScore, drillsCompleted *int) (Account, error) {
	lock := svc.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	acct, err := svc.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return Account{}, err
	}
	acct.OverrideStanding(preparednessScore, drillsCompleted)
	acct.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAccount(ctx, acct)
}

func (svc *Service) sendWelcomeEmail(acct Account) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: acct.Name, Address: acct.Email}},
		Subject: "Welcome",
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nYour %s %s account for school %s is ready. "+
				"You can now log in and start recording drills.",
			acct.Name, svc.appName, acct.Role, acct.SchoolID,
		),
	})
}
