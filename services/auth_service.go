package services

import (
	"context"
	"errors"
	"fmt"

	"structura-api/config"
	"structura-api/models"
	"structura-api/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Account is the common view of a manager, supervisor or client used by login.
type Account struct {
	Type         string
	ID           uint
	Email        string
	FirstName    string
	LastName     string
	Role         string
	ProjectID    *uint
	PasswordHash string
}

// AccountStore looks accounts up by email in one identity table.
type AccountStore interface {
	Type() string
	FindByEmail(ctx context.Context, email string) (*Account, error)
}

// AuthService checks the account stores in priority order.
type AuthService struct {
	stores []AccountStore
}

// NewAuthService checks users, then supervisors, then clients.
func NewAuthService(db *gorm.DB) *AuthService {
	if db == nil {
		db = config.DB
	}
	return NewAuthServiceWithStores(DefaultAccountStores(db)...)
}

// NewAuthServiceWithStores builds the service over an explicit store order.
func NewAuthServiceWithStores(stores ...AccountStore) *AuthService {
	return &AuthService{stores: stores}
}

// DefaultAccountStores returns the gorm stores in login priority order.
func DefaultAccountStores(db *gorm.DB) []AccountStore {
	return []AccountStore{
		&userAccountStore{db: db},
		&supervisorAccountStore{db: db},
		&clientAccountStore{db: db},
	}
}

// lockingAccountStores reads with SELECT ... FOR UPDATE. tx must be an open transaction.
func lockingAccountStores(tx *gorm.DB) []AccountStore {
	return []AccountStore{
		&userAccountStore{db: tx, lock: true},
		&supervisorAccountStore{db: tx, lock: true},
		&clientAccountStore{db: tx, lock: true},
	}
}

// Lookup returns the first account holding email, or ErrNotFound.
func (s *AuthService) Lookup(ctx context.Context, email string) (*Account, error) {
	email = utils.NormalizeEmail(email)
	for _, store := range s.stores {
		account, err := store.FindByEmail(ctx, email)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", store.Type(), err)
		}
		return account, nil
	}
	return nil, ErrNotFound
}

// Login verifies the password against the first store holding the email. A store match with a
// wrong password is final: later stores are not consulted.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Account, error) {
	account, err := s.Lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, account.PasswordHash) {
		return nil, ErrInvalidPassword
	}
	return account, nil
}

// EmailTaken reports whether email belongs to any account other than (exceptType, exceptID).
func (s *AuthService) EmailTaken(ctx context.Context, email, exceptType string, exceptID uint) (bool, error) {
	email = utils.NormalizeEmail(email)
	for _, store := range s.stores {
		account, err := store.FindByEmail(ctx, email)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return false, err
		}
		if account.Type == exceptType && account.ID == exceptID {
			continue
		}
		return true, nil
	}
	return false, nil
}

func byEmail(ctx context.Context, db *gorm.DB, lock bool, email string) *gorm.DB {
	q := db.WithContext(ctx).Where("LOWER(email) = ?", email)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

type userAccountStore struct {
	db   *gorm.DB
	lock bool
}

func (s *userAccountStore) Type() string { return models.AccountTypeUser }

func (s *userAccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var u models.User
	if err := byEmail(ctx, s.db, s.lock, email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &Account{
		Type:         models.AccountTypeUser,
		ID:           u.UserID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		PasswordHash: u.PasswordHash,
	}, nil
}

type supervisorAccountStore struct {
	db   *gorm.DB
	lock bool
}

func (s *supervisorAccountStore) Type() string { return models.AccountTypeSupervisor }

func (s *supervisorAccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var sv models.Supervisor
	if err := byEmail(ctx, s.db, s.lock, email).First(&sv).Error; err != nil {
		return nil, notFound(err)
	}
	return &Account{
		Type:         models.AccountTypeSupervisor,
		ID:           sv.SupervisorID,
		Email:        sv.Email,
		FirstName:    sv.FirstName,
		LastName:     sv.LastName,
		Role:         models.RoleSupervisor,
		ProjectID:    sv.ProjectID,
		PasswordHash: sv.PasswordHash,
	}, nil
}

type clientAccountStore struct {
	db   *gorm.DB
	lock bool
}

func (s *clientAccountStore) Type() string { return models.AccountTypeClient }

func (s *clientAccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	var cl models.Client
	if err := byEmail(ctx, s.db, s.lock, email).First(&cl).Error; err != nil {
		return nil, notFound(err)
	}
	return &Account{
		Type:         models.AccountTypeClient,
		ID:           cl.ClientID,
		Email:        cl.Email,
		FirstName:    cl.FirstName,
		LastName:     cl.LastName,
		Role:         models.RoleClient,
		ProjectID:    cl.ProjectID,
		PasswordHash: cl.PasswordHash,
	}, nil
}
