package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"structura-api/config"
	"structura-api/models"
	"structura-api/utils"

	"gorm.io/gorm"
)

// InvitationQueue accepts invitations for asynchronous delivery.
type InvitationQueue interface {
	Enqueue(ctx context.Context, inv Invitation) bool
}

// Inviter identifies who created a supervisor or client account, for the invitation email.
type Inviter struct {
	Email       string
	Name        string
	ProjectName string
}

// AccountService creates and updates manager, supervisor and client accounts. Emails are unique
// across all three tables.
type AccountService struct {
	db       *gorm.DB
	projects *ProjectService
	invites  InvitationQueue
}

// NewAccountService instantiates the service. A nil queue disables invitations.
func NewAccountService(db *gorm.DB, invites InvitationQueue) *AccountService {
	if db == nil {
		db = config.DB
	}
	return &AccountService{
		db:       db,
		projects: NewProjectService(db),
		invites:  invites,
	}
}

func normalizeAccountEmail(email string) (string, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !utils.ValidateEmail(email) {
		return "", fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	return email, nil
}

// ensureEmailFree checks all three account tables with locking reads inside tx, so the check and
// the following write commit together. On InnoDB the locking scan also blocks inserts into the
// scanned range, so a concurrent create of the same email waits or deadlocks instead of passing.
func ensureEmailFree(ctx context.Context, tx *gorm.DB, email, kind string, id uint) error {
	taken, err := NewAuthServiceWithStores(lockingAccountStores(tx)...).EmailTaken(ctx, email, kind, id)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: email %s is already registered", ErrConflict, email)
	}
	return nil
}

// hashOrGenerate hashes password, generating a temporary one when it is empty.
func hashOrGenerate(password string) (plain, hash string, err error) {
	plain = strings.TrimSpace(password)
	if plain == "" {
		plain = utils.GenerateTemporaryPassword()
	}
	hash, err = utils.HashPassword(plain)
	if err != nil {
		return "", "", fmt.Errorf("hash password: %w", err)
	}
	return plain, hash, nil
}

// CreateUser registers a project manager. A password is required.
func (s *AccountService) CreateUser(ctx context.Context, u *models.User, password string) error {
	email, err := normalizeAccountEmail(u.Email)
	if err != nil {
		return err
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	_, hash, err := hashOrGenerate(password)
	if err != nil {
		return err
	}
	u.Email = email
	u.PasswordHash = hash
	if u.Role == "" {
		u.Role = models.RoleProjectManager
	}
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(ctx, tx, email, models.AccountTypeUser, 0); err != nil {
			return err
		}
		return tx.Create(u).Error
	})
}

// UpdateUser saves u. A non-empty password replaces the stored hash.
func (s *AccountService) UpdateUser(ctx context.Context, u *models.User, password string) error {
	email, err := normalizeAccountEmail(u.Email)
	if err != nil {
		return err
	}
	u.Email = email
	if strings.TrimSpace(password) != "" {
		if _, u.PasswordHash, err = hashOrGenerate(password); err != nil {
			return err
		}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(ctx, tx, email, models.AccountTypeUser, u.UserID); err != nil {
			return err
		}
		return tx.Save(u).Error
	})
}

// DeleteUser removes a manager and detaches the rows that pointed at it.
func (s *AccountService) DeleteUser(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.User{}, "user_id = ?", userID).Error; err != nil {
			return notFound(err)
		}
		for _, model := range []interface{}{&models.Project{}, &models.Client{}, &models.FieldWorker{}} {
			if err := tx.Model(model).Where("user_id = ?", userID).Update("user_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.User{}, "user_id = ?", userID).Error
	})
}

// CreateSupervisor stores the supervisor, links its project and queues the invitation email.
// It returns the plaintext password, generated when password is empty.
func (s *AccountService) CreateSupervisor(ctx context.Context, sv *models.Supervisor, password string, inviter Inviter) (string, error) {
	email, err := normalizeAccountEmail(sv.Email)
	if err != nil {
		return "", err
	}
	plain, hash, err := hashOrGenerate(password)
	if err != nil {
		return "", err
	}
	sv.Email = email
	sv.PasswordHash = hash
	sv.Role = models.RoleSupervisor

	projectID := sv.ProjectID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(ctx, tx, email, models.AccountTypeSupervisor, 0); err != nil {
			return err
		}
		sv.ProjectID = nil
		if err := tx.Create(sv).Error; err != nil {
			return err
		}
		if projectID == nil {
			return nil
		}
		id := sv.SupervisorID
		if err := s.projects.AssignHolder(ctx, tx, HolderSupervisor, *projectID, &id); err != nil {
			return err
		}
		sv.ProjectID = projectID
		return nil
	})
	if err != nil {
		return "", err
	}

	s.invite(ctx, Invitation{
		AccountID:    sv.SupervisorID,
		ToEmail:      sv.Email,
		FirstName:    sv.FirstName,
		Role:         models.RoleSupervisor,
		TempPassword: plain,
	}, inviter, sv.ProjectID)
	return plain, nil
}

// UpdateSupervisor saves sv and moves its project link when project_id changed.
func (s *AccountService) UpdateSupervisor(ctx context.Context, sv *models.Supervisor, password string) error {
	email, err := normalizeAccountEmail(sv.Email)
	if err != nil {
		return err
	}
	sv.Email = email
	sv.Role = models.RoleSupervisor
	if strings.TrimSpace(password) != "" {
		if _, sv.PasswordHash, err = hashOrGenerate(password); err != nil {
			return err
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(ctx, tx, email, models.AccountTypeSupervisor, sv.SupervisorID); err != nil {
			return err
		}
		var current models.Supervisor
		if err := tx.First(&current, "supervisor_id = ?", sv.SupervisorID).Error; err != nil {
			return notFound(err)
		}
		sv.CreatedAt = current.CreatedAt
		target := sv.ProjectID
		sv.ProjectID = current.ProjectID
		if err := tx.Save(sv).Error; err != nil {
			return err
		}
		if err := s.moveHolder(ctx, tx, HolderSupervisor, sv.SupervisorID, current.ProjectID, target); err != nil {
			return err
		}
		sv.ProjectID = target
		return nil
	})
}

// DeleteSupervisor removes the supervisor and clears the project pointing at it.
func (s *AccountService) DeleteSupervisor(ctx context.Context, supervisorID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Supervisor{}, "supervisor_id = ?", supervisorID).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&models.Project{}).Where("supervisor_id = ?", supervisorID).Update("supervisor_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Supervisor{}, "supervisor_id = ?", supervisorID).Error
	})
}

// CreateClient stores the client, links its project and queues the invitation email.
// It returns the plaintext password, generated when password is empty.
func (s *AccountService) CreateClient(ctx context.Context, cl *models.Client, password string, inviter Inviter) (string, error) {
	email, err := normalizeAccountEmail(cl.Email)
	if err != nil {
		return "", err
	}
	plain, hash, err := hashOrGenerate(password)
	if err != nil {
		return "", err
	}
	cl.Email = email
	cl.PasswordHash = hash
	if cl.Status == "" {
		cl.Status = models.StatusActive
	}

	projectID := cl.ProjectID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(ctx, tx, email, models.AccountTypeClient, 0); err != nil {
			return err
		}
		if cl.UserID != nil {
			if err := tx.First(&models.User{}, "user_id = ?", *cl.UserID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: user %d does not exist", ErrValidation, *cl.UserID)
				}
				return err
			}
		}
		cl.ProjectID = nil
		if err := tx.Create(cl).Error; err != nil {
			return err
		}
		if projectID == nil {
			return nil
		}
		id := cl.ClientID
		if err := s.projects.AssignHolder(ctx, tx, HolderClient, *projectID, &id); err != nil {
			return err
		}
		cl.ProjectID = projectID
		return nil
	})
	if err != nil {
		return "", err
	}

	s.invite(ctx, Invitation{
		AccountID:    cl.ClientID,
		ToEmail:      cl.Email,
		FirstName:    cl.FirstName,
		Role:         models.RoleClient,
		TempPassword: plain,
	}, inviter, cl.ProjectID)
	return plain, nil
}

// UpdateClient saves cl and moves its project link when project_id changed.
func (s *AccountService) UpdateClient(ctx context.Context, cl *models.Client, password string) error {
	email, err := normalizeAccountEmail(cl.Email)
	if err != nil {
		return err
	}
	cl.Email = email
	if strings.TrimSpace(password) != "" {
		if _, cl.PasswordHash, err = hashOrGenerate(password); err != nil {
			return err
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(ctx, tx, email, models.AccountTypeClient, cl.ClientID); err != nil {
			return err
		}
		var current models.Client
		if err := tx.First(&current, "client_id = ?", cl.ClientID).Error; err != nil {
			return notFound(err)
		}
		cl.CreatedAt = current.CreatedAt
		target := cl.ProjectID
		cl.ProjectID = current.ProjectID
		if err := tx.Save(cl).Error; err != nil {
			return err
		}
		if err := s.moveHolder(ctx, tx, HolderClient, cl.ClientID, current.ProjectID, target); err != nil {
			return err
		}
		cl.ProjectID = target
		return nil
	})
}

// DeleteClient removes the client and clears the project pointing at it.
func (s *AccountService) DeleteClient(ctx context.Context, clientID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Client{}, "client_id = ?", clientID).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&models.Project{}).Where("client_id = ?", clientID).Update("client_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Client{}, "client_id = ?", clientID).Error
	})
}

// moveHolder re-points a holder from one project to another through the project side, so both
// references stay symmetric.
func (s *AccountService) moveHolder(ctx context.Context, tx *gorm.DB, kind string, holderID uint, from, to *uint) error {
	if sameRef(from, to) {
		return nil
	}
	model, column, projectColumn := holderTable(kind)
	if err := tx.Model(&models.Project{}).Where(projectColumn+" = ?", holderID).Update(projectColumn, nil).Error; err != nil {
		return err
	}
	if to == nil {
		return tx.Model(model).Where(column+" = ?", holderID).Update("project_id", nil).Error
	}
	id := holderID
	return s.projects.AssignHolder(ctx, tx, kind, *to, &id)
}

func (s *AccountService) invite(ctx context.Context, inv Invitation, inviter Inviter, projectID *uint) {
	if s.invites == nil {
		return
	}
	inv.InvitedByEmail = strings.TrimSpace(inviter.Email)
	inv.InvitedByName = strings.TrimSpace(inviter.Name)
	inv.ProjectName = strings.TrimSpace(inviter.ProjectName)
	if inv.ProjectName == "" && projectID != nil {
		var project models.Project
		if err := s.db.WithContext(ctx).Select("project_name").First(&project, "project_id = ?", *projectID).Error; err == nil {
			inv.ProjectName = project.ProjectName
		}
	}
	s.invites.Enqueue(ctx, inv)
}
