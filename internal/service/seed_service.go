package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"
	"removaltracker/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// DefaultDepartments are created on first start.
var DefaultDepartments = []string{"IT", "Finance", "Operations", "HR", "Security"}

// DefaultRemovalReasons are created on first start.
var DefaultRemovalReasons = []model.RemovalReason{
	{Name: "Business Use"},
	{Name: "Repair or Service"},
	{Name: "Personal Use", AllowCustom: true},
	{Name: "Transfer to Another Department"},
	{Name: "Equipment Replacement"},
	{Name: "Other", AllowCustom: true},
}

type demoUser struct {
	email      string
	name       string
	roles      []authz.RoleName
	department string
}

var demoUsers = []demoUser{
	{"employee@example.com", "Regular Employee", []authz.RoleName{authz.RoleLevel1}, "IT"},
	{"manager@example.com", "Department Manager", []authz.RoleName{authz.RoleLevel1, authz.RoleLevel2}, "IT"},
	{"finance@example.com", "Finance Approver", []authz.RoleName{authz.RoleLevel3}, "Finance"},
	{"management@example.com", "Management Approver", []authz.RoleName{authz.RoleLevel4}, "Operations"},
	{"security@example.com", "Security Officer", []authz.RoleName{authz.RoleSecurity}, "Security"},
	{"admin@example.com", "System Administrator", []authz.RoleName{authz.RoleAdmin}, "HR"},
}

// SeedOptions controls the optional parts of seeding.
type SeedOptions struct {
	DemoUsers    bool
	DemoPassword string
}

// SeedService writes the static catalog and reference data to the database.
// Every step is idempotent so it can run on each start.
type SeedService struct {
	roles repository.RoleRepository
	refs  repository.ReferenceRepository
	users repository.UserRepository
	tx    repository.TransactionManager
	log   *logrus.Entry
}

func NewSeedService(
	roles repository.RoleRepository,
	refs repository.ReferenceRepository,
	users repository.UserRepository,
	tx repository.TransactionManager,
) *SeedService {
	return &SeedService{
		roles: roles,
		refs:  refs,
		users: users,
		tx:    tx,
		log:   logrus.WithField("component", "seed"),
	}
}

// Seed upserts permissions, roles, departments and removal reasons, then
// optionally one demo user per role.
func (s *SeedService) Seed(ctx context.Context, opts SeedOptions) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.seedCatalog(txCtx); err != nil {
			return err
		}
		return s.seedReferenceData(txCtx)
	})
	if err != nil {
		return err
	}

	if !opts.DemoUsers {
		return nil
	}
	if opts.DemoPassword == "" {
		return fmt.Errorf("%w: demo users need a password", ErrValidation)
	}
	return s.seedDemoUsers(ctx, opts.DemoPassword)
}

func (s *SeedService) seedCatalog(ctx context.Context) error {
	permIDs := make(map[authz.PermissionName]uuid.UUID)
	for _, def := range authz.Permissions() {
		perm := &model.Permission{
			Code:  string(def.Name),
			Name:  def.Description,
			Group: def.Group,
			Scope: string(def.Scope),
		}
		if err := s.roles.FindOrCreatePermission(ctx, perm); err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", def.Name, err)
		}
		permIDs[def.Name] = perm.ID
	}

	for _, def := range authz.Roles() {
		role := &model.Role{
			Name:        string(def.Name),
			Level:       def.Level,
			Description: def.Description,
			IsSystem:    true,
		}
		if err := s.roles.FindOrCreateRole(ctx, role); err != nil {
			return fmt.Errorf("failed to seed role %s: %w", def.Name, err)
		}

		ids := make([]uuid.UUID, 0, len(def.Permissions))
		for _, p := range def.Permissions {
			ids = append(ids, permIDs[p])
		}
		if err := s.roles.ReplacePermissions(ctx, role.ID, ids); err != nil {
			return fmt.Errorf("failed to assign permissions to %s: %w", def.Name, err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"permissions": len(permIDs),
		"roles":       len(authz.Roles()),
	}).Info("role catalog seeded")
	return nil
}

func (s *SeedService) seedReferenceData(ctx context.Context) error {
	for _, name := range DefaultDepartments {
		if err := s.refs.FindOrCreateDepartment(ctx, &model.Department{Name: name}); err != nil {
			return fmt.Errorf("failed to seed department %s: %w", name, err)
		}
	}
	for _, r := range DefaultRemovalReasons {
		reason := r
		if err := s.refs.FindOrCreateReason(ctx, &reason); err != nil {
			return fmt.Errorf("failed to seed removal reason %s: %w", r.Name, err)
		}
	}
	return nil
}

func (s *SeedService) seedDemoUsers(ctx context.Context, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	depts, err := s.refs.ListDepartments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list departments: %w", err)
	}
	deptByName := make(map[string]uuid.UUID, len(depts))
	for _, d := range depts {
		deptByName[strings.ToLower(d.Name)] = d.ID
	}

	created := 0
	for _, du := range demoUsers {
		if _, err := s.users.FindByEmail(ctx, du.email); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to look up %s: %w", du.email, err)
		}

		names := make([]string, 0, len(du.roles))
		for _, r := range du.roles {
			names = append(names, string(r))
		}
		roles, err := s.roles.FindByNames(ctx, names)
		if err != nil {
			return fmt.Errorf("failed to load roles for %s: %w", du.email, err)
		}

		user := &model.User{
			Name:     du.name,
			Email:    du.email,
			Password: string(hashed),
			Roles:    roles,
		}
		if id, ok := deptByName[strings.ToLower(du.department)]; ok {
			user.Departments = []model.UserDepartment{{DepartmentID: id, IsPrimary: true}}
		}
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create demo user %s: %w", du.email, err)
		}
		created++
	}

	if created > 0 {
		s.log.WithField("created", created).Info("demo users seeded")
	}
	return nil
}
