package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"
	"removaltracker/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Name                string      `json:"name" binding:"required"`
	Email               string      `json:"email" binding:"required,email"`
	Password            string      `json:"password" binding:"required,min=6"`
	Roles               []string    `json:"roles" binding:"required,min=1"`
	DepartmentIDs       []uuid.UUID `json:"department_ids"`
	PrimaryDepartmentID *uuid.UUID  `json:"primary_department_id"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type DepartmentMembershipResponse struct {
	DepartmentID uuid.UUID `json:"department_id"`
	Name         string    `json:"name,omitempty"`
	IsPrimary    bool      `json:"is_primary"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID          uuid.UUID                      `json:"id"`
	Name        string                         `json:"name"`
	Email       string                         `json:"email"`
	Roles       []string                       `json:"roles"`
	Departments []DepartmentMembershipResponse `json:"departments"`
	CreatedAt   string                         `json:"created_at"`
}

// MeResponse is the caller's resolved identity.
type MeResponse struct {
	ID          uuid.UUID                    `json:"id"`
	Name        string                       `json:"name"`
	Email       string                       `json:"email"`
	Roles       []authz.RoleName             `json:"roles"`
	Permissions []authz.PermissionName       `json:"permissions"`
	Departments []authz.DepartmentMembership `json:"departments"`
}

// ActorCache stores resolved actors between requests.
type ActorCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*authz.Actor, error)
	Set(ctx context.Context, actor *authz.Actor) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	ResolveActor(ctx context.Context, userID uuid.UUID) (*authz.Actor, error)
	Me(ctx context.Context, actor *authz.Actor) (*MeResponse, error)
	CreateUser(ctx context.Context, actor *authz.Actor, req CreateUserRequest) (*UserResponse, error)
	ListUsers(ctx context.Context, actor *authz.Actor, page, limit int) ([]UserResponse, int64, error)
}

// TokenConfig controls the JWTs issued on login.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

type userService struct {
	users repository.UserRepository
	roles repository.RoleRepository
	refs  ReferenceLookup
	tx    repository.TransactionManager
	audit repository.AuditRepository
	cache ActorCache
	token TokenConfig
	log   *logrus.Entry
}

// NewUserService returns a new instance of UserService. cache may be nil.
func NewUserService(
	users repository.UserRepository,
	roles repository.RoleRepository,
	refs ReferenceLookup,
	tx repository.TransactionManager,
	audit repository.AuditRepository,
	cache ActorCache,
	token TokenConfig,
) UserService {
	return &userService{
		users: users,
		roles: roles,
		refs:  refs,
		tx:    tx,
		audit: audit,
		cache: cache,
		token: token,
		log:   logrus.WithField("component", "user_service"),
	}
}

var errBadCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errBadCredentials
	}

	expiresAt := time.Now().Add(s.token.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID.String(),
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.token.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("user logged in")
	return &TokenResponse{Token: tokenString, ExpiresAt: expiresAt}, nil
}

// ResolveActor builds the actor of a user id, going through the cache.
func (s *userService) ResolveActor(ctx context.Context, userID uuid.UUID) (*authz.Actor, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.log.WithError(err).Warn("actor cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	actor := authz.ActorFromUser(user)
	if s.cache != nil {
		if err := s.cache.Set(ctx, actor); err != nil {
			s.log.WithError(err).Warn("actor cache write failed")
		}
	}
	return actor, nil
}

func (s *userService) Me(_ context.Context, actor *authz.Actor) (*MeResponse, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	return &MeResponse{
		ID:          actor.ID,
		Name:        actor.Name,
		Email:       actor.Email,
		Roles:       actor.Roles,
		Permissions: actor.PermissionsOf(),
		Departments: actor.Departments,
	}, nil
}

func (s *userService) CreateUser(ctx context.Context, actor *authz.Actor, req CreateUserRequest) (*UserResponse, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: %s is required", ErrPermissionDenied, authz.AdminAccess)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already exists", ErrValidation)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	for _, name := range req.Roles {
		if _, ok := authz.LookupRole(authz.RoleName(name)); !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, name)
		}
	}
	roles, err := s.roles.FindByNames(ctx, req.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	if len(roles) != len(uniqueStrings(req.Roles)) {
		return nil, fmt.Errorf("%w: roles are not seeded", ErrPreconditionFailed)
	}

	memberships := make([]model.UserDepartment, 0, len(req.DepartmentIDs))
	for i, deptID := range req.DepartmentIDs {
		id := deptID
		if err := s.checkDepartment(ctx, &id); err != nil {
			return nil, err
		}
		primary := i == 0
		if req.PrimaryDepartmentID != nil {
			primary = *req.PrimaryDepartmentID == deptID
		}
		memberships = append(memberships, model.UserDepartment{DepartmentID: deptID, IsPrimary: primary})
	}

	// Hash password automatically
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Password:    string(hashedPassword),
		Roles:       roles,
		Departments: memberships,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			return err
		}
		details, _ := json.Marshal(map[string]interface{}{"email": user.Email, "roles": req.Roles})
		actorID := actor.ID
		return s.audit.Log(txCtx, &model.AuditLog{
			UserID:     &actorID,
			Action:     model.ActionCreateUser,
			EntityID:   user.ID.String(),
			EntityName: user.Name,
			Details:    string(details),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, actor *authz.Actor, page, limit int) ([]UserResponse, int64, error) {
	if actor == nil {
		return nil, 0, ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return nil, 0, fmt.Errorf("%w: %s is required", ErrPermissionDenied, authz.AdminAccess)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}

	return responses, total, nil
}

func (s *userService) checkDepartment(ctx context.Context, id *uuid.UUID) error {
	_, err := s.refs.FindDepartment(ctx, *id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: unknown department %s", ErrValidation, *id)
	}
	return err
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	res := &UserResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Roles:       make([]string, 0, len(user.Roles)),
		Departments: make([]DepartmentMembershipResponse, 0, len(user.Departments)),
		CreatedAt:   user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, r := range user.Roles {
		res.Roles = append(res.Roles, r.Name)
	}
	for _, d := range user.Departments {
		m := DepartmentMembershipResponse{DepartmentID: d.DepartmentID, IsPrimary: d.IsPrimary}
		if d.Department != nil {
			m.Name = d.Department.Name
		}
		res.Departments = append(res.Departments, m)
	}
	return res
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
