package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	userserrors "roomly/internal/users/errors"
	"roomly/internal/users/repository"
	"roomly/internal/users/validator"
	"roomly/pkg/auth"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
)

type UserService interface {
	// Register creates an account. The principal is nil for anonymous
	// registration; elevated roles need an admin principal, except that
	// the very first admin may bootstrap itself with no token.
	Register(ctx context.Context, p *auth.Principal, req *model.RegisterRequest) (*model.User, error)

	Login(ctx context.Context, req *model.LoginRequest) (string, *model.User, error)

	GetAll(ctx context.Context) ([]*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, p auth.Principal, username string) (*model.User, error)
	UpdateSelf(ctx context.Context, p auth.Principal, upd *model.UserSelfUpdate) (*model.User, error)
	DeleteSelf(ctx context.Context, p auth.Principal) error
	DeleteByUsername(ctx context.Context, username string) error
	AdminUpdate(ctx context.Context, username string, upd *model.UserAdminUpdate) (*model.User, error)
	BookingHistory(ctx context.Context, p auth.Principal, username string) ([]*model.BookingSummary, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	tokens    *auth.TokenManager
	log       *logger.Logger
}

func NewUserService(
	repo repository.UserRepository,
	userValidator *validator.UserValidator,
	tokens *auth.TokenManager,
	log *logger.Logger,
) UserService {
	return &userService{
		repo:      repo,
		validator: userValidator,
		tokens:    tokens,
		log:       log,
	}
}

func (s *userService) Register(ctx context.Context, p *auth.Principal, req *model.RegisterRequest) (*model.User, error) {
	req.Username = sanitizer.NormalizeUsername(req.Username)
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.validator.ValidateRegister(req); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			return nil, apperrors.Validation("registration validation failed").WithExtra(fields.Fields())
		}
		return nil, apperrors.Validation(err.Error())
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	if role != model.RoleUser {
		if err := s.allowElevatedRole(ctx, p, role); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         role,
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicate) {
			return nil, apperrors.Conflict("username or email already taken")
		}
		s.log.Error("Failed to create user", "username", user.Username, "error", err)
		return nil, apperrors.Internal("failed to create user", err)
	}

	s.log.Info("User registered", "id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}

// allowElevatedRole gates admin/moderator creation: an admin may create
// any role, and the first admin registers with no token at all so a
// fresh deployment can be bootstrapped.
func (s *userService) allowElevatedRole(ctx context.Context, p *auth.Principal, role string) error {
	if p != nil && p.IsAdmin() {
		return nil
	}

	if role == model.RoleAdmin && p == nil {
		hasAdmin, err := s.repo.AdminExists(ctx)
		if err != nil {
			s.log.Error("Failed to check for existing admin", "error", err)
			return apperrors.Internal("failed to check for existing admin", err)
		}
		if !hasAdmin {
			return nil
		}
	}

	return apperrors.Forbidden("creating an elevated account requires the admin role")
}

// Login verifies credentials and issues a token. Unknown username and
// wrong password are indistinguishable to the caller.
func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (string, *model.User, error) {
	if err := s.validator.ValidateLogin(req); err != nil {
		return "", nil, apperrors.Validation(err.Error())
	}

	user, err := s.repo.FindByUsername(ctx, sanitizer.NormalizeUsername(req.Username))
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return "", nil, apperrors.InvalidCredentials()
		}
		s.log.Error("Failed to load user for login", "error", err)
		return "", nil, apperrors.Internal("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, apperrors.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.log.Error("Failed to issue token", "user_id", user.ID, "error", err)
		return "", nil, apperrors.Internal("failed to issue token", err)
	}

	s.log.Info("User logged in", "id", user.ID, "username", user.Username)
	return token, user, nil
}

func (s *userService) GetAll(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list users", "error", err)
		return nil, apperrors.Internal("failed to list users", err)
	}
	return users, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFound("user")
		}
		s.log.Error("Failed to load user", "id", id, "error", err)
		return nil, apperrors.Internal("failed to load user", err)
	}
	return user, nil
}

// GetByUsername is restricted to the account owner and admins.
func (s *userService) GetByUsername(ctx context.Context, p auth.Principal, username string) (*model.User, error) {
	username = sanitizer.NormalizeUsername(username)
	if !p.IsAdmin() && p.Username != username {
		return nil, apperrors.Forbidden("cannot view another user's profile")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFound("user")
		}
		s.log.Error("Failed to load user", "username", username, "error", err)
		return nil, apperrors.Internal("failed to load user", err)
	}
	return user, nil
}

func (s *userService) UpdateSelf(ctx context.Context, p auth.Principal, upd *model.UserSelfUpdate) (*model.User, error) {
	if err := s.validator.ValidateSelfUpdate(upd); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	user, err := s.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if upd.Email != "" {
		user.Email = sanitizer.NormalizeEmail(upd.Email)
	}
	if upd.FullName != "" {
		fullName := sanitizer.NormalizeName(upd.FullName)
		user.FullName = &fullName
	}
	if upd.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Internal("failed to hash password", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicate) {
			return nil, apperrors.Conflict("email already taken")
		}
		s.log.Error("Failed to update user", "id", user.ID, "error", err)
		return nil, apperrors.Internal("failed to update user", err)
	}

	s.log.Info("User updated own profile", "id", user.ID)
	return user, nil
}

// AdminUpdate changes another account's profile fields, including the
// role. The route guard ensures the caller is an admin.
func (s *userService) AdminUpdate(ctx context.Context, username string, upd *model.UserAdminUpdate) (*model.User, error) {
	if err := s.validator.ValidateAdminUpdate(upd); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	user, err := s.repo.FindByUsername(ctx, sanitizer.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFound("user")
		}
		s.log.Error("Failed to load user for admin update", "username", username, "error", err)
		return nil, apperrors.Internal("failed to load user", err)
	}

	if upd.Email != "" {
		user.Email = sanitizer.NormalizeEmail(upd.Email)
	}
	if upd.FullName != "" {
		fullName := sanitizer.NormalizeName(upd.FullName)
		user.FullName = &fullName
	}
	if upd.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Internal("failed to hash password", err)
		}
		user.PasswordHash = string(hash)
	}
	if upd.Role != "" {
		user.Role = upd.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicate) {
			return nil, apperrors.Conflict("email already taken")
		}
		s.log.Error("Failed to update user", "id", user.ID, "error", err)
		return nil, apperrors.Internal("failed to update user", err)
	}

	s.log.Info("Admin updated user", "id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}

// BookingHistory is restricted to the account owner and admins, like
// the profile lookup.
func (s *userService) BookingHistory(ctx context.Context, p auth.Principal, username string) ([]*model.BookingSummary, error) {
	username = sanitizer.NormalizeUsername(username)
	if !p.IsAdmin() && p.Username != username {
		return nil, apperrors.Forbidden("cannot view another user's bookings")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFound("user")
		}
		s.log.Error("Failed to load user for booking history", "username", username, "error", err)
		return nil, apperrors.Internal("failed to load user", err)
	}

	history, err := s.repo.BookingHistory(ctx, user.ID)
	if err != nil {
		s.log.Error("Failed to load booking history", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("failed to load booking history", err)
	}
	return history, nil
}

func (s *userService) DeleteSelf(ctx context.Context, p auth.Principal) error {
	return s.deleteByID(ctx, p.ID)
}

func (s *userService) DeleteByUsername(ctx context.Context, username string) error {
	user, err := s.repo.FindByUsername(ctx, sanitizer.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFound("user")
		}
		s.log.Error("Failed to load user for delete", "username", username, "error", err)
		return apperrors.Internal("failed to load user", err)
	}
	return s.deleteByID(ctx, user.ID)
}

func (s *userService) deleteByID(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.NotFound("user")
		}
		s.log.Error("Failed to delete user", "id", id, "error", err)
		return apperrors.Internal("failed to delete user", err)
	}
	s.log.Info("User deleted", "id", id)
	return nil
}
