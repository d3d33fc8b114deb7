package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"app-registry-cms/models"
	"app-registry-cms/repositories"

	"github.com/golang-jwt/jwt/v4"
)

// AuthService issues bearer tokens for known users and manages their roles.
// Credentials are checked by the external sign-in provider, not here.
type AuthService interface {
	IssueToken(user *models.User) (string, error)
	Impersonate(ctx context.Context, actor *models.User, userID uint) (*models.TokenResponse, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	UpdateRole(ctx context.Context, actor *models.User, id uint, role models.UserRole) (*models.User, error)
}

type authService struct {
	userRepo   repositories.UserRepository
	secret     []byte
	expiration time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, secret string, expiration time.Duration) AuthService {
	return &authService{
		userRepo:   userRepo,
		secret:     []byte(secret),
		expiration: expiration,
	}
}

func (s *authService) IssueToken(user *models.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     now.Add(s.expiration).Unix(),
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

// Impersonate hands an admin a token for another user.
func (s *authService) Impersonate(ctx context.Context, actor *models.User, userID uint) (*models.TokenResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsBanned() {
		return nil, models.ErrBanned
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		Token: token,
		User:  *user,
	}, nil
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *authService) GetUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.GetAll(ctx)
}

func (s *authService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Check if user already exists
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("user %s: %w", email, models.ErrDuplicate)
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		verr := models.NewValidationError()
		verr.Add("role", "role is not valid")
		return nil, verr
	}

	user := &models.User{
		Email:                      email,
		FirstName:                  req.FirstName,
		LastName:                   req.LastName,
		Phone:                      req.Phone,
		AgencyID:                   req.AgencyID,
		Role:                       role,
		ContactNotificationsEmails: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *authService) UpdateRole(ctx context.Context, actor *models.User, id uint, role models.UserRole) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		verr := models.NewValidationError()
		verr.Add("role", "role is not valid")
		return nil, verr
	}
	if actor != nil && actor.ID == id && role != models.RoleAdmin {
		return nil, models.ErrForbidden
	}

	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}
