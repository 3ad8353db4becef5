package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/repository"
	"github.com/00yuyi00/ChongYu/pkg/jwt"
)

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse login response
type LoginResponse struct {
	User        *domain.ProfileResponse `json:"user"`
	AccessToken string                  `json:"access_token"`
}

// AuthService authentication business logic
type AuthService interface {
	Register(req *RegisterRequest) (*LoginResponse, error)
	Login(email, password string) (*LoginResponse, error)
	CurrentUser(userID string) (*domain.ProfileResponse, error)
}

type authService struct {
	profileRepo repository.ProfileRepository
	jwtManager  *jwt.Manager
}

// NewAuthService creates a new AuthService
func NewAuthService(profileRepo repository.ProfileRepository, jwtManager *jwt.Manager) AuthService {
	return &authService{
		profileRepo: profileRepo,
		jwtManager:  jwtManager,
	}
}

// Register creates an account and signs the user in immediately.
// A missing display name falls back to the email local part.
func (s *authService) Register(req *RegisterRequest) (*LoginResponse, error) {
	if _, err := s.profileRepo.FindByEmail(req.Email); err == nil {
		return nil, common.ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = domain.DisplayNameFromEmail(req.Email)
	}

	profile := &domain.Profile{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     req.Email,
		Password:  string(hashed),
		CreatedAt: time.Now(),
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, err
	}

	return s.issueTokens(profile)
}

// Login authenticates by email and password
func (s *authService) Login(email, password string) (*LoginResponse, error) {
	profile, err := s.profileRepo.FindByEmail(email)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	return s.issueTokens(profile)
}

// CurrentUser returns the signed-in user's profile. A missing profiles
// row degrades to a placeholder so a valid token never yields a 404.
func (s *authService) CurrentUser(userID string) (*domain.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PlaceholderProfile(userID), nil
		}
		return nil, err
	}
	resp := profile.ToResponse()
	resp.Email = profile.Email
	return resp, nil
}

func (s *authService) issueTokens(profile *domain.Profile) (*LoginResponse, error) {
	accessToken, err := s.jwtManager.GenerateToken(profile.ID, profile.Name, profile.IsAdmin)
	if err != nil {
		return nil, err
	}

	user := profile.ToResponse()
	user.Email = profile.Email
	return &LoginResponse{
		User:        user,
		AccessToken: accessToken,
	}, nil
}
