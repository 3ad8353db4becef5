package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/pkg/jwt"
)

func testJWTManager() *jwt.Manager {
	return jwt.NewManager("test-secret", time.Hour)
}

func TestRegister_CreatesProfileAndToken(t *testing.T) {
	profileRepo := new(mockProfileRepo)
	svc := NewAuthService(profileRepo, testJWTManager())

	profileRepo.On("FindByEmail", "new@example.com").Return(nil, gorm.ErrRecordNotFound)
	var created *domain.Profile
	profileRepo.On("Create", mock.AnythingOfType("*domain.Profile")).Run(func(args mock.Arguments) {
		created = args.Get(0).(*domain.Profile)
	}).Return(nil)

	result, err := svc.Register(&RegisterRequest{Email: "new@example.com", Password: "secret123"})

	assert.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	// Display name falls back to the email local part.
	assert.Equal(t, "new", result.User.Name)
	assert.NotEmpty(t, created.ID)
	// Password is stored hashed, never verbatim.
	assert.NotEqual(t, "secret123", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret123")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	profileRepo := new(mockProfileRepo)
	svc := NewAuthService(profileRepo, testJWTManager())

	profileRepo.On("FindByEmail", "taken@example.com").Return(&domain.Profile{ID: "u1"}, nil)

	_, err := svc.Register(&RegisterRequest{Email: "taken@example.com", Password: "secret123"})

	assert.ErrorIs(t, err, common.ErrUserAlreadyExists)
	profileRepo.AssertNotCalled(t, "Create")
}

func TestLogin_VerifiesPassword(t *testing.T) {
	profileRepo := new(mockProfileRepo)
	svc := NewAuthService(profileRepo, testJWTManager())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	profileRepo.On("FindByEmail", "u@example.com").Return(&domain.Profile{
		ID:       "u1",
		Name:     "小明",
		Email:    "u@example.com",
		Password: string(hashed),
	}, nil)

	result, err := svc.Login("u@example.com", "secret123")
	assert.NoError(t, err)
	assert.Equal(t, "u1", result.User.ID)
	assert.NotEmpty(t, result.AccessToken)

	_, err = svc.Login("u@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	profileRepo := new(mockProfileRepo)
	svc := NewAuthService(profileRepo, testJWTManager())

	profileRepo.On("FindByEmail", "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Login("nobody@example.com", "whatever")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestCurrentUser_PlaceholderWhenProfileMissing(t *testing.T) {
	profileRepo := new(mockProfileRepo)
	svc := NewAuthService(profileRepo, testJWTManager())

	profileRepo.On("FindByID", "ghost-user").Return(nil, gorm.ErrRecordNotFound)

	profile, err := svc.CurrentUser("ghost-user")

	assert.NoError(t, err)
	assert.Equal(t, "ghost-user", profile.ID)
	assert.NotEmpty(t, profile.Name)
	assert.Contains(t, profile.AvatarURL, "ui-avatars.com")
}

func TestIssuedTokenCarriesAdminFlag(t *testing.T) {
	profileRepo := new(mockProfileRepo)
	manager := testJWTManager()
	svc := NewAuthService(profileRepo, manager)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	profileRepo.On("FindByEmail", "admin@example.com").Return(&domain.Profile{
		ID:       "a1",
		Email:    "admin@example.com",
		Password: string(hashed),
		IsAdmin:  true,
	}, nil)

	result, err := svc.Login("admin@example.com", "secret123")
	assert.NoError(t, err)

	claims, err := manager.VerifyToken(result.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "a1", claims.UserID)
	assert.True(t, claims.IsAdmin)
}
