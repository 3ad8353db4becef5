package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/repository"
	"github.com/00yuyi00/ChongYu/pkg/jwt"
	pkglogger "github.com/00yuyi00/ChongYu/pkg/logger"
)

// SessionState session resolution state
type SessionState string

const (
	SessionLoading       SessionState = "loading"
	SessionAuthenticated SessionState = "authenticated"
	SessionAnonymous     SessionState = "anonymous"
)

// resolveTimeout bounds a session resolution. A slow profile lookup
// unlocks the caller as anonymous instead of hanging the handshake.
const resolveTimeout = 3 * time.Second

// Session is a resolved auth state plus the profile it maps to.
// Profile is nil unless State is SessionAuthenticated.
type Session struct {
	State   SessionState
	UserID  string
	Profile *domain.ProfileResponse
}

// SessionService resolves bearer tokens into sessions. Used on the
// websocket handshake where the caller cannot retry a slow backend.
type SessionService interface {
	Resolve(ctx context.Context, token string) *Session
}

type sessionService struct {
	profileRepo repository.ProfileRepository
	jwtManager  *jwt.Manager
}

// NewSessionService creates a new SessionService
func NewSessionService(profileRepo repository.ProfileRepository, jwtManager *jwt.Manager) SessionService {
	return &sessionService{profileRepo: profileRepo, jwtManager: jwtManager}
}

// Resolve verifies the token and loads the profile within a bounded
// window. An empty or invalid token is anonymous. A valid token whose
// profile lookup times out still authenticates, with a placeholder
// profile, so a degraded database never locks users out of chat.
func (s *sessionService) Resolve(ctx context.Context, token string) *Session {
	if token == "" {
		return &Session{State: SessionAnonymous}
	}

	claims, err := s.jwtManager.VerifyToken(token)
	if err != nil {
		return &Session{State: SessionAnonymous}
	}

	session := &Session{State: SessionLoading, UserID: claims.UserID}

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	type lookup struct {
		profile *domain.Profile
		err     error
	}
	ch := make(chan lookup, 1)
	go func() {
		profile, err := s.profileRepo.FindByID(claims.UserID)
		ch <- lookup{profile, err}
	}()

	select {
	case res := <-ch:
		session.State = SessionAuthenticated
		if res.err != nil {
			if !errors.Is(res.err, gorm.ErrRecordNotFound) {
				pkglogger.GetLogger().Warn().Err(res.err).Str("user_id", claims.UserID).Msg("session profile lookup failed")
			}
			session.Profile = domain.PlaceholderProfile(claims.UserID)
		} else {
			session.Profile = res.profile.ToResponse()
		}
	case <-ctx.Done():
		pkglogger.GetLogger().Warn().Str("user_id", claims.UserID).Msg("session resolution timed out")
		session.State = SessionAuthenticated
		session.Profile = domain.PlaceholderProfile(claims.UserID)
	}

	return session
}
