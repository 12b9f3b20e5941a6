package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
	repository "task-manager.com/task-manager/internal/repositories"
)

// Claims are carried by every access token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users  *repository.UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *zap.SugaredLogger
}

func NewAuthService(users *repository.UserRepository, secret string, ttl time.Duration, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
}

// SignUp registers the user and signs them in.
func (s *AuthService) SignUp(ctx context.Context, creds model.Credentials) (model.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.Session{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, creds.Email, string(hash))
	if err != nil {
		return model.Session{}, err
	}

	s.log.Infow("user signed up", "user", user.ID)
	return s.issue(user)
}

func (s *AuthService) SignIn(ctx context.Context, creds model.Credentials) (model.Session, error) {
	user, hash, err := s.users.FindByEmail(ctx, creds.Email)
	if err != nil {
		return model.Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(creds.Password)); err != nil {
		return model.Session{}, apperrors.ErrInvalidCredentials
	}

	return s.issue(user)
}

// SignOut revokes the token so it can no longer authenticate requests.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	return s.users.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time)
}

// Verify resolves a bearer token to its session.
func (s *AuthService) Verify(ctx context.Context, token string) (model.Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return model.Session{}, err
	}

	revoked, err := s.users.IsRevoked(ctx, claims.ID)
	if err != nil {
		return model.Session{}, err
	}
	if revoked {
		return model.Session{}, apperrors.ErrUnauthorized
	}

	return model.Session{
		UserID:      claims.Subject,
		Email:       claims.Email,
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time.UTC(),
	}, nil
}

func (s *AuthService) issue(user model.User) (model.Session, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl).Truncate(time.Second)

	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return model.Session{}, fmt.Errorf("sign token: %w", err)
	}

	return model.Session{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: signed,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *AuthService) parse(token string) (*Claims, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthorized
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
			s.log.Debugw("expired token presented", "jti", claims.ID)
		}
		return nil, apperrors.ErrUnauthorized
	}
	if !parsed.Valid || claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}
