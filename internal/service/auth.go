package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/mylist-service/internal/apperror"
	"github.com/tazhibayda/mylist-service/internal/domain"
	"github.com/tazhibayda/mylist-service/internal/helper"
	"github.com/tazhibayda/mylist-service/internal/metrics"
	"github.com/tazhibayda/mylist-service/internal/security"
)

const (
	minPasswordLen = 8
	// bcrypt only reads the first 72 bytes and refuses anything longer.
	maxPasswordLen = 72
)

// Session is what a successful login hands to the transport layer.
type Session struct {
	User   *domain.User
	Tokens security.TokenPair
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Avatar    string
}

// FederatedProfile holds the display fields asserted by an identity provider.
type FederatedProfile struct {
	Email     string
	FirstName string
	LastName  string
	Avatar    string
}

type AuthService struct {
	users  UserStore
	hasher *security.PasswordHasher
	tokens *security.TokenManager
	log    *zap.Logger
}

func NewAuthService(users UserStore, hasher *security.PasswordHasher, tokens *security.TokenManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: logger.Named("auth")}
}

// VerifyPassword checks email and password against the stored hash.
func (s *AuthService) VerifyPassword(ctx context.Context, email, password string) (*domain.User, error) {
	email = helper.NormalizeEmail(email)
	u, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if u == nil {
		return nil, apperror.Authentication(apperror.ReasonNotRegistered)
	}
	if !s.hasher.Check(u.PasswordHash, password) {
		return nil, apperror.Authentication(apperror.ReasonBadPassword)
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.VerifyPassword(ctx, email, password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("password", outcome(err)).Inc()
		s.log.Info("login rejected",
			zap.String("email_hash", helper.Hash8(helper.NormalizeEmail(email))),
			zap.String("reason", string(apperror.ReasonOf(err))))
		return nil, err
	}
	metrics.AuthAttempts.WithLabelValues("password", "ok").Inc()
	return s.issue(u)
}

// ResolveFederatedIdentity returns the user registered under fp.Email,
// creating a google-provider user when there is none. An existing record is
// returned as stored; display fields are not synced on repeat logins.
func (s *AuthService) ResolveFederatedIdentity(ctx context.Context, fp FederatedProfile) (*domain.User, bool, error) {
	email := helper.NormalizeEmail(fp.Email)
	if email == "" {
		return nil, false, apperror.ValidationFailed("email", "email is required")
	}
	u, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("find user by email: %w", err)
	}
	if u != nil {
		return u, false, nil
	}

	u = &domain.User{
		Email:     email,
		FirstName: strings.TrimSpace(fp.FirstName),
		LastName:  strings.TrimSpace(fp.LastName),
		Avatar:    strings.TrimSpace(fp.Avatar),
		Role:      domain.RoleUser,
		Provider:  domain.ProviderGoogle,
		Profiles:  []domain.Profile{},
		CreatedAt: time.Now().UTC(),
	}
	err = s.users.CreateUser(ctx, u)
	if errors.Is(err, domain.ErrEmailTaken) {
		// A concurrent first login won the insert; use its record.
		existing, ferr := s.users.FindUserByEmail(ctx, email)
		if ferr != nil {
			return nil, false, fmt.Errorf("find user after duplicate insert: %w", ferr)
		}
		if existing == nil {
			return nil, false, fmt.Errorf("user %s vanished after duplicate insert", helper.Hash8(email))
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create federated user: %w", err)
	}
	s.log.Info("federated user created", zap.String("user_id", u.ID.Hex()), zap.String("email_hash", helper.Hash8(email)))
	return u, true, nil
}

func (s *AuthService) LoginFederated(ctx context.Context, fp FederatedProfile) (*Session, bool, error) {
	u, created, err := s.ResolveFederatedIdentity(ctx, fp)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("google", outcome(err)).Inc()
		return nil, false, err
	}
	metrics.AuthAttempts.WithLabelValues("google", "ok").Inc()
	sess, err := s.issue(u)
	return sess, created, err
}

// Register creates a local user and opens a session for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := helper.NormalizeEmail(in.Email)
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "invalid email")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperror.ValidationFailed("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if len(in.Password) > maxPasswordLen {
		return nil, apperror.ValidationFailed("password", fmt.Sprintf("password must be at most %d bytes", maxPasswordLen))
	}
	existing, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("email already registered")
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Avatar:       strings.TrimSpace(in.Avatar),
		Role:         domain.RoleUser,
		Provider:     domain.ProviderLocal,
		Profiles:     []domain.Profile{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, apperror.Conflict("email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID.Hex()))
	return s.issue(u)
}

// RotateAccess mints a new access token from a refresh token. The refresh
// token itself is left as is; it is never renewed here.
func (s *AuthService) RotateAccess(ctx context.Context, refreshToken string) (string, time.Duration, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", 0, err
	}
	uid, err := primitive.ObjectIDFromHex(claims.UID)
	if err != nil {
		return "", 0, apperror.Token(apperror.ReasonInvalid)
	}
	u, err := s.users.FindUserByID(ctx, uid)
	if err != nil {
		return "", 0, fmt.Errorf("find user by id: %w", err)
	}
	if u == nil {
		return "", 0, apperror.Token(apperror.ReasonUserGone)
	}
	tok, _, err := s.tokens.IssueAccess(u.ID.Hex(), u.Email)
	if err != nil {
		return "", 0, err
	}
	return tok, s.tokens.AccessTTL(), nil
}

// Authenticate validates an access token; used by the request guard.
func (s *AuthService) Authenticate(accessToken string) (*security.Claims, error) {
	return s.tokens.VerifyAccess(accessToken)
}

// FindUser returns the user by id or a NotFound error.
func (s *AuthService) FindUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if u == nil {
		return nil, apperror.NotFound("user")
	}
	return u, nil
}

func (s *AuthService) issue(u *domain.User) (*Session, error) {
	pair, err := s.tokens.IssuePair(u.ID.Hex(), u.Email)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Tokens: pair}, nil
}

func outcome(err error) string {
	if r := apperror.ReasonOf(err); r != apperror.ReasonNone {
		return string(r)
	}
	return "error"
}
