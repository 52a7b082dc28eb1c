package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	MessageLoggedIn    = "User logged successfully"
	MessageUserCreated = "User created successfully"
)

// Service authenticates users, opens accounts and issues tokens.
type Service struct {
	store      Store
	codec      *TokenCodec
	log        *zap.Logger
	hashCost   int
	maxRoleReq int
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithLogger sets the logger used for authentication events.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) error {
		if l != nil {
			s.log = l
		}
		return nil
	}
}

// WithHashCost overrides the bcrypt cost used for new passwords.
func WithHashCost(cost int) ServiceOption {
	return func(s *Service) error {
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return fmt.Errorf("auth: bcrypt cost %d out of range", cost)
		}
		s.hashCost = cost
		return nil
	}
}

// NewService constructs Service with optional configuration.
func NewService(store Store, codec *TokenCodec, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if codec == nil {
		return nil, errors.New("auth: token codec is required")
	}
	svc := &Service{
		store:      store,
		codec:      codec,
		log:        zap.NewNop(),
		hashCost:   bcrypt.DefaultCost,
		maxRoleReq: MaxRequestedRoles,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// Codec exposes the token codec shared with the request filter.
func (s *Service) Codec() *TokenCodec { return s.codec }

// Authenticate checks username and password and resolves the caller's
// effective authorities. Account status flags are not consulted.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	user, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return Identity{}, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	if err != nil {
		return Identity{}, fmt.Errorf("load user: %w", err)
	}
	authorities := EffectiveAuthorities(user.Roles)
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrBadCredentials) {
			return Identity{}, ErrBadCredentials
		}
		return Identity{}, fmt.Errorf("verify password: %w", err)
	}
	return Identity{Username: user.Username, Authorities: authorities}, nil
}

// Login authenticates the request and issues a token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	if err := requireCredentials(req.Username, req.Password); err != nil {
		return AuthResponse{}, err
	}
	identity, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		s.log.Info("login rejected", zap.String("username", req.Username), zap.Error(err))
		return AuthResponse{}, err
	}
	token, err := s.codec.Issue(identity.Username, identity.Authorities)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("user logged in", zap.String("username", identity.Username), zap.Strings("authorities", identity.Authorities))
	return AuthResponse{
		Username: identity.Username,
		Message:  MessageLoggedIn,
		JWT:      token,
		Status:   true,
	}, nil
}

// SignUp opens an account with the requested roles and issues a token for it.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (AuthResponse, error) {
	if err := requireCredentials(req.Username, req.Password); err != nil {
		return AuthResponse{}, err
	}
	requested := req.RoleRequest.RoleListName
	if len(requested) > s.maxRoleReq {
		return AuthResponse{}, fmt.Errorf("%w: at most %d roles may be requested", ErrInvalidInput, s.maxRoleReq)
	}
	names := make([]RoleName, 0, len(requested))
	for _, raw := range requested {
		name, err := ParseRoleName(raw)
		if err != nil {
			return AuthResponse{}, err
		}
		names = append(names, name)
	}

	roles, err := s.store.RolesByName(ctx, names)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("load roles: %w", err)
	}
	if len(roles) == 0 {
		return AuthResponse{}, fmt.Errorf("%w: the roles specified do not exist", ErrUnknownRole)
	}

	hash, err := HashPassword(req.Password, s.hashCost)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}
	created, err := s.store.CreateUser(ctx, User{
		Username:              req.Username,
		PasswordHash:          hash,
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
		Roles:                 roles,
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return AuthResponse{}, fmt.Errorf("%w: username %q is taken", ErrConflict, req.Username)
		}
		return AuthResponse{}, fmt.Errorf("create user: %w", err)
	}

	authorities := EffectiveAuthorities(roles)
	token, err := s.codec.Issue(created.Username, authorities)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("user created", zap.String("username", created.Username), zap.Strings("authorities", authorities))
	return AuthResponse{
		Username: created.Username,
		Message:  MessageUserCreated,
		JWT:      token,
		Status:   true,
	}, nil
}

func requireCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	return nil
}
