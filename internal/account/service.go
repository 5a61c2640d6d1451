package account

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/storefront/auth"
	"github.com/kbukum/storefront/auth/password"
	apperrors "github.com/kbukum/storefront/errors"
	"github.com/kbukum/storefront/logger"
	"github.com/kbukum/storefront/observability"
)

const msgBadCredentials = "Invalid email or password"

// Tokens issues and verifies session tokens.
type Tokens interface {
	auth.TokenIssuer
	auth.TokenVerifier
	TTL() time.Duration
	Now() time.Time
}

// Deps are the collaborators of a Service.
type Deps struct {
	Store    Store
	Hasher   password.Hasher
	Policy   password.Config
	Tokens   Tokens
	Registry auth.RevocationRegistry
	Metrics  *observability.Metrics
	Logger   *logger.Logger
}

// Service implements the account operations.
type Service struct {
	store    Store
	hasher   password.Hasher
	policy   password.Config
	tokens   Tokens
	registry auth.RevocationRegistry
	metrics  *observability.Metrics
	log      *logger.Logger

	// dummyHash is verified against when the account does not exist so
	// unknown and known identifiers cost the same.
	dummyHash func() string
}

// NewService creates a Service. A nil Registry turns logout into a cookie
// clear only.
func NewService(d Deps) *Service {
	d.Policy.ApplyDefaults()
	if d.Hasher == nil {
		d.Hasher = password.NewHasher(d.Policy)
	}
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	s := &Service{
		store:    d.Store,
		hasher:   d.Hasher,
		policy:   d.Policy,
		tokens:   d.Tokens,
		registry: d.Registry,
		metrics:  d.Metrics,
		log:      d.Logger.WithComponent("account"),
	}
	s.dummyHash = sync.OnceValue(func() string {
		h, _ := s.hasher.Hash("storefront-dummy-password")
		return h
	})
	return s
}

// RegisterRequest is the body of a registration.
type RegisterRequest struct {
	Username  string           `json:"username" validate:"required,notblank,min=3,max=64"`
	Email     string           `json:"email" validate:"required,email,max=254"`
	Password  string           `json:"password" validate:"required"`
	FullName  FullName         `json:"fullName" validate:"required"`
	Role      string           `json:"role" validate:"omitempty,oneof=user seller"`
	Addresses []AddressRequest `json:"addresses" validate:"omitempty,max=10,dive"`
}

// LoginRequest is the body of a login. Email wins when both identifiers
// are present.
type LoginRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username" validate:"omitempty,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

// AddressRequest is a postal address as submitted by a client.
type AddressRequest struct {
	Street    string `json:"street" validate:"required,notblank,max=255"`
	City      string `json:"city" validate:"required,notblank,max=100"`
	State     string `json:"state" validate:"required,notblank,max=100"`
	Pincode   string `json:"pincode" validate:"required,pincode"`
	Country   string `json:"country" validate:"required,notblank,max=100"`
	IsDefault bool   `json:"isDefault"`
}

func (r AddressRequest) address() Address {
	return Address{
		Street:    strings.TrimSpace(r.Street),
		City:      strings.TrimSpace(r.City),
		State:     strings.TrimSpace(r.State),
		Pincode:   strings.TrimSpace(r.Pincode),
		Country:   strings.TrimSpace(r.Country),
		IsDefault: r.IsDefault,
	}
}

// Register creates an account and signs a session token for it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Account, string, error) {
	ctx, span := observability.StartSpan(ctx, "account.Register")
	defer span.End()

	acct, token, err := s.register(ctx, req)
	s.metrics.AuthAttempt("register", err == nil)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, "", err
	}
	s.log.WithContext(ctx).Info("Account registered", map[string]interface{}{
		logger.FieldAccountID: acct.ID,
		"role":                string(acct.Role),
	})
	return acct, token, nil
}

func (s *Service) register(ctx context.Context, req RegisterRequest) (*Account, string, error) {
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		return nil, "", apperrors.InvalidInput("role", "must be one of user seller")
	}
	if err := s.policy.Check(req.Password); err != nil {
		return nil, "", apperrors.InvalidInput("password", err.Error())
	}

	username := strings.TrimSpace(req.Username)
	email := NormalizeEmail(req.Email)
	taken, err := s.store.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", apperrors.Conflict(msgTaken)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}

	acct := &Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FullName.FirstName),
		LastName:     strings.TrimSpace(req.FullName.LastName),
		Role:         role,
		Addresses:    initialAddresses(req.Addresses),
	}
	if err := s.store.Create(ctx, acct); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(acct.Identity())
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}
	return acct, token, nil
}

// initialAddresses converts submitted addresses, keeping only the first
// default flag.
func initialAddresses(reqs []AddressRequest) []Address {
	out := make([]Address, 0, len(reqs))
	seenDefault := false
	for _, r := range reqs {
		addr := r.address()
		if addr.IsDefault {
			addr.IsDefault = !seenDefault
			seenDefault = true
		}
		out = append(out, addr)
	}
	return out
}

// Login checks credentials and signs a fresh token. Unknown accounts and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Account, string, error) {
	ctx, span := observability.StartSpan(ctx, "account.Login")
	defer span.End()

	acct, token, err := s.login(ctx, req)
	s.metrics.AuthAttempt("login", err == nil)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, "", err
	}
	s.log.WithContext(ctx).Info("Login succeeded", map[string]interface{}{
		logger.FieldAccountID: acct.ID,
	})
	return acct, token, nil
}

func (s *Service) login(ctx context.Context, req LoginRequest) (*Account, string, error) {
	email := NormalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	if email == "" && username == "" {
		return nil, "", apperrors.InvalidInput("email", "email or username is required")
	}

	acct, err := s.store.FindCredentials(ctx, email, username)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeNotFound {
			s.hasher.Verify(req.Password, s.dummyHash())
			return nil, "", apperrors.Unauthorized(msgBadCredentials)
		}
		return nil, "", err
	}
	if !s.hasher.Verify(req.Password, acct.PasswordHash) {
		return nil, "", apperrors.Unauthorized(msgBadCredentials)
	}

	token, err := s.tokens.Issue(acct.Identity())
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}
	return acct, token, nil
}

// Logout revokes token for the rest of its lifetime. Missing, invalid and
// already expired tokens are ignored, as are registry failures.
func (s *Service) Logout(ctx context.Context, token string) {
	if token == "" || s.registry == nil {
		return
	}
	log := s.log.WithContext(ctx)

	sess, err := s.tokens.Verify(token)
	if err != nil {
		log.Debug("Logout with unusable token", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return
	}

	ttl := s.tokens.TTL()
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.Remaining(s.tokens.Now())
	}
	// The revocation must land even when the client hangs up.
	err = s.registry.Revoke(context.WithoutCancel(ctx), token, ttl)
	s.metrics.AuthAttempt("logout", err == nil)
	if err != nil {
		log.Warn("Token revocation failed", map[string]interface{}{
			logger.FieldAccountID: sess.AccountID,
			logger.FieldError:     err.Error(),
		})
		return
	}
	log.Info("Logged out", map[string]interface{}{
		logger.FieldAccountID: sess.AccountID,
	})
}

// WhoAmI returns the identity attached to ctx by the session middleware.
func (s *Service) WhoAmI(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return auth.Identity{}, apperrors.Unauthenticated("Authentication required")
	}
	return id, nil
}

// ListAddresses returns the addresses of accountID and the id of its
// default address, empty when none is marked.
func (s *Service) ListAddresses(ctx context.Context, accountID string) ([]Address, string, error) {
	addresses, err := s.store.ListAddresses(ctx, accountID)
	if err != nil {
		return nil, "", err
	}
	return addresses, defaultAddressID(addresses), nil
}

// AddAddress appends an address to accountID.
func (s *Service) AddAddress(ctx context.Context, accountID string, req AddressRequest) (*Address, error) {
	addr := req.address()
	if err := s.store.AddAddress(ctx, accountID, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

// DeleteAddress removes an address of accountID and returns those left.
func (s *Service) DeleteAddress(ctx context.Context, accountID, addressID string) ([]Address, error) {
	if err := s.store.DeleteAddress(ctx, accountID, addressID); err != nil {
		return nil, err
	}
	addresses, err := s.store.ListAddresses(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func defaultAddressID(addresses []Address) string {
	for _, a := range addresses {
		if a.IsDefault {
			return a.ID
		}
	}
	return ""
}
