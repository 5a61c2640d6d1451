package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/storefront/auth"
	"github.com/kbukum/storefront/auth/jwt"
	apperrors "github.com/kbukum/storefront/errors"
	"github.com/kbukum/storefront/logger"
)

const sessionKey = "session"

// Session authenticates requests from the session cookie. The token is read
// from the cookie only; an Authorization header is ignored.
type Session struct {
	verifier auth.TokenVerifier
	registry auth.RevocationRegistry
	cookie   string
	log      *logger.Logger
}

// NewSession builds the session middleware. A nil registry disables the
// revocation check.
func NewSession(verifier auth.TokenVerifier, registry auth.RevocationRegistry, cookieName string, log *logger.Logger) *Session {
	return &Session{
		verifier: verifier,
		registry: registry,
		cookie:   cookieName,
		log:      log.WithComponent("session"),
	}
}

// Authenticate rejects requests without a valid, unrevoked session token
// with Unauthenticated. A revocation store failure is Internal. On success
// the identity is attached to the request context.
func (s *Session) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := s.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// Require authenticates the request and then checks that the caller holds
// one of roles. A caller outside roles gets Forbidden.
func (s *Session) Require(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.authenticate(c)
		if !ok {
			return
		}
		if !sess.Role.In(roles...) {
			abort(c, apperrors.Forbidden("Access denied: insufficient role"))
			return
		}
		c.Next()
	}
}

// authenticate resolves the session once per request, aborting on failure.
func (s *Session) authenticate(c *gin.Context) (auth.Session, bool) {
	if sess, ok := sessionFrom(c); ok {
		return sess, true
	}
	sess, err := s.resolve(c)
	if err != nil {
		abort(c, err)
		return auth.Session{}, false
	}

	c.Set(sessionKey, sess)
	ctx := auth.WithIdentity(c.Request.Context(), sess.Identity)
	ctx = logger.ContextWithAccountID(ctx, sess.AccountID)
	c.Request = c.Request.WithContext(ctx)
	return sess, true
}

func (s *Session) resolve(c *gin.Context) (auth.Session, *apperrors.AppError) {
	token, err := c.Cookie(s.cookie)
	if errors.Is(err, http.ErrNoCookie) || token == "" {
		return auth.Session{}, apperrors.Unauthenticated("Authentication required")
	}

	sess, err := s.verifier.Verify(token)
	if err != nil {
		reason := "Invalid or malformed token"
		if errors.Is(err, jwt.ErrExpired) {
			reason = "Session expired"
		}
		s.log.WithContext(c.Request.Context()).Debug("Session token rejected", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return auth.Session{}, apperrors.Unauthenticated(reason)
	}

	if s.registry != nil {
		revoked, err := s.registry.IsRevoked(c.Request.Context(), token)
		if err != nil {
			s.log.WithContext(c.Request.Context()).Error("Revocation check failed", map[string]interface{}{
				logger.FieldError:     err.Error(),
				logger.FieldAccountID: sess.AccountID,
			})
			return auth.Session{}, apperrors.Internal(err)
		}
		if revoked {
			return auth.Session{}, apperrors.Unauthenticated("Session has been revoked")
		}
	}
	return sess, nil
}

// SessionFrom returns the session the middleware resolved for this request.
func SessionFrom(c *gin.Context) (auth.Session, bool) {
	return sessionFrom(c)
}

func sessionFrom(c *gin.Context) (auth.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return auth.Session{}, false
	}
	sess, ok := v.(auth.Session)
	return sess, ok
}
