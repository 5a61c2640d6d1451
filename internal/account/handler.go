package account

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/storefront/auth"
	"github.com/kbukum/storefront/server"
	"github.com/kbukum/storefront/server/middleware"
)

// HandlerConfig shapes the HTTP surface of the account service.
type HandlerConfig struct {
	Cookie auth.CookieConfig

	// SessionTTL is the cookie Max-Age. It matches the token lifetime.
	SessionTTL time.Duration
}

// Handler serves the account routes.
type Handler struct {
	svc     *Service
	session *middleware.Session
	cfg     HandlerConfig
}

// NewHandler creates a Handler. session guards the routes that need an
// authenticated caller.
func NewHandler(svc *Service, session *middleware.Session, cfg HandlerConfig) *Handler {
	return &Handler{svc: svc, session: session, cfg: cfg}
}

// Mount registers the account routes on r.
func (h *Handler) Mount(r gin.IRouter) {
	r.POST("/register", h.register)
	r.POST("/login", h.login)
	r.GET("/logout", h.logout)
	r.GET("/me", h.session.Authenticate(), h.me)

	me := r.Group("/users/me", h.session.Authenticate())
	me.GET("/addresses", h.listAddresses)
	me.POST("/addresses", h.addAddress)
	me.DELETE("/addresses/:id", h.deleteAddress)
}

func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if err := server.BindJSON(c, &req); err != nil {
		server.RespondWithError(c, err)
		return
	}
	acct, token, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.setSession(c, token)
	server.RespondCreated(c, "User registered successfully", gin.H{
		"data": gin.H{
			"userId":   acct.ID,
			"username": acct.Username,
			"email":    acct.Email,
			"role":     acct.Role,
		},
		"token": token,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := server.BindJSON(c, &req); err != nil {
		server.RespondWithError(c, err)
		return
	}
	acct, token, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.setSession(c, token)
	server.RespondOK(c, "Login successful", gin.H{
		"user":  acct.Profile(),
		"token": token,
	})
}

func (h *Handler) logout(c *gin.Context) {
	if token, err := c.Cookie(h.cfg.Cookie.Name); err == nil {
		h.svc.Logout(c.Request.Context(), token)
	}
	http.SetCookie(c.Writer, h.cfg.Cookie.Cleared())
	server.RespondOK(c, "Logged out successfully", nil)
}

func (h *Handler) me(c *gin.Context) {
	id, err := h.svc.WhoAmI(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, "Current user fetched successfully", gin.H{"user": id})
}

func (h *Handler) listAddresses(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	addresses, defaultID, err := h.svc.ListAddresses(c.Request.Context(), sess.AccountID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, "Addresses fetched successfully", gin.H{
		"addresses":        addresses,
		"defaultAddressId": defaultID,
	})
}

func (h *Handler) addAddress(c *gin.Context) {
	var req AddressRequest
	if err := server.BindJSON(c, &req); err != nil {
		server.RespondWithError(c, err)
		return
	}
	sess, _ := middleware.SessionFrom(c)
	addr, err := h.svc.AddAddress(c.Request.Context(), sess.AccountID, req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, "Address added successfully", gin.H{"address": addr})
}

func (h *Handler) deleteAddress(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	addresses, err := h.svc.DeleteAddress(c.Request.Context(), sess.AccountID, c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, "Address deleted successfully", gin.H{"addresses": addresses})
}

func (h *Handler) setSession(c *gin.Context, token string) {
	http.SetCookie(c.Writer, h.cfg.Cookie.Session(token, h.cfg.SessionTTL))
}
