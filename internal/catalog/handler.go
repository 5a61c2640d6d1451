package catalog

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/storefront/auth"
	apperrors "github.com/kbukum/storefront/errors"
	"github.com/kbukum/storefront/server"
	"github.com/kbukum/storefront/server/middleware"
	"github.com/kbukum/storefront/validation"
)

// Handler serves the catalog routes.
type Handler struct {
	svc     *Service
	session *middleware.Session

	// maxImageSize caps a single multipart image part.
	maxImageSize int64
}

// NewHandler creates a Handler. Parts larger than maxImageSize are
// rejected before they reach storage.
func NewHandler(svc *Service, session *middleware.Session, maxImageSize int64) *Handler {
	return &Handler{svc: svc, session: session, maxImageSize: maxImageSize}
}

// Mount registers the catalog routes on r.
func (h *Handler) Mount(r gin.IRouter) {
	seller := h.session.Require(auth.RoleSeller)

	products := r.Group("/products")
	products.POST("", seller, h.create)
	products.GET("", h.list)
	products.GET("/seller", seller, h.mine)
	products.GET("/:id", h.get)
	products.PATCH("/:id", seller, h.update)
	products.DELETE("/:id", seller, h.remove)
}

func (h *Handler) create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		server.RespondWithError(c, apperrors.Validation("Request must be multipart/form-data").WithCause(err))
		return
	}

	v := validation.New()
	title := formValue(form, "title")
	currency := strings.ToUpper(strings.TrimSpace(formValue(form, "priceCurrency")))
	v.Required("title", title).MaxLength("title", title, 200)
	v.Required("priceAmount", formValue(form, "priceAmount"))
	amount := v.Float("priceAmount", formValue(form, "priceAmount"))
	v.OneOf("priceCurrency", currency, Currencies)
	files := form.File["images"]
	v.Custom(len(files) <= MaxImages, "images", fmt.Sprintf("at most %d images are allowed", MaxImages))
	if err := v.Validate(); err != nil {
		server.RespondWithError(c, err)
		return
	}

	images, err := h.readImages(files)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	sess, _ := middleware.SessionFrom(c)
	p, err := h.svc.Create(c.Request.Context(), sess.AccountID, CreateInput{
		Title:       title,
		Description: formValue(form, "description"),
		Price:       Price{Amount: *amount, Currency: Currency(currency)},
		Images:      images,
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, "Product created", gin.H{"data": p})
}

func (h *Handler) readImages(files []*multipart.FileHeader) ([][]byte, error) {
	images := make([][]byte, 0, len(files))
	for i, fh := range files {
		field := fmt.Sprintf("images[%d]", i)
		if h.maxImageSize > 0 && fh.Size > h.maxImageSize {
			return nil, apperrors.InvalidInput(field, "is too large")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperrors.InvalidInput(field, "could not be read")
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, apperrors.InvalidInput(field, "could not be read")
		}
		images = append(images, data)
	}
	return images, nil
}

func (h *Handler) list(c *gin.Context) {
	v := validation.New()
	f := Filter{
		Query:    strings.TrimSpace(c.Query("q")),
		MinPrice: v.Float("minprice", c.Query("minprice")),
		MaxPrice: v.Float("maxprice", c.Query("maxprice")),
		Skip:     v.Int("skip", c.Query("skip"), 0),
		Limit:    v.Int("limit", c.Query("limit"), DefaultLimit),
	}
	if err := v.Validate(); err != nil {
		server.RespondWithError(c, err)
		return
	}
	products, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, "Products retrieved", gin.H{"data": products})
}

func (h *Handler) mine(c *gin.Context) {
	v := validation.New()
	skip := v.Int("skip", c.Query("skip"), 0)
	limit := v.Int("limit", c.Query("limit"), DefaultLimit)
	if err := v.Validate(); err != nil {
		server.RespondWithError(c, err)
		return
	}
	sess, _ := middleware.SessionFrom(c)
	products, err := h.svc.Mine(c.Request.Context(), sess.AccountID, skip, limit)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, "Products retrieved", gin.H{"data": products})
}

func (h *Handler) get(c *gin.Context) {
	id, err := validation.ValidateUUID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, apperrors.NotFound("product", ""))
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, "Product retrieved", gin.H{"product": p})
}

// updateRequest is the PATCH body. Fields other than these are ignored.
type updateRequest struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description"`
	Price       *struct {
		Amount   *float64 `json:"amount" validate:"omitempty,gte=0"`
		Currency *string  `json:"currency" validate:"omitempty,oneof=INR USD"`
	} `json:"price"`
}

func (r updateRequest) patch() Patch {
	p := Patch{Title: r.Title, Description: r.Description}
	if r.Price != nil {
		p.Amount = r.Price.Amount
		if r.Price.Currency != nil {
			cur := Currency(*r.Price.Currency)
			p.Currency = &cur
		}
	}
	return p
}

func (h *Handler) update(c *gin.Context) {
	id, err := validation.ValidateUUID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	var req updateRequest
	if err := server.BindJSON(c, &req); err != nil {
		server.RespondWithError(c, err)
		return
	}
	sess, _ := middleware.SessionFrom(c)
	p, err := h.svc.Update(c.Request.Context(), sess.AccountID, id, req.patch())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, "Product updated", gin.H{"data": p})
}

func (h *Handler) remove(c *gin.Context) {
	id, err := validation.ValidateUUID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	sess, _ := middleware.SessionFrom(c)
	if err := h.svc.Delete(c.Request.Context(), sess.AccountID, id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, "Product deleted", nil)
}

func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}
