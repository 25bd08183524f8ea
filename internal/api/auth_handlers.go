package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nhle/todo-service/internal/apperr"
	"github.com/nhle/todo-service/internal/auth"
	"github.com/nhle/todo-service/internal/directory"
	"github.com/nhle/todo-service/internal/validate"
)

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,maxbytes=72"`
}

func (h *handler) register(c *gin.Context) {
	var in auth.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, invalidBody(err))
		return
	}

	u, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// loginForm accepts the OAuth2 password-flow form fields.
func (h *handler) loginForm(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		h.fail(c, invalidBody(err))
		return
	}
	h.login(c, req.Username, req.Password)
}

func (h *handler) loginJSON(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, invalidBody(err))
		return
	}
	h.login(c, req.Username, req.Password)
}

func (h *handler) login(c *gin.Context, username, password string) {
	tok, err := h.auth.Login(c.Request.Context(), username, password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tok)
}

func (h *handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *handler) updateMe(c *gin.Context) {
	var upd directory.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		h.fail(c, invalidBody(err))
		return
	}

	u, err := h.auth.UpdateProfile(c.Request.Context(), currentUser(c), upd)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, invalidBody(err))
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), currentUser(c), req.CurrentPassword, req.NewPassword)
	if errors.Is(err, apperr.ErrInvalidCredential) {
		// 400, not 401: the session itself is valid.
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

func (h *handler) refresh(c *gin.Context) {
	tok, err := h.auth.Refresh(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tok)
}

// invalidBody turns a binding failure into a validation error. Rule
// violations name the failing field; decode errors do not.
func invalidBody(err error) error {
	var verrs validator.ValidationErrors
	var appErr *apperr.Error
	switch {
	case errors.As(err, &verrs):
		return validate.Describe(verrs)
	case errors.As(err, &appErr):
		return appErr
	default:
		return apperr.Wrap(apperr.CodeValidation, "invalid request body", err)
	}
}
