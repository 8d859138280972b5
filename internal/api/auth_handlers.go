package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annel0/casino-server/internal/auth"
)

// RegisterRequest is the registration payload. "rol" is optional and
// defaults to USER.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Rol      string `json:"rol"`
}

// LoginRequest is the credentials payload shared by login and admin login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// EmailRequest is the forgot-password payload.
type EmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// NewPasswordRequest is the reset-password payload.
type NewPasswordRequest struct {
	NuevaContrasena string `json:"nuevaContrasena" binding:"required"`
}

func (rs *RestServer) handleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Parámetros de solicitud inválidos")
		return
	}

	role := auth.RoleUser
	if req.Rol != "" {
		parsed, err := auth.ParseRole(req.Rol)
		if err != nil {
			c.String(http.StatusBadRequest, "Rol desconocido: %s", req.Rol)
			return
		}
		role = parsed
	}

	user, err := rs.authSvc.Register(req.Username, req.Password, req.Email, role)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, user)
	case errors.Is(err, auth.ErrUsernameTaken):
		c.String(http.StatusBadRequest, "El nombre de usuario ya existe")
	case errors.Is(err, auth.ErrEmailTaken):
		c.String(http.StatusBadRequest, "El email ya está en uso")
	case errors.Is(err, auth.ErrDefaultSkinMissing):
		c.String(http.StatusBadRequest, "La skin inicial no existe")
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
	}
}

func (rs *RestServer) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Parámetros de solicitud inválidos")
		return
	}

	token, _, err := rs.authSvc.Login(req.Username, req.Password)
	switch {
	case err == nil:
		// The token travels as plain text, not JSON.
		c.String(http.StatusOK, token)
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.String(http.StatusUnauthorized, "Usuario o contraseña incorrectos")
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
	}
}

func (rs *RestServer) handleAdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Parámetros de solicitud inválidos")
		return
	}

	token, _, err := rs.authSvc.AdminLogin(req.Username, req.Password)
	switch {
	case err == nil:
		c.String(http.StatusOK, token)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNotAdmin):
		// Bad password and insufficient role are indistinguishable here.
		c.String(http.StatusUnauthorized, "Acceso denegado. Solo los administradores pueden acceder.")
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
	}
}

func (rs *RestServer) handleForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Parámetros de solicitud inválidos")
		return
	}

	err := rs.authSvc.RequestPasswordReset(req.Email)
	switch {
	case err == nil:
		c.String(http.StatusOK, "Correo electrónico enviado con éxito")
	case errors.Is(err, auth.ErrEmailNotFound):
		c.String(http.StatusBadRequest, "Correo electrónico no encontrado")
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
	}
}

func (rs *RestServer) handleResetPassword(c *gin.Context) {
	token := c.Param("token")

	var req NewPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Parámetros de solicitud inválidos")
		return
	}

	err := rs.authSvc.ResetPassword(token, req.NuevaContrasena)
	switch {
	case err == nil:
		c.String(http.StatusOK, "Contraseña restablecida con éxito")
	case errors.Is(err, auth.ErrResetTokenInvalid):
		c.String(http.StatusBadRequest, "Token inválido")
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
	}
}

func (rs *RestServer) handleRecordWin(c *gin.Context) {
	rs.recordWin(c, rs.authSvc.RecordWin)
}

func (rs *RestServer) handleRecordBlackjackWin(c *gin.Context) {
	rs.recordWin(c, rs.authSvc.RecordBlackjackWin)
}

func (rs *RestServer) recordWin(c *gin.Context, record func(string) (*auth.User, error)) {
	principal, ok := principalFrom(c)
	if !ok {
		c.String(http.StatusUnauthorized, "Token inválido")
		return
	}

	user, err := record(principal.Username)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, user)
	case errors.Is(err, auth.ErrUserNotFound):
		c.String(http.StatusNotFound, "Usuario no encontrado")
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
	}
}

func (rs *RestServer) handleTopWinners(c *gin.Context) {
	rs.topWinners(c, rs.authSvc.TopWinners)
}

func (rs *RestServer) handleTopBlackjackWinners(c *gin.Context) {
	rs.topWinners(c, rs.authSvc.TopBlackjackWinners)
}

func (rs *RestServer) topWinners(c *gin.Context, top func(int) ([]*auth.User, error)) {
	users, err := top(5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, users)
}
