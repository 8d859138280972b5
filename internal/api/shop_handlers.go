package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annel0/casino-server/internal/auth"
	"github.com/annel0/casino-server/internal/shop"
	"github.com/annel0/casino-server/internal/skins"
)

// BuySkinRequest is the shop purchase payload.
type BuySkinRequest struct {
	Name string `json:"name" binding:"required"`
}

func (rs *RestServer) handleBuySkin(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		c.String(http.StatusUnauthorized, "Token inválido")
		return
	}

	var req BuySkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Parámetros de solicitud inválidos")
		return
	}

	skin, err := rs.shopSvc.BuySkin(principal.Username, req.Name)
	switch {
	case err == nil:
		c.String(http.StatusOK, "Has desbloqueado la skin: %s", skin.Name)
	case errors.Is(err, auth.ErrUserNotFound):
		c.String(http.StatusNotFound, "Usuario no encontrado")
	case errors.Is(err, skins.ErrSkinNotFound):
		c.String(http.StatusBadRequest, "No existe la skin: %s", req.Name)
	case errors.Is(err, shop.ErrInsufficientCoins):
		c.String(http.StatusBadRequest, "No tienes suficientes monedas")
	case errors.Is(err, shop.ErrAlreadyOwned):
		c.String(http.StatusBadRequest, "Ya tienes la skin: %s", req.Name)
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
	}
}

func (rs *RestServer) handleListShopSkins(c *gin.Context) {
	sellable, err := rs.skinSvc.ListSellable()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, sellable)
}
