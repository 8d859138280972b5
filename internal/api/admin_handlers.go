package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annel0/casino-server/internal/auth"
	"github.com/annel0/casino-server/internal/skins"
)

// UserUpdateRequest is the admin account-update payload. Absent fields are
// left untouched; skinsId replaces the unlocked set when non-empty.
type UserUpdateRequest struct {
	Rol     string   `json:"rol"`
	Coins   *int     `json:"coins"`
	SkinsID []string `json:"skinsId"`
}

// SkinCreateRequest is the admin skin-creation payload.
type SkinCreateRequest struct {
	Name        string   `json:"name" binding:"required"`
	Precio      int      `json:"precio"`
	Description string   `json:"description"`
	Reels       []string `json:"reels"`
	Vendible    bool     `json:"vendible"`
}

// SkinUpdateRequest is the admin skin-update payload.
type SkinUpdateRequest struct {
	Nombre      *string  `json:"nombre"`
	Precio      *int     `json:"precio"`
	Description *string  `json:"description"`
	Reels       []string `json:"reels"`
	Vendible    *bool    `json:"vendible"`
}

func (rs *RestServer) handleListUsers(c *gin.Context) {
	users, err := rs.authSvc.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (rs *RestServer) handleUpdateUser(c *gin.Context) {
	var req UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Parámetros de solicitud inválidos")
		return
	}

	update := auth.AccountUpdate{
		Coins:   req.Coins,
		SkinIDs: req.SkinsID,
	}
	if req.Rol != "" {
		role, err := auth.ParseRole(req.Rol)
		if err != nil {
			c.String(http.StatusBadRequest, "Rol desconocido: %s", req.Rol)
			return
		}
		update.Role = &role
	}

	user, err := rs.authSvc.UpdateUser(c.Param("id"), update)
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

func (rs *RestServer) handleDeleteUser(c *gin.Context) {
	err := rs.authSvc.DeleteUser(c.Param("id"))
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case errors.Is(err, auth.ErrUserNotFound):
		c.String(http.StatusNotFound, "Usuario no encontrado")
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
	}
}

func (rs *RestServer) handleCreateSkin(c *gin.Context) {
	var req SkinCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Parámetros de solicitud inválidos")
		return
	}

	skin, err := rs.skinSvc.CreateSkin(&skins.Skin{
		Name:        req.Name,
		Price:       req.Precio,
		Description: req.Description,
		Reels:       req.Reels,
		Sellable:    req.Vendible,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, skin)
	case errors.Is(err, skins.ErrSkinExists):
		c.String(http.StatusBadRequest, "El nombre de la skin ya existe")
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
	}
}

func (rs *RestServer) handleUpdateSkin(c *gin.Context) {
	var req SkinUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "Parámetros de solicitud inválidos")
		return
	}

	skin, err := rs.skinSvc.UpdateSkin(c.Param("id"), skins.SkinUpdate{
		Name:        req.Nombre,
		Price:       req.Precio,
		Description: req.Description,
		Reels:       req.Reels,
		Sellable:    req.Vendible,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, skin)
	case errors.Is(err, skins.ErrSkinNotFound):
		c.String(http.StatusNotFound, "Skin no encontrada")
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
	}
}

func (rs *RestServer) handleDeleteSkin(c *gin.Context) {
	err := rs.skinSvc.DeleteSkin(c.Param("id"))
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case errors.Is(err, skins.ErrSkinNotFound):
		c.String(http.StatusNotFound, "Skin no encontrada")
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Title:   "Ocurrió un error interno",
			Message: err.Error(),
		})
	}
}

func (rs *RestServer) handleStats(c *gin.Context) {
	stats := make(map[string]interface{})

	users, err := rs.authSvc.ListUsers()
	if err == nil {
		admins := 0
		for _, u := range users {
			if u.Role == auth.RoleAdmin {
				admins++
			}
		}
		stats["users"] = map[string]interface{}{
			"total":  len(users),
			"admins": admins,
		}
	}

	memoryMB, _ := rs.metrics.GetMemoryUsage()
	cpuPercent, _ := rs.metrics.GetCPUUsage()
	systemCPU, _ := rs.metrics.GetSystemCPUUsage()

	stats["server"] = map[string]interface{}{
		"uptime":      rs.metrics.GetUptime(),
		"memory_mb":   fmt.Sprintf("%.2f", memoryMB),
		"cpu_percent": fmt.Sprintf("%.2f", cpuPercent),
		"system_cpu":  fmt.Sprintf("%.2f", systemCPU),
		"server_time": time.Now().Unix(),
	}
	stats["memory_details"] = rs.metrics.GetDetailedMemoryStats()

	c.JSON(http.StatusOK, stats)
}
