package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", middleware.RequireAuth(), h.Me)
	rg.PATCH("/me", middleware.RequireAuth(), h.UpdateMe)

	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:username", h.Get)
	rg.PATCH("/:username", h.Update)
	rg.DELETE("/:username", h.Delete)
}

func (h *UserHandler) Me(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	user, err := h.userService.GetProfile(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromUserModel(user))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var patch dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}

	actor := middleware.ActorFrom(c)
	user, err := h.userService.UpdateProfile(c.Request.Context(), actor, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromUserModel(user))
}

func (h *UserHandler) List(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	page, pageSize := parsePagination(c)

	users, total, err := h.userService.List(c.Request.Context(), actor, c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.FromUserModel(&users[i]))
	}
	c.JSON(http.StatusOK, dto.NewPaginatedUserResponse(resp, page, pageSize, total))
}

func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	actor := middleware.ActorFrom(c)
	user, err := h.userService.Create(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromUserModel(user))
}

func (h *UserHandler) Get(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	user, err := h.userService.GetByUsername(c.Request.Context(), actor, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromUserModel(user))
}

func (h *UserHandler) Update(c *gin.Context) {
	var patch dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}

	actor := middleware.ActorFrom(c)
	user, err := h.userService.Update(c.Request.Context(), actor, c.Param("username"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromUserModel(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	actor := middleware.ActorFrom(c)

	if err := h.userService.Delete(c.Request.Context(), actor, c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
