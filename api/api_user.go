package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/digitalbox/go-digitalbox-server/services"
	"github.com/digitalbox/go-digitalbox-server/types"
	"github.com/gin-gonic/gin"
)

type UserApi struct {
	userService *services.UserService
}

func NewUserApi(userService *services.UserService) *UserApi {
	return &UserApi{userService: userService}
}

// CreateUser
// @Summary Register a complaint requester
// @Tags Users
// @Param user body types.CreateUserInput true "user"
// @Success 201 {object} types.User
// @Failure 400 {object} api.ApiError "bad request"
// @Failure 409 {object} api.ApiError "email already registered"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/user [post]
func (ua *UserApi) CreateUser(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var input types.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid user: %s", err.Error())
		return
	}

	user, cErr := ua.userService.CreateUser(ctx, &input)
	if cErr != nil {
		if errors.Is(cErr, types.ErrConflict) {
			ApiErrorf(c, http.StatusConflict, "email already registered")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to store user: %s", cErr.Error())
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUser
// @Summary Get a user by id
// @Tags Users
// @Param user_id path string true "User ID"
// @Success 200 {object} types.User
// @Failure 404 {object} api.ApiError "user not found"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/user/{user_id} [get]
func (ua *UserApi) GetUser(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, gErr := ua.userService.GetUser(ctx, c.Param("user_id"))
	if gErr != nil {
		if errors.Is(gErr, types.ErrNotFound) {
			ApiErrorf(c, http.StatusNotFound, "user not found")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to read user: %s", gErr.Error())
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateCollegue
// @Summary Register a staff member
// @Tags Users
// @Param collegue body types.CreateCollegueInput true "collegue"
// @Success 201 {object} types.Collegue
// @Failure 400 {object} api.ApiError "bad request"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/collegue [post]
func (ua *UserApi) CreateCollegue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var input types.CreateCollegueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid collegue: %s", err.Error())
		return
	}

	collegue, cErr := ua.userService.CreateCollegue(ctx, &input)
	if cErr != nil {
		if errors.Is(cErr, types.ErrConflict) {
			ApiErrorf(c, http.StatusConflict, "email already registered")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to store collegue: %s", cErr.Error())
		return
	}
	c.JSON(http.StatusCreated, collegue)
}

// GetCollegue
// @Summary Get a staff member by id
// @Tags Users
// @Param collegue_id path string true "Collegue ID"
// @Success 200 {object} types.Collegue
// @Failure 404 {object} api.ApiError "collegue not found"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/collegue/{collegue_id} [get]
func (ua *UserApi) GetCollegue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collegue, gErr := ua.userService.GetCollegue(ctx, c.Param("collegue_id"))
	if gErr != nil {
		if errors.Is(gErr, types.ErrNotFound) {
			ApiErrorf(c, http.StatusNotFound, "collegue not found")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to read collegue: %s", gErr.Error())
		return
	}
	c.JSON(http.StatusOK, collegue)
}
