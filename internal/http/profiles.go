package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/mylist-service/internal/apperror"
	"github.com/tazhibayda/mylist-service/internal/domain"
	"github.com/tazhibayda/mylist-service/internal/queue"
	"github.com/tazhibayda/mylist-service/internal/service"
)

func objectID(c *gin.Context, raw, field string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		abortWithError(c, nil, apperror.ValidationFailed(field, "invalid "+field))
		return primitive.NilObjectID, false
	}
	return id, true
}

// ListProfiles godoc
// @Summary List a user's profiles
// @Tags profiles
// @Produce json
// @Param userId path string true "user id"
// @Success 200 {array} domain.Profile
// @Failure 401 {object} errorResp
// @Failure 404 {object} errorResp
// @Router /profiles/{userId} [get]
func (h *Handler) ListProfiles(c *gin.Context) {
	uid, ok := objectID(c, c.Param("userId"), "userId")
	if !ok {
		return
	}
	ps, err := h.Profiles.ListProfiles(c.Request.Context(), uid)
	if err != nil {
		abortWithError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

// GetProfile godoc
// @Summary Get one profile
// @Tags profiles
// @Produce json
// @Param userId path string true "user id"
// @Param profileId path string true "profile id"
// @Success 200 {object} domain.Profile
// @Failure 404 {object} errorResp
// @Router /profiles/{userId}/{profileId} [get]
func (h *Handler) GetProfile(c *gin.Context) {
	uid, ok := objectID(c, c.Param("userId"), "userId")
	if !ok {
		return
	}
	pid, ok := objectID(c, c.Param("profileId"), "profileId")
	if !ok {
		return
	}
	p, err := h.Profiles.GetProfile(c.Request.Context(), uid, pid)
	if err != nil {
		abortWithError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type createProfileReq struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// CreateProfile godoc
// @Summary Create a profile with an empty list
// @Tags profiles
// @Accept json
// @Produce json
// @Param userId path string true "user id"
// @Param payload body createProfileReq true "profile"
// @Success 201 {object} domain.Profile
// @Failure 400 {object} errorResp
// @Failure 404 {object} errorResp
// @Failure 409 {object} errorResp "profile limit reached"
// @Router /profiles/{userId} [post]
func (h *Handler) CreateProfile(c *gin.Context) {
	uid, ok := objectID(c, c.Param("userId"), "userId")
	if !ok {
		return
	}
	var in createProfileReq
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, h.Log, bindError(err))
		return
	}
	p, err := h.Profiles.CreateProfile(c.Request.Context(), uid, service.ProfileInput{Name: in.Name, Avatar: in.Avatar})
	if err != nil {
		abortWithError(c, h.Log, err)
		return
	}
	h.publish(c, queue.KeyProfileCreated, queue.ProfileCreated{UserID: uid, ProfileID: p.ID, Name: p.Name})
	c.JSON(http.StatusCreated, p)
}

type toggleReq struct {
	ProfileID string      `json:"profileId"`
	Category  string      `json:"category"`
	Item      domain.Item `json:"item"`
}

type toggleResp struct {
	Message string          `json:"message"`
	Added   bool            `json:"added"`
	Profile *domain.Profile `json:"profile"`
}

// ToggleListItem godoc
// @Summary Add an item to a profile's list, or remove it if already present
// @Tags profiles
// @Accept json
// @Produce json
// @Param userId path string true "user id"
// @Param payload body toggleReq true "toggle"
// @Success 200 {object} toggleResp
// @Failure 400 {object} errorResp
// @Failure 404 {object} errorResp
// @Failure 500 {object} errorResp
// @Router /profiles/{userId} [patch]
func (h *Handler) ToggleListItem(c *gin.Context) {
	uid, ok := objectID(c, c.Param("userId"), "userId")
	if !ok {
		return
	}
	var in toggleReq
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, h.Log, bindError(err))
		return
	}
	if in.ProfileID == "" {
		abortWithError(c, h.Log, apperror.ValidationFailed("profileId", "profileId is required"))
		return
	}
	pid, ok := objectID(c, in.ProfileID, "profileId")
	if !ok {
		return
	}
	res, err := h.Lists.Toggle(c.Request.Context(), uid, pid, domain.Category(in.Category), in.Item)
	if err != nil {
		abortWithError(c, h.Log, err)
		return
	}
	msg := "Item removed from list"
	if res.Added {
		msg = "Item added to list"
	}
	h.publish(c, queue.KeyListToggled, queue.ListToggled{
		UserID:    uid,
		ProfileID: pid,
		Category:  in.Category,
		ItemID:    in.Item.ID(),
		Added:     res.Added,
	})
	c.JSON(http.StatusOK, toggleResp{Message: msg, Added: res.Added, Profile: res.Profile})
}

// DeleteProfile godoc
// @Summary Delete a profile
// @Tags profiles
// @Produce json
// @Param userId path string true "user id"
// @Param profileId path string true "profile id"
// @Success 200 {object} domain.User
// @Failure 404 {object} errorResp
// @Router /profiles/{userId}/{profileId} [delete]
func (h *Handler) DeleteProfile(c *gin.Context) {
	uid, ok := objectID(c, c.Param("userId"), "userId")
	if !ok {
		return
	}
	pid, ok := objectID(c, c.Param("profileId"), "profileId")
	if !ok {
		return
	}
	u, err := h.Profiles.DeleteProfile(c.Request.Context(), uid, pid)
	if err != nil {
		abortWithError(c, h.Log, err)
		return
	}
	h.publish(c, queue.KeyProfileDeleted, queue.ProfileDeleted{UserID: uid, ProfileID: pid})
	c.JSON(http.StatusOK, u)
}
