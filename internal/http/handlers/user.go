package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/placeshare-backend/internal/domain/user"
	"github.com/yungbote/placeshare-backend/internal/http/response"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstore"
	"github.com/yungbote/placeshare-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
	images      objectstore.Store
}

func NewUserHandler(userService services.UserService, images objectstore.Store) *UserHandler {
	return &UserHandler{userService: userService, images: images}
}

type userView struct {
	*user.User
	ImageURL string `json:"image_url,omitempty"`
}

// GET /api/users
func (uh *UserHandler) ListUsers(c *gin.Context) {
	users, err := uh.userService.ListUsers(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		v := userView{User: u}
		if uh.images != nil && u.Image != "" {
			v.ImageURL = uh.images.PublicURL(u.Image)
		}
		out = append(out, v)
	}
	response.RespondOK(c, gin.H{"users": out})
}
