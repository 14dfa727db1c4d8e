package users

import (
	"net/http"
	"strconv"

	"skybook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	repo Repository
}

func NewController(repo Repository) *Controller {
	return &Controller{repo: repo}
}

// GetAllUsers handles GET /api/v1/admin/users
func (c *Controller) GetAllUsers(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	list, total, err := c.repo.GetAll(ctx.Request.Context(), limit, offset)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Users retrieved successfully", gin.H{
		"users":       list,
		"total_count": total,
		"limit":       limit,
		"offset":      offset,
	}, nil)
}
