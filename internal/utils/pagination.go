package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-rest-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=1"`
}

// GetPaginationParams binds skip/limit from the query string. Missing values
// fall back to their defaults and limit is clamped to MaxPageSize.
func GetPaginationParams(c *gin.Context) (PaginationParams, error) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return PaginationParams{}, err
	}
	return NormalizePagination(params.Skip, params.Limit), nil
}

// NormalizePagination bounds skip and limit to sane values.
func NormalizePagination(skip, limit int) PaginationParams {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}

	return PaginationParams{
		Skip:  skip,
		Limit: limit,
	}
}
