package server

import (
	"net/http"

	franchisordomain "github.com/franqia/console/internal/franchisor/domain"
	"github.com/franqia/console/pkg/db/paginate"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListFranchisors(c *gin.Context) {
	page, pageSize, err := parsePageParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	createdFrom, err := parseOptionalTime(c.Query("created_from"), false)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	createdTo, err := parseOptionalTime(c.Query("created_to"), true)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	franchisors, err := s.franchisorSvc.List(c.Request.Context(), franchisordomain.ListFranchisorRequest{
		Status:       c.Query("status"),
		NameContains: c.Query("q"),
		CreatedFrom:  createdFrom,
		CreatedTo:    createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	less, err := franchisorListLess(c.Query("sort"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate.Paginate(franchisors, nil, less, page, pageSize, s.pageBounds()))
}

func (s *Server) CreateFranchisor(c *gin.Context) {
	var req franchisordomain.CreateFranchisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	franchisor, err := s.franchisorSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, franchisor)
}

func (s *Server) GetFranchisorByID(c *gin.Context) {
	franchisor, err := s.franchisorSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, franchisor)
}

func franchisorListLess(sortKey string) (func(a, b franchisordomain.Franchisor) bool, error) {
	switch sortKey {
	case "", "name":
		return func(a, b franchisordomain.Franchisor) bool { return a.Name < b.Name }, nil
	case "created_at":
		return func(a, b franchisordomain.Franchisor) bool { return a.CreatedAt.Before(b.CreatedAt) }, nil
	}
	return nil, ErrInvalidRequest
}

func (s *Server) pageBounds() paginate.Bounds {
	cfg := s.reportCfg.Get()
	return paginate.Bounds{Min: cfg.MinPageSize, Max: cfg.MaxPageSize, Default: cfg.DefaultPageSize}
}
