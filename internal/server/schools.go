package server

import (
	"net/http"

	schooldomain "github.com/franqia/console/internal/school/domain"
	"github.com/franqia/console/pkg/db/paginate"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListSchools(c *gin.Context) {
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

	schools, err := s.schoolSvc.List(c.Request.Context(), schooldomain.ListSchoolRequest{
		FranchisorID: c.Query("franchisor_id"),
		Status:       c.Query("status"),
		NameContains: c.Query("q"),
		CreatedFrom:  createdFrom,
		CreatedTo:    createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	less, err := schoolListLess(c.Query("sort"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate.Paginate(schools, nil, less, page, pageSize, s.pageBounds()))
}

func (s *Server) CreateSchool(c *gin.Context) {
	var req schooldomain.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	school, err := s.schoolSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, school)
}

func (s *Server) GetSchoolByID(c *gin.Context) {
	school, err := s.schoolSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, school)
}

// UpsertSchoolSnapshot replaces the school's ledger snapshot for one period.
// The billing system is the source of truth; this endpoint just ingests its
// figures.
func (s *Server) UpsertSchoolSnapshot(c *gin.Context) {
	var req schooldomain.UpsertSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.SchoolID = c.Param("id")

	snapshot, err := s.schoolSvc.UpsertSnapshot(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func schoolListLess(sortKey string) (func(a, b schooldomain.School) bool, error) {
	switch sortKey {
	case "", "name":
		return func(a, b schooldomain.School) bool { return a.Name < b.Name }, nil
	case "created_at":
		return func(a, b schooldomain.School) bool { return a.CreatedAt.Before(b.CreatedAt) }, nil
	}
	return nil, ErrInvalidRequest
}
