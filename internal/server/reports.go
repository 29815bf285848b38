package server

import (
	"net/http"

	reportingdomain "github.com/franqia/console/internal/reporting/domain"
	"github.com/franqia/console/internal/reporting/rollup"
	"github.com/gin-gonic/gin"
)

func parseRangeFilter(c *gin.Context) reportingdomain.RangeFilter {
	return reportingdomain.RangeFilter{
		From:         c.Query("from"),
		To:           c.Query("to"),
		FranchisorID: c.Query("franchisor_id"),
		SchoolID:     c.Query("school_id"),
	}
}

func (s *Server) GetSummary(c *gin.Context) {
	resp, err := s.reportingSvc.PlatformSummary(c.Request.Context(), reportingdomain.SummaryRequest{
		Range: parseRangeFilter(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetByFranchisor(c *gin.Context) {
	page, pageSize, err := parsePageParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reportingSvc.ByFranchisor(c.Request.Context(), reportingdomain.RankedRequest{
		Range:    parseRangeFilter(c),
		Status:   rollup.PaymentStatus(c.Query("status")),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetBySchool(c *gin.Context) {
	page, pageSize, err := parsePageParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reportingSvc.BySchool(c.Request.Context(), reportingdomain.RankedRequest{
		Range:    parseRangeFilter(c),
		Status:   rollup.PaymentStatus(c.Query("status")),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetBuckets(c *gin.Context) {
	resp, err := s.reportingSvc.Buckets(c.Request.Context(), reportingdomain.BucketRequest{
		Range: parseRangeFilter(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetTopFranchisors(c *gin.Context) {
	page, pageSize, err := parsePageParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reportingSvc.TopFranchisors(c.Request.Context(), reportingdomain.TopRequest{
		Range:    parseRangeFilter(c),
		Metric:   c.Query("metric"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetTopSchools(c *gin.Context) {
	page, pageSize, err := parsePageParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reportingSvc.TopSchools(c.Request.Context(), reportingdomain.TopRequest{
		Range:    parseRangeFilter(c),
		Metric:   c.Query("metric"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetSchoolsByStatus(c *gin.Context) {
	resp, err := s.reportingSvc.SchoolsByStatus(c.Request.Context(), reportingdomain.BucketRequest{
		Range: parseRangeFilter(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
