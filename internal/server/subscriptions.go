package server

import (
	"net/http"

	subscriptiondomain "github.com/franqia/console/internal/subscription/domain"
	"github.com/franqia/console/pkg/db/paginate"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListSubscriptions(c *gin.Context) {
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

	subscriptions, err := s.subscriptionSvc.List(c.Request.Context(), subscriptiondomain.ListSubscriptionRequest{
		SchoolID:     c.Query("school_id"),
		FranchisorID: c.Query("franchisor_id"),
		Status:       c.Query("status"),
		CreatedFrom:  createdFrom,
		CreatedTo:    createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	less, err := subscriptionListLess(c.Query("sort"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate.Paginate(subscriptions, nil, less, page, pageSize, s.pageBounds()))
}

func (s *Server) CreateSubscription(c *gin.Context) {
	var req subscriptiondomain.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	subscription, err := s.subscriptionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subscription)
}

func (s *Server) GetSubscriptionByID(c *gin.Context) {
	subscription, err := s.subscriptionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscription)
}

func subscriptionListLess(sortKey string) (func(a, b subscriptiondomain.Subscription) bool, error) {
	switch sortKey {
	case "", "created_at":
		return func(a, b subscriptiondomain.Subscription) bool { return a.CreatedAt.Before(b.CreatedAt) }, nil
	case "plan_code":
		return func(a, b subscriptiondomain.Subscription) bool { return a.PlanCode < b.PlanCode }, nil
	}
	return nil, ErrInvalidRequest
}
