package server

import (
	"net/http"

	lifecycledomain "github.com/franqia/console/internal/lifecycle/domain"
	"github.com/gin-gonic/gin"
)

type transitionBody struct {
	Action         string `json:"action"`
	ReasonCategory string `json:"reason_category"`
	ReasonDetails  string `json:"reason_details"`
	Confirmed      bool   `json:"confirmed"`
}

// entityTransition builds the transition handler for one entity kind. The
// acting admin comes from the request context, never from the body.
func (s *Server) entityTransition(kind lifecycledomain.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body transitionBody
		if err := c.ShouldBindJSON(&body); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		snapshot, err := s.lifecycleSvc.Transition(c.Request.Context(), lifecycledomain.TransitionRequest{
			Kind:           kind,
			EntityID:       c.Param("id"),
			Action:         lifecycledomain.Action(body.Action),
			ReasonCategory: body.ReasonCategory,
			ReasonDetails:  body.ReasonDetails,
			Confirmed:      body.Confirmed,
			Actor:          c.GetString("actor"),
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshot)
	}
}

func (s *Server) entityStatus(kind lifecycledomain.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot, err := s.lifecycleSvc.Snapshot(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshot)
	}
}

func (s *Server) entityHistory(kind lifecycledomain.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, err := parsePageParams(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		history, err := s.lifecycleSvc.History(c.Request.Context(), lifecycledomain.HistoryRequest{
			Kind:     kind,
			EntityID: c.Param("id"),
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, history)
	}
}
