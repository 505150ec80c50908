package http

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maplemetrics/housing-dashboard/internal/business/dashboard"
	"github.com/maplemetrics/housing-dashboard/internal/dataset"
	"github.com/maplemetrics/housing-dashboard/pkg/model"
)

// Router wires HTTP handlers.
type Router struct {
	ds       *dataset.Dataset
	sessions *dashboard.Manager
	origins  string
}

func NewRouter(ds *dataset.Dataset, sessions *dashboard.Manager, allowedOrigins string) *gin.Engine {
	r := &Router{
		ds:       ds,
		sessions: sessions,
		origins:  allowedOrigins,
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), r.corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/meta", r.getMeta)
		api.POST("/sessions", r.createSession)
		api.GET("/sessions/:id/snapshot", r.getSnapshot)
		api.PUT("/sessions/:id/constraints", r.updateConstraints)
		api.DELETE("/sessions/:id", r.closeSession)
		api.GET("/sessions/:id/listings/export", r.exportListings)
	}

	return router
}

func (r *Router) corsMiddleware() gin.HandlerFunc {
	origins := strings.Split(r.origins, ",")
	trimmed := make([]string, 0, len(origins))
	for _, o := range origins {
		if t := strings.TrimSpace(o); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := "*"
		for _, o := range trimmed {
			if o == "*" || o == origin {
				allowed = origin
				break
			}
		}
		c.Header("Access-Control-Allow-Origin", allowed)
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (r *Router) getMeta(c *gin.Context) {
	minPrice, maxPrice := r.ds.PriceRange()
	c.JSON(http.StatusOK, gin.H{
		"listings":         r.ds.Len(),
		"provinces":        r.ds.Provinces(),
		"citiesByProvince": r.ds.CitiesByProvince(),
		"minPrice":         minPrice,
		"maxPrice":         maxPrice,
	})
}

func (r *Router) createSession(c *gin.Context) {
	s := r.sessions.Create()
	c.JSON(http.StatusOK, gin.H{
		"sessionId": s.ID,
		"snapshot":  s.Snapshot(),
	})
}

func (r *Router) getSnapshot(c *gin.Context) {
	s, err := r.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

// constraintsReq carries partial constraint changes. Pointer fields
// distinguish "leave unchanged" from explicit zero values.
type constraintsReq struct {
	Provinces     *[]string `json:"provinces"`
	Cities        *[]string `json:"cities"`
	MinPrice      *float64  `json:"minPrice"`
	MaxPrice      *float64  `json:"maxPrice"`
	MinBeds       *int      `json:"minBeds"`
	MinBaths      *int      `json:"minBaths"`
	CompareCities *[]string `json:"compareCities"`
}

func (r *Router) updateConstraints(c *gin.Context) {
	s, err := r.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req constraintsReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	snap := s.Update(func(cs *model.ConstraintSet) {
		if req.Provinces != nil {
			cs.Provinces = *req.Provinces
		}
		if req.Cities != nil {
			cs.Cities = *req.Cities
		}
		if req.MinPrice != nil {
			cs.MinPrice = *req.MinPrice
		}
		if req.MaxPrice != nil {
			cs.MaxPrice = *req.MaxPrice
		}
		if req.MinBeds != nil {
			cs.MinBeds = *req.MinBeds
		}
		if req.MinBaths != nil {
			cs.MinBaths = *req.MinBaths
		}
		if req.CompareCities != nil {
			cs.CompareCities = *req.CompareCities
		}
	})
	c.JSON(http.StatusOK, snap)
}

func (r *Router) closeSession(c *gin.Context) {
	if !r.sessions.Close(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": dashboard.ErrSessionNotFound.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (r *Router) exportListings(c *gin.Context) {
	s, err := r.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=listings.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	if err := writer.Write([]string{"City", "Province", "Price", "Number_Beds", "Number_Baths", "Latitude", "Longitude", "Household_Income"}); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	for _, l := range s.FilteredListings() {
		row := []string{
			l.City,
			l.Province,
			fmt.Sprintf("%.2f", l.Price),
			strconv.Itoa(l.NumberBeds),
			strconv.Itoa(l.NumberBaths),
			fmt.Sprintf("%.6f", l.Latitude),
			fmt.Sprintf("%.6f", l.Longitude),
			fmt.Sprintf("%.2f", l.HouseholdIncome),
		}
		if err := writer.Write(row); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
	}
}
