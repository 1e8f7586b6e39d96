// Package server exposes the exported crawl results over HTTP.
package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-critique-crawler/internal/logger"
	"go-critique-crawler/internal/models"
	"go-critique-crawler/internal/storage"
)

// ResultSource is what the API reads exports from. storage.Store implements it.
type ResultSource interface {
	LatestResults() (*storage.Export, string, error)
	ResultFiles() ([]string, error)
}

type Server struct {
	results ResultSource
	log     *zap.SugaredLogger
}

func New(results ResultSource, log *zap.SugaredLogger) *Server {
	return &Server{results: results, log: logger.OrNop(log)}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.health)
	r.GET("/results", s.listResults)
	r.GET("/results/latest", s.latestResults)
	r.GET("/results/latest/summary", s.latestSummary)
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Critique crawler results API is running!",
		"status":  "healthy",
	})
}

func (s *Server) listResults(c *gin.Context) {
	files, err := s.results.ResultFiles()
	if err != nil {
		s.log.Errorf("❌ list results: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list results"})
		return
	}
	if files == nil {
		files = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// latestResults serves the newest export. Optional filters:
// ?platform=<name> and ?negative=true.
func (s *Server) latestResults(c *gin.Context) {
	export, ok := s.latest(c)
	if !ok {
		return
	}

	platform := c.Query("platform")
	onlyNegative := false
	if v := c.Query("negative"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "negative must be a boolean"})
			return
		}
		onlyNegative = b
	}

	posts := make([]*models.Post, 0, len(export.Posts))
	for _, p := range export.Posts {
		if platform != "" && p.Platform != platform {
			continue
		}
		if onlyNegative && !p.IsNegative {
			continue
		}
		posts = append(posts, p)
	}
	export.Posts = posts
	c.JSON(http.StatusOK, export)
}

func (s *Server) latestSummary(c *gin.Context) {
	export, ok := s.latest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"collection_datetime": export.CollectionDatetime,
		"settings":            export.Settings,
		"summary":             export.Summary,
	})
}

func (s *Server) latest(c *gin.Context) (*storage.Export, bool) {
	export, _, err := s.results.LatestResults()
	if errors.Is(err, storage.ErrNoResults) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	if err != nil {
		s.log.Errorf("❌ load latest results: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load results"})
		return nil, false
	}
	return export, true
}
