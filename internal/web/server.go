package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"resource-cards/internal/logger"
	"resource-cards/internal/model"
)

// Store is the persistence the server exposes.
type Store interface {
	ListCards(ctx context.Context) ([]model.CardSummary, error)
	CardPayload(ctx context.Context, cardID string) (model.CardPayload, error)
	SaveCard(ctx context.Context, cardID string, body []byte) (json.RawMessage, error)
	DeleteCard(ctx context.Context, cardID string) error
	Datatypes(ctx context.Context) ([]model.Datatype, error)

	AddResource(ctx context.Context, r model.Resource) (model.Resource, error)
	ListResources(ctx context.Context, graphID string) ([]model.Resource, error)
	FindResource(ctx context.Context, id string) (model.Resource, error)

	CreateRelationships(ctx context.Context, req model.RelationshipRequest) ([]model.Relationship, error)
	RelatedTo(ctx context.Context, resourceID string) ([]model.Relationship, error)

	CreateGraph(ctx context.Context, g model.Graph) (model.Graph, error)
	ListGraphs(ctx context.Context) ([]model.Graph, error)
	GraphBySlug(ctx context.Context, slug string) (model.Graph, error)
}

type ServerConfig struct {
	Addr string
	// BasePath prefixes every route ("" or e.g. "/api").
	BasePath    string
	CORSOrigins []string
	Store       Store
	Log         *logger.Logger
}

type Server struct {
	cfg ServerConfig
	log *logger.Logger
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.BasePath = "/" + strings.Trim(strings.TrimSpace(cfg.BasePath), "/")
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.Store == nil {
		return nil, errors.New("web: store is nil")
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	return &Server{cfg: cfg, log: cfg.Log.With("component", "web")}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// Handler builds the gin engine serving every route.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", s.handleHealth)

	api := r.Group(s.cfg.BasePath)
	{
		api.GET("/cards", s.handleCardList)
		api.GET("/cards/:cardid", s.handleCardGet)
		api.GET("/cards/:cardid/html", s.handleCardHTML)
		api.POST("/cards/:cardid", s.handleCardSave)
		api.DELETE("/cards/:cardid", s.handleCardDelete)
		api.GET("/datatypes", s.handleDatatypes)

		api.GET("/resources", s.handleResourceList)
		api.POST("/resources", s.handleResourceCreate)
		api.GET("/search", s.handleSearch)

		api.POST("/related_resources", s.handleRelatedCreate)
		api.GET("/related_resources/:id", s.handleRelatedList)

		api.GET("/graphs", s.handleGraphList)
		api.POST("/graphs", s.handleGraphCreate)
		api.GET("/graphs/:slug", s.handleGraphGet)
	}
	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}
