package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resource-cards/internal/model"
	"resource-cards/internal/search"
)

const maxBody = 8 << 20

func (s *Server) handleCardList(c *gin.Context) {
	cards, err := s.cfg.Store.ListCards(c.Request.Context())
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, cards)
}

// handleCardGet answers with the construction payload itself: {data, datatypes}.
func (s *Server) handleCardGet(c *gin.Context) {
	p, err := s.cfg.Store.CardPayload(c.Request.Context(), c.Param("cardid"))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleCardSave(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		respondError(c, http.StatusBadRequest, "invalid_body", errors.New("empty body"))
		return
	}
	saved, err := s.cfg.Store.SaveCard(c.Request.Context(), c.Param("cardid"), body)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, saved)
}

func (s *Server) handleCardDelete(c *gin.Context) {
	if err := s.cfg.Store.DeleteCard(c.Request.Context(), c.Param("cardid")); err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDatatypes(c *gin.Context) {
	dts, err := s.cfg.Store.Datatypes(c.Request.Context())
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, dts)
}

func (s *Server) handleResourceList(c *gin.Context) {
	rs, err := s.cfg.Store.ListResources(c.Request.Context(), c.Query("graph"))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, rs)
}

func (s *Server) handleResourceCreate(c *gin.Context) {
	var r model.Resource
	if err := c.ShouldBindJSON(&r); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if strings.TrimSpace(r.Name) == "" {
		respondError(c, http.StatusBadRequest, "invalid_body", errors.New("missing displayname"))
		return
	}
	out, err := s.cfg.Store.AddResource(c.Request.Context(), r)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusCreated, out)
}

func (s *Server) handleSearch(c *gin.Context) {
	limit := 25
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	rs, err := s.cfg.Store.ListResources(c.Request.Context(), c.Query("graph"))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, search.Rank(rs, c.Query("q"), limit))
}

// handleRelatedCreate accepts the batch request either form encoded
// (instances_to_relate[] repeated) or as JSON.
func (s *Server) handleRelatedCreate(c *gin.Context) {
	var req model.RelationshipRequest
	if strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	} else {
		req.RelationshipType = c.PostForm("relationship_type")
		req.RootResourceInstanceID = c.PostForm("root_resourceinstanceid")
		req.InstancesToRelate = append(c.PostFormArray("instances_to_relate[]"), c.PostFormArray("instances_to_relate")...)
	}
	rels, err := s.cfg.Store.CreateRelationships(c.Request.Context(), req)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, rels)
}

func (s *Server) handleRelatedList(c *gin.Context) {
	rels, err := s.cfg.Store.RelatedTo(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, rels)
}

func (s *Server) handleGraphList(c *gin.Context) {
	gs, err := s.cfg.Store.ListGraphs(c.Request.Context())
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, gs)
}

func (s *Server) handleGraphCreate(c *gin.Context) {
	var g model.Graph
	if err := c.ShouldBindJSON(&g); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	out, err := s.cfg.Store.CreateGraph(c.Request.Context(), g)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusCreated, out)
}

func (s *Server) handleGraphGet(c *gin.Context) {
	g, err := s.cfg.Store.GraphBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	respondData(c, http.StatusOK, g)
}
