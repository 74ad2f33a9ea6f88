// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/femcite/internal/export"
	"github.com/pdiddy/femcite/internal/pipeline"
	"github.com/pdiddy/femcite/internal/session"
	"github.com/pdiddy/femcite/pkg/types"
)

// QueryRequest is the body of POST /api/sessions/:id/query.
type QueryRequest struct {
	Question string `json:"question"`
	Style    string `json:"style"`
}

// CreateSession starts a new session.
func (s *Server) CreateSession(c *gin.Context) {
	st, err := s.sessions.Create(c.Request.Context())
	if err != nil {
		s.logger.Error("creating session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": st.ID})
}

// GetSession returns the session's current memory.
func (s *Server) GetSession(c *gin.Context) {
	st, err := s.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Query submits a question to the session.
func (s *Server) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var style types.Style
	if req.Style != "" {
		parsed, err := types.ParseStyle(req.Style)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		style = parsed
	}

	var res pipeline.Result
	err := s.sessions.With(c.Request.Context(), c.Param("id"), func(st *session.State) error {
		var err error
		res, err = s.submitter.Submit(c.Request.Context(), st, req.Question, style)
		return err
	})

	var qe *pipeline.QueryError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, res)
	case errors.As(err, &qe):
		c.JSON(http.StatusBadGateway, gin.H{"error": qe.Notice(), "kind": qe.Kind})
	case errors.Is(err, types.ErrUnknownStyle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.sessionError(c, err)
	}
}

// Transcript downloads the session's chat transcript.
func (s *Server) Transcript(c *gin.Context) {
	s.download(c, export.TranscriptFile, "text/plain; charset=utf-8")
}

// Bibliography downloads the session's BibTeX file.
func (s *Server) Bibliography(c *gin.Context) {
	s.download(c, export.BibliographyFile, "application/x-bibtex; charset=utf-8")
}

func (s *Server) download(c *gin.Context, name, contentType string) {
	id := c.Param("id")
	if _, err := s.sessions.Get(c.Request.Context(), id); err != nil {
		s.sessionError(c, err)
		return
	}

	path, err := s.artifacts.Path(id, name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "nothing to download yet"})
			return
		}
		s.logger.Error("reading artifact", zap.String("path", path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read file"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, contentType, data)
}

func (s *Server) sessionError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	s.logger.Error("session request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
