// Package server is a development stand-in for the story-generation
// backend: the same routes and envelopes, with canned template generation
// instead of live model calls. It lets the player be exercised end to end
// without any API keys.
package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"talecanvas/internal/domain/storybook"
)

// Server holds the most recently generated storybook, like the original
// backend's in-memory current_storybook.
type Server struct {
	mu      sync.Mutex
	current *storybook.Storybook
	pages   int
}

func New(pages int) *Server {
	if pages <= 0 {
		pages = 6
	}
	return &Server{pages: pages}
}

// Router builds the gin handler tree.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.POST("/api/generate_story_from_chat", s.handleGenerateFromChat)
	r.GET("/api/get_current_storybook", s.handleCurrentStorybook)
	r.POST("/api/export_pdf", s.handleExportPDF)
	return r
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	logrus.WithField("addr", addr).Info("demo backend listening")
	return s.Router().Run(addr)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleGenerateFromChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "message is required"})
		return
	}

	analysis := analyzeMessage(req.Message)
	book := s.buildStorybook(analysis)

	s.mu.Lock()
	s.current = book
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"id":    book.ID,
		"theme": book.Theme,
		"pages": len(book.Pages),
	}).Info("storybook generated")

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"analysis":  analysis,
		"storybook": book,
	})
}

func (s *Server) handleCurrentStorybook(c *gin.Context) {
	s.mu.Lock()
	book := s.current
	s.mu.Unlock()

	if book == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "no current storybook"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "storybook": book})
}

type exportRequest struct {
	StorybookID string `json:"storybook_id"`
}

func (s *Server) handleExportPDF(c *gin.Context) {
	var req exportRequest
	_ = c.ShouldBindJSON(&req)

	s.mu.Lock()
	book := s.current
	s.mu.Unlock()

	if book == nil || (req.StorybookID != "" && req.StorybookID != book.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "storybook not found"})
		return
	}

	pdf, err := renderPDF(book)
	if err != nil {
		logrus.WithError(err).Error("pdf export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="storybook_`+book.ID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
