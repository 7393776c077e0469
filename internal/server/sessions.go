package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/piwi3910/marcenapp/internal/importer"
	"github.com/piwi3910/marcenapp/internal/model"
	"github.com/piwi3910/marcenapp/internal/session"
)

type sessionView struct {
	ID      string        `json:"id"`
	State   session.State `json:"state"`
	CanUndo bool          `json:"can_undo"`
	CanRedo bool          `json:"can_redo"`
	History []string      `json:"history"`
}

func viewOf(sess *session.Session, st session.State) sessionView {
	return sessionView{ID: sess.ID(), State: st, CanUndo: sess.CanUndo(), CanRedo: sess.CanRedo(), History: sess.History()}
}

func (s *Server) lookup(c *gin.Context) (*session.Session, bool) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		writeError(c, fmt.Errorf("%w: %s", errSessionNotFound, c.Param("id")))
	}
	return sess, ok
}

// handleCreateSession opens a session. The body is optional; when present it
// is a part list that seeds the workspace.
func (s *Server) handleCreateSession(c *gin.Context) {
	p := model.NewProject()
	p.Settings = s.cfg.NestingSettings()

	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		writeError(c, fmt.Errorf("reading body: %w", err))
		return
	}
	if len(bytes.TrimSpace(data)) > 0 {
		pl, err := importer.DecodePartList(data)
		if err != nil {
			writeError(c, err)
			return
		}
		if pl.Name != "" {
			p.Name = pl.Name
		}
		p.Parts = pl.Parts
		p.Settings = pl.Apply(p.Settings)
	}

	sess := s.sessions.Create(p)
	c.JSON(http.StatusCreated, viewOf(sess, sess.Snapshot()))
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewOf(sess, sess.Snapshot()))
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if !s.sessions.Delete(c.Param("id")) {
		writeError(c, fmt.Errorf("%w: %s", errSessionNotFound, c.Param("id")))
		return
	}
	c.Status(http.StatusNoContent)
}

// mutateSession runs a state change and writes the resulting view.
func (s *Server) mutateSession(c *gin.Context, change func(*session.Session) (session.State, error)) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	st, err := change(sess)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess, st))
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) handleAddPart(c *gin.Context) {
	var p model.Part
	if !bindJSON(c, &p) {
		return
	}
	s.mutateSession(c, func(sess *session.Session) (session.State, error) {
		return sess.AddPart(p)
	})
}

// handleReplaceParts swaps the whole part list for the parts of a part list
// document, as after an import.
func (s *Server) handleReplaceParts(c *gin.Context) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		writeError(c, fmt.Errorf("reading body: %w", err))
		return
	}
	pl, err := importer.DecodePartList(data)
	if err != nil {
		writeError(c, err)
		return
	}
	s.mutateSession(c, func(sess *session.Session) (session.State, error) {
		return sess.ReplaceParts(pl.Parts, fmt.Sprintf("Import %d parts", len(pl.Parts)))
	})
}

func (s *Server) handleUpdatePart(c *gin.Context) {
	var p model.Part
	if !bindJSON(c, &p) {
		return
	}
	s.mutateSession(c, func(sess *session.Session) (session.State, error) {
		return sess.UpdatePart(c.Param("partID"), p)
	})
}

func (s *Server) handleRemovePart(c *gin.Context) {
	s.mutateSession(c, func(sess *session.Session) (session.State, error) {
		return sess.RemovePart(c.Param("partID"))
	})
}

func (s *Server) handleSetSettings(c *gin.Context) {
	var settings model.NestingSettings
	if !bindJSON(c, &settings) {
		return
	}
	s.mutateSession(c, func(sess *session.Session) (session.State, error) {
		return sess.SetSettings(settings)
	})
}

func (s *Server) handleUndo(c *gin.Context) {
	s.mutateSession(c, (*session.Session).Undo)
}

func (s *Server) handleRedo(c *gin.Context) {
	s.mutateSession(c, (*session.Session).Redo)
}

// handleSessionProject returns the workspace as a saveable project document.
func (s *Server) handleSessionProject(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot().Project())
}

func (s *Server) handleSessionNesting(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	result, err := sess.Nest(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
