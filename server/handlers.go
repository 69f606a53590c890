package server

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"seo_content_studio/generator"
	"seo_content_studio/pkg/logger"
	"seo_content_studio/publisher"
)

type statusResp struct {
	Configured     bool            `json:"configured"`
	Provider       string          `json:"provider,omitempty"`
	Model          string          `json:"model,omitempty"`
	Modes          []string        `json:"modes"`
	IntentOptions  []string        `json:"intent_options"`
	DefaultKeyword string          `json:"default_keyword"`
	Sections       sectionBounds   `json:"sections"`
	MetaTargets    metadataTargets `json:"meta_targets"`
}

type sectionBounds struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

type metadataTargets struct {
	TitleMin       int `json:"title_min"`
	TitleMax       int `json:"title_max"`
	DescriptionMin int `json:"description_min"`
	DescriptionMax int `json:"description_max"`
}

func (s *Server) handleStatus(c *gin.Context) {
	success(c, statusResp{
		Configured:     s.agent.Configured(),
		Provider:       s.opts.Provider,
		Model:          s.opts.Model,
		Modes:          []string{string(generator.ModeGenerate), string(generator.ModeDiagnose)},
		IntentOptions:  generator.IntentOptions,
		DefaultKeyword: generator.DefaultKeyword,
		Sections: sectionBounds{
			Min:     generator.MinSections,
			Max:     generator.MaxSections,
			Default: generator.DefaultSections,
		},
		MetaTargets: metadataTargets{
			TitleMin:       generator.MetaTitleMin,
			TitleMax:       generator.MetaTitleMax,
			DescriptionMin: generator.MetaDescriptionMin,
			DescriptionMax: generator.MetaDescriptionMax,
		},
	})
}

type modeReq struct {
	Mode string `json:"mode"`
}

func (s *Server) handleSessionCreate(c *gin.Context) {
	var req modeReq
	if err := bindOptional(c, &req); err != nil {
		fail(c, err)
		return
	}
	mode := generator.ModeGenerate
	if req.Mode != "" {
		m, err := generator.ParseMode(req.Mode)
		if err != nil {
			fail(c, err)
			return
		}
		mode = m
	}

	sess := generator.NewSession(uuid.New().String(), mode, s.agent)
	ctx := logger.WithContext(c.Request.Context(), logger.SessionIDKey, sess.ID)
	if err := s.store.Save(ctx, sess.Snapshot()); err != nil {
		fail(c, err)
		return
	}
	logger.Info(ctx, "session created", "mode", mode)
	created(c, newSessionView(sess))
}

func (s *Server) handleSessionGet(c *gin.Context) {
	snap, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, newSessionView(generator.Resume(snap, s.agent)))
}

func (s *Server) handleSessionDelete(c *gin.Context) {
	id := c.Param("id")
	unlock := s.locks.lock(id)
	err := s.store.Delete(c.Request.Context(), id)
	unlock()
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleMode resets the session into the requested mode. Every stage output
// is dropped and reported as discarded.
func (s *Server) handleMode(c *gin.Context) {
	var req modeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}
	mode, err := generator.ParseMode(req.Mode)
	if err != nil {
		fail(c, err)
		return
	}
	s.runStage(c, "mode", req, func(_ context.Context, sess *generator.Session, res *stageResult) error {
		res.Discarded = sess.Reset(mode)
		return nil
	})
}

type outlineReq struct {
	Keyword  string `json:"keyword"`
	Intent   string `json:"intent"`
	Sections int    `json:"sections"`
}

func (s *Server) handleOutline(c *gin.Context) {
	var req outlineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}
	if req.Sections == 0 {
		req.Sections = generator.DefaultSections
	}
	s.runStage(c, generator.StageOutline, req, func(ctx context.Context, sess *generator.Session, res *stageResult) error {
		discarded, err := sess.Outline(ctx, generator.OutlineRequest{
			Keyword:  req.Keyword,
			Intent:   req.Intent,
			Sections: req.Sections,
		})
		res.Discarded = discarded
		return err
	})
}

func (s *Server) handleDraft(c *gin.Context) {
	s.runStage(c, generator.StageDraft, nil, func(ctx context.Context, sess *generator.Session, res *stageResult) error {
		discarded, err := sess.Draft(ctx)
		res.Discarded = discarded
		return err
	})
}

type diagnoseReq struct {
	Keyword string `json:"keyword"`
	Intent  string `json:"intent"`
	URL     string `json:"url"`
	Body    string `json:"body"`
}

func (s *Server) handleDiagnose(c *gin.Context) {
	var req diagnoseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}
	s.runStage(c, generator.StageArticle, req, func(ctx context.Context, sess *generator.Session, res *stageResult) error {
		before := sess.State
		report, err := sess.Diagnose(ctx, generator.DiagnoseRequest{
			Keyword: req.Keyword,
			Intent:  req.Intent,
			URL:     req.URL,
			Body:    req.Body,
		})
		if err != nil {
			return err
		}
		res.Fetch = &report
		res.Discarded = before.Discarded(sess.State)
		return nil
	})
}

func (s *Server) handleMetadata(c *gin.Context) {
	s.runStage(c, generator.StageMetadata, nil, func(ctx context.Context, sess *generator.Session, _ *stageResult) error {
		return sess.Metadata(ctx)
	})
}

type keywordReq struct {
	Keyword string `json:"keyword"`
}

func (s *Server) handleChecklist(c *gin.Context) {
	var req keywordReq
	if err := bindOptional(c, &req); err != nil {
		fail(c, err)
		return
	}
	s.runStage(c, generator.StageChecklist, req, func(ctx context.Context, sess *generator.Session, res *stageResult) error {
		before := sess.State
		if err := sess.Checklist(ctx, req.Keyword); err != nil {
			return err
		}
		res.Discarded = before.Discarded(sess.State)
		return nil
	})
}

func (s *Server) handleRevise(c *gin.Context) {
	var req keywordReq
	if err := bindOptional(c, &req); err != nil {
		fail(c, err)
		return
	}
	s.runStage(c, generator.StageRevision, req, func(ctx context.Context, sess *generator.Session, res *stageResult) error {
		revised, err := sess.Revise(ctx, req.Keyword)
		if err != nil {
			return err
		}
		res.Revised = &revised
		if !revised {
			res.Message = "no revision needed"
		}
		return nil
	})
}

func (s *Server) handleExport(c *gin.Context) {
	snap, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	doc, err := publisher.FromState(snap.State)
	if err != nil {
		fail(c, err)
		return
	}

	switch format := strings.ToLower(c.DefaultQuery("format", "md")); format {
	case "md", "markdown":
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename()}))
		c.Data(http.StatusOK, publisher.MarkdownContentType, []byte(doc.Markdown()))
	case "html":
		body, err := doc.HTML()
		if err != nil {
			fail(c, err)
			return
		}
		c.Data(http.StatusOK, publisher.HTMLContentType, []byte(previewPage(doc, body)))
	default:
		fail(c, fmt.Errorf("%w: unknown export format %q", generator.ErrValidation, format))
	}
}

func previewPage(doc publisher.Document, body string) string {
	title := doc.Title
	if doc.Metadata != nil && doc.Metadata.Title != "" {
		title = doc.Metadata.Title
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\">\n", html.EscapeString(doc.Digest()))
	b.WriteString("</head><body>\n")
	b.WriteString(body)
	b.WriteString("</body></html>\n")
	return b.String()
}

type stageFunc func(ctx context.Context, sess *generator.Session, res *stageResult) error

// runStage loads the session, runs fn under the session lock and saves the
// result. Identical concurrent submissions share one execution. The stage
// keeps running if the submitting client goes away, bounded by the request
// timeout.
func (s *Server) runStage(c *gin.Context, stage generator.Stage, params any, fn stageFunc) {
	id := c.Param("id")
	key := fmt.Sprintf("%s|%s|%+v", id, stage, params)
	reqCtx := logger.WithContext(c.Request.Context(), logger.SessionIDKey, id)

	v, err, shared := s.flight.Do(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(reqCtx), s.opts.RequestTimeout)
		defer cancel()

		unlock := s.locks.lock(id)
		defer unlock()

		snap, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		sess := generator.Resume(snap, s.agent)

		var res stageResult
		if err := fn(ctx, sess, &res); err != nil {
			return nil, err
		}
		if err := s.store.Save(ctx, sess.Snapshot()); err != nil {
			return nil, err
		}
		return stageResponse{Session: newSessionView(sess), stageResult: res}, nil
	})
	if shared {
		logger.Debug(reqCtx, "stage submission collapsed", "stage", stage)
	}
	if err != nil {
		fail(c, err)
		return
	}
	success(c, v.(stageResponse))
}

// bindOptional decodes a JSON body when one was sent.
func bindOptional(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return bindError(err)
	}
	return nil
}

func bindError(err error) error {
	return fmt.Errorf("%w: malformed request body: %v", generator.ErrValidation, err)
}
