package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/viyanta/viyanta-web-sub000/internal/cache"
	"github.com/viyanta/viyanta-web-sub000/internal/collab"
	"github.com/viyanta/viyanta-web-sub000/internal/source"
	"github.com/viyanta/viyanta-web-sub000/pkg/tablemodel"
)

const defaultBodyLimit = 32 << 20

// Version is reported by the health endpoint
var Version = "dev"

// TableResponse is the JSON response of every table endpoint
type TableResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error,omitempty"`
	Summary string                 `json:"summary,omitempty"`
	Table   *tablemodel.TableModel `json:"table,omitempty"`
}

// EditRequest applies cell edits to a payload
type EditRequest struct {
	Input  json.RawMessage               `json:"input"`
	Form   string                        `json:"form"`
	Record int                           `json:"record"`
	Edits  map[tablemodel.EditKey]string `json:"edits"`
}

// ToggleRequest flips the expansion of one cell
type ToggleRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Option configures a Server
type Option func(*Server)

// Server exposes the engine over HTTP
type Server struct {
	engine   *tablemodel.Engine
	registry *tablemodel.Registry
	fetcher  cache.Fetcher
	prefs    source.Preferences
	app      *fiber.App

	mu   sync.Mutex
	gens map[string]*collab.Generations
}

// WithFetcher enables the document endpoint
func WithFetcher(f cache.Fetcher) Option {
	return func(s *Server) {
		s.fetcher = f
	}
}

// WithPreferences restricts the document endpoint to enabled forms
func WithPreferences(p source.Preferences) Option {
	return func(s *Server) {
		s.prefs = p
	}
}

// New creates a server for the engine
func New(engine *tablemodel.Engine, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		registry: tablemodel.NewRegistry(),
		gens:     make(map[string]*collab.Generations),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "tablelens",
		BodyLimit:             defaultBodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(recover.New())
	s.routes()

	return s
}

// App returns the underlying fiber application
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the context is canceled
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", addr)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("API server shutting down")
		return s.app.Shutdown()
	}
}

func (s *Server) routes() {
	api := s.app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Post("/normalize", s.handleNormalize)
	api.Post("/edits", s.handleEdits)
	api.Post("/tables/:table/toggle", s.handleToggle)
	api.Delete("/tables/:table/expansion", s.handleReset)
	api.Get("/documents/:company/:file/:split", s.handleDocument)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": Version,
	})
}

// handleNormalize accepts raw text or JSON. The optional "table" query
// parameter selects the expansion state to apply.
func (s *Server) handleNormalize(c *fiber.Ctx) error {
	input := source.Prepare(c.Body())
	model := s.engine.Normalize(input, s.expansion(c.Query("table")))
	return respond(c, model)
}

func (s *Server) handleEdits(c *fiber.Ctx) error {
	var req EditRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid edit request: "+err.Error())
	}
	if len(req.Input) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "missing input")
	}

	model := s.engine.Normalize(rawInput(req.Input), s.expansion(c.Query("table")))
	model = tablemodel.ApplyEdits(model, req.Form, req.Record, req.Edits)
	return respond(c, model)
}

func (s *Server) handleToggle(c *fiber.Ctx) error {
	var req ToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid toggle request: "+err.Error())
	}
	if req.Row < 0 || req.Col < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "row and col must not be negative")
	}

	expanded := s.registry.Toggle(c.Params("table"), req.Row, req.Col)
	return c.JSON(fiber.Map{"success": true, "expanded": expanded})
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	s.registry.Reset(c.Params("table"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleDocument(c *fiber.Ctx) error {
	if s.fetcher == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "no collaborator configured")
	}
	if form := c.Query("form"); form != "" && !s.prefs.Enabled(form) {
		return fiber.NewError(fiber.StatusForbidden, "form "+strconv.Quote(form)+" is disabled")
	}

	// A newer request for the same table supersedes this one
	table := c.Query("table")
	var gen *collab.Generations
	var token uint64
	if table != "" {
		gen = s.generations(table)
		token = gen.Next()
	}

	ref := collab.Ref{Company: c.Params("company"), File: c.Params("file"), Split: c.Params("split")}
	doc, err := s.fetcher.FetchDocument(c.UserContext(), ref)
	if gen != nil && !gen.IsCurrent(token) {
		slog.Info("Discarding superseded document", "ref", ref.String(), "table", table)
		return fiber.NewError(fiber.StatusConflict, "superseded by a newer request for table "+strconv.Quote(table))
	}
	if err != nil {
		slog.Warn("Document fetch failed", "ref", ref.String(), "error", err)
		if errors.Is(err, collab.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	model := s.engine.Normalize(source.FromDocument(doc), s.expansion(table))
	return respond(c, model)
}

// generations returns the request generations of a table
func (s *Server) generations(table string) *collab.Generations {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.gens[table]
	if !ok {
		g = &collab.Generations{}
		s.gens[table] = g
	}
	return g
}

func (s *Server) expansion(table string) tablemodel.Expansion {
	if table == "" {
		return nil
	}
	return s.registry.Snapshot(table)
}

// rawInput turns a JSON string into raw text and passes anything else on
// as a JSON payload
func rawInput(raw json.RawMessage) any {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return source.Prepare([]byte(text))
	}
	return source.Prepare(raw)
}

func respond(c *fiber.Ctx, model tablemodel.TableModel) error {
	resp := TableResponse{Success: model.Reason == "", Summary: model.Summary(), Table: &model}
	if model.Reason != "" {
		resp.Error = model.Reason
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}
	return c.JSON(resp)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(TableResponse{Success: false, Error: err.Error()})
}
