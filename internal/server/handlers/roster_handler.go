package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/service/roster"
)

// RosterService is the roster surface exposed over HTTP.
type RosterService interface {
	Students(ctx context.Context, q roster.Query) (roster.List[models.Student], error)
	CreateStudent(ctx context.Context, st models.Student) (models.Student, error)
	UpdateStudent(ctx context.Context, id string, st models.Student) (models.Student, error)
	DeleteStudent(ctx context.Context, id string) error

	Professionals(ctx context.Context, q roster.Query) (roster.List[models.Professional], error)
	CreateProfessional(ctx context.Context, p models.Professional) (models.Professional, error)
	UpdateProfessional(ctx context.Context, id string, p models.Professional) (models.Professional, error)
	DeleteProfessional(ctx context.Context, id string) error

	Units(ctx context.Context, q roster.Query) (roster.List[models.Unit], error)
	CreateUnit(ctx context.Context, u models.Unit) (models.Unit, error)
	UpdateUnit(ctx context.Context, id string, u models.Unit) (models.Unit, error)
	DeleteUnit(ctx context.Context, id string) error

	Classes(ctx context.Context, q roster.Query) (roster.List[models.Class], error)
	CreateClass(ctx context.Context, c models.Class) (models.Class, error)
	UpdateClass(ctx context.Context, id string, c models.Class) (models.Class, error)
	DeleteClass(ctx context.Context, id string) error

	Plans(ctx context.Context, unitID string) ([]models.Plan, error)
	Recurrences(ctx context.Context) ([]models.Recurrence, error)
}

// RosterHandler serves students, professionals, units, classes and the plan catalog.
type RosterHandler struct {
	svc      RosterService
	pageSize int
	logger   *zap.Logger
}

// NewRosterHandler constructs the roster HTTP adapter.
func NewRosterHandler(svc RosterService, pageSize int, logger *zap.Logger) *RosterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterHandler{svc: svc, pageSize: pageSize, logger: logger}
}

func (h *RosterHandler) query(c *gin.Context) roster.Query {
	return roster.Query{
		Search: c.Query("q"),
		UnitID: c.Query("unit_id"),
		Status: c.Query("status"),
		Window: windowParam(c, h.pageSize),
	}
}

// resource wires list/create/update/delete of one roster collection.
type resource[T any] struct {
	list   func(context.Context, roster.Query) (roster.List[T], error)
	create func(context.Context, T) (T, error)
	update func(context.Context, string, T) (T, error)
	remove func(context.Context, string) error
}

func register[T any](g *gin.RouterGroup, h *RosterHandler, r resource[T]) {
	g.GET("", func(c *gin.Context) {
		list, err := r.list(c.Request.Context(), h.query(c))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})
	g.POST("", func(c *gin.Context) {
		var in T
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, h.logger, err)
			return
		}
		out, err := r.create(c.Request.Context(), in)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	})
	g.PUT("/:id", func(c *gin.Context) {
		var in T
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, h.logger, err)
			return
		}
		out, err := r.update(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})
	g.DELETE("/:id", func(c *gin.Context) {
		if err := r.remove(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

// Register mounts the roster routes under g.
func (h *RosterHandler) Register(g *gin.RouterGroup) {
	register(g.Group("/students"), h, resource[models.Student]{
		list: h.svc.Students, create: h.svc.CreateStudent, update: h.svc.UpdateStudent, remove: h.svc.DeleteStudent,
	})
	register(g.Group("/professionals"), h, resource[models.Professional]{
		list: h.svc.Professionals, create: h.svc.CreateProfessional, update: h.svc.UpdateProfessional, remove: h.svc.DeleteProfessional,
	})
	register(g.Group("/units"), h, resource[models.Unit]{
		list: h.svc.Units, create: h.svc.CreateUnit, update: h.svc.UpdateUnit, remove: h.svc.DeleteUnit,
	})
	register(g.Group("/classes"), h, resource[models.Class]{
		list: h.svc.Classes, create: h.svc.CreateClass, update: h.svc.UpdateClass, remove: h.svc.DeleteClass,
	})
	g.GET("/plans", h.Plans)
	g.GET("/recurrences", h.Recurrences)
}

// Plans lists the active plans, optionally of ?unit_id.
func (h *RosterHandler) Plans(c *gin.Context) {
	plans, err := h.svc.Plans(c.Request.Context(), c.Query("unit_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": plans})
}

// Recurrences lists the active billing recurrences.
func (h *RosterHandler) Recurrences(c *gin.Context) {
	out, err := h.svc.Recurrences(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}
