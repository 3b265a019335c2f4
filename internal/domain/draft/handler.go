package draft

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/casebook/casebook/internal/domain/medcase"
	"github.com/casebook/casebook/internal/platform/auth"
)

type Handler struct {
	mgr *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("clinician"))
	g.POST("/drafts", h.StartDraft)
	g.GET("/drafts", h.ListDrafts)
	g.GET("/drafts/:id", h.GetDraft)
	g.DELETE("/drafts/:id", h.DiscardDraft)
	g.PATCH("/drafts/:id/steps/:step", h.EditStep)
	g.POST("/drafts/:id/next", h.Next)
	g.POST("/drafts/:id/previous", h.Previous)
	g.POST("/drafts/:id/jump/:step", h.JumpTo)
	g.POST("/drafts/:id/save", h.SaveNow)
	g.POST("/drafts/:id/submit", h.Submit)
	g.POST("/drafts/:id/release", h.Release)
}

// wizardError maps wizard and store errors to HTTP responses. Validation
// failures return the per-field messages so the client can render them
// inline.
func wizardError(err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"message":      "validation failed",
			"step":         verr.Step,
			"field_errors": verr.FieldErrors,
		})
	}
	var cverr *medcase.ValidationError
	if errors.As(err, &cverr) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"message":      "validation failed",
			"field_errors": cverr.FieldErrors,
		})
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "draft not found")
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrSubmitInFlight):
		return echo.NewHTTPError(http.StatusConflict, "submission already in progress")
	case errors.Is(err, ErrClosed):
		return echo.NewHTTPError(http.StatusGone, "wizard session is closed")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) wizard(c echo.Context) (*Wizard, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid draft id")
	}
	w, err := h.mgr.Resume(c.Request().Context(), id)
	if err != nil {
		return nil, wizardError(err)
	}
	return w, nil
}

func (h *Handler) StartDraft(c echo.Context) error {
	w, err := h.mgr.Start(c.Request().Context())
	if err != nil {
		return wizardError(err)
	}
	return c.JSON(http.StatusCreated, w.Snapshot())
}

func (h *Handler) ListDrafts(c echo.Context) error {
	drafts, err := h.mgr.List(c.Request().Context())
	if err != nil {
		return wizardError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  drafts,
		"total": len(drafts),
	})
}

func (h *Handler) GetDraft(c echo.Context) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *Handler) DiscardDraft(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid draft id")
	}
	if err := h.mgr.Discard(c.Request().Context(), id); err != nil {
		return wizardError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) EditStep(c echo.Context) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	step := StepID(c.Param("step"))
	var p Patch
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := w.Edit(step, p); err != nil {
		return wizardError(err)
	}
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *Handler) Next(c echo.Context) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	if err := w.Next(c.Request().Context()); err != nil {
		return wizardError(err)
	}
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *Handler) Previous(c echo.Context) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	if err := w.Previous(c.Request().Context()); err != nil {
		return wizardError(err)
	}
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *Handler) JumpTo(c echo.Context) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	if err := w.JumpTo(c.Request().Context(), StepID(c.Param("step"))); err != nil {
		return wizardError(err)
	}
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *Handler) SaveNow(c echo.Context) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	if err := w.SaveNow(c.Request().Context()); err != nil {
		return wizardError(err)
	}
	return c.JSON(http.StatusOK, w.Snapshot())
}

func (h *Handler) Submit(c echo.Context) error {
	w, err := h.wizard(c)
	if err != nil {
		return err
	}
	mc, err := w.Submit(c.Request().Context())
	if err != nil {
		return wizardError(err)
	}
	if id, perr := uuid.Parse(w.DraftID()); perr == nil {
		h.mgr.Release(id)
	}
	return c.JSON(http.StatusCreated, mc)
}

func (h *Handler) Release(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid draft id")
	}
	h.mgr.Release(id)
	return c.NoContent(http.StatusNoContent)
}
