package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/noticeboard/notice-board-api/internal/core/domain"
	"github.com/noticeboard/notice-board-api/internal/core/ports"
)

// BroadcastHandler handles the broadcast lifecycle endpoints. List, Get and
// Stats are public; Create, Update and Delete sit behind the auth guard.
type BroadcastHandler struct {
	service ports.BroadcastService
}

func NewBroadcastHandler(service ports.BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{service: service}
}

// List handles GET /api/broadcasts.
//
// @Summary      List broadcasts
// @Tags         broadcasts
// @Produce      json
// @Param        page     query     int     false  "Page number (default 1)"
// @Param        limit    query     int     false  "Page size (default 20)"
// @Param        type     query     string  false  "Filter by type"
// @Param        urgency  query     string  false  "Filter by urgency"
// @Param        status   query     string  false  "Filter by status (default active)"
// @Param        search   query     string  false  "Substring match across title, message, tags"
// @Param        sort     query     string  false  "Sort field, '-' prefix for descending (default -createdAt)"
// @Success      200      {object}  envelope
// @Router       /api/broadcasts [get]
func (h *BroadcastHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.List(c.Request().Context(), ports.ListBroadcastsInput{
		Status:  c.QueryParam("status"),
		Type:    c.QueryParam("type"),
		Urgency: c.QueryParam("urgency"),
		Search:  c.QueryParam("search"),
		Sort:    c.QueryParam("sort"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    result.Items,
		Pagination: &pagination{
			Page:  result.Page,
			Limit: result.Limit,
			Total: result.Total,
			Pages: result.TotalPages,
		},
	})
}

// Get handles GET /api/broadcasts/:id. Reading is not pure: each call bumps
// the view counter.
//
// @Summary      Get a broadcast by id
// @Tags         broadcasts
// @Produce      json
// @Param        id   path      string  true  "Broadcast id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /api/broadcasts/{id} [get]
func (h *BroadcastHandler) Get(c echo.Context) error {
	b, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: b})
}

// Create handles POST /api/broadcasts.
//
// @Summary      Create a broadcast
// @Tags         broadcasts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBroadcastRequest  true  "Broadcast fields"
// @Success      201   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Router       /api/broadcasts [post]
func (h *BroadcastHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createBroadcastRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	b, err := h.service.Create(c.Request().Context(), ports.CreateBroadcastInput{
		Title:      req.Title,
		Message:    req.Message,
		Urgency:    req.Urgency,
		Type:       req.Type,
		Tags:       req.Tags,
		ExpiryDate: req.ExpiryDate,
		Priority:   req.Priority,
	}, identity.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, envelope{Success: true, Data: b})
}

// Update handles PUT /api/broadcasts/:id.
//
// @Summary      Update a broadcast
// @Tags         broadcasts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Broadcast id"
// @Param        body  body      updateBroadcastRequest  true  "Fields to overwrite"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      403   {object}  envelope
// @Failure      404   {object}  envelope
// @Router       /api/broadcasts/{id} [put]
func (h *BroadcastHandler) Update(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateBroadcastRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	b, err := h.service.Update(c.Request().Context(), c.Param("id"), identity, toBroadcastUpdate(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{Success: true, Data: b})
}

// Delete handles DELETE /api/broadcasts/:id. Removal is permanent.
//
// @Summary      Delete a broadcast
// @Tags         broadcasts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Broadcast id"
// @Success      200  {object}  envelope
// @Failure      403  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /api/broadcasts/{id} [delete]
func (h *BroadcastHandler) Delete(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), identity); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, envelope{Success: true, Message: "Broadcast deleted"})
}

// Stats handles GET /api/broadcasts/stats/summary.
//
// @Summary      Broadcast summary statistics
// @Tags         broadcasts
// @Produce      json
// @Success      200  {object}  envelope
// @Router       /api/broadcasts/stats/summary [get]
func (h *BroadcastHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: stats})
}

// toBroadcastUpdate maps the HTTP payload onto the partial-update DTO.
func toBroadcastUpdate(req updateBroadcastRequest) ports.BroadcastUpdate {
	u := ports.BroadcastUpdate{
		Title:      req.Title,
		Message:    req.Message,
		Tags:       req.Tags,
		CreatedBy:  req.CreatedBy,
		ExpiryDate: ports.TimePatch{Set: req.ExpiryDate.set, Time: req.ExpiryDate.value},
		Views:      req.Views,
		Priority:   req.Priority,
	}
	if req.Urgency != nil {
		urgency := domain.Urgency(*req.Urgency)
		u.Urgency = &urgency
	}
	if req.Type != nil {
		btype := domain.BroadcastType(*req.Type)
		u.Type = &btype
	}
	if req.Status != nil {
		status := domain.BroadcastStatus(*req.Status)
		u.Status = &status
	}
	return u
}
