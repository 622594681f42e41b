// Admin HTTP handlers.
//
// Operator endpoints, mounted behind middleware.RequireAdmin:
//   - GET  /admin/stats   (active listings per category)
//   - POST /admin/sweep   (remove expired listings and webhook events now)
//   - GET  /admin/claims  (payment claims, paginated, optional status filter)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-society-bot/internal/domain"
	"github.com/tbourn/go-society-bot/internal/services"
	"github.com/tbourn/go-society-bot/internal/utils"
)

//
// DTOs
//

// CategoryCount is the number of active listings in one category.
type CategoryCount struct {
	Category string `json:"category" example:"maid"`
	Count    int64  `json:"count" example:"12"`
}

// StatsResponse is the active listing breakdown.
type StatsResponse struct {
	Total      int64           `json:"total" example:"40"`
	Categories []CategoryCount `json:"categories"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListClaimsResponse wraps a page of claims and pagination information.
type ListClaimsResponse struct {
	Claims     []domain.PaymentClaim `json:"claims"`
	Pagination Pagination            `json:"pagination"`
}

//
// Helpers
//

const maxPageSize = 100

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	p := utils.ParsePage(c.Query("page"), c.Query("page_size"), utils.Page{Number: 1, Size: 20}, maxPageSize)
	return p.Number, p.Size
}

//
// Handlers
//

// AdminStats godoc
// @ID          adminStats
// @Summary     Active listings by category
// @Tags        Admin
// @Produce     json
//
// @Param       X-Admin-ID  header  int  true  "Admin chat user id"
//
// @Success     200  {object}  handlers.StatsResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Not the admin"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/stats [get]
func (h *Handlers) AdminStats(c *gin.Context) {
	counts, total, err := h.commands.Counts(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	resp := StatsResponse{Total: total, Categories: make([]CategoryCount, 0, len(counts))}
	for _, cc := range counts {
		resp.Categories = append(resp.Categories, CategoryCount{Category: cc.Category, Count: cc.Count})
	}
	ok(c, http.StatusOK, resp)
}

// AdminSweep godoc
// @ID          adminSweep
// @Summary     Remove expired rows now
// @Description Deletes expired listings and expired webhook event records. The scheduler runs the same sweep periodically.
// @Tags        Admin
// @Produce     json
//
// @Param       X-Admin-ID  header  int  true  "Admin chat user id"
//
// @Success     200  {object}  services.SweepResult
// @Failure     403  {object}  handlers.ErrorResponse  "Not the admin"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/sweep [post]
func (h *Handlers) AdminSweep(c *gin.Context) {
	res, err := h.maintenance.Sweep(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSweepFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}

// ListClaims godoc
// @ID          listClaims
// @Summary     List payment claims (paginated)
// @Description Newest first. The optional status filter takes one of created, pending, approved, paid, rejected.
// @Tags        Admin
// @Produce     json
//
// @Param       X-Admin-ID  header  int     true   "Admin chat user id"
// @Param       status      query   string  false  "Claim status"  Enums(created,pending,approved,paid,rejected)
// @Param       page        query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size   query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListClaimsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown status"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the admin"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/claims [get]
func (h *Handlers) ListClaims(c *gin.Context) {
	page, pageSize := clampPagination(c)
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))

	items, total, err := h.claims.ClaimsPage(c.Request.Context(), status, page, pageSize)
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := utils.TotalPages(total, pageSize)
	ok(c, http.StatusOK, ListClaimsResponse{
		Claims: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
