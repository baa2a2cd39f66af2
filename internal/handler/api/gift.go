package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bahooo22/HannaWhishlist/internal/domain/gift"
	reqdto "github.com/bahooo22/HannaWhishlist/internal/handler/dto/request"
	resdto "github.com/bahooo22/HannaWhishlist/internal/handler/dto/response"
	"github.com/bahooo22/HannaWhishlist/internal/handler/httperr"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/errs"
	"github.com/bahooo22/HannaWhishlist/internal/usecase/commands"
	"github.com/bahooo22/HannaWhishlist/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GiftHandler struct {
	giftCommands commands.GiftCommands
	giftQueries  queries.GiftQueries
}

func NewGiftHandler(giftCommands commands.GiftCommands, giftQueries queries.GiftQueries) *GiftHandler {
	return &GiftHandler{
		giftCommands: giftCommands,
		giftQueries:  giftQueries,
	}
}

func (h *GiftHandler) List(c *gin.Context) {
	views, err := h.giftQueries.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromGiftViews(views))
}

func (h *GiftHandler) Paged(c *gin.Context) {
	pageIndex, err := strconv.Atoi(c.DefaultQuery("pageIndex", "1"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid pageIndex", nil)
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(queries.DefaultPageSize)))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid pageSize", nil)
		return
	}

	page, err := h.giftQueries.Page(c.Request.Context(), pageIndex, pageSize, c.Query("search"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromGiftPage(page))
}

func (h *GiftHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid gift ID format", nil)
		return
	}

	view, err := h.giftQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		h.abortWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromGiftView(view))
}

func (h *GiftHandler) Create(c *gin.Context) {
	var req reqdto.CreateGiftRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	view, err := h.giftCommands.Create(c.Request.Context(), req.Title, req.GetLink())
	if err != nil {
		h.abortWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromGiftView(view))
}

func (h *GiftHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid gift ID format", nil)
		return
	}

	var req reqdto.UpdateGiftRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	view, err := h.giftCommands.Update(c.Request.Context(), id, commands.UpdateGiftParams{
		Title: req.Title,
		Link:  req.Link,
	})
	if err != nil {
		h.abortWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromGiftView(view))
}

func (h *GiftHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid gift ID format", nil)
		return
	}

	if err := h.giftCommands.Delete(c.Request.Context(), id); err != nil {
		h.abortWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *GiftHandler) Reserve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid gift ID format", nil)
		return
	}

	var req reqdto.ReserveGiftRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	claimant, err := gift.NewClaimant(req.ReservedByID, req.ReservedByNickname, req.ReservedByFirstName, req.GetLastName())
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid claimant identity", nil)
		return
	}

	view, err := h.giftCommands.Reserve(c.Request.Context(), id, claimant)
	if err != nil {
		h.abortWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromGiftView(view))
}

func (h *GiftHandler) Unreserve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid gift ID format", nil)
		return
	}

	var req reqdto.UnreserveGiftRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	view, err := h.giftCommands.Unreserve(c.Request.Context(), id, req.ReservedByNickname)
	if err != nil {
		h.abortWithMappedError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromGiftView(view))
}

func (h *GiftHandler) abortWithMappedError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrGiftNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Gift not found", nil)
	case errors.Is(err, errs.ErrGiftAlreadyReserved):
		httperr.AbortWithError(c, http.StatusConflict, err, "Gift already reserved by another user", nil)
	case errors.Is(err, errs.ErrGiftNotReserved):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Gift is not reserved", nil)
	case errors.Is(err, errs.ErrNotGiftHolder):
		httperr.AbortWithError(c, http.StatusForbidden, err, "You cannot unreserve this gift", nil)
	case errors.Is(err, errs.ErrDomainValidation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Validation failed", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}
