package handler

import (
	"time"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/pkg/errors"
	"github.com/ecopoint-service/internal/pkg/utils"
	"github.com/ecopoint-service/internal/pkg/validator"
	"github.com/ecopoint-service/internal/usecase"
	"github.com/ecopoint-service/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EcopointHandler - обработчик поиска ecopontos
type EcopointHandler struct {
	searchUC  *usecase.ProximitySearchUseCase
	formatter *usecase.ResponseFormatter
	logger    *zap.Logger
}

// NewEcopointHandler - создание нового EcopointHandler
func NewEcopointHandler(searchUC *usecase.ProximitySearchUseCase, formatter *usecase.ResponseFormatter, logger *zap.Logger) *EcopointHandler {
	return &EcopointHandler{
		searchUC:  searchUC,
		formatter: formatter,
		logger:    logger,
	}
}

// Nearest godoc
// @Summary Ближайший ecoponto
// @Description Возвращает сообщение о ближайшем пункте приёма в радиусе 5 км. lat/lng принимаются строкой или числом.
// @Tags ecopoints
// @Accept json
// @Produce json
// @Param request body dto.EcopointRequest true "Координаты и фильтр категорий"
// @Success 200 {object} dto.EcopointMessage
// @Failure 400 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /listaEcopontos [post]
// @Router /api/v1/ecopoints/nearest [post]
func (h *EcopointHandler) Nearest(c *fiber.Ctx) error {
	var req dto.EcopointRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}

	result, err := h.searchUC.FindNearest(c.UserContext(), req.Query())
	if err != nil {
		return utils.SendError(c, err)
	}

	return c.JSON(h.formatter.Format(result))
}

// Nearby godoc
// @Summary Список ближайших ecopontos
// @Description Пункты в радиусе, отсортированные по расстоянию
// @Tags ecopoints
// @Accept json
// @Produce json
// @Param request body dto.NearbyRequest true "Параметры поиска"
// @Success 200 {object} utils.SuccessResponse{data=[]dto.NearbyPoint}
// @Failure 400 {object} utils.ErrorResponse "INVALID_QUERY или INVALID_RADIUS"
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/ecopoints/nearby [post]
func (h *EcopointHandler) Nearby(c *fiber.Ctx) error {
	start := time.Now()

	var req dto.NearbyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidQuery.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}

	if req.RadiusMeters != 0 && !utils.ValidateRadius(req.RadiusMeters) {
		return utils.SendError(c, errors.ErrInvalidRadius.WithDetails(map[string]interface{}{
			"min_meters": utils.MinRadiusMeters,
			"max_meters": utils.MaxRadiusMeters,
		}))
	}

	q := req.Query()
	results, err := h.searchUC.FindNearby(c.UserContext(), q)
	if err != nil {
		return utils.SendError(c, err)
	}

	items := make([]dto.NearbyPoint, 0, len(results))
	for _, r := range results {
		items = append(items, h.formatter.NearbyPoint(r))
	}

	limit := q.Limit
	if limit == 0 {
		limit = domain.DefaultNearbyLimit
	}

	return utils.SendSuccess(c, items, &utils.Meta{
		Total:    len(items),
		Limit:    limit,
		RadiusM:  q.RadiusMeters,
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}
