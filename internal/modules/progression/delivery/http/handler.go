package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"kolibri.dev/communityquest/internal/modules/progression/dto"
	"kolibri.dev/communityquest/internal/modules/progression/service"
	"kolibri.dev/communityquest/pkg/apperror"
	"kolibri.dev/communityquest/pkg/response"
	"kolibri.dev/communityquest/pkg/validator"
)

type ProgressionHandler struct {
	engine      service.Engine
	redisClient *redis.Client
	rateLimit   time.Duration
}

func NewProgressionHandler(engine service.Engine, redisClient *redis.Client, rateLimit time.Duration) *ProgressionHandler {
	return &ProgressionHandler{
		engine:      engine,
		redisClient: redisClient,
		rateLimit:   rateLimit,
	}
}

// CompleteTask handles the self-service completion endpoint.
func (h *ProgressionHandler) CompleteTask(c *gin.Context) {
	memberID, err := response.GetMemberID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	allowed, err := service.CheckAndSetRateLimit(c.Request.Context(), h.redisClient, memberID, "complete_task", h.rateLimit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if !allowed {
		response.ResponseError(c, apperror.ErrRateLimitExceeded)
		return
	}

	result, err := h.engine.CompleteTask(c.Request.Context(), memberID, response.GetMemberName(c), req.TaskID, req.Comment)
	if err != nil {
		h.writeRejectionOrError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCompletionResponse(result))
}

// AwardSpecial handles the moderator award endpoint.
func (h *ProgressionHandler) AwardSpecial(c *gin.Context) {
	moderator := response.GetMemberName(c)

	var req dto.AwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	memberName := req.MemberName
	if memberName == "" {
		memberName = req.MemberID
	}

	result, err := h.engine.AwardSpecial(c.Request.Context(), req.MemberID, memberName, req.TaskID, req.Comment, moderator)
	if err != nil {
		h.writeRejectionOrError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCompletionResponse(result))
}

func (h *ProgressionHandler) writeRejectionOrError(c *gin.Context, err error) {
	var rej *service.Rejection
	if errors.As(err, &rej) {
		c.JSON(statusForReason(rej.Reason), dto.RejectionResponse{
			Success:  false,
			Reason:   string(rej.Reason),
			Error:    rej.Message,
			Path:     string(rej.Path),
			Required: rej.Required,
			Level:    rej.Level,
		})
		return
	}
	response.ResponseError(c, err)
}

func statusForReason(reason service.Reason) int {
	switch reason {
	case service.ReasonTaskNotFound:
		return http.StatusNotFound
	case service.ReasonSpecialForbidden:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func toCompletionResponse(result *service.AwardResult) dto.CompletionResponse {
	return dto.CompletionResponse{
		Success:  true,
		XPEarned: result.XPEarned,
		TotalXP:  result.TotalXP,
		Tier:     int(result.Tier),
		TierName: result.Tier.Name(),
		Task:     result.Task,
	}
}
