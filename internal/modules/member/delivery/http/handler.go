package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	memberService "kolibri.dev/communityquest/internal/modules/member/service"
	"kolibri.dev/communityquest/pkg/response"
)

type MemberHandler struct {
	service memberService.MemberService
}

func NewMemberHandler(service memberService.MemberService) *MemberHandler {
	return &MemberHandler{service: service}
}

func (h *MemberHandler) GetMe(c *gin.Context) {
	memberID, err := response.GetMemberID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	profile, err := h.service.Profile(c.Request.Context(), memberID, response.GetMemberName(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}
