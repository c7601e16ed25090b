package handler

import (
	"github.com/gin-gonic/gin"

	appannouncement "github.com/xiebiao/bookshop/internal/application/announcement"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/response"
)

// AnnouncementHandler 公告HTTP处理器
type AnnouncementHandler struct {
	add    *appannouncement.AddAnnouncementUseCase
	update *appannouncement.UpdateAnnouncementUseCase
	remove *appannouncement.DeleteAnnouncementUseCase
	query  *appannouncement.QueryUseCase
}

// NewAnnouncementHandler 创建公告处理器
func NewAnnouncementHandler(
	add *appannouncement.AddAnnouncementUseCase,
	update *appannouncement.UpdateAnnouncementUseCase,
	remove *appannouncement.DeleteAnnouncementUseCase,
	query *appannouncement.QueryUseCase,
) *AnnouncementHandler {
	return &AnnouncementHandler{add: add, update: update, remove: remove, query: query}
}

func bindAnnouncement(c *gin.Context) (appannouncement.AddAnnouncementRequest, bool) {
	var req dto.AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return appannouncement.AddAnnouncementRequest{}, false
	}

	postedAt, err := dto.ParseDate(req.PostedAt)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, err.Error())
		return appannouncement.AddAnnouncementRequest{}, false
	}
	expiry, err := dto.ParseDate(req.ExpiryDate)
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, err.Error())
		return appannouncement.AddAnnouncementRequest{}, false
	}

	return appannouncement.AddAnnouncementRequest{
		Description: req.Description,
		PostedAt:    postedAt,
		ExpiryDate:  expiry,
	}, true
}

// Add 新增公告（管理员），发布时间已到时立即推送
// @Summary      新增公告
// @Tags         公告
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AnnouncementRequest true "公告"
// @Success      201 {object} response.Response{data=appannouncement.AnnouncementView}
// @Failure      400 {object} response.Response "过期时间早于发布时间"
// @Router       /api/Announcement [post]
func (h *AnnouncementHandler) Add(c *gin.Context) {
	req, ok := bindAnnouncement(c)
	if !ok {
		return
	}
	view, err := h.add.Execute(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Update 修改公告（管理员）
// @Summary      修改公告
// @Tags         公告
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "公告ID"
// @Param        request body dto.AnnouncementRequest true "公告"
// @Success      200 {object} response.Response{data=appannouncement.AnnouncementView}
// @Failure      404 {object} response.Response "公告不存在"
// @Router       /api/Announcement/{id} [put]
func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	req, ok := bindAnnouncement(c)
	if !ok {
		return
	}
	view, err := h.update.Execute(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Delete 删除公告（管理员）
// @Summary      删除公告
// @Tags         公告
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "公告ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "公告不存在"
// @Router       /api/Announcement/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.remove.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListAll 全部公告（管理员）
// @Summary      全部公告
// @Tags         公告
// @Produce      json
// @Security     BearerAuth
// @Param        pageNumber query int false "页码"
// @Param        pageSize query int false "每页数量"
// @Success      200 {object} response.Response{data=appannouncement.AnnouncementPage}
// @Router       /api/Announcement/admin/all [get]
func (h *AnnouncementHandler) ListAll(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	page, err := h.query.List(c.Request.Context(), q.PageNumber, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, page)
}

// ListActive 生效中的公告
// @Summary      生效公告
// @Description  已发布且未过期
// @Tags         公告
// @Produce      json
// @Success      200 {object} response.Response{data=[]appannouncement.AnnouncementView}
// @Router       /api/Announcement/active [get]
func (h *AnnouncementHandler) ListActive(c *gin.Context) {
	items, err := h.query.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}
