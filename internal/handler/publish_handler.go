package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/middleware"
	"github.com/00yuyi00/ChongYu/internal/service"
)

const (
	maxPhotoCount = 9
	maxPhotoBytes = 10 << 20 // per file
)

// composePath is where the confirm step redirects when no draft exists
const composePath = "/publish"

// PublishHandler handles the two-step publish wizard
type PublishHandler struct {
	service service.PublishService
}

// NewPublishHandler creates a new PublishHandler
func NewPublishHandler(service service.PublishService) *PublishHandler {
	return &PublishHandler{service: service}
}

// Compose handles POST /publish/compose
// @Summary 发布第一步：填写信息并暂存
// @Tags publish
// @Accept multipart/form-data
// @Produce json
// @Param images formData file true "宠物照片，最多9张"
// @Success 200 {object} common.APIResponse
// @Router /publish/compose [post]
func (h *PublishHandler) Compose(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	var draft domain.DraftPost
	if err := c.ShouldBind(&draft); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "表单内容不完整", err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "请求格式不正确", err)
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "请至少上传一张照片", common.ErrNoAttachedFiles)
		return
	}
	if len(files) > maxPhotoCount {
		common.ErrorResponse(c, http.StatusBadRequest, "最多上传9张照片", nil)
		return
	}

	for _, fh := range files {
		if fh.Size > maxPhotoBytes {
			common.ErrorResponse(c, http.StatusBadRequest, "单张照片不能超过10MB", nil)
			return
		}
		f, err := fh.Open()
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "读取照片失败", err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "读取照片失败", err)
			return
		}
		draft.Files = append(draft.Files, domain.DraftFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	draftID, err := h.service.StashDraft(userID, &draft)
	if err != nil {
		if errors.Is(err, common.ErrBlockedScamLink) {
			common.ErrorResponse(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		common.ErrorResponse(c, http.StatusBadRequest, "暂存失败", err)
		return
	}

	common.SuccessResponse(c, gin.H{"draft_id": draftID, "title": draft.Title()}, nil)
}

// Confirm handles GET /publish/confirm
// @Summary 发布第二步：确认页数据
// @Tags publish
// @Produce json
// @Param draft_id query string true "草稿ID"
// @Success 200 {object} common.APIResponse
// @Router /publish/confirm [get]
func (h *PublishHandler) Confirm(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	draft, err := h.service.GetDraft(userID, c.Query("draft_id"))
	if err != nil {
		if errors.Is(err, common.ErrDraftNotFound) {
			common.RedirectResponse(c, composePath, "请先填写发布信息")
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "获取草稿失败", err)
		return
	}

	// The confirm page shows what will be published, not the blobs.
	common.SuccessResponse(c, gin.H{
		"title":         draft.Title(),
		"publish_type":  draft.PublishType,
		"pet_type":      draft.PetType,
		"nickname":      draft.Nickname,
		"breed":         draft.Breed,
		"age":           draft.Age,
		"location":      draft.Location,
		"description":   draft.Description,
		"phone":         draft.Phone,
		"is_private":    draft.IsPrivate,
		"reward_amount": draft.RewardAmount,
		"vaccine":       draft.Vaccine,
		"sterilization": draft.Sterilization,
		"requirements":  draft.Requirements,
		"photo_count":   len(draft.Files),
	}, nil)
}

// Submit handles POST /publish/submit
// @Summary 发布第三步：提交
// @Tags publish
// @Accept json
// @Produce json
// @Success 200 {object} common.APIResponse{data=domain.PostResponse}
// @Router /publish/submit [post]
func (h *PublishHandler) Submit(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	var req struct {
		DraftID string `json:"draft_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "请求格式不正确", err)
		return
	}

	post, err := h.service.Submit(c.Request.Context(), userID, req.DraftID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDraftNotFound):
			common.RedirectResponse(c, composePath, "请先填写发布信息")
		case errors.Is(err, common.ErrSubmitInFlight):
			common.ErrorResponse(c, http.StatusConflict, "正在提交中，请勿重复操作", err)
		case errors.Is(err, common.ErrUploadFailed):
			common.ErrorResponse(c, http.StatusBadGateway, "图片上传失败，请重试", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "发布失败", err)
		}
		return
	}

	common.SuccessResponse(c, post, nil)
}

// Discard handles DELETE /publish/draft
// @Summary 放弃当前草稿
// @Tags publish
// @Produce json
// @Success 200 {object} common.APIResponse
// @Router /publish/draft [delete]
func (h *PublishHandler) Discard(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	h.service.DiscardDraft(userID)
	common.SuccessResponse(c, nil, nil)
}
