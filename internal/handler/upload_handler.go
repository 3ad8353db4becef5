package handler

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/middleware"
	"github.com/00yuyi00/ChongYu/internal/service"
	"github.com/00yuyi00/ChongYu/pkg/storage"
)

const maxUploadBytes = 10 << 20

// UploadHandler handles direct image uploads outside the publish wizard
// (guide covers, rich content images).
type UploadHandler struct {
	uploader service.ImageUploader
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploader service.ImageUploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// Upload handles POST /uploads
// @Summary 上传图片
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "图片文件"
// @Param folder formData string false "目录 posts|avatars"
// @Success 200 {object} common.APIResponse
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "请先登录", nil)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "请选择文件", err)
		return
	}
	if fh.Size > maxUploadBytes {
		common.ErrorResponse(c, http.StatusBadRequest, "文件不能超过10MB", nil)
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		common.ErrorResponse(c, http.StatusBadRequest, "只支持图片文件", nil)
		return
	}

	folder := c.DefaultPostForm("folder", "posts")
	if folder != "posts" && folder != "avatars" {
		common.ErrorResponse(c, http.StatusBadRequest, "目录不正确", nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "读取文件失败", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "读取文件失败", err)
		return
	}

	key := storage.GenerateKey(folder, contentType)
	result, err := h.uploader.Upload(c.Request.Context(), key, bytes.NewReader(data), contentType, int64(len(data)))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadGateway, "上传失败，请重试", err)
		return
	}

	common.SuccessResponse(c, gin.H{"key": result.Key, "url": result.URL}, nil)
}
