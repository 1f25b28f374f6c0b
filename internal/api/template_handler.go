package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cvstudio/internal/cv"
)

// TemplateHandler 暴露内置模板目录。目录是编译期静态的，
// 模板的视觉实现在导出渲染器里。
type TemplateHandler struct{}

func NewTemplateHandler() *TemplateHandler {
	return &TemplateHandler{}
}

// GET /v1/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, cv.Templates())
}
