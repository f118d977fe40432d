package handler

import (
	"net/http"

	"freeark_web/internal/service"
	"freeark_web/pkg/log"

	"github.com/gin-gonic/gin"
)

// maxImportSize 限制上传的业主文件大小。
const maxImportSize = 32 << 20

// BuildingHandler 提供楼栋级联数据查询和业主数据导入接口。
type BuildingHandler struct {
	buildingService service.BuildingService
}

func NewBuildingHandler(buildingService service.BuildingService) *BuildingHandler {
	return &BuildingHandler{buildingService: buildingService}
}

// GetTree 返回楼栋-单元-房号三级树及统计信息。
func (h *BuildingHandler) GetTree(c *gin.Context) {
	res, err := h.buildingService.GetTree(c.Request.Context())
	if err != nil {
		writeServiceError(c, "GetTree", err)
		return
	}

	success(c, "Building tree retrieved successfully", res)
}

// ImportOwners 接收 multipart 表单中的 file 字段（.json 或 .xlsx）。
func (h *BuildingHandler) ImportOwners(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	fh, err := c.FormFile("file")
	if err != nil {
		log.Warnf("ImportOwners: missing file: %v", err)
		badRequest(c, "File is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		log.Errorf("ImportOwners: failed to open upload %q: %v", fh.Filename, err)
		badRequest(c, "Failed to read uploaded file")
		return
	}
	defer f.Close()

	summary, err := h.buildingService.ImportFile(c.Request.Context(), fh.Filename, f)
	if err != nil {
		writeServiceError(c, "ImportOwners", err)
		return
	}

	success(c, "Owners imported successfully", summary)
}
