package response

import (
	"errors"
	"net/http"

	"github.com/sunsun042505/sunwoobank/internal/model"

	"github.com/gin-gonic/gin"
)

// Success 成功响应
// 统一信封：{"ok": true, ...业务字段}
func Success(c *gin.Context, data gin.H) {
	body := gin.H{"ok": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Fail 失败响应
// 业务错误按其自带的 HTTP 状态码与短错误码返回；
// 其余错误一律折叠为 500 InternalError，绝不把底层错误串透给调用方
func Fail(c *gin.Context, err error) {
	var biz *model.BizError
	if errors.As(err, &biz) {
		body := gin.H{"ok": false, "error": biz.Code}
		if biz.Detail != "" {
			body["detail"] = biz.Detail
		}
		for k, v := range biz.Extra {
			body[k] = v
		}
		c.JSON(biz.Status, body)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"ok":    false,
		"error": model.ErrInternal.Code,
	})
}

// FailBind 参数绑定失败（400）
func FailBind(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"ok":     false,
		"error":  model.ErrValidation.Code,
		"detail": err.Error(),
	})
}
