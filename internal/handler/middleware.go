package handler

import (
	"log"
	"strings"
	"time"

	"github.com/sunsun042505/sunwoobank/internal/config"
	"github.com/sunsun042505/sunwoobank/internal/model"
	"github.com/sunsun042505/sunwoobank/internal/service"
	"github.com/sunsun042505/sunwoobank/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// LoggerMiddleware 日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if query != "" {
			path = path + "?" + query
		}

		log.Printf("[HTTP] %d | %13v | %15s | %-7s %s",
			status,
			latency,
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

// RecoveryMiddleware 恢复中间件
// 任何未捕获的故障都在这里折叠为 InternalError 响应，请求绝不悬空
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %v", err)
				c.AbortWithStatusJSON(500, gin.H{
					"ok":    false,
					"error": model.ErrInternal.Code,
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Teller-Code")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// TellerAuthMiddleware 柜员鉴权
// 柜员操作凭共享口令放行，口令经 X-Teller-Code 头或 teller_code 参数传入
func TellerAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := strings.TrimSpace(c.GetHeader("X-Teller-Code"))
		if code == "" {
			code = strings.TrimSpace(c.Query("teller_code"))
		}
		if code != cfg.Auth.TellerCode {
			response.Fail(c, model.ErrBadTellerCode.WithDetail("需要柜员口令"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Claims 客户令牌声明
// 身份服务签发的令牌携带邮箱，邮箱是客户映射的唯一依据
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

const ctxKeyCustomer = "customer"

// CustomerAuthMiddleware 客户鉴权
// 解析 Bearer 令牌取出邮箱，再映射到已建档的客户；
// 令牌无效返回 401，邮箱未建档返回 403（提示先临柜开通）
func CustomerAuthMiddleware(cfg *config.Config, customers *service.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Fail(c, model.ErrUnauthenticated.WithDetail("缺少 Authorization 头"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Fail(c, model.ErrUnauthenticated.WithDetail("Authorization 头格式不合法"))
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.Auth.JWTSecret), nil
		})
		if err != nil || !token.Valid || claims.Email == "" {
			response.Fail(c, model.ErrUnauthenticated.WithDetail("令牌无效或已过期"))
			c.Abort()
			return
		}

		customer, err := customers.GetByEmail(c.Request.Context(), claims.Email)
		if err != nil {
			response.Fail(c, err)
			c.Abort()
			return
		}

		c.Set(ctxKeyCustomer, customer)
		c.Next()
	}
}

// CurrentCustomer 取出鉴权中间件放入的客户
func CurrentCustomer(c *gin.Context) *model.Customer {
	v, ok := c.Get(ctxKeyCustomer)
	if !ok {
		return nil
	}
	return v.(*model.Customer)
}
