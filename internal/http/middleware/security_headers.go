package middleware

import "github.com/gin-gonic/gin"

// apiHeaders suit an API that only answers with JSON and zip downloads.
var apiHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	"Referrer-Policy":         "no-referrer",
}

// SecurityHeaders adds security headers
func SecurityHeaders() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		for k, v := range apiHeaders {
			ctx.Header(k, v)
		}
		ctx.Next()
	}
}
