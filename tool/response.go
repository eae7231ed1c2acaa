package tool

import "github.com/gin-gonic/gin"

// FastReturnError is the JSON body of a failed API call.
func FastReturnError(msg string) gin.H {
	return gin.H{"error": msg}
}

func FastReturnSuccess() gin.H {
	return gin.H{"status": "ok"}
}

func FastReturnSuccessWithData(data any) gin.H {
	return gin.H{"data": data}
}
