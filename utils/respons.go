package utils

import (
	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError picks the status code from the error kind. A non-zero code
// overrides it, for errors that never reached the core (bad JSON, bad params).
func RespondError(c *gin.Context, code int, err error) {
	if code == 0 {
		code = HTTPStatus(err)
	}
	if code >= 500 {
		ErrorLogger.WithField("path", c.Request.URL.Path).Errorf("request failed: %v", err)
	}
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondPartial answers a write that was stored while a follow-up step
// failed. The stored record is returned so the client does not repeat it.
func RespondPartial(c *gin.Context, code int, message string, data interface{}, err error) {
	ErrorLogger.WithField("path", c.Request.URL.Path).Warnf("partial write: %v", err)
	c.JSON(code, JSONResponse{
		Status:  true,
		Message: message,
		Data:    data,
		Warning: err.Error(),
	})
}
