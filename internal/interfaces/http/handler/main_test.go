package handler

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cartoprint/backend/internal/interfaces/http/middleware"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	os.Exit(m.Run())
}
