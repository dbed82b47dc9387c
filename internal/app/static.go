package app

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed web/index.html
var shellHTML []byte

// serveShell serves the bundled IVR web shell at the root path.
func serveShell(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", shellHTML)
}
