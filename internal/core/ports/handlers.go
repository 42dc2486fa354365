package ports

import "github.com/gin-gonic/gin"

type AccountHandler interface {
	HandleAuth(c *gin.Context)
}

type CatalogHandler interface {
	HandleMovies(c *gin.Context)
}
