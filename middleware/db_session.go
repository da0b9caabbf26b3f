package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ContextDBKey stores the request scoped database session inside Gin context.
const ContextDBKey = "db"

// DBSession hands every request its own session bound to the request context,
// so queries are abandoned once the client goes away.
func DBSession(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(ContextDBKey, db.WithContext(ctx.Request.Context()))
		ctx.Next()
		// drop the session so nothing holds on to it past the request
		ctx.Set(ContextDBKey, nil)
	}
}

// Session returns the session installed by DBSession.
func Session(ctx *gin.Context) *gorm.DB {
	if v, ok := ctx.Get(ContextDBKey); ok {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx
		}
	}
	panic("middleware: DBSession not installed for " + ctx.FullPath())
}
