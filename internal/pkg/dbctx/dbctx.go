package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries the request context and, inside a service transaction, the
// transaction handle repos must use instead of their own *gorm.DB.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}
