package db

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const cancelKey = "cafenowa:query_cancel"

// queryTimeout is a GORM plugin that bounds every statement with the
// configured deadline. Requests arriving over net/http carry no deadline
// of their own, so without this a stalled connection blocks the handler
// indefinitely. An inbound context that already has an earlier deadline
// keeps it.
type queryTimeout struct {
	timeout time.Duration
}

func (p queryTimeout) Name() string { return "cafenowa:query_timeout" }

func (p queryTimeout) Initialize(db *gorm.DB) error {
	register := func(name string, before, after interface {
		Register(string, func(*gorm.DB)) error
	}) error {
		if err := before.Register(p.Name()+":"+name+":before", p.applyDeadline); err != nil {
			return err
		}
		return after.Register(p.Name()+":"+name+":after", p.releaseDeadline)
	}

	if err := register("create", db.Callback().Create().Before("gorm:create"), db.Callback().Create().After("gorm:create")); err != nil {
		return err
	}
	if err := register("query", db.Callback().Query().Before("gorm:query"), db.Callback().Query().After("gorm:query")); err != nil {
		return err
	}
	if err := register("update", db.Callback().Update().Before("gorm:update"), db.Callback().Update().After("gorm:update")); err != nil {
		return err
	}
	if err := register("delete", db.Callback().Delete().Before("gorm:delete"), db.Callback().Delete().After("gorm:delete")); err != nil {
		return err
	}
	if err := register("row", db.Callback().Row().Before("gorm:row"), db.Callback().Row().After("gorm:row")); err != nil {
		return err
	}
	return register("raw", db.Callback().Raw().Before("gorm:raw"), db.Callback().Raw().After("gorm:raw"))
}

func (p queryTimeout) applyDeadline(tx *gorm.DB) {
	if p.timeout <= 0 || tx.Statement == nil {
		return
	}
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= p.timeout {
		return
	}
	bounded, cancel := context.WithTimeout(ctx, p.timeout)
	tx.Statement.Context = bounded
	tx.InstanceSet(cancelKey, cancel)
}

func (p queryTimeout) releaseDeadline(tx *gorm.DB) {
	if tx.Statement == nil {
		return
	}
	if v, ok := tx.InstanceGet(cancelKey); ok {
		if cancel, ok := v.(context.CancelFunc); ok {
			cancel()
		}
	}
}
