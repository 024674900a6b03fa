package utils

import (
	"encoding/json"
	"net"

	"stayfinder-server/models"
	"stayfinder-server/storage"

	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
)

// Audit appends one moderation record. Best effort: a failed insert is not
// surfaced to the admin whose action already succeeded.
func Audit(ctx iris.Context, action, targetType string, targetID uint, before, after interface{}, reason string) {
	entry := models.AuditLog{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
		IP:         clientIP(ctx),
	}

	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			entry.Before = b
		}
	}
	if after != nil {
		if a, err := json.Marshal(after); err == nil {
			entry.After = a
		}
	}

	if tok := jsonWT.Get(ctx); tok != nil {
		if at, ok := tok.(*AccessToken); ok {
			entry.AdminID = at.ID
		}
	}

	storage.DB.Create(&entry)
}

func clientIP(ctx iris.Context) string {
	if ip := ctx.GetHeader("X-Forwarded-For"); ip != "" {
		return ip
	}
	ip, _, _ := net.SplitHostPort(ctx.RemoteAddr())
	return ip
}
