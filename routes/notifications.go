package routes

import (
	"time"

	"stayfinder-server/models"
	"stayfinder-server/storage"
	"stayfinder-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// GetNotifications returns the authenticated user's notifications, newest
// first.
func GetNotifications(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var notifications []models.Notification
	res := storage.DB.
		Where("user_id = ?", claims.ID).
		Order("created_at DESC").
		Find(&notifications)

	if res.Error != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", res.Error.Error(), ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success":       true,
		"notifications": notifications,
	})
}

// GetUnreadCount counts unread notifications. The count is computed per
// request so clients polling a badge always get a fresh number.
func GetUnreadCount(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var count int64
	res := storage.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", claims.ID, false).
		Count(&count)

	if res.Error != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", res.Error.Error(), ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"count":   count,
	})
}

// MarkNotificationRead flags one notification as read. Only the addressee may
// do so. Marking an already-read notification is not an error; the write
// still happens.
func MarkNotificationRead(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	var notification models.Notification
	if err := storage.DB.First(&notification, id).Error; err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"message": "Notification not found"})
		return
	}

	if notification.UserID != claims.ID {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"message": "Not authorized"})
		return
	}

	now := time.Now()
	notification.IsRead = true
	notification.ReadAt = &now

	if err := storage.DB.Save(&notification).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success":      true,
		"notification": notification,
	})
}

// MarkAllNotificationsRead flags every unread notification of the
// authenticated user.
func MarkAllNotificationsRead(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	now := time.Now()
	res := storage.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", claims.ID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})

	if res.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"updated": res.RowsAffected,
	})
}
