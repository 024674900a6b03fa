package routes

import (
	"net/http"
	"strings"

	"stayfinder-server/models"
	"stayfinder-server/services"
	"stayfinder-server/storage"
	"stayfinder-server/utils"

	"github.com/kataras/iris/v12"
)

// ListUsers - GET /admin/users?role=&q=&page=&per_page=
func AdminListUsers(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	var users []models.User
	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))
	role := strings.TrimSpace(ctx.URLParamDefault("role", ""))

	query := storage.DB.Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(name) LIKE ? OR lower(email) LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)
	query = query.Offset((page - 1) * perPage).Limit(perPage)
	if err := query.Find(&users).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	listingCounts, bookingCounts := countsForUsers(users)

	data := make([]iris.Map, 0, len(users))
	for i := range users {
		data = append(data, iris.Map{
			"user":         &users[i],
			"listingCount": listingCounts[users[i].ID],
			"bookingCount": bookingCounts[users[i].ID],
		})
	}

	utils.JSONPage(ctx, data, page, perPage, total)
}

// countsForUsers resolves per-user listing and booking totals in two grouped
// queries instead of one pair per row.
func countsForUsers(users []models.User) (listingCounts, bookingCounts map[uint]int64) {
	listingCounts = map[uint]int64{}
	bookingCounts = map[uint]int64{}
	if len(users) == 0 {
		return listingCounts, bookingCounts
	}

	ids := make([]uint, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	type countRow struct {
		ID    uint
		Count int64
	}

	var rows []countRow
	storage.DB.Model(&models.Listing{}).
		Select("host_id as id, COUNT(*) as count").
		Where("host_id IN ?", ids).
		Group("host_id").
		Scan(&rows)
	for _, r := range rows {
		listingCounts[r.ID] = r.Count
	}

	rows = nil
	storage.DB.Model(&models.Booking{}).
		Select("user_id as id, COUNT(*) as count").
		Where("user_id IN ?", ids).
		Group("user_id").
		Scan(&rows)
	for _, r := range rows {
		bookingCounts[r.ID] = r.Count
	}

	return listingCounts, bookingCounts
}

// GET /admin/users/:id
func AdminGetUser(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var user models.User
	if err := storage.DB.Preload("Listings").First(&user, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	var bookingCount, listingCount int64
	storage.DB.Model(&models.Booking{}).Where("user_id = ?", user.ID).Count(&bookingCount)
	storage.DB.Model(&models.Listing{}).Where("host_id = ?", user.ID).Count(&listingCount)

	ctx.JSON(iris.Map{"data": &user, "bookingCount": bookingCount, "listingCount": listingCount})
}

// PATCH /admin/users/:id/block
func AdminBlockUser(ctx iris.Context) {
	setUserBlocked(ctx, true, "user.block")
}

// PATCH /admin/users/:id/unblock
func AdminUnblockUser(ctx iris.Context) {
	setUserBlocked(ctx, false, "user.unblock")
}

func setUserBlocked(ctx iris.Context, blocked bool, action string) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	// Admin accounts are not blockable from the dashboard
	if user.Role == "admin" || user.Role == "super_admin" {
		ctx.StopWithJSON(http.StatusForbidden, iris.Map{"error": "forbidden", "message": "cannot block admin accounts"})
		return
	}

	before := user
	user.Blocked = &blocked
	if err := storage.DB.Save(&user).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.Audit(ctx, action, "user", user.ID, before, user, "")

	ctx.JSON(iris.Map{"data": &user})
}

// Change role - PATCH /admin/users/:id/role (super_admin only)
func AdminChangeUserRole(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := ctx.ReadJSON(&body); err != nil || body.Role == "" {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_role"})
		return
	}

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	before := user
	user.Role = body.Role
	if err := storage.DB.Save(&user).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	utils.Audit(ctx, "user.role_update", "user", user.ID, before, user, "")

	ctx.JSON(iris.Map{"data": &user})
}

// GET /admin/listings?status=&q=&page=&per_page=
func AdminListListings(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	status := strings.TrimSpace(ctx.URLParamDefault("status", ""))
	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))

	query := storage.DB.Model(&models.Listing{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(title) LIKE ? OR lower(location) LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var listings []models.Listing
	if err := query.Preload("Host").Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&listings).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, listings, page, perPage, total)
}

// PATCH /admin/listings/:id/approve
func AdminApproveListing(ctx iris.Context) {
	moderateListing(ctx, "live", "approved", "listing.approve")
}

// PATCH /admin/listings/:id/reject (body: {"reason": "..."})
func AdminRejectListing(ctx iris.Context) {
	moderateListing(ctx, "rejected", "rejected", "listing.reject")
}

// PATCH /admin/listings/:id/pause
func AdminPauseListing(ctx iris.Context) {
	moderateListing(ctx, "paused", "paused", "listing.pause")
}

// PATCH /admin/listings/:id/activate
func AdminActivateListing(ctx iris.Context) {
	moderateListing(ctx, "live", "activated", "listing.activate")
}

func moderateListing(ctx iris.Context, newStatus, action, auditAction string) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	ctx.ReadJSON(&body)

	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	before := listing
	listing.Status = newStatus
	if action == "rejected" {
		listing.RejectReason = body.Reason
	}

	if err := storage.DB.Save(&listing).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	services.NotificationServiceInstance.NotifyListingStatusChange(&listing, action, body.Reason)
	utils.Audit(ctx, auditAction, "listing", listing.ID, before, listing, body.Reason)

	ctx.JSON(iris.Map{"data": &listing})
}

// DELETE /admin/listings/:id
func AdminDeleteListing(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	before := listing
	if err := storage.DB.Delete(&listing).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	services.NotificationServiceInstance.NotifyListingStatusChange(&listing, "deleted", "")
	utils.Audit(ctx, "listing.delete", "listing", listing.ID, before, nil, "")

	ctx.JSON(iris.Map{"success": true})
}

// GET /admin/bookings?status=&page=&per_page=
func AdminListBookings(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	status := strings.TrimSpace(ctx.URLParamDefault("status", ""))

	query := storage.DB.Model(&models.Booking{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var bookings []models.Booking
	if err := query.Preload("Listing").Preload("Guest").Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&bookings).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, bookings, page, perPage, total)
}

// GET /admin/bookings/:id
func AdminGetBooking(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var booking models.Booking
	if err := storage.DB.Preload("Listing").Preload("Listing.Host").Preload("Guest").First(&booking, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	ctx.JSON(iris.Map{"data": booking})
}

// PATCH /admin/bookings/:id/status (body: {"status": "...", "reason": "..."})
func AdminUpdateBookingStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_id"})
		return
	}

	var body struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := ctx.ReadJSON(&body); err != nil {
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_body"})
		return
	}

	switch body.Status {
	case "approved", "rejected", "cancelled", "completed":
	default:
		ctx.StopWithJSON(http.StatusBadRequest, iris.Map{"error": "invalid_status"})
		return
	}

	var booking models.Booking
	if err := storage.DB.First(&booking, id).Error; err != nil {
		ctx.StopWithJSON(http.StatusNotFound, iris.Map{"error": "not_found"})
		return
	}

	before := booking
	oldStatus := booking.Status
	booking.Status = body.Status
	booking.StatusReason = body.Reason

	if err := storage.DB.Save(&booking).Error; err != nil {
		ctx.StopWithJSON(http.StatusInternalServerError, iris.Map{"error": "server_error"})
		return
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, booking.ListingID).Error; err == nil {
		services.NotificationServiceInstance.NotifyBookingStatusChange(
			&booking, oldStatus, booking.Status, booking.UserID, booking.HostID, listing.Title)
	}

	utils.Audit(ctx, "booking.status_update", "booking", booking.ID, before, booking, body.Reason)

	ctx.JSON(iris.Map{"data": booking})
}

// GET /admin/stats
func AdminStats(ctx iris.Context) {
	var userCount, hostCount, blockedCount int64
	storage.DB.Model(&models.User{}).Count(&userCount)
	storage.DB.Model(&models.User{}).Where("role = ?", "host").Count(&hostCount)
	storage.DB.Model(&models.User{}).Where("blocked = ?", true).Count(&blockedCount)

	var listingCount, pendingListings, liveListings int64
	storage.DB.Model(&models.Listing{}).Count(&listingCount)
	storage.DB.Model(&models.Listing{}).Where("status = ?", "pending").Count(&pendingListings)
	storage.DB.Model(&models.Listing{}).Where("status = ?", "live").Count(&liveListings)

	var bookingCount, pendingBookings, approvedBookings int64
	storage.DB.Model(&models.Booking{}).Count(&bookingCount)
	storage.DB.Model(&models.Booking{}).Where("status = ?", "pending").Count(&pendingBookings)
	storage.DB.Model(&models.Booking{}).Where("status = ?", "approved").Count(&approvedBookings)

	var revenue float64
	storage.DB.Model(&models.Booking{}).
		Where("status IN ?", []string{"approved", "confirmed", "completed"}).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&revenue)

	ctx.JSON(iris.Map{
		"users":    iris.Map{"total": userCount, "hosts": hostCount, "blocked": blockedCount},
		"listings": iris.Map{"total": listingCount, "pending": pendingListings, "live": liveListings},
		"bookings": iris.Map{"total": bookingCount, "pending": pendingBookings, "approved": approvedBookings},
		"revenue":  revenue,
	})
}
