package main

import (
	"fmt"
	"log"
	"os"

	"stayfinder-server/routes"
	"stayfinder-server/socket"
	"stayfinder-server/storage"
	"stayfinder-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	// Initialize services
	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	// Minimal middleware - compression only
	app.Use(iris.Compression)

	// JWT Verifiers
	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifier.WithDefaultBlocklist()
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	// Realtime booking updates
	app.Get("/ws", func(ctx iris.Context) {
		socket.HandleWebSocket(ctx.ResponseWriter(), ctx.Request())
	})

	// Routes
	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/google", routes.GoogleLoginOrSignUp)
		user.Post("/forgotpassword", routes.ForgotPassword)
		user.Post("/resetpassword", resetTokenVerifierMiddleware, routes.ResetPassword)
		user.Get("/profile", accessTokenVerifierMiddleware, routes.GetProfile)
		user.Patch("/profile", accessTokenVerifierMiddleware, routes.UpdateProfile)
		user.Patch("/password", accessTokenVerifierMiddleware, routes.ChangePassword)
		user.Patch("/pushtoken", accessTokenVerifierMiddleware, routes.AlterPushToken)
		user.Patch("/settings/notifications", accessTokenVerifierMiddleware, routes.AllowsNotifications)
		user.Post("/toggle-wishlist", accessTokenVerifierMiddleware, routes.ToggleWishlist)
		user.Get("/get-wishlist", accessTokenVerifierMiddleware, routes.GetWishlist)
	}

	listings := app.Party("/api/listings")
	{
		listings.Get("/", routes.GetListings)
		listings.Get("/trending-destinations", routes.GetTrendingDestinations)
		listings.Get("/host", accessTokenVerifierMiddleware, routes.GetHostListings)
		listings.Get("/{id:uint}", routes.GetListing)
		listings.Post("/", accessTokenVerifierMiddleware, routes.CreateListing)
		listings.Patch("/{id:uint}", accessTokenVerifierMiddleware, routes.UpdateListing)
		listings.Delete("/{id:uint}", accessTokenVerifierMiddleware, routes.DeleteListing)
	}

	bookings := app.Party("/api/bookings", accessTokenVerifierMiddleware)
	{
		bookings.Get("/user", routes.GetUserBookings)
		bookings.Get("/host", routes.GetHostBookings)
		bookings.Post("/listing/{id:uint}", routes.CreateBooking)
		bookings.Post("/approve-booking", routes.ApproveBooking)
		bookings.Post("/pause-booking", routes.PauseBooking)
		bookings.Post("/cancel-booking", routes.CancelBooking)
	}

	notifications := app.Party("/api/notifications", accessTokenVerifierMiddleware)
	{
		notifications.Get("/", routes.GetNotifications)
		notifications.Get("/unread-count", routes.GetUnreadCount)
		notifications.Patch("/{id:uint}/read", routes.MarkNotificationRead)
		notifications.Patch("/read-all", routes.MarkAllNotificationsRead)
	}

	// Admin routes
	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", routes.AdminListUsers)
		admin.Get("/users/{id:uint}", routes.AdminGetUser)
		admin.Patch("/users/{id:uint}/block", routes.AdminBlockUser)
		admin.Patch("/users/{id:uint}/unblock", routes.AdminUnblockUser)
		admin.Patch("/users/{id:uint}/role", utils.SuperAdminOnlyMiddleware, routes.AdminChangeUserRole)
		admin.Get("/listings", routes.AdminListListings)
		admin.Patch("/listings/{id:uint}/approve", routes.AdminApproveListing)
		admin.Patch("/listings/{id:uint}/reject", routes.AdminRejectListing)
		admin.Patch("/listings/{id:uint}/pause", routes.AdminPauseListing)
		admin.Patch("/listings/{id:uint}/activate", routes.AdminActivateListing)
		admin.Delete("/listings/{id:uint}", routes.AdminDeleteListing)
		admin.Get("/bookings", routes.AdminListBookings)
		admin.Get("/bookings/{id:uint}", routes.AdminGetBooking)
		admin.Patch("/bookings/{id:uint}/status", routes.AdminUpdateBookingStatus)
		admin.Get("/stats", routes.AdminStats)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := "0.0.0.0:" + port

	fmt.Printf("Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
