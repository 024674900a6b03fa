package routes

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"stayfinder-server/models"
	"stayfinder-server/storage"
	"stayfinder-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

type CreateListingInput struct {
	Title       string   `json:"title" validate:"required,max=256"`
	Description string   `json:"description" validate:"required"`
	Location    string   `json:"location" validate:"required,max=256"`
	City        string   `json:"city" validate:"max=256"`
	Country     string   `json:"country" validate:"max=256"`
	Lat         float32  `json:"lat"`
	Lng         float32  `json:"lng"`
	Price       float32  `json:"price" validate:"required,gt=0"`
	Currency    string   `json:"currency" validate:"max=8"`
	Capacity    int      `json:"capacity" validate:"required,gte=1,lte=32"`
	Bedrooms    int      `json:"bedrooms" validate:"gte=0"`
	Beds        int      `json:"beds" validate:"gte=0"`
	Bathrooms   float32  `json:"bathrooms" validate:"gte=0"`
	Category    string   `json:"category" validate:"max=64"`
	Amenities   []string `json:"amenities"`
	Images      []string `json:"images"`
}

// CreateListing records a new listing for the authenticated host. Listings
// start pending and stay invisible to guests until an admin approves them.
func CreateListing(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	listing := models.Listing{
		HostID:      claims.ID,
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		City:        input.City,
		Country:     input.Country,
		Lat:         input.Lat,
		Lng:         input.Lng,
		Price:       input.Price,
		Currency:    input.Currency,
		Capacity:    input.Capacity,
		Bedrooms:    input.Bedrooms,
		Beds:        input.Beds,
		Bathrooms:   input.Bathrooms,
		Category:    input.Category,
		Status:      "pending",
	}
	if listing.Currency == "" {
		listing.Currency = "USD"
	}

	listing.Amenities = marshalStringList(input.Amenities)
	listing.Images = uploadListingImages(input.Images, claims.ID)

	if err := storage.DB.Create(&listing).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(listing)
}

// GetListing fetches one listing with its host. Every successful fetch bumps
// the Redis view counter; the column is mirrored so the count survives a
// cache flush.
func GetListing(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var listing models.Listing
	if err := storage.DB.Preload("Host").First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if views, err := storage.IncrementListingViews(ctx.Request().Context(), listing.ID, listing.Location, listing.Views); err == nil {
		listing.Views = views
		storage.DB.Model(&listing).UpdateColumn("views", views)
	} else {
		log.Printf("redis views unavailable for listing %d: %v", listing.ID, err)
	}

	ctx.JSON(listing)
}

// GetListings returns live listings matching the optional query filters.
func GetListings(ctx iris.Context) {
	location := ctx.URLParamDefault("location", "")
	category := ctx.URLParamDefault("category", "")
	guests := ctx.URLParamIntDefault("guests", 0)
	minPrice := ctx.URLParamFloat64Default("minPrice", 0)
	maxPrice := ctx.URLParamFloat64Default("maxPrice", 0)
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 20)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := storage.DB.Model(&models.Listing{}).Where("status = ?", "live")

	if location != "" {
		search := "%" + location + "%"
		query = query.Where("lower(location) LIKE lower(?) OR lower(city) LIKE lower(?) OR lower(country) LIKE lower(?)", search, search, search)
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if guests > 0 {
		query = query.Where("capacity >= ?", guests)
	}
	if minPrice > 0 {
		query = query.Where("price >= ?", minPrice)
	}
	if maxPrice > 0 {
		query = query.Where("price <= ?", maxPrice)
	}

	var total int64
	query.Count(&total)

	var listings []models.Listing
	res := query.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&listings)

	if res.Error != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", res.Error.Error(), ctx)
		return
	}

	utils.JSONPage(ctx, listings, page, perPage, total)
}

// GetHostListings returns all of the authenticated host's listings,
// regardless of status.
func GetHostListings(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var listings []models.Listing
	res := storage.DB.Where("host_id = ?", claims.ID).
		Order("created_at DESC").
		Find(&listings)

	if res.Error != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", res.Error.Error(), ctx)
		return
	}

	ctx.JSON(listings)
}

type UpdateListingInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float32  `json:"price"`
	Capacity    int      `json:"capacity"`
	Bedrooms    int      `json:"bedrooms"`
	Beds        int      `json:"beds"`
	Bathrooms   float32  `json:"bathrooms"`
	Category    string   `json:"category"`
	Amenities   []string `json:"amenities"`
	Images      []string `json:"images"`
}

// UpdateListing lets the owning host change listing details.
func UpdateListing(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if listing.HostID != claims.ID {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"message": "Not authorized"})
		return
	}

	var input UpdateListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if input.Title != "" {
		listing.Title = input.Title
	}
	if input.Description != "" {
		listing.Description = input.Description
	}
	if input.Price > 0 {
		listing.Price = input.Price
	}
	if input.Capacity > 0 {
		listing.Capacity = input.Capacity
	}
	if input.Bedrooms > 0 {
		listing.Bedrooms = input.Bedrooms
	}
	if input.Beds > 0 {
		listing.Beds = input.Beds
	}
	if input.Bathrooms > 0 {
		listing.Bathrooms = input.Bathrooms
	}
	if input.Category != "" {
		listing.Category = input.Category
	}
	if input.Amenities != nil {
		listing.Amenities = marshalStringList(input.Amenities)
	}
	if input.Images != nil {
		listing.Images = uploadListingImages(input.Images, claims.ID)
	}

	if err := storage.DB.Save(&listing).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(listing)
}

// DeleteListing removes the host's listing and its hosted images.
func DeleteListing(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if listing.HostID != claims.ID {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"message": "Not authorized"})
		return
	}

	if listing.Images != nil {
		var images []string
		if err := json.Unmarshal(listing.Images, &images); err == nil {
			for _, image := range images {
				storage.DeleteImage(image)
			}
		}
	}

	if err := storage.DB.Delete(&listing).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Listing deleted"})
}

// GetTrendingDestinations lists the locations guests view the most. The
// ranking lives in Redis; when it is empty or unreachable the most-viewed
// live listings stand in.
func GetTrendingDestinations(ctx iris.Context) {
	limit := int64(ctx.URLParamIntDefault("limit", 10))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	type destination struct {
		Location string  `json:"location"`
		Views    float64 `json:"views"`
	}

	entries, err := storage.TopDestinations(ctx.Request().Context(), limit)
	if err == nil && len(entries) > 0 {
		destinations := make([]destination, 0, len(entries))
		for _, entry := range entries {
			destinations = append(destinations, destination{
				Location: fmt.Sprint(entry.Member),
				Views:    entry.Score,
			})
		}
		ctx.JSON(iris.Map{"success": true, "destinations": destinations})
		return
	}

	var rows []destination
	storage.DB.Model(&models.Listing{}).
		Select("location, SUM(views) as views").
		Where("status = ?", "live").
		Group("location").
		Order("views DESC").
		Limit(int(limit)).
		Scan(&rows)

	ctx.JSON(iris.Map{"success": true, "destinations": rows})
}

// marshalStringList packs a slice into the JSON column representation.
func marshalStringList(values []string) []byte {
	if values == nil {
		values = []string{}
	}
	raw, _ := json.Marshal(values)
	return raw
}

// uploadListingImages pushes base64 payloads to Cloudinary and keeps plain
// URLs as they are. Failed uploads are dropped rather than stored empty.
func uploadListingImages(images []string, hostID uint) []byte {
	urls := make([]string, 0, len(images))
	for i, image := range images {
		if !strings.HasPrefix(image, "data:") {
			urls = append(urls, image)
			continue
		}
		publicID := fmt.Sprintf("listings/host_%d_%d_%d", hostID, len(urls), i)
		uploaded := storage.UploadBase64Image(image, publicID)
		if url := uploaded["url"]; url != "" {
			urls = append(urls, url)
		}
	}
	return marshalStringList(urls)
}
