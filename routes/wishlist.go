package routes

import (
	"encoding/json"

	"stayfinder-server/models"
	"stayfinder-server/storage"
	"stayfinder-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/exp/slices"
)

type ToggleWishlistInput struct {
	ListingID uint `json:"listingId" validate:"required"`
}

// toggleWishlist returns the wish list with listingID added if absent or
// removed if present, plus whether it ended up saved. The duplicate check
// makes the operation idempotent per direction: an ID is never stored twice.
func toggleWishlist(wishList []uint, listingID uint) ([]uint, bool) {
	if idx := slices.Index(wishList, listingID); idx >= 0 {
		return append(wishList[:idx], wishList[idx+1:]...), false
	}
	return append(wishList, listingID), true
}

// ToggleWishlist adds or removes a listing from the authenticated user's
// wish list and reports the resulting membership.
func ToggleWishlist(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input ToggleWishlistInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var wishList []uint
	if user.WishList != nil {
		if err := json.Unmarshal(user.WishList, &wishList); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	wishList, saved := toggleWishlist(wishList, input.ListingID)

	raw, marshalErr := json.Marshal(wishList)
	if marshalErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	user.WishList = raw

	if err := storage.DB.Save(&user).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	message := "Removed from wishlist"
	if saved {
		message = "Added to wishlist"
	}

	ctx.JSON(iris.Map{
		"success": true,
		"message": message,
		"saved":   saved,
	})
}

// GetWishlist resolves the authenticated user's saved listing IDs to full
// listings. IDs whose listing no longer exists are silently dropped from the
// response; the stored list is left as is.
func GetWishlist(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var wishList []uint
	if user.WishList != nil {
		if err := json.Unmarshal(user.WishList, &wishList); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	listings := []models.Listing{}
	if len(wishList) > 0 {
		if err := storage.DB.Where("id IN ?", wishList).Find(&listings).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(iris.Map{
		"success":  true,
		"wishlist": listings,
	})
}
