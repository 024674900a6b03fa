package routes

import "testing"

func TestToggleWishlistAddAndRemove(t *testing.T) {
	wishList := []uint{1, 2, 3}

	// Absent ID gets added
	result, saved := toggleWishlist(wishList, 7)
	if !saved {
		t.Fatalf("expected saved=true when adding, got false")
	}
	if len(result) != 4 || result[3] != 7 {
		t.Fatalf("expected [1 2 3 7], got %v", result)
	}

	// Present ID gets removed
	result, saved = toggleWishlist(result, 7)
	if saved {
		t.Fatalf("expected saved=false when removing, got true")
	}
	if len(result) != 3 {
		t.Fatalf("expected 3 entries after removal, got %v", result)
	}
	for _, id := range result {
		if id == 7 {
			t.Fatalf("7 still present after removal: %v", result)
		}
	}
}

func TestToggleWishlistDoubleToggleRestoresState(t *testing.T) {
	original := []uint{5, 9}

	wishList := make([]uint, len(original))
	copy(wishList, original)

	wishList, _ = toggleWishlist(wishList, 12)
	wishList, _ = toggleWishlist(wishList, 12)

	if len(wishList) != len(original) {
		t.Fatalf("expected %v after double toggle, got %v", original, wishList)
	}
	for i := range original {
		if wishList[i] != original[i] {
			t.Fatalf("expected %v after double toggle, got %v", original, wishList)
		}
	}
}

func TestToggleWishlistRemovesMiddleEntry(t *testing.T) {
	result, saved := toggleWishlist([]uint{4, 8, 15}, 8)
	if saved {
		t.Fatalf("expected saved=false, got true")
	}
	if len(result) != 2 || result[0] != 4 || result[1] != 15 {
		t.Fatalf("expected [4 15], got %v", result)
	}
}

func TestToggleWishlistEmptyList(t *testing.T) {
	result, saved := toggleWishlist(nil, 3)
	if !saved {
		t.Fatalf("expected saved=true on empty list")
	}
	if len(result) != 1 || result[0] != 3 {
		t.Fatalf("expected [3], got %v", result)
	}
}
