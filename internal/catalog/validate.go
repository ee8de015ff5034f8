package catalog

import (
	"strings"
)

// MaxImageBytes is the upload size limit for product images.
const MaxImageBytes = 2 << 20 // 2 MiB

const maxNameLen = 200

// ValidateProductInput runs the product write schema and returns a
// ValidationError listing every failed field, or nil. The image is required
// on create and optional on update.
func ValidateProductInput(in *ProductInput, requireImage bool) error {
	fields := map[string]string{}

	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "Name is required"
	} else if len(in.Name) > maxNameLen {
		fields["name"] = "Name must be at most 200 characters"
	}

	if in.Price == nil {
		fields["price"] = "Price is required"
	} else if in.Price.IsNegative() {
		fields["price"] = "Price must not be negative"
	}

	if in.CategoryID <= 0 {
		fields["category_id"] = "Category is required"
	}

	if requireImage && in.Image == nil {
		fields["image"] = "Image is required"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CheckImage verifies the declared content type and size of an upload.
func CheckImage(img *ImageUpload) error {
	if !strings.Contains(img.ContentType, "image/") {
		return &InvalidImageError{Reason: "uploaded file is not an image"}
	}
	if img.Size > MaxImageBytes {
		return &InvalidImageError{Reason: "image exceeds the 2 MiB limit"}
	}
	return nil
}

// NormalizeName folds a tag or category name for uniqueness comparison.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// dedupeIDs collapses duplicate ids preserving first-seen order.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
