package services

import (
	"fmt"

	"github.com/tidwall/gjson"

	"modernmen-backend/models"
)

// ValidateLayout requires a JSON object with a components array whose
// entries are objects carrying a string type.
func ValidateLayout(raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("%w: layout is not valid JSON", ErrInvalidInput)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return fmt.Errorf("%w: layout must be an object", ErrInvalidInput)
	}
	components := doc.Get("components")
	if !components.IsArray() {
		return fmt.Errorf("%w: layout.components must be an array", ErrInvalidInput)
	}

	var bad error
	components.ForEach(func(key, c gjson.Result) bool {
		if !c.IsObject() || c.Get("type").Type != gjson.String {
			bad = fmt.Errorf("%w: layout.components[%d] needs a string type", ErrInvalidInput, key.Int())
			return false
		}
		return true
	})
	return bad
}

// ApplyRating folds one 1..5 rating into the running average.
func ApplyRating(t *models.EditorTemplate, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	total := t.Rating*float64(t.RatingCount) + float64(rating)
	t.RatingCount++
	t.Rating = total / float64(t.RatingCount)
	return nil
}
