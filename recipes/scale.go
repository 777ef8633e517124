package recipes

import (
	"math"

	"potluck/apperr"
	"potluck/models"
)

// Scale returns a copy of r with ingredient quantities adjusted for
// servings, rounded to two decimals. r is not modified.
func Scale(r *models.Recipe, servings int) (*models.Recipe, error) {
	if servings <= 0 {
		return nil, apperr.New(apperr.Invalid, "servings must be positive")
	}
	out := r.Clone()
	if r.Servings <= 0 || servings == r.Servings {
		return out, nil
	}
	factor := float64(servings) / float64(r.Servings)
	for i := range out.Ingredients {
		out.Ingredients[i].Quantity = math.Round(out.Ingredients[i].Quantity*factor*100) / 100
	}
	out.Servings = servings
	return out, nil
}
