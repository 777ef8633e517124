package proposals

import "potluck/models"

// ApplyPatch copies every field set in p onto r. Only the fields a
// RecipePatch can carry are ever touched, so id, owner, collaborators and
// pending edits are out of reach. Slices are replaced wholesale.
func ApplyPatch(r *models.Recipe, p models.RecipePatch) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Servings != nil {
		r.Servings = *p.Servings
	}
	if p.PrepTime != nil {
		r.PrepTime = *p.PrepTime
	}
	if p.CookTime != nil {
		r.CookTime = *p.CookTime
	}
	if p.IsPublic != nil {
		r.IsPublic = *p.IsPublic
	}
	if p.Ingredients != nil {
		r.Ingredients = append(make([]models.Ingredient, 0, len(*p.Ingredients)), *p.Ingredients...)
	}
	if p.Steps != nil {
		r.Steps = append(make([]models.Step, 0, len(*p.Steps)), *p.Steps...)
	}
}
