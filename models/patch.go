package models

import (
	"strings"

	"potluck/apperr"
)

// RecipePatch is a partial update. Only the fields listed here can ever be
// changed through a patch; a nil field is left untouched.
type RecipePatch struct {
	Title       *string       `bson:"title,omitempty"       json:"title,omitempty"`
	Description *string       `bson:"description,omitempty" json:"description,omitempty"`
	Servings    *int          `bson:"servings,omitempty"    json:"servings,omitempty"`
	PrepTime    *int          `bson:"prepTime,omitempty"    json:"prepTime,omitempty"`
	CookTime    *int          `bson:"cookTime,omitempty"    json:"cookTime,omitempty"`
	IsPublic    *bool         `bson:"isPublic,omitempty"    json:"isPublic,omitempty"`
	Ingredients *[]Ingredient `bson:"ingredients,omitempty" json:"ingredients,omitempty"`
	Steps       *[]Step       `bson:"steps,omitempty"       json:"steps,omitempty"`
}

func (p RecipePatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Fields lists the keys the patch sets, in declaration order.
func (p RecipePatch) Fields() []string {
	var out []string
	if p.Title != nil {
		out = append(out, "title")
	}
	if p.Description != nil {
		out = append(out, "description")
	}
	if p.Servings != nil {
		out = append(out, "servings")
	}
	if p.PrepTime != nil {
		out = append(out, "prepTime")
	}
	if p.CookTime != nil {
		out = append(out, "cookTime")
	}
	if p.IsPublic != nil {
		out = append(out, "isPublic")
	}
	if p.Ingredients != nil {
		out = append(out, "ingredients")
	}
	if p.Steps != nil {
		out = append(out, "steps")
	}
	return out
}

// Normalize validates every set field and numbers steps in place.
func (p *RecipePatch) Normalize() error {
	if p.IsEmpty() {
		return apperr.New(apperr.Invalid, "patch contains no recognized fields")
	}
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return apperr.New(apperr.Invalid, "title must not be empty")
		}
		p.Title = &t
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		if d == "" {
			return apperr.New(apperr.Invalid, "description must not be empty")
		}
		p.Description = &d
	}
	if p.Servings != nil && *p.Servings <= 0 {
		return apperr.New(apperr.Invalid, "servings must be positive")
	}
	if p.PrepTime != nil && *p.PrepTime < 0 {
		return apperr.New(apperr.Invalid, "prepTime must not be negative")
	}
	if p.CookTime != nil && *p.CookTime < 0 {
		return apperr.New(apperr.Invalid, "cookTime must not be negative")
	}
	if p.Ingredients != nil {
		if err := ValidateIngredients(*p.Ingredients); err != nil {
			return err
		}
		if *p.Ingredients == nil {
			empty := []Ingredient{}
			p.Ingredients = &empty
		}
	}
	if p.Steps != nil {
		steps, err := NormalizeSteps(*p.Steps)
		if err != nil {
			return err
		}
		p.Steps = &steps
	}
	return nil
}

// Clone deep copies the patch.
func (p RecipePatch) Clone() RecipePatch {
	c := RecipePatch{}
	if p.Title != nil {
		v := *p.Title
		c.Title = &v
	}
	if p.Description != nil {
		v := *p.Description
		c.Description = &v
	}
	if p.Servings != nil {
		v := *p.Servings
		c.Servings = &v
	}
	if p.PrepTime != nil {
		v := *p.PrepTime
		c.PrepTime = &v
	}
	if p.CookTime != nil {
		v := *p.CookTime
		c.CookTime = &v
	}
	if p.IsPublic != nil {
		v := *p.IsPublic
		c.IsPublic = &v
	}
	if p.Ingredients != nil {
		v := cloneSlice(*p.Ingredients)
		c.Ingredients = &v
	}
	if p.Steps != nil {
		v := cloneSlice(*p.Steps)
		c.Steps = &v
	}
	return c
}
