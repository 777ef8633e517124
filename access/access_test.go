package access

import (
	"testing"

	"potluck/apperr"
	"potluck/models"
)

func recipe(public bool, collaborators ...models.Collaborator) *models.Recipe {
	return &models.Recipe{
		ID:            "r1",
		Title:         "Pancakes",
		Owner:         "owner",
		IsPublic:      public,
		Collaborators: collaborators,
	}
}

func ptr[T any](v T) *T { return &v }

func TestClassify(t *testing.T) {
	editor := models.Collaborator{UserID: "editor", Permission: models.PermissionEdit}
	suggester := models.Collaborator{UserID: "suggester", Permission: models.PermissionSuggest}
	title := models.RecipePatch{Title: ptr("X")}
	visibility := models.RecipePatch{IsPublic: ptr(true)}

	tests := []struct {
		name    string
		recipe  *models.Recipe
		actor   string
		changes models.RecipePatch
		want    Decision
	}{
		{"owner of private recipe", recipe(false), "owner", title, Direct},
		{"owner of public recipe", recipe(true), "owner", title, Direct},
		{"owner changes visibility", recipe(false), "owner", visibility, Direct},
		{"edit collaborator private", recipe(false, editor), "editor", title, Direct},
		{"edit collaborator public", recipe(true, editor), "editor", title, Direct},
		{"edit collaborator changes visibility", recipe(false, editor), "editor", visibility, Direct},
		{"suggest collaborator public", recipe(true, suggester), "suggester", title, Suggest},
		{"suggest collaborator private", recipe(false, suggester), "suggester", title, Deny},
		{"stranger public", recipe(true), "stranger", title, Suggest},
		{"stranger public changes visibility", recipe(true), "stranger", visibility, Suggest},
		{"stranger private", recipe(false), "stranger", title, Deny},
		{"anonymous", recipe(true), "", title, Deny},
		{"nil recipe", nil, "owner", title, Deny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.recipe, tt.actor, tt.changes); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_OwnerAlwaysDirect(t *testing.T) {
	patches := []models.RecipePatch{
		{},
		{Servings: ptr(6)},
		{IsPublic: ptr(false)},
		{Steps: &[]models.Step{{Order: 1, Description: "stir"}}},
	}
	for _, public := range []bool{true, false} {
		for _, p := range patches {
			if got := Classify(recipe(public), "owner", p); got != Direct {
				t.Errorf("Classify(public=%v, %v) = %v, want DIRECT", public, p.Fields(), got)
			}
		}
	}
}

func TestOwnerOnlyActions(t *testing.T) {
	r := recipe(true, models.Collaborator{UserID: "editor", Permission: models.PermissionEdit})

	for _, actor := range []string{"editor", "stranger", ""} {
		if CanManage(r, actor) {
			t.Errorf("CanManage(%q) = true, want false", actor)
		}
		if CanReview(r, actor) {
			t.Errorf("CanReview(%q) = true, want false", actor)
		}
		if err := RequireOwner(r, actor, "delete this recipe"); !apperr.Is(err, apperr.Forbidden) {
			t.Errorf("RequireOwner(%q) = %v, want Forbidden", actor, err)
		}
	}
	if !CanManage(r, "owner") || !CanReview(r, "owner") || RequireOwner(r, "owner", "x") != nil {
		t.Error("owner should be allowed owner-only actions")
	}
}

func TestCanView(t *testing.T) {
	suggester := models.Collaborator{UserID: "suggester", Permission: models.PermissionSuggest}
	tests := []struct {
		name   string
		recipe *models.Recipe
		actor  string
		want   bool
	}{
		{"public stranger", recipe(true), "stranger", true},
		{"private stranger", recipe(false), "stranger", false},
		{"private owner", recipe(false), "owner", true},
		{"private collaborator", recipe(false, suggester), "suggester", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanView(tt.recipe, tt.actor); got != tt.want {
				t.Errorf("CanView() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecisionString(t *testing.T) {
	if Direct.String() != "DIRECT" || Suggest.String() != "SUGGEST" || Deny.String() != "DENY" {
		t.Error("unexpected Decision strings")
	}
}
