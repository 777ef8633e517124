package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"potluck/apperr"
)

// Permission is a collaborator's level of access to a recipe.
type Permission string

const (
	PermissionEdit    Permission = "edit"
	PermissionSuggest Permission = "suggest"
)

// DefaultPermission is granted on invite when nothing else is configured.
const DefaultPermission = PermissionEdit

func (p Permission) Valid() bool {
	return p == PermissionEdit || p == PermissionSuggest
}

// ParsePermission validates a permission level coming from a request.
func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", apperr.Newf(apperr.Invalid, "permission must be %q or %q", PermissionEdit, PermissionSuggest)
	}
	return p, nil
}

type EditStatus string

const (
	EditPending  EditStatus = "pending"
	EditApproved EditStatus = "approved"
	EditRejected EditStatus = "rejected"
)

type Ingredient struct {
	Quantity float64 `bson:"quantity" json:"quantity"`
	Unit     string  `bson:"unit"     json:"unit"`
	Name     string  `bson:"name"     json:"name"`
}

type Step struct {
	Order        int    `bson:"order"       json:"order"`
	Description  string `bson:"description" json:"description"`
	TimerMinutes int    `bson:"timer"       json:"timerMinutes"`
}

// UnmarshalJSON accepts the timer as either "timerMinutes" or "timer".
// Unknown keys are rejected.
func (s *Step) UnmarshalJSON(data []byte) error {
	var in struct {
		Order        int    `json:"order"`
		Description  string `json:"description"`
		TimerMinutes *int   `json:"timerMinutes"`
		Timer        *int   `json:"timer"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return err
	}
	*s = Step{Order: in.Order, Description: in.Description}
	switch {
	case in.TimerMinutes != nil:
		s.TimerMinutes = *in.TimerMinutes
	case in.Timer != nil:
		s.TimerMinutes = *in.Timer
	}
	return nil
}

type Collaborator struct {
	UserID     string     `bson:"userId"     json:"userId"`
	Permission Permission `bson:"permission" json:"permission"`
	AddedAt    time.Time  `bson:"addedAt"    json:"addedAt"`
}

// PendingEdit is a suggested change kept on the recipe as an audit record.
type PendingEdit struct {
	ID         string      `bson:"id"                   json:"id"`
	ProposedBy string      `bson:"proposedBy"           json:"proposedBy"`
	Changes    RecipePatch `bson:"changes"              json:"changes"`
	Status     EditStatus  `bson:"status"               json:"status"`
	CreatedAt  time.Time   `bson:"createdAt"            json:"createdAt"`
	ReviewedBy string      `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time  `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
}

type Recipe struct {
	ID            string         `bson:"_id"           json:"id"`
	Title         string         `bson:"title"         json:"title"`
	Description   string         `bson:"description"   json:"description"`
	Servings      int            `bson:"servings"      json:"servings"`
	PrepTime      int            `bson:"prepTime"      json:"prepTime"`
	CookTime      int            `bson:"cookTime"      json:"cookTime"`
	IsPublic      bool           `bson:"isPublic"      json:"isPublic"`
	Ingredients   []Ingredient   `bson:"ingredients"   json:"ingredients"`
	Steps         []Step         `bson:"steps"         json:"steps"`
	Owner         string         `bson:"owner"         json:"owner"`
	Collaborators []Collaborator `bson:"collaborators" json:"collaborators"`
	PendingEdits  []PendingEdit  `bson:"pendingEdits"  json:"pendingEdits"`
	Version       int64          `bson:"version"       json:"version"`
	CreatedAt     time.Time      `bson:"createdAt"     json:"createdAt"`
	UpdatedAt     time.Time      `bson:"updatedAt"     json:"updatedAt"`
}

func (r *Recipe) IsOwner(userID string) bool {
	return userID != "" && r.Owner == userID
}

// Collaborator returns the entry for userID and its index, or nil and -1.
func (r *Recipe) Collaborator(userID string) (*Collaborator, int) {
	for i := range r.Collaborators {
		if r.Collaborators[i].UserID == userID {
			return &r.Collaborators[i], i
		}
	}
	return nil, -1
}

func (r *Recipe) PendingEdit(id string) *PendingEdit {
	for i := range r.PendingEdits {
		if r.PendingEdits[i].ID == id {
			return &r.PendingEdits[i]
		}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without touching r.
func (r *Recipe) Clone() *Recipe {
	c := *r
	c.Ingredients = cloneSlice(r.Ingredients)
	c.Steps = cloneSlice(r.Steps)
	c.Collaborators = cloneSlice(r.Collaborators)
	if r.PendingEdits != nil {
		c.PendingEdits = make([]PendingEdit, len(r.PendingEdits))
		for i, pe := range r.PendingEdits {
			pe.Changes = pe.Changes.Clone()
			if pe.ReviewedAt != nil {
				t := *pe.ReviewedAt
				pe.ReviewedAt = &t
			}
			c.PendingEdits[i] = pe
		}
	}
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// NewRecipe is the payload accepted when a recipe is created.
type NewRecipe struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Servings    int          `json:"servings"`
	PrepTime    int          `json:"prepTime"`
	CookTime    int          `json:"cookTime"`
	IsPublic    bool         `json:"isPublic"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []Step       `json:"steps"`
}

// Normalize validates the payload and fills defaults in place.
func (n *NewRecipe) Normalize() error {
	n.Title = strings.TrimSpace(n.Title)
	n.Description = strings.TrimSpace(n.Description)
	if n.Title == "" {
		return apperr.New(apperr.Invalid, "title is required")
	}
	if n.Description == "" {
		return apperr.New(apperr.Invalid, "description is required")
	}
	if n.Servings == 0 {
		n.Servings = 1
	}
	if n.Servings < 0 {
		return apperr.New(apperr.Invalid, "servings must be positive")
	}
	if n.PrepTime < 0 || n.CookTime < 0 {
		return apperr.New(apperr.Invalid, "prepTime and cookTime must not be negative")
	}
	if err := ValidateIngredients(n.Ingredients); err != nil {
		return err
	}
	steps, err := NormalizeSteps(n.Steps)
	if err != nil {
		return err
	}
	n.Steps = steps
	if n.Ingredients == nil {
		n.Ingredients = []Ingredient{}
	}
	return nil
}

func ValidateIngredients(ingredients []Ingredient) error {
	for i, ing := range ingredients {
		if ing.Quantity <= 0 {
			return apperr.Newf(apperr.Invalid, "ingredient %d: quantity must be positive", i+1)
		}
		if strings.TrimSpace(ing.Unit) == "" {
			return apperr.Newf(apperr.Invalid, "ingredient %d: unit is required", i+1)
		}
		if strings.TrimSpace(ing.Name) == "" {
			return apperr.Newf(apperr.Invalid, "ingredient %d: name is required", i+1)
		}
	}
	return nil
}

// NormalizeSteps numbers steps 1..N when no order was given, otherwise
// requires the given orders to be exactly 1..N in sequence.
func NormalizeSteps(steps []Step) ([]Step, error) {
	out := make([]Step, len(steps))
	copy(out, steps)

	unnumbered := true
	for _, s := range out {
		if s.Order != 0 {
			unnumbered = false
			break
		}
	}
	for i := range out {
		if strings.TrimSpace(out[i].Description) == "" {
			return nil, apperr.Newf(apperr.Invalid, "step %d: description is required", i+1)
		}
		if out[i].TimerMinutes < 0 {
			return nil, apperr.Newf(apperr.Invalid, "step %d: timer must not be negative", i+1)
		}
		if unnumbered {
			out[i].Order = i + 1
		} else if out[i].Order != i+1 {
			return nil, apperr.Newf(apperr.Invalid, "step orders must run 1..%d without gaps", len(out))
		}
	}
	return out, nil
}
