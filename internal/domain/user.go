package domain

import "time"

// User holds the stored credentials for one account
type User struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Dietary restriction options a profile may select
const (
	RestrictionVegetarian = "Vegetarian"
	RestrictionVegan      = "Vegan"
	RestrictionGlutenFree = "Gluten-Free"
	RestrictionDairyFree  = "Dairy-Free"
	RestrictionHalal      = "Halal"
	RestrictionKosher     = "Kosher"
	RestrictionNone       = "None"
)

// DietaryRestrictions lists the accepted restriction options in display order
var DietaryRestrictions = []string{
	RestrictionVegetarian,
	RestrictionVegan,
	RestrictionGlutenFree,
	RestrictionDairyFree,
	RestrictionHalal,
	RestrictionKosher,
	RestrictionNone,
}

// Profile is a user's health profile document, including product history
type Profile struct {
	Name                string         `json:"name,omitempty"`
	Age                 int            `json:"age,omitempty"`
	Height              float64        `json:"height,omitempty"` // cm
	Weight              float64        `json:"weight,omitempty"` // kg
	HealthConditions    string         `json:"health_conditions,omitempty"`
	Allergies           string         `json:"allergies,omitempty"`
	DietaryRestrictions []string       `json:"dietary_restrictions,omitempty"`
	ProductHistory      []HistoryEntry `json:"product_history,omitempty"`
}

// IsComplete reports whether every field an analysis needs is filled in
func (p *Profile) IsComplete() bool {
	if p == nil {
		return false
	}
	return p.Name != "" && p.Age > 0 && p.Height > 0 && p.Weight > 0 && len(p.DietaryRestrictions) > 0
}

// PersonalInfo is the first step of the profile form
type PersonalInfo struct {
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

// HealthInfo is the second step of the profile form
type HealthInfo struct {
	HealthConditions    string   `json:"health_conditions"`
	Allergies           string   `json:"allergies"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
}
