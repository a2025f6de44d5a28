package badges

// Badge represents one entry of the club's badge catalog.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BadgeRarity is a catalog badge together with its population unlock count
// and the derived rarity score used to sort the badge wall.
type BadgeRarity struct {
	Badge       Badge   `json:"badge"`
	UnlockCount int     `json:"unlock_count"`
	RarityScore float64 `json:"rarity_score"`
}
