package skins

// Skin is a cosmetic slot-machine theme sold in the shop.
// Reels holds the symbol strips rendered by the frontend.
type Skin struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"` // unique
	Price       int      `json:"precio"`
	Description string   `json:"description"`
	Reels       []string `json:"reels"`
	Sellable    bool     `json:"vendible"`
}
