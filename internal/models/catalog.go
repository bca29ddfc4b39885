package models

// Character персонаж из каталога.
type Character struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	AgeGroups   []AgeGroup `json:"ageGroups"`
}

// AllowedFor пустой список групп означает "для всех".
func (c Character) AllowedFor(ag AgeGroup) bool { return AgeGroupsAllow(c.AgeGroups, ag) }

// Theme тема истории.
type Theme struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	AgeGroups   []AgeGroup `json:"ageGroups"`
}

func (t Theme) AllowedFor(ag AgeGroup) bool { return AgeGroupsAllow(t.AgeGroups, ag) }
