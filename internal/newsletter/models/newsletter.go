package models

// Newsletter is a drafted campaign aimed at one customer segment. Target
// carries the segment label the marketing team selected.
type Newsletter struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Target    string `json:"target"`
	CreatedBy string `json:"createdBy"`
}
