package book

type CreateBookInput struct {
	ID            string `json:"id" validate:"required,max=64"`
	Title         string `json:"title" validate:"required"`
	Author        string `json:"author" validate:"required"`
	Genre         string `json:"genre"`
	CategoryID    string `json:"category_id"`
	PageCount     *int   `json:"page_count" validate:"omitempty,gte=1"`
	TotalCopies   int    `json:"total_copies" validate:"gte=0"`
	CoverImageURL string `json:"cover_image_url" validate:"omitempty,url"`
}

// UpdateBookInput carries only the fields to change.
type UpdateBookInput struct {
	Title         *string `json:"title" validate:"omitempty,min=1"`
	Author        *string `json:"author" validate:"omitempty,min=1"`
	Genre         *string `json:"genre"`
	CategoryID    *string `json:"category_id"`
	PageCount     *int    `json:"page_count" validate:"omitempty,gte=1"`
	TotalCopies   *int    `json:"total_copies" validate:"omitempty,gte=1"`
	CoverImageURL *string `json:"cover_image_url" validate:"omitempty,url"`
}

type Drift struct {
	BookID     string `json:"book_id"`
	Stored     int    `json:"stored"`
	Recomputed int    `json:"recomputed"`
	Legacy     bool   `json:"legacy,omitempty"`
}

type ReconcileReport struct {
	Checked int     `json:"checked"`
	Drifted []Drift `json:"drifted"`
}
