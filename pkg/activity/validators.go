package activity

type ListQuery struct {
	Limit int `query:"limit" default:"20" validate:"min=1,max=100"`
}

type WatchlistResponse struct {
	Added bool `json:"added"`
}

type StartSessionPayload struct {
	BookID int `json:"book_id" validate:"required,min=1"`
}
