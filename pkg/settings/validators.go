package settings

type UpdateSettingsPayload struct {
	ItemsPerPage *int `json:"items_per_page,omitempty" validate:"omitempty,min=1,max=100"`
}
