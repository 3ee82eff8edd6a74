package stats

type LimitQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}
