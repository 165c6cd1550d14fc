package models

import "povdash/internal/dashboard"

// Page is one slice of a paginated list.
type Page[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type YearOptions struct {
	Dataset string `json:"dataset"`
	Years   []int  `json:"years"`
}

type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

type DatasetInfo struct {
	Name    string       `json:"name"`
	Rows    int          `json:"rows"`
	Columns []ColumnInfo `json:"columns"`
}

type WidgetList struct {
	Widgets []dashboard.Widget `json:"widgets"`
}

type Status struct {
	Ready bool `json:"ready"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
