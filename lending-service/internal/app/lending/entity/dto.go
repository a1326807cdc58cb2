package entity

import "time"

type LocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// CreateItemRequest - запрос на размещение вещи
type CreateItemRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Category    string          `json:"category" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=2000"`
	Location    LocationRequest `json:"location"`
	Rating      int             `json:"rating" validate:"required,min=1,max=5"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

// UpdateItemRequest - редактирование вещи владельцем. Доступность не входит в запрос.
type UpdateItemRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Category    string          `json:"category" validate:"required,max=100"`
	Description string          `json:"description" validate:"max=2000"`
	Location    LocationRequest `json:"location"`
	Rating      int             `json:"rating" validate:"required,min=1,max=5"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

// RequestLoanRequest - запрос на займ. Заёмщик берётся из токена.
type RequestLoanRequest struct {
	ItemID           string    `json:"item_id" validate:"required"`
	LenderID         string    `json:"lender_id" validate:"required"`
	ItemName         string    `json:"item_name" validate:"max=200"`
	PlannedStartDate time.Time `json:"planned_start_date" validate:"required"`
	PlannedEndDate   time.Time `json:"planned_end_date" validate:"required"`
}

// SubmitReviewRequest - отзыв о владельце. Автор берётся из токена.
type SubmitReviewRequest struct {
	LoanID   string `json:"loan_id" validate:"required"`
	LenderID string `json:"lender_id" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Text     string `json:"review" validate:"max=1000"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - ответ без тела сущности
type SuccessResponse struct {
	Message string `json:"message"`
}

type ItemListResponse struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

type LoanListResponse struct {
	Loans []Loan `json:"loans"`
	Total int    `json:"total"`
}

// ListItemsQuery - параметры поиска по каталогу
type ListItemsQuery struct {
	Search    string `form:"search" validate:"max=200"`
	MinRating int    `form:"min_rating" validate:"omitempty,min=1,max=5"`
	MaxRating int    `form:"max_rating" validate:"omitempty,min=1,max=5"`
	Available bool   `form:"available"`
	LenderID  string `form:"lender_id"`
}

// ToFilter переводит параметры запроса в фильтр репозитория
func (q ListItemsQuery) ToFilter() ItemFilter {
	return ItemFilter{
		Search:        q.Search,
		MinRating:     q.MinRating,
		MaxRating:     q.MaxRating,
		AvailableOnly: q.Available,
		LenderID:      q.LenderID,
	}
}
