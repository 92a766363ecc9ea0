package domain

var (
	MessageSuccessGetCategories = "success get categories"
	MessageFailedGetCategories  = "failed to get categories"
)

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
