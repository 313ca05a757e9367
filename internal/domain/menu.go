package domain

import "time"

type MenuItem struct {
	ItemID      string    `json:"id" dynamodbav:"item_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Slug        string    `json:"slug" dynamodbav:"slug"`
	Description *string   `json:"description" dynamodbav:"description"`
	Price       float64   `json:"price" dynamodbav:"price"`
	ImageURL    *string   `json:"image_url" dynamodbav:"image_url"`
	Category    string    `json:"category" dynamodbav:"category"`
	Badge       *string   `json:"badge" dynamodbav:"badge"`
	IsFeatured  bool      `json:"is_featured" dynamodbav:"is_featured"`
	IsActive    bool      `json:"is_active" dynamodbav:"is_active"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

type MenuItemInput struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	ImageURL    *string  `json:"image_url"`
	Category    string   `json:"category"`
	Badge       *string  `json:"badge"`
	IsFeatured  bool     `json:"is_featured"`
	IsActive    *bool    `json:"is_active"`
}

type UpdateMenuItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	ImageURL    *string  `json:"image_url"`
	Category    *string  `json:"category"`
	Badge       *string  `json:"badge"`
	IsFeatured  *bool    `json:"is_featured"`
	IsActive    *bool    `json:"is_active"`
}
