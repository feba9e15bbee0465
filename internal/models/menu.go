package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func init() {
	// prices travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Category represents a menu section
type Category string

const (
	CategoryPizza      Category = "PIZZA"
	CategoryDrink      Category = "BEBIDA"
	CategoryDessert    Category = "SOBREMESA"
	CategoryStarter    Category = "ENTRADA"
	CategorySnack      Category = "LANCHE"
	CategoryMainCourse Category = "PRATO_PRINCIPAL"
)

var categories = []Category{
	CategoryPizza, CategoryDrink, CategoryDessert, CategoryStarter, CategorySnack, CategoryMainCourse,
}

// ParseCategory validates a category name
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("categoria must be one of: %s", joinNames(categories))
}

// MenuItem represents an item in the menu catalog
type MenuItem struct {
	ID          int64           `json:"id,string" db:"id"`
	Name        string          `json:"nome" db:"name"`
	Description string          `json:"descricao" db:"description"`
	Price       decimal.Decimal `json:"preco" db:"price"`
	Category    Category        `json:"categoria" db:"category"`
	Available   bool            `json:"disponivel" db:"available"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// MenuItemRequest is the body of create and replace requests
type MenuItemRequest struct {
	Name        string           `json:"nome"`
	Description string           `json:"descricao"`
	Price       *decimal.Decimal `json:"preco"`
	Category    string           `json:"categoria"`
	Available   *bool            `json:"disponivel"`
}

// Validate checks the request and returns the item it describes
func (req *MenuItemRequest) Validate() (*MenuItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ValidationError{Field: "nome", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) > 100 {
		return nil, ValidationError{Field: "nome", Message: "name must not exceed 100 characters"}
	}

	if utf8.RuneCountInString(req.Description) > 500 {
		return nil, ValidationError{Field: "descricao", Message: "description must not exceed 500 characters"}
	}

	if req.Price == nil {
		return nil, ValidationError{Field: "preco", Message: "price is required"}
	}
	if req.Price.IsNegative() {
		return nil, ValidationError{Field: "preco", Message: "price must not be negative"}
	}
	if !req.Price.Equal(req.Price.Round(2)) {
		return nil, ValidationError{Field: "preco", Message: "price must have at most 2 decimal places"}
	}

	if strings.TrimSpace(req.Category) == "" {
		return nil, ValidationError{Field: "categoria", Message: "category is required"}
	}
	category, err := ParseCategory(req.Category)
	if err != nil {
		return nil, ValidationError{Field: "categoria", Message: err.Error()}
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	return &MenuItem{
		Name:        name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    category,
		Available:   available,
	}, nil
}

func joinNames[T ~string](values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}
