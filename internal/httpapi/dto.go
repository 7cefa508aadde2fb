package httpapi

import (
	"time"

	"github.com/MinasAbeer/grocery-list-service/internal/domain/grocerylist"
	"github.com/MinasAbeer/grocery-list-service/internal/domain/product"
)

type productDTO struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

type listDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedOn time.Time `json:"created_on"`
	Color     string    `json:"color"`
	OwnerID   string    `json:"owner_id"`
}

type itemDTO struct {
	ID        string `json:"id"`
	ListID    string `json:"grocery_list_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type sessionDTO struct {
	List      *listDTO     `json:"list,omitempty"`
	Items     []itemDTO    `json:"items"`
	Available []productDTO `json:"available"`
	Message   string       `json:"message,omitempty"`
}

type searchDTO struct {
	Results []productDTO `json:"results"`
	Message string       `json:"message,omitempty"`
}

type exportDTO struct {
	Status   string `json:"status"`
	Filename string `json:"filename,omitempty"`
}

func toProductDTO(p product.Product) productDTO {
	return productDTO{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price.InexactFloat64(),
		Stock: p.Stock,
	}
}

func toProductDTOs(products []product.Product) []productDTO {
	out := make([]productDTO, len(products))
	for i, p := range products {
		out[i] = toProductDTO(p)
	}
	return out
}

func toListDTO(l grocerylist.List) listDTO {
	return listDTO{
		ID:        l.ID,
		Name:      l.Name,
		CreatedOn: l.CreatedOn,
		Color:     l.Color,
		OwnerID:   l.OwnerID,
	}
}

func toItemDTOs(items []grocerylist.Item) []itemDTO {
	out := make([]itemDTO, len(items))
	for i, it := range items {
		out[i] = itemDTO{
			ID:        it.ID,
			ListID:    it.ListID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		}
	}
	return out
}
