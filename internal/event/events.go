package event

// TopicProductAdded is the broadcast channel for successful product
// creates. Every gateway instance consumes it and refreshes its local
// store, replacing the old implicit "product added" side signal.
const TopicProductAdded = "catalog.product.added"

type ProductAddedEvent struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
}
