package domain

// Product is the read model of a marketplace listing that chat joins
// against. The catalog service owns the collection, this side only reads
// and watches it.
type Product struct {
	ID       string  `bson:"_id" json:"id"`
	Name     string  `bson:"name" json:"name"`
	SellerID string  `bson:"seller_id" json:"seller_id"`
	Category string  `bson:"category,omitempty" json:"category,omitempty"`
	Price    float64 `bson:"price" json:"price"`
	Unit     string  `bson:"unit,omitempty" json:"unit,omitempty"`
	Quantity int     `bson:"quantity" json:"quantity"`
	MinOrder int     `bson:"minimum_order_quantity,omitempty" json:"minimum_order_quantity,omitempty"`
	Image    string  `bson:"image,omitempty" json:"image,omitempty"`
}

// StockChange is emitted when a listing's quantity moves while members are
// negotiating over it.
type StockChange struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Timestamp int64  `json:"timestamp"`
}
