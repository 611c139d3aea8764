package domain

// CartItem is one line of the server side cart.
type CartItem struct {
	CartID              FlexString `json:"cart_id" yaml:"cartId"`
	ItemName            string     `json:"item_name" yaml:"name"`
	ItemQuantity        FlexString `json:"item_quantity" yaml:"quantity"`
	ItemPrice           FlexString `json:"item_price" yaml:"price"`
	ItemDescription     string     `json:"item_description" yaml:"description,omitempty"`
	TotalPrice          FlexString `json:"total_price" yaml:"total"`
	ImageURL            string     `json:"image_url" yaml:"imageUrl"`
	CurrencySymbol      string     `json:"currency_symbol" yaml:"currency"`
	ArticleCategoryName string     `json:"article_category_name" yaml:"category"`
	PostID              FlexString `json:"post_id,omitempty" yaml:"postId,omitempty"`
}

// CartSummary is a snapshot of the cart with its totals.
type CartSummary struct {
	Items          []CartItem `json:"cart_items" yaml:"items"`
	TotalItems     int        `json:"total_items" yaml:"totalItems"`
	ItemTotal      FlexString `json:"item_total" yaml:"itemTotal"`
	DeliveryCharge FlexString `json:"delivery_charge" yaml:"deliveryCharge"`
	Discount       FlexString `json:"discount" yaml:"discount"`
	CurrencySymbol string     `json:"currency_symbol" yaml:"currency"`
}

// GrandTotal is item total plus delivery minus discount; unparseable parts count as zero.
func (c CartSummary) GrandTotal() float64 {
	items, _ := c.ItemTotal.Float()
	delivery, _ := c.DeliveryCharge.Float()
	discount, _ := c.Discount.Float()
	return items + delivery - discount
}
