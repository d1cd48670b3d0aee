package domain

// CartEvent is delivered to cart subscribers after a mutation commits.
type CartEvent interface {
	isCartEvent()
}

type ItemAdded struct {
	Product  Product
	Quantity int64 // resulting quantity of the line
}

type ItemRemoved struct {
	Product  Product
	Quantity int64 // 0 means the line was deleted
}

type CartMoved struct {
	ItemID int64
	From   int64
	To     int64
}

type CartCleared struct{}

func (ItemAdded) isCartEvent()   {}
func (ItemRemoved) isCartEvent() {}
func (CartMoved) isCartEvent()   {}
func (CartCleared) isCartEvent() {}

// HistoryChanged is delivered to search-history subscribers after a
// query record is inserted or its last access is bumped.
type HistoryChanged struct {
	Query SearchQueryRecord
}
