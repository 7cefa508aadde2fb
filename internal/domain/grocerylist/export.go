package grocerylist

import "github.com/go-faster/jx"

// FormatItems serializes items to a JSON array with a fixed field order per
// record: id, grocery_list_id, product_id, quantity. An empty or nil items
// slice yields a valid empty array. The encoder is used directly instead of
// struct marshaling to pin the field order.
func FormatItems(items []Item) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(it.ID)
		e.FieldStart("grocery_list_id")
		e.Str(it.ListID)
		e.FieldStart("product_id")
		e.Str(it.ProductID)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}
