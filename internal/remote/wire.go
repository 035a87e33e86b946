package remote

import "tobuy/internal/shop"

// ItemRow is the wire form of an item: snake_case on the wire, camelCase
// in memory. The mapping is a pure bijection and must round-trip
// losslessly.
type ItemRow struct {
	ID        string `json:"id"`
	ListID    string `json:"list_id"`
	Name      string `json:"name"`
	IsBought  bool   `json:"is_bought"`
	Category  string `json:"category,omitempty"`
	CreatedAt int64  `json:"created_at"`
	ItemOrder int64  `json:"item_order"`
}

// ListRow is the wire form of a list.
type ListRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
	ShareCode string `json:"share_code"`
}

// RowFromItem maps an item to its wire form.
func RowFromItem(item shop.Item) ItemRow {
	return ItemRow{
		ID:        item.ID,
		ListID:    item.ListID,
		Name:      item.Name,
		IsBought:  item.IsBought,
		Category:  item.Category,
		CreatedAt: item.CreatedAt,
		ItemOrder: item.Order,
	}
}

// Item maps the wire form back to an item.
func (r ItemRow) Item() shop.Item {
	return shop.Item{
		ID:        r.ID,
		ListID:    r.ListID,
		Name:      r.Name,
		IsBought:  r.IsBought,
		Category:  r.Category,
		CreatedAt: r.CreatedAt,
		Order:     r.ItemOrder,
	}
}

// RowFromList maps a list to its wire form.
func RowFromList(list shop.List) ListRow {
	return ListRow{
		ID:        list.ID,
		Name:      list.Name,
		CreatedAt: list.CreatedAt,
		ShareCode: list.ShareCode,
	}
}

// List maps the wire form back to a list.
func (r ListRow) List() shop.List {
	return shop.List{
		ID:        r.ID,
		Name:      r.Name,
		ShareCode: r.ShareCode,
		CreatedAt: r.CreatedAt,
	}
}

// RowsFromItems maps a slice of items to wire form.
func RowsFromItems(items []shop.Item) []ItemRow {
	rows := make([]ItemRow, len(items))
	for i, item := range items {
		rows[i] = RowFromItem(item)
	}

	return rows
}

// ItemsFromRows maps a slice of wire rows back to items.
func ItemsFromRows(rows []ItemRow) []shop.Item {
	items := make([]shop.Item, len(rows))
	for i, row := range rows {
		items[i] = row.Item()
	}

	return items
}
