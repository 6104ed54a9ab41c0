package domain

import (
	"encoding/json"
	"strings"
)

// ListEntry is what a shopping list item points at: a catalog product or a free-text name.
// The only implementations are CatalogEntry and ManualEntry.
type ListEntry interface {
	isListEntry()
}

// CatalogEntry references a catalog product by id
type CatalogEntry struct {
	ProductID string
}

// ManualEntry is a free-text item with no catalog product
type ManualEntry struct {
	Name string
}

func (CatalogEntry) isListEntry() {}
func (ManualEntry) isListEntry()  {}

// ShoppingListItem is one line of the user's shopping list
type ShoppingListItem struct {
	ID               string
	Entry            ListEntry
	Quantity         int
	Checked          bool
	PreferredStoreID string
}

// ProductID returns the referenced product id, if the item is a catalog entry
func (i ShoppingListItem) ProductID() (string, bool) {
	if e, ok := i.Entry.(CatalogEntry); ok {
		return e.ProductID, true
	}
	return "", false
}

// ManualName returns the free-text name, if the item is a manual entry
func (i ShoppingListItem) ManualName() (string, bool) {
	if e, ok := i.Entry.(ManualEntry); ok {
		return e.Name, true
	}
	return "", false
}

// shoppingListItemJSON is the stored shape. It matches the client's local storage format.
type shoppingListItemJSON struct {
	ID               string `json:"id"`
	ProductID        string `json:"productId,omitempty"`
	CustomName       string `json:"customName,omitempty"`
	Quantity         int    `json:"quantity"`
	Checked          bool   `json:"checked"`
	PreferredStoreID string `json:"preferredStoreId,omitempty"`
}

// MarshalJSON flattens the entry variant into productId or customName
func (i ShoppingListItem) MarshalJSON() ([]byte, error) {
	out := shoppingListItemJSON{
		ID:               i.ID,
		Quantity:         i.Quantity,
		Checked:          i.Checked,
		PreferredStoreID: i.PreferredStoreID,
	}
	switch e := i.Entry.(type) {
	case CatalogEntry:
		out.ProductID = e.ProductID
	case ManualEntry:
		out.CustomName = e.Name
	default:
		return nil, ErrInvalidListItem
	}
	return json.Marshal(out)
}

// UnmarshalJSON rejects items that carry both or neither of productId and customName
func (i *ShoppingListItem) UnmarshalJSON(data []byte) error {
	var in shoppingListItemJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	hasProduct := in.ProductID != ""
	hasName := strings.TrimSpace(in.CustomName) != ""
	if hasProduct == hasName {
		return ErrInvalidListItem
	}
	if in.Quantity < 1 {
		return ErrInvalidQuantity
	}

	*i = ShoppingListItem{
		ID:               in.ID,
		Quantity:         in.Quantity,
		Checked:          in.Checked,
		PreferredStoreID: in.PreferredStoreID,
	}
	if hasProduct {
		i.Entry = CatalogEntry{ProductID: in.ProductID}
	} else {
		i.Entry = ManualEntry{Name: in.CustomName}
	}
	return nil
}

// ItemUpdate lists the shopping list item fields a user may change
type ItemUpdate struct {
	Quantity         *int    `json:"quantity"`
	Checked          *bool   `json:"checked"`
	PreferredStoreID *string `json:"preferredStoreId" validate:"omitempty,max=64"`
}

// Validate checks the update record
func (u ItemUpdate) Validate() error {
	if u.Quantity == nil && u.Checked == nil && u.PreferredStoreID == nil {
		return ErrEmptyUpdate
	}
	return validate.Struct(u)
}

// Apply merges the update into item. Quantities below 1 are clamped to 1.
func (u ItemUpdate) Apply(item ShoppingListItem) ShoppingListItem {
	if u.Quantity != nil {
		item.Quantity = max(*u.Quantity, 1)
	}
	if u.Checked != nil {
		item.Checked = *u.Checked
	}
	if u.PreferredStoreID != nil {
		item.PreferredStoreID = *u.PreferredStoreID
	}
	return item
}
