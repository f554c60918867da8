// Package cart implements the shopping cart value object.
//
// A cart tracks product references and per-product quantities and
// round-trips losslessly through JSON as {"type":"cart","qty":…,
// "ref":…,"meta":…}, which is how it is persisted in the session
// cookie. The cart exclusively owns its quantity map and reference
// list; Clone deep-copies both.
package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is the slice of catalog data a cart needs to reference: the
// provider-assigned id, a display name and the unit price in the
// storefront's base currency.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Entry pairs a referenced product with its quantity.
type Entry struct {
	Product  Product
	Quantity int
}

// Cart tracks product quantities for one session. The zero value is
// not usable; construct with New or FromJSON.
type Cart struct {
	quantities map[int64]int
	references []Product
	meta       map[string]string
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{
		quantities: make(map[int64]int),
		references: make([]Product, 0),
		meta:       make(map[string]string),
	}
}

// Add increments the quantity for the product, inserting a reference
// when the product is newly present. No upper bound is enforced.
func (c *Cart) Add(p Product) *Cart {
	if !c.referenced(p.ID) {
		c.references = append(c.references, p)
	}
	c.quantities[p.ID]++
	return c
}

// Remove decrements the quantity for the product. When the quantity
// drops below one the reference is removed and the quantity treated as
// absent.
func (c *Cart) Remove(p Product) *Cart {
	c.quantities[p.ID]--

	if c.quantities[p.ID] < 1 {
		delete(c.quantities, p.ID)
		for i, ref := range c.references {
			if ref.ID == p.ID {
				c.references = append(c.references[:i], c.references[i+1:]...)
				break
			}
		}
	}
	return c
}

// Entries returns the (product, quantity) pairs for every product with
// a positive quantity, in reference insertion order. The slice is
// recomputed from current state on each call.
func (c *Cart) Entries() []Entry {
	entries := make([]Entry, 0, len(c.references))
	for _, ref := range c.references {
		if qty := c.quantities[ref.ID]; qty > 0 {
			entries = append(entries, Entry{Product: ref, Quantity: qty})
		}
	}
	return entries
}

// Clear empties both the quantity map and the reference list. Meta is
// left in place; it belongs to the session, not the selection.
func (c *Cart) Clear() *Cart {
	c.quantities = make(map[int64]int)
	c.references = make([]Product, 0)
	return c
}

// Clone returns a deep, independent copy sharing no mutable structure
// with the original.
func (c *Cart) Clone() *Cart {
	out := &Cart{
		quantities: make(map[int64]int, len(c.quantities)),
		references: make([]Product, len(c.references)),
		meta:       make(map[string]string, len(c.meta)),
	}
	for id, qty := range c.quantities {
		out.quantities[id] = qty
	}
	copy(out.references, c.references)
	for k, v := range c.meta {
		out.meta[k] = v
	}
	return out
}

// Size is the sum of all quantities.
func (c *Cart) Size() int {
	total := 0
	for _, qty := range c.quantities {
		total += qty
	}
	return total
}

// Uniques is the count of distinct referenced products.
func (c *Cart) Uniques() int {
	return len(c.references)
}

// Total sums price*quantity over Entries. Accumulation happens in
// exact decimal arithmetic so many small additions cannot drift; only
// the final result is converted back to a float. An empty cart totals
// zero.
func (c *Cart) Total() float64 {
	total := decimal.Zero
	for _, e := range c.Entries() {
		line := decimal.NewFromFloat(e.Product.Price).Mul(decimal.NewFromInt(int64(e.Quantity)))
		total = total.Add(line)
	}
	f, _ := total.Float64()
	return f
}

// Meta returns the cart's session metadata map. Mutations are visible
// to the cart.
func (c *Cart) Meta() map[string]string {
	return c.meta
}

// SetMeta stores an arbitrary string-keyed metadata value carried
// through serialization.
func (c *Cart) SetMeta(key, value string) {
	c.meta[key] = value
}

func (c *Cart) referenced(id int64) bool {
	for _, ref := range c.references {
		if ref.ID == id {
			return true
		}
	}
	return false
}

type cartJSON struct {
	Type string           `json:"type"`
	Qty  map[int64]int    `json:"qty"`
	Ref  []Product        `json:"ref"`
	Meta map[string]string `json:"meta"`
}

// MarshalJSON implements json.Marshaler.
func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartJSON{
		Type: "cart",
		Qty:  c.quantities,
		Ref:  c.references,
		Meta: c.meta,
	})
}

// UnmarshalJSON implements json.Unmarshaler, restoring a cart from the
// serialized qty/ref/meta triple.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var aux cartJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("cart: decode: %w", err)
	}

	c.quantities = aux.Qty
	if c.quantities == nil {
		c.quantities = make(map[int64]int)
	}
	c.references = aux.Ref
	if c.references == nil {
		c.references = make([]Product, 0)
	}
	c.meta = aux.Meta
	if c.meta == nil {
		c.meta = make(map[string]string)
	}
	return nil
}

// FromJSON restores a cart from its serialized form.
func FromJSON(data []byte) (*Cart, error) {
	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}
