package media

import (
	"fmt"

	"github.com/jackzampolin/papertree/internal/diag"
)

// UserNumberBase is the first number handed to user-inserted assets so
// they never collide with caption-derived numbers.
const UserNumberBase = 100

type key struct {
	kind   Kind
	number int
}

// Catalog is the flat, document-wide list of media assets.
// Numbers are unique per kind.
type Catalog struct {
	assets []Asset
	index  map[key]ID
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[key]ID)}
}

// Register adds an asset and returns it as stored.
//
// Assets without a number get the next free number of their kind.
// An asset whose number is already taken is kept, demoted to Other with
// a fresh number, and reported as media_renumbered.
func (c *Catalog) Register(a Asset, report *diag.Report) Asset {
	if a.Number > 0 {
		if _, taken := c.index[key{a.Kind, a.Number}]; taken {
			prev := a.Kind.Label(a.Number)
			a.Kind = KindOther
			a.Number = c.nextNumber(KindOther, 1)
			report.Warn(diag.KindMediaRenumbered, diag.AtRegion(a.Page, a.RegionID),
				"duplicate label %s stored as %s", prev, a.Kind.Label(a.Number))
		}
	} else {
		a.Number = c.nextNumber(a.Kind, 1)
	}
	return c.store(a)
}

// Insert adds a user-supplied asset. It is enabled and numbered from
// UserNumberBase upward.
func (c *Catalog) Insert(kind Kind, ref, description string, page int) Asset {
	a := Asset{
		Kind:         kind,
		Number:       c.nextNumber(kind, UserNumberBase),
		Ref:          ref,
		Description:  description,
		Enabled:      true,
		Page:         page,
		UserSupplied: true,
	}
	return c.store(a)
}

func (c *Catalog) store(a Asset) Asset {
	a.ID = ID(len(c.assets))
	a.Label = a.Kind.Label(a.Number)
	c.assets = append(c.assets, a)
	c.index[key{a.Kind, a.Number}] = a.ID
	return a
}

func (c *Catalog) nextNumber(kind Kind, from int) int {
	n := from
	for {
		if _, taken := c.index[key{kind, n}]; !taken {
			return n
		}
		n++
	}
}

// Get returns the asset with the given id.
func (c *Catalog) Get(id ID) (Asset, bool) {
	if id < 0 || int(id) >= len(c.assets) {
		return Asset{}, false
	}
	return c.assets[id], true
}

// Lookup finds an asset by kind and number.
func (c *Catalog) Lookup(kind Kind, number int) (Asset, error) {
	id, ok := c.index[key{kind, number}]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrMediaNotFound, kind.Label(number))
	}
	return c.assets[id], nil
}

// LookupLabel finds an asset by canonical label, e.g. "Table3".
func (c *Catalog) LookupLabel(label string) (Asset, error) {
	kind, number, err := ParseLabel(label)
	if err != nil {
		return Asset{}, err
	}
	return c.Lookup(kind, number)
}

// SetEnabled toggles whether an asset should be rendered downstream.
func (c *Catalog) SetEnabled(id ID, enabled bool) error {
	if id < 0 || int(id) >= len(c.assets) {
		return fmt.Errorf("%w: id %d", ErrMediaNotFound, id)
	}
	c.assets[id].Enabled = enabled
	return nil
}

// SetRef records where an asset's image was saved.
func (c *Catalog) SetRef(id ID, ref string) error {
	if id < 0 || int(id) >= len(c.assets) {
		return fmt.Errorf("%w: id %d", ErrMediaNotFound, id)
	}
	c.assets[id].Ref = ref
	return nil
}

// All returns every asset in registration order.
func (c *Catalog) All() []Asset {
	out := make([]Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

// Len returns the number of assets.
func (c *Catalog) Len() int {
	return len(c.assets)
}
