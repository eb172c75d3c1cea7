package cart

// MaxLineQty caps a single cart line.
const MaxLineQty = 99

// Item is one cart line: the quantity plus a snapshot of the product taken
// when the line was first added. The snapshot is what the customer saw and
// is binding at checkout; live product edits do not touch it.
type Item struct {
	ProductID uint    `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Qty       int     `json:"qty"`
}

// Cart is the session-held set of intended purchases, insertion-ordered.
type Cart struct {
	Items []Item `json:"items"`
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) find(productID uint) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Qty returns the quantity currently held for the product, zero if absent.
func (c *Cart) Qty(productID uint) int {
	if c == nil {
		return 0
	}
	if i := c.find(productID); i >= 0 {
		return c.Items[i].Qty
	}
	return 0
}

// Remove deletes the product's line. Removing an absent line is a no-op,
// not an error.
func (c *Cart) Remove(productID uint) {
	if i := c.find(productID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// Clear empties the cart in place.
func (c *Cart) Clear() {
	c.Items = nil
}

type SummaryLine struct {
	ProductID uint    `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Qty       int     `json:"qty"`
	Subtotal  float64 `json:"subtotal"`
}

type Summary struct {
	Items       []SummaryLine `json:"items"`
	TotalAmount float64       `json:"total_amount"`
	TotalItems  int           `json:"total_items"`
	IsEmpty     bool          `json:"is_empty"`
}

// Summarize is a pure projection of the cart: per-line subtotals plus
// aggregate totals. It never mutates the cart.
func (c *Cart) Summarize() Summary {
	s := Summary{Items: []SummaryLine{}}
	if c == nil {
		s.IsEmpty = true
		return s
	}
	for _, it := range c.Items {
		line := SummaryLine{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price,
			Image:     it.Image,
			Qty:       it.Qty,
			Subtotal:  it.Price * float64(it.Qty),
		}
		s.Items = append(s.Items, line)
		s.TotalAmount += line.Subtotal
		s.TotalItems += it.Qty
	}
	s.IsEmpty = len(s.Items) == 0
	return s
}
