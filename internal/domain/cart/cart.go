package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/zozz909/cafe-drive/internal/domain/model"
)

// Line はカートの1行。同じ商品は必ず1行にまとめる。
type Line struct {
	Product  model.Product `json:"product"`
	Quantity int64         `json:"quantity"`
	Notes    string        `json:"notes,omitempty"`
}

// Cart は1セッション分のカート。追加順を保持する。
// サーバー側には保存しない。チェックアウト時にSnapshotだけ注文へ渡す。
type Cart struct {
	Lines []Line `json:"lines"`
}

func New() *Cart {
	return &Cart{}
}

// AddItem は同じ商品なら数量+1、無ければ末尾に追加する。
func (c *Cart) AddItem(p model.Product) {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == p.ID {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, Line{Product: p, Quantity: 1})
}

// UpdateQuantity は数量を上書きする（加算ではない）。0以下なら行を消す。
// 商品が無いときは何もしない。
func (c *Cart) UpdateQuantity(productID int64, quantity int64) {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			c.Lines[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) RemoveItem(productID int64) {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

// TotalPrice は Σ(数量×単価)。decimalで計算して2桁に丸める。
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Product.Price.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total.Round(2)
}

func (c *Cart) TotalItems() int64 {
	var n int64
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// ItemSnapshot はチェックアウトで注文へ渡す明細。価格はカート追加時点で凍結する。
type ItemSnapshot struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
	Notes       string          `json:"notes,omitempty"`
}

func (c *Cart) Snapshot() []ItemSnapshot {
	items := make([]ItemSnapshot, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, ItemSnapshot{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.Product.Price,
			Notes:       l.Notes,
		})
	}
	return items
}

// Save / Load はリロード跨ぎ用（localStorage等に置く想定）。
func (c *Cart) Save() ([]byte, error) {
	return json.Marshal(c)
}

func Load(data []byte) (*Cart, error) {
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
