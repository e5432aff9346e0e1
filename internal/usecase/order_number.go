package usecase

import (
	"crypto/rand"
)

// 注文番号はカウンター越しに読み上げられる短い公開ID。
// 内部IDとは別の空間（数字だけの文字列にはならない）なので、
// /orders/:id のデュアル検索で曖昧にならない。
const (
	orderNumberPrefix   = "CF"
	orderNumberLength   = 10
	orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

type OrderNumberGenerator interface {
	NewOrderNumber() string
}

// RandomOrderNumberGenerator はCF+乱数8桁（base36）。
// 衝突はDBの一意制約で検知して引き直す。
type RandomOrderNumberGenerator struct{}

func (g *RandomOrderNumberGenerator) NewOrderNumber() string {
	b := make([]byte, orderNumberLength-len(orderNumberPrefix))
	if _, err := rand.Read(b); err != nil {
		// crypto/randが読めない環境は想定外
		panic(err)
	}
	out := make([]byte, 0, orderNumberLength)
	out = append(out, orderNumberPrefix...)
	for _, v := range b {
		out = append(out, orderNumberAlphabet[int(v)%len(orderNumberAlphabet)])
	}
	return string(out)
}
