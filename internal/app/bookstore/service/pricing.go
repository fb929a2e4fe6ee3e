package service

import (
	"knjizara/internal/app/bookstore/config"
	"knjizara/internal/app/bookstore/entity"
)

// PricedItem - позиция с уже зафиксированной ценой за единицу
type PricedItem struct {
	UnitPrice float64
	Quantity  int
}

// PricingCalculator считает стоимость заказа по политике доставки
// Конструируется один раз из конфигурации и передается всем вызывающим:
// предпросмотр корзины, шаг оформления и создание заказа обязаны
// давать побитово одинаковые суммы
type PricingCalculator struct {
	shipping config.ShippingConfig
}

// NewPricingCalculator создает калькулятор с политикой доставки
func NewPricingCalculator(shipping config.ShippingConfig) *PricingCalculator {
	return &PricingCalculator{shipping: shipping}
}

// ComputeTotals считает subtotal, стоимость доставки и итог
// Каждое слагаемое subtotal вычисляется отдельно (цена * количество),
// доставка бесплатна от порога включительно.
// Пустой список позиций - ошибка валидации
func (p *PricingCalculator) ComputeTotals(items []PricedItem) (entity.OrderTotals, error) {
	if len(items) == 0 {
		return entity.OrderTotals{}, ErrEmptyOrder
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	shippingCost := p.shipping.StandardShippingCost
	if subtotal >= p.shipping.FreeShippingThreshold {
		shippingCost = 0
	}

	return entity.OrderTotals{
		Subtotal:     subtotal,
		ShippingCost: shippingCost,
		Total:        subtotal + shippingCost,
	}, nil
}
