package service

import (
	"auto_trader/internal/helper"
	"auto_trader/internal/models"

	"github.com/pkg/errors"
)

// ComputePrice превращает котировку + политику + сторону в цену ордера.
// Чистая функция, без I/O; одинаковые входы — одинаковый результат.
// Клампов нет: неположительный base+offset отдаём как есть, валидация
// на стороне диспетчера.
func ComputePrice(q models.Quote, policy models.PricePolicy, side models.Side) (models.OrderPrice, error) {
	if side != models.SideBuy && side != models.SideSell {
		return models.OrderPrice{}, errors.Wrapf(models.ErrUnknownSide, "%q", side)
	}

	if policy.Mode == models.PriceModeMarket {
		// цена не прикладывается, ордер уходит рыночным
		return models.OrderPrice{Method: models.OrderMethodMarket}, nil
	}

	var base int64
	switch policy.Mode {
	case models.PriceModeBestAsk:
		base = q.Ask
	case models.PriceModeBestBid:
		base = q.Bid
	case models.PriceModeMid:
		base = q.Last
	default:
		// default и нераспознанные режимы: ask на покупку, bid на продажу —
		// цена немедленного исполнения
		if side == models.SideBuy {
			base = q.Ask
		} else {
			base = q.Bid
		}
	}

	return models.OrderPrice{
		Method: models.OrderMethodLimit,
		Price:  helper.RoundPrice(base, policy.Offset),
	}, nil
}
