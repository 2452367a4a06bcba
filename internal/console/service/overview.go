package service

import (
	"context"

	"github.com/xela07ax/authconsole/internal/domain"
	"github.com/xela07ax/authconsole/internal/upstream"
)

type OverviewService struct {
	gw *Gateway
}

func NewOverviewService(gw *Gateway) *OverviewService {
	return &OverviewService{gw: gw}
}

// Get читает агрегаты заново на каждый вызов, без кэша.
func (s *OverviewService) Get(ctx context.Context) (*domain.Overview, error) {
	var o domain.Overview
	if err := s.gw.call(ctx, upstream.OverviewGetAll, nil, "", &o); err != nil {
		return nil, err
	}
	return &o, nil
}
