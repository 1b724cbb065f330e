package analytics

import (
	"context"
	"time"

	"chitfund-backend/internal/application/members"
	"chitfund-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB      *gorm.DB
	Members *members.Service
	// QueryTimeout bounds each persistence round-trip; zero means no bound.
	QueryTimeout time.Duration
}

func (s *Service) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.QueryTimeout)
}

// TopInvestor is the member carrying the largest payable total across active
// listings, with their aggregate unit count.
type TopInvestor struct {
	Name            string  `json:"name"`
	Phone           int64   `json:"phone"`
	TotalInvestment float64 `json:"totalInvestment"`
	TotalChits      int     `json:"totalChits"`
}

// DashboardStats mirrors the figures the dashboard renders: chit counts, pool
// values, and the top investor, all derived fresh from current data.
type DashboardStats struct {
	TotalChitsRun       int          `json:"totalChitsRun"`
	ActiveChits         int          `json:"activeChits"`
	CurrentValue        float64      `json:"currentValue"`
	TotalPotentialValue float64      `json:"totalPotentialValue"`
	AverageBidAmount    float64      `json:"averageBidAmount"`
	ActiveMembersCount  int          `json:"activeMembersCount"`
	TotalInvestment     float64      `json:"totalInvestment"`
	TopInvestor         *TopInvestor `json:"topInvestor"`
}

// Dashboard computes the overview stats for one user. Current value counts a
// listing at its settled bid, falling back to full price while no auction has
// run yet.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	now := time.Now()
	queryCtx, cancel := s.boundCtx(ctx)
	defer cancel()

	var active []domain.Listing
	if err := s.DB.WithContext(queryCtx).
		Where("user_id = ? AND end_date > ?", userID, now).
		Find(&active).Error; err != nil {
		return nil, err
	}

	var archivedCount int64
	if err := s.DB.WithContext(queryCtx).Model(&domain.Listing{}).
		Where("user_id = ? AND end_date <= ?", userID, now).
		Count(&archivedCount).Error; err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalChitsRun: len(active) + int(archivedCount),
		ActiveChits:   len(active),
	}

	bidSum := 0.0
	for _, l := range active {
		if l.CurrentBid > 0 {
			stats.CurrentValue += l.CurrentBid
		} else {
			stats.CurrentValue += l.Price
		}
		stats.TotalPotentialValue += l.Price
		bidSum += l.CurrentBid
	}
	if len(active) > 0 {
		stats.AverageBidAmount = bidSum / float64(len(active))
	}

	ledgers, err := s.Members.MemberLedgers(ctx, userID)
	if err == members.ErrNoMembers {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}

	stats.ActiveMembersCount = len(ledgers)
	maxInvestment := -1.0
	for _, ml := range ledgers {
		stats.TotalInvestment += ml.TotalBidPrice
		if ml.TotalBidPrice > maxInvestment {
			maxInvestment = ml.TotalBidPrice
			chits := 0
			for _, e := range ml.Findlisting {
				chits += e.Count
			}
			stats.TopInvestor = &TopInvestor{
				Name:            ml.Member.Name,
				Phone:           ml.Member.Phone,
				TotalInvestment: ml.TotalBidPrice,
				TotalChits:      chits,
			}
		}
	}
	return stats, nil
}
