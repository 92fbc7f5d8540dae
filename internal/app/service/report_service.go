package service

import (
	"time"

	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/pkg/images"
)

// SalesReport is the admin revenue report for a period.
type SalesReport struct {
	Period       string           `json:"period"`
	Rows         []SalesReportRow `json:"rows"`
	TotalRevenue int64            `json:"total_revenue"`
}

// SalesReportRow is one product's aggregate with its display image resolved.
type SalesReportRow struct {
	repository.SalesRow
	SafeImage string `json:"safe_image"`
}

type ReportService interface {
	Sales(period string) (*SalesReport, error)
}

type reportService struct {
	orderRepo repository.OrderRepository
	resolver  *images.Resolver
}

func NewReportService(orderRepo repository.OrderRepository, resolver *images.Resolver) ReportService {
	return &reportService{
		orderRepo: orderRepo,
		resolver:  resolver,
	}
}

// Sales aggregates units sold and revenue per product for the last day, week
// or month (the default). Cancelled orders are excluded.
func (s *reportService) Sales(period string) (*SalesReport, error) {
	now := time.Now()
	var since time.Time
	switch period {
	case "day":
		since = now.AddDate(0, 0, -1)
	case "week":
		since = now.AddDate(0, 0, -7)
	default:
		period = "month"
		since = now.AddDate(0, 0, -30)
	}

	rows, err := s.orderRepo.SalesSince(since, 50)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{Period: period, Rows: make([]SalesReportRow, len(rows))}
	for i, row := range rows {
		report.Rows[i] = SalesReportRow{
			SalesRow:  row,
			SafeImage: s.resolver.Resolve(row.Image, row.Title),
		}
		report.TotalRevenue += row.Revenue
	}
	return report, nil
}
