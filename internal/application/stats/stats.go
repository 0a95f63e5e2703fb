// Package stats computes the admin dashboard figures.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
)

const (
	seriesDays  = 7
	topProducts = 5
)

// counted are the statuses of orders that represent real sales.
var counted = []domorder.Status{
	domorder.StatusPending,
	domorder.StatusReady,
	domorder.StatusOnWay,
	domorder.StatusDelivered,
}

type DayRevenue struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
}

type ProductSales struct {
	Name    string `json:"name"`
	Sold    int    `json:"sold"`
	Revenue int64  `json:"revenue"`
}

type Dashboard struct {
	TodayOrders    int            `json:"today_orders"`
	TodayRevenue   int64          `json:"today_revenue"`
	DeliveredToday int            `json:"delivered_today"`
	PendingToday   int            `json:"pending_today"`
	Weekly         []DayRevenue   `json:"weekly"`
	TopProducts    []ProductSales `json:"top_products"`
}

type Service struct {
	repo     domorder.Repository
	location *time.Location
}

func NewService(repo domorder.Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, location: loc}
}

// Dashboard aggregates sales as of now, bucketing days in the café's timezone.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	orders, err := s.repo.List(ctx, domorder.Filter{Statuses: counted})
	if err != nil {
		return nil, fmt.Errorf("stats: list orders: %w", err)
	}

	local := now.In(s.location)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	first := today.AddDate(0, 0, -(seriesDays - 1))

	d := &Dashboard{Weekly: make([]DayRevenue, seriesDays)}
	for i := range d.Weekly {
		d.Weekly[i].Date = first.AddDate(0, 0, i).Format("2006-01-02")
	}

	sales := map[string]*ProductSales{}
	for _, o := range orders {
		created := o.CreatedAt.In(s.location)
		day := time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, s.location)

		if day.Equal(today) {
			d.TodayOrders++
			d.TodayRevenue += o.TotalPrice
			switch o.Status {
			case domorder.StatusDelivered:
				d.DeliveredToday++
			case domorder.StatusPending:
				d.PendingToday++
			}
		}
		if !day.Before(first) && !day.After(today) {
			idx := int(day.Sub(first).Hours()/24 + 0.5)
			if idx >= 0 && idx < seriesDays {
				d.Weekly[idx].Revenue += o.TotalPrice
			}
		}

		ps, ok := sales[o.ProductName]
		if !ok {
			ps = &ProductSales{Name: o.ProductName}
			sales[o.ProductName] = ps
		}
		ps.Sold += o.Quantity
		ps.Revenue += o.TotalPrice
	}

	d.TopProducts = make([]ProductSales, 0, len(sales))
	for _, ps := range sales {
		d.TopProducts = append(d.TopProducts, *ps)
	}
	sort.Slice(d.TopProducts, func(i, j int) bool {
		if d.TopProducts[i].Sold != d.TopProducts[j].Sold {
			return d.TopProducts[i].Sold > d.TopProducts[j].Sold
		}
		return d.TopProducts[i].Name < d.TopProducts[j].Name
	})
	if len(d.TopProducts) > topProducts {
		d.TopProducts = d.TopProducts[:topProducts]
	}
	return d, nil
}
