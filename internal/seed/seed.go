// Package seed provisions a small demo franchise network so a fresh
// install has data to explore. It never runs in production.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	franchisordomain "github.com/franqia/console/internal/franchisor/domain"
	schooldomain "github.com/franqia/console/internal/school/domain"
	subscriptiondomain "github.com/franqia/console/internal/subscription/domain"
	"gorm.io/gorm"
)

// EnsureDemoNetwork seeds demo franchisors, schools, financial snapshots and
// subscriptions. It is a no-op when any franchisor already exists.
func EnsureDemoNetwork(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&franchisordomain.Franchisor{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		period := now.Format("2006-01")

		type schoolSeed struct {
			name     string
			status   schooldomain.Status
			received int64
			open     int64
			overdue  int64
			items    int
			days     int
			plan     string
			subState subscriptiondomain.Status
		}
		networks := []struct {
			name    string
			status  franchisordomain.Status
			schools []schoolSeed
		}{
			{
				name:   "Rede Horizonte",
				status: franchisordomain.StatusActive,
				schools: []schoolSeed{
					{"Horizonte Centro", schooldomain.StatusActive, 1250000, 180000, 64000, 3, 12, "standard-monthly", subscriptiondomain.StatusActive},
					{"Horizonte Norte", schooldomain.StatusActive, 0, 0, 256000, 6, 45, "standard-monthly", subscriptiondomain.StatusActive},
					{"Horizonte Leste", schooldomain.StatusSuspended, 480000, 0, 0, 0, 0, "basic-monthly", subscriptiondomain.StatusInactive},
				},
			},
			{
				name:   "Rede Aurora",
				status: franchisordomain.StatusActive,
				schools: []schoolSeed{
					{"Aurora Sul", schooldomain.StatusActive, 890000, 120000, 0, 0, 0, "premium-yearly", subscriptiondomain.StatusActive},
					{"Aurora Oeste", schooldomain.StatusActive, 310000, 0, 98000, 2, 30, "standard-monthly", subscriptiondomain.StatusPending},
				},
			},
			{
				name:    "Rede Primavera",
				status:  franchisordomain.StatusPending,
				schools: nil,
			},
		}

		for _, network := range networks {
			franchisor := franchisordomain.Franchisor{
				ID:        node.Generate(),
				Name:      network.name,
				Status:    network.status,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&franchisor).Error; err != nil {
				return err
			}

			for _, item := range network.schools {
				school := schooldomain.School{
					ID:           node.Generate(),
					FranchisorID: franchisor.ID,
					Name:         item.name,
					Status:       item.status,
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if err := tx.Create(&school).Error; err != nil {
					return err
				}

				if err := tx.Create(&schooldomain.FinancialSnapshot{
					ID:                node.Generate(),
					SchoolID:          school.ID,
					Period:            period,
					ReceivedCents:     item.received,
					OpenCents:         item.open,
					OverdueCents:      item.overdue,
					OverdueItemsCount: item.items,
					MaxOverdueDays:    item.days,
					UpdatedAt:         now,
				}).Error; err != nil {
					return err
				}

				if err := tx.Create(&subscriptiondomain.Subscription{
					ID:        node.Generate(),
					SchoolID:  school.ID,
					PlanCode:  item.plan,
					Status:    item.subState,
					StartDate: now.AddDate(0, -6, 0),
					CreatedAt: now,
					UpdatedAt: now,
				}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
