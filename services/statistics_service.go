package services

import (
	"context"
	"time"

	"github.com/digitalbox/go-digitalbox-server/global"
)

// AnalyticsOutput aggregates the open complaints of the trailing week
type AnalyticsOutput struct {
	ComplaintsLastWeek         map[string]int     `json:"complaints_last_week"`
	ComplaintDomainPercentages map[string]float64 `json:"complaint_domain_percentages"`
}

// StatisticsService derives workload analytics from open complaints
type StatisticsService struct {
	complaintService *ComplaintService
}

func NewStatisticsService(complaintService *ComplaintService) *StatisticsService {
	return &StatisticsService{
		complaintService: complaintService,
	}
}

// Analytics buckets the last week's open complaints by weekday and computes
// the share of each complaint category.
func (ss *StatisticsService) Analytics(ctx context.Context) (*AnalyticsOutput, error) {
	complaints, cErr := ss.complaintService.ListOpenComplaints(ctx)
	if cErr != nil {
		return nil, cErr
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	byWeekday := map[string]int{}
	byCategory := map[string]int{}
	total := 0

	for _, complaint := range complaints {
		createdAt, pErr := time.Parse(time.RFC3339, complaint.CreatedAt)
		if pErr != nil {
			global.Logger.Log("warn", "unparseable complaint timestamp", "complaintId", complaint.ComplaintID, "createdAt", complaint.CreatedAt)
			continue
		}
		if createdAt.Before(weekAgo) {
			continue
		}
		byWeekday[createdAt.Format("Mon")]++
		byCategory[complaint.ComplaintData.Category]++
		total++
	}

	percentages := map[string]float64{}
	for category, count := range byCategory {
		percentages[category] = float64(count) / float64(total)
	}
	return &AnalyticsOutput{
		ComplaintsLastWeek:         byWeekday,
		ComplaintDomainPercentages: percentages,
	}, nil
}
