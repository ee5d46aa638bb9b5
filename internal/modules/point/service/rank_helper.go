package point

import (
	"math"

	"needu.com/community/pkg/dto"
)

// Rank thresholds on the lifetime total. Ranks never demote on their own;
// only a revoked grant can move a user back down.
const (
	PointsLegend      = 20000
	PointsExpert      = 8000
	PointsMentor      = 3000
	PointsContributor = 600
	PointsMember      = 100
)

// Weekly activity thresholds on points earned in the last 7 days.
const (
	WeeklyOnFire   = 100
	WeeklyTrending = 50
	WeeklyActive   = 20
)

func GetRankStatus(allTimePoints int) dto.RankStatus {
	return GetRankStatusWithWeekly(allTimePoints, 0)
}

func GetRankStatusWithWeekly(allTimePoints, weeklyPoints int) dto.RankStatus {
	status := dto.RankStatus{
		CurrentPoints: allTimePoints,
		WeeklyPoints:  weeklyPoints,
	}

	progress := func(target int) float64 {
		return float64(allTimePoints) / float64(target) * 100
	}

	switch {
	case allTimePoints >= PointsLegend:
		status.RankName = "Legend"
		status.NextRank = "Max Level"
		status.TargetPoints = PointsLegend
		status.Progress = 100
	case allTimePoints >= PointsExpert:
		status.RankName = "Expert"
		status.NextRank = "Legend"
		status.TargetPoints = PointsLegend
		status.Progress = progress(PointsLegend)
	case allTimePoints >= PointsMentor:
		status.RankName = "Mentor"
		status.NextRank = "Expert"
		status.TargetPoints = PointsExpert
		status.Progress = progress(PointsExpert)
	case allTimePoints >= PointsContributor:
		status.RankName = "Contributor"
		status.NextRank = "Mentor"
		status.TargetPoints = PointsMentor
		status.Progress = progress(PointsMentor)
	case allTimePoints >= PointsMember:
		status.RankName = "Member"
		status.NextRank = "Contributor"
		status.TargetPoints = PointsContributor
		status.Progress = progress(PointsContributor)
	default:
		status.RankName = "Newcomer"
		status.NextRank = "Member"
		status.TargetPoints = PointsMember
		if allTimePoints > 0 {
			status.Progress = progress(PointsMember)
		}
	}

	switch {
	case weeklyPoints >= WeeklyOnFire:
		status.WeeklyLabel = "On Fire"
	case weeklyPoints >= WeeklyTrending:
		status.WeeklyLabel = "Trending"
	case weeklyPoints >= WeeklyActive:
		status.WeeklyLabel = "Active"
	}

	status.Progress = math.Round(status.Progress*100) / 100
	return status
}
