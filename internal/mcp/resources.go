// ABOUTME: MCP resource implementations for the journey tracker.
// ABOUTME: Provides journey://dashboard, journey://today, and journey://recent resources.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/journey/internal/apperr"
	"github.com/harperreed/journey/internal/models"
	"github.com/harperreed/journey/internal/storage"
)

const (
	dashboardURI = "journey://dashboard"
	todayURI     = "journey://today"
	recentURI    = "journey://recent"

	recentLimit = 5
)

func (s *Server) registerResources() {
	// journey://dashboard - the same summary as the get_dashboard tool
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         dashboardURI,
		Name:        "Journey Dashboard",
		Description: "Weight trend, today's nutrition, gym streak, habit score, active goals and new PRs",
		MIMEType:    "application/json",
	}, s.handleDashboardResource)

	// journey://today - everything logged today
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today's Journey",
		Description: "Check-in, meals, gym sessions and habits logged today",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// journey://recent - latest entries of each kind
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Journey Entries",
		Description: "Last few check-ins, meals, gym sessions and PRs",
		MIMEType:    "application/json",
	}, s.handleRecentResource)
}

// Resource handlers

func (s *Server) handleDashboardResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if err := s.state.RefreshAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh dashboard: %w", err)
	}
	return jsonResource(dashboardURI, s.state.Dashboard())
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	today := models.Day(s.svc.Now())
	window := storage.Between(today, today.AddDate(0, 0, 1))

	checkIns, err := s.repo.ListCheckIns(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}

	meals, err := s.repo.ListMeals(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	sessions, err := s.repo.ListGymSessions(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list gym sessions: %w", err)
	}

	habit, err := s.repo.GetHabitByDate(ctx, today)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}

	totals, err := s.svc.DailyTotals(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to compute daily totals: %w", err)
	}

	result := map[string]interface{}{
		"date":         today.Format(models.DayLayout),
		"checkins":     checkIns,
		"meals":        meals,
		"gym_sessions": sessions,
		"habit":        habit,
		"totals":       totals,
		"counts": map[string]int{
			"checkins":     len(checkIns),
			"meals":        len(meals),
			"gym_sessions": len(sessions),
		},
	}

	return jsonResource(todayURI, result)
}

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	q := storage.Query{Limit: recentLimit}

	checkIns, err := s.repo.ListCheckIns(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}

	meals, err := s.repo.ListMeals(ctx, storage.Query{Limit: 2 * recentLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	sessions, err := s.repo.ListGymSessions(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list gym sessions: %w", err)
	}

	prs, err := s.repo.ListPRs(ctx, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to list PRs: %w", err)
	}
	if len(prs) > recentLimit {
		prs = prs[:recentLimit]
	}

	result := map[string]interface{}{
		"checkins":     checkIns,
		"meals":        meals,
		"gym_sessions": sessions,
		"prs":          prs,
	}

	return jsonResource(recentURI, result)
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
