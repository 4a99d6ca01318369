package supabase

import (
	"errors"
	"fmt"

	"kouji-photo-backend/internal/models"
)

var ErrProjectNotFound = errors.New("project not found")

const projectColumns = "id,construction_name,contractor_name,orderer_name,construction_start_date,construction_end_date"

// GetProject reads contract fields from construction_projects over PostgREST.
func (c *Client) GetProject(projectID string) (*models.ConstructionProject, error) {
	var rows []models.ConstructionProject
	_, err := c.Supabase.From("construction_projects").
		Select(projectColumns, "", false).
		Eq("id", projectID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrProjectNotFound
	}
	return &rows[0], nil
}
