package services

import "github.com/flowboard/core/internal/domain/entities"

// SeedTasks is the demo board installed when the store cannot be reached.
// Each call returns fresh copies.
func SeedTasks() []entities.Task {
	return []entities.Task{
		{
			ID:          1,
			Title:       "Design the dashboard UI/UX",
			Description: "Create mockups and a clickable prototype",
			Status:      entities.TaskStatusTodo,
			Priority:    entities.PriorityHigh,
			Type:        entities.TaskTypeDesign,
			Points:      5,
			Assignee:    "Somchai",
			OwnerID:     1,
		},
		{
			ID:          2,
			Title:       "Build the authentication API",
			Description: "Issue JWT tokens and add the auth middleware",
			Status:      entities.TaskStatusTodo,
			Priority:    entities.PriorityHigh,
			Type:        entities.TaskTypeTask,
			Points:      8,
			Assignee:    "Somying",
			OwnerID:     1,
		},
		{
			ID:          3,
			Title:       "Fix the mobile layout bug",
			Description: "Make the board responsive on small screens",
			Status:      entities.TaskStatusInProgress,
			Priority:    entities.PriorityMedium,
			Type:        entities.TaskTypeBug,
			Points:      3,
			Assignee:    "Wichai",
			OwnerID:     2,
		},
	}
}
