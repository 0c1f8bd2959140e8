package sequence

import "fmt"

// Stats summarizes the sequencing state of a database.
type Stats struct {
	TotalTasks      int `json:"total_tasks" yaml:"total_tasks"`
	LiveTasks       int `json:"live_tasks" yaml:"live_tasks"`
	DeletedTasks    int `json:"deleted_tasks" yaml:"deleted_tasks"`
	SequencedTasks  int `json:"sequenced_tasks" yaml:"sequenced_tasks"`
	UnsequencedLive int `json:"unsequenced_live" yaml:"unsequenced_live"`
	Projects        int `json:"projects" yaml:"projects"`
}

// CollectStats gathers task and sequencing counts.
func CollectStats(q rowQuerier) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM tasks", &stats.TotalTasks},
		{"SELECT COUNT(*) FROM tasks WHERE deleted_at IS NULL", &stats.LiveTasks},
		{"SELECT COUNT(*) FROM tasks WHERE deleted_at IS NOT NULL", &stats.DeletedTasks},
		{"SELECT COUNT(*) FROM tasks WHERE project_sequence IS NOT NULL", &stats.SequencedTasks},
		{"SELECT COUNT(*) FROM tasks WHERE deleted_at IS NULL AND project_sequence IS NULL", &stats.UnsequencedLive},
		{"SELECT COUNT(DISTINCT project_id) FROM tasks WHERE deleted_at IS NULL", &stats.Projects},
	}

	for _, c := range counts {
		if err := q.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to collect stats: %w", err)
		}
	}

	return stats, nil
}
