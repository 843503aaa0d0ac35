package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/domain"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads the seed catalog from the activities tables. It never writes:
// roster changes made at runtime stay in memory.
type PostgresSource struct {
	db querier
}

// NewPostgresSource constructs a PostgresSource over a pool or connection.
func NewPostgresSource(db querier) *PostgresSource {
	return &PostgresSource{db: db}
}

// Load returns the catalog ordered by activity name, rosters in signup order.
func (s *PostgresSource) Load(ctx context.Context) ([]domain.Activity, error) {
	const activitiesQuery = `SELECT name, description, schedule, max_participants
        FROM activities
        ORDER BY name`

	rows, err := s.db.Query(ctx, activitiesQuery)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	activities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Activity, error) {
		var a domain.Activity
		err := row.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants)
		a.Participants = []string{}
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan activities: %w", err)
	}

	index := make(map[string]int, len(activities))
	for i, a := range activities {
		index[a.Name] = i
	}

	const participantsQuery = `SELECT activity_name, email
        FROM activity_participants
        ORDER BY activity_name, position`

	rows, err = s.db.Query(ctx, participantsQuery)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var activityName, email string
		if err := rows.Scan(&activityName, &email); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		i, ok := index[activityName]
		if !ok {
			return nil, fmt.Errorf("participant %s references unknown activity %q", email, activityName)
		}
		activities[i].Participants = append(activities[i].Participants, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}

	if err := domain.ValidateCatalog(activities); err != nil {
		return nil, err
	}
	return activities, nil
}
