package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/carebridge/carebridge-backend/internal/platform/logger"
	"github.com/carebridge/carebridge-backend/internal/platform/neo4jdb"
)

// Service executes parameterized Cypher against the medical record
// graph and returns rows as opaque key->value maps. It is read-mostly:
// the orchestration pipeline never writes through it.
type Service struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewService(client *neo4jdb.Client, log *logger.Logger) (*Service, error) {
	if client == nil || client.Driver == nil {
		return nil, fmt.Errorf("graph: neo4j client required")
	}
	if log == nil {
		return nil, fmt.Errorf("graph: logger required")
	}
	return &Service{
		client: client,
		log:    log.With("service", "GraphService"),
	}, nil
}

func (s *Service) RunRead(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	session := s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.client.Database,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			rows = append(rows, rec.AsMap())
		}
		return rows, nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph read: %w", err)
	}
	return out.([]map[string]any), nil
}

func (s *Service) RunWrite(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	session := s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.client.Database,
	})
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			rows = append(rows, rec.AsMap())
		}
		return rows, nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph write: %w", err)
	}
	return out.([]map[string]any), nil
}

// EnsureSchema installs uniqueness constraints for the node labels the
// pipeline reads. Best-effort: failures are logged and skipped so a
// restricted database user does not prevent startup.
func (s *Service) EnsureSchema(ctx context.Context) {
	stmts := []string{
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
		`CREATE CONSTRAINT health_record_id_unique IF NOT EXISTS FOR (hr:HealthRecord) REQUIRE hr.id IS UNIQUE`,
		`CREATE CONSTRAINT file_id_unique IF NOT EXISTS FOR (f:File) REQUIRE f.id IS UNIQUE`,
		`CREATE CONSTRAINT medication_id_unique IF NOT EXISTS FOR (m:Medication) REQUIRE m.id IS UNIQUE`,
	}
	session := s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.client.Database,
	})
	defer session.Close(ctx)

	for _, q := range stmts {
		if res, err := session.Run(ctx, q, nil); err != nil {
			s.log.Warn("neo4j schema init failed (continuing)", "error", err)
		} else {
			_, _ = res.Consume(ctx)
		}
	}
}
