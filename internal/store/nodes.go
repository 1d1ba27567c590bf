package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"sensorgate/gateway/registry"
)

// NodeRow is one persisted node descriptor (spec §3's NodeDescriptor).
type NodeRow struct {
	ID         int64  `db:"id"`
	PublicID   uint32 `db:"public_id"`
	Name       string `db:"name"`
	RouteType  string `db:"route_type"`
	RouteParam string `db:"route_param"`
}

// ListNodes returns every node row, ordered by public id — the shape the
// registry bootstrap and `gatewayctl list nodes` both need.
func (s *Store) ListNodes() ([]NodeRow, error) {
	sqlQuery, args, err := sq.Select("id", "public_id", "name", "route_type", "route_param").
		From("node").OrderBy("public_id").ToSql()
	if err != nil {
		return nil, err
	}
	var rows []NodeRow
	if err := s.DB.Select(&rows, sqlQuery, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// NodeDescriptors adapts ListNodes to the registry's Build input.
func (s *Store) NodeDescriptors() ([]registry.Descriptor, error) {
	rows, err := s.ListNodes()
	if err != nil {
		return nil, err
	}
	descs := make([]registry.Descriptor, len(rows))
	for i, r := range rows {
		descs[i] = registry.Descriptor{
			ID:         r.ID,
			PublicID:   r.PublicID,
			Name:       r.Name,
			RouteType:  r.RouteType,
			RouteParam: r.RouteParam,
		}
	}
	return descs, nil
}

// AddNode inserts a new node row, returning the assigned database id.
func (s *Store) AddNode(publicID uint32, name, routeType, routeParam string) (int64, error) {
	sqlQuery, args, err := sq.Insert("node").
		Columns("public_id", "name", "route_type", "route_param").
		Values(publicID, name, routeType, routeParam).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := s.DB.Exec(sqlQuery, args...)
	if err != nil {
		return 0, fmt.Errorf("store: add node: %w", err)
	}
	return res.LastInsertId()
}

// NodeByPublicID looks up a node row by its public id.
func (s *Store) NodeByPublicID(publicID uint32) (NodeRow, error) {
	sqlQuery, args, err := sq.Select("id", "public_id", "name", "route_type", "route_param").
		From("node").Where(sq.Eq{"public_id": publicID}).ToSql()
	if err != nil {
		return NodeRow{}, err
	}
	var row NodeRow
	if err := s.DB.Get(&row, sqlQuery, args...); err != nil {
		if err == sql.ErrNoRows {
			return NodeRow{}, fmt.Errorf("store: node %d not found", publicID)
		}
		return NodeRow{}, err
	}
	return row, nil
}
