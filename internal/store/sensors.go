package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// SensorRow is one persisted sensor descriptor (spec §3's SensorDescriptor).
type SensorRow struct {
	ID         int64  `db:"id"`
	PublicID   uint32 `db:"public_id"`
	NodeID     int64  `db:"node_id"`
	SensorType string `db:"sensor_type"`
	Name       string `db:"name"`
}

// ListSensorsForNode returns every sensor row bound to the node with
// database id nodeID, for `gatewayctl list sensors`.
func (s *Store) ListSensorsForNode(nodeID int64) ([]SensorRow, error) {
	sqlQuery, args, err := sq.Select("id", "public_id", "node_id", "sensor_type", "name").
		From("sensor").Where(sq.Eq{"node_id": nodeID}).OrderBy("public_id").ToSql()
	if err != nil {
		return nil, err
	}
	var rows []SensorRow
	if err := s.DB.Select(&rows, sqlQuery, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// AllSensors returns every sensor row joined to its node's public id, for
// the fetcher's sweep and the structure endpoint.
type SensorWithNode struct {
	SensorRow
	NodePublicID uint32 `db:"node_public_id"`
}

func (s *Store) AllSensors() ([]SensorWithNode, error) {
	sqlQuery, args, err := sq.Select(
		"sensor.id", "sensor.public_id", "sensor.node_id", "sensor.sensor_type", "sensor.name",
		"node.public_id AS node_public_id",
	).From("sensor").Join("node ON node.id = sensor.node_id").ToSql()
	if err != nil {
		return nil, err
	}
	var rows []SensorWithNode
	if err := s.DB.Select(&rows, sqlQuery, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// AddSensor inserts a new sensor row bound to nodeID (the node table's
// database id, not its public id).
func (s *Store) AddSensor(publicID uint32, nodeID int64, sensorType, name string) (int64, error) {
	sqlQuery, args, err := sq.Insert("sensor").
		Columns("public_id", "node_id", "sensor_type", "name").
		Values(publicID, nodeID, sensorType, name).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := s.DB.Exec(sqlQuery, args...)
	if err != nil {
		return 0, fmt.Errorf("store: add sensor: %w", err)
	}
	return res.LastInsertId()
}

// SensorRowID resolves (nodeID, sensorType, publicSensorID) to the
// sensor table's database id, for the HTTP history endpoint (reading
// samples back).
func (s *Store) SensorRowID(nodeID int64, sensorType string, publicSensorID uint32) (int64, error) {
	sqlQuery, args, err := sq.Select("id").From("sensor").
		Where(sq.Eq{"node_id": nodeID, "sensor_type": sensorType, "public_id": publicSensorID}).ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := s.DB.Get(&id, sqlQuery, args...); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("store: no sensor row for node %d kind %s id %d", nodeID, sensorType, publicSensorID)
		}
		return 0, err
	}
	return id, nil
}
