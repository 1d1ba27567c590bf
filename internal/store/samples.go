package store

import (
	sq "github.com/Masterminds/squirrel"
)

// SampleRow is one persisted measurement (spec §3's Sample).
type SampleRow struct {
	SensorID  int64   `db:"sensor_id"`
	Kind      string  `db:"kind"`
	Value     float32 `db:"value"`
	UTCMicros int64   `db:"utc_micros"`
}

// InsertSample writes one measurement, produced by the fetcher (D1).
func (s *Store) InsertSample(sensorRowID int64, kind string, value float32, utcMicros int64) error {
	sqlQuery, args, err := sq.Insert("sample").
		Columns("sensor_id", "kind", "value", "utc_micros").
		Values(sensorRowID, kind, value, utcMicros).ToSql()
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(sqlQuery, args...)
	return err
}

// SamplesInRange reads persisted samples for sensorRowID between from and
// to (inclusive, UTC microseconds), for the HTTP history endpoint (A4).
func (s *Store) SamplesInRange(sensorRowID int64, from, to int64) ([]SampleRow, error) {
	sqlQuery, args, err := sq.Select("sensor_id", "kind", "value", "utc_micros").
		From("sample").
		Where(sq.Eq{"sensor_id": sensorRowID}).
		Where(sq.GtOrEq{"utc_micros": from}).
		Where(sq.LtOrEq{"utc_micros": to}).
		OrderBy("utc_micros").ToSql()
	if err != nil {
		return nil, err
	}
	var rows []SampleRow
	if err := s.DB.Select(&rows, sqlQuery, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
