// Package httpapi implements the gateway's HTTP surface (SPEC_FULL A4):
// live/historical measurement queries and a structure inventory endpoint,
// routed with gorilla/mux. Shaped after the teacher pack's
// ClusterCockpit-cc-backend api/rest.go MountRoutes pattern.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"sensorgate/gateway/gwerr"
	"sensorgate/gateway/registry"
	"sensorgate/gateway/measure"
	"sensorgate/internal/store"
)

// API wires the registry (for live queries) and the store (for historical
// queries and the structure inventory) into HTTP handlers.
type API struct {
	Registry *registry.Registry
	Store    *store.Store
	Log      *slog.Logger
}

// MountRoutes registers every path spec.md §6 names under r.
func (a *API) MountRoutes(r *mux.Router) {
	r.HandleFunc("/structure", a.getStructure).Methods(http.MethodGet)
	r.HandleFunc("/{node}/{kind}/{ids}", a.getMeasurements).Methods(http.MethodGet)
}

// measurementResult is one entry of the live query response.
type measurementResult struct {
	SensorID uint32  `json:"sensor_id"`
	Value    float32 `json:"value,omitempty"`
	Error    string  `json:"error,omitempty"`
}

func (a *API) getMeasurements(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	nodePublic, err := strconv.ParseUint(vars["node"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad node id")
		return
	}
	kind, ok := measure.ParseKind(vars["kind"])
	if !ok {
		writeError(w, http.StatusBadRequest, "bad measurement kind")
		return
	}
	ids, err := ParseSensorIDRange(vars["ids"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	if from := q.Get("from"); from != "" {
		a.getHistorical(w, uint32(nodePublic), kind, ids, from, q.Get("to"))
		return
	}
	a.getLive(w, r.Context(), uint32(nodePublic), kind, ids)
}

func (a *API) getLive(w http.ResponseWriter, ctx context.Context, nodePublic uint32, kind measure.Kind, ids []uint32) {
	node, err := a.Registry.GetNode(nodePublic)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	results := make([]measurementResult, 0, len(ids))
	for _, id := range ids {
		v, err := node.Measure(ctx, kind, id)
		if err != nil {
			results = append(results, measurementResult{SensorID: id, Error: gwerr.Of(err).Error()})
			continue
		}
		results = append(results, measurementResult{SensorID: id, Value: v})
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *API) getHistorical(w http.ResponseWriter, nodePublic uint32, kind measure.Kind, ids []uint32, fromStr, toStr string) {
	from, err := parseMicros(fromStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad from timestamp")
		return
	}
	to := time.Now().UnixMicro()
	if toStr != "" {
		to, err = parseMicros(toStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad to timestamp")
			return
		}
	}

	nodeRow, err := a.Store.NodeByPublicID(nodePublic)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown node")
		return
	}

	type point struct {
		SensorID  uint32  `json:"sensor_id"`
		Value     float32 `json:"value"`
		UTCMicros int64   `json:"utc_micros"`
	}
	resp := make(map[uint32][]point, len(ids))
	for _, id := range ids {
		rowID, err := a.Store.SensorRowID(nodeRow.ID, kind.String(), id)
		if err != nil {
			continue
		}
		samples, err := a.Store.SamplesInRange(rowID, from, to)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "query failed")
			return
		}
		pts := make([]point, len(samples))
		for i, s := range samples {
			pts[i] = point{SensorID: id, Value: s.Value, UTCMicros: s.UTCMicros}
		}
		resp[id] = pts
	}
	writeJSON(w, http.StatusOK, resp)
}

// getStructure implements `GET /structure`: `{node_id: {kind: [sensor_id,...]}}`.
func (a *API) getStructure(w http.ResponseWriter, r *http.Request) {
	sensors, err := a.Store.AllSensors()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	structure := make(map[string]map[string][]uint32)
	for _, s := range sensors {
		nodeKey := strconv.FormatUint(uint64(s.NodePublicID), 10)
		if structure[nodeKey] == nil {
			structure[nodeKey] = make(map[string][]uint32)
		}
		structure[nodeKey][s.SensorType] = append(structure[nodeKey][s.SensorType], s.PublicID)
	}
	writeJSON(w, http.StatusOK, structure)
}

func parseMicros(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// statusFor translates the core error taxonomy to an HTTP status (spec's
// A4 error translation table). TransportFailure/ProtocolMismatch are
// folded into 502; ConfigurationError never reaches the HTTP surface
// since it is fatal at startup.
func statusFor(err error) int {
	switch gwerr.Of(err) {
	case gwerr.UnknownNode:
		return http.StatusNotFound
	case gwerr.InvalidSensorId:
		return http.StatusBadRequest
	case gwerr.UnsupportedMeasurement:
		return http.StatusUnprocessableEntity
	case gwerr.TransportFailure, gwerr.ProtocolMismatch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
