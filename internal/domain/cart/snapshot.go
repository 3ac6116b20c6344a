package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidSnapshot = errors.New("invalid cart snapshot")

// Snapshot is the persisted form of a cart.
type Snapshot struct {
	Items []Line `json:"items"`
}

// DecodeResult carries the valid lines of a snapshot and how many entries were dropped.
type DecodeResult struct {
	Lines   []Line
	Dropped int
}

func EncodeSnapshot(lines []Line) ([]byte, error) {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(Snapshot{Items: lines})
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses {"items":[...]} or the older {"state":{"items":[...]}} envelope.
// Entries that do not decode or fail validation are dropped individually; only an
// undecodable document is an error.
func DecodeSnapshot(data []byte) (DecodeResult, error) {
	var envelope struct {
		Items []json.RawMessage `json:"items"`
		State *struct {
			Items []json.RawMessage `json:"items"`
		} `json:"state"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return DecodeResult{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	raw := envelope.Items
	if raw == nil && envelope.State != nil {
		raw = envelope.State.Items
	}

	result := DecodeResult{Lines: make([]Line, 0, len(raw))}
	seen := make(map[ProductID]struct{}, len(raw))
	for _, item := range raw {
		var line Line
		if err := json.Unmarshal(item, &line); err != nil {
			result.Dropped++
			continue
		}
		line, ok := normalizeStoredLine(line)
		if !ok {
			result.Dropped++
			continue
		}
		if _, dup := seen[line.ProductID]; dup {
			result.Dropped++
			continue
		}
		seen[line.ProductID] = struct{}{}
		result.Lines = append(result.Lines, line)
	}
	return result, nil
}

func normalizeStoredLine(line Line) (Line, bool) {
	line.ProductID = ProductID(strings.TrimSpace(string(line.ProductID)))
	if line.ProductID == "" {
		return Line{}, false
	}
	if math.IsNaN(line.UnitPrice) || math.IsInf(line.UnitPrice, 0) || line.UnitPrice < 0 {
		return Line{}, false
	}
	if line.Quantity < MinQuantity {
		return Line{}, false
	}
	line.Quantity = min(line.Quantity, MaxQuantity)
	return line, true
}
