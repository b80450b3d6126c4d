package objectmap

import (
	"encoding/json"
	"fmt"

	"github.com/wingrune/objectmap/geometry"
)

// FieldWarning reports a tolerated field conversion failure during
// serialization or loading. The affected record is still produced, just
// without the field.
type FieldWarning struct {
	Record int
	Field  string
	Err    error
}

func (w FieldWarning) String() string {
	return fmt.Sprintf("record %d: field %q: %v", w.Record, w.Field, w.Err)
}

// StoredObject is the serialized form of one record: a plain mapping free
// of geometry handles and other runtime-only types. The point cloud and
// bound survive as point, corner and color arrays under the wire keys
// pcd_np, bbox_np and pcd_color_np.
//
// JSON encoding flattens Extra into the top-level object; canonical keys
// always win over colliding Extra keys. On decode, unknown keys land in
// Extra (numbers arrive as float64, per encoding/json).
type StoredObject struct {
	Descriptor  []float64
	IDs         []uint32
	ClassVotes  []int
	InstColor   *geometry.Color
	Points      [][]float64
	Corners     [][]float64
	PointColors [][]float64
	Extra       map[string]any
}

// canonicalWireKeys are the keys managed by the typed fields. They are
// stripped from Extra on encode so a degraded field stays omitted.
var canonicalWireKeys = []string{
	FieldDescriptor,
	FieldID,
	FieldClassID,
	FieldInstColor,
	WireKeyPoints,
	WireKeyCorners,
	WireKeyPointColors,
}

// MarshalJSON implements json.Marshaler.
func (o StoredObject) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(o.Extra)+len(canonicalWireKeys))
	for k, v := range o.Extra {
		doc[k] = v
	}
	for _, k := range canonicalWireKeys {
		delete(doc, k)
	}

	if o.Descriptor != nil {
		doc[FieldDescriptor] = o.Descriptor
	}
	if o.IDs != nil {
		doc[FieldID] = o.IDs
	}
	if o.ClassVotes != nil {
		doc[FieldClassID] = o.ClassVotes
	}
	if o.InstColor != nil {
		doc[FieldInstColor] = o.InstColor
	}
	doc[WireKeyPoints] = emptyIfNil(o.Points)
	doc[WireKeyCorners] = emptyIfNil(o.Corners)
	doc[WireKeyPointColors] = emptyIfNil(o.PointColors)

	return json.Marshal(doc)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *StoredObject) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*o = StoredObject{}
	take := func(key string, dst any) error {
		msg, ok := raw[key]
		if !ok {
			return nil
		}
		delete(raw, key)
		if err := json.Unmarshal(msg, dst); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		return nil
	}

	if err := take(FieldDescriptor, &o.Descriptor); err != nil {
		return err
	}
	if err := take(FieldID, &o.IDs); err != nil {
		return err
	}
	if err := take(FieldClassID, &o.ClassVotes); err != nil {
		return err
	}
	if err := take(FieldInstColor, &o.InstColor); err != nil {
		return err
	}
	if err := take(WireKeyPoints, &o.Points); err != nil {
		return err
	}
	if err := take(WireKeyCorners, &o.Corners); err != nil {
		return err
	}
	if err := take(WireKeyPointColors, &o.PointColors); err != nil {
		return err
	}

	if len(raw) > 0 {
		o.Extra = make(map[string]any, len(raw))
		for k, msg := range raw {
			var v any
			if err := json.Unmarshal(msg, &v); err != nil {
				return fmt.Errorf("decode %q: %w", k, err)
			}
			o.Extra[k] = v
		}
	}
	return nil
}

func emptyIfNil(rows [][]float64) [][]float64 {
	if rows == nil {
		return [][]float64{}
	}
	return rows
}
