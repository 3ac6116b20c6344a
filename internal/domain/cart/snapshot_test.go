package cart

import (
	"errors"
	"reflect"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	lines := []Line{
		{ProductID: "3", Title: "Mens Cotton Jacket", UnitPrice: 55.99, Image: "https://img/3.jpg", Category: "men's clothing", Quantity: 2},
		{ProductID: "1", Title: "Backpack", UnitPrice: 109.95, Image: "https://img/1.jpg", Category: "men's clothing", Quantity: 10},
	}

	data, err := EncodeSnapshot(lines)
	if err != nil {
		t.Fatalf("EncodeSnapshot() error = %v", err)
	}

	result, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if result.Dropped != 0 {
		t.Fatalf("DecodeSnapshot() dropped = %d", result.Dropped)
	}
	if !reflect.DeepEqual(result.Lines, lines) {
		t.Fatalf("DecodeSnapshot() = %+v, want %+v", result.Lines, lines)
	}
}

func TestEncodeEmptySnapshot(t *testing.T) {
	data, err := EncodeSnapshot(nil)
	if err != nil {
		t.Fatalf("EncodeSnapshot() error = %v", err)
	}
	if string(data) != `{"items":[]}` {
		t.Fatalf("EncodeSnapshot(nil) = %s", data)
	}
}

func TestDecodeSnapshotDropsMalformedEntries(t *testing.T) {
	data := []byte(`{"items":[
		{"id":1,"title":"numeric id","price":10,"quantity":2,"description":"dropped field","rating":{"rate":4.1}},
		{"id":"","title":"no id","price":1,"quantity":1},
		{"title":"missing id","price":1,"quantity":1},
		{"id":"neg","price":-1,"quantity":1},
		{"id":"zero","price":1,"quantity":0},
		{"id":"frac","price":1,"quantity":1.5},
		{"id":"big","price":2,"quantity":40},
		{"id":"1","price":99,"quantity":1},
		{"id":true,"price":1,"quantity":1},
		"not an object"
	]}`)

	result, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if result.Dropped != 8 {
		t.Fatalf("DecodeSnapshot() dropped = %d, want 8", result.Dropped)
	}
	want := []Line{
		{ProductID: "1", Title: "numeric id", UnitPrice: 10, Quantity: 2},
		{ProductID: "big", UnitPrice: 2, Quantity: MaxQuantity},
	}
	if !reflect.DeepEqual(result.Lines, want) {
		t.Fatalf("DecodeSnapshot() = %+v, want %+v", result.Lines, want)
	}
}

func TestDecodeSnapshotLegacyEnvelope(t *testing.T) {
	data := []byte(`{"state":{"items":[{"id":5,"title":"ring","price":9.99,"quantity":1}]},"version":0}`)

	result, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if len(result.Lines) != 1 || result.Lines[0].ProductID != "5" {
		t.Fatalf("DecodeSnapshot() = %+v", result.Lines)
	}
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	if _, err := DecodeSnapshot([]byte("{not json")); !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("DecodeSnapshot() error = %v, want ErrInvalidSnapshot", err)
	}
	if _, err := DecodeSnapshot([]byte(`{"items":"nope"}`)); !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("DecodeSnapshot() error = %v, want ErrInvalidSnapshot", err)
	}
}
