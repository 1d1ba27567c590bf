package httpapi

import (
	"reflect"
	"testing"
)

func TestParseSensorIDRangeSingles(t *testing.T) {
	got, err := ParseSensorIDRange("1,3,2")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := []uint32{1, 3, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseSensorIDRangeWithSpan(t *testing.T) {
	got, err := ParseSensorIDRange("0,5:7")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := []uint32{0, 5, 6, 7}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseSensorIDRangeDeduplicates(t *testing.T) {
	got, err := ParseSensorIDRange("1:3,2")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := []uint32{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseSensorIDRangeRejectsBackwardsSpan(t *testing.T) {
	if _, err := ParseSensorIDRange("7:5"); err == nil {
		t.Fatal("expected error for from > to")
	}
}

func TestParseSensorIDRangeRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"", "abc", "1,,2", "1:abc"} {
		if _, err := ParseSensorIDRange(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
