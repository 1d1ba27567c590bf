package frame

import (
	"bytes"
	"testing"
)

func TestEncodeS1(t *testing.T) {
	payload := []byte("1,2,METEO,GET_PRESSURE,0")
	got := Encode(payload)
	want := "$1,2,METEO,GET_PRESSURE,0*69\r\n"
	if string(got) != want {
		t.Fatalf("Encode() = %q, want %q", got, want)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	for _, p := range []string{
		"a",
		"1,2,METEO,GET_PRESSURE,0",
		"1,METEO,TEMPERATURE_REPLY,0,25.0",
		string(bytes.Repeat([]byte{'x'}, 200)),
	} {
		enc := Encode([]byte(p))
		// Strip leading '$' and trailing "\r\n" the way the framer would.
		inner := enc[1 : len(enc)-2]
		got, err := Decode(inner)
		if err != nil {
			t.Fatalf("Decode(%q) error: %v", p, err)
		}
		if string(got) != p {
			t.Fatalf("round trip mismatch: got %q want %q", got, p)
		}
	}
}

func TestDecodeTooShort(t *testing.T) {
	for _, raw := range []string{"", "a", "ab", "a*0"} {
		if _, err := Decode([]byte(raw)); err == nil {
			t.Fatalf("Decode(%q): expected error", raw)
		}
	}
}

func TestDecodeBadChecksum(t *testing.T) {
	_, err := Decode([]byte("METEO,PRESSURE_REPLY,0,100.0*00"))
	if err == nil {
		t.Fatal("expected checksum error")
	}
}

func TestDecodeLowercaseHex(t *testing.T) {
	enc := Encode([]byte("abc"))
	lower := bytes.ToLower(enc[1 : len(enc)-2])
	got, err := Decode(lower)
	if err != nil {
		t.Fatalf("lowercase hex should decode: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("got %q", got)
	}
}

func TestParserWaitsForStart(t *testing.T) {
	p := NewParser()
	var frames [][]byte
	var errs int
	garbage := append([]byte("noise before frame "), Encode([]byte("hello"))...)
	p.FeedAll(garbage, func(payload []byte) {
		frames = append(frames, payload)
	}, func(error) { errs++ })
	if len(frames) != 1 || string(frames[0]) != "hello" {
		t.Fatalf("frames = %v", frames)
	}
}

func TestParserRecoversAfterBadChecksum(t *testing.T) {
	p := NewParser()
	bad := []byte("$1,METEO,PRESSURE_REPLY,0,100.0*00\r\n")
	good := Encode([]byte("ok"))
	var frames [][]byte
	var errs int
	p.FeedAll(append(bad, good...), func(payload []byte) {
		frames = append(frames, payload)
	}, func(error) { errs++ })
	if errs != 1 {
		t.Fatalf("errs = %d, want 1", errs)
	}
	if len(frames) != 1 || string(frames[0]) != "ok" {
		t.Fatalf("frames = %v", frames)
	}
}
