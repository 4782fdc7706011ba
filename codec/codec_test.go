package codec

import "testing"

type job struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestJSONRoundTrip(t *testing.T) {
	c := JSON[job]()
	b, err := c.Encode(job{ID: 7, Name: "reindex"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != 7 || got.Name != "reindex" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestJSONPointer(t *testing.T) {
	c := JSON[*job]()
	b, err := c.Encode(&job{ID: 1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got == nil || got.ID != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestRawPassthrough(t *testing.T) {
	c := Raw()
	b, err := c.Encode([]byte("x"))
	if err != nil || string(b) != "x" {
		t.Fatalf("encode: %v %q", err, b)
	}
	v, err := c.Decode([]byte("y"))
	if err != nil || string(v) != "y" {
		t.Fatalf("decode: %v %q", err, v)
	}
}
