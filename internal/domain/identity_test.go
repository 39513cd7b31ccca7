package domain

import (
	"encoding/json"
	"testing"
)

func TestIdentityMarshalNumeric(t *testing.T) {
	data, err := json.Marshal(map[string]Identity{"userId": IdentityFromUserID(42)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"userId":42}` {
		t.Fatalf("unexpected encoding %s", data)
	}
}

func TestIdentityMarshalOpaque(t *testing.T) {
	data, err := json.Marshal(Identity("guest-7"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"guest-7"` {
		t.Fatalf("unexpected encoding %s", data)
	}
}

func TestIdentityUnmarshal(t *testing.T) {
	var got struct {
		A Identity `json:"a"`
		B Identity `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":17,"b":"x1"}`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.A != "17" || got.B != "x1" {
		t.Fatalf("got %+v", got)
	}
	if n, ok := got.A.UserID(); !ok || n != 17 {
		t.Fatalf("UserID() = %d, %v", n, ok)
	}
	if _, ok := got.B.UserID(); ok {
		t.Fatalf("opaque identity must not parse as user id")
	}
}
