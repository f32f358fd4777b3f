package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "valid date", input: `"1895-12-28"`, want: NewDate(1895, time.December, 28)},
		{name: "null means absent", input: `null`, want: Date{}},
		{name: "empty string means absent", input: `""`, want: Date{}},
		{name: "wrong layout", input: `"28.12.1895"`, wantErr: true},
		{name: "not a string", input: `1895`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !d.Equal(tt.want.Time) {
				t.Errorf("got %v, want %v", d, tt.want)
			}
		})
	}
}

func TestDateMarshalZeroIsNull(t *testing.T) {
	out, err := json.Marshal(Date{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "null" {
		t.Errorf("zero date marshaled to %s, want null", out)
	}

	out, err = json.Marshal(NewDate(1967, time.March, 25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `"1967-03-25"` {
		t.Errorf("got %s, want \"1967-03-25\"", out)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2000, time.January, 2, 15, 4, 5, 0, time.Local)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2000-01-02" {
		t.Errorf("time-of-day not stripped, got %s", d)
	}

	if err := d.Scan(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.IsZero() {
		t.Error("scanning nil should reset the date")
	}
}
