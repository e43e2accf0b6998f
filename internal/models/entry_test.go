package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestEntry_Validate(t *testing.T) {
	cases := []struct {
		name    string
		entry   Entry
		field   string
		wantErr bool
	}{
		{"valid object", Entry{Key: "user:1", Value: json.RawMessage(`{"name":"x"}`)}, "", false},
		{"valid number", Entry{Key: "n", Value: json.RawMessage(`42`)}, "", false},
		{"empty key", Entry{Key: "", Value: json.RawMessage(`1`)}, "key", true},
		{"blank key", Entry{Key: "   ", Value: json.RawMessage(`1`)}, "key", true},
		{"long key", Entry{Key: strings.Repeat("k", MaxKeyLength+1), Value: json.RawMessage(`1`)}, "key", true},
		{"missing value", Entry{Key: "k"}, "value", true},
		{"broken json", Entry{Key: "k", Value: json.RawMessage(`{"a":`)}, "value", true},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var vErr ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if vErr.Field != tt.field || vErr.Struct != "entry" {
				t.Errorf("got field %s.%s, want entry.%s", vErr.Struct, vErr.Field, tt.field)
			}
		})
	}
}
