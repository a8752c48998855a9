package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
)

type sample struct {
	Category string `binding:"omitempty,business_category"`
	Status   string `binding:"omitempty,business_status"`
	Role     string `binding:"omitempty,user_role"`
	SortBy   string `binding:"omitempty,sort_by"`
}

func TestRegister(t *testing.T) {
	Register()

	tests := []struct {
		name    string
		input   sample
		wantErr bool
	}{
		{"empty", sample{}, false},
		{"valid", sample{Category: "cafe", Status: "Approved", Role: "Admin", SortBy: "rating"}, false},
		{"bad_category", sample{Category: "casino"}, true},
		{"bad_status", sample{Status: "Archived"}, true},
		{"bad_role", sample{Role: "admin"}, true},
		{"bad_sort", sample{SortBy: "distance"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tt.input)
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
