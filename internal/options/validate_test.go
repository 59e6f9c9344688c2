package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSingleInputSource(t *testing.T) {
	tests := []struct {
		name    string
		sources []Source
		wantErr string
	}{
		{
			name:    "exactly one",
			sources: []Source{{"file", false}, {"url", true}, {"content", false}},
		},
		{
			name:    "none",
			sources: []Source{{"file", false}, {"url", false}, {"content", false}},
			wantErr: "exactly one of file, url, or content must be provided (got 0)",
		},
		{
			name:    "several",
			sources: []Source{{"file", true}, {"url", false}, {"content", true}},
			wantErr: "exactly one of file, url, or content must be provided (got 2)",
		},
		{
			name:    "two names",
			sources: []Source{{"template", true}, {"template_file", true}},
			wantErr: "exactly one of template or template_file must be provided (got 2)",
		},
		{
			name:    "single name",
			sources: []Source{{"source", false}},
			wantErr: "exactly one of source must be provided (got 0)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSingleInputSource(tt.sources...)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
