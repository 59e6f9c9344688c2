package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "only separators", input: "_-. /", want: nil},
		{name: "snake", input: "user_profile", want: []string{"user", "profile"}},
		{name: "kebab", input: "api-client", want: []string{"api", "client"}},
		{name: "spaces", input: "First  Name", want: []string{"First", "Name"}},
		{name: "camel", input: "userProfile", want: []string{"user", "Profile"}},
		{name: "pascal", input: "UserProfile", want: []string{"User", "Profile"}},
		{name: "leading acronym", input: "APIClient", want: []string{"API", "Client"}},
		{name: "trailing acronym", input: "userID", want: []string{"user", "ID"}},
		{name: "all caps", input: "API", want: []string{"API"}},
		{name: "digits stay attached", input: "api_v2_client", want: []string{"api", "v2", "client"}},
		{name: "path", input: "/api/v1/users", want: []string{"api", "v1", "users"}},
		{name: "mixed", input: "get_user-by.id/name", want: []string{"get", "user", "by", "id", "name"}},
		{name: "unicode", input: "über_user", want: []string{"über", "user"}},
		{name: "uncased script", input: "日本語_test", want: []string{"日本語", "test"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Words(tt.input))
		})
	}
}

func TestToPascalCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"a", "A"},
		{"user_profile", "UserProfile"},
		{"get_user_by_id", "GetUserById"},
		{"_private", "Private"},
		{"double__under", "DoubleUnder"},
		{"api-client", "ApiClient"},
		{"com.example.api", "ComExampleApi"},
		{"/api/v1/users", "ApiV1Users"},
		{"first name", "FirstName"},
		{"UserProfile", "UserProfile"},
		{"userProfile", "UserProfile"},
		{"API", "API"},
		{"über_user", "ÜberUser"},
		{"日本語_test", "日本語Test"},
		{"123_abc", "123Abc"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ToPascalCase(tt.input))
		})
	}
}

func TestToCamelCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"user_profile", "userProfile"},
		{"UserProfile", "userProfile"},
		{"APIClient", "apiClient"},
		{"first name", "firstName"},
		{"user-id", "userId"},
		{"already", "already"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ToCamelCase(tt.input))
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"UserProfile", "user_profile"},
		{"APIClient", "api_client"},
		{"userID", "user_id"},
		{"api-client.v2", "api_client_v2"},
		{"First Name", "first_name"},
		{"already_snake", "already_snake"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ToSnakeCase(tt.input))
		})
	}
}

func TestToKebabCase(t *testing.T) {
	assert.Equal(t, "user-profile", ToKebabCase("UserProfile"))
	assert.Equal(t, "api-client", ToKebabCase("API_Client"))
	assert.Equal(t, "", ToKebabCase(""))
}

func TestToTitleCase(t *testing.T) {
	assert.Equal(t, "", ToTitleCase(""))
	assert.Equal(t, "Hello", ToTitleCase("hello"))
	assert.Equal(t, "ÜBER", ToTitleCase("üBER"))
}
